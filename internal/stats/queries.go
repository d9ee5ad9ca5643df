package stats

import (
	"database/sql"
	"errors"
	"fmt"

	"rangeboard/internal/db"
	"rangeboard/internal/scoring"
)

// ErrPlayerNotFound is returned for stats lookups on unknown usernames.
var ErrPlayerNotFound = errors.New("player not found")

type Queries struct {
	DB *db.DB
}

func NewQueries(database *db.DB) *Queries {
	return &Queries{DB: database}
}

const activityRowsQuery = `
	SELECT p.username, a.activity_name, s.id,
		pf.activity_date, pf.activity_time,
		pf.avg_react_time, pf.duration,
		pf.total_hits, pf.total_miss_hits, pf.total_strikes
	FROM performances pf
	JOIN session_activities sa ON sa.id = pf.session_activity_id
	JOIN sessions s ON s.id = sa.session_id
	JOIN activities a ON a.id = sa.activity_id
	JOIN players p ON p.id = s.player_id
`

// PlayerScores returns every persisted row nested per player and
// activity name, in stable alphabetical order.
func (q *Queries) PlayerScores() ([]UserScore, error) {
	rows, err := q.DB.Query(activityRowsQuery + `
		ORDER BY p.username, a.activity_name, pf.activity_date, pf.activity_time
	`)
	if err != nil {
		return nil, fmt.Errorf("getting player scores: %w", err)
	}
	defer rows.Close()

	var users []UserScore
	for rows.Next() {
		var username string
		var row ActivityRow
		if err := rows.Scan(&username, &row.ActivityName, &row.SessionID,
			&row.ActivityDate, &row.ActivityTime, &row.AvgReaction, &row.Duration,
			&row.Hits, &row.MissHits, &row.Strikes); err != nil {
			return nil, err
		}

		if len(users) == 0 || users[len(users)-1].Username != username {
			users = append(users, UserScore{Username: username})
		}
		user := &users[len(users)-1]

		if len(user.Scores) == 0 || user.Scores[len(user.Scores)-1].ActivityName != row.ActivityName {
			user.Scores = append(user.Scores, ActivityScore{ActivityName: row.ActivityName})
		}
		score := &user.Scores[len(user.Scores)-1]
		score.Activities = append(score.Activities, row)
	}
	return users, rows.Err()
}

// PlayerStats returns all persisted rows for one player, newest first.
// Unknown usernames yield ErrPlayerNotFound rather than an empty list,
// so callers can answer 404.
func (q *Queries) PlayerStats(username string) ([]ActivityRow, error) {
	var playerID int64
	err := q.DB.QueryRow(`SELECT id FROM players WHERE username = $1`, username).Scan(&playerID)
	if err == sql.ErrNoRows {
		return nil, ErrPlayerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("looking up player: %w", err)
	}

	rows, err := q.DB.Query(activityRowsQuery+`
		WHERE p.id = $1
		ORDER BY pf.activity_date DESC, pf.activity_time DESC
	`, playerID)
	if err != nil {
		return nil, fmt.Errorf("getting player stats: %w", err)
	}
	defer rows.Close()

	var result []ActivityRow
	for rows.Next() {
		var username string
		var row ActivityRow
		if err := rows.Scan(&username, &row.ActivityName, &row.SessionID,
			&row.ActivityDate, &row.ActivityTime, &row.AvgReaction, &row.Duration,
			&row.Hits, &row.MissHits, &row.Strikes); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// SessionCues returns every visual cue of a session with its station
// context, ordered by station then cue order.
func (q *Queries) SessionCues(sessionID string) (*SessionCues, error) {
	rows, err := q.DB.Query(`
		SELECT a.station_number, vc.cue_order, vc.cue_time_ms, vc.cue_color, a.activity_name
		FROM visual_cues vc
		JOIN session_activities sa ON sa.id = vc.session_activity_id
		JOIN activities a ON a.id = sa.activity_id
		WHERE sa.session_id = $1
		ORDER BY a.station_number, vc.cue_order
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("getting session cues: %w", err)
	}
	defer rows.Close()

	cues := &SessionCues{SessionID: sessionID, CombinedCues: []CueRow{}}
	for rows.Next() {
		var c CueRow
		if err := rows.Scan(&c.SectionNumber, &c.CueOrder, &c.TimeMs, &c.Color, &c.ActivityName); err != nil {
			return nil, err
		}
		cues.CombinedCues = append(cues.CombinedCues, c)
	}
	return cues, rows.Err()
}

// ScoredSessions aggregates each persisted session into one scored row
// per (player, drill prefix, session). Totals are summed and the
// average reaction time weighted by hits; a session with zero hits gets
// a zero average. Scores are computed here so the leaderboard ranking
// in scoring sees finished rows.
func (q *Queries) ScoredSessions() ([]scoring.Row, error) {
	rows, err := q.DB.Query(`
		SELECT p.username, a.prefix, s.id,
			MIN(pf.activity_date), MIN(pf.activity_time),
			SUM(pf.duration),
			CASE WHEN SUM(pf.total_hits) > 0
				THEN SUM(pf.avg_react_time * pf.total_hits) / SUM(pf.total_hits)
				ELSE 0 END,
			SUM(pf.total_hits), SUM(pf.total_miss_hits), SUM(pf.total_strikes)
		FROM performances pf
		JOIN session_activities sa ON sa.id = pf.session_activity_id
		JOIN sessions s ON s.id = sa.session_id
		JOIN activities a ON a.id = sa.activity_id
		JOIN players p ON p.id = s.player_id
		GROUP BY p.username, a.prefix, s.id
		ORDER BY p.username, a.prefix, s.id
	`)
	if err != nil {
		return nil, fmt.Errorf("getting scored sessions: %w", err)
	}
	defer rows.Close()

	var result []scoring.Row
	for rows.Next() {
		var r scoring.Row
		if err := rows.Scan(&r.Username, &r.Activity, &r.SessionID,
			&r.Date, &r.Time, &r.Duration, &r.AvgReaction,
			&r.Hits, &r.MissHits, &r.Strikes); err != nil {
			return nil, err
		}
		r.Score = scoring.Score(r.Duration, r.Strikes, r.MissHits)
		result = append(result, r)
	}
	return result, rows.Err()
}
