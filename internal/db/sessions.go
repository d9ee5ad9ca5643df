package db

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"rangeboard/internal/grouping"
)

// ErrNoCompleteSessions is returned when a save batch contains no
// group covering all three stations.
var ErrNoCompleteSessions = errors.New("no complete sessions found")

// SaveSessions persists the complete groups of one save batch. The
// whole batch runs in a single transaction: any failed insert rolls
// everything back and zero sessions remain. Partial and single-station
// groups are never written; a batch with none complete returns
// ErrNoCompleteSessions without touching the database.
//
// Players and activities are reused by name, so re-uploads of the same
// roster never create duplicate rows. Returns the number of sessions
// saved.
func (d *DB) SaveSessions(groups []grouping.Group) (int, error) {
	var complete []grouping.Group
	for _, g := range groups {
		if g.Completeness() == grouping.Complete {
			complete = append(complete, g)
		}
	}
	if len(complete) == 0 {
		return 0, ErrNoCompleteSessions
	}

	tx, err := d.conn.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, g := range complete {
		playerID, err := upsertPlayerTx(tx, g.Username)
		if err != nil {
			return 0, err
		}

		sessionID := uuid.New().String()
		// The session keeps the first member's station for reference.
		_, err = tx.Exec(`
			INSERT INTO sessions (id, player_id, station_number)
			VALUES ($1, $2, $3)
		`, sessionID, playerID, g.Activities[0].Station)
		if err != nil {
			return 0, fmt.Errorf("creating session: %w", err)
		}

		for _, a := range g.Activities {
			activityID, err := upsertActivityTx(tx, a.SessionName(), a.Prefix, a.Station)
			if err != nil {
				return 0, err
			}

			var linkID int64
			err = tx.QueryRow(`
				INSERT INTO session_activities (session_id, activity_id)
				VALUES ($1, $2)
				RETURNING id
			`, sessionID, activityID).Scan(&linkID)
			if err != nil {
				return 0, fmt.Errorf("linking session activity: %w", err)
			}

			_, err = tx.Exec(`
				INSERT INTO performances (session_activity_id, activity_date, activity_time, duration, avg_react_time, total_hits, total_miss_hits, total_strikes)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			`, linkID, a.ActivityDate, a.ActivityTime, a.Duration, a.AvgReaction, a.Hits, a.MissHits, a.Strikes)
			if err != nil {
				return 0, fmt.Errorf("recording performance: %w", err)
			}

			for _, cue := range a.VisualCues {
				_, err = tx.Exec(`
					INSERT INTO visual_cues (session_activity_id, cue_order, cue_time_ms, cue_color)
					VALUES ($1, $2, $3, $4)
				`, linkID, cue.Order, cue.TimeMs, cue.Color)
				if err != nil {
					return 0, fmt.Errorf("recording visual cue: %w", err)
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing save: %w", err)
	}
	return len(complete), nil
}
