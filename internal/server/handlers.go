package server

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"rangeboard/internal/classify"
	"rangeboard/internal/config"
	"rangeboard/internal/csvdata"
	"rangeboard/internal/db"
	"rangeboard/internal/grouping"
	"rangeboard/internal/livehub"
	"rangeboard/internal/metrics"
	"rangeboard/internal/scoring"
	"rangeboard/internal/stats"
	"rangeboard/internal/uploads"
)

type Server struct {
	Cfg     config.Config
	DB      *db.DB        // nil if no database configured
	Stats   *stats.Queries // nil if no database configured
	Uploads *uploads.Store
	Hub     *livehub.Hub
}

func (s *Server) window() time.Duration {
	return time.Duration(s.Cfg.SessionWindowSeconds) * time.Second
}

// groupView is how a reconstructed session appears in upload responses.
type groupView struct {
	Username     string                `json:"username"`
	Prefix       string                `json:"activityPrefix"`
	Completeness grouping.Completeness `json:"completeness"`
	Label        string                `json:"label"`
	Stations     []int                 `json:"stations"`
	Activities   []classify.Activity   `json:"activities"`
}

func groupViews(groups []grouping.Group) []groupView {
	views := make([]groupView, 0, len(groups))
	for _, g := range groups {
		views = append(views, groupView{
			Username:     g.Username,
			Prefix:       g.Prefix,
			Completeness: g.Completeness(),
			Label:        g.Label(),
			Stations:     g.Stations(),
			Activities:   g.Activities,
		})
	}
	return views
}

type uploadResponse struct {
	BatchID  string           `json:"batchId"`
	Records  []csvdata.Record `json:"records"`
	Sessions []groupView      `json:"sessions"`
	Rejected int              `json:"rejected"`
}

// handleUpload parses a CSV export, classifies and groups its rows,
// and keeps the batch fetchable for the review/save flow. Rows that
// fail classification stay in the records list but never reach a
// session.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.Cfg.MaxUploadBytes)

	file, _, err := r.FormFile("csv")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer file.Close()

	records, err := csvdata.Parse(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("parsing csv: %v", err))
		return
	}
	metrics.RowsParsed.Add(float64(len(records)))

	var activities []classify.Activity
	rejected := 0
	for _, rec := range records {
		a, ok := classify.Classify(rec)
		if !ok {
			rejected++
			continue
		}
		activities = append(activities, a)
	}
	metrics.ActivitiesRejected.Add(float64(rejected))

	groups := grouping.GroupActivities(activities, s.window())

	batch := &uploads.Batch{
		ID:        uuid.New().String(),
		Records:   records,
		Groups:    groups,
		Rejected:  rejected,
		CreatedAt: time.Now(),
	}
	s.Uploads.Put(batch)
	metrics.UploadBatches.Inc()

	log.Printf("[Upload] Batch %s: %d rows, %d rejected, %d sessions\n",
		batch.ID, len(records), rejected, len(groups))

	writeJSON(w, http.StatusOK, uploadResponse{
		BatchID:  batch.ID,
		Records:  records,
		Sessions: groupViews(groups),
		Rejected: rejected,
	})
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["batchID"]
	batch := s.Uploads.Get(id)
	if batch == nil {
		writeError(w, http.StatusNotFound, "batch not found")
		return
	}
	writeJSON(w, http.StatusOK, uploadResponse{
		BatchID:  batch.ID,
		Records:  batch.Records,
		Sessions: groupViews(batch.Groups),
		Rejected: batch.Rejected,
	})
}

type saveRequest struct {
	Sessions []grouping.Group `json:"sessions"`
}

type saveResponse struct {
	Success    bool `json:"success"`
	SavedCount int  `json:"savedCount"`
}

// handleSave persists the complete sessions of a save request. Every
// member activity is re-classified from its raw record before writing,
// so a client cannot smuggle in stations or prefixes its rows don't
// carry.
func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		writeError(w, http.StatusServiceUnavailable, "database not configured")
		return
	}

	var req saveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Sessions) == 0 {
		writeError(w, http.StatusBadRequest, "no sessions to save")
		return
	}

	groups := make([]grouping.Group, 0, len(req.Sessions))
	for _, g := range req.Sessions {
		members := make([]classify.Activity, 0, len(g.Activities))
		for _, a := range g.Activities {
			cls, ok := classify.Classify(a.Record)
			if !ok {
				continue
			}
			members = append(members, cls)
		}
		if len(members) == 0 {
			continue
		}
		groups = append(groups, grouping.Group{
			Username:   strings.TrimSpace(g.Username),
			Prefix:     members[0].Prefix,
			Activities: members,
		})
	}

	saved, err := s.DB.SaveSessions(groups)
	if err != nil {
		if errors.Is(err, db.ErrNoCompleteSessions) {
			writeError(w, http.StatusBadRequest, "no complete sessions found")
			return
		}
		log.Printf("[Save] SaveSessions error: %v\n", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	metrics.SessionsSaved.Add(float64(saved))
	s.Hub.Broadcast(livehub.Notice{Type: "leaderboard", SavedCount: saved})
	log.Printf("[Save] Persisted %d sessions\n", saved)

	writeJSON(w, http.StatusOK, saveResponse{Success: true, SavedCount: saved})
}

func (s *Server) handleScores(w http.ResponseWriter, r *http.Request) {
	if s.Stats == nil {
		writeError(w, http.StatusServiceUnavailable, "database not configured")
		return
	}
	users, err := s.Stats.PlayerScores()
	if err != nil {
		log.Printf("[Scores] query error: %v\n", err)
		writeError(w, http.StatusInternalServerError, "failed to load scores")
		return
	}
	if users == nil {
		users = []stats.UserScore{}
	}
	writeJSON(w, http.StatusOK, users)
}

// handleLeaderboard serves the best persisted session per player per
// drill type, ranked. An optional ?activity= filter narrows the board
// to one drill prefix.
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if s.Stats == nil {
		writeError(w, http.StatusServiceUnavailable, "database not configured")
		return
	}
	rows, err := s.Stats.ScoredSessions()
	if err != nil {
		log.Printf("[Leaderboard] query error: %v\n", err)
		writeError(w, http.StatusInternalServerError, "failed to load leaderboard")
		return
	}

	if filter := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("activity"))); filter != "" && filter != "ALL" {
		var filtered []scoring.Row
		for _, row := range rows {
			if row.Activity == filter {
				filtered = append(filtered, row)
			}
		}
		rows = filtered
	}

	board := scoring.BestPerPlayer(rows)
	if board == nil {
		board = []scoring.Row{}
	}
	writeJSON(w, http.StatusOK, board)
}

func (s *Server) handlePlayerStats(w http.ResponseWriter, r *http.Request) {
	if s.Stats == nil {
		writeError(w, http.StatusServiceUnavailable, "database not configured")
		return
	}
	username := mux.Vars(r)["username"]
	rows, err := s.Stats.PlayerStats(username)
	if err != nil {
		if errors.Is(err, stats.ErrPlayerNotFound) {
			writeError(w, http.StatusNotFound, "player not found")
			return
		}
		log.Printf("[Stats] query error: %v\n", err)
		writeError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}
	if rows == nil {
		rows = []stats.ActivityRow{}
	}
	writeJSON(w, http.StatusOK, rows)
}

// sessionSummary is one whole session rolled up for detail views.
type sessionSummary struct {
	SessionID    string  `json:"session_id"`
	ActivityDate string  `json:"activity_date"`
	ActivityTime string  `json:"activity_time"`
	Activities   int     `json:"activities"`
	scoring.Totals
	Score float64 `json:"score"`
}

// handlePlayerSessions rolls a player's persisted rows up to one entry
// per session, with hit-weighted reaction averages and the session
// score.
func (s *Server) handlePlayerSessions(w http.ResponseWriter, r *http.Request) {
	if s.Stats == nil {
		writeError(w, http.StatusServiceUnavailable, "database not configured")
		return
	}
	username := mux.Vars(r)["username"]
	rows, err := s.Stats.PlayerStats(username)
	if err != nil {
		if errors.Is(err, stats.ErrPlayerNotFound) {
			writeError(w, http.StatusNotFound, "player not found")
			return
		}
		log.Printf("[Stats] query error: %v\n", err)
		writeError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}

	parts := make(map[string][]scoring.Totals)
	first := make(map[string]stats.ActivityRow)
	var order []string
	for _, row := range rows {
		if _, seen := parts[row.SessionID]; !seen {
			order = append(order, row.SessionID)
			first[row.SessionID] = row
		}
		parts[row.SessionID] = append(parts[row.SessionID], scoring.Totals{
			Duration:    row.Duration,
			AvgReaction: row.AvgReaction,
			Hits:        row.Hits,
			MissHits:    row.MissHits,
			Strikes:     row.Strikes,
		})
	}

	summaries := make([]sessionSummary, 0, len(order))
	for _, id := range order {
		agg := scoring.AggregateSession(parts[id])
		summaries = append(summaries, sessionSummary{
			SessionID:    id,
			ActivityDate: first[id].ActivityDate,
			ActivityTime: first[id].ActivityTime,
			Activities:   len(parts[id]),
			Totals:       agg,
			Score:        scoring.Score(agg.Duration, agg.Strikes, agg.MissHits),
		})
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleVisualCues(w http.ResponseWriter, r *http.Request) {
	if s.Stats == nil {
		writeError(w, http.StatusServiceUnavailable, "database not configured")
		return
	}
	sessionID := mux.Vars(r)["sessionID"]
	cues, err := s.Stats.SessionCues(sessionID)
	if err != nil {
		log.Printf("[Cues] query error: %v\n", err)
		writeError(w, http.StatusInternalServerError, "failed to load visual cues")
		return
	}
	writeJSON(w, http.StatusOK, cues)
}

// handleLive upgrades to a WebSocket and streams refresh notices until
// the client goes away.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // same-origin policy handled by CORS above
	})
	if err != nil {
		log.Printf("[Hub] accept error: %v\n", err)
		return
	}

	client := &livehub.Client{
		ID:   uuid.New().String(),
		Conn: conn,
		Send: make(chan []byte, 16),
	}
	s.Hub.Register(client)
	defer s.Hub.Unregister(client.ID)
	defer conn.Close(websocket.StatusNormalClosure, "")

	client.WritePump(r.Context())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if s.DB != nil {
		if err := s.DB.Ping(); err != nil {
			status = "db_error"
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprintf(w, `{"status":"%s","error":"%s"}`, status, err.Error())
			return
		}
	}
	fmt.Fprintf(w, `{"status":"%s"}`, status)
}
