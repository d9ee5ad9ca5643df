package stats

// ActivityRow is one persisted station run as served to clients.
type ActivityRow struct {
	SessionID    string  `json:"session_id"`
	ActivityName string  `json:"activity_name"`
	ActivityDate string  `json:"activity_date"`
	ActivityTime string  `json:"activity_time"`
	AvgReaction  float64 `json:"activity_avg_react_time"`
	Duration     float64 `json:"activity_duration"`
	Hits         int     `json:"activity_hits"`
	MissHits     int     `json:"activity_miss_hits"`
	Strikes      int     `json:"activity_strikes"`
}

// ActivityScore groups a player's rows under one activity name.
type ActivityScore struct {
	ActivityName string        `json:"activity_name"`
	Activities   []ActivityRow `json:"activities"`
}

// UserScore is the nested per-player shape of the /scores endpoint.
type UserScore struct {
	Username string          `json:"username"`
	Scores   []ActivityScore `json:"scores"`
}

// CueRow is one visual cue joined with its station context.
type CueRow struct {
	SectionNumber int     `json:"section_number"`
	CueOrder      int     `json:"cue_order"`
	TimeMs        float64 `json:"visual_cue_time"`
	Color         string  `json:"visual_cue_color"`
	ActivityName  string  `json:"activity_name"`
}

// SessionCues carries every cue of one session, ordered by station
// then cue order.
type SessionCues struct {
	SessionID    string   `json:"session_id"`
	CombinedCues []CueRow `json:"combinedCues"`
}
