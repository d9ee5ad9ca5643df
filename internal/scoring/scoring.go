package scoring

import "sort"

// Score is the composite penalty metric: run duration plus 10 points
// per strike and 15 per miss hit. Lower is better.
func Score(durationSeconds float64, strikes, missHits int) float64 {
	return durationSeconds + 10*float64(strikes) + 15*float64(missHits)
}

// Row is one scored session for a player under one drill type,
// as served on the leaderboard.
type Row struct {
	Rank        int     `json:"rank,omitempty"`
	Username    string  `json:"username"`
	Activity    string  `json:"activity_name"`
	SessionID   string  `json:"session_id"`
	Date        string  `json:"activity_date"`
	Time        string  `json:"activity_time"`
	Duration    float64 `json:"duration"`
	AvgReaction float64 `json:"avg_react_time"`
	Hits        int     `json:"total_hits"`
	MissHits    int     `json:"total_miss_hits"`
	Strikes     int     `json:"total_strikes"`
	Score       float64 `json:"score"`
}

// Better reports whether a outranks b: lower score first, then more
// hits, then faster average reaction. The same chain picks the best
// row per player and orders the final board, so selection and display
// can never disagree.
func Better(a, b Row) bool {
	if a.Score != b.Score {
		return a.Score < b.Score
	}
	if a.Hits != b.Hits {
		return a.Hits > b.Hits
	}
	return a.AvgReaction < b.AvgReaction
}

// BestPerPlayer keeps each player's best row per drill type and
// returns them ranked.
func BestPerPlayer(rows []Row) []Row {
	type key struct {
		username string
		activity string
	}
	best := make(map[key]Row)
	var order []key
	for _, row := range rows {
		k := key{row.Username, row.Activity}
		existing, seen := best[k]
		if !seen {
			order = append(order, k)
			best[k] = row
			continue
		}
		if Better(row, existing) {
			best[k] = row
		}
	}

	result := make([]Row, 0, len(order))
	for _, k := range order {
		result = append(result, best[k])
	}
	sort.SliceStable(result, func(i, j int) bool {
		return Better(result[i], result[j])
	})
	for i := range result {
		result[i].Rank = i + 1
	}
	return result
}

// Totals is an aggregate over the activities of one session.
type Totals struct {
	Duration    float64 `json:"duration"`
	AvgReaction float64 `json:"avg_react_time"`
	Hits        int     `json:"total_hits"`
	MissHits    int     `json:"total_miss_hits"`
	Strikes     int     `json:"total_strikes"`
}

// AggregateSession sums per-activity totals. The average reaction time
// is weighted by hits; zero total hits yields a zero average.
func AggregateSession(parts []Totals) Totals {
	var agg Totals
	var weighted float64
	for _, p := range parts {
		agg.Duration += p.Duration
		agg.Hits += p.Hits
		agg.MissHits += p.MissHits
		agg.Strikes += p.Strikes
		weighted += p.AvgReaction * float64(p.Hits)
	}
	if agg.Hits > 0 {
		agg.AvgReaction = weighted / float64(agg.Hits)
	}
	return agg
}
