package csvdata

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// VisualCue is one timed light stimulus recorded within an activity.
// The export carries them as paired "Visual cue #N (ms)" / "Color #N"
// columns with no fixed upper bound on N.
type VisualCue struct {
	Order  int     `json:"cue_order"`
	TimeMs float64 `json:"visual_cue_time"`
	Color  string  `json:"visual_cue_color"`
}

// Record is one normalized CSV row. Values stay as the raw strings from
// the export; missing columns are left empty rather than rejected, so
// downstream stages decide what is usable.
type Record struct {
	ActivityDate     string      `json:"activityDate"`
	ActivityTime     string      `json:"activityTime"`
	ActivityName     string      `json:"activityName"`
	DurationType     string      `json:"durationType"`
	DurationHitCount string      `json:"durationHitCount"`
	CycleDuration    string      `json:"cycleDuration"`
	ActivityDuration string      `json:"activityDuration"`
	LightLogic       string      `json:"lightLogic"`
	StationNumber    string      `json:"stationNumber"`
	CycleNumber      string      `json:"cycleNumber"`
	PlayerNumber     string      `json:"playerNumber"`
	PlayerName       string      `json:"playerName"`
	AvgReactionTime  string      `json:"avgReactionTime"`
	TotalHits        string      `json:"totalHits"`
	TotalMissHits    string      `json:"totalMissHits"`
	TotalStrikes     string      `json:"totalStrikes"`
	Repetitions      string      `json:"repetitions"`
	LightsOut        string      `json:"lightsOut"`
	Levels           string      `json:"levels"`
	Steps            string      `json:"steps"`
	VisualCues       []VisualCue `json:"visualCues"`
}

var (
	cueTimeHeader  = regexp.MustCompile(`^visual cue #(\d+) \(ms\)$`)
	cueColorHeader = regexp.MustCompile(`^color #(\d+)$`)
)

// fieldSetters maps normalized header names to Record fields.
var fieldSetters = map[string]func(*Record, string){
	"activity date":          func(r *Record, v string) { r.ActivityDate = v },
	"activity time":          func(r *Record, v string) { r.ActivityTime = v },
	"activity name":          func(r *Record, v string) { r.ActivityName = v },
	"duration type":          func(r *Record, v string) { r.DurationType = v },
	"duration/hit count":     func(r *Record, v string) { r.DurationHitCount = v },
	"cycle duration":         func(r *Record, v string) { r.CycleDuration = v },
	"activity duration":      func(r *Record, v string) { r.ActivityDuration = v },
	"light logic":            func(r *Record, v string) { r.LightLogic = v },
	"station number":         func(r *Record, v string) { r.StationNumber = v },
	"cycle number":           func(r *Record, v string) { r.CycleNumber = v },
	"player number":          func(r *Record, v string) { r.PlayerNumber = v },
	"player name":            func(r *Record, v string) { r.PlayerName = v },
	"avg reaction time (ms)": func(r *Record, v string) { r.AvgReactionTime = v },
	"avg reaction time":      func(r *Record, v string) { r.AvgReactionTime = v },
	"total hits":             func(r *Record, v string) { r.TotalHits = v },
	"total miss hits":        func(r *Record, v string) { r.TotalMissHits = v },
	"total strikes":          func(r *Record, v string) { r.TotalStrikes = v },
	"repetitions":            func(r *Record, v string) { r.Repetitions = v },
	"lights out":             func(r *Record, v string) { r.LightsOut = v },
	"levels":                 func(r *Record, v string) { r.Levels = v },
	"steps":                  func(r *Record, v string) { r.Steps = v },
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF")))
}

// FromRow builds a Record from one parsed row keyed by header name.
// Unrecognized headers are ignored and cue pairs with a blank time are
// skipped, so a sparse or partially filled row never fails.
func FromRow(row map[string]string) Record {
	var rec Record
	maxCue := 0
	cueTimes := make(map[int]string)
	cueColors := make(map[int]string)

	for header, value := range row {
		key := normalizeHeader(header)
		if set, ok := fieldSetters[key]; ok {
			set(&rec, strings.TrimSpace(value))
			continue
		}
		if m := cueTimeHeader.FindStringSubmatch(key); m != nil {
			n, _ := strconv.Atoi(m[1])
			cueTimes[n] = strings.TrimSpace(value)
			if n > maxCue {
				maxCue = n
			}
			continue
		}
		if m := cueColorHeader.FindStringSubmatch(key); m != nil {
			n, _ := strconv.Atoi(m[1])
			cueColors[n] = strings.TrimSpace(value)
			if n > maxCue {
				maxCue = n
			}
		}
	}

	for n := 1; n <= maxCue; n++ {
		raw := cueTimes[n]
		if raw == "" {
			continue
		}
		ms, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		rec.VisualCues = append(rec.VisualCues, VisualCue{
			Order:  n,
			TimeMs: ms,
			Color:  cueColors[n],
		})
	}

	return rec
}

// Parse reads a whole CSV export: first row is the header, every
// following row becomes one Record. Ragged rows are tolerated; short
// rows simply leave trailing fields empty.
func Parse(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}

	var records []Record
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv row: %w", err)
		}

		m := make(map[string]string, len(header))
		for i, h := range header {
			if i < len(row) {
				m[h] = row[i]
			}
		}
		records = append(records, FromRow(m))
	}
	return records, nil
}
