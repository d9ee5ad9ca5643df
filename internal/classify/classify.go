package classify

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"rangeboard/internal/csvdata"
)

// Activity is a Record that passed classification: the drill prefix and
// station number have been resolved and the numeric fields parsed.
type Activity struct {
	csvdata.Record

	Prefix      string    `json:"activityPrefix"`
	Station     int       `json:"baseActivityType"`
	Timestamp   time.Time `json:"timestamp"`
	Duration    float64   `json:"durationSeconds"`
	AvgReaction float64   `json:"avgReactionMs"`
	Hits        int       `json:"hits"`
	MissHits    int       `json:"missHits"`
	Strikes     int       `json:"strikes"`
}

// SessionName returns the composite activity identifier, e.g. "TD1".
func (a Activity) SessionName() string {
	return a.Prefix + strconv.Itoa(a.Station)
}

// Leading letters (spaces allowed), then the first digit run. "TDS2A4"
// captures ("TDS", "2").
var namePattern = regexp.MustCompile(`^([A-Za-z ]+?)(\d+)`)

var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"01/02/2006 15:04:05",
	"2/1/2006 15:04:05",
	"Jan 2 2006 15:04:05",
}

// Classify derives the drill prefix and station number for one record.
// The second return is false when the record cannot take part in
// grouping: no recognizable name, a station outside 1..3, or an
// unparseable timestamp. Rejection is a normal outcome, not an error.
func Classify(rec csvdata.Record) (Activity, bool) {
	name := strings.TrimSpace(rec.ActivityName)
	m := namePattern.FindStringSubmatch(name)
	if m == nil {
		return Activity{}, false
	}

	prefix := normalizePrefix(m[1])
	if prefix == "" {
		return Activity{}, false
	}

	station := stationNumber(rec.StationNumber, m[2])
	if station < 1 || station > 3 {
		return Activity{}, false
	}

	ts, ok := parseTimestamp(rec.ActivityDate, rec.ActivityTime)
	if !ok {
		return Activity{}, false
	}

	return Activity{
		Record:      rec,
		Prefix:      prefix,
		Station:     station,
		Timestamp:   ts,
		Duration:    parseFloat(rec.ActivityDuration),
		AvgReaction: parseFloat(rec.AvgReactionTime),
		Hits:        parseInt(rec.TotalHits),
		MissHits:    parseInt(rec.TotalMissHits),
		Strikes:     parseInt(rec.TotalStrikes),
	}, true
}

// normalizePrefix collapses the leading alphabetic run to a drill type:
// anything starting with "TD" is a timed drill, anything starting with
// "EX" an exercise. Other runs pass through uppercased so unfamiliar
// drills still group among themselves.
func normalizePrefix(run string) string {
	full := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(run), " ", "_"))
	switch {
	case full == "":
		return ""
	case strings.HasPrefix(full, "TD"):
		return "TD"
	case strings.HasPrefix(full, "EX"):
		return "EX"
	default:
		return full
	}
}

// stationNumber prefers the export's station column when present, even
// when it names an out-of-range station; the digit run from the
// activity name only fills in for rows missing the column.
func stationNumber(field, nameDigits string) int {
	field = strings.TrimSpace(field)
	if field != "" {
		n, err := strconv.Atoi(field)
		if err != nil {
			return 0
		}
		return n
	}
	n, err := strconv.Atoi(nameDigits)
	if err != nil {
		return 0
	}
	return n
}

func parseTimestamp(date, clock string) (time.Time, bool) {
	combined := strings.TrimSpace(date) + " " + strings.TrimSpace(clock)
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, combined); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}

func parseInt(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}
