package classify

import (
	"testing"

	"rangeboard/internal/csvdata"
)

func baseRecord() csvdata.Record {
	return csvdata.Record{
		ActivityDate:     "2024-09-21",
		ActivityTime:     "12:11:21",
		ActivityName:     "TDS1E1",
		ActivityDuration: "14",
		StationNumber:    "1",
		PlayerName:       "AOD23",
		AvgReactionTime:  "753",
		TotalHits:        "13",
		TotalMissHits:    "2",
		TotalStrikes:     "0",
	}
}

func TestClassify_PrefixNormalization(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
	}{
		{"TDS3B5", "TD"},
		{"TDS2B5", "TD"},
		{"TD1", "TD"},
		{"EXS1B5", "EX"},
		{"EX3", "EX"},
		{"FOO2", "FOO"},
		{"foo2", "FOO"},
	}

	for _, tt := range tests {
		rec := baseRecord()
		rec.ActivityName = tt.name
		a, ok := Classify(rec)
		if !ok {
			t.Errorf("Classify(%q) rejected, want accepted", tt.name)
			continue
		}
		if a.Prefix != tt.prefix {
			t.Errorf("Classify(%q).Prefix = %q, want %q", tt.name, a.Prefix, tt.prefix)
		}
	}
}

func TestClassify_StationFieldAuthoritative(t *testing.T) {
	rec := baseRecord()
	rec.ActivityName = "TDS3B5"
	rec.StationNumber = "2"

	a, ok := Classify(rec)
	if !ok {
		t.Fatal("Classify() rejected, want accepted")
	}
	if a.Station != 2 {
		t.Errorf("Station = %d, want 2 (field wins over name)", a.Station)
	}
}

func TestClassify_StationFallsBackToName(t *testing.T) {
	// "TDS2A4" has two digit groups; the first one names the station.
	rec := baseRecord()
	rec.ActivityName = "TDS2A4"
	rec.StationNumber = ""

	a, ok := Classify(rec)
	if !ok {
		t.Fatal("Classify() rejected, want accepted")
	}
	if a.Prefix != "TD" {
		t.Errorf("Prefix = %q, want %q", a.Prefix, "TD")
	}
	if a.Station != 2 {
		t.Errorf("Station = %d, want 2 (first digit run in name)", a.Station)
	}
}

func TestClassify_Rejections(t *testing.T) {
	tests := []struct {
		label  string
		mutate func(*csvdata.Record)
	}{
		{"empty name", func(r *csvdata.Record) { r.ActivityName = "" }},
		{"no digits in name", func(r *csvdata.Record) { r.ActivityName = "TDS"; r.StationNumber = "" }},
		{"digits only", func(r *csvdata.Record) { r.ActivityName = "123" }},
		{"station zero", func(r *csvdata.Record) { r.StationNumber = "0" }},
		{"station four", func(r *csvdata.Record) { r.StationNumber = "4" }},
		{"station negative", func(r *csvdata.Record) { r.StationNumber = "-1" }},
		{"unparseable timestamp", func(r *csvdata.Record) { r.ActivityDate = "someday" }},
	}

	for _, tt := range tests {
		rec := baseRecord()
		tt.mutate(&rec)
		if _, ok := Classify(rec); ok {
			t.Errorf("%s: Classify() accepted, want rejected", tt.label)
		}
	}
}

func TestClassify_ParsesNumericFields(t *testing.T) {
	a, ok := Classify(baseRecord())
	if !ok {
		t.Fatal("Classify() rejected, want accepted")
	}
	if a.Duration != 14 {
		t.Errorf("Duration = %v, want 14", a.Duration)
	}
	if a.AvgReaction != 753 {
		t.Errorf("AvgReaction = %v, want 753", a.AvgReaction)
	}
	if a.Hits != 13 || a.MissHits != 2 || a.Strikes != 0 {
		t.Errorf("hits/miss/strikes = %d/%d/%d, want 13/2/0", a.Hits, a.MissHits, a.Strikes)
	}
	if a.Timestamp.IsZero() {
		t.Error("Timestamp should be parsed")
	}
}

func TestSessionName(t *testing.T) {
	a, ok := Classify(baseRecord())
	if !ok {
		t.Fatal("Classify() rejected, want accepted")
	}
	if a.SessionName() != "TD1" {
		t.Errorf("SessionName() = %q, want %q", a.SessionName(), "TD1")
	}
}
