package grouping

import (
	"testing"
	"time"

	"rangeboard/internal/classify"
	"rangeboard/internal/csvdata"
)

func makeActivity(t *testing.T, player, prefix string, station int, clock string) classify.Activity {
	t.Helper()
	ts, err := time.Parse("2006-01-02 15:04:05", "2024-09-21 "+clock)
	if err != nil {
		t.Fatalf("parsing clock %q: %v", clock, err)
	}
	return classify.Activity{
		Record: csvdata.Record{
			ActivityDate: "2024-09-21",
			ActivityTime: clock,
			PlayerName:   player,
		},
		Prefix:    prefix,
		Station:   station,
		Timestamp: ts,
	}
}

func TestGroupActivities_CompleteSession(t *testing.T) {
	acts := []classify.Activity{
		makeActivity(t, "AOD23", "TD", 1, "10:00:00"),
		makeActivity(t, "AOD23", "TD", 2, "10:00:05"),
		makeActivity(t, "AOD23", "TD", 3, "10:00:12"),
	}

	groups := GroupActivities(acts, DefaultWindow)
	if len(groups) != 1 {
		t.Fatalf("groups count = %d, want 1", len(groups))
	}
	g := groups[0]
	if g.Username != "AOD23" || g.Prefix != "TD" {
		t.Errorf("group = %s/%s, want AOD23/TD", g.Username, g.Prefix)
	}
	if g.Completeness() != Complete {
		t.Errorf("completeness = %q, want %q", g.Completeness(), Complete)
	}
	if g.Label() != "AOD23 (TD Session)" {
		t.Errorf("label = %q, want %q", g.Label(), "AOD23 (TD Session)")
	}
}

func TestGroupActivities_DuplicateStationIsSingle(t *testing.T) {
	acts := []classify.Activity{
		makeActivity(t, "X", "TD", 1, "10:00:00"),
		makeActivity(t, "X", "TD", 1, "10:00:05"),
	}

	groups := GroupActivities(acts, DefaultWindow)
	if len(groups) != 1 {
		t.Fatalf("groups count = %d, want 1", len(groups))
	}
	if got := groups[0].Completeness(); got != Single {
		t.Errorf("completeness = %q, want %q (distinct stations = {1})", got, Single)
	}
	if len(groups[0].Activities) != 2 {
		t.Errorf("members = %d, want 2 (duplicates retained)", len(groups[0].Activities))
	}
}

func TestGroupActivities_DuplicatePlusSecondStationIsPartial(t *testing.T) {
	acts := []classify.Activity{
		makeActivity(t, "X", "TD", 1, "10:00:00"),
		makeActivity(t, "X", "TD", 1, "10:00:04"),
		makeActivity(t, "X", "TD", 2, "10:00:09"),
	}

	groups := GroupActivities(acts, DefaultWindow)
	if len(groups) != 1 {
		t.Fatalf("groups count = %d, want 1", len(groups))
	}
	if got := groups[0].Completeness(); got != Partial {
		t.Errorf("completeness = %q, want %q", got, Partial)
	}
}

// Membership is judged against a cluster's first member, not its most
// recent one. Activities 15s apart join while within 20s of the
// anchor, but the third, 30s from the anchor, starts a new cluster
// even though it is only 15s behind its predecessor.
func TestGroupActivities_AnchorBasedWindow(t *testing.T) {
	acts := []classify.Activity{
		makeActivity(t, "X", "TD", 1, "10:00:00"),
		makeActivity(t, "X", "TD", 2, "10:00:15"),
		makeActivity(t, "X", "TD", 3, "10:00:30"),
	}

	groups := GroupActivities(acts, DefaultWindow)
	if len(groups) != 2 {
		t.Fatalf("groups count = %d, want 2", len(groups))
	}
	if len(groups[0].Activities) != 2 {
		t.Errorf("first cluster members = %d, want 2", len(groups[0].Activities))
	}
	if groups[0].Completeness() != Partial {
		t.Errorf("first cluster = %q, want %q", groups[0].Completeness(), Partial)
	}
	if groups[1].Completeness() != Single {
		t.Errorf("second cluster = %q, want %q", groups[1].Completeness(), Single)
	}
}

func TestGroupActivities_ExactlyAtWindowJoins(t *testing.T) {
	acts := []classify.Activity{
		makeActivity(t, "X", "TD", 1, "10:00:00"),
		makeActivity(t, "X", "TD", 2, "10:00:20"),
	}

	groups := GroupActivities(acts, DefaultWindow)
	if len(groups) != 1 {
		t.Fatalf("groups count = %d, want 1 (20s is within the window)", len(groups))
	}
}

func TestGroupActivities_PrefixesNeverMerge(t *testing.T) {
	acts := []classify.Activity{
		makeActivity(t, "X", "TD", 1, "10:00:00"),
		makeActivity(t, "X", "EX", 2, "10:00:03"),
		makeActivity(t, "X", "TD", 3, "10:00:06"),
	}

	groups := GroupActivities(acts, DefaultWindow)
	if len(groups) != 2 {
		t.Fatalf("groups count = %d, want 2", len(groups))
	}
	for _, g := range groups {
		for _, a := range g.Activities {
			if a.Prefix != g.Prefix {
				t.Errorf("group %s contains prefix %s", g.Prefix, a.Prefix)
			}
		}
	}
}

func TestGroupActivities_PlayersNeverMerge(t *testing.T) {
	acts := []classify.Activity{
		makeActivity(t, "A", "TD", 1, "10:00:00"),
		makeActivity(t, "B", "TD", 2, "10:00:01"),
	}

	groups := GroupActivities(acts, DefaultWindow)
	if len(groups) != 2 {
		t.Fatalf("groups count = %d, want 2", len(groups))
	}
	for _, g := range groups {
		for _, a := range g.Activities {
			if a.PlayerName != g.Username {
				t.Errorf("group %s contains player %s", g.Username, a.PlayerName)
			}
		}
	}
}

func TestGroupActivities_EmptyPlayerNameDropped(t *testing.T) {
	acts := []classify.Activity{
		makeActivity(t, "", "TD", 1, "10:00:00"),
		makeActivity(t, "X", "TD", 2, "10:00:01"),
	}

	groups := GroupActivities(acts, DefaultWindow)
	if len(groups) != 1 {
		t.Fatalf("groups count = %d, want 1", len(groups))
	}
	if groups[0].Username != "X" {
		t.Errorf("group player = %q, want %q", groups[0].Username, "X")
	}
}

func TestGroupActivities_MembersChronological(t *testing.T) {
	// Input deliberately out of order.
	acts := []classify.Activity{
		makeActivity(t, "X", "TD", 3, "10:00:12"),
		makeActivity(t, "X", "TD", 1, "10:00:00"),
		makeActivity(t, "X", "TD", 2, "10:00:05"),
	}

	groups := GroupActivities(acts, DefaultWindow)
	if len(groups) != 1 {
		t.Fatalf("groups count = %d, want 1", len(groups))
	}
	members := groups[0].Activities
	for i := 1; i < len(members); i++ {
		if members[i].Timestamp.Before(members[i-1].Timestamp) {
			t.Fatalf("members out of chronological order at %d", i)
		}
	}
	if members[0].Station != 1 || members[2].Station != 3 {
		t.Errorf("stations in time order = %d..%d, want 1..3", members[0].Station, members[2].Station)
	}
}

func TestGroupActivities_Empty(t *testing.T) {
	if groups := GroupActivities(nil, DefaultWindow); len(groups) != 0 {
		t.Errorf("groups count = %d, want 0", len(groups))
	}
}

func TestGroupLabels(t *testing.T) {
	partial := Group{Username: "X", Prefix: "EX", Activities: []classify.Activity{
		makeActivity(t, "X", "EX", 1, "10:00:00"),
		makeActivity(t, "X", "EX", 2, "10:00:05"),
	}}
	if partial.Label() != "X (EX Partial Session)" {
		t.Errorf("label = %q, want %q", partial.Label(), "X (EX Partial Session)")
	}

	single := Group{Username: "X", Prefix: "TD", Activities: []classify.Activity{
		makeActivity(t, "X", "TD", 2, "10:00:00"),
	}}
	if single.Label() != "X (TD Single Station)" {
		t.Errorf("label = %q, want %q", single.Label(), "X (TD Single Station)")
	}
}
