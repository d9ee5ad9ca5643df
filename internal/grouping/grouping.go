package grouping

import (
	"fmt"
	"sort"
	"time"

	"rangeboard/internal/classify"
)

// DefaultWindow is how close an activity must be to a cluster's first
// member to join that cluster.
const DefaultWindow = 20 * time.Second

type Completeness string

const (
	Complete Completeness = "complete"
	Partial  Completeness = "partial"
	Single   Completeness = "single"
)

// Group is one reconstructed session: a run of time-proximate
// activities by one player under one drill prefix.
type Group struct {
	Username   string              `json:"username"`
	Prefix     string              `json:"activityPrefix"`
	Activities []classify.Activity `json:"activities"`
}

// Stations returns the distinct station numbers present, ascending.
func (g Group) Stations() []int {
	seen := make(map[int]bool)
	for _, a := range g.Activities {
		seen[a.Station] = true
	}
	stations := make([]int, 0, len(seen))
	for s := range seen {
		stations = append(stations, s)
	}
	sort.Ints(stations)
	return stations
}

// Completeness classifies the group by distinct station coverage:
// all of 1, 2 and 3 is a complete session, any two distinct stations a
// partial one, a lone station a single. Duplicate stations don't count
// twice, so two runs at station 1 plus one at station 2 is still
// partial.
func (g Group) Completeness() Completeness {
	stations := g.Stations()
	switch {
	case len(stations) == 3 && stations[0] == 1 && stations[1] == 2 && stations[2] == 3:
		return Complete
	case len(stations) >= 2:
		return Partial
	default:
		return Single
	}
}

// Label renders the display name the review table shows for a group.
func (g Group) Label() string {
	switch g.Completeness() {
	case Complete:
		return fmt.Sprintf("%s (%s Session)", g.Username, g.Prefix)
	case Partial:
		return fmt.Sprintf("%s (%s Partial Session)", g.Username, g.Prefix)
	default:
		return fmt.Sprintf("%s (%s Single Station)", g.Username, g.Prefix)
	}
}

// GroupActivities reconstructs sessions from classified activities.
// Activities are split by player (rows without a player name are
// dropped), sorted chronologically, split again by drill prefix, and
// then bucketed by time proximity in a single pass: an activity joins
// the first open cluster whose FIRST member is within the window,
// otherwise it opens a new cluster. The anchor never advances, so a
// slow drift past the window away from the first member starts a new
// session even when consecutive gaps are small. That matches the
// device's observed grouping and is kept on purpose.
//
// Output order is deterministic: players and prefixes in first-seen
// order, clusters in creation order, members chronological.
func GroupActivities(activities []classify.Activity, window time.Duration) []Group {
	if window <= 0 {
		window = DefaultWindow
	}

	byPlayer := make(map[string][]classify.Activity)
	var playerOrder []string
	for _, a := range activities {
		name := a.PlayerName
		if name == "" {
			continue
		}
		if _, seen := byPlayer[name]; !seen {
			playerOrder = append(playerOrder, name)
		}
		byPlayer[name] = append(byPlayer[name], a)
	}

	var groups []Group
	for _, player := range playerOrder {
		acts := byPlayer[player]
		sort.SliceStable(acts, func(i, j int) bool {
			return acts[i].Timestamp.Before(acts[j].Timestamp)
		})

		byPrefix := make(map[string][]classify.Activity)
		var prefixOrder []string
		for _, a := range acts {
			if _, seen := byPrefix[a.Prefix]; !seen {
				prefixOrder = append(prefixOrder, a.Prefix)
			}
			byPrefix[a.Prefix] = append(byPrefix[a.Prefix], a)
		}

		for _, prefix := range prefixOrder {
			for _, cluster := range clusterByTime(byPrefix[prefix], window) {
				groups = append(groups, Group{
					Username:   player,
					Prefix:     prefix,
					Activities: cluster,
				})
			}
		}
	}
	return groups
}

// clusterByTime buckets chronologically ordered activities against each
// cluster's first-member timestamp. First matching cluster wins.
func clusterByTime(acts []classify.Activity, window time.Duration) [][]classify.Activity {
	var clusters [][]classify.Activity
	for _, a := range acts {
		placed := false
		for i, cluster := range clusters {
			anchor := cluster[0].Timestamp
			if absDuration(a.Timestamp.Sub(anchor)) <= window {
				clusters[i] = append(clusters[i], a)
				placed = true
				break
			}
		}
		if !placed {
			clusters = append(clusters, []classify.Activity{a})
		}
	}
	return clusters
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
