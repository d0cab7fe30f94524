// Package analytics derives dashboard figures from the raw click-counter
// map: totals, per-university percentages, and a top-10 ranking.
package analytics

import (
	"fmt"
	"sort"

	"uniscope/internal/catalog"
)

// TopN is how many ranked entries a report carries.
const TopN = 10

// Entry is one ranked university.
type Entry struct {
	ID      int
	Name    string
	Clicks  int
	Percent string // one decimal, e.g. "70.0"; "0" when there are no clicks
}

// Report is the aggregate view over the analytics map.
type Report struct {
	Total   int     // sum of all clicks
	Tracked int     // universities with at least one click
	Entries []Entry // descending by clicks, at most TopN
}

// AverageClicks is Total spread over Tracked, or zero with nothing tracked.
func (r Report) AverageClicks() float64 {
	if r.Tracked == 0 {
		return 0
	}
	return float64(r.Total) / float64(r.Tracked)
}

// BuildReport computes the report. It is a pure function of its inputs:
// deterministic for a fixed map, tie-broken by ascending id. Names resolve
// through the locale fallback chain, ending at the "University #<id>"
// placeholder when the entity is not in the lookup.
func BuildReport(counts map[int]int, lookup map[int]*catalog.University, locale string) Report {
	total := 0
	for _, n := range counts {
		total += n
	}

	entries := make([]Entry, 0, len(counts))
	for id, n := range counts {
		percent := "0"
		if total > 0 {
			percent = fmt.Sprintf("%.1f", float64(n)/float64(total)*100)
		}
		entries = append(entries, Entry{
			ID:      id,
			Name:    catalog.DisplayName(lookup[id], id, locale),
			Clicks:  n,
			Percent: percent,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Clicks != entries[j].Clicks {
			return entries[i].Clicks > entries[j].Clicks
		}
		return entries[i].ID < entries[j].ID
	})

	tracked := len(entries)
	if len(entries) > TopN {
		entries = entries[:TopN]
	}

	return Report{Total: total, Tracked: tracked, Entries: entries}
}
