package analytics

import (
	"fmt"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uniscope/internal/catalog"
)

func namedLookup(ids ...int) map[int]*catalog.University {
	m := make(map[int]*catalog.University, len(ids))
	for _, id := range ids {
		m[id] = &catalog.University{ID: id, Name: catalog.MultilingualField{EN: fmt.Sprintf("Uni %d", id)}}
	}
	return m
}

func TestBuildReport_PercentagesAndOrder(t *testing.T) {
	counts := map[int]int{5: 3, 9: 7}

	got := BuildReport(counts, namedLookup(5, 9), "en")

	want := Report{
		Total:   10,
		Tracked: 2,
		Entries: []Entry{
			{ID: 9, Name: "Uni 9", Clicks: 7, Percent: "70.0"},
			{ID: 5, Name: "Uni 5", Clicks: 3, Percent: "30.0"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("report mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildReport_EmptyMap(t *testing.T) {
	got := BuildReport(nil, nil, "en")
	assert.Equal(t, 0, got.Total)
	assert.Equal(t, 0, got.Tracked)
	assert.Empty(t, got.Entries)
	assert.Zero(t, got.AverageClicks())
}

func TestBuildReport_ZeroTotalRendersZeroPercent(t *testing.T) {
	// Counters are never negative and clears drop the key entirely, but a
	// stored zero must not divide by zero.
	got := BuildReport(map[int]int{4: 0}, nil, "en")
	require.Len(t, got.Entries, 1)
	assert.Equal(t, "0", got.Entries[0].Percent)
}

func TestBuildReport_TieBreaksByAscendingID(t *testing.T) {
	counts := map[int]int{30: 2, 10: 2, 20: 2}

	got := BuildReport(counts, nil, "en")

	var ids []int
	for _, e := range got.Entries {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []int{10, 20, 30}, ids)
}

func TestBuildReport_TruncatesToTopTen(t *testing.T) {
	counts := make(map[int]int)
	for id := 1; id <= 15; id++ {
		counts[id] = id // more clicks for higher ids
	}

	got := BuildReport(counts, nil, "en")

	require.Len(t, got.Entries, TopN)
	assert.Equal(t, 15, got.Tracked, "tracked counts beyond the cutoff")
	assert.Equal(t, 15, got.Entries[0].ID)
	assert.Equal(t, 6, got.Entries[TopN-1].ID)
}

func TestBuildReport_PercentagesSumToRoughlyHundred(t *testing.T) {
	counts := map[int]int{1: 1, 2: 1, 3: 1} // 33.3 each, rounding loss expected

	got := BuildReport(counts, nil, "en")

	sum := 0.0
	for _, e := range got.Entries {
		f, err := strconv.ParseFloat(e.Percent, 64)
		require.NoError(t, err)
		sum += f
	}
	assert.InDelta(t, 100.0, sum, 0.5)
}

func TestBuildReport_PlaceholderNameForUnknownEntity(t *testing.T) {
	got := BuildReport(map[int]int{77: 1}, namedLookup(5), "en")
	require.Len(t, got.Entries, 1)
	assert.Equal(t, "University #77", got.Entries[0].Name)
}

func TestAverageClicks(t *testing.T) {
	got := BuildReport(map[int]int{1: 4, 2: 2}, nil, "en")
	assert.InDelta(t, 3.0, got.AverageClicks(), 1e-9)
}
