package prefs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalytics_EmptyByDefault(t *testing.T) {
	p, _, _ := newTestPrefs()
	assert.Empty(t, p.Analytics())
}

func TestRecordClick_IncrementsByOne(t *testing.T) {
	p, _, _ := newTestPrefs()

	p.RecordClick(5)
	p.RecordClick(5)
	p.RecordClick(9)

	assert.Equal(t, map[int]int{5: 2, 9: 1}, p.Analytics())
}

func TestClearAnalytics_ErasesEverything(t *testing.T) {
	p, _, b := newTestPrefs()
	p.RecordClick(5)

	var notified int
	sub := b.Subscribe(KeyAnalytics, func(string) { notified++ })
	defer sub.Close()

	p.ClearAnalytics()

	assert.Empty(t, p.Analytics())
	assert.Equal(t, 1, notified)
}

func TestAnalytics_MalformedDataDegradesToEmpty(t *testing.T) {
	p, store, _ := newTestPrefs()
	require.NoError(t, store.Write(KeyAnalytics, []byte("[]")))
	assert.Empty(t, p.Analytics())
}

func TestAnalytics_BadKeysAndNegativesDropped(t *testing.T) {
	p, store, _ := newTestPrefs()
	require.NoError(t, store.Write(KeyAnalytics, []byte(`{"5":3,"x":1,"9":-2}`)))
	assert.Equal(t, map[int]int{5: 3}, p.Analytics())
}

func TestRecordClick_PublishesAnalyticsKey(t *testing.T) {
	p, _, b := newTestPrefs()

	var keys []string
	sub := b.Subscribe(KeyAnalytics, func(key string) { keys = append(keys, key) })
	defer sub.Close()

	p.RecordClick(1)
	assert.Equal(t, []string{KeyAnalytics}, keys)
}
