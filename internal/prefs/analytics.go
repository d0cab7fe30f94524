package prefs

import (
	"encoding/json"
	"strconv"

	"go.uber.org/zap"
)

// Analytics returns the click-counter map: university id to number of times
// its detail view was opened. Absence or a parse failure yields an empty map.
func (p *Preferences) Analytics() map[int]int {
	counts := make(map[int]int)

	data, err := p.store.Read(KeyAnalytics)
	if err != nil {
		if err != ErrNotFound {
			p.logger.Warn("failed to read analytics", zap.Error(err))
		}
		return counts
	}

	// JSON object keys are strings; ids are parsed back to ints and
	// anything unparseable is dropped.
	var raw map[string]int
	if err := json.Unmarshal(data, &raw); err != nil {
		p.logger.Warn("malformed analytics, using empty map", zap.Error(err))
		return counts
	}
	for k, v := range raw {
		id, err := strconv.Atoi(k)
		if err != nil || v < 0 {
			continue
		}
		counts[id] = v
	}
	return counts
}

// RecordClick increments the counter for a university by exactly one.
// Called when a detail view opens.
func (p *Preferences) RecordClick(id int) {
	counts := p.Analytics()
	counts[id]++
	p.write(KeyAnalytics, encodeAnalytics(counts))
}

// ClearAnalytics erases the entire map. This is the only operation that
// ever decreases a counter.
func (p *Preferences) ClearAnalytics() {
	if err := p.store.Delete(KeyAnalytics); err != nil {
		p.logger.Warn("failed to clear analytics", zap.Error(err))
		return
	}
	p.bus.Publish(KeyAnalytics)
}

func encodeAnalytics(counts map[int]int) map[string]int {
	out := make(map[string]int, len(counts))
	for id, n := range counts {
		out[strconv.Itoa(id)] = n
	}
	return out
}
