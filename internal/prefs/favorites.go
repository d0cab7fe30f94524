package prefs

import (
	"encoding/json"

	"go.uber.org/zap"
)

// Favorites returns the favorite university ids. The persisted form is a
// JSON array of ids; an older deployment stored full university objects
// instead, so the first read of a legacy array migrates it: ids are
// extracted, deduplicated, nulls dropped, and the id-only form is written
// back. The migration is idempotent: an id-only array passes through
// untouched. Parse failures and absence both yield an empty list.
func (p *Preferences) Favorites() []int {
	data, err := p.store.Read(KeyFavorites)
	if err != nil {
		if err != ErrNotFound {
			p.logger.Warn("failed to read favorites", zap.Error(err))
		}
		return nil
	}

	var raw []interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		p.logger.Warn("malformed favorites, using empty list", zap.Error(err))
		return nil
	}

	ids, legacy := normalizeFavorites(raw)
	if legacy {
		if ids == nil {
			ids = []int{}
		}
		// One-time shape upgrade; written back so the next reader (in any
		// process) sees the id-only form.
		p.write(KeyFavorites, ids)
	}
	return ids
}

// normalizeFavorites turns the decoded array into id-only form. legacy
// reports whether the input used the old array-of-objects shape.
func normalizeFavorites(raw []interface{}) (ids []int, legacy bool) {
	seen := make(map[int]bool)
	for _, item := range raw {
		switch v := item.(type) {
		case float64:
			id := int(v)
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		case map[string]interface{}:
			legacy = true
			if f, ok := v["id"].(float64); ok {
				id := int(f)
				if !seen[id] {
					seen[id] = true
					ids = append(ids, id)
				}
			}
		default:
			// nulls and anything unrecognized are dropped
		}
	}
	return ids, legacy
}

// IsFavorite reports membership of the id in the favorite set.
func (p *Preferences) IsFavorite(id int) bool {
	for _, fav := range p.Favorites() {
		if fav == id {
			return true
		}
	}
	return false
}

// AddFavorite inserts the id if absent.
func (p *Preferences) AddFavorite(id int) {
	favs := p.Favorites()
	for _, fav := range favs {
		if fav == id {
			return
		}
	}
	p.write(KeyFavorites, append(favs, id))
}

// RemoveFavorite deletes the id if present. State propagates through the
// bus; no view reload is needed.
func (p *Preferences) RemoveFavorite(id int) {
	favs := p.Favorites()
	kept := favs[:0]
	for _, fav := range favs {
		if fav != id {
			kept = append(kept, fav)
		}
	}
	if len(kept) == len(favs) {
		return
	}
	p.write(KeyFavorites, kept)
}

// ToggleFavorite flips membership and reports the new state.
func (p *Preferences) ToggleFavorite(id int) bool {
	if p.IsFavorite(id) {
		p.RemoveFavorite(id)
		return false
	}
	p.AddFavorite(id)
	return true
}
