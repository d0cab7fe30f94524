// Package catalog holds the university entities and the service that fetches
// them from the backend, with a local SQLite snapshot so browsing still works
// when the backend is unreachable.
package catalog

import "fmt"

// MultilingualField is a backend text field with one value per locale.
type MultilingualField struct {
	EN string `json:"en"`
	RU string `json:"ru"`
	TM string `json:"tm"`
}

// Resolve returns the requested locale's value, falling back to English,
// then to empty. Safe on a nil receiver: optional fields stay optional.
func (f *MultilingualField) Resolve(locale string) string {
	if f == nil {
		return ""
	}
	var v string
	switch locale {
	case "ru":
		v = f.RU
	case "tm":
		v = f.TM
	default:
		v = f.EN
	}
	if v == "" {
		v = f.EN
	}
	return v
}

// University is the backend's university record. JSON names follow the wire
// format exactly, quirks included ("photolr1", "donitory").
type University struct {
	ID                  int                `json:"id"`
	PhotoURL            string             `json:"photolr1"`
	Name                MultilingualField  `json:"name"`
	Description         MultilingualField  `json:"description"`
	Specials            *MultilingualField `json:"specials"`
	Financing           *MultilingualField `json:"financing"`
	Duration            *MultilingualField `json:"duration"`
	ApplicationDeadline string             `json:"applicationDeadline"`
	Gender              *MultilingualField `json:"gender"`
	Age                 int                `json:"age"`
	Others              *MultilingualField `json:"others"`
	Medicine            *MultilingualField `json:"medicine"`
	Salary              *MultilingualField `json:"salary"`
	Dormitory           *MultilingualField `json:"donitory"`
	Rewards             *MultilingualField `json:"rewards"`
	OthersP             *MultilingualField `json:"others_p"`
	OfficialLink        string             `json:"officialLink"`
}

// DisplayName resolves a university's name for the locale, with the full
// fallback chain: locale value, then English, then a placeholder label when
// the entity itself is unknown or unnamed.
func DisplayName(u *University, id int, locale string) string {
	if u != nil {
		if name := u.Name.Resolve(locale); name != "" {
			return name
		}
	}
	return fmt.Sprintf("University #%d", id)
}

// ByID indexes a university list for entity lookups.
func ByID(list []University) map[int]*University {
	m := make(map[int]*University, len(list))
	for i := range list {
		m[list[i].ID] = &list[i]
	}
	return m
}
