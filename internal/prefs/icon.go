package prefs

import "encoding/json"

// IconChoice is one of the fixed profile icon variants.
type IconChoice string

const (
	IconGraduate IconChoice = "graduate"
	IconCompass  IconChoice = "compass"
	IconGlobe    IconChoice = "globe"
	IconBook     IconChoice = "book"
	IconStar     IconChoice = "star"
)

// IconVariants lists the selectable icons. The first entry is the default.
func IconVariants() []IconChoice {
	return []IconChoice{IconGraduate, IconCompass, IconGlobe, IconBook, IconStar}
}

// Icon returns the selected profile icon. Unset, unparseable, or a value
// that is no longer in the variant set all resolve to the default.
func (p *Preferences) Icon() IconChoice {
	def := IconVariants()[0]

	data, err := p.store.Read(KeyIcon)
	if err != nil {
		return def
	}
	var choice IconChoice
	if err := json.Unmarshal(data, &choice); err != nil {
		return def
	}
	for _, v := range IconVariants() {
		if choice == v {
			return choice
		}
	}
	return def
}

// SetIcon persists the choice. Unknown values are ignored.
func (p *Preferences) SetIcon(choice IconChoice) {
	for _, v := range IconVariants() {
		if choice == v {
			p.write(KeyIcon, choice)
			return
		}
	}
	p.logger.Warn("ignoring unknown icon variant")
}
