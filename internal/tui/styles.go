// Package tui implements the interactive terminal views: the university
// browser with detail cards and ratings, and the live analytics dashboard.
package tui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Light mode colors
	LightForeground = lipgloss.Color("#1b2a41")
	LightPrimary    = lipgloss.Color("#1b2a41")
	LightAccent     = lipgloss.Color("#3f88c5")
	LightMuted      = lipgloss.Color("#8a97a8")
	LightBorder     = lipgloss.Color("#d8dee6")
	LightCard       = lipgloss.Color("#ffffff")

	// Dark mode colors
	DarkForeground = lipgloss.Color("#e8ecf1")
	DarkPrimary    = lipgloss.Color("#3f88c5")
	DarkAccent     = lipgloss.Color("#ffba49")
	DarkMuted      = lipgloss.Color("#5c6b7f")
	DarkBorder     = lipgloss.Color("#2b3a4e")
	DarkCard       = lipgloss.Color("#16222f")

	// Semantic colors, same in both modes
	Favorite = lipgloss.Color("#e63946")
	Star     = lipgloss.Color("#ffba49")
	Success  = lipgloss.Color("#57a773")
	Danger   = lipgloss.Color("#e63946")
)

// Theme holds the current color scheme.
type Theme struct {
	Foreground lipgloss.Color
	Primary    lipgloss.Color
	Accent     lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	Card       lipgloss.Color
	IsDark     bool
}

// LightTheme returns the light mode theme.
func LightTheme() Theme {
	return Theme{
		Foreground: LightForeground,
		Primary:    LightPrimary,
		Accent:     LightAccent,
		Muted:      LightMuted,
		Border:     LightBorder,
		Card:       LightCard,
	}
}

// DarkTheme returns the dark mode theme.
func DarkTheme() Theme {
	return Theme{
		Foreground: DarkForeground,
		Primary:    DarkPrimary,
		Accent:     DarkAccent,
		Muted:      DarkMuted,
		Border:     DarkBorder,
		Card:       DarkCard,
		IsDark:     true,
	}
}

// DetectTheme picks dark or light based on the terminal background.
func DetectTheme() Theme {
	if os.Getenv("UNISCOPE_DARK_MODE") == "1" {
		return DarkTheme()
	}

	// COLORFGBG is "foreground;background"; low background indexes mean a
	// dark terminal.
	if fgbg := os.Getenv("COLORFGBG"); fgbg != "" {
		parts := strings.Split(fgbg, ";")
		if len(parts) == 2 {
			if bg, err := strconv.Atoi(parts[1]); err == nil {
				if (bg >= 0 && bg <= 6) || bg == 8 {
					return DarkTheme()
				}
			}
		}
	}

	return LightTheme()
}

// Styles holds all styled components.
type Styles struct {
	Theme Theme

	Header   lipgloss.Style
	Footer   lipgloss.Style
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Body     lipgloss.Style
	Muted    lipgloss.Style

	Card         lipgloss.Style
	SelectedCard lipgloss.Style
	Favorite     lipgloss.Style
	Stars        lipgloss.Style
	Success      lipgloss.Style
	Error        lipgloss.Style
	Badge        lipgloss.Style
	Bar          lipgloss.Style
}

// NewStyles creates a Styles instance for the theme.
func NewStyles(theme Theme) Styles {
	return Styles{
		Theme: theme,

		Header: lipgloss.NewStyle().
			Background(theme.Primary).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 2).
			Bold(true),

		Footer: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Padding(0, 2),

		Title: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),

		Subtitle: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Italic(true),

		Body: lipgloss.NewStyle().
			Foreground(theme.Foreground),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),

		SelectedCard: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Accent).
			Padding(0, 1),

		Favorite: lipgloss.NewStyle().
			Foreground(Favorite).
			Bold(true),

		Stars: lipgloss.NewStyle().
			Foreground(Star),

		Success: lipgloss.NewStyle().
			Foreground(Success).
			Bold(true),

		Error: lipgloss.NewStyle().
			Foreground(Danger).
			Bold(true),

		Badge: lipgloss.NewStyle().
			Background(theme.Accent).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 1),

		Bar: lipgloss.NewStyle().
			Foreground(theme.Accent),
	}
}
