package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"uniscope/internal/tui"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Interactively browse universities",
	Long: `Opens the interactive browser: a card list of all universities with
favorite markers, detail views with descriptions and ratings, and keys to
favorite (f), rate (1-5), and filter to favorites only (v).`,
	RunE: runBrowse,
}

func runBrowse(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer a.Close()

	model := tui.NewBrowse(tui.BrowseDeps{
		Catalog:  a.catalog,
		Prefs:    a.prefs,
		Sessions: a.sessions,
		Ratings:  a.ratings,
		Bus:      a.bus,
		Locale:   a.cfg.Locale,
		Logger:   logger,
	})
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
