package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"uniscope/internal/catalog"
)

var universitiesCmd = &cobra.Command{
	Use:   "universities",
	Short: "List universities",
}

var universitiesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all universities",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer a.Close()

		list, err := a.catalog.Universities(cmd.Context())
		if err != nil {
			return err
		}

		favs := make(map[int]bool)
		for _, id := range a.prefs.Favorites() {
			favs[id] = true
		}

		for _, u := range list {
			marker := " "
			if favs[u.ID] {
				marker = "*"
			}
			fmt.Printf("%s %4d  %s\n", marker, u.ID, catalog.DisplayName(&u, u.ID, a.cfg.Locale))
		}
		return nil
	},
}

var universitiesLeaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "List universities ranked by average rating",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer a.Close()

		list, err := a.catalog.Leaderboard(cmd.Context())
		if err != nil {
			return err
		}
		for i, u := range list {
			fmt.Printf("%2d. %s\n", i+1, catalog.DisplayName(&u, u.ID, a.cfg.Locale))
		}
		return nil
	},
}

var universitiesShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show one university's details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid university id %q", args[0])
		}

		a, err := newApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer a.Close()

		list, err := a.catalog.Universities(cmd.Context())
		if err != nil {
			return err
		}
		u := catalog.ByID(list)[id]
		if u == nil {
			return fmt.Errorf("no university with id %d", id)
		}

		// Showing details counts as a visit, same as opening the detail view
		// in the browser.
		a.prefs.RecordClick(id)

		locale := a.cfg.Locale
		fmt.Println(catalog.DisplayName(u, id, locale))
		if d := u.Description.Resolve(locale); d != "" {
			fmt.Println()
			fmt.Println(d)
		}
		if u.ApplicationDeadline != "" {
			fmt.Printf("\nApplication deadline: %s\n", u.ApplicationDeadline)
		}
		if u.OfficialLink != "" {
			fmt.Printf("Official site: %s\n", u.OfficialLink)
		}
		return nil
	},
}

func init() {
	universitiesCmd.AddCommand(universitiesListCmd)
	universitiesCmd.AddCommand(universitiesLeaderboardCmd)
	universitiesCmd.AddCommand(universitiesShowCmd)
}
