package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"uniscope/internal/catalog"
)

var favoritesCmd = &cobra.Command{
	Use:   "favorites",
	Short: "Manage your favorite universities",
}

var favoritesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List favorite universities",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer a.Close()

		favs := a.prefs.Favorites()
		if len(favs) == 0 {
			fmt.Println("No favorites yet.")
			return nil
		}

		// Names are best-effort: the list still prints when offline with an
		// empty snapshot.
		var byID map[int]*catalog.University
		if list, err := a.catalog.Universities(cmd.Context()); err == nil {
			byID = catalog.ByID(list)
		}
		for _, id := range favs {
			fmt.Printf("%4d  %s\n", id, catalog.DisplayName(byID[id], id, a.cfg.Locale))
		}
		return nil
	},
}

var favoritesAddCmd = &cobra.Command{
	Use:   "add [id]",
	Short: "Add a university to favorites",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutateFavorite(cmd, args[0], true)
	},
}

var favoritesRemoveCmd = &cobra.Command{
	Use:   "remove [id]",
	Short: "Remove a university from favorites",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutateFavorite(cmd, args[0], false)
	},
}

func mutateFavorite(cmd *cobra.Command, arg string, add bool) error {
	id, err := strconv.Atoi(arg)
	if err != nil {
		return fmt.Errorf("invalid university id %q", arg)
	}

	a, err := newApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer a.Close()

	if add {
		a.prefs.AddFavorite(id)
		fmt.Printf("Added %d to favorites.\n", id)
	} else {
		a.prefs.RemoveFavorite(id)
		fmt.Printf("Removed %d from favorites.\n", id)
	}
	return nil
}

func init() {
	favoritesCmd.AddCommand(favoritesListCmd)
	favoritesCmd.AddCommand(favoritesAddCmd)
	favoritesCmd.AddCommand(favoritesRemoveCmd)
}
