package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"uniscope/internal/rating"
	"uniscope/internal/session"
)

var rateCmd = &cobra.Command{
	Use:   "rate [id] [score]",
	Short: "Rate a university from 1 to 5",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid university id %q", args[0])
		}
		score, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid score %q", args[1])
		}

		a, err := newApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.ratings.Submit(cmd.Context(), id, score); err != nil {
			if errors.Is(err, session.ErrNotAuthenticated) {
				return errors.New("you need to sign in first: run `uniscope login`")
			}
			return err
		}
		fmt.Printf("Rated university %d: %d/5.\n", id, score)
		return nil
	},
}

var ratingCmd = &cobra.Command{
	Use:   "rating [id]",
	Short: "Show a university's average rating",
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

		st := a.ratings.Get(cmd.Context(), id)
		if st.State != rating.HasAverage {
			fmt.Println("No ratings yet.")
			return nil
		}
		fmt.Printf("Average rating: %.1f / 5\n", st.Average)
		return nil
	},
}
