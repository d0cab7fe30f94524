package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"uniscope/internal/analytics"
	"uniscope/internal/catalog"
	"uniscope/internal/tui"
)

var analyticsYes bool

var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Local click analytics for university detail views",
}

var analyticsReportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the analytics report",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer a.Close()

		var byID map[int]*catalog.University
		if list, err := a.catalog.Universities(cmd.Context()); err == nil {
			byID = catalog.ByID(list)
		}

		r := analytics.BuildReport(a.prefs.Analytics(), byID, a.cfg.Locale)
		fmt.Printf("Total clicks: %d across %d universities\n", r.Total, r.Tracked)
		if len(r.Entries) == 0 {
			fmt.Println("No clicks recorded yet.")
			return nil
		}
		for i, e := range r.Entries {
			fmt.Printf("%2d. %-40s %5s%%  %d\n", i+1, e.Name, e.Percent, e.Clicks)
		}
		return nil
	},
}

var analyticsDashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Live analytics dashboard",
	Long: `Opens the live dashboard. It refreshes whenever any uniscope process
records a click, and on a short timer as a fallback.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer a.Close()

		// One catalog snapshot for the dashboard's lifetime; the refresher
		// re-reads only the click counters.
		var byID map[int]*catalog.University
		if list, err := a.catalog.Universities(cmd.Context()); err == nil {
			byID = catalog.ByID(list)
		}
		lookup := func() map[int]*catalog.University { return byID }

		r := analytics.NewRefresher(a.prefs, a.bus, lookup, a.cfg.Locale, logger)
		r.Start()
		defer r.Stop()

		p := tea.NewProgram(tui.NewDashboard(r, a.prefs, logger), tea.WithAltScreen())
		_, err = p.Run()
		return err
	},
}

var analyticsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Erase all recorded clicks",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !analyticsYes {
			fmt.Print("Erase all recorded clicks? [y/N] ")
			line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
			if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(line)), "y") {
				fmt.Println("Aborted.")
				return nil
			}
		}

		a, err := newApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer a.Close()

		a.prefs.ClearAnalytics()
		fmt.Println("Analytics cleared.")
		return nil
	},
}

func init() {
	analyticsClearCmd.Flags().BoolVarP(&analyticsYes, "yes", "y", false, "Skip the confirmation prompt")
	analyticsCmd.AddCommand(analyticsReportCmd)
	analyticsCmd.AddCommand(analyticsDashboardCmd)
	analyticsCmd.AddCommand(analyticsClearCmd)
}
