package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"uniscope/internal/analytics"
	"uniscope/internal/prefs"
)

// reportMsg carries a freshly computed analytics report.
type reportMsg analytics.Report

// DashboardModel is the live analytics dashboard: totals, the top-10
// ranking with percentage bars, and a guarded clear-all action. Reports
// stream in from the refresher; the model never computes anything itself.
type DashboardModel struct {
	refresher *analytics.Refresher
	prefs     *prefs.Preferences
	styles    Styles
	logger    *zap.Logger

	report  analytics.Report
	haveOne bool
	confirm bool
	width   int
}

// NewDashboard builds the dashboard model. The caller owns the refresher's
// lifecycle: Start before running the program, Stop after.
func NewDashboard(r *analytics.Refresher, p *prefs.Preferences, logger *zap.Logger) *DashboardModel {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardModel{
		refresher: r,
		prefs:     p,
		styles:    NewStyles(DetectTheme()),
		logger:    logger,
	}
}

// Init starts listening for reports.
func (m *DashboardModel) Init() tea.Cmd {
	return m.waitForReport()
}

func (m *DashboardModel) waitForReport() tea.Cmd {
	return func() tea.Msg {
		return reportMsg(<-m.refresher.Reports())
	}
}

// Update handles messages.
func (m *DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case reportMsg:
		m.report = analytics.Report(msg)
		m.haveOne = true
		return m, m.waitForReport()

	case tea.KeyMsg:
		if m.confirm {
			switch msg.String() {
			case "y":
				m.prefs.ClearAnalytics()
				m.confirm = false
			default:
				m.confirm = false
			}
			return m, nil
		}
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case "c":
			m.confirm = true
		}
	}
	return m, nil
}

// View renders the dashboard.
func (m *DashboardModel) View() string {
	var sb strings.Builder
	sb.WriteString(m.styles.Header.Render("uniscope analytics"))
	sb.WriteString("\n\n")

	if !m.haveOne {
		sb.WriteString(m.styles.Muted.Render("collecting…") + "\n")
		return sb.String()
	}

	r := m.report
	fmt.Fprintf(&sb, "%s %d    %s %d    %s %.1f\n\n",
		m.styles.Title.Render("total clicks"), r.Total,
		m.styles.Title.Render("tracked"), r.Tracked,
		m.styles.Title.Render("avg/university"), r.AverageClicks())

	if len(r.Entries) == 0 {
		sb.WriteString(m.styles.Muted.Render("no clicks recorded yet, open some detail views") + "\n")
	} else {
		nameWidth := 0
		for _, e := range r.Entries {
			if len(e.Name) > nameWidth {
				nameWidth = len(e.Name)
			}
		}
		if nameWidth > 32 {
			nameWidth = 32
		}
		for i, e := range r.Entries {
			name := e.Name
			if len(name) > nameWidth {
				name = name[:nameWidth-1] + "…"
			}
			fmt.Fprintf(&sb, "%2d. %-*s %5s%%  %s %d\n",
				i+1, nameWidth, name, e.Percent,
				m.styles.Bar.Render(percentBar(e.Percent)), e.Clicks)
		}
	}

	sb.WriteString("\n")
	if m.confirm {
		sb.WriteString(m.styles.Error.Render("clear all analytics? y/n"))
	} else {
		sb.WriteString(m.styles.Footer.Render("c clear all · q quit"))
	}
	return sb.String()
}

// percentBar draws a bar scaled to 20 cells at 100%.
func percentBar(percent string) string {
	var f float64
	fmt.Sscanf(percent, "%f", &f)
	n := int(f / 5)
	if n > 20 {
		n = 20
	}
	if n == 0 && f > 0 {
		n = 1
	}
	return strings.Repeat("█", n)
}
