package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"

	"uniscope/internal/bus"
	"uniscope/internal/catalog"
	"uniscope/internal/prefs"
	"uniscope/internal/rating"
	"uniscope/internal/session"
)

// browseMode tracks which screen the browser shows.
type browseMode int

const (
	browseLoading browseMode = iota
	browseList
	browseDetail
)

// BrowseDeps are the collaborators the browser needs.
type BrowseDeps struct {
	Catalog  *catalog.Service
	Prefs    *prefs.Preferences
	Sessions *session.Manager
	Ratings  *rating.Cache
	Bus      bus.ChangeBus
	Locale   string
	Logger   *zap.Logger
}

// Messages flowing through the browse Update loop.
type (
	universitiesMsg struct {
		list []catalog.University
		err  error
	}
	storageChangedMsg  string
	ratingFetchedMsg   struct{ id int }
	ratingSubmittedMsg struct {
		id  int
		err error
	}
	ratingRefreshMsg struct{ id int }
)

// BrowseModel is the interactive university browser: a card list with
// favorite toggles, and a detail screen with the description and ratings.
type BrowseModel struct {
	deps   BrowseDeps
	styles Styles

	mode          browseMode
	universities  []catalog.University
	favorites     map[int]bool
	favoritesOnly bool
	cursor        int
	detailID      int

	width  int
	height int

	spin     spinner.Model
	viewport viewport.Model
	renderer *glamour.TermRenderer

	status  string
	loadErr error

	changes chan string
	sub     *bus.Subscription
	closed  bool
}

// NewBrowse builds the browser model. Call Close after the program exits.
func NewBrowse(deps BrowseDeps) *BrowseModel {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	styles := NewStyles(DetectTheme())

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Muted

	m := &BrowseModel{
		deps:      deps,
		styles:    styles,
		spin:      sp,
		viewport:  viewport.New(80, 20),
		favorites: make(map[int]bool),
		changes:   make(chan string, 16),
	}
	// The handler runs on the publisher's goroutine; a full channel drops
	// the notification, which is safe because reads always re-fetch state.
	m.sub = deps.Bus.Subscribe(bus.KeyAny, func(key string) {
		select {
		case m.changes <- key:
		default:
		}
	})
	m.reloadFavorites()
	return m
}

// Close tears down the bus subscription. Idempotent.
func (m *BrowseModel) Close() {
	if m.closed {
		return
	}
	m.closed = true
	m.sub.Close()
}

// Init kicks off the catalog load and the change listener.
func (m *BrowseModel) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.loadUniversities(), m.waitForChange())
}

func (m *BrowseModel) loadUniversities() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		list, err := m.deps.Catalog.Universities(ctx)
		return universitiesMsg{list: list, err: err}
	}
}

func (m *BrowseModel) waitForChange() tea.Cmd {
	return func() tea.Msg {
		key, ok := <-m.changes
		if !ok {
			return nil
		}
		return storageChangedMsg(key)
	}
}

func (m *BrowseModel) fetchRating(id int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		m.deps.Ratings.Get(ctx, id)
		return ratingFetchedMsg{id: id}
	}
}

func (m *BrowseModel) submitRating(id, score int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return ratingSubmittedMsg{id: id, err: m.deps.Ratings.Submit(ctx, id, score)}
	}
}

func (m *BrowseModel) reloadFavorites() {
	favs := make(map[int]bool)
	for _, id := range m.deps.Prefs.Favorites() {
		favs[id] = true
	}
	m.favorites = favs
}

// visible returns the card list with the favorites filter applied.
func (m *BrowseModel) visible() []catalog.University {
	if !m.favoritesOnly {
		return m.universities
	}
	var out []catalog.University
	for _, u := range m.universities {
		if m.favorites[u.ID] {
			out = append(out, u)
		}
	}
	return out
}

func (m *BrowseModel) clampCursor() {
	if n := len(m.visible()); m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// Update handles messages.
func (m *BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - 4
		m.renderer = nil // re-create at the new wrap width
		if m.mode == browseDetail {
			m.renderDetail()
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case universitiesMsg:
		if msg.err != nil {
			m.loadErr = msg.err
			m.mode = browseList
			return m, nil
		}
		m.loadErr = nil
		m.universities = msg.list
		m.mode = browseList
		m.clampCursor()
		return m, nil

	case storageChangedMsg:
		// Level-triggered: the key only says what changed, state is re-read.
		switch string(msg) {
		case prefs.KeyFavorites:
			m.reloadFavorites()
			m.clampCursor()
		case session.KeyToken, session.KeyUser:
			m.status = ""
		}
		return m, m.waitForChange()

	case ratingFetchedMsg, ratingRefreshMsg:
		if m.mode == browseDetail {
			m.renderDetail()
		}
		return m, nil

	case ratingSubmittedMsg:
		if msg.err != nil {
			if errors.Is(msg.err, session.ErrNotAuthenticated) {
				m.status = "sign in to rate: run `uniscope login`"
			} else {
				m.status = "rating failed: " + msg.err.Error()
			}
			return m, nil
		}
		m.status = "rating submitted"
		if m.mode == browseDetail {
			m.renderDetail()
		}
		// Check back in after the cache's re-fetch replaces the interim value.
		delay := m.deps.Ratings.RefetchDelay + 250*time.Millisecond
		return m, tea.Tick(delay, func(time.Time) tea.Msg {
			return ratingRefreshMsg{id: msg.id}
		})

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.mode == browseDetail {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *BrowseModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	}

	if m.mode == browseDetail {
		return m.handleDetailKey(msg)
	}

	switch msg.String() {
	case "up", "k":
		m.cursor--
		m.clampCursor()
	case "down", "j":
		m.cursor++
		m.clampCursor()
	case "f":
		if u := m.selected(); u != nil {
			if m.deps.Prefs.ToggleFavorite(u.ID) {
				m.status = "added to favorites"
			} else {
				m.status = "removed from favorites"
			}
			m.reloadFavorites()
			m.clampCursor()
		}
	case "v":
		m.favoritesOnly = !m.favoritesOnly
		m.cursor = 0
	case "r":
		m.mode = browseLoading
		return m, tea.Batch(m.spin.Tick, m.loadUniversities())
	case "enter":
		if u := m.selected(); u != nil {
			m.deps.Prefs.RecordClick(u.ID)
			m.detailID = u.ID
			m.mode = browseDetail
			m.status = ""
			m.renderDetail()
			m.viewport.GotoTop()
			return m, m.fetchRating(u.ID)
		}
	}
	return m, nil
}

func (m *BrowseModel) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "backspace":
		m.mode = browseList
		m.status = ""
		return m, nil
	case "f":
		m.deps.Prefs.ToggleFavorite(m.detailID)
		m.reloadFavorites()
		m.renderDetail()
		return m, nil
	case "1", "2", "3", "4", "5":
		score := int(msg.String()[0] - '0')
		return m, m.submitRating(m.detailID, score)
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *BrowseModel) selected() *catalog.University {
	vis := m.visible()
	if m.cursor < 0 || m.cursor >= len(vis) {
		return nil
	}
	return &vis[m.cursor]
}

// renderDetail rebuilds the viewport content for the current detail entity.
func (m *BrowseModel) renderDetail() {
	u := catalog.ByID(m.universities)[m.detailID]
	md := m.detailMarkdown(u)

	if m.renderer == nil {
		width := m.width - 4
		if width < 20 {
			width = 76
		}
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			m.deps.Logger.Warn("markdown renderer unavailable", zap.Error(err))
		} else {
			m.renderer = r
		}
	}

	out := md
	if m.renderer != nil {
		if rendered, err := m.renderer.Render(md); err == nil {
			out = rendered
		}
	}
	m.viewport.SetContent(out)
}

// detailMarkdown assembles the detail card as markdown for glamour.
func (m *BrowseModel) detailMarkdown(u *catalog.University) string {
	locale := m.deps.Locale
	name := catalog.DisplayName(u, m.detailID, locale)

	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", name)

	if m.favorites[m.detailID] {
		sb.WriteString("❤ in favorites\n\n")
	}
	fmt.Fprintf(&sb, "**Rating:** %s\n\n", m.ratingLine(m.detailID))

	if u == nil {
		sb.WriteString("_No details available._\n")
		return sb.String()
	}

	if d := u.Description.Resolve(locale); d != "" {
		sb.WriteString(d + "\n\n")
	}

	section := func(label string, f *catalog.MultilingualField) {
		if v := f.Resolve(locale); v != "" {
			fmt.Fprintf(&sb, "## %s\n\n%s\n\n", label, v)
		}
	}
	section("Specials", u.Specials)
	section("Financing", u.Financing)
	section("Duration", u.Duration)
	section("Dormitory", u.Dormitory)
	section("Medicine", u.Medicine)
	section("Salary", u.Salary)
	section("Rewards", u.Rewards)
	section("Gender", u.Gender)
	section("Other", u.Others)
	section("Notes", u.OthersP)

	if u.ApplicationDeadline != "" {
		fmt.Fprintf(&sb, "**Application deadline:** %s\n\n", u.ApplicationDeadline)
	}
	if u.OfficialLink != "" {
		fmt.Fprintf(&sb, "**Official site:** %s\n", u.OfficialLink)
	}
	return sb.String()
}

// ratingLine formats the cached rating state for display.
func (m *BrowseModel) ratingLine(id int) string {
	st := m.deps.Ratings.Peek(id)
	switch st.State {
	case rating.Loading:
		return "loading…"
	case rating.HasAverage:
		line := fmt.Sprintf("%s %.1f / 5", stars(st.Average), st.Average)
		if st.Interim {
			line += " (updating)"
		}
		return line
	default:
		return "no ratings yet, press 1-5 to be the first"
	}
}

func stars(avg float64) string {
	full := int(avg + 0.5)
	if full > 5 {
		full = 5
	}
	return strings.Repeat("★", full) + strings.Repeat("☆", 5-full)
}

// View renders the current screen.
func (m *BrowseModel) View() string {
	header := "uniscope"
	if s := m.deps.Sessions.Current(); s != nil {
		header += " · " + s.User.Name
	}

	var sb strings.Builder
	sb.WriteString(m.styles.Header.Render(header))
	sb.WriteString("\n")

	switch m.mode {
	case browseLoading:
		sb.WriteString(m.spin.View() + " loading universities…\n")
	case browseDetail:
		sb.WriteString(m.viewport.View())
		sb.WriteString("\n")
		sb.WriteString(m.styles.Footer.Render("esc back · f favorite · 1-5 rate · q quit"))
	default:
		sb.WriteString(m.listView())
		sb.WriteString(m.styles.Footer.Render("↑/↓ move · enter details · f favorite · v favorites only · r reload · q quit"))
	}

	if m.status != "" {
		sb.WriteString("\n" + m.styles.Subtitle.Render(m.status))
	}
	return sb.String()
}

func (m *BrowseModel) listView() string {
	if m.loadErr != nil && len(m.universities) == 0 {
		return m.styles.Error.Render("could not load universities: "+m.loadErr.Error()) + "\n"
	}

	vis := m.visible()
	if len(vis) == 0 {
		if m.favoritesOnly {
			return m.styles.Muted.Render("no favorites yet, press v to show all") + "\n"
		}
		return m.styles.Muted.Render("no universities") + "\n"
	}

	var sb strings.Builder
	if m.favoritesOnly {
		sb.WriteString(m.styles.Badge.Render("favorites") + "\n")
	}
	for i, u := range vis {
		name := catalog.DisplayName(&u, u.ID, m.deps.Locale)
		line := name
		if m.favorites[u.ID] {
			line = m.styles.Favorite.Render("❤ ") + line
		} else {
			line = "  " + line
		}
		card := m.styles.Card
		if i == m.cursor {
			card = m.styles.SelectedCard
		}
		sb.WriteString(card.Render(line))
		sb.WriteString("\n")
	}
	return sb.String()
}
