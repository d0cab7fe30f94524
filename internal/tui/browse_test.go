package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uniscope/internal/bus"
	"uniscope/internal/catalog"
	"uniscope/internal/gateway"
	"uniscope/internal/prefs"
	"uniscope/internal/rating"
	"uniscope/internal/session"
)

// newBrowseFixture wires a browser over in-memory state. The gateway points
// at a dead address; tests drive the model with messages directly and never
// execute network commands.
func newBrowseFixture(t *testing.T) (*BrowseModel, *prefs.Preferences) {
	t.Helper()
	b := bus.NewMemoryBus()
	store := prefs.NewMemoryStore()
	p := prefs.New(store, b, nil)
	sessions := session.NewManager(store, b, nil)
	gw := gateway.New("http://127.0.0.1:0", time.Second, nil)
	ratings := rating.NewCache(gw, sessions, nil)
	t.Cleanup(ratings.Close)

	m := NewBrowse(BrowseDeps{
		Catalog:  catalog.NewService(gw, nil, nil),
		Prefs:    p,
		Sessions: sessions,
		Ratings:  ratings,
		Bus:      b,
		Locale:   "en",
	})
	t.Cleanup(m.Close)
	return m, p
}

func loadList(m *BrowseModel, list []catalog.University) {
	m.Update(universitiesMsg{list: list})
}

func threeUniversities() []catalog.University {
	return []catalog.University{
		{ID: 1, Name: catalog.MultilingualField{EN: "Harvard"}},
		{ID: 2, Name: catalog.MultilingualField{EN: "Stanford"}},
		{ID: 3, Name: catalog.MultilingualField{EN: "MIT"}},
	}
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func TestBrowse_CursorNavigationClamps(t *testing.T) {
	m, _ := newBrowseFixture(t)
	loadList(m, threeUniversities())

	m.Update(keyMsg("k"))
	assert.Equal(t, 0, m.cursor, "cannot move above the first card")

	m.Update(keyMsg("j"))
	m.Update(keyMsg("j"))
	m.Update(keyMsg("j"))
	assert.Equal(t, 2, m.cursor, "cannot move past the last card")
}

func TestBrowse_FavoriteTogglePersistsAndMarks(t *testing.T) {
	m, p := newBrowseFixture(t)
	loadList(m, threeUniversities())

	m.Update(keyMsg("j")) // Stanford
	m.Update(keyMsg("f"))

	assert.True(t, p.IsFavorite(2))
	assert.True(t, m.favorites[2])

	m.Update(keyMsg("f"))
	assert.False(t, p.IsFavorite(2))
}

func TestBrowse_FavoritesOnlyFilter(t *testing.T) {
	m, p := newBrowseFixture(t)
	p.AddFavorite(3)
	m.reloadFavorites()
	loadList(m, threeUniversities())

	m.Update(keyMsg("v"))
	vis := m.visible()
	require.Len(t, vis, 1)
	assert.Equal(t, 3, vis[0].ID)

	m.Update(keyMsg("v"))
	assert.Len(t, m.visible(), 3)
}

func TestBrowse_EnterRecordsClickAndOpensDetail(t *testing.T) {
	m, p := newBrowseFixture(t)
	loadList(m, threeUniversities())

	_, cmd := m.Update(keyMsg("enter"))

	assert.Equal(t, browseDetail, m.mode)
	assert.Equal(t, 1, m.detailID)
	assert.NotNil(t, cmd, "a rating fetch must be scheduled")
	assert.Equal(t, map[int]int{1: 1}, p.Analytics())
}

func TestBrowse_EscReturnsToList(t *testing.T) {
	m, _ := newBrowseFixture(t)
	loadList(m, threeUniversities())
	m.Update(keyMsg("enter"))

	m.Update(keyMsg("esc"))
	assert.Equal(t, browseList, m.mode)
}

func TestBrowse_ExternalFavoriteChangeReloads(t *testing.T) {
	m, p := newBrowseFixture(t)
	loadList(m, threeUniversities())

	// Another view writes; the model only gets the key.
	p.AddFavorite(1)
	_, cmd := m.Update(storageChangedMsg(prefs.KeyFavorites))

	assert.True(t, m.favorites[1])
	assert.NotNil(t, cmd, "must keep listening for changes")
}

func TestBrowse_UnauthenticatedRatingPromptsLogin(t *testing.T) {
	m, _ := newBrowseFixture(t)
	loadList(m, threeUniversities())
	m.Update(keyMsg("enter"))

	m.Update(ratingSubmittedMsg{id: 1, err: session.ErrNotAuthenticated})
	assert.Contains(t, m.status, "uniscope login")
}

func TestBrowse_LoadErrorShownWithEmptyList(t *testing.T) {
	m, _ := newBrowseFixture(t)
	m.Update(universitiesMsg{err: assert.AnError})

	assert.Equal(t, browseList, m.mode)
	assert.Contains(t, m.listView(), "could not load")
}

func TestBrowse_FilterShrinkClampsCursor(t *testing.T) {
	m, p := newBrowseFixture(t)
	p.AddFavorite(1)
	m.reloadFavorites()
	loadList(m, threeUniversities())
	m.Update(keyMsg("j"))
	m.Update(keyMsg("j"))

	m.Update(keyMsg("v")) // one favorite visible
	m.clampCursor()
	assert.Equal(t, 0, m.cursor)
	assert.NotNil(t, m.selected())
}

func TestStars(t *testing.T) {
	assert.Equal(t, "★★★★☆", stars(4.2))
	assert.Equal(t, "★★★★★", stars(4.8))
	assert.Equal(t, "☆☆☆☆☆", stars(0))
}
