package tui

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/marquee/internal/catalog"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/log"
	"github.com/mmcdole/marquee/internal/tui/components"
)

type fakeCatalog struct {
	mu      sync.Mutex
	entries []domain.Entry
	nextID  int
}

func (f *fakeCatalog) FetchAll(ctx context.Context) ([]domain.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.entries), nil
}

func (f *fakeCatalog) Get(ctx context.Context, id string) (domain.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return domain.Entry{}, domain.ErrNotFound
}

func (f *fakeCatalog) Create(ctx context.Context, token string, e domain.Entry) (domain.Entry, error) {
	if token == "" {
		return domain.Entry{}, domain.NewRequestError(domain.ErrUnauthorized, 401, "")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	e.ID = fmt.Sprintf("srv-%d", f.nextID)
	f.entries = append([]domain.Entry{e}, f.entries...)
	return e, nil
}

func (f *fakeCatalog) Update(ctx context.Context, token, id string, patch domain.EntryPatch) (domain.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, e := range f.entries {
		if e.ID == id {
			f.entries[i] = patch.Apply(e)
			return f.entries[i], nil
		}
	}
	return domain.Entry{}, domain.ErrNotFound
}

func (f *fakeCatalog) Delete(ctx context.Context, token, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, e := range f.entries {
		if e.ID == id {
			f.entries = slices.Delete(f.entries, i, i+1)
			return nil
		}
	}
	return domain.ErrNotFound
}

type fakePlayback struct {
	played []domain.Entry
}

func (f *fakePlayback) Play(ctx context.Context, e domain.Entry) error {
	if !e.IsPlayable() {
		return domain.ErrNotPlayable
	}
	f.played = append(f.played, e)
	return nil
}

func sampleCatalog() *fakeCatalog {
	return &fakeCatalog{entries: []domain.Entry{
		{ID: "1", Title: "Zeta Run", Genre: "Action", Rating: 6, Year: 2019, PlaybackURL: "http://v/1"},
		{ID: "2", Title: "Sintel", Genre: "Animation", Rating: 8.5, Year: 2010, PlaybackURL: "http://v/2", Featured: true},
		{ID: "3", Title: "Quiet Town", Genre: "Drama", Rating: 7, Year: 2022},
	}}
}

// startModel builds a model and delivers its first refresh
func startModel(t *testing.T, repo domain.CatalogRepository, svc Services, opts Options) Model {
	t.Helper()
	svc.Catalog = repo
	svc.Logger = log.NullLogger()
	if opts.BrowseInterval == 0 {
		opts.BrowseInterval = time.Hour
	}
	if opts.AdminInterval == 0 {
		opts.AdminInterval = time.Hour
	}

	m := NewModel(context.Background(), svc, opts)
	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	m = run(t, m, startSessionCmd(m.ctx, m.session))
	t.Cleanup(func() { m.Close() })
	return m
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

// run executes cmd and feeds its message back into the model
func run(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	require.NotNil(t, cmd)
	return update(t, m, cmd())
}

func press(t *testing.T, m Model, keys string) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(keys)})
	return next.(Model), cmd
}

func pressType(t *testing.T, m Model, kt tea.KeyType) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(tea.KeyMsg{Type: kt})
	return next.(Model), cmd
}

func listTitles(l components.EntryList) []string {
	var titles []string
	for _, e := range l.Entries() {
		titles = append(titles, e.Title)
	}
	return titles
}

func TestFirstRefreshDerivesBrowseScreen(t *testing.T) {
	m := startModel(t, sampleCatalog(), Services{}, Options{})

	assert.Equal(t, ViewBrowse, m.active)
	assert.Equal(t, []string{"Sintel", "Quiet Town", "Zeta Run"}, listTitles(m.browse.list))
	assert.Equal(t, []string{domain.AllGenres, "Action", "Animation", "Drama"}, m.browse.genres.Genres())
	assert.Len(t, m.browse.featured, 1)
	assert.Len(t, m.browse.trending, 3)
	assert.Contains(t, m.View(), "MARQUEE")
}

func TestMessagesFromClosedSessionAreIgnored(t *testing.T) {
	m := startModel(t, sampleCatalog(), Services{}, Options{})
	before := m.lastRefresh

	next, cmd := m.Update(RefreshedMsg{Seq: m.seq + 1, Result: catalog.RefreshResult{Count: 99, At: time.Now()}})
	m = next.(Model)

	assert.Nil(t, cmd)
	assert.Equal(t, before, m.lastRefresh)
	assert.Equal(t, 3, m.browse.list.Len())
}

func TestSortKeyCyclesOrdering(t *testing.T) {
	m := startModel(t, sampleCatalog(), Services{}, Options{})

	m, _ = press(t, m, "s")
	assert.Equal(t, domain.SortYear, m.browse.query.Sort)
	assert.Equal(t, []string{"Quiet Town", "Zeta Run", "Sintel"}, listTitles(m.browse.list))

	m, _ = press(t, m, "s")
	assert.Equal(t, []string{"Quiet Town", "Sintel", "Zeta Run"}, listTitles(m.browse.list))
}

func TestSearchFiltersAndEscapeClears(t *testing.T) {
	m := startModel(t, sampleCatalog(), Services{}, Options{})

	m, _ = press(t, m, "/")
	require.True(t, m.browse.typing)

	m, _ = press(t, m, "zet")
	assert.Equal(t, "zet", m.browse.query.Text)
	assert.Equal(t, []string{"Zeta Run"}, listTitles(m.browse.list))

	m, _ = pressType(t, m, tea.KeyEsc)
	assert.False(t, m.browse.typing)
	assert.Empty(t, m.browse.query.Text)
	assert.Equal(t, 3, m.browse.list.Len())
}

func TestEmptySearchOffersSuggestions(t *testing.T) {
	m := startModel(t, sampleCatalog(), Services{}, Options{})

	m, _ = press(t, m, "/")
	m, _ = press(t, m, "sintl")
	m, _ = pressType(t, m, tea.KeyEnter)

	assert.Zero(t, m.browse.list.Len())
	require.NotEmpty(t, m.browse.suggestions)
	assert.Equal(t, "Sintel", m.browse.suggestions[0].Entry.Title)
	assert.Contains(t, m.View(), "Did you mean")
}

func TestGenreKeys(t *testing.T) {
	m := startModel(t, sampleCatalog(), Services{}, Options{})

	// Moving the cursor alone does not filter
	m, _ = press(t, m, "l")
	assert.Equal(t, "Action", m.browse.genres.Current())
	assert.True(t, m.browse.query.AllSelected())

	m, _ = press(t, m, " ")
	assert.Equal(t, []string{"Action"}, m.browse.query.Genres)
	assert.Equal(t, []string{"Zeta Run"}, listTitles(m.browse.list))

	m, _ = press(t, m, "l")
	m, _ = press(t, m, " ")
	assert.Equal(t, []string{"Action", "Animation"}, m.browse.query.Genres)
	assert.Equal(t, []string{"Sintel", "Zeta Run"}, listTitles(m.browse.list))

	m, _ = press(t, m, "h")
	m, _ = press(t, m, " ")
	assert.Equal(t, []string{"Animation"}, m.browse.query.Genres)

	m, _ = press(t, m, "a")
	assert.True(t, m.browse.query.AllSelected())
	assert.Equal(t, 3, m.browse.list.Len())
}

func TestPlaySelectedEntry(t *testing.T) {
	player := &fakePlayback{}
	m := startModel(t, sampleCatalog(), Services{Playback: player}, Options{})

	m, cmd := pressType(t, m, tea.KeyEnter)
	require.NotNil(t, cmd)
	msg := cmd()
	require.IsType(t, PlaybackStartedMsg{}, msg)
	m = update(t, m, msg)

	require.Len(t, player.played, 1)
	assert.Equal(t, "Sintel", player.played[0].Title)
	assert.Equal(t, "Playing Sintel", m.statusMsg)

	// Quiet Town has no video
	m, _ = press(t, m, "j")
	m, _ = pressType(t, m, tea.KeyEnter)
	assert.True(t, m.statusIsErr)
	assert.Len(t, player.played, 1)
}

func TestSwitchViewRequiresAdmin(t *testing.T) {
	m := startModel(t, sampleCatalog(), Services{}, Options{})
	seq := m.seq

	m, _ = pressType(t, m, tea.KeyTab)
	assert.Equal(t, ViewBrowse, m.active)
	assert.Equal(t, seq, m.seq)
	assert.True(t, m.statusIsErr)
}

func TestSwitchViewOpensFreshSession(t *testing.T) {
	m := startModel(t, sampleCatalog(), Services{}, Options{IsAdmin: true, Token: "tok"})
	old := m.session

	m, cmd := pressType(t, m, tea.KeyTab)
	require.NotNil(t, cmd)
	assert.Equal(t, ViewAdmin, m.active)
	assert.NotSame(t, old, m.session)
	assert.Equal(t, catalog.StateStopped, old.Poller.State())

	m = run(t, m, cmd)
	t.Cleanup(func() { m.Close() })
	// Admin lists cache order, not rating order
	assert.Equal(t, []string{"Zeta Run", "Sintel", "Quiet Town"}, listTitles(m.admin.list))
}

func TestLeavingScreenBeforeStartIsSilent(t *testing.T) {
	svc := Services{Catalog: sampleCatalog(), Logger: log.NullLogger()}
	opts := Options{IsAdmin: true, Token: "tok", BrowseInterval: time.Hour, AdminInterval: time.Hour}
	m := NewModel(context.Background(), svc, opts)
	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	first := m.session

	m, cmd := pressType(t, m, tea.KeyTab)
	require.NotNil(t, cmd)
	t.Cleanup(func() { m.Close() })
	require.Equal(t, catalog.StateStopped, first.Poller.State())

	msg := startSessionCmd(m.ctx, first)()
	require.IsType(t, sessionClosedMsg{}, msg)

	m = update(t, m, msg)
	assert.Empty(t, m.statusMsg)
	assert.False(t, m.statusIsErr)
	assert.Equal(t, ViewAdmin, m.active)
}

func openAdmin(t *testing.T, repo *fakeCatalog, opts Options) Model {
	t.Helper()
	opts.IsAdmin = true
	opts.StartInAdmin = true
	m := startModel(t, repo, Services{}, opts)
	require.Equal(t, ViewAdmin, m.active)
	return m
}

func TestAdminCreateEntry(t *testing.T) {
	repo := sampleCatalog()
	m := openAdmin(t, repo, Options{Token: "tok"})

	m, _ = press(t, m, "n")
	require.True(t, m.admin.form.IsVisible())

	m.admin.form.SetValue(components.FieldTitle, "Tears of Steel")
	m.admin.form.SetValue(components.FieldGenre, "Sci-Fi")
	m.admin.form.SetValue(components.FieldRating, "7.2")
	m.admin.form.SetValue(components.FieldYear, "2012")
	m.admin.form.SetValue(components.FieldDescription, "Robots in Amsterdam")
	m.admin.form.SetValue(components.FieldPoster, "http://img/tos.jpg")
	m.admin.form.SetValue(components.FieldVideo, "http://v/tos.mp4")

	m, cmd := pressType(t, m, tea.KeyCtrlS)
	require.NotNil(t, cmd)
	assert.True(t, m.admin.pending)

	msg := cmd()
	require.IsType(t, EntryCreatedMsg{}, msg)
	m = update(t, m, msg)

	assert.False(t, m.admin.form.IsVisible())
	assert.False(t, m.admin.pending)
	assert.Equal(t, "Tears of Steel", listTitles(m.admin.list)[0])
	assert.Equal(t, 4, m.admin.list.Len())
}

func TestAdminCreateRejectedKeepsForm(t *testing.T) {
	repo := sampleCatalog()
	m := openAdmin(t, repo, Options{Token: "tok"})

	m, _ = press(t, m, "n")
	m, cmd := pressType(t, m, tea.KeyCtrlS)
	require.NotNil(t, cmd)

	msg := cmd()
	failed, ok := msg.(MutationFailedMsg)
	require.True(t, ok)
	assert.True(t, errors.Is(failed.Err, domain.ErrValidationFailed))

	m = update(t, m, msg)
	assert.True(t, m.admin.form.IsVisible())
	assert.Equal(t, 3, m.admin.list.Len())
	assert.Len(t, repo.entries, 3)
}

func TestAdminEditWithoutChanges(t *testing.T) {
	m := openAdmin(t, sampleCatalog(), Options{Token: "tok"})

	m, _ = press(t, m, "e")
	require.True(t, m.admin.form.IsEditing())

	m, _ = pressType(t, m, tea.KeyCtrlS)
	assert.False(t, m.admin.form.IsVisible())
	assert.Equal(t, "No changes", m.statusMsg)
}

func TestAdminEditEntry(t *testing.T) {
	repo := sampleCatalog()
	m := openAdmin(t, repo, Options{Token: "tok"})

	m, _ = press(t, m, "e")
	m.admin.form.SetValue(components.FieldRating, "9")

	m, cmd := pressType(t, m, tea.KeyCtrlS)
	require.NotNil(t, cmd)
	m = update(t, m, cmd())

	e, ok := m.admin.list.Selected()
	require.True(t, ok)
	assert.Equal(t, "Zeta Run", e.Title)
	assert.Equal(t, 9.0, e.Rating)
}

func TestAdminDeleteRequiresConfirmation(t *testing.T) {
	repo := sampleCatalog()
	m := openAdmin(t, repo, Options{Token: "tok"})

	m, _ = press(t, m, "d")
	require.True(t, m.admin.confirming())
	m, cmd := press(t, m, "n")
	assert.Nil(t, cmd)
	assert.False(t, m.admin.confirming())
	assert.Equal(t, 3, m.admin.list.Len())

	m, _ = press(t, m, "d")
	m, cmd = press(t, m, "y")
	require.NotNil(t, cmd)
	m = update(t, m, cmd())

	assert.Equal(t, []string{"Sintel", "Quiet Town"}, listTitles(m.admin.list))
	assert.Equal(t, "Deleted Zeta Run", m.statusMsg)
}

func TestInitStartsRefreshAndSpinner(t *testing.T) {
	m := NewModel(context.Background(), Services{Catalog: sampleCatalog(), Logger: log.NullLogger()}, Options{BrowseInterval: time.Hour})
	t.Cleanup(func() { m.Close() })

	msg := m.Init()()
	batch, ok := msg.(tea.BatchMsg)
	require.True(t, ok)
	assert.Len(t, batch, 2)
}

func TestQuitStopsSession(t *testing.T) {
	m := startModel(t, sampleCatalog(), Services{}, Options{})

	m, cmd := press(t, m, "q")
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	assert.Equal(t, catalog.StateStopped, m.session.Poller.State())
}
