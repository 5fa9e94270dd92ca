package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/marquee/internal/catalog"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/search"
	"github.com/mmcdole/marquee/internal/tui/styles"
)

// playbackService plays entries (consumer-defined interface)
type playbackService interface {
	Play(ctx context.Context, e domain.Entry) error
}

// historyLister lists watched entries (consumer-defined interface)
type historyLister interface {
	List() []domain.WatchRecord
}

// Services holds the collaborators the screens use
type Services struct {
	Catalog  domain.CatalogRepository
	Playback playbackService // nil disables playback
	History  historyLister   // nil hides the history panel
	Search   *search.Service
	Logger   *slog.Logger
}

// Options holds per-run settings
type Options struct {
	Token            string // Bearer token passed to every mutation
	UserName         string
	IsAdmin          bool // Offer the admin screen
	StartInAdmin     bool
	BrowseInterval   time.Duration
	AdminInterval    time.Duration
	KeepStaleOnError bool
	Optimistic       bool
	TrendingSize     int
	DefaultSort      domain.SortKey
}

const statusTimeout = 3 * time.Second

// Model is the main Bubble Tea model for the application
type Model struct {
	svc  Services
	opts Options
	ctx  context.Context

	// Active screen and the session it owns
	active  ViewKind
	session *viewSession
	seq     int

	browse browseScreen
	admin  adminScreen

	// Dimensions
	width  int
	height int
	ready  bool

	// UI state
	spinner     spinner.Model
	showHelp    bool
	statusMsg   string
	statusIsErr bool
	lastRefresh catalog.RefreshResult
}

// NewModel creates the application model. The first screen's session is
// created here and started by Init.
func NewModel(ctx context.Context, svc Services, opts Options) Model {
	if svc.Logger == nil {
		svc.Logger = slog.Default()
	}
	if svc.Search == nil {
		svc.Search = search.NewService(svc.Logger)
	}
	if opts.TrendingSize <= 0 {
		opts.TrendingSize = catalog.DefaultTrendingSize
	}

	sp := spinner.New(spinner.WithSpinner(spinner.MiniDot))
	sp.Style = styles.AccentStyle

	m := Model{
		svc:     svc,
		opts:    opts,
		ctx:     ctx,
		browse:  newBrowseScreen(opts.DefaultSort),
		admin:   newAdminScreen(),
		spinner: sp,
	}

	kind := ViewBrowse
	if opts.StartInAdmin && opts.IsAdmin {
		kind = ViewAdmin
	}
	m.openView(kind)
	return m
}

// Init starts refreshing the first screen
func (m Model) Init() tea.Cmd {
	return tea.Batch(startSessionCmd(m.ctx, m.session), m.spinner.Tick)
}

// Close stops the active session
func (m Model) Close() {
	if m.session != nil {
		m.session.Stop()
	}
}

// openView tears down the current session and creates a fresh one for kind.
// The caller must run the returned command to start it.
func (m *Model) openView(kind ViewKind) tea.Cmd {
	if m.session != nil {
		m.session.Stop()
	}

	m.seq++
	m.active = kind
	m.session = newViewSession(m.svc.Catalog, kind, m.seq, m.opts, m.svc.Logger)
	m.lastRefresh = catalog.RefreshResult{}

	switch kind {
	case ViewAdmin:
		m.admin.reset()
	default:
		m.browse.reset(m.opts.DefaultSort)
	}
	m.layout()

	m.svc.Logger.Debug("opened view", "view", kind, "seq", m.seq)
	return startSessionCmd(m.ctx, m.session)
}

// rederive recomputes the active screen from its cache
func (m *Model) rederive() {
	entries := m.session.Cache.Entries()
	switch m.active {
	case ViewAdmin:
		m.admin.derive(entries)
	default:
		m.svc.Search.Index(entries)
		m.browse.derive(entries, m.svc.Search, m.opts.TrendingSize)
	}
}

func (m *Model) setStatus(msg string, isErr bool) tea.Cmd {
	m.statusMsg = msg
	m.statusIsErr = isErr
	return ClearStatusCmd(statusTimeout)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.layout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case RefreshedMsg:
		if msg.Seq != m.session.seq {
			return m, nil // from a screen that was closed
		}
		m.lastRefresh = msg.Result
		m.rederive()
		return m, waitForSessionCmd(m.session)

	case CacheChangedMsg:
		if msg.Seq != m.session.seq {
			return m, nil
		}
		m.rederive()
		return m, waitForSessionCmd(m.session)

	case sessionClosedMsg:
		return m, nil

	case EntryCreatedMsg:
		m.admin.form.Hide()
		m.admin.pending = false
		m.rederive()
		return m, m.setStatus("Added "+msg.Entry.Title, false)

	case EntryUpdatedMsg:
		m.admin.form.Hide()
		m.admin.pending = false
		m.rederive()
		return m, m.setStatus("Saved "+msg.Entry.Title, false)

	case EntryDeletedMsg:
		m.admin.pending = false
		m.rederive()
		return m, m.setStatus("Deleted "+msg.Title, false)

	case MutationFailedMsg:
		m.admin.pending = false
		m.rederive()
		if m.admin.form.IsVisible() {
			m.admin.form.SetError(msg.Err.Error())
			return m, nil
		}
		return m, m.setStatus(msg.Err.Error(), true)

	case PlaybackStartedMsg:
		return m, m.setStatus("Playing "+msg.Entry.Title, false)

	case ErrMsg:
		m.admin.pending = false
		m.rederive()
		m.svc.Logger.Error("ui error", "error", msg.Err, "context", msg.Context)
		return m, m.setStatus(msg.Error(), true)

	case ClearStatusMsg:
		m.statusMsg = ""
		m.statusIsErr = false
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	// Forward anything else (cursor blink) to the focused input
	if m.active == ViewBrowse && m.browse.typing {
		var cmd tea.Cmd
		m.browse.input, cmd = m.browse.input.Update(msg)
		return m, cmd
	}
	if m.active == ViewAdmin && m.admin.form.IsVisible() {
		var cmd tea.Cmd
		m.admin.form, cmd, _ = m.admin.form.Update(msg)
		return m, cmd
	}
	return m, nil
}

// capturingInput reports whether keystrokes go to a text field
func (m Model) capturingInput() bool {
	switch m.active {
	case ViewAdmin:
		return m.admin.form.IsVisible()
	default:
		return m.browse.typing
	}
}

// handleKeyMsg handles keyboard input
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.session.Stop()
		return m, tea.Quit
	}

	if m.showHelp {
		if key.Matches(msg, Keys.Escape, Keys.Help, Keys.Quit) {
			m.showHelp = false
		}
		return m, nil
	}

	if !m.capturingInput() && !m.admin.confirming() {
		switch {
		case key.Matches(msg, Keys.Quit):
			m.session.Stop()
			return m, tea.Quit

		case key.Matches(msg, Keys.Help):
			m.showHelp = true
			return m, nil

		case key.Matches(msg, Keys.SwitchView):
			if !m.opts.IsAdmin {
				return m, m.setStatus("Admin screen requires an admin account", true)
			}
			next := ViewAdmin
			if m.active == ViewAdmin {
				next = ViewBrowse
			}
			return m, m.openView(next)

		case key.Matches(msg, Keys.Refresh):
			m.session.Poller.Refresh()
			return m, m.setStatus("Refreshing...", false)
		}
	}

	switch m.active {
	case ViewAdmin:
		return m.handleAdminKey(msg)
	default:
		return m.handleBrowseKey(msg)
	}
}

// handleListKey applies navigation keys to a list; reports whether it handled msg
func handleListKey(l interface {
	MoveUp(int)
	MoveDown(int)
	Home()
	End()
}, msg tea.KeyMsg, page int) bool {
	switch {
	case key.Matches(msg, Keys.Up):
		l.MoveUp(1)
	case key.Matches(msg, Keys.Down):
		l.MoveDown(1)
	case key.Matches(msg, Keys.PageUp):
		l.MoveUp(page)
	case key.Matches(msg, Keys.PageDown):
		l.MoveDown(page)
	case key.Matches(msg, Keys.Home):
		l.Home()
	case key.Matches(msg, Keys.End):
		l.End()
	default:
		return false
	}
	return true
}

// Layout

const (
	browseChrome = 16 // header, search, genres, sort, trending, inspector, footer
	adminChrome  = 5  // header, column titles, footer
)

func (m *Model) layout() {
	if !m.ready {
		return
	}
	m.browse.list.SetSize(m.width, m.height-browseChrome)
	m.admin.list.SetSize(m.width, m.height-adminChrome)
}

func (m Model) pageSize() int {
	return max((m.height-browseChrome)/2, 1)
}

// View renders the application
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	var body string
	switch m.active {
	case ViewAdmin:
		body = m.admin.view(m.width)
	default:
		body = m.browse.view(m.width, m.svc.History)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		body,
		m.renderFooter(),
	)
}

func (m Model) renderHeader() string {
	tabs := []string{styles.LogoStyle.Render("MARQUEE")}
	for _, kind := range []ViewKind{ViewBrowse, ViewAdmin} {
		if kind == ViewAdmin && !m.opts.IsAdmin {
			continue
		}
		if kind == m.active {
			tabs = append(tabs, styles.TitleStyle.Render(kind.String()))
		} else {
			tabs = append(tabs, styles.DimStyle.Render(kind.String()))
		}
	}
	left := strings.Join(tabs, "  ")

	right := m.refreshSummary()
	if m.opts.UserName != "" {
		right += styles.DimStyle.Render("  " + m.opts.UserName)
	}

	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return left + strings.Repeat(" ", gap) + right
}

func (m Model) refreshSummary() string {
	r := m.lastRefresh
	switch {
	case m.admin.pending:
		return m.spinner.View() + styles.DimStyle.Render(" saving")
	case r.At.IsZero():
		return m.spinner.View() + styles.DimStyle.Render(" loading")
	case r.Err != nil:
		summary := "offline"
		if errors.Is(r.Err, domain.ErrFetchFailed) {
			summary = "catalog unavailable"
		}
		return styles.ErrorStyle.Render(summary)
	default:
		return styles.DimStyle.Render(fmt.Sprintf("%d titles • %s", r.Count, r.At.Format("15:04:05")))
	}
}

func (m Model) renderFooter() string {
	if m.statusMsg != "" {
		if m.statusIsErr {
			return styles.ErrorStyle.Render(m.statusMsg)
		}
		return styles.SuccessStyle.Render(m.statusMsg)
	}

	switch m.active {
	case ViewAdmin:
		return m.admin.help()
	default:
		return m.browse.help()
	}
}

func (m Model) renderHelp() string {
	bindings := []key.Binding{
		Keys.Up, Keys.Down, Keys.PageUp, Keys.PageDown, Keys.Home, Keys.End,
		Keys.Search, Keys.NextGenre, Keys.PrevGenre, Keys.ToggleGenre, Keys.AllGenres,
		Keys.Sort, Keys.Play, Keys.History, Keys.Refresh,
	}
	if m.opts.IsAdmin {
		bindings = append(bindings, Keys.SwitchView, Keys.New, Keys.Edit, Keys.Delete)
	}
	bindings = append(bindings, Keys.Escape, Keys.Quit)

	rows := []string{styles.ModalTitleStyle.Render("Keys")}
	for _, b := range bindings {
		h := b.Help()
		rows = append(rows, styles.HelpKeyStyle.Render(styles.Pad(h.Key, 10))+styles.HelpDescStyle.Render(h.Desc))
	}
	return styles.ModalStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
