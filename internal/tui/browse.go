package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/marquee/internal/catalog"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/search"
	"github.com/mmcdole/marquee/internal/tui/components"
	"github.com/mmcdole/marquee/internal/tui/styles"
)

const suggestionLimit = 3

// browseScreen is the read-only catalog screen
type browseScreen struct {
	query  domain.Query
	input  textinput.Model
	typing bool

	genres components.GenreBar
	list   components.EntryList

	total       int
	trending    []domain.Entry
	featured    []domain.Entry
	suggestions []search.Suggestion
	showHistory bool
}

func newBrowseScreen(sort domain.SortKey) browseScreen {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "search titles"
	ti.CharLimit = 128

	b := browseScreen{input: ti}
	b.reset(sort)
	return b
}

// reset restores the default query for a newly opened screen
func (b *browseScreen) reset(sort domain.SortKey) {
	b.query = domain.NewQuery()
	b.query.Sort = sort
	b.input.SetValue("")
	b.input.Blur()
	b.typing = false
	b.showHistory = false
	b.genres = components.NewGenreBar()
	b.list = components.NewEntryList("Loading catalog...")
	b.total = 0
	b.trending = nil
	b.featured = nil
	b.suggestions = nil
}

// derive recomputes everything shown from a cache snapshot
func (b *browseScreen) derive(entries []domain.Entry, svc *search.Service, trendingSize int) {
	genres := catalog.DeriveGenres(entries)
	b.genres.SetGenres(genres)
	b.query = pruneGenres(b.query, genres)

	view := catalog.DeriveView(entries, b.query)
	b.total = len(entries)
	b.trending = catalog.Trending(entries, trendingSize)
	b.featured = catalog.Featured(entries)

	switch {
	case len(entries) == 0:
		b.list.SetEmptyText("No titles in the catalog")
	default:
		b.list.SetEmptyText("No titles match")
	}
	b.list.SetHighlight(b.query.Text)
	b.list.SetEntries(view)

	b.suggestions = nil
	if len(view) == 0 && strings.TrimSpace(b.query.Text) != "" {
		b.suggestions = svc.Suggest(b.query.Text, suggestionLimit)
	}
}

// pruneGenres drops selected genres that no longer exist in the catalog
func pruneGenres(q domain.Query, genres []string) domain.Query {
	if q.AllSelected() {
		return q
	}
	for _, g := range slices.Clone(q.Genres) {
		if !slices.Contains(genres, g) {
			q = q.ToggleGenre(g)
		}
	}
	return q
}

// handleBrowseKey handles keys on the browse screen
func (m Model) handleBrowseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	b := &m.browse

	if b.typing {
		switch msg.String() {
		case "esc":
			b.typing = false
			b.input.Blur()
			b.input.SetValue("")
			b.query.Text = ""
			m.rederive()
			return m, nil
		case "enter":
			b.typing = false
			b.input.Blur()
			return m, nil
		}

		var cmd tea.Cmd
		b.input, cmd = b.input.Update(msg)
		if b.input.Value() != b.query.Text {
			b.query.Text = b.input.Value()
			m.rederive()
		}
		return m, cmd
	}

	if b.showHistory {
		if key.Matches(msg, Keys.Escape, Keys.History) {
			b.showHistory = false
		}
		return m, nil
	}

	if handleListKey(&b.list, msg, m.pageSize()) {
		return m, nil
	}

	switch {
	case key.Matches(msg, Keys.Search):
		b.typing = true
		b.input.SetValue(b.query.Text)
		b.input.CursorEnd()
		return m, b.input.Focus()

	case key.Matches(msg, Keys.Escape):
		switch {
		case b.query.Text != "":
			b.query.Text = ""
			b.input.SetValue("")
		case !b.query.AllSelected():
			b.query = b.query.SelectGenre(domain.AllGenres)
			b.genres.Reset()
		}
		m.rederive()
		return m, nil

	case key.Matches(msg, Keys.NextGenre):
		b.genres.Next()
		return m, nil

	case key.Matches(msg, Keys.PrevGenre):
		b.genres.Prev()
		return m, nil

	case key.Matches(msg, Keys.ToggleGenre):
		b.query = b.query.ToggleGenre(b.genres.Current())
		m.rederive()
		return m, nil

	case key.Matches(msg, Keys.AllGenres):
		b.query = b.query.SelectGenre(domain.AllGenres)
		b.genres.Reset()
		m.rederive()
		return m, nil

	case key.Matches(msg, Keys.Sort):
		b.query.Sort = b.query.Sort.Next()
		m.rederive()
		return m, m.setStatus("Sorted by "+b.query.Sort.String(), false)

	case key.Matches(msg, Keys.History):
		if m.svc.History == nil {
			return m, m.setStatus("Watch history is not available", true)
		}
		b.showHistory = true
		return m, nil

	case key.Matches(msg, Keys.Play):
		e, ok := b.list.Selected()
		if !ok {
			return m, nil
		}
		if m.svc.Playback == nil {
			return m, m.setStatus("No player configured", true)
		}
		if !e.IsPlayable() {
			return m, m.setStatus(domain.ErrNotPlayable.Error(), true)
		}
		return m, PlayEntryCmd(m.svc.Playback, e)
	}

	return m, nil
}

// view renders the browse screen
func (b browseScreen) view(width int, history historyLister) string {
	rows := []string{b.renderSearch(), b.genres.View(b.query), b.renderSortLine()}

	if len(b.featured) > 0 {
		rows = append(rows, renderRow("Featured", b.featured, width))
	}
	if len(b.trending) > 0 {
		rows = append(rows, renderRow("Trending", b.trending, width))
	}
	rows = append(rows, "")

	if b.showHistory && history != nil {
		rows = append(rows, renderHistory(history.List(), width))
		return lipgloss.JoinVertical(lipgloss.Left, rows...)
	}

	rows = append(rows, b.list.View())
	if len(b.suggestions) > 0 {
		rows = append(rows, "", b.renderSuggestions())
	}
	if e, ok := b.list.Selected(); ok {
		rows = append(rows, components.RenderInspector(e, width))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (b browseScreen) renderSearch() string {
	if b.typing {
		return b.input.View()
	}
	if b.query.Text == "" {
		return styles.DimStyle.Render("/ search titles")
	}
	return styles.AccentStyle.Render("/ " + b.query.Text)
}

func (b browseScreen) renderSortLine() string {
	return styles.DimStyle.Render(fmt.Sprintf("Sort: %s  •  %s of %d",
		b.query.Sort, b.list.Position(), b.total))
}

func (b browseScreen) renderSuggestions() string {
	titles := make([]string, len(b.suggestions))
	for i, s := range b.suggestions {
		titles[i] = styles.AccentStyle.Render(s.Entry.Title)
	}
	return styles.DimStyle.Render("Did you mean: ") + strings.Join(titles, styles.DimStyle.Render(", "))
}

// renderRow renders a labelled, single-line shelf of titles
func renderRow(label string, entries []domain.Entry, width int) string {
	head := styles.SubtitleStyle.Render(styles.Pad(label, 10))
	titles := make([]string, len(entries))
	for i, e := range entries {
		titles[i] = e.Title
	}
	return head + styles.Truncate(strings.Join(titles, " · "), max(width-10, 10))
}

func renderHistory(records []domain.WatchRecord, width int) string {
	rows := []string{styles.TitleStyle.Render("Recently watched")}
	if len(records) == 0 {
		rows = append(rows, styles.DimStyle.Render("Nothing watched yet"))
	}
	for _, r := range records {
		when := ""
		if !r.WatchedAt.IsZero() {
			when = r.WatchedAt.Local().Format("Jan 2 15:04")
		}
		rows = append(rows, styles.Pad(styles.DimStyle.Render(when), 14)+styles.Truncate(r.Title, max(width-16, 10)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (b browseScreen) help() string {
	if b.typing {
		return styles.RenderHelp([2]string{"enter", "done"}, [2]string{"esc", "clear"})
	}
	if b.showHistory {
		return styles.RenderHelp([2]string{"esc", "close"})
	}
	return styles.RenderHelp(
		[2]string{"/", "search"},
		[2]string{"h/l", "genres"},
		[2]string{"space", "select"},
		[2]string{"s", "sort"},
		[2]string{"enter", "play"},
		[2]string{"w", "history"},
		[2]string{"?", "help"},
		[2]string{"q", "quit"},
	)
}
