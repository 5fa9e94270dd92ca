package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/search"
	"github.com/mmcdole/marquee/internal/tui/styles"
)

// EntryList is a scrollable list of catalog entries
type EntryList struct {
	entries []domain.Entry

	// Selection
	cursor int
	offset int

	// Dimensions
	width  int
	height int

	// Query text, used only to highlight matches
	highlight string

	// Shown when there are no entries
	emptyText string
}

// NewEntryList creates an empty list
func NewEntryList(emptyText string) EntryList {
	return EntryList{emptyText: emptyText}
}

// SetSize sets the list dimensions in cells
func (l *EntryList) SetSize(width, height int) {
	l.width = width
	l.height = max(height, 1)
	l.ensureVisible()
}

// SetEmptyText changes the placeholder shown for an empty list
func (l *EntryList) SetEmptyText(text string) {
	l.emptyText = text
}

// SetHighlight sets the query whose matches are emphasized in titles
func (l *EntryList) SetHighlight(query string) {
	l.highlight = query
}

// SetEntries replaces the list contents. The cursor stays on the same entry
// when it is still present.
func (l *EntryList) SetEntries(entries []domain.Entry) {
	var selectedID string
	if e, ok := l.Selected(); ok {
		selectedID = e.ID
	}

	l.entries = entries

	l.cursor = 0
	for i, e := range entries {
		if e.ID == selectedID {
			l.cursor = i
			break
		}
	}
	l.ensureVisible()
}

// Entries returns the displayed entries
func (l EntryList) Entries() []domain.Entry {
	return l.entries
}

// Len returns the number of displayed entries
func (l EntryList) Len() int {
	return len(l.entries)
}

// Selected returns the entry under the cursor
func (l EntryList) Selected() (domain.Entry, bool) {
	if l.cursor < 0 || l.cursor >= len(l.entries) {
		return domain.Entry{}, false
	}
	return l.entries[l.cursor], true
}

// Cursor returns the cursor position
func (l EntryList) Cursor() int {
	return l.cursor
}

// MoveUp moves the cursor up n rows
func (l *EntryList) MoveUp(n int) {
	l.cursor = max(l.cursor-n, 0)
	l.ensureVisible()
}

// MoveDown moves the cursor down n rows
func (l *EntryList) MoveDown(n int) {
	l.cursor = min(l.cursor+n, max(len(l.entries)-1, 0))
	l.ensureVisible()
}

// Home moves the cursor to the first entry
func (l *EntryList) Home() {
	l.cursor = 0
	l.ensureVisible()
}

// End moves the cursor to the last entry
func (l *EntryList) End() {
	l.cursor = max(len(l.entries)-1, 0)
	l.ensureVisible()
}

func (l *EntryList) ensureVisible() {
	if l.height <= 0 {
		return
	}
	if l.cursor < l.offset {
		l.offset = l.cursor
	}
	if l.cursor >= l.offset+l.height {
		l.offset = l.cursor - l.height + 1
	}
	l.offset = max(min(l.offset, len(l.entries)-l.height), 0)
}

// View renders the visible rows
func (l EntryList) View() string {
	if len(l.entries) == 0 {
		return styles.DimStyle.Render(l.emptyText)
	}

	height := l.height
	if height <= 0 {
		height = len(l.entries)
	}
	end := min(l.offset+height, len(l.entries))

	rows := make([]string, 0, end-l.offset)
	for i := l.offset; i < end; i++ {
		rows = append(rows, l.renderRow(l.entries[i], i == l.cursor))
	}
	return strings.Join(rows, "\n")
}

func (l EntryList) renderRow(e domain.Entry, selected bool) string {
	const ratingWidth = 7

	rowStyle := styles.NormalItemStyle
	if selected {
		rowStyle = styles.SelectedItemStyle
	}

	width := l.width
	if width <= 0 {
		width = 80
	}

	subtitle := e.Subtitle()
	titleWidth := max(width-ratingWidth-lipgloss.Width(subtitle)-6, 8)
	title := styles.Truncate(e.Title, titleWidth)

	var matched []int
	if l.highlight != "" {
		matched = search.Highlight(l.highlight, title)
	}

	marker := "  "
	if selected {
		marker = styles.AccentStyle.Render("▸ ")
	}

	line := marker +
		styles.Pad(styles.RenderRating(e.Rating, e.FormattedRating()), ratingWidth) + " " +
		highlightMatches(title, matched, selected)
	if subtitle != "" {
		line += "  " + styles.DimStyle.Render(subtitle)
	}
	if !e.IsPlayable() {
		line += " " + styles.DimStyle.Render("(no video)")
	}

	return rowStyle.Width(width).Render(line)
}

// Position renders "n/total" for the footer
func (l EntryList) Position() string {
	if len(l.entries) == 0 {
		return "0/0"
	}
	return fmt.Sprintf("%d/%d", l.cursor+1, len(l.entries))
}
