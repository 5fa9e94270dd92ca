package components

import (
	"slices"
	"strings"

	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/tui/styles"
)

// GenreBar shows the genre options with a movable cursor
type GenreBar struct {
	genres []string
	cursor int
}

// NewGenreBar creates a bar holding only the AllGenres option
func NewGenreBar() GenreBar {
	return GenreBar{genres: []string{domain.AllGenres}}
}

// SetGenres replaces the options, keeping the cursor on the same genre
// when it still exists
func (b *GenreBar) SetGenres(genres []string) {
	current := b.Current()
	b.genres = genres
	b.cursor = max(slices.Index(genres, current), 0)
}

// Genres returns the options
func (b GenreBar) Genres() []string {
	return b.genres
}

// Current returns the genre under the cursor
func (b GenreBar) Current() string {
	if b.cursor < 0 || b.cursor >= len(b.genres) {
		return domain.AllGenres
	}
	return b.genres[b.cursor]
}

// Next moves the cursor right, wrapping around
func (b *GenreBar) Next() {
	if len(b.genres) > 0 {
		b.cursor = (b.cursor + 1) % len(b.genres)
	}
}

// Prev moves the cursor left, wrapping around
func (b *GenreBar) Prev() {
	if len(b.genres) > 0 {
		b.cursor = (b.cursor - 1 + len(b.genres)) % len(b.genres)
	}
}

// Reset moves the cursor back to AllGenres
func (b *GenreBar) Reset() {
	b.cursor = 0
}

// View renders the chips; selected genres are filled and the cursor is underlined
func (b GenreBar) View(q domain.Query) string {
	chips := make([]string, len(b.genres))
	for i, g := range b.genres {
		switch {
		case q.Selected(g):
			chips[i] = styles.ChipSelectedStyle.Render(g)
		case i == b.cursor:
			chips[i] = styles.ChipCursorStyle.Render(g)
		default:
			chips[i] = styles.ChipStyle.Render(g)
		}
	}
	return strings.Join(chips, " ")
}
