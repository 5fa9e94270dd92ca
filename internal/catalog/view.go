package catalog

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/mmcdole/marquee/internal/domain"
)

// DeriveView filters and sorts entries for display.
//
// An entry is kept when its title contains the query text as typed, ignoring
// case only, and its genre is selected (or every genre is). The result is stably sorted
// by the query's sort key. The input slice is never modified.
func DeriveView(entries []domain.Entry, q domain.Query) []domain.Entry {
	needle := strings.ToLower(q.Text)
	allGenres := q.AllSelected()

	result := make([]domain.Entry, 0, len(entries))
	for _, e := range entries {
		if needle != "" && !strings.Contains(strings.ToLower(e.Title), needle) {
			continue
		}
		if !allGenres && !q.Selected(e.Genre) {
			continue
		}
		result = append(result, e)
	}

	SortEntries(result, q.Sort)
	return result
}

// SortEntries stably sorts entries in place by key
func SortEntries(entries []domain.Entry, key domain.SortKey) {
	switch key {
	case domain.SortRating:
		slices.SortStableFunc(entries, func(a, b domain.Entry) int {
			return cmp.Compare(b.Rating, a.Rating)
		})
	case domain.SortYear:
		slices.SortStableFunc(entries, func(a, b domain.Entry) int {
			return cmp.Compare(b.Year, a.Year)
		})
	case domain.SortTitle:
		// Collators keep internal buffers, so each sort gets its own
		col := collate.New(language.English)
		slices.SortStableFunc(entries, func(a, b domain.Entry) int {
			return col.CompareString(a.Title, b.Title)
		})
	}
}
