package catalog

import (
	"slices"

	"github.com/mmcdole/marquee/internal/domain"
)

const DefaultTrendingSize = 12

// Trending returns the n highest rated entries. Ties keep catalog order.
func Trending(entries []domain.Entry, n int) []domain.Entry {
	if n <= 0 {
		n = DefaultTrendingSize
	}
	top := slices.Clone(entries)
	SortEntries(top, domain.SortRating)
	if len(top) > n {
		top = top[:n]
	}
	return top
}

// Featured returns the entries flagged for the hero row, in catalog order
func Featured(entries []domain.Entry) []domain.Entry {
	var featured []domain.Entry
	for _, e := range entries {
		if e.Featured {
			featured = append(featured, e)
		}
	}
	return featured
}
