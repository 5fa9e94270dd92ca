package domain

import (
	"fmt"
	"slices"
	"strings"
)

// AllGenres is the reserved genre selection meaning "no genre restriction"
const AllGenres = "All"

// SortKey selects the ordering of a derived view
type SortKey int

const (
	SortRating SortKey = iota // highest rating first
	SortYear                  // newest release first
	SortTitle                 // A-Z
)

// String returns the display name for the sort key
func (k SortKey) String() string {
	switch k {
	case SortRating:
		return "Top Rated"
	case SortYear:
		return "Newest"
	case SortTitle:
		return "A-Z"
	default:
		return "Unknown"
	}
}

// Next returns the following sort key, wrapping around
func (k SortKey) Next() SortKey {
	switch k {
	case SortRating:
		return SortYear
	case SortYear:
		return SortTitle
	default:
		return SortRating
	}
}

// ParseSortKey converts a user-facing name to a SortKey
func ParseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "rating", "top", "top-rated":
		return SortRating, nil
	case "year", "newest":
		return SortYear, nil
	case "title", "az", "a-z":
		return SortTitle, nil
	default:
		return SortRating, fmt.Errorf("unknown sort key %q", s)
	}
}

// Query is the view-local search/filter/sort state.
// A nil or empty Genres selection behaves like {AllGenres}.
type Query struct {
	Text   string
	Genres []string
	Sort   SortKey
}

// NewQuery returns the default query: every genre, top rated first
func NewQuery() Query {
	return Query{Genres: []string{AllGenres}, Sort: SortRating}
}

// AllSelected reports whether the selection carries no genre restriction
func (q Query) AllSelected() bool {
	return len(q.Genres) == 0 || slices.Contains(q.Genres, AllGenres)
}

// Selected reports whether genre is part of the selection
func (q Query) Selected(genre string) bool {
	if genre == AllGenres {
		return q.AllSelected()
	}
	return slices.Contains(q.Genres, genre)
}

// SelectGenre replaces the selection with a single genre.
// Selecting AllGenres clears every concrete genre and vice versa.
func (q Query) SelectGenre(genre string) Query {
	if genre == "" {
		genre = AllGenres
	}
	q.Genres = []string{genre}
	return q
}

// ToggleGenre adds or removes a concrete genre from a multi-selection.
// Removing the last concrete genre falls back to AllGenres.
func (q Query) ToggleGenre(genre string) Query {
	if genre == "" || genre == AllGenres {
		return q.SelectGenre(AllGenres)
	}

	next := make([]string, 0, len(q.Genres)+1)
	removed := false
	for _, g := range q.Genres {
		switch {
		case g == AllGenres:
			continue
		case g == genre:
			removed = true
		default:
			next = append(next, g)
		}
	}
	if !removed {
		next = append(next, genre)
	}
	if len(next) == 0 {
		next = []string{AllGenres}
	}
	q.Genres = next
	return q
}
