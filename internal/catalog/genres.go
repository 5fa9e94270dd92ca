package catalog

import (
	"github.com/mmcdole/marquee/internal/domain"
)

// DeriveGenres returns the AllGenres sentinel followed by every distinct
// genre in first-seen order. Genres compare case-sensitively.
func DeriveGenres(entries []domain.Entry) []string {
	genres := []string{domain.AllGenres}
	seen := map[string]bool{domain.AllGenres: true}
	for _, e := range entries {
		if seen[e.Genre] {
			continue
		}
		seen[e.Genre] = true
		genres = append(genres, e.Genre)
	}
	return genres
}

// GenreGroup is one row of entries sharing a genre
type GenreGroup struct {
	Genre   string
	Entries []domain.Entry
}

// GroupByGenre groups entries by genre, ordered by first appearance.
// Entries keep their relative order within a group.
func GroupByGenre(entries []domain.Entry) []GenreGroup {
	var groups []GenreGroup
	index := make(map[string]int)
	for _, e := range entries {
		i, ok := index[e.Genre]
		if !ok {
			i = len(groups)
			index[e.Genre] = i
			groups = append(groups, GenreGroup{Genre: e.Genre})
		}
		groups[i].Entries = append(groups[i].Entries, e)
	}
	return groups
}
