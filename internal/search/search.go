package search

import (
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/sahilm/fuzzy"

	"github.com/mmcdole/marquee/internal/domain"
)

// Suggestion is a catalog entry matching a partial query
type Suggestion struct {
	Entry          domain.Entry
	MatchedIndexes []int // Byte offsets in Entry.Title that matched (for highlighting)
	Score          int   // Match score (lower = better)
}

// titleIndex implements sahilm/fuzzy.Source over pre-lowered titles
type titleIndex struct {
	entries     []domain.Entry
	lowerTitles []string
}

// String returns the lowercase title at index i (implements fuzzy.Source)
func (idx *titleIndex) String(i int) string { return idx.lowerTitles[i] }

// Len returns the number of entries (implements fuzzy.Source)
func (idx *titleIndex) Len() int { return len(idx.entries) }

// Service offers typo-tolerant title suggestions over the last indexed
// catalog snapshot
type Service struct {
	logger *slog.Logger

	mu    sync.RWMutex
	index *titleIndex
}

// NewService creates a new search service
func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		logger: logger,
		index:  &titleIndex{},
	}
}

// Index replaces the searchable set, deduplicating by entry ID
func (s *Service) Index(entries []domain.Entry) {
	idx := &titleIndex{
		entries:     make([]domain.Entry, 0, len(entries)),
		lowerTitles: make([]string, 0, len(entries)),
	}
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if seen[e.ID] {
			continue
		}
		seen[e.ID] = true
		idx.entries = append(idx.entries, e)
		idx.lowerTitles = append(idx.lowerTitles, strings.ToLower(e.Title))
	}

	s.mu.Lock()
	s.index = idx
	s.mu.Unlock()

	s.logger.Debug("indexed titles", "count", idx.Len(), "skipped", len(entries)-idx.Len())
}

// Count returns the number of indexed entries
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Len()
}

// Suggest returns up to limit entries whose titles match query, best first.
// Titles that contain the query's characters in order are matched first;
// single typos in longer words are tolerated. A limit of zero or less
// returns every match.
func (s *Service) Suggest(query string, limit int) []Suggestion {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	s.mu.RLock()
	idx := s.index
	s.mu.RUnlock()

	if idx.Len() == 0 {
		return nil
	}

	matched := make(map[int]bool)
	var results []Suggestion
	for _, m := range fuzzy.FindFrom(q, idx) {
		matched[m.Index] = true
		results = append(results, Suggestion{
			Entry:          idx.entries[m.Index],
			MatchedIndexes: m.MatchedIndexes,
			Score:          matchScore(q, idx.lowerTitles[m.Index]),
		})
	}

	for i, title := range idx.lowerTitles {
		if matched[i] {
			continue
		}
		if dist, ok := typoDistance(q, title); ok {
			results = append(results, Suggestion{
				Entry: idx.entries[i],
				Score: 100 + dist*20,
			})
		}
	}

	slices.SortStableFunc(results, func(a, b Suggestion) int {
		if a.Score != b.Score {
			return a.Score - b.Score
		}
		return len(a.Entry.Title) - len(b.Entry.Title)
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	s.logger.Debug("suggest", "query", q, "results", len(results))
	return results
}

// Highlight returns the positions in title matched by query, or nil when
// title does not match
func Highlight(query, title string) []int {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	matches := fuzzy.Find(q, []string{strings.ToLower(title)})
	if len(matches) == 0 {
		return nil
	}
	return matches[0].MatchedIndexes
}
