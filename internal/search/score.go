package search

import (
	"strings"
	"unicode"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// matchScore ranks a title that already matched query as a subsequence.
// Lower score = better match
func matchScore(query, title string) int {
	// Exact match is best
	if title == query {
		return 0
	}

	// Prefix match is very good
	if strings.HasPrefix(title, query) {
		return 10
	}

	// Contains match is good
	if strings.Contains(title, query) {
		return 50
	}

	// Scattered match, penalized by the number of skipped characters
	if rank := fuzzy.RankMatchFold(query, title); rank >= 0 {
		return 60 + min(rank, 39)
	}

	return 100 + fuzzy.LevenshteinDistance(query, title)
}

// typoDistance matches every query word against some title word within the
// typo allowance for its length. It returns the summed edit distance.
func typoDistance(query, title string) (int, bool) {
	queryWords := words(query)
	titleWords := words(title)
	if len(queryWords) == 0 || len(titleWords) == 0 {
		return 0, false
	}

	total := 0
	for _, qw := range queryWords {
		allowed := allowedTypos(len([]rune(qw)))
		best := -1
		for _, tw := range titleWords {
			if d := fuzzy.LevenshteinDistance(qw, tw); d <= allowed && (best < 0 || d < best) {
				best = d
			}
		}
		if best < 0 {
			return 0, false
		}
		total += best
	}
	return total, true
}

// allowedTypos returns the number of typos allowed based on word length
// 1-3 chars = 0, 4-6 chars = 1, 7+ chars = 2
func allowedTypos(length int) int {
	switch {
	case length <= 3:
		return 0
	case length <= 6:
		return 1
	default:
		return 2
	}
}

func words(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
