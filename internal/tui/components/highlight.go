package components

import (
	"strings"

	"github.com/mmcdole/marquee/internal/tui/styles"
)

// highlightMatches renders text with the matched byte offsets emphasized
func highlightMatches(text string, matchedIndexes []int, selected bool) string {
	normal, match := styles.NormalItemStyle.UnsetPadding(), styles.MatchHighlightStyle
	if selected {
		normal, match = styles.SelectedItemStyle.UnsetPadding(), styles.MatchHighlightSelectedStyle
	}
	if len(matchedIndexes) == 0 {
		return normal.Render(text)
	}

	matchSet := make(map[int]bool, len(matchedIndexes))
	for _, idx := range matchedIndexes {
		matchSet[idx] = true
	}

	// Batch consecutive characters with the same style
	var result, batch strings.Builder
	batchIsMatch := false
	flush := func() {
		if batch.Len() == 0 {
			return
		}
		if batchIsMatch {
			result.WriteString(match.Render(batch.String()))
		} else {
			result.WriteString(normal.Render(batch.String()))
		}
		batch.Reset()
	}

	for i, r := range text {
		if matchSet[i] != batchIsMatch {
			flush()
			batchIsMatch = matchSet[i]
		}
		batch.WriteRune(r)
	}
	flush()

	return result.String()
}
