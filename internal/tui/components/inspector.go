package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/tui/styles"
)

// RenderInspector renders the detail panel for an entry
func RenderInspector(e domain.Entry, width int) string {
	inner := max(width-4, 10)

	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render(styles.Truncate(e.Title, inner)))
	if e.Featured {
		b.WriteString(" " + styles.BadgeStyle.Render("FEATURED"))
	}
	b.WriteString("\n")

	meta := []string{styles.RenderRating(e.Rating, e.FormattedRating())}
	if sub := e.Subtitle(); sub != "" {
		meta = append(meta, styles.SubtitleStyle.Render(sub))
	}
	if !e.CreatedAt.IsZero() {
		meta = append(meta, styles.DimStyle.Render(fmt.Sprintf("added %s", e.CreatedAt.Format("2006-01-02"))))
	}
	b.WriteString(strings.Join(meta, "  "))
	b.WriteString("\n")

	if e.Description != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Width(inner).Render(e.Description))
		b.WriteString("\n")
	}

	if e.IsPlayable() {
		b.WriteString("\n" + styles.DimStyle.Render(styles.Truncate(e.PlaybackURL, inner)))
	} else {
		b.WriteString("\n" + styles.ErrorStyle.Render("No playback URL"))
	}

	return styles.InspectorStyle.Width(width - 2).Render(b.String())
}
