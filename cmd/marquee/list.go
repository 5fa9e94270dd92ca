package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"github.com/mmcdole/marquee/internal/catalog"
	"github.com/mmcdole/marquee/internal/domain"
)

// runList prints the filtered catalog. Terminals get a rounded table, pipes
// get tab-separated values. With group set, rows are split into genre
// sections in first-seen order.
func runList(ctx context.Context, out io.Writer, repo domain.CatalogRepository, q domain.Query, group bool) error {
	entries, err := repo.FetchAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to list catalog: %w", err)
	}

	if len(q.Genres) == 1 && q.Genres[0] == "" {
		q.Genres = nil
	}
	view := catalog.DeriveView(entries, q)

	var tw table.Writer
	if group {
		tw = renderGroups(catalog.GroupByGenre(view))
	} else {
		tw = renderEntries(view)
	}
	tw.SetOutputMirror(out)
	if isTerminal(out) {
		tw.SetStyle(table.StyleRounded)
		tw.Render()
	} else {
		tw.RenderTSV()
	}
	return nil
}

func newEntryTable() table.Writer {
	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"Title", "Genre", "Year", "Rating", "Playable"})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw
}

func renderEntries(entries []domain.Entry) table.Writer {
	tw := newEntryTable()
	for _, e := range entries {
		tw.AppendRow(entryRow(e))
	}
	return tw
}

func renderGroups(groups []catalog.GenreGroup) table.Writer {
	tw := newEntryTable()
	for i, g := range groups {
		if i > 0 {
			tw.AppendSeparator()
		}
		for _, e := range g.Entries {
			tw.AppendRow(entryRow(e))
		}
	}
	return tw
}

func entryRow(e domain.Entry) table.Row {
	year := ""
	if e.Year > 0 {
		year = strconv.Itoa(e.Year)
	}
	playable := ""
	if e.IsPlayable() {
		playable = "yes"
	}
	return table.Row{e.Title, e.Genre, year, e.FormattedRating(), playable}
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
