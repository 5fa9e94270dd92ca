package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/marquee/internal/catalog"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/tui/components"
	"github.com/mmcdole/marquee/internal/tui/styles"
)

// adminScreen lists the catalog in cache order and edits it
type adminScreen struct {
	list components.EntryList
	form components.EntryForm

	// Entry awaiting delete confirmation
	deleting *domain.Entry

	// A mutation is in flight
	pending bool
}

func newAdminScreen() adminScreen {
	a := adminScreen{}
	a.reset()
	return a
}

func (a *adminScreen) reset() {
	a.list = components.NewEntryList("Loading catalog...")
	a.form = components.NewEntryForm()
	a.deleting = nil
	a.pending = false
}

// derive shows the cache as-is, so new entries appear at the top
func (a *adminScreen) derive(entries []domain.Entry) {
	if len(entries) == 0 {
		a.list.SetEmptyText("No titles yet. Press n to add one.")
	}
	a.list.SetEntries(entries)
}

func (a adminScreen) confirming() bool {
	return a.deleting != nil
}

// handleAdminKey handles keys on the admin screen
func (m Model) handleAdminKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a := &m.admin
	mut := m.session.Mutator

	if a.form.IsVisible() {
		var (
			cmd       tea.Cmd
			submitted bool
		)
		a.form, cmd, submitted = a.form.Update(msg)
		if !submitted {
			return m, cmd
		}
		if a.pending {
			return m, nil
		}
		return m, m.submitForm(mut)
	}

	if a.deleting != nil {
		switch {
		case key.Matches(msg, Keys.Confirm):
			e := *a.deleting
			a.deleting = nil
			a.pending = true
			return m, DeleteEntryCmd(mut, m.opts.Token, e)
		case key.Matches(msg, Keys.Deny):
			a.deleting = nil
		}
		return m, nil
	}

	if handleListKey(&a.list, msg, m.pageSize()) {
		return m, nil
	}

	switch {
	case key.Matches(msg, Keys.New):
		a.form.ShowCreate()
		return m, nil

	case key.Matches(msg, Keys.Edit):
		if e, ok := a.list.Selected(); ok {
			if catalog.IsProvisional(e) {
				return m, m.setStatus("Still saving "+e.Title, true)
			}
			a.form.ShowEdit(e)
		}
		return m, nil

	case key.Matches(msg, Keys.Delete):
		if e, ok := a.list.Selected(); ok && !catalog.IsProvisional(e) {
			a.deleting = &e
		}
		return m, nil
	}

	return m, nil
}

// submitForm turns the form into a create or update command
func (m *Model) submitForm(mut *catalog.Mutator) tea.Cmd {
	a := &m.admin

	if a.form.IsEditing() {
		patch, err := a.form.Patch()
		if err != nil {
			a.form.SetError(err.Error())
			return nil
		}
		if patch.IsEmpty() {
			a.form.Hide()
			return m.setStatus("No changes", false)
		}
		a.form.SetError("")
		a.pending = true
		return UpdateEntryCmd(mut, m.opts.Token, a.form.Original().ID, patch)
	}

	draft, err := a.form.Draft()
	if err != nil {
		a.form.SetError(err.Error())
		return nil
	}
	a.form.SetError("")
	a.pending = true
	return CreateEntryCmd(mut, m.opts.Token, draft)
}

// view renders the admin screen
func (a adminScreen) view(width int) string {
	if a.form.IsVisible() {
		return a.form.View()
	}

	header := styles.SubtitleStyle.Render("Catalog entries") + "  " +
		styles.DimStyle.Render(a.list.Position())
	if a.pending {
		header += "  " + styles.DimBadgeStyle.Render("saving")
	}

	rows := []string{header, a.list.View()}
	if a.deleting != nil {
		prompt := styles.ModalTitleStyle.Render("Delete "+styles.Truncate(a.deleting.Title, max(width-20, 10))+"?") +
			"\n" + styles.RenderHelp([2]string{"y", "delete"}, [2]string{"n", "cancel"})
		rows = append(rows, styles.ModalStyle.Render(prompt))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (a adminScreen) help() string {
	if a.deleting != nil {
		return styles.RenderHelp([2]string{"y", "confirm"}, [2]string{"n/esc", "cancel"})
	}
	return styles.RenderHelp(
		[2]string{"n", "new"},
		[2]string{"e", "edit"},
		[2]string{"d", "delete"},
		[2]string{"r", "refresh"},
		[2]string{"tab", "browse"},
		[2]string{"q", "quit"},
	)
}
