package components

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/tui/styles"
)

// Form field order
const (
	FieldTitle = iota
	FieldGenre
	FieldRating
	FieldYear
	FieldDescription
	FieldPoster
	FieldVideo
	FieldFeatured
	fieldCount
)

var fieldLabels = [fieldCount]string{
	"Title", "Genre", "Rating", "Year", "Description", "Poster URL", "Video URL", "Featured (y/n)",
}

// EntryForm is the admin modal for creating and editing entries
type EntryForm struct {
	visible  bool
	editing  bool
	original domain.Entry
	inputs   []textinput.Model
	focus    int
	err      string
}

// NewEntryForm creates a hidden form
func NewEntryForm() EntryForm {
	inputs := make([]textinput.Model, fieldCount)
	for i := range inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Width = 48
		ti.CharLimit = 512
		ti.TextStyle = lipgloss.NewStyle().Foreground(styles.White)
		ti.PlaceholderStyle = styles.DimStyle
		inputs[i] = ti
	}
	inputs[FieldRating].Placeholder = "0-10"
	inputs[FieldYear].Placeholder = "e.g. 2010"
	inputs[FieldFeatured].Placeholder = "n"
	inputs[FieldFeatured].CharLimit = 3

	return EntryForm{inputs: inputs}
}

// ShowCreate opens an empty form for a new entry
func (f *EntryForm) ShowCreate() {
	f.editing = false
	f.original = domain.Entry{}
	f.fill(domain.Entry{})
	f.open()
}

// ShowEdit opens the form pre-filled with an existing entry
func (f *EntryForm) ShowEdit(e domain.Entry) {
	f.editing = true
	f.original = e
	f.fill(e)
	f.open()
}

func (f *EntryForm) fill(e domain.Entry) {
	values := [fieldCount]string{
		e.Title, e.Genre, "", "", e.Description, e.PosterURL, e.PlaybackURL, "n",
	}
	if e.Rating != 0 {
		values[FieldRating] = strconv.FormatFloat(e.Rating, 'f', -1, 64)
	}
	if e.Year != 0 {
		values[FieldYear] = strconv.Itoa(e.Year)
	}
	if e.Featured {
		values[FieldFeatured] = "y"
	}
	for i := range f.inputs {
		f.inputs[i].SetValue(values[i])
	}
}

func (f *EntryForm) open() {
	f.visible = true
	f.err = ""
	f.setFocus(0)
}

// Hide dismisses the form
func (f *EntryForm) Hide() {
	f.visible = false
	for i := range f.inputs {
		f.inputs[i].Blur()
	}
}

// IsVisible returns whether the form is shown
func (f EntryForm) IsVisible() bool {
	return f.visible
}

// IsEditing reports whether the form edits an existing entry
func (f EntryForm) IsEditing() bool {
	return f.editing
}

// Original returns the entry being edited
func (f EntryForm) Original() domain.Entry {
	return f.original
}

// SetError shows a message under the fields
func (f *EntryForm) SetError(msg string) {
	f.err = msg
}

// SetValue sets a field's text
func (f *EntryForm) SetValue(field int, value string) {
	f.inputs[field].SetValue(value)
}

// Focused returns the focused field
func (f EntryForm) Focused() int {
	return f.focus
}

func (f *EntryForm) setFocus(i int) {
	f.inputs[f.focus].Blur()
	f.focus = (i + fieldCount) % fieldCount
	f.inputs[f.focus].Focus()
}

// Update handles input events, returns (form, cmd, submitted)
func (f EntryForm) Update(msg tea.Msg) (EntryForm, tea.Cmd, bool) {
	if !f.visible {
		return f, nil, false
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			f.Hide()
			return f, nil, false
		case "ctrl+s":
			return f, nil, true
		case "enter":
			if f.focus == fieldCount-1 {
				return f, nil, true
			}
			f.setFocus(f.focus + 1)
			return f, nil, false
		case "tab", "down":
			f.setFocus(f.focus + 1)
			return f, nil, false
		case "shift+tab", "up":
			f.setFocus(f.focus - 1)
			return f, nil, false
		}
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd, false
}

func (f EntryForm) value(field int) string {
	return strings.TrimSpace(f.inputs[field].Value())
}

// Draft parses the fields into a new entry. Only number parsing is checked
// here; required fields are validated by the mutator.
func (f EntryForm) Draft() (domain.Entry, error) {
	rating, err := parseRating(f.value(FieldRating))
	if err != nil {
		return domain.Entry{}, err
	}
	year, err := parseYear(f.value(FieldYear))
	if err != nil {
		return domain.Entry{}, err
	}

	return domain.Entry{
		Title:       f.value(FieldTitle),
		Genre:       f.value(FieldGenre),
		Rating:      rating,
		Year:        year,
		Description: f.value(FieldDescription),
		PosterURL:   f.value(FieldPoster),
		PlaybackURL: f.value(FieldVideo),
		Featured:    parseYes(f.value(FieldFeatured)),
	}, nil
}

// Patch returns only the fields that differ from the entry being edited
func (f EntryForm) Patch() (domain.EntryPatch, error) {
	draft, err := f.Draft()
	if err != nil {
		return domain.EntryPatch{}, err
	}

	o := f.original
	var p domain.EntryPatch
	if draft.Title != o.Title {
		p.Title = &draft.Title
	}
	if draft.Genre != o.Genre {
		p.Genre = &draft.Genre
	}
	if draft.Rating != o.Rating {
		p.Rating = &draft.Rating
	}
	if draft.Year != o.Year {
		p.Year = &draft.Year
	}
	if draft.Description != o.Description {
		p.Description = &draft.Description
	}
	if draft.PosterURL != o.PosterURL {
		p.PosterURL = &draft.PosterURL
	}
	if draft.PlaybackURL != o.PlaybackURL {
		p.PlaybackURL = &draft.PlaybackURL
	}
	if draft.Featured != o.Featured {
		p.Featured = &draft.Featured
	}
	return p, nil
}

func parseRating(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, domain.NewRequestError(domain.ErrValidationFailed, 0, "rating must be a number")
	}
	return v, nil
}

func parseYear(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, domain.NewRequestError(domain.ErrValidationFailed, 0, "year must be a whole number")
	}
	return v, nil
}

func parseYes(s string) bool {
	switch strings.ToLower(s) {
	case "y", "yes", "true":
		return true
	default:
		return false
	}
}

// View renders the form modal
func (f EntryForm) View() string {
	if !f.visible {
		return ""
	}

	title := "New entry"
	if f.editing {
		title = "Edit " + styles.Truncate(f.original.Title, 32)
	}

	const labelWidth = 16
	rows := []string{styles.ModalTitleStyle.Render(title)}
	for i, in := range f.inputs {
		label := styles.DimStyle.Render(styles.Pad(fieldLabels[i], labelWidth))
		if i == f.focus {
			label = styles.AccentStyle.Render(styles.Pad(fieldLabels[i], labelWidth))
		}
		rows = append(rows, label+in.View())
	}
	if f.err != "" {
		rows = append(rows, "", styles.ErrorStyle.Render(f.err))
	}
	rows = append(rows, "", styles.RenderHelp(
		[2]string{"tab", "next"},
		[2]string{"ctrl+s", "save"},
		[2]string{"esc", "cancel"},
	))

	return styles.ModalStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
