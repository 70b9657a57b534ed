package app

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"bizdesk/api"
	"bizdesk/cmd"
	"bizdesk/keys"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
)

var (
	formTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	labelStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#36CFC9")).Width(14)
	hintStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// fieldKind is the JSON type an input is sent as.
type fieldKind int

const (
	textField fieldKind = iota
	numberField
	boolField
)

// form is the detail, edit and create screen of a resource. A read-only form
// lists every field of the entity; an editable one has an input per field.
type form struct {
	route    cmd.Route
	title    string
	fields   []string
	kinds    []fieldKind
	inputs   []textinput.Model
	entity   api.Entity
	readOnly bool
	focus    int
	width    int
}

// newForm builds the view for route. An input keeps the type the entity
// holds for its field; fields the entity lacks are numbers when listed in
// numeric and text otherwise.
func newForm(route cmd.Route, title string, fields, numeric []string, entity api.Entity, readOnly bool) *form {
	f := &form{
		route:    route,
		title:    title,
		fields:   fields,
		entity:   entity,
		readOnly: readOnly,
	}
	if readOnly {
		return f
	}
	f.kinds = make([]fieldKind, len(fields))
	for i, field := range fields {
		f.kinds[i] = kindOf(entity, field, numeric)
	}
	f.inputs = make([]textinput.Model, len(fields))
	for i, field := range fields {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = field
		ti.CharLimit = 256
		ti.SetValue(entity.String(field))
		ti.CursorEnd()
		f.inputs[i] = ti
	}
	if len(f.inputs) > 0 {
		f.inputs[0].Focus()
	}
	return f
}

func (f *form) setWidth(width int) {
	f.width = width
	for i := range f.inputs {
		f.inputs[i].Width = max(width-18, 10)
	}
}

func (f *form) move(delta int) tea.Cmd {
	if len(f.inputs) == 0 {
		return nil
	}
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + delta + len(f.inputs)) % len(f.inputs)
	return f.inputs[f.focus].Focus()
}

// update handles a key press on an editable form. submit is true when the
// user asked to save.
func (f *form) update(msg tea.KeyMsg) (cmd tea.Cmd, submit bool) {
	if f.readOnly {
		return nil, false
	}
	switch {
	case key.Matches(msg, keys.Binding(keys.KeySubmit)):
		return nil, true
	case key.Matches(msg, keys.Binding(keys.KeyNextField)):
		return f.move(1), false
	case key.Matches(msg, keys.Binding(keys.KeyPrevField)):
		return f.move(-1), false
	}
	if len(f.inputs) == 0 {
		return nil, false
	}
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd, false
}

func kindOf(entity api.Entity, field string, numeric []string) fieldKind {
	switch entity.Fields[field].(type) {
	case float64, int:
		return numberField
	case bool:
		return boolField
	case nil:
		if slices.Contains(numeric, field) {
			return numberField
		}
	}
	return textField
}

// payload collects the inputs, typed by their field kind. Text is sent as
// typed. Empty fields are left out of an update.
func (f *form) payload() (map[string]any, error) {
	out := make(map[string]any, len(f.fields))
	for i, field := range f.fields {
		raw := strings.TrimSpace(f.inputs[i].Value())
		if raw == "" {
			continue
		}
		switch f.kinds[i] {
		case numberField:
			n, err := strconv.ParseFloat(raw, 64)
			if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
				return nil, fmt.Errorf("%s must be a number, got %q", field, raw)
			}
			out[field] = n
		case boolField:
			b, err := strconv.ParseBool(raw)
			if err != nil {
				return nil, fmt.Errorf("%s must be true or false, got %q", field, raw)
			}
			out[field] = b
		default:
			out[field] = raw
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("fill in at least one field")
	}
	return out, nil
}

func (f *form) View() string {
	var b strings.Builder
	b.WriteString(formTitleStyle.Render(f.title))
	b.WriteString("\n\n")

	if f.readOnly {
		valueWidth := max(f.width-16, 20)
		for _, field := range f.entity.Keys() {
			value := wordwrap.String(f.entity.String(field), valueWidth)
			value = strings.ReplaceAll(value, "\n", "\n"+strings.Repeat(" ", 14))
			b.WriteString(labelStyle.Render(field) + value + "\n")
		}
		b.WriteString("\n" + hintStyle.Render("e edit · esc back"))
		return b.String()
	}

	for i, field := range f.fields {
		b.WriteString(labelStyle.Render(field) + f.inputs[i].View() + "\n")
	}
	submit := keys.Binding(keys.KeySubmit).Help()
	next := keys.Binding(keys.KeyNextField).Help()
	b.WriteString("\n" + hintStyle.Render(fmt.Sprintf("%s %s · %s %s · esc back", submit.Key, submit.Desc, next.Key, next.Desc)))
	return b.String()
}
