package overlay

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// TextInputOverlay is a single-line prompt. When Validate is set, enter only
// submits a value it accepts; otherwise the error is shown under the field.
type TextInputOverlay struct {
	input textinput.Model
	Title string

	Submitted bool
	Canceled  bool
	Validate  func(string) error
	OnSubmit  func(value string)
	OnCancel  func()

	err   error
	width int
}

// NewTextInputOverlay creates a new text input overlay with the given title and initial value.
func NewTextInputOverlay(title string, initialValue string) *TextInputOverlay {
	ti := textinput.New()
	ti.SetValue(initialValue)
	ti.Prompt = "› "
	ti.CharLimit = 64
	ti.Focus()

	return &TextInputOverlay{
		input: ti,
		Title: title,
		width: 40,
	}
}

func (t *TextInputOverlay) SetSize(width, height int) {
	t.width = width
}

// Init initializes the text input overlay model
func (t *TextInputOverlay) Init() tea.Cmd {
	return textinput.Blink
}

// View renders the model's view
func (t *TextInputOverlay) View() string {
	return t.Render()
}

// TextInputFocused is always true: the prompt owns the keyboard while open.
func (t *TextInputOverlay) TextInputFocused() bool {
	return true
}

// HandleKeyPress processes a key press and updates the state accordingly.
// Returns true if the overlay should be closed.
func (t *TextInputOverlay) HandleKeyPress(msg tea.KeyMsg) bool {
	switch msg.Type {
	case tea.KeyEsc:
		t.Canceled = true
		if t.OnCancel != nil {
			t.OnCancel()
		}
		return true
	case tea.KeyEnter:
		value := t.input.Value()
		if t.Validate != nil {
			if err := t.Validate(value); err != nil {
				t.err = err
				return false
			}
		}
		t.Submitted = true
		if t.OnSubmit != nil {
			t.OnSubmit(value)
		}
		return true
	default:
		t.input, _ = t.input.Update(msg)
		t.err = nil
		return false
	}
}

// GetValue returns the current value of the text input.
func (t *TextInputOverlay) GetValue() string {
	return t.input.Value()
}

// Err returns the last validation error.
func (t *TextInputOverlay) Err() error {
	return t.err
}

// Render renders the text input overlay.
func (t *TextInputOverlay) Render() string {
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(1, 2).
		Width(t.width)

	titleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("62")).
		Bold(true).
		MarginBottom(1)

	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))
	hintStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	t.input.Width = max(t.width-8, 1)

	content := titleStyle.Render(t.Title) + "\n"
	content += t.input.View() + "\n\n"
	if t.err != nil {
		content += errStyle.Render(t.err.Error())
	} else {
		content += hintStyle.Render("↵ submit · esc cancel")
	}
	return style.Render(content)
}
