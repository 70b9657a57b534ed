package overlay

import (
	"fmt"

	"bizdesk/keys"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
)

// ConfirmationOverlay asks a yes/no question before a destructive action.
// Escape is not handled here; pages close the dialog through their escape
// cascade.
type ConfirmationOverlay struct {
	Dismissed bool
	OnConfirm func()
	OnCancel  func()

	message     string
	width       int
	borderColor lipgloss.Color
}

func NewConfirmationOverlay(message string) *ConfirmationOverlay {
	return &ConfirmationOverlay{
		message:     message,
		width:       50,
		borderColor: lipgloss.Color("#de613e"),
	}
}

// HandleKeyPress reports whether the key closed the dialog.
func (c *ConfirmationOverlay) HandleKeyPress(msg tea.KeyMsg) bool {
	switch {
	case key.Matches(msg, keys.Binding(keys.KeyConfirm)):
		c.Dismissed = true
		if c.OnConfirm != nil {
			c.OnConfirm()
		}
		return true
	case key.Matches(msg, keys.Binding(keys.KeyCancel)):
		c.Dismissed = true
		if c.OnCancel != nil {
			c.OnCancel()
		}
		return true
	}
	return false
}

func (c *ConfirmationOverlay) SetWidth(width int) {
	c.width = width
}

func (c *ConfirmationOverlay) Render() string {
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(c.borderColor).
		Padding(1, 2).
		Width(c.width)

	confirm := keys.Binding(keys.KeyConfirm).Help()
	cancel := keys.Binding(keys.KeyCancel).Help()
	hint := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).
		Render(fmt.Sprintf("%s %s · %s %s · esc", confirm.Key, confirm.Desc, cancel.Key, cancel.Desc))

	body := c.message
	if c.width > 4 {
		body = wordwrap.String(body, c.width-4)
	}
	return style.Render(body + "\n\n" + hint)
}
