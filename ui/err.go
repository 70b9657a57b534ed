package ui

import (
	"strings"

	"bizdesk/api"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
)

var errStyle = lipgloss.NewStyle().
	Foreground(lipgloss.AdaptiveColor{Light: "#FF0000", Dark: "#FF0000"})

var infoStyle = lipgloss.NewStyle().
	Foreground(lipgloss.AdaptiveColor{Light: "#2f7a46", Dark: "#51bd73"})

// ErrBox is the one-line inline banner a page shows for a failed request or
// a short status message. It replaces blocking alerts.
type ErrBox struct {
	height, width int
	err           error
	info          string
}

func NewErrBox() *ErrBox {
	return &ErrBox{}
}

// SetError shows err, replacing any status message.
func (e *ErrBox) SetError(err error) {
	e.err = err
	e.info = ""
}

// SetInfo shows a non-error status message.
func (e *ErrBox) SetInfo(msg string) {
	e.err = nil
	e.info = msg
}

// Clear dismisses the banner.
func (e *ErrBox) Clear() {
	e.err = nil
	e.info = ""
}

// Err returns the error on display, if any.
func (e *ErrBox) Err() error {
	return e.err
}

// Text returns the banner text without styling.
func (e *ErrBox) Text() string {
	var text string
	switch {
	case e.err != nil:
		text = api.DisplayMessage(e.err)
	case e.info != "":
		text = e.info
	default:
		return ""
	}
	text = strings.Join(strings.Split(text, "\n"), "//")
	if e.width > 3 {
		text = truncate.StringWithTail(text, uint(e.width-3), "...")
	}
	return text
}

func (e *ErrBox) SetSize(width, height int) {
	e.width = width
	e.height = height
}

func (e *ErrBox) String() string {
	style := infoStyle
	if e.err != nil {
		style = errStyle
	}
	text := style.Render(e.Text())
	if e.width == 0 || e.height == 0 {
		return text
	}
	return lipgloss.Place(e.width, e.height, lipgloss.Center, lipgloss.Center, text)
}
