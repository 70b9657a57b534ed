package state

import (
	"fmt"

	"bizdesk/log"

	tea "github.com/charmbracelet/bubbletea"
)

// Confirmation is a pending destructive action waiting for a yes/no.
type Confirmation struct {
	TargetID  string
	Message   string
	OnConfirm func() tea.Cmd
}

// Overlay holds the transient modal flags of one page. Callers are expected
// to keep at most one of them open; the cascade still resolves the case
// where both are set.
type Overlay struct {
	helpOpen bool
	confirm  *Confirmation
}

func (o *Overlay) OpenHelp()      { o.helpOpen = true }
func (o *Overlay) CloseHelp()     { o.helpOpen = false }
func (o *Overlay) HelpOpen() bool { return o.helpOpen }

// Ask opens a confirmation for c, replacing any pending one.
func (o *Overlay) Ask(c Confirmation) {
	o.confirm = &c
}

// Pending returns the open confirmation, or nil.
func (o *Overlay) Pending() *Confirmation {
	return o.confirm
}

// Dismiss closes the confirmation and drops its target.
func (o *Overlay) Dismiss() {
	o.confirm = nil
}

// Accept closes the confirmation and returns its action's command.
func (o *Overlay) Accept() tea.Cmd {
	c := o.confirm
	o.confirm = nil
	if c == nil || c.OnConfirm == nil {
		return nil
	}
	return c.OnConfirm()
}

// Any reports whether a modal is open.
func (o *Overlay) Any() bool {
	return o.helpOpen || o.confirm != nil
}

// Input is the page's text field. *textinput.Model satisfies it.
type Input interface {
	Focused() bool
	Blur()
	Reset()
}

// Selection is the page's row cursor.
type Selection interface {
	Reset()
}

// Outcome names the single step an escape press performed.
type Outcome int

const (
	OutcomeCloseHelp Outcome = iota
	OutcomeCloseConfirm
	OutcomeBlurInput
	OutcomeResetSelection
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCloseHelp:
		return "close-help"
	case OutcomeCloseConfirm:
		return "close-confirm"
	case OutcomeBlurInput:
		return "blur-input"
	case OutcomeResetSelection:
		return "reset-selection"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Cascade resolves what one escape press does on a page. Exactly one step
// runs per call, in this order: close help, close the confirmation, blur and
// clear the focused input, reset the cursor.
type Cascade struct {
	Overlay   *Overlay
	Input     Input
	Selection Selection

	// Name prefixes log lines.
	Name string
}

// Resolve performs one step of the cascade and reports which.
func (c *Cascade) Resolve() Outcome {
	if c.Overlay != nil && c.Overlay.HelpOpen() {
		if c.Overlay.Pending() != nil {
			log.WarningLog.Printf("[%s] escape with help and confirmation both open; closing help", c.Name)
		}
		c.Overlay.CloseHelp()
		return OutcomeCloseHelp
	}
	if c.Overlay != nil && c.Overlay.Pending() != nil {
		c.Overlay.Dismiss()
		return OutcomeCloseConfirm
	}
	if c.Input != nil && c.Input.Focused() {
		c.Input.Blur()
		c.Input.Reset()
		return OutcomeBlurInput
	}
	if c.Selection != nil {
		c.Selection.Reset()
	}
	return OutcomeResetSelection
}
