package keys

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyName identifies an application-level key. Page shortcuts live in the
// cmd registry; these are the keys the shell and the overlays handle
// themselves.
type KeyName int

const (
	KeyQuit KeyName = iota
	KeyNextResource
	KeyPrevResource
	KeyBack // Back leaves a detail or form view.

	// Confirmation overlay
	KeyConfirm
	KeyCancel

	// Form views
	KeySubmit
	KeyNextField
	KeyPrevField

	KeyHelpClose
)

// GlobalKeyStringsMap is a global, immutable map of key string to key name.
var GlobalKeyStringsMap = map[string]KeyName{
	"ctrl+c":    KeyQuit,
	"q":         KeyQuit,
	"tab":       KeyNextResource,
	"shift+tab": KeyPrevResource,
	"esc":       KeyBack,
}

// GlobalkeyBindings is a global, immutable map of KeyName to keybinding.
var GlobalkeyBindings = map[KeyName]key.Binding{
	KeyQuit: key.NewBinding(
		key.WithKeys("ctrl+c", "q"),
		key.WithHelp("q", "quit"),
	),
	KeyNextResource: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next screen"),
	),
	KeyPrevResource: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("shift+tab", "previous screen"),
	),
	KeyBack: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back"),
	),
	KeyConfirm: key.NewBinding(
		key.WithKeys("y", "Y", "enter"),
		key.WithHelp("y/↵", "confirm"),
	),
	KeyCancel: key.NewBinding(
		key.WithKeys("n", "N"),
		key.WithHelp("n", "cancel"),
	),
	KeySubmit: key.NewBinding(
		key.WithKeys("ctrl+s", "enter"),
		key.WithHelp("ctrl+s", "save"),
	),
	KeyNextField: key.NewBinding(
		key.WithKeys("tab", "down"),
		key.WithHelp("tab", "next field"),
	),
	KeyPrevField: key.NewBinding(
		key.WithKeys("shift+tab", "up"),
		key.WithHelp("shift+tab", "previous field"),
	),
	KeyHelpClose: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "close help"),
	),
}

// Binding returns the binding for name. Unknown names yield a disabled binding.
func Binding(name KeyName) key.Binding {
	b, ok := GlobalkeyBindings[name]
	if !ok {
		return key.NewBinding(key.WithDisabled())
	}
	return b
}
