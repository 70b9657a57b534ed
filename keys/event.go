package keys

import (
	"strings"
	"unicode"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
)

// FocusReporter tells the normaliser whether keystrokes are currently going
// into a text field. It is the terminal equivalent of checking whether the
// active element is an input or textarea.
type FocusReporter interface {
	TextInputFocused() bool
}

// FocusFunc adapts a plain function to FocusReporter.
type FocusFunc func() bool

func (f FocusFunc) TextInputFocused() bool { return f() }

// Event is a normalised key press.
type Event struct {
	// Key is the lower-cased rune ("n", "?", "1") or the bubbletea name of a
	// special key ("enter", "esc", "up").
	Key   string
	Ctrl  bool
	Shift bool
	Alt   bool

	// InInput is true when a text field had focus at the time of the press.
	InInput bool

	// Runes holds the original characters so a suppressed event can still
	// be typed into the focused field.
	Runes []rune
}

// Normalize converts a bubbletea key message into an Event. focus may be nil.
func Normalize(msg tea.KeyMsg, focus FocusReporter) Event {
	ev := parse(msg.String())
	if msg.Type == tea.KeyRunes {
		ev.Runes = msg.Runes
	}
	if focus != nil {
		ev.InInput = focus.TextInputFocused()
	}
	return ev
}

// Chord returns the (key, ctrl, shift) tuple the event is matched on.
func (e Event) Chord() Chord {
	return Chord{Key: e.Key, Ctrl: e.Ctrl, Shift: e.Shift}
}

// IsRune reports whether the event is a single printable character.
func (e Event) IsRune() bool {
	return utf8.RuneCountInString(e.Key) == 1 && !e.Ctrl && !e.Alt
}

func (e Event) String() string {
	s := e.Chord().String()
	if e.Alt {
		s = "alt+" + s
	}
	return s
}

// parse splits a bubbletea key string ("ctrl+k", "shift+up", "alt+x", "N")
// into modifiers and a base key. Shift on a letter is folded into the key
// name by the terminal, so upper-case letters are lowered and flagged.
func parse(s string) Event {
	var ev Event
	for {
		if rest, ok := cutModifier(s, "ctrl+"); ok {
			ev.Ctrl, s = true, rest
		} else if rest, ok := cutModifier(s, "alt+"); ok {
			ev.Alt, s = true, rest
		} else if rest, ok := cutModifier(s, "shift+"); ok {
			ev.Shift, s = true, rest
		} else {
			break
		}
	}

	if r, size := utf8.DecodeRuneInString(s); size == len(s) && unicode.IsUpper(r) {
		ev.Shift = true
		s = string(unicode.ToLower(r))
	}
	if s == " " {
		s = "space"
	}
	ev.Key = s
	return ev
}

// cutModifier strips a modifier prefix, refusing to eat a bare "ctrl+".
func cutModifier(s, mod string) (string, bool) {
	rest, ok := strings.CutPrefix(s, mod)
	if !ok || rest == "" {
		return s, false
	}
	return rest, true
}
