package keys

import (
	"fmt"
	"strings"
)

// Chord is the normalised (key, ctrl, shift) tuple a shortcut is declared with.
type Chord struct {
	Key   string
	Ctrl  bool
	Shift bool
}

// ParseChord parses a chord such as "ctrl+k", "/", "N" or "shift+down".
func ParseChord(s string) (Chord, error) {
	if strings.TrimSpace(s) == "" {
		return Chord{}, fmt.Errorf("empty chord")
	}
	ev := parse(s)
	if ev.Alt {
		return Chord{}, fmt.Errorf("chord %q: alt is not supported", s)
	}
	if ev.Key == "" {
		return Chord{}, fmt.Errorf("chord %q has no key", s)
	}
	return ev.Chord(), nil
}

// MustParseChord is ParseChord for static tables.
func MustParseChord(s string) Chord {
	c, err := ParseChord(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Unshifted returns the chord without the shift flag.
func (c Chord) Unshifted() Chord {
	c.Shift = false
	return c
}

// displayNames maps special keys to the glyphs shown in help legends.
var displayNames = map[string]string{
	"up":     "↑",
	"down":   "↓",
	"left":   "←",
	"right":  "→",
	"enter":  "↵",
	"esc":    "esc",
	"space":  "space",
	"tab":    "tab",
	"pgup":   "pgup",
	"pgdown": "pgdn",
}

// String renders the chord for humans: "ctrl+k", "N", "↑".
func (c Chord) String() string {
	key := c.Key
	if name, ok := displayNames[key]; ok {
		key = name
	} else if c.Shift && len([]rune(key)) == 1 {
		key = strings.ToUpper(key)
		return prefix(c.Ctrl, false) + key
	}
	return prefix(c.Ctrl, c.Shift) + key
}

func prefix(ctrl, shift bool) string {
	var p string
	if ctrl {
		p += "ctrl+"
	}
	if shift {
		p += "shift+"
	}
	return p
}
