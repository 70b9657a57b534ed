package keys

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runeMsg(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		msg  tea.KeyMsg
		want Chord
	}{
		{"lower rune", runeMsg('n'), Chord{Key: "n"}},
		{"upper rune folds shift", runeMsg('N'), Chord{Key: "n", Shift: true}},
		{"question mark", runeMsg('?'), Chord{Key: "?"}},
		{"slash", runeMsg('/'), Chord{Key: "/"}},
		{"digit", runeMsg('3'), Chord{Key: "3"}},
		{"ctrl+k", tea.KeyMsg{Type: tea.KeyCtrlK}, Chord{Key: "k", Ctrl: true}},
		{"escape", tea.KeyMsg{Type: tea.KeyEsc}, Chord{Key: "esc"}},
		{"enter", tea.KeyMsg{Type: tea.KeyEnter}, Chord{Key: "enter"}},
		{"arrow", tea.KeyMsg{Type: tea.KeyDown}, Chord{Key: "down"}},
		{"shift arrow", tea.KeyMsg{Type: tea.KeyShiftUp}, Chord{Key: "up", Shift: true}},
		{"shift tab", tea.KeyMsg{Type: tea.KeyShiftTab}, Chord{Key: "tab", Shift: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := Normalize(tt.msg, nil)
			assert.Equal(t, tt.want, ev.Chord())
			assert.False(t, ev.InInput)
		})
	}
}

func TestNormalizeReadsFocus(t *testing.T) {
	focused := FocusFunc(func() bool { return true })
	ev := Normalize(runeMsg('e'), focused)
	assert.True(t, ev.InInput)
	assert.Equal(t, []rune{'e'}, ev.Runes)

	blurred := FocusFunc(func() bool { return false })
	assert.False(t, Normalize(runeMsg('e'), blurred).InInput)
}

func TestNormalizeAlt(t *testing.T) {
	ev := Normalize(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}, Alt: true}, nil)
	assert.True(t, ev.Alt)
	assert.Equal(t, "x", ev.Key)
	assert.False(t, ev.IsRune())
	assert.Equal(t, "alt+x", ev.String())
}

func TestParseChord(t *testing.T) {
	c, err := ParseChord("ctrl+k")
	require.NoError(t, err)
	assert.Equal(t, Chord{Key: "k", Ctrl: true}, c)

	c, err = ParseChord("E")
	require.NoError(t, err)
	assert.Equal(t, Chord{Key: "e", Shift: true}, c)
	assert.Equal(t, Chord{Key: "e"}, c.Unshifted())

	_, err = ParseChord("")
	assert.Error(t, err)

	_, err = ParseChord("alt+x")
	assert.Error(t, err)

	// A lone "+" is a key, not a modifier separator.
	c, err = ParseChord("+")
	require.NoError(t, err)
	assert.Equal(t, "+", c.Key)
}

func TestChordString(t *testing.T) {
	assert.Equal(t, "ctrl+k", MustParseChord("ctrl+k").String())
	assert.Equal(t, "N", MustParseChord("N").String())
	assert.Equal(t, "↑", MustParseChord("up").String())
	assert.Equal(t, "shift+↓", MustParseChord("shift+down").String())
	assert.Equal(t, "/", MustParseChord("/").String())
}

func TestBindingUnknownIsDisabled(t *testing.T) {
	assert.False(t, Binding(KeyName(999)).Enabled())
	assert.True(t, Binding(KeyQuit).Enabled())
	assert.Equal(t, HelpCategoryOther, GetKeyHelp(KeyQuit).Category)
	assert.Equal(t, HelpCategoryUncategory, GetKeyHelp(KeyName(999)).Category)
}
