package overlay

import (
	"bytes"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/ansi"
	"github.com/muesli/reflow/truncate"
)

var shadowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#333333"))

// PlaceOverlay draws fg on top of bg with its top-left corner at (x, y).
// When center is set x and y are ignored and fg is centred. Both strings may
// contain ANSI styling.
func PlaceOverlay(x, y int, fg, bg string, shadow bool, center bool) string {
	fgLines, fgWidth := getLines(fg)
	bgLines, bgWidth := getLines(bg)
	bgHeight := len(bgLines)
	fgHeight := len(fgLines)

	if shadow {
		var sb strings.Builder
		shadowChar := shadowStyle.Render("░")
		for i := 0; i <= fgHeight; i++ {
			if i == 0 {
				sb.WriteString(" " + strings.Repeat(" ", fgWidth) + "\n")
			} else {
				sb.WriteString(" " + strings.Repeat(shadowChar, fgWidth) + "\n")
			}
		}
		fg = PlaceOverlay(0, 0, fg, strings.TrimSuffix(sb.String(), "\n"), false, false)
		fgLines, fgWidth = getLines(fg)
		fgHeight = len(fgLines)
	}

	if fgWidth >= bgWidth && fgHeight >= bgHeight {
		return fg
	}

	if center {
		x = bgWidth/2 - fgWidth/2
		y = bgHeight/2 - fgHeight/2
	}
	x = clamp(x, 0, max(bgWidth-fgWidth, 0))
	y = clamp(y, 0, max(bgHeight-fgHeight, 0))

	var b strings.Builder
	for i, bgLine := range bgLines {
		if i > 0 {
			b.WriteByte('\n')
		}
		if i < y || i >= y+fgHeight {
			b.WriteString(bgLine)
			continue
		}

		pos := 0
		if x > 0 {
			left := truncate.String(bgLine, uint(x))
			pos = ansi.PrintableRuneWidth(left)
			b.WriteString(left)
			if pos < x {
				b.WriteString(strings.Repeat(" ", x-pos))
				pos = x
			}
		}

		fgLine := fgLines[i-y]
		b.WriteString(fgLine)
		pos += ansi.PrintableRuneWidth(fgLine)

		right := cutLeft(bgLine, pos)
		bgLineWidth := ansi.PrintableRuneWidth(bgLine)
		rightWidth := ansi.PrintableRuneWidth(right)
		if gap := bgLineWidth - rightWidth - pos; gap > 0 {
			b.WriteString(strings.Repeat(" ", gap))
		}
		b.WriteString(right)
	}
	return b.String()
}

// cutLeft drops the first cutWidth printable cells of s. Styling that was
// active at the cut is replayed so the remainder keeps its colours.
func cutLeft(s string, cutWidth int) string {
	var (
		pos     int
		inAnsi  bool
		started bool
		active  bytes.Buffer
		b       strings.Builder
	)
	for _, c := range s {
		if started {
			b.WriteRune(c)
			continue
		}
		if c == ansi.Marker || inAnsi {
			inAnsi = true
			active.WriteRune(c)
			if ansi.IsTerminator(c) {
				inAnsi = false
				if bytes.HasSuffix(active.Bytes(), []byte("[0m")) {
					active.Reset()
				}
			}
			continue
		}

		w := runewidth.RuneWidth(c)
		if pos >= cutWidth {
			started = true
			b.Write(active.Bytes())
			b.WriteRune(c)
			continue
		}
		pos += w
		if pos > cutWidth {
			// A wide rune straddled the cut.
			started = true
			b.Write(active.Bytes())
			b.WriteString(strings.Repeat(" ", pos-cutWidth))
		}
	}
	return b.String()
}

func getLines(s string) (lines []string, widest int) {
	lines = strings.Split(s, "\n")
	for _, l := range lines {
		if w := ansi.PrintableRuneWidth(l); w > widest {
			widest = w
		}
	}
	return lines, widest
}

func clamp(v, lower, upper int) int {
	return min(max(v, lower), upper)
}
