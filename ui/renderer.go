package ui

import (
	"strings"

	"bizdesk/api"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

var highlightStyle = lipgloss.NewStyle().
	Background(lipgloss.Color("#FFFF00")).
	Foreground(lipgloss.Color("#000000"))

var rowStyle = lipgloss.NewStyle().
	Foreground(lipgloss.AdaptiveColor{Light: "#1a1a1a", Dark: "#dddddd"})

var selectedRowStyle = lipgloss.NewStyle().
	Background(lipgloss.Color("#dde4f0")).
	Foreground(lipgloss.AdaptiveColor{Light: "#1a1a1a", Dark: "#1a1a1a"})

var headerStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.AdaptiveColor{Light: "#A49FA5", Dark: "#777777"})

const selectedMarker = "› "
const cellGap = "  "

// Column is one field shown in a resource table.
type Column struct {
	Title string
	Field string
	Width int
	Right bool // right-align, for amounts
}

// RowRenderer draws entities as fixed-width table rows.
type RowRenderer struct {
	columns []Column
	width   int
}

func (r *RowRenderer) setWidth(width int) {
	r.width = width
}

// Header renders the column titles.
func (r *RowRenderer) Header() string {
	cells := make([]string, len(r.columns))
	for i, c := range r.columns {
		cells[i] = fit(c.Title, c.Width, c.Right)
	}
	return r.clip(headerStyle.Render(strings.Repeat(" ", len(selectedMarker)) + strings.Join(cells, cellGap)))
}

// Render renders a row without highlights.
func (r *RowRenderer) Render(e api.Entity, selected bool) string {
	return r.RenderWithHighlights(e, selected, "", nil)
}

// RenderWithHighlights renders a row, marking characters of the searchable
// fields that match query.
func (r *RowRenderer) RenderWithHighlights(e api.Entity, selected bool, query string, searchable []string) string {
	highlight := make(map[string]bool, len(searchable))
	for _, f := range searchable {
		highlight[f] = true
	}

	cells := make([]string, len(r.columns))
	for i, c := range r.columns {
		text := fit(e.String(c.Field), c.Width, c.Right)
		if query != "" && highlight[c.Field] {
			text = applyHighlights(text, MatchPositions(query, text))
		}
		cells[i] = text
	}

	prefix := strings.Repeat(" ", len(selectedMarker))
	style := rowStyle
	if selected {
		prefix = selectedMarker
		style = selectedRowStyle
	}
	line := prefix + strings.Join(cells, cellGap)
	if r.width > 0 {
		line = lipgloss.NewStyle().Width(r.width).MaxWidth(r.width).Render(line)
	}
	return style.Render(line)
}

func (r *RowRenderer) clip(s string) string {
	if r.width <= 0 {
		return s
	}
	return lipgloss.NewStyle().MaxWidth(r.width).Render(s)
}

// fit pads or truncates s to exactly width terminal cells.
func fit(s string, width int, right bool) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if width <= 0 {
		return s
	}
	if runewidth.StringWidth(s) > width {
		s = runewidth.Truncate(s, width, "…")
	}
	if right {
		return runewidth.FillLeft(s, width)
	}
	return runewidth.FillRight(s, width)
}

// applyHighlights wraps the bytes at positions in the highlight style.
func applyHighlights(text string, positions []int) string {
	if len(positions) == 0 {
		return text
	}
	marked := make(map[int]bool, len(positions))
	for _, p := range positions {
		marked[p] = true
	}
	var b strings.Builder
	for i, ch := range text {
		if marked[i] {
			b.WriteString(highlightStyle.Render(string(ch)))
		} else {
			b.WriteRune(ch)
		}
	}
	return b.String()
}
