package ui

import (
	"fmt"
	"strings"

	"bizdesk/api"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
)

var mainTitle = lipgloss.NewStyle().
	Background(lipgloss.Color("62")).
	Foreground(lipgloss.Color("230"))

var emptyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

// listChrome is the number of lines the title, filter bar and header use.
const listChrome = 5

// List is the table of one resource: fetched rows narrowed by the active
// filters and the search query, with a keyboard cursor over the result.
type List struct {
	title        string
	searchFields []string

	all     []api.Entity
	visible []api.Entity
	query   string

	filters  *FilterSet
	cursor   *Cursor
	renderer *RowRenderer
	spinner  *spinner.Model
	loading  bool

	height, width int
}

// NewList creates an empty list. filters may be nil.
func NewList(title string, columns []Column, searchFields []string, filters *FilterSet, s *spinner.Model) *List {
	if filters == nil {
		filters = NewFilterSet(SingleSelect, nil)
	}
	return &List{
		title:        title,
		searchFields: searchFields,
		filters:      filters,
		cursor:       NewCursor(0),
		renderer:     &RowRenderer{columns: columns},
		spinner:      s,
	}
}

// SetSize sets the height and width of the list.
func (l *List) SetSize(width, height int) {
	l.width = width
	l.height = height
	l.renderer.setWidth(width)
	l.cursor.SetViewport(max(height-listChrome, 1))
}

// SetRows replaces the fetched rows. The cursor is clamped, not reset.
func (l *List) SetRows(rows []api.Entity) {
	l.all = rows
	l.filters.UpdateCounts(rows)
	l.refilter()
}

// SetLoading toggles the spinner in the title.
func (l *List) SetLoading(loading bool) {
	l.loading = loading
}

func (l *List) Loading() bool {
	return l.loading
}

// SetQuery narrows the rows by search text. The cursor is clamped to the new
// length so it never points past the end.
func (l *List) SetQuery(query string) {
	if query == l.query {
		return
	}
	l.query = query
	l.refilter()
}

func (l *List) Query() string {
	return l.query
}

// ToggleFilter flips the digit filter. A change resets the cursor since the
// same index would now point at a different row.
func (l *List) ToggleFilter(digit int) bool {
	if !l.filters.Toggle(digit) {
		return false
	}
	l.refilter()
	l.cursor.Reset()
	return true
}

func (l *List) refilter() {
	l.visible = Search(l.query, l.filters.Apply(l.all), l.searchFields)
	l.cursor.SetLength(len(l.visible))
}

func (l *List) Filters() *FilterSet { return l.filters }
func (l *List) Cursor() *Cursor      { return l.cursor }

// Visible returns the filtered rows in display order.
func (l *List) Visible() []api.Entity {
	return l.visible
}

// QueryMatches returns how many fetched rows the search query matches,
// ignoring the digit filters.
func (l *List) QueryMatches() int {
	return len(Search(l.query, l.all, l.searchFields))
}

// NumRows returns the number of fetched rows before filtering.
func (l *List) NumRows() int {
	return len(l.all)
}

// Up moves the cursor up one row.
func (l *List) Up() { l.cursor.MoveUp() }

// Down moves the cursor down one row.
func (l *List) Down() { l.cursor.MoveDown() }

// Selected returns the focused row.
func (l *List) Selected() (api.Entity, bool) {
	return Activate(l.cursor, l.visible)
}

// getScrollIndicator reports the window and filter counts, e.g. " [3-7/12 of 40]".
func (l *List) getScrollIndicator() string {
	total := len(l.all)
	n := len(l.visible)
	if n == 0 {
		if total > 0 {
			return fmt.Sprintf(" [0/%d]", total)
		}
		return ""
	}

	start, end := l.cursor.Window()
	scrolled := start > 0 || end < n
	switch {
	case scrolled && n < total:
		return fmt.Sprintf(" [%d-%d/%d of %d]", start+1, end, n, total)
	case scrolled:
		return fmt.Sprintf(" [%d-%d/%d]", start+1, end, n)
	case n < total:
		return fmt.Sprintf(" [%d/%d]", n, total)
	}
	return ""
}

func (l *List) String() string {
	titleText := " " + l.title
	if l.query != "" {
		titleText += fmt.Sprintf(" (search: %s)", l.query)
	}
	titleText += l.getScrollIndicator() + " "
	if l.loading && l.spinner != nil {
		titleText += l.spinner.View() + " "
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(mainTitle.Render(titleText))
	b.WriteString("\n")
	b.WriteString(l.filters.View())
	b.WriteString("\n\n")
	b.WriteString(l.renderer.Header())
	b.WriteString("\n")

	if len(l.visible) == 0 {
		msg := "No rows"
		if l.loading {
			msg = "Loading…"
		} else if len(l.all) > 0 {
			msg = "No rows match the current search or filters"
		}
		b.WriteString(emptyStyle.Render(msg))
	} else {
		start, end := l.cursor.Window()
		for i := start; i < end; i++ {
			b.WriteString(l.renderer.RenderWithHighlights(l.visible[i], i == l.cursor.Index(), l.query, l.searchFields))
			if i != end-1 {
				b.WriteString("\n")
			}
		}
	}

	if l.width == 0 || l.height == 0 {
		return b.String()
	}
	return lipgloss.Place(l.width, l.height, lipgloss.Left, lipgloss.Top, b.String())
}
