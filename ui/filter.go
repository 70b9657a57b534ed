package ui

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"bizdesk/api"

	"github.com/charmbracelet/lipgloss"
)

// FilterMode says how digit toggles on a page interact.
type FilterMode int

const (
	// SingleSelect keeps at most one filter on; picking another replaces it.
	SingleSelect FilterMode = iota
	// MultiSelect lets filters be toggled independently. Active filters of
	// one group are alternatives, and every group must match.
	MultiSelect
)

func (m FilterMode) String() string {
	if m == MultiSelect {
		return "multi-select"
	}
	return "single-select"
}

// Filter is one digit-keyed predicate over a resource's rows.
type Filter struct {
	Digit int // 1-9
	Label string
	// Group joins filters that exclude each other, such as stock states.
	// An empty group stands alone.
	Group string
	Match func(api.Entity) bool
}

func (f Filter) group() string {
	if f.Group != "" {
		return f.Group
	}
	return strconv.Itoa(f.Digit)
}

// FilterSet tracks which digit filters are on for one page.
type FilterSet struct {
	mode    FilterMode
	filters []Filter
	active  map[int]bool
	counts  map[int]int
}

// NewFilterSet creates a filter set. Filters with a digit outside 1-9 or a
// nil predicate are ignored.
func NewFilterSet(mode FilterMode, filters []Filter) *FilterSet {
	fs := &FilterSet{
		mode:   mode,
		active: make(map[int]bool),
		counts: make(map[int]int),
	}
	for _, f := range filters {
		if f.Digit < 1 || f.Digit > 9 || f.Match == nil {
			continue
		}
		fs.filters = append(fs.filters, f)
	}
	sort.SliceStable(fs.filters, func(i, j int) bool { return fs.filters[i].Digit < fs.filters[j].Digit })
	return fs
}

// Mode returns the set's toggle mode.
func (fs *FilterSet) Mode() FilterMode {
	return fs.mode
}

// Filters returns the configured filters ordered by digit.
func (fs *FilterSet) Filters() []Filter {
	return fs.filters
}

// Has reports whether digit is bound to a filter.
func (fs *FilterSet) Has(digit int) bool {
	for _, f := range fs.filters {
		if f.Digit == digit {
			return true
		}
	}
	return false
}

// Toggle flips the filter on digit. Toggling an active filter turns it off.
// In SingleSelect mode turning one on clears the others. It reports whether
// anything changed.
func (fs *FilterSet) Toggle(digit int) bool {
	if !fs.Has(digit) {
		return false
	}
	if fs.active[digit] {
		delete(fs.active, digit)
		return true
	}
	if fs.mode == SingleSelect {
		clear(fs.active)
	}
	fs.active[digit] = true
	return true
}

// IsActive reports whether the filter on digit is on.
func (fs *FilterSet) IsActive(digit int) bool {
	return fs.active[digit]
}

// Active returns the digits that are on, ascending.
func (fs *FilterSet) Active() []int {
	out := make([]int, 0, len(fs.active))
	for d := range fs.active {
		out = append(out, d)
	}
	sort.Ints(out)
	return out
}

// Clear turns every filter off.
func (fs *FilterSet) Clear() {
	clear(fs.active)
}

// Apply returns the rows matching the active filters. With nothing active
// the input is returned unchanged.
func (fs *FilterSet) Apply(rows []api.Entity) []api.Entity {
	if len(fs.active) == 0 {
		return rows
	}
	out := make([]api.Entity, 0, len(rows))
	for _, row := range rows {
		if fs.matches(row) {
			out = append(out, row)
		}
	}
	return out
}

func (fs *FilterSet) matches(row api.Entity) bool {
	groups := make(map[string]bool, len(fs.active))
	for _, f := range fs.filters {
		if !fs.active[f.Digit] {
			continue
		}
		g := f.group()
		groups[g] = groups[g] || f.Match(row)
	}
	for _, ok := range groups {
		if !ok {
			return false
		}
	}
	return true
}

// UpdateCounts recomputes how many of rows each filter would keep.
func (fs *FilterSet) UpdateCounts(rows []api.Entity) {
	fs.counts = make(map[int]int, len(fs.filters))
	for _, f := range fs.filters {
		for _, row := range rows {
			if f.Match(row) {
				fs.counts[f.Digit]++
			}
		}
	}
}

var (
	filterActiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FFFFFF")).
				Background(lipgloss.Color("#0000FF")).
				Padding(0, 1)

	filterInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#DDDDDD"}).
				Padding(0, 1)
)

// View renders the filter bar: "1 Active (3)  2 Low stock (1)".
func (fs *FilterSet) View() string {
	if len(fs.filters) == 0 {
		return ""
	}
	parts := make([]string, 0, len(fs.filters))
	for _, f := range fs.filters {
		text := fmt.Sprintf("%d %s (%d)", f.Digit, f.Label, fs.counts[f.Digit])
		if fs.active[f.Digit] {
			parts = append(parts, filterActiveStyle.Render(text))
		} else {
			parts = append(parts, filterInactiveStyle.Render(text))
		}
	}
	return strings.Join(parts, " ")
}
