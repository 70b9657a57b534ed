package commands

import (
	"strconv"

	"bizdesk/cmd"
)

// FilterKey is a digit filter offered on a page.
type FilterKey struct {
	Digit int
	Label string
}

// ListHandlers holds the page callbacks the list shortcuts call. A nil
// handler leaves its key unbound.
type ListHandlers struct {
	FocusSearch func()
	New         func()
	Help        func()
	Up          func()
	Down        func()
	Escape      func()
	Reload      func()
	Generate    func()

	// Row actions. They run only while HasSelection reports a focused row;
	// with HasSelection nil they always run.
	Open         func()
	Edit         func()
	Delete       func()
	CopyID       func()
	QuickSale    func()
	HasSelection func() bool

	Filters      []FilterKey
	ToggleFilter func(digit int)
}

func (h ListHandlers) onRow(fn func()) func() {
	return func() {
		if h.HasSelection == nil || h.HasSelection() {
			fn()
		}
	}
}

// ListShortcuts builds the shortcut set every resource list registers.
// Escape is the only binding that also fires while the search field has
// focus.
func ListShortcuts(h ListHandlers) []cmd.Shortcut {
	var out []cmd.Shortcut
	add := func(fn func(), s cmd.Shortcut) {
		if fn != nil {
			out = append(out, s)
		}
	}

	add(h.FocusSearch, cmd.Bind("ctrl+k", "search", h.FocusSearch).In(cmd.CategoryNavigation))
	add(h.FocusSearch, cmd.Bind("/", "search", h.FocusSearch).In(cmd.CategoryNavigation))
	add(h.Up, cmd.Bind("up", "previous row", h.Up).In(cmd.CategoryNavigation))
	add(h.Down, cmd.Bind("down", "next row", h.Down).In(cmd.CategoryNavigation))
	if h.Open != nil {
		add(h.Open, cmd.Bind("enter", "open", h.onRow(h.Open)).In(cmd.CategoryNavigation))
	}
	add(h.Escape, cmd.Bind("esc", "close / clear", h.Escape).In(cmd.CategoryNavigation).WhileTyping())

	add(h.New, cmd.Bind("n", "new", h.New))
	if h.Edit != nil {
		add(h.Edit, cmd.Bind("e", "edit", h.onRow(h.Edit)))
	}
	if h.Delete != nil {
		add(h.Delete, cmd.Bind("d", "delete", h.onRow(h.Delete)))
	}
	if h.CopyID != nil {
		add(h.CopyID, cmd.Bind("y", "copy id", h.onRow(h.CopyID)))
	}
	if h.QuickSale != nil {
		add(h.QuickSale, cmd.Bind("s", "quick sale", h.onRow(h.QuickSale)))
	}
	add(h.Reload, cmd.Bind("r", "reload", h.Reload))
	add(h.Generate, cmd.Bind("g", "generate", h.Generate))

	if h.ToggleFilter != nil {
		for _, f := range h.Filters {
			if f.Digit < 1 || f.Digit > 9 {
				continue
			}
			digit := f.Digit
			out = append(out, cmd.Bind(strconv.Itoa(digit), "filter: "+f.Label, func() {
				h.ToggleFilter(digit)
			}).In(cmd.CategoryFilters))
		}
	}

	add(h.Help, cmd.Bind("?", "help", h.Help).In(cmd.CategorySystem))
	return out
}
