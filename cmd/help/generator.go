package help

import (
	"fmt"
	"sort"
	"strings"

	"bizdesk/cmd"
	"bizdesk/keys"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
)

// Entry is one legend line: every chord that triggers the same action.
type Entry struct {
	Keys        []string
	Description string
	Category    cmd.Category
}

// Generator creates help content from a page's shortcuts
type Generator struct {
	// Styles for formatting help content
	titleStyle  lipgloss.Style
	headerStyle lipgloss.Style
	keyStyle    lipgloss.Style
	descStyle   lipgloss.Style
	sepStyle    lipgloss.Style
	warnStyle   lipgloss.Style
}

// NewGenerator creates a new help generator
func NewGenerator() *Generator {
	return &Generator{
		titleStyle:  lipgloss.NewStyle().Bold(true).Underline(true).Foreground(lipgloss.Color("#7D56F4")),
		headerStyle: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#36CFC9")),
		keyStyle:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFCC00")),
		descStyle:   lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#1a1a1a", Dark: "#FFFFFF"}),
		sepStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("#3C3C3C")),
		warnStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500")),
	}
}

// NewPlainGenerator renders without any styling, for piped output.
func NewPlainGenerator() *Generator {
	plain := lipgloss.NewStyle()
	return &Generator{
		titleStyle:  plain,
		headerStyle: plain,
		keyStyle:    plain,
		descStyle:   plain,
		sepStyle:    plain,
		warnStyle:   plain,
	}
}

// Entries merges shortcuts that share a description and category into one
// entry, keeping registration order. Hidden categories are dropped.
func Entries(shortcuts []cmd.Shortcut) []Entry {
	var entries []Entry
	index := make(map[string]int)
	for _, s := range shortcuts {
		if cmd.IsHiddenCategory(s.Category) {
			continue
		}
		id := string(s.Category) + "\x00" + s.Description
		if i, ok := index[id]; ok {
			entries[i].Keys = append(entries[i].Keys, s.Chord.String())
			continue
		}
		index[id] = len(entries)
		entries = append(entries, Entry{
			Keys:        []string{s.Chord.String()},
			Description: s.Description,
			Category:    s.Category,
		})
	}
	return entries
}

// GenerateContextHelp creates the full legend for a page
func (g *Generator) GenerateContextHelp(title string, shortcuts []cmd.Shortcut) string {
	entries := Entries(shortcuts)
	if len(entries) == 0 {
		return g.titleStyle.Render("No shortcuts available")
	}

	var content strings.Builder
	content.WriteString(g.titleStyle.Render(fmt.Sprintf("%s Shortcuts", title)))
	content.WriteString("\n\n")

	categories := g.groupByCategory(entries)

	sortedCategories := make([]cmd.Category, 0, len(categories))
	for category := range categories {
		sortedCategories = append(sortedCategories, category)
	}
	sort.Slice(sortedCategories, func(i, j int) bool {
		return cmd.GetCategoryPriority(sortedCategories[i]) < cmd.GetCategoryPriority(sortedCategories[j])
	})

	for i, category := range sortedCategories {
		if i > 0 {
			content.WriteString("\n")
		}
		content.WriteString(g.formatCategory(category, categories[category]))
	}

	return content.String()
}

// GenerateStatusLine creates the bottom status line showing the shortcuts
// that fit in width.
func (g *Generator) GenerateStatusLine(shortcuts []cmd.Shortcut, width int) string {
	entries := Entries(shortcuts)
	bindings := make([]key.Binding, 0, len(entries))
	for _, e := range entries {
		bindings = append(bindings, key.NewBinding(
			key.WithKeys(e.Keys...),
			key.WithHelp(e.Keys[0], g.truncateDescription(e.Description, 15)),
		))
	}

	h := help.New()
	h.Width = width
	h.ShortSeparator = " • "
	h.Styles.ShortKey = g.keyStyle
	h.Styles.ShortDesc = g.descStyle
	h.Styles.ShortSeparator = g.sepStyle
	h.Styles.Ellipsis = g.sepStyle
	return h.ShortHelpView(bindings)
}

// ValidateShortcuts reports problems in a shortcut table: duplicate
// chords, missing descriptions and missing actions.
func ValidateShortcuts(shortcuts []cmd.Shortcut) []string {
	var issues []string

	seen := make(map[keys.Chord]string)
	for _, s := range shortcuts {
		if prev, ok := seen[s.Chord]; ok {
			issues = append(issues, fmt.Sprintf("Key conflict: '%s' bound to %q and %q", s.Chord, prev, s.Description))
		}
		seen[s.Chord] = s.Description

		if s.Description == "" {
			issues = append(issues, fmt.Sprintf("Shortcut '%s' has no description", s.Chord))
		}
		if s.Action == nil {
			issues = append(issues, fmt.Sprintf("Shortcut '%s' has no action", s.Chord))
		}
	}
	return issues
}

func (g *Generator) groupByCategory(entries []Entry) map[cmd.Category][]Entry {
	groups := make(map[cmd.Category][]Entry)
	for _, e := range entries {
		category := e.Category
		if category == "" {
			category = "Other"
		}
		groups[category] = append(groups[category], e)
	}
	return groups
}

// formatCategory creates formatted output for a shortcut category
func (g *Generator) formatCategory(category cmd.Category, entries []Entry) string {
	var content strings.Builder

	content.WriteString(g.headerStyle.Render(string(category) + ":"))
	content.WriteString("\n")

	for _, e := range entries {
		keyText := strings.Join(e.Keys, ", ")

		// Pad on printable width so styled keys still line up.
		padding := strings.Repeat(" ", max(0, 12-lipgloss.Width(keyText)))

		content.WriteString(fmt.Sprintf("  %s%s - %s",
			g.keyStyle.Render(keyText),
			padding,
			g.descStyle.Render(e.Description)))
		content.WriteString("\n")
	}

	return content.String()
}

// truncateDescription truncates a description to fit in the status line
func (g *Generator) truncateDescription(desc string, maxLen int) string {
	if lipgloss.Width(desc) <= maxLen {
		return desc
	}
	return truncate.StringWithTail(desc, uint(maxLen), "...")
}
