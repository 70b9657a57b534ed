package app

import (
	"strings"

	"bizdesk/keys"
	"bizdesk/log"

	"github.com/charmbracelet/lipgloss"
)

// helpTypeResource is the shortcut legend of one resource page. Its mask
// tracks in the app state whether the legend has been shown.
type helpTypeResource struct {
	p *page
}

func (h helpTypeResource) toContent() string {
	legend := h.p.helpGen.GenerateContextHelp(h.p.res.Name, h.p.reg.Active())
	return lipgloss.JoinHorizontal(lipgloss.Top, legend, "    ", appKeysContent())
}

// Bit 0 is left for a general screen; resources take the bits after it.
func (h helpTypeResource) mask() uint32 {
	return 1 << (uint(h.p.index) + 1)
}

// appKeysContent lists the keys the shell handles itself, grouped the same
// way as the page legend.
func appKeysContent() string {
	var b strings.Builder
	for i, category := range []keys.HelpCategory{keys.HelpCategoryNavigation, keys.HelpCategoryDialogs, keys.HelpCategoryForms, keys.HelpCategoryOther} {
		names := keys.GetKeysInCategory(category)
		if len(names) == 0 {
			continue
		}
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(headerStyle.Render(string(category)+":") + "\n")
		for _, name := range names {
			k := keys.Binding(name).Help().Key
			b.WriteString(keyStyle.Render(k) + strings.Repeat(" ", max(12-len([]rune(k)), 1)) +
				descStyle.Render("- "+keys.GetKeyHelp(name).Description) + "\n")
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#36CFC9"))
	keyStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFCC00"))
	descStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#1a1a1a", Dark: "#FFFFFF"})
)

// showHelpScreen opens the legend of p the first time the page is shown.
// The ? shortcut opens it at any time.
func (m *home) showHelpScreen(p *page) {
	h := helpTypeResource{p: p}
	flag := h.mask()

	// Another running instance may have shown this legend already.
	if r, ok := m.appState.(interface{ RefreshState() error }); ok {
		if err := r.RefreshState(); err != nil {
			log.WarningLog.Printf("Failed to refresh state: %v", err)
		}
	}

	if m.appState.GetHelpScreensSeen()&flag != 0 {
		return
	}
	if err := m.appState.SetHelpScreensSeen(m.appState.GetHelpScreensSeen() | flag); err != nil {
		log.WarningLog.Printf("Failed to save help screen state: %v", err)
	}
	p.openHelp()
}
