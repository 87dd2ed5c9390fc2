package styles

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// --- Color Palette ---
var (
	ColorPrimary   = lipgloss.Color("#7D56F4") // Indigo/Purple
	ColorSecondary = lipgloss.Color("#04B575") // Green
	ColorError     = lipgloss.Color("#FF5F87") // Pink/Red
	ColorSubtle    = lipgloss.Color("#767676") // Gray
	ColorBanner    = lipgloss.Color("#FFAF00") // Gold
)

// Styles is the set of styles used on console output, bound to the
// renderer of one writer so that plain files and pipes get no escapes.
type Styles struct {
	Title    lipgloss.Style
	Scenario lipgloss.Style
	Group    lipgloss.Style
	Error    lipgloss.Style
	Banner   lipgloss.Style
}

// For returns styles rendered for w.
func For(w io.Writer) Styles {
	r := lipgloss.NewRenderer(w)
	return Styles{
		Title:    r.NewStyle().Foreground(ColorPrimary).Bold(true),
		Scenario: r.NewStyle().Foreground(ColorSecondary).Bold(true),
		Group:    r.NewStyle().Foreground(ColorSubtle),
		Error:    r.NewStyle().Foreground(ColorError).Bold(true),
		Banner:   r.NewStyle().Foreground(ColorBanner).Bold(true),
	}
}
