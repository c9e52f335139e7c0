package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the color scheme for terminal output.
type Theme struct {
	Primary lipgloss.Color // Main accent color
	Dim     lipgloss.Color // Dimmed/help text color
}

// DefaultTheme is the default bright green theme.
var DefaultTheme = Theme{
	Primary: lipgloss.Color("#00ff9f"),
	Dim:     lipgloss.Color("#6e7681"),
}

// Styles holds all styles derived from a theme.
type Styles struct {
	Title  lipgloss.Style
	Label  lipgloss.Style
	Value  lipgloss.Style
	Border lipgloss.Style
	Dim    lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(t Theme) Styles {
	return Styles{
		Title:  lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Label:  lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Value:  lipgloss.NewStyle(),
		Border: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.Primary).Padding(0, 1),
		Dim:    lipgloss.NewStyle().Foreground(t.Dim),
	}
}

// KV is one labeled row in a summary block.
type KV struct {
	Key   string
	Value string
}

// Summary renders a bordered block with a title and aligned key-value
// rows. Rows with an empty key render as unlabeled continuation lines.
func (s Styles) Summary(title string, rows []KV) string {
	width := 0
	for _, r := range rows {
		if len(r.Key) > width {
			width = len(r.Key)
		}
	}

	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, s.Title.Render(title))
	for _, r := range rows {
		if r.Key == "" {
			lines = append(lines, strings.Repeat(" ", width+2)+s.Dim.Render(r.Value))
			continue
		}
		pad := strings.Repeat(" ", width-len(r.Key))
		lines = append(lines, s.Label.Render(r.Key)+pad+"  "+s.Value.Render(r.Value))
	}

	return s.Border.Render(strings.Join(lines, "\n"))
}
