package report

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")) // White bold - report title

	headingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")) // Blue - section headings
)

// title renders the report title, styled when enabled.
func (g *Generator) title(s string) string {
	if !g.styled {
		return s
	}
	return titleStyle.Render(s)
}

// heading renders a section heading, styled when enabled.
func (g *Generator) heading(s string) string {
	if !g.styled {
		return s + ":"
	}
	return headingStyle.Render(s + ":")
}
