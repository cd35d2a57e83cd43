package components

import "github.com/charmbracelet/lipgloss"

// Color scheme
const (
	ColorPrimary   = "6"  // Cyan
	ColorSecondary = "8"  // Gray
	ColorSuccess   = "2"  // Green
	ColorWarning   = "3"  // Yellow
	ColorError     = "1"  // Red
	ColorInfo      = "4"  // Blue
	ColorHighlight = "5"  // Magenta
	ColorText      = "15" // White
	ColorMuted     = "8"  // Dark gray
	ColorAccent    = "11" // Bright yellow
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(ColorPrimary)).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true)

	SectionHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color(ColorSuccess))

	CursorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(ColorAccent))

	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(ColorError))

	MutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorMuted))

	HashStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorHighlight))
)

// ActionStyle returns the style used to render a plan action label.
func ActionStyle(action string) lipgloss.Style {
	color := ColorText
	switch action {
	case "pick":
		color = ColorSuccess
	case "reword", "edit":
		color = ColorInfo
	case "squash", "fixup":
		color = ColorWarning
	case "drop":
		color = ColorError
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}
