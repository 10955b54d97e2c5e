package theme

import (
	"github.com/charmbracelet/lipgloss"
)

// CreateModalStyle creates the floating box of a modal notification
func CreateModalStyle(width int, borderColor string) lipgloss.Style {
	return lipgloss.NewStyle().
		Width(width).
		Border(BorderStyleModal).
		BorderForeground(lipgloss.Color(borderColor)).
		Background(lipgloss.Color("#000000")).
		Padding(1, 2).
		Align(lipgloss.Center)
}

// CreatePromptStyle creates a style for prompt text in dialogs
func CreatePromptStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorBrightYellow)).
		Bold(true)
}

// CreateDialogButtonStyle creates a style for dialog buttons
func CreateDialogButtonStyle(selected bool) lipgloss.Style {
	style := lipgloss.NewStyle().
		Padding(0, 2).
		Margin(0, 1).
		Border(lipgloss.RoundedBorder())

	if selected {
		return style.
			Foreground(lipgloss.Color("#000000")).
			Background(lipgloss.Color(ColorBrightYellow)).
			BorderForeground(lipgloss.Color(ColorBrightYellow))
	}

	return style.
		Foreground(lipgloss.Color(ColorBrightCyan)).
		BorderForeground(lipgloss.Color(ColorBrightCyan))
}
