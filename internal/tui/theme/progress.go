package theme

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// CreateProgressBarStyle creates a style for the run gauge box
func CreateProgressBarStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorBrightBlue)).
		Padding(1)
}

// CreateProgressTextStyle creates a style for progress text
func CreateProgressTextStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorBrightCyan)).
		Bold(true)
}

// CreateStatusIndicatorStyle creates a style for status indicators
func CreateStatusIndicatorStyle(success bool) lipgloss.Style {
	color := ColorBrightRed
	if success {
		color = ColorBrightGreen
	}

	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(color)).
		Bold(true)
}

// FormatProgressMessage formats the run dialog headline
func FormatProgressMessage(status string, fraction float64) string {
	if fraction >= 0 {
		return fmt.Sprintf("Reconstruction %s... %.1f%%", status, fraction*100)
	}
	return fmt.Sprintf("Reconstruction %s...", status)
}
