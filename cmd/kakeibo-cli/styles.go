package main

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	primaryColor = lipgloss.Color("#1d4ed8")
	successColor = lipgloss.Color("#22c55e")
	warningColor = lipgloss.Color("#d97706")
	errorColor   = lipgloss.Color("#ef4444")
	subtleColor  = lipgloss.Color("#666666")

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	successStyle = lipgloss.NewStyle().Foreground(successColor)
	warningStyle = lipgloss.NewStyle().Foreground(warningColor)
	errorStyle   = lipgloss.NewStyle().Foreground(errorColor)
	subtleStyle  = lipgloss.NewStyle().Foreground(subtleColor)
	amountStyle  = lipgloss.NewStyle().Bold(true).Align(lipgloss.Right)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#333")).
			Padding(0, 1)
)

// swatch renders a colored bar of width cells.
func swatch(color string, width int) string {
	if width <= 0 {
		return ""
	}
	bar := make([]rune, width)
	for i := range bar {
		bar[i] = '█'
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(string(bar))
}
