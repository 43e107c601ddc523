package ui

import "github.com/charmbracelet/lipgloss"

var (
	accent = lipgloss.Color("#00A5E0")

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF"))

	MetaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#828282"))

	AccentStyle = lipgloss.NewStyle().
			Foreground(accent).
			Bold(true)

	StatusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#333333")).
			Foreground(lipgloss.Color("#FFFFFF")).
			Padding(0, 1)

	AlertStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#8B0000")).
			Foreground(lipgloss.Color("#FFFFFF")).
			Bold(true).
			Padding(0, 1)

	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)
