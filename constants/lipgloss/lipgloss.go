package lipgloss

import (
	"github.com/charmbracelet/lipgloss"
)

// Shared terminal styles used across the wizard steps.
var (
	Red     = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff5555"))
	Green   = lipgloss.NewStyle().Foreground(lipgloss.Color("#50fa7b"))
	Yellow  = lipgloss.NewStyle().Foreground(lipgloss.Color("#f1fa8c"))
	BlueSky = lipgloss.NewStyle().Foreground(lipgloss.Color("#8be9fd"))
	Gray    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6272a4"))

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#6272a4")).
			Padding(0, 1)
)
