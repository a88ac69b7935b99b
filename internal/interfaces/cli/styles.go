package cli

import "github.com/charmbracelet/lipgloss"

var (
	colorSuccess = lipgloss.Color("#00D787")
	colorError   = lipgloss.Color("#FF5F87")
	colorWarning = lipgloss.Color("#FFAF00")
	colorInfo    = lipgloss.Color("#5FAFFF")
	colorMuted   = lipgloss.Color("#888888")
)

var (
	styleSuccess = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	styleError   = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	styleWarning = lipgloss.NewStyle().Foreground(colorWarning).Bold(true)
	styleTitle   = lipgloss.NewStyle().Foreground(colorInfo).Bold(true)
	styleMuted   = lipgloss.NewStyle().Foreground(colorMuted)
)
