package ui

import "github.com/charmbracelet/lipgloss"

// Catppuccin Mocha (dark theme)
var mocha = struct {
	Red, Green, Yellow, Blue, Mauve, Peach, Text, Subtext, Overlay, Surface, Base lipgloss.Color
}{
	Red: "#f38ba8", Green: "#a6e3a1", Yellow: "#f9e2af", Blue: "#89b4fa",
	Mauve: "#cba6f7", Peach: "#fab387", Text: "#cdd6f4", Subtext: "#bac2de",
	Overlay: "#7f849c", Surface: "#45475a", Base: "#1e1e2e",
}

// ThemePalette holds the current color scheme.
type ThemePalette struct {
	Red, Green, Yellow, Blue, Mauve, Peach, Text, Subtext, Overlay, Surface, Base lipgloss.Color
}

var currentTheme = ThemePalette(mocha)

// Semantic styles used by the prompt and built-in listings.
var (
	ErrorStyle   = lipgloss.NewStyle().Foreground(currentTheme.Red).Bold(true)
	WarningStyle = lipgloss.NewStyle().Foreground(currentTheme.Peach)
	SuccessStyle = lipgloss.NewStyle().Foreground(currentTheme.Green)
	MutedStyle   = lipgloss.NewStyle().Foreground(currentTheme.Overlay)
	HeaderStyle  = lipgloss.NewStyle().Foreground(currentTheme.Mauve).Bold(true)
)
