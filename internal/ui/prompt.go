// Package ui renders the interactive prompt and tabular built-in output
// (set -o, trap -l) with a minimal styled theme.
package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// RenderPrompt renders a Powerline-style two-segment prompt: the
// current logical working directory, and "exit status" styling when
// the previous command failed.
func RenderPrompt(pwd string, lastStatus int) string {
	pathBg := currentTheme.Surface
	pathFg := currentTheme.Text
	statusBg := currentTheme.Blue
	if lastStatus != 0 {
		statusBg = currentTheme.Red
	}
	statusFg := currentTheme.Base

	pathStyle := lipgloss.NewStyle().Background(pathBg).Foreground(pathFg).Padding(0, 1)
	statusStyle := lipgloss.NewStyle().Background(statusBg).Foreground(statusFg).Padding(0, 1).Bold(true)

	seg1 := statusStyle.Render("$")
	sep1 := lipgloss.NewStyle().Foreground(statusBg).Background(pathBg).Render("")
	seg2 := pathStyle.Render(pwd)
	sep2 := lipgloss.NewStyle().Foreground(pathBg).Render("")

	return fmt.Sprintf("%s%s%s%s ", seg1, sep1, seg2, sep2)
}
