package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	// Bold highlights section headings.
	Bold = lipgloss.NewStyle().Bold(true)
	// Bad marks failures and unmet dependencies.
	Bad = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	// Warn marks non-fatal advisories.
	Warn = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	// Good marks passing checks.
	Good = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
)

// IsTTY reports whether stdout is a terminal. Styling is skipped when the
// output is piped, matching the usual isatty convention.
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// Styled applies a style only when stdout is a terminal.
func Styled(style lipgloss.Style, s string) string {
	if !IsTTY() {
		return s
	}
	return style.Render(s)
}
