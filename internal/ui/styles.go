package ui

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// ConsoleStyles renders secondary console text such as status detail lines and elapsed timings.
type ConsoleStyles struct {
	dimStyle  lipgloss.Style
	boldStyle lipgloss.Style
}

// NewConsoleStyles binds styles to the writer. Without color every style renders text unchanged.
func NewConsoleStyles(writer io.Writer, colorEnabled bool) ConsoleStyles {
	renderer := lipgloss.NewRenderer(writer)
	if colorEnabled {
		renderer.SetColorProfile(termenv.ANSI)
	} else {
		renderer.SetColorProfile(termenv.Ascii)
	}
	return ConsoleStyles{
		dimStyle:  renderer.NewStyle().Faint(true),
		boldStyle: renderer.NewStyle().Bold(true),
	}
}

// Dim renders a single line in a faint style.
func (styles ConsoleStyles) Dim(text string) string {
	return styles.dimStyle.Render(text)
}

// Bold renders a single line in a bold style.
func (styles ConsoleStyles) Bold(text string) string {
	return styles.boldStyle.Render(text)
}
