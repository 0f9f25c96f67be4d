package components

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/common-nighthawk/go-figure"
)

// RenderASCIIHeader renders the iconpipe banner shown before interactive runs
func RenderASCIIHeader(width int) string {
	logo := figure.NewFigure("ICONPIPE", "standard", true)
	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#04B575")).
		Bold(true).
		Align(lipgloss.Left).
		Width(width)
	return headerStyle.Render(logo.String())
}
