package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#04B575"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Width(12)
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#04B575")).
			Padding(0, 1)
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
)

// SummaryRow is one labeled value of a stage summary.
type SummaryRow struct {
	Label string
	Value any
	// Alert highlights non-zero failure counts.
	Alert bool
}

// RenderSummary draws a bordered summary box.
func RenderSummary(title string, rows []SummaryRow) string {
	lines := []string{titleStyle.Render(title)}
	for _, row := range rows {
		value := fmt.Sprint(row.Value)
		if row.Alert && value != "0" {
			value = failStyle.Render(value)
		}
		lines = append(lines, labelStyle.Render(row.Label)+value)
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}

// RenderProviderList draws providers as a numbered list with dimmed indices.
func RenderProviderList(providers []string) string {
	var b strings.Builder
	for i, p := range providers {
		b.WriteString(labelStyle.Width(5).Render(fmt.Sprintf("%d.", i+1)))
		b.WriteString(p)
		b.WriteString("\n")
	}
	return b.String()
}
