package models

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Mode represents the output mode for CLI commands
type Mode string

const (
	// ModeTUI represents interactive TUI mode
	ModeTUI Mode = "tui"
	// ModeJSON represents non-interactive output: plain progress lines and JSON summaries
	ModeJSON Mode = "json"
)

// BaseModel provides common functionality for all TUI models
type BaseModel struct {
	width    int
	height   int
	quitting bool
}

// Size returns the terminal size
func (m BaseModel) Size() (width, height int) {
	return m.width, m.height
}

func (m BaseModel) IsQuitting() bool {
	return m.quitting
}

func (m *BaseModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *BaseModel) Quit() {
	m.quitting = true
}

// Update handles window sizing and the quit keys shared by every model
func (m *BaseModel) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.Quit()
			return tea.Quit
		}
	}
	return nil
}
