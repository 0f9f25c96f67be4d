package components

import (
	"bytes"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/compozy/iconpipe/engine/core"
	"github.com/stretchr/testify/assert"
)

func TestProgressBar(t *testing.T) {
	t.Run("Should end with the final state on its own line", func(t *testing.T) {
		// Arrange
		var out bytes.Buffer
		bar := NewProgressBar(&out, "Rasterizing", 80)

		// Act
		bar.Report(core.Snapshot{Total: 2, Processed: 1, Succeeded: 1})
		bar.Report(core.Snapshot{Total: 2, Processed: 2, Succeeded: 2})
		bar.Done(core.Snapshot{Total: 2, Processed: 2, Succeeded: 2})
		text := out.String()
		time.Sleep(2 * redrawMaxWait)

		// Assert
		assert.True(t, strings.HasSuffix(text, "2/2 (100.00%)\n"))
		assert.Equal(t, text, out.String())
	})

	t.Run("Should start each line with the label", func(t *testing.T) {
		bar := NewProgressBar(&bytes.Buffer{}, "Exporting", 40)
		assert.True(t, strings.HasPrefix(bar.Line(core.Snapshot{Total: 1}), "Exporting "))
	})
}

func TestRenderSummary(t *testing.T) {
	t.Run("Should include every row", func(t *testing.T) {
		text := RenderSummary("Rasterize", []SummaryRow{
			{Label: "Provider", Value: "mdi"},
			{Label: "Failed", Value: 0, Alert: true},
		})

		assert.Contains(t, text, "Rasterize")
		assert.Contains(t, text, "Provider")
		assert.Contains(t, text, "mdi")
		assert.Contains(t, text, "Failed")
	})
}

func TestRenderProviderList(t *testing.T) {
	t.Run("Should number providers from one", func(t *testing.T) {
		text := RenderProviderList([]string{"carbon", "mdi"})

		lines := strings.Split(strings.TrimSpace(text), "\n")
		assert.Len(t, lines, 2)
		assert.Contains(t, lines[0], "1.")
		assert.Contains(t, lines[0], "carbon")
		assert.Contains(t, lines[1], "2.")
		assert.Contains(t, lines[1], "mdi")
	})
}

func TestFormWrapper(t *testing.T) {
	t.Run("Should cancel on ctrl+c", func(t *testing.T) {
		var choice string
		wrapper := NewFormWrapper(ProviderForm([]string{"mdi"}, &choice))

		_, cmd := wrapper.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

		assert.NotNil(t, cmd)
		assert.True(t, wrapper.IsCanceled())
		assert.False(t, wrapper.IsCompleted())
		assert.Empty(t, wrapper.View())
	})

	t.Run("Should record the window size", func(t *testing.T) {
		var choice string
		wrapper := NewFormWrapper(ProviderForm([]string{"mdi"}, &choice))

		wrapper.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

		width, height := wrapper.Size()
		assert.Equal(t, 120, width)
		assert.Equal(t, 40, height)
		assert.False(t, wrapper.IsCanceled())
	})
}

func TestRenderASCIIHeader(t *testing.T) {
	t.Run("Should render a non-empty banner", func(t *testing.T) {
		assert.NotEmpty(t, strings.TrimSpace(RenderASCIIHeader(0)))
	})
}
