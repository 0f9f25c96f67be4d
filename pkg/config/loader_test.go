package config

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSource struct {
	data       map[string]any
	sourceType SourceType
	loadErr    error
}

func (m *mockSource) Load() (map[string]any, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.data, nil
}

func (m *mockSource) Type() SourceType {
	return m.sourceType
}

func TestLoader_Load(t *testing.T) {
	t.Run("Should load default configuration when no sources provided", func(t *testing.T) {
		// Act
		cfg, err := NewService().Load(context.Background())

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "@iconify/json", cfg.Acquire.Package)
		assert.Equal(t, 5*time.Minute, cfg.Acquire.Timeout)
		assert.Equal(t, "#fcfcfc", cfg.Export.Color)
		assert.True(t, cfg.Export.FillMissing)
		assert.Empty(t, cfg.Export.Include)
		assert.Equal(t, []int{24, 48, 64, 128}, cfg.Raster.Sizes)
	})

	t.Run("Should apply sources in precedence order", func(t *testing.T) {
		// Arrange
		loader := NewService()
		yamlSource := &mockSource{
			data: map[string]any{
				"raster": map[string]any{
					"png_dir":     "out/png",
					"supersample": 2,
				},
			},
			sourceType: SourceYAML,
		}
		cliSource := &mockSource{
			data: map[string]any{
				"raster": map[string]any{
					"png_dir": "cli/png",
				},
			},
			sourceType: SourceCLI,
		}

		// Act
		cfg, err := loader.Load(context.Background(), yamlSource, cliSource)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "cli/png", cfg.Raster.PNGDir)
		assert.Equal(t, 2, cfg.Raster.Supersample)
		assert.Equal(t, []int{24, 48, 64, 128}, cfg.Raster.Sizes)
		assert.Equal(t, SourceCLI, loader.GetSource("raster.png_dir"))
		assert.Equal(t, SourceYAML, loader.GetSource("raster.supersample"))
		assert.Equal(t, SourceDefault, loader.GetSource("export.color"))
	})

	t.Run("Should apply mapped environment variables last", func(t *testing.T) {
		// Arrange
		t.Setenv("ICONPIPE_PNG_DIR", "env/png")
		t.Setenv("ICONPIPE_SIZES", "16, 32")
		t.Setenv("ICONPIPE_INCLUDE", "mdi,carbon")
		loader := NewService()
		cliSource := &mockSource{
			data:       map[string]any{"raster": map[string]any{"png_dir": "cli/png"}},
			sourceType: SourceCLI,
		}

		// Act
		cfg, err := loader.Load(context.Background(), cliSource)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "env/png", cfg.Raster.PNGDir)
		assert.Equal(t, []int{16, 32}, cfg.Raster.Sizes)
		assert.Equal(t, []string{"mdi", "carbon"}, cfg.Export.Include)
		assert.Equal(t, SourceEnv, loader.GetSource("raster.sizes"))
	})

	t.Run("Should ignore unmapped environment variables", func(t *testing.T) {
		t.Setenv("RASTER_PNG_DIR", "ignored")

		cfg, err := NewService().Load(context.Background())

		require.NoError(t, err)
		assert.Equal(t, "png", cfg.Raster.PNGDir)
	})

	t.Run("Should validate configuration after loading", func(t *testing.T) {
		// Arrange
		source := &mockSource{
			data:       map[string]any{"raster": map[string]any{"sizes": []any{64, 24}}},
			sourceType: SourceYAML,
		}

		// Act
		_, err := NewService().Load(context.Background(), source)

		// Assert
		require.Error(t, err)
		assert.Contains(t, err.Error(), "validation failed")
	})

	t.Run("Should propagate source errors", func(t *testing.T) {
		source := &mockSource{loadErr: errors.New("boom"), sourceType: SourceYAML}

		_, err := NewService().Load(context.Background(), source)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "boom")
	})

	t.Run("Should reset state between loads", func(t *testing.T) {
		loader := NewService()
		source := &mockSource{
			data:       map[string]any{"export": map[string]any{"color": "#ff0000"}},
			sourceType: SourceYAML,
		}
		_, err := loader.Load(context.Background(), source)
		require.NoError(t, err)

		cfg, err := loader.Load(context.Background())

		require.NoError(t, err)
		assert.Equal(t, "#fcfcfc", cfg.Export.Color)
		assert.Equal(t, SourceDefault, loader.GetSource("export.color"))
	})
}

func TestFlattenMap(t *testing.T) {
	t.Run("Should flatten nested maps into dotted keys", func(t *testing.T) {
		out := flattenMap("", map[string]any{
			"export": map[string]any{"color": "red", "include": []string{"a"}},
			"top":    1,
		})
		assert.Equal(t, map[string]any{
			"export.color":   "red",
			"export.include": []string{"a"},
			"top":            1,
		}, out)
	})
}
