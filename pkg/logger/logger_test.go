package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"
	"testing"

	charmlog "github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bufferLogger(level LogLevel, jsonOut bool) (Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewLogger(&Config{Level: level, Output: &buf, JSON: jsonOut, TimeFormat: "15:04:05"}), &buf
}

func restoreDefault(t *testing.T) {
	t.Helper()
	previous := GetDefault()
	t.Cleanup(func() { defaultLogger = previous })
}

func TestFromContext(t *testing.T) {
	t.Run("Should return the logger stored in the context", func(t *testing.T) {
		stored, _ := bufferLogger(InfoLevel, false)
		assert.Same(t, stored, FromContext(ContextWithLogger(t.Context(), stored)))
	})

	t.Run("Should fall back to the default logger", func(t *testing.T) {
		for name, ctx := range map[string]context.Context{
			"empty":      t.Context(),
			"wrong type": context.WithValue(t.Context(), LoggerCtxKey, "icons"),
			"nil logger": context.WithValue(t.Context(), LoggerCtxKey, Logger(nil)),
		} {
			assert.Same(t, GetDefault(), FromContext(ctx), name)
		}
	})
}

func TestLogLevel_ToCharmlogLevel(t *testing.T) {
	testCases := []struct {
		level    LogLevel
		expected charmlog.Level
	}{
		{DebugLevel, charmlog.DebugLevel},
		{InfoLevel, charmlog.InfoLevel},
		{WarnLevel, charmlog.WarnLevel},
		{ErrorLevel, charmlog.ErrorLevel},
		{NoLevel, charmlog.InfoLevel},
		{LogLevel("verbose"), charmlog.InfoLevel},
	}
	for _, tc := range testCases {
		t.Run("Should map "+tc.level.String(), func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.level.ToCharmlogLevel())
		})
	}

	t.Run("Should place disabled above every emitted level", func(t *testing.T) {
		assert.Greater(t, DisabledLevel.ToCharmlogLevel(), charmlog.FatalLevel)
	})
}

func TestNewLogger(t *testing.T) {
	t.Run("Should write structured records in JSON mode", func(t *testing.T) {
		// Arrange
		log, buf := bufferLogger(InfoLevel, true)

		// Act
		log.Warn("Dropping icon", "prefix", "mdi", "icon", "home")

		// Assert
		var record map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
		assert.Equal(t, "Dropping icon", record["msg"])
		assert.Equal(t, "mdi", record["prefix"])
		assert.Equal(t, "home", record["icon"])
	})

	t.Run("Should filter records below the configured level", func(t *testing.T) {
		log, buf := bufferLogger(WarnLevel, false)

		log.Debug("Found 3 SVG files")
		log.Info("Got 2 icon sets")
		log.Warn("Dropping icon")
		log.Error("Failed to export icon set")

		output := buf.String()
		assert.NotContains(t, output, "Found 3 SVG files")
		assert.NotContains(t, output, "Got 2 icon sets")
		assert.Contains(t, output, "Dropping icon")
		assert.Contains(t, output, "Failed to export icon set")
	})

	t.Run("Should emit nothing when disabled", func(t *testing.T) {
		log, buf := bufferLogger(DisabledLevel, false)

		log.Error("Failed to export icon set")

		assert.Empty(t, buf.String())
	})

	t.Run("Should discard everything with the test configuration", func(t *testing.T) {
		cfg := TestConfig()
		assert.Equal(t, DisabledLevel, cfg.Level)
		assert.Equal(t, io.Discard, cfg.Output)
	})
}

func TestLogger_With(t *testing.T) {
	t.Run("Should carry fields across chained calls", func(t *testing.T) {
		base, buf := bufferLogger(DebugLevel, true)

		base.With("run_id", "abc").With("prefix", "carbon").Info("Exporting Carbon")

		var record map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
		assert.Equal(t, "abc", record["run_id"])
		assert.Equal(t, "carbon", record["prefix"])
	})

	t.Run("Should leave the parent logger unchanged", func(t *testing.T) {
		base, buf := bufferLogger(InfoLevel, false)

		_ = base.With("prefix", "carbon")
		base.Info("Got 1 icon sets")

		assert.NotContains(t, buf.String(), "carbon")
	})
}

func TestInit(t *testing.T) {
	t.Run("Should route package helpers through the new default", func(t *testing.T) {
		restoreDefault(t)
		var buf bytes.Buffer
		Init(&Config{Level: DebugLevel, Output: &buf, TimeFormat: "15:04:05"})

		Debug("debug line")
		Info("info line")
		Warn("warn line")
		Error("error line")

		for _, line := range []string{"debug line", "info line", "warn line", "error line"} {
			assert.Contains(t, buf.String(), line)
		}
	})
}

func TestSetupLogger(t *testing.T) {
	t.Run("Should install a default logger writing to stderr", func(t *testing.T) {
		// Arrange
		restoreDefault(t)
		r, w, err := os.Pipe()
		require.NoError(t, err)
		stderr := os.Stderr
		os.Stderr = w
		t.Cleanup(func() { os.Stderr = stderr })

		// Act
		installed := SetupLogger("info", true, false)
		installed.Info("Found 2 SVG files")
		require.NoError(t, w.Close())
		out, err := io.ReadAll(r)
		require.NoError(t, err)

		// Assert
		assert.Same(t, installed, GetDefault())
		assert.Same(t, installed, FromContext(context.Background()))
		assert.True(t, strings.HasPrefix(string(out), "{"))
		assert.Contains(t, string(out), "Found 2 SVG files")
	})
}

func TestIsTestEnvironment(t *testing.T) {
	t.Run("Should report true under go test", func(t *testing.T) {
		assert.True(t, IsTestEnvironment())
	})
}
