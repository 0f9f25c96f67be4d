package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet(t *testing.T) {
	t.Run("Should report ldflags values", func(t *testing.T) {
		prev := [3]string{Version, CommitHash, BuildDate}
		t.Cleanup(func() { Version, CommitHash, BuildDate = prev[0], prev[1], prev[2] })
		Version, CommitHash, BuildDate = "v1.2.3", "abc123", "2024-01-01"

		info := Get()

		assert.Equal(t, Info{Version: "v1.2.3", CommitHash: "abc123", BuildDate: "2024-01-01", GoVersion: runtime.Version()}, info)
		assert.Contains(t, info.String(), "iconpipe v1.2.3 (commit abc123")
	})
}
