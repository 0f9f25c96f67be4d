package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Build variables set via ldflags:
// -X 'github.com/compozy/iconpipe/pkg/version.Version=v1.0.0'
// -X 'github.com/compozy/iconpipe/pkg/version.CommitHash=abc123'
// -X 'github.com/compozy/iconpipe/pkg/version.BuildDate=2024-01-01T00:00:00Z'
var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildDate  = "unknown"
)

// Info returns build information in a structured format
type Info struct {
	Version    string `json:"version"`
	CommitHash string `json:"commit_hash"`
	BuildDate  string `json:"build_date"`
	GoVersion  string `json:"go_version"`
}

// Get returns the current build information. Without ldflags the commit
// falls back to the VCS stamp embedded by the Go toolchain.
func Get() Info {
	info := Info{
		Version:    Version,
		CommitHash: CommitHash,
		BuildDate:  BuildDate,
		GoVersion:  runtime.Version(),
	}
	if info.CommitHash == "unknown" {
		if rev := vcsRevision(); rev != "" {
			info.CommitHash = rev
		}
	}
	return info
}

func (i Info) String() string {
	return fmt.Sprintf("iconpipe %s (commit %s, built %s, %s)", i.Version, i.CommitHash, i.BuildDate, i.GoVersion)
}

func vcsRevision() string {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range bi.Settings {
		if s.Key == "vcs.revision" {
			return s.Value
		}
	}
	return ""
}
