package iconset

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/compozy/iconpipe/pkg/logger"
	"github.com/gosimple/slug"
	"github.com/spf13/afero"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// ExportOptions controls which entries are written.
type ExportOptions struct {
	// IncludeAliases also writes aliases and variations of surviving icons.
	IncludeAliases bool
}

// ExportResult lists what Export wrote.
type ExportResult struct {
	Written []string
	Skipped []string
}

// Export writes one <name>.svg per icon into target, creating it when
// needed. Existing files with the same names are overwritten; other files in
// target are left untouched. Names that are not safe file names are skipped.
func Export(ctx context.Context, fs afero.Fs, set *IconSet, target string, opts ExportOptions) (*ExportResult, error) {
	log := logger.FromContext(ctx)
	if err := fs.MkdirAll(target, dirPerm); err != nil {
		return nil, fmt.Errorf("failed to create export directory %s: %w", target, err)
	}
	result := &ExportResult{}
	for _, name := range set.Names() {
		entry, _ := set.Entry(name)
		if entry.Kind != KindIcon && !opts.IncludeAliases {
			continue
		}
		if !slug.IsSlug(name) {
			log.Warn("skipping icon with unsafe file name", "prefix", set.Prefix, "icon", name)
			result.Skipped = append(result.Skipped, name)
			continue
		}
		markup, err := set.ToString(name)
		if err != nil {
			log.Warn("skipping icon that cannot be rendered", "prefix", set.Prefix, "icon", name, "error", err)
			result.Skipped = append(result.Skipped, name)
			continue
		}
		path := filepath.Join(target, name+".svg")
		if err := afero.WriteFile(fs, path, []byte(markup), filePerm); err != nil {
			return result, fmt.Errorf("failed to write %s: %w", path, err)
		}
		result.Written = append(result.Written, path)
	}
	return result, nil
}
