// Package normalize runs the export stage: every selected icon set is read
// from the acquired package, its icons are rendered, cleaned, recolored and
// optimized, and the survivors are written as standalone SVG files.
package normalize

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/compozy/iconpipe/engine/collection"
	"github.com/compozy/iconpipe/engine/core"
	"github.com/compozy/iconpipe/engine/iconset"
	"github.com/compozy/iconpipe/engine/svgdoc"
	"github.com/compozy/iconpipe/pkg/logger"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultSVGDir = "svg"
	// DefaultColor is the canonical foreground color of exported icons.
	DefaultColor = "#fcfcfc"
)

// Options configures a Normalizer.
type Options struct {
	SVGDir string
	// Include limits processing to prefixes matching any of these globs.
	Include        []string
	Color          string
	FillMissing    bool
	IncludeAliases bool
	Concurrency    int
}

// SetResult describes one processed icon set.
type SetResult struct {
	Prefix  string
	Name    string
	Kept    int
	Dropped int
	Written int
	Skipped int
}

// Summary aggregates a whole export run.
type Summary struct {
	Sets    core.Snapshot `json:"sets"`
	Kept    int           `json:"kept"`
	Dropped int           `json:"dropped"`
	Written int           `json:"written"`
}

// Normalizer transforms icon sets into the vector output tree.
type Normalizer struct {
	fs   afero.Fs
	opts Options
}

func New(fs afero.Fs, opts Options) *Normalizer {
	if opts.SVGDir == "" {
		opts.SVGDir = DefaultSVGDir
	}
	if opts.Color == "" {
		opts.Color = DefaultColor
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &Normalizer{fs: fs, opts: opts}
}

// Select returns the manifest prefixes matching the include globs, in
// manifest order.
func (n *Normalizer) Select(manifest *collection.Manifest) ([]string, error) {
	for _, pattern := range n.opts.Include {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid include pattern %q", pattern)
		}
	}
	prefixes := manifest.Prefixes()
	if len(n.opts.Include) == 0 {
		return prefixes, nil
	}
	selected := make([]string, 0, len(prefixes))
	for _, prefix := range prefixes {
		for _, pattern := range n.opts.Include {
			if ok, _ := doublestar.Match(pattern, prefix); ok {
				selected = append(selected, prefix)
				break
			}
		}
	}
	return selected, nil
}

// Run exports every selected icon set of manifest. A set that cannot be
// read or written is logged and counted as failed; the run continues.
func (n *Normalizer) Run(
	ctx context.Context,
	manifest *collection.Manifest,
	reporter core.ProgressReporter,
) (*Summary, error) {
	log := logger.FromContext(ctx)
	if reporter == nil {
		reporter = core.NopReporter{}
	}
	prefixes, err := n.Select(manifest)
	if err != nil {
		return nil, err
	}
	log.Info(fmt.Sprintf("Got %d icon sets", len(prefixes)))

	state := core.NewRunState(len(prefixes))
	results := make([]*SetResult, len(prefixes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(n.opts.Concurrency)
	for i, prefix := range prefixes {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := n.processManifestPrefix(gctx, manifest, prefix)
			if err != nil {
				log.Error("Failed to export icon set", "prefix", prefix, "error", err)
			}
			results[i] = res
			reporter.Report(state.Record(err == nil))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	summary := &Summary{Sets: state.Snapshot()}
	for _, res := range results {
		if res == nil {
			continue
		}
		summary.Kept += res.Kept
		summary.Dropped += res.Dropped
		summary.Written += res.Written
	}
	reporter.Done(summary.Sets)
	return summary, nil
}

func (n *Normalizer) processManifestPrefix(
	ctx context.Context,
	manifest *collection.Manifest,
	prefix string,
) (*SetResult, error) {
	path, err := manifest.SetPath(prefix)
	if err != nil {
		return nil, err
	}
	return n.ProcessPrefix(ctx, prefix, path)
}

// ProcessPrefix reads the icon set document at path, normalizes it and
// exports the surviving icons to <svgDir>/<prefix>. The prefix is the
// manifest key; the document's own "prefix" field does not pick the directory.
func (n *Normalizer) ProcessPrefix(ctx context.Context, prefix, path string) (*SetResult, error) {
	if err := collection.ValidatePrefix(prefix); err != nil {
		return nil, err
	}
	data, err := afero.ReadFile(n.fs, path)
	if err != nil {
		return nil, core.NewError(err, core.CodeInvalidIconSet, map[string]any{"path": path})
	}
	set, err := iconset.Parse(data)
	if err != nil {
		return nil, core.NewError(err, core.CodeInvalidIconSet, map[string]any{"path": path})
	}
	res := n.NormalizeSet(ctx, set)
	res.Prefix = prefix

	logger.FromContext(ctx).Info("Exporting " + displayName(set))
	target := filepath.Join(n.opts.SVGDir, prefix)
	exported, err := iconset.Export(ctx, n.fs, set, target, iconset.ExportOptions{
		IncludeAliases: n.opts.IncludeAliases,
	})
	if exported != nil {
		res.Written = len(exported.Written)
		res.Skipped = len(exported.Skipped)
	}
	if err != nil {
		return res, core.NewError(err, core.CodeExportFailed, map[string]any{"prefix": prefix})
	}
	return res, nil
}

// NormalizeSet transforms every icon of set in place. Icons that fail any
// step are removed together with their aliases.
func (n *Normalizer) NormalizeSet(ctx context.Context, set *iconset.IconSet) *SetResult {
	log := logger.FromContext(ctx)
	res := &SetResult{Prefix: set.Prefix, Name: displayName(set)}
	colors := svgdoc.ColorOptions{Rewrite: svgdoc.MonotoneRewrite(n.opts.Color)}
	if n.opts.FillMissing {
		colors.DefaultColor = n.opts.Color
	}
	// ForEach never fails here: per-icon errors are handled inline
	_ = set.ForEach(func(name string, kind iconset.Kind) error {
		if kind != iconset.KindIcon {
			return nil
		}
		if err := transformIcon(set, name, colors); err != nil {
			removed := set.Remove(name)
			res.Dropped++
			log.Warn("Dropping icon", "prefix", set.Prefix, "icon", name, "removed", removed, "error", err)
			return nil
		}
		res.Kept++
		return nil
	})
	return res
}

func transformIcon(set *iconset.IconSet, name string, colors svgdoc.ColorOptions) error {
	details := map[string]any{"prefix": set.Prefix, "icon": name}
	doc, err := set.ToSVG(name)
	if err != nil {
		return core.NewError(err, core.CodeRenderFailed, details)
	}
	if err := doc.Cleanup(); err != nil {
		return core.NewError(err, core.CodeCleanupFailed, details)
	}
	if err := doc.ParseColors(colors); err != nil {
		return core.NewError(err, core.CodeColorRewriteFailed, details)
	}
	if err := doc.Optimize(); err != nil {
		return core.NewError(err, core.CodeOptimizeFailed, details)
	}
	if err := set.FromSVG(name, doc); err != nil {
		return core.NewError(err, core.CodeRenderFailed, details)
	}
	return nil
}

func displayName(set *iconset.IconSet) string {
	if set.Info.Name != "" {
		return set.Info.Name
	}
	return set.Prefix
}
