// Package fanout runs the rasterize stage: every vector file of a provider
// is rendered at each configured width and written next to its mirrored
// path in the raster tree.
package fanout

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/compozy/iconpipe/engine/core"
	"github.com/compozy/iconpipe/engine/raster"
	"github.com/compozy/iconpipe/pkg/logger"
	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultSVGDir = "svg"
	DefaultPNGDir = "png"

	svgMIME = "image/svg+xml"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Options configures a Fanout.
type Options struct {
	SVGDir      string
	PNGDir      string
	Sizes       []int
	Concurrency int
}

// Fanout writes PNG variants of vector files.
type Fanout struct {
	fs         afero.Fs
	rasterizer raster.Rasterizer
	opts       Options
}

func New(fs afero.Fs, rasterizer raster.Rasterizer, opts Options) *Fanout {
	if opts.SVGDir == "" {
		opts.SVGDir = DefaultSVGDir
	}
	if opts.PNGDir == "" {
		opts.PNGDir = DefaultPNGDir
	}
	if len(opts.Sizes) == 0 {
		opts.Sizes = raster.DefaultSizes
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &Fanout{fs: fs, rasterizer: rasterizer, opts: opts}
}

// Run processes files, given relative to the vector root. A file that fails
// is logged and counted; it never stops the run.
func (f *Fanout) Run(ctx context.Context, files []string, reporter core.ProgressReporter) (core.Snapshot, error) {
	log := logger.FromContext(ctx)
	if reporter == nil {
		reporter = core.NopReporter{}
	}
	state := core.NewRunState(len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.opts.Concurrency)
	for _, rel := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			_, err := f.ProcessFile(gctx, rel)
			if err != nil {
				log.Warn("Failed to rasterize file", "file", rel, "error", err)
			}
			reporter.Report(state.Record(err == nil))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return state.Snapshot(), err
	}
	if err := ctx.Err(); err != nil {
		return state.Snapshot(), err
	}
	snapshot := state.Snapshot()
	reporter.Done(snapshot)
	return snapshot, nil
}

// BasePath maps a vector file to the raster path prefix shared by its
// variants: the relative path without extension, under the raster root.
func (f *Fanout) BasePath(rel string) string {
	return filepath.Join(f.opts.PNGDir, strings.TrimSuffix(rel, filepath.Ext(rel)))
}

// ProcessFile renders rel at every width. The first failure aborts the
// remaining widths; variants already written are left in place.
func (f *Fanout) ProcessFile(_ context.Context, rel string) ([]string, error) {
	src := filepath.Join(f.opts.SVGDir, rel)
	base := f.BasePath(rel)
	fail := func(err error, width int) error {
		details := map[string]any{"file": src}
		if width > 0 {
			details["width"] = width
		}
		return core.NewError(err, core.CodeRasterFailed, details)
	}
	if err := f.fs.MkdirAll(filepath.Dir(base), 0o755); err != nil {
		return nil, fail(err, 0)
	}
	data, err := afero.ReadFile(f.fs, src)
	if err != nil {
		return nil, fail(err, 0)
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	if mt := mimetype.Detect(data); !mt.Is(svgMIME) {
		return nil, fail(fmt.Errorf("not an svg document: detected %s", mt.String()), 0)
	}
	written := make([]string, 0, len(f.opts.Sizes))
	for _, width := range f.opts.Sizes {
		out, err := raster.RenderPNG(f.rasterizer, data, width)
		if err != nil {
			return written, fail(err, width)
		}
		target := fmt.Sprintf("%s_%d.png", base, width)
		if err := afero.WriteFile(f.fs, target, out, 0o644); err != nil {
			return written, fail(err, width)
		}
		written = append(written, target)
	}
	return written, nil
}
