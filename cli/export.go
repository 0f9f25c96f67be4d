package cli

import (
	"fmt"

	"github.com/compozy/iconpipe/cli/helpers"
	"github.com/compozy/iconpipe/cli/tui/components"
	"github.com/compozy/iconpipe/cli/tui/models"
	"github.com/compozy/iconpipe/engine/acquire"
	"github.com/compozy/iconpipe/engine/collection"
	"github.com/compozy/iconpipe/engine/core"
	"github.com/compozy/iconpipe/engine/normalize"
	"github.com/compozy/iconpipe/pkg/config"
	"github.com/compozy/iconpipe/pkg/logger"
	"github.com/spf13/cobra"
)

// ExportResult is the outcome of the vector export stage.
type ExportResult struct {
	Package *acquire.Result    `json:"package"`
	Summary *normalize.Summary `json:"summary"`
}

func (a *app) exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every icon set as normalized SVG files",
		Long: "Acquire the icon package, then clean, recolor and optimize every icon " +
			"and write it to <svg-dir>/<prefix>/<name>.svg.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mode := helpers.DetectMode(cmd)
			res, err := a.runExport(cmd, mode)
			if err != nil {
				return err
			}
			return printExportResult(cmd, mode, res)
		},
	}
	addConfigFlags(cmd.Flags(), "acquire", "export")
	return cmd
}

func (a *app) runExport(cmd *cobra.Command, mode models.Mode) (*ExportResult, error) {
	ctx := cmd.Context()
	cfg := helpers.ConfigFromCommand(cmd)
	var res ExportResult
	err := helpers.LogOperation(ctx, "export", func() error {
		gate := acquire.NewGate(a.fs, acquireOptions(cfg))
		pkg, err := gate.Acquire(ctx)
		if err != nil {
			return err
		}
		res.Package = pkg
		manifest, err := collection.Load(ctx, a.fs, pkg.ContentRoot)
		if err != nil {
			return err
		}
		normalizer := normalize.New(a.fs, normalize.Options{
			SVGDir:         cfg.Export.SVGDir,
			Include:        cfg.Export.Include,
			Color:          cfg.Export.Color,
			FillMissing:    cfg.Export.FillMissing,
			IncludeAliases: cfg.Export.IncludeAliases,
			Concurrency:    cfg.Export.Concurrency,
		})
		summary, err := normalizer.Run(ctx, manifest, newReporter(cmd, mode, "Exporting"))
		if err != nil {
			return err
		}
		res.Summary = summary
		logger.FromContext(ctx).Info("Export complete",
			"sets", summary.Sets.Succeeded,
			"failed", summary.Sets.Failed,
			"icons", summary.Written,
			"dropped", summary.Dropped,
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func acquireOptions(cfg *config.Config) acquire.Options {
	return acquire.Options{
		Package:     cfg.Acquire.Package,
		CacheDir:    cfg.Acquire.CacheDir,
		RegistryURL: cfg.Acquire.RegistryURL,
		Version:     cfg.Acquire.Version,
		Timeout:     cfg.Acquire.Timeout,
		MaxRetries:  cfg.Acquire.MaxRetries,
	}
}

// newReporter draws a progress bar on interactive terminals and prints
// progress lines to stderr otherwise.
func newReporter(cmd *cobra.Command, mode models.Mode, label string) core.ProgressReporter {
	if mode == models.ModeTUI {
		return components.NewProgressBar(cmd.OutOrStdout(), label, helpers.TerminalWidth())
	}
	return helpers.NewLineReporter(cmd.ErrOrStderr())
}

func printExportResult(cmd *cobra.Command, mode models.Mode, res *ExportResult) error {
	out := cmd.OutOrStdout()
	if mode != models.ModeTUI {
		return helpers.WriteJSON(out, res, helpers.ShouldUseColor(cmd))
	}
	s := res.Summary
	_, err := fmt.Fprintln(out, components.RenderSummary("Export", []components.SummaryRow{
		{Label: "Package", Value: res.Package.Version},
		{Label: "Icon sets", Value: s.Sets.Total},
		{Label: "Succeeded", Value: s.Sets.Succeeded},
		{Label: "Failed", Value: s.Sets.Failed, Alert: true},
		{Label: "Icons", Value: s.Written},
		{Label: "Dropped", Value: s.Dropped, Alert: true},
	}))
	return err
}
