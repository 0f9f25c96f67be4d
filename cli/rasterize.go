package cli

import (
	"fmt"

	"github.com/compozy/iconpipe/cli/helpers"
	"github.com/compozy/iconpipe/cli/tui/components"
	"github.com/compozy/iconpipe/cli/tui/models"
	"github.com/compozy/iconpipe/engine/core"
	"github.com/compozy/iconpipe/engine/fanout"
	"github.com/compozy/iconpipe/engine/provider"
	"github.com/compozy/iconpipe/engine/raster"
	"github.com/compozy/iconpipe/pkg/logger"
	"github.com/spf13/cobra"
)

// RasterResult is the outcome of the raster fan-out stage.
type RasterResult struct {
	Provider string        `json:"provider"`
	Sizes    []int         `json:"sizes"`
	Files    core.Snapshot `json:"files"`
}

func (a *app) rasterizeCmd() *cobra.Command {
	var choice string
	cmd := &cobra.Command{
		Use:   "rasterize",
		Short: "Render one provider's SVG files to PNG at every configured width",
		Long: "Pick a provider below <svg-dir> and write <png-dir>/<provider>/<name>_<width>.png " +
			"for every SVG file it contains. Without --provider a selection prompt is shown.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mode := helpers.DetectMode(cmd)
			res, err := a.runRasterize(cmd, mode, choice)
			if err != nil {
				return err
			}
			return printRasterResult(cmd, mode, res)
		},
	}
	addProviderFlag(cmd, &choice)
	addConfigFlags(cmd.Flags(), "export.svg_dir", "raster")
	return cmd
}

func addProviderFlag(cmd *cobra.Command, choice *string) {
	cmd.Flags().StringVarP(choice, "provider", "p", "", "Provider name or list number (prompts when empty)")
}

func (a *app) runRasterize(cmd *cobra.Command, mode models.Mode, choice string) (*RasterResult, error) {
	ctx := cmd.Context()
	cfg := helpers.ConfigFromCommand(cmd)
	log := logger.FromContext(ctx)
	scanner := provider.NewScanner(a.fs, cfg.Export.SVGDir)
	providers, err := scanner.List(ctx)
	if err != nil {
		return nil, err
	}
	name, err := chooseProvider(cmd, mode, providers, choice)
	if err != nil {
		return nil, err
	}
	files, err := scanner.Files(ctx, name)
	if err != nil {
		return nil, err
	}
	log.Info(fmt.Sprintf("Found %d SVG %s", len(files), helpers.Pluralize(len(files), "file", "files")),
		"provider", name)

	res := &RasterResult{Provider: name, Sizes: cfg.Raster.Sizes}
	err = helpers.LogOperation(ctx, "rasterize", func() error {
		rasterizer := raster.New(raster.Options{
			Supersample: cfg.Raster.Supersample,
			Strict:      cfg.Raster.Strict,
		})
		f := fanout.New(a.fs, rasterizer, fanout.Options{
			SVGDir:      cfg.Export.SVGDir,
			PNGDir:      cfg.Raster.PNGDir,
			Sizes:       cfg.Raster.Sizes,
			Concurrency: cfg.Raster.Concurrency,
		})
		snapshot, err := f.Run(ctx, files, newReporter(cmd, mode, "Rasterizing"))
		res.Files = snapshot
		if err != nil {
			return err
		}
		log.Info("Rasterization complete",
			"provider", name,
			"succeeded", snapshot.Succeeded,
			"failed", snapshot.Failed,
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// chooseProvider resolves an explicit choice, or asks the user.
func chooseProvider(cmd *cobra.Command, mode models.Mode, providers []string, choice string) (string, error) {
	if choice != "" {
		return provider.Resolve(providers, choice)
	}
	if mode == models.ModeTUI {
		return components.SelectProvider(cmd.Context(), providers)
	}
	return helpers.PromptProvider(cmd.InOrStdin(), cmd.ErrOrStderr(), providers)
}

func printRasterResult(cmd *cobra.Command, mode models.Mode, res *RasterResult) error {
	out := cmd.OutOrStdout()
	if mode != models.ModeTUI {
		return helpers.WriteJSON(out, res, helpers.ShouldUseColor(cmd))
	}
	_, err := fmt.Fprintln(out, components.RenderSummary("Rasterize", []components.SummaryRow{
		{Label: "Provider", Value: res.Provider},
		{Label: "Widths", Value: res.Sizes},
		{Label: "Files", Value: res.Files.Total},
		{Label: "Succeeded", Value: res.Files.Succeeded},
		{Label: "Failed", Value: res.Files.Failed, Alert: true},
	}))
	return err
}
