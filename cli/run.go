package cli

import (
	"fmt"

	"github.com/compozy/iconpipe/cli/helpers"
	"github.com/compozy/iconpipe/cli/tui/components"
	"github.com/compozy/iconpipe/cli/tui/models"
	"github.com/spf13/cobra"
)

type runResult struct {
	Export *ExportResult `json:"export"`
	Raster *RasterResult `json:"raster"`
}

func (a *app) runCmd() *cobra.Command {
	var choice string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Export every icon set, then rasterize one provider",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mode := helpers.DetectMode(cmd)
			if mode == models.ModeTUI {
				fmt.Fprintln(cmd.OutOrStdout(), components.RenderASCIIHeader(helpers.TerminalWidth()))
			}
			exported, err := a.runExport(cmd, mode)
			if err != nil {
				return err
			}
			if mode == models.ModeTUI {
				if err := printExportResult(cmd, mode, exported); err != nil {
					return err
				}
			}
			rasterized, err := a.runRasterize(cmd, mode, choice)
			if err != nil {
				return err
			}
			if mode == models.ModeTUI {
				return printRasterResult(cmd, mode, rasterized)
			}
			return helpers.WriteJSON(cmd.OutOrStdout(), runResult{Export: exported, Raster: rasterized},
				helpers.ShouldUseColor(cmd))
		},
	}
	addProviderFlag(cmd, &choice)
	addConfigFlags(cmd.Flags(), "acquire", "export", "raster")
	return cmd
}
