package cli

import (
	"fmt"

	"github.com/compozy/iconpipe/cli/helpers"
	"github.com/compozy/iconpipe/cli/tui/components"
	"github.com/compozy/iconpipe/cli/tui/models"
	"github.com/compozy/iconpipe/engine/provider"
	"github.com/spf13/cobra"
)

func (a *app) providersCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "providers",
		Short: "List the providers available for rasterization",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := helpers.ConfigFromCommand(cmd)
			providers, err := provider.NewScanner(a.fs, cfg.Export.SVGDir).List(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			switch {
			case asJSON:
				return helpers.WriteJSON(out, map[string]any{"providers": providers}, helpers.ShouldUseColor(cmd))
			case helpers.DetectMode(cmd) == models.ModeTUI:
				_, err = fmt.Fprint(out, components.RenderProviderList(providers))
				return err
			default:
				helpers.PrintProviders(out, providers)
				return nil
			}
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print providers as JSON")
	addConfigFlags(cmd.Flags(), "export.svg_dir")
	return cmd
}
