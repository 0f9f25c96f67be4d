package cli

import (
	"context"
	"fmt"

	"github.com/compozy/iconpipe/cli/helpers"
	"github.com/compozy/iconpipe/pkg/config"
	"github.com/compozy/iconpipe/pkg/logger"
	"github.com/compozy/iconpipe/pkg/version"
	"github.com/segmentio/ksuid"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// app carries what every command shares beyond the configuration.
type app struct {
	fs afero.Fs
}

func RootCmd() *cobra.Command {
	return newRootCmd(afero.NewOsFs())
}

func newRootCmd(fs afero.Fs) *cobra.Command {
	a := &app{fs: fs}
	root := &cobra.Command{
		Use:           "iconpipe",
		Short:         "Export iconify icon sets to SVG and rasterize them to PNG",
		Version:       version.Get().Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return SetupGlobalConfig(cmd)
		},
	}
	root.PersistentFlags().String("config", "iconpipe.yaml", "Path to configuration file")
	root.PersistentFlags().String("env-file", ".env", "Path to environment file")
	addConfigFlags(root.PersistentFlags(), "runtime", "cli")

	root.AddCommand(
		a.exportCmd(),
		a.rasterizeCmd(),
		a.runCmd(),
		a.providersCmd(),
		configCmd(),
		versionCmd(),
	)
	return root
}

// SetupGlobalConfig loads the env file and configuration, sets up the logger
// and stores both in the command context.
func SetupGlobalConfig(cmd *cobra.Command) error {
	if _, err := loadEnvFile(cmd); err != nil {
		return err
	}
	configFile, err := cmd.Flags().GetString("config")
	if err != nil {
		return fmt.Errorf("failed to get config flag: %w", err)
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	manager := config.NewManager(config.NewService())
	cfg, err := manager.Load(
		ctx,
		config.NewYAMLProvider(configFile),
		config.NewCLIProvider(extractCLIFlags(cmd)),
		config.NewEnvProvider(),
	)
	if err != nil {
		return err
	}
	log := logger.SetupLogger(cfg.Runtime.LogLevel, cfg.Runtime.LogJSON, cfg.Runtime.LogSource)
	if cfg.Runtime.LogJSON {
		// one id per invocation
		log = log.With("run_id", ksuid.New().String())
	}
	ctx = config.ContextWithManager(ctx, manager)
	ctx = logger.ContextWithLogger(ctx, log)
	ctx = context.WithValue(ctx, helpers.ConfigKey, cfg)
	cmd.SetContext(ctx)
	log.Debug("Configuration loaded", "config_file", configFile)
	return nil
}
