package helpers

import (
	"context"
	"os"

	"github.com/compozy/iconpipe/cli/tui/models"
	"github.com/compozy/iconpipe/pkg/config"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var ciVars = []string{
	"CI",
	"JENKINS_HOME",
	"GITHUB_ACTIONS",
	"GITLAB_CI",
	"CIRCLECI",
	"TRAVIS",
	"BUILDKITE",
	"DRONE",
	"TF_BUILD", // Azure DevOps
	"BITBUCKET_COMMIT",
	"CODEBUILD_BUILD_ID",
	"TEAMCITY_VERSION",
	"BUILD_NUMBER",
	"CONTINUOUS_INTEGRATION",
}

// isRunningInCI checks if we're running in a CI/CD environment
func isRunningInCI() bool {
	for _, v := range ciVars {
		if os.Getenv(v) != "" {
			return true
		}
	}
	return false
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func dumbTerminal() bool {
	term := os.Getenv("TERM")
	return term == "dumb" || term == ""
}

// isInteractiveEnvironment checks if prompts and progress bars can be drawn
func isInteractiveEnvironment(cfg *config.Config) bool {
	if cfg.CLI.Interactive {
		return true
	}
	if isRunningInCI() {
		return false
	}
	if !isTerminal(os.Stdin) || !isTerminal(os.Stdout) {
		return false
	}
	return !dumbTerminal()
}

// ConfigFromCommand returns the configuration stored on the command context.
func ConfigFromCommand(cmd *cobra.Command) *config.Config {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg, ok := ctx.Value(ConfigKey).(*config.Config); ok && cfg != nil {
		return cfg
	}
	return config.FromContext(ctx)
}

// DetectMode picks the TUI when the session is interactive and line output otherwise
func DetectMode(cmd *cobra.Command) models.Mode {
	if isInteractiveEnvironment(ConfigFromCommand(cmd)) {
		return models.ModeTUI
	}
	return models.ModeJSON
}

// ShouldUseColor determines if colored output should be used
func ShouldUseColor(cmd *cobra.Command) bool {
	cfg := ConfigFromCommand(cmd)
	if cfg.CLI.NoColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	if !isTerminal(os.Stdout) || isRunningInCI() {
		return false
	}
	return !dumbTerminal()
}
