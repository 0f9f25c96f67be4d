package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/compozy/iconpipe/pkg/config/definition"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var durationType = reflect.TypeOf(time.Duration(0))

// matchesSelector reports whether path equals one of selectors or sits below one.
func matchesSelector(path string, selectors []string) bool {
	for _, s := range selectors {
		if path == s || strings.HasPrefix(path, s+".") {
			return true
		}
	}
	return false
}

// addConfigFlags registers a flag for every registry field under selectors
// that declares a CLI flag name.
func addConfigFlags(flags *pflag.FlagSet, selectors ...string) {
	for _, field := range definition.CreateRegistry().Fields() {
		if field.CLIFlag == "" || !matchesSelector(field.Path, selectors) {
			continue
		}
		if flags.Lookup(field.CLIFlag) != nil {
			continue
		}
		addFlag(flags, &field)
	}
}

func addFlag(flags *pflag.FlagSet, field *definition.FieldDef) {
	name, short, help := field.CLIFlag, field.Shorthand, field.Help
	switch def := field.Default.(type) {
	case string:
		flags.StringP(name, short, def, help)
	case bool:
		flags.BoolP(name, short, def, help)
	case int:
		flags.IntP(name, short, def, help)
	case time.Duration:
		flags.DurationP(name, short, def, help)
	case []string:
		flags.StringSliceP(name, short, def, help)
	case []int:
		flags.IntSliceP(name, short, def, help)
	default:
		panic(fmt.Sprintf("unsupported flag type %T for %s", field.Default, field.Path))
	}
}

// extractCLIFlags collects the registry-backed flags the user explicitly
// changed, keyed by flag name.
func extractCLIFlags(cmd *cobra.Command) map[string]any {
	flags := make(map[string]any)
	fs := cmd.Flags()
	for _, field := range definition.CreateRegistry().Fields() {
		if field.CLIFlag == "" || !fs.Changed(field.CLIFlag) {
			continue
		}
		if value, err := flagValue(fs, field.CLIFlag, field.Type); err == nil {
			flags[field.CLIFlag] = value
		}
	}
	return flags
}

func flagValue(fs *pflag.FlagSet, name string, typ reflect.Type) (any, error) {
	if typ == durationType {
		return fs.GetDuration(name)
	}
	switch typ.Kind() {
	case reflect.String:
		return fs.GetString(name)
	case reflect.Bool:
		return fs.GetBool(name)
	case reflect.Int:
		return fs.GetInt(name)
	case reflect.Slice:
		if typ.Elem().Kind() == reflect.Int {
			return fs.GetIntSlice(name)
		}
		return fs.GetStringSlice(name)
	default:
		return nil, fmt.Errorf("unsupported flag type %s", typ)
	}
}

// loadEnvFile loads environment variables from a file with security validation
func loadEnvFile(cmd *cobra.Command) (string, error) {
	envFile, err := cmd.Flags().GetString("env-file")
	if err != nil {
		return "", fmt.Errorf("failed to get env-file flag: %w", err)
	}
	if envFile == "" {
		return "", nil
	}
	pwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current working directory: %w", err)
	}
	if !filepath.IsAbs(envFile) {
		envFile = filepath.Join(pwd, envFile)
	}
	absPath, err := filepath.Abs(filepath.Clean(envFile))
	if err != nil {
		return "", fmt.Errorf("failed to resolve env file path: %w", err)
	}
	if !isPathWithinDirectory(absPath, pwd) {
		return "", fmt.Errorf("env file path '%s' is outside the project directory", envFile)
	}
	fileInfo, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return absPath, nil
		}
		return "", fmt.Errorf("failed to stat env file: %w", err)
	}
	if !fileInfo.Mode().IsRegular() {
		return "", fmt.Errorf("env file path '%s' is not a regular file", envFile)
	}
	if err := godotenv.Load(absPath); err != nil {
		return "", fmt.Errorf("failed to load env file %s: %w", absPath, err)
	}
	return absPath, nil
}

// isPathWithinDirectory checks if a given path is within the specified directory
func isPathWithinDirectory(path, dir string) bool {
	absPath, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return false
	}
	absDir, err := filepath.Abs(filepath.Clean(dir))
	if err != nil {
		return false
	}
	if !strings.HasSuffix(absDir, string(filepath.Separator)) {
		absDir += string(filepath.Separator)
	}
	return strings.HasPrefix(absPath, absDir) || absPath == strings.TrimSuffix(absDir, string(filepath.Separator))
}
