package cli

import (
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/compozy/iconpipe/cli/helpers"
	"github.com/compozy/iconpipe/pkg/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// configCmd creates the config command group
func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management commands",
	}
	cmd.AddCommand(
		configShowCmd(),
		configValidateCmd(),
	)
	return cmd
}

func configShowCmd() *cobra.Command {
	var (
		format      string
		showSources bool
	)
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display the effective configuration",
		Long: "Display the configuration after defaults, the YAML file, CLI flags and " +
			"environment variables have been merged.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			manager := config.ManagerFromContext(cmd.Context())
			cfg := helpers.ConfigFromCommand(cmd)
			sources := collectSources(manager.Service, cfg)
			return formatConfigOutput(cmd.OutOrStdout(), cfg, sources, format, showSources, helpers.ShouldUseColor(cmd))
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", string(helpers.OutputFormatTable), "Output format (json, yaml, table)")
	cmd.Flags().BoolVarP(&showSources, "sources", "s", false, "Show configuration sources")
	addConfigFlags(cmd.Flags(), "acquire", "export", "raster")
	return cmd
}

func configValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			manager := config.ManagerFromContext(cmd.Context())
			if err := manager.Service.Validate(helpers.ConfigFromCommand(cmd)); err != nil {
				return err
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "Configuration is valid")
			return err
		},
	}
	addConfigFlags(cmd.Flags(), "acquire", "export", "raster")
	return cmd
}

// formatConfigOutput formats and outputs configuration based on requested format
func formatConfigOutput(
	out io.Writer,
	cfg *config.Config,
	sources map[string]config.SourceType,
	format string,
	showSources bool,
	color bool,
) error {
	switch helpers.OutputFormat(format) {
	case helpers.OutputFormatJSON:
		return helpers.WriteJSON(out, configDocument(cfg, sources, showSources), color)
	case helpers.OutputFormatYAML:
		encoder := yaml.NewEncoder(out)
		encoder.SetIndent(2)
		if err := encoder.Encode(configDocument(cfg, sources, showSources)); err != nil {
			return err
		}
		return encoder.Close()
	case helpers.OutputFormatTable:
		return outputTable(out, cfg, sources, showSources)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// configDocument nests flattened values back by section so JSON and YAML
// use the koanf key names.
func configDocument(cfg *config.Config, sources map[string]config.SourceType, showSources bool) map[string]any {
	doc := make(map[string]any)
	nested := make(map[string]any)
	walkConfig("", reflect.ValueOf(cfg).Elem(), func(key string, v reflect.Value) {
		section, field, _ := strings.Cut(key, ".")
		m, ok := nested[section].(map[string]any)
		if !ok {
			m = make(map[string]any)
			nested[section] = m
		}
		if d, ok := v.Interface().(time.Duration); ok {
			m[field] = d.String()
			return
		}
		m[field] = v.Interface()
	})
	doc["config"] = nested
	if showSources {
		doc["sources"] = sources
	}
	return doc
}

// outputTable outputs configuration as a table
func outputTable(out io.Writer, cfg *config.Config, sources map[string]config.SourceType, showSources bool) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	flat := flattenConfig(cfg)
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if showSources {
		fmt.Fprintln(w, "KEY\tVALUE\tSOURCE")
		fmt.Fprintln(w, "---\t-----\t------")
	} else {
		fmt.Fprintln(w, "KEY\tVALUE")
		fmt.Fprintln(w, "---\t-----")
	}
	for _, key := range keys {
		if showSources {
			source := sources[key]
			if source == "" {
				source = config.SourceDefault
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", key, flat[key], source)
		} else {
			fmt.Fprintf(w, "%s\t%s\n", key, flat[key])
		}
	}
	return w.Flush()
}

// flattenConfig converts nested config to a flat key-value map
func flattenConfig(cfg *config.Config) map[string]string {
	result := make(map[string]string)
	walkConfig("", reflect.ValueOf(cfg).Elem(), func(key string, v reflect.Value) {
		result[key] = formatValue(v)
	})
	return result
}

// collectSources asks the service which source provided each leaf key.
func collectSources(service config.Service, cfg *config.Config) map[string]config.SourceType {
	sources := make(map[string]config.SourceType)
	walkConfig("", reflect.ValueOf(cfg).Elem(), func(key string, _ reflect.Value) {
		sources[key] = service.GetSource(key)
	})
	return sources
}

// walkConfig calls fn for every leaf field tagged with koanf.
func walkConfig(prefix string, val reflect.Value, fn func(key string, v reflect.Value)) {
	typ := val.Type()
	for i := 0; i < val.NumField(); i++ {
		field := typ.Field(i)
		tag := field.Tag.Get("koanf")
		if !field.IsExported() || tag == "" || tag == "-" {
			continue
		}
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}
		fieldVal := val.Field(i)
		if fieldVal.Kind() == reflect.Struct && field.Type != reflect.TypeOf(time.Duration(0)) {
			walkConfig(key, fieldVal, fn)
			continue
		}
		fn(key, fieldVal)
	}
}

func formatValue(v reflect.Value) string {
	if v.Kind() == reflect.Slice {
		parts := make([]string, v.Len())
		for i := range parts {
			parts[i] = fmt.Sprint(v.Index(i).Interface())
		}
		return strings.Join(parts, ",")
	}
	return fmt.Sprint(v.Interface())
}
