package definition

import (
	"reflect"
	"time"
)

var (
	stringType      = reflect.TypeOf("")
	boolType        = reflect.TypeOf(false)
	intType         = reflect.TypeOf(0)
	durationType    = reflect.TypeOf(time.Duration(0))
	stringSliceType = reflect.TypeOf([]string{})
	intSliceType    = reflect.TypeOf([]int{})
)

// CreateRegistry creates and populates the configuration registry
func CreateRegistry() *Registry {
	registry := NewRegistry()
	registerAcquireFields(registry)
	registerExportFields(registry)
	registerRasterFields(registry)
	registerRuntimeFields(registry)
	registerCLIFields(registry)
	return registry
}

func registerAcquireFields(registry *Registry) {
	registry.Register(&FieldDef{
		Path:    "acquire.package",
		Default: "@iconify/json",
		CLIFlag: "package",
		EnvVar:  "ICONPIPE_PACKAGE",
		Type:    stringType,
		Help:    "npm package bundling the icon sets",
	})
	registry.Register(&FieldDef{
		Path:    "acquire.cache_dir",
		Default: "cache",
		CLIFlag: "cache-dir",
		EnvVar:  "ICONPIPE_CACHE_DIR",
		Type:    stringType,
		Help:    "Directory holding the unpacked package; reused when present",
	})
	registry.Register(&FieldDef{
		Path:    "acquire.registry_url",
		Default: "https://registry.npmjs.org",
		CLIFlag: "registry-url",
		EnvVar:  "ICONPIPE_REGISTRY_URL",
		Type:    stringType,
		Help:    "npm registry used to download the package",
	})
	registry.Register(&FieldDef{
		Path:    "acquire.version",
		Default: "",
		CLIFlag: "package-version",
		EnvVar:  "ICONPIPE_PACKAGE_VERSION",
		Type:    stringType,
		Help:    "Semver constraint for the package version (empty selects latest)",
	})
	registry.Register(&FieldDef{
		Path:    "acquire.timeout",
		Default: 5 * time.Minute,
		EnvVar:  "ICONPIPE_ACQUIRE_TIMEOUT",
		Type:    durationType,
		Help:    "Timeout of each registry request",
	})
	registry.Register(&FieldDef{
		Path:    "acquire.max_retries",
		Default: 3,
		EnvVar:  "ICONPIPE_ACQUIRE_MAX_RETRIES",
		Type:    intType,
		Help:    "Retries for transient registry failures",
	})
}

func registerExportFields(registry *Registry) {
	registry.Register(&FieldDef{
		Path:    "export.svg_dir",
		Default: "svg",
		CLIFlag: "svg-dir",
		EnvVar:  "ICONPIPE_SVG_DIR",
		Type:    stringType,
		Help:    "Root of the vector output tree",
	})
	registry.Register(&FieldDef{
		Path:    "export.include",
		Default: []string{},
		CLIFlag: "include",
		EnvVar:  "ICONPIPE_INCLUDE",
		Type:    stringSliceType,
		Help:    "Glob patterns selecting icon set prefixes (default all)",
	})
	registry.Register(&FieldDef{
		Path:    "export.color",
		Default: "#fcfcfc",
		CLIFlag: "color",
		EnvVar:  "ICONPIPE_COLOR",
		Type:    stringType,
		Help:    "Canonical foreground color of exported icons",
	})
	registry.Register(&FieldDef{
		Path:    "export.fill_missing",
		Default: true,
		EnvVar:  "ICONPIPE_FILL_MISSING",
		Type:    boolType,
		Help:    "Fill shapes without an explicit fill with the canonical color",
	})
	registry.Register(&FieldDef{
		Path:    "export.include_aliases",
		Default: false,
		CLIFlag: "include-aliases",
		EnvVar:  "ICONPIPE_INCLUDE_ALIASES",
		Type:    boolType,
		Help:    "Also write aliases and variations of exported icons",
	})
	registry.Register(&FieldDef{
		Path:    "export.concurrency",
		Default: 1,
		EnvVar:  "ICONPIPE_EXPORT_CONCURRENCY",
		Type:    intType,
		Help:    "Icon sets processed in parallel",
	})
}

func registerRasterFields(registry *Registry) {
	registry.Register(&FieldDef{
		Path:    "raster.png_dir",
		Default: "png",
		CLIFlag: "png-dir",
		EnvVar:  "ICONPIPE_PNG_DIR",
		Type:    stringType,
		Help:    "Root of the raster output tree",
	})
	registry.Register(&FieldDef{
		Path:    "raster.sizes",
		Default: []int{24, 48, 64, 128},
		CLIFlag: "sizes",
		EnvVar:  "ICONPIPE_SIZES",
		Type:    intSliceType,
		Help:    "Output widths in pixels, ascending",
	})
	registry.Register(&FieldDef{
		Path:    "raster.supersample",
		Default: 1,
		EnvVar:  "ICONPIPE_SUPERSAMPLE",
		Type:    intType,
		Help:    "Render at N times the target size and downscale (1-4)",
	})
	registry.Register(&FieldDef{
		Path:    "raster.strict",
		Default: false,
		EnvVar:  "ICONPIPE_STRICT",
		Type:    boolType,
		Help:    "Fail on SVG features the renderer does not support",
	})
	registry.Register(&FieldDef{
		Path:    "raster.concurrency",
		Default: 1,
		EnvVar:  "ICONPIPE_RASTER_CONCURRENCY",
		Type:    intType,
		Help:    "Files rasterized in parallel",
	})
}

func registerRuntimeFields(registry *Registry) {
	registry.Register(&FieldDef{
		Path:    "runtime.log_level",
		Default: "info",
		CLIFlag: "log-level",
		EnvVar:  "ICONPIPE_LOG_LEVEL",
		Type:    stringType,
		Help:    "Log level (debug, info, warn, error)",
	})
	registry.Register(&FieldDef{
		Path:    "runtime.log_json",
		Default: false,
		CLIFlag: "log-json",
		EnvVar:  "ICONPIPE_LOG_JSON",
		Type:    boolType,
		Help:    "Output logs in JSON format",
	})
	registry.Register(&FieldDef{
		Path:    "runtime.log_source",
		Default: false,
		CLIFlag: "log-source",
		EnvVar:  "ICONPIPE_LOG_SOURCE",
		Type:    boolType,
		Help:    "Include source code location in logs",
	})
}

func registerCLIFields(registry *Registry) {
	registry.Register(&FieldDef{
		Path:    "cli.interactive",
		Default: false,
		CLIFlag: "interactive",
		EnvVar:  "ICONPIPE_INTERACTIVE",
		Type:    boolType,
		Help:    "Force the interactive provider picker",
	})
	registry.Register(&FieldDef{
		Path:    "cli.no_color",
		Default: false,
		CLIFlag: "no-color",
		EnvVar:  "NO_COLOR",
		Type:    boolType,
		Help:    "Disable colored output",
	})
}
