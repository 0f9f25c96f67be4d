package config

import (
	"context"
	"time"

	"github.com/compozy/iconpipe/pkg/config/definition"
)

// Config represents the complete configuration of an iconpipe run.
type Config struct {
	Acquire AcquireConfig `koanf:"acquire" validate:"required"`
	Export  ExportConfig  `koanf:"export"  validate:"required"`
	Raster  RasterConfig  `koanf:"raster"  validate:"required"`
	Runtime RuntimeConfig `koanf:"runtime"`
	CLI     CLIConfig     `koanf:"cli"`
}

// AcquireConfig controls how the icon package is obtained.
type AcquireConfig struct {
	Package     string        `koanf:"package"      validate:"required"     env:"ICONPIPE_PACKAGE"`
	CacheDir    string        `koanf:"cache_dir"    validate:"required"     env:"ICONPIPE_CACHE_DIR"`
	RegistryURL string        `koanf:"registry_url" validate:"required,url" env:"ICONPIPE_REGISTRY_URL"`
	Version     string        `koanf:"version"      validate:"omitempty,semver_constraint" env:"ICONPIPE_PACKAGE_VERSION"`
	Timeout     time.Duration `koanf:"timeout"                              env:"ICONPIPE_ACQUIRE_TIMEOUT"`
	MaxRetries  int           `koanf:"max_retries"  validate:"min=0,max=10" env:"ICONPIPE_ACQUIRE_MAX_RETRIES"`
}

// ExportConfig controls the vector export stage.
type ExportConfig struct {
	SVGDir         string   `koanf:"svg_dir"         validate:"required"      env:"ICONPIPE_SVG_DIR"`
	Include        []string `koanf:"include"         validate:"dive,required" env:"ICONPIPE_INCLUDE"`
	Color          string   `koanf:"color"           validate:"css_color"     env:"ICONPIPE_COLOR"`
	FillMissing    bool     `koanf:"fill_missing"                             env:"ICONPIPE_FILL_MISSING"`
	IncludeAliases bool     `koanf:"include_aliases"                          env:"ICONPIPE_INCLUDE_ALIASES"`
	Concurrency    int      `koanf:"concurrency"     validate:"min=1"         env:"ICONPIPE_EXPORT_CONCURRENCY"`
}

// RasterConfig controls the raster fan-out stage. Vector files are read from
// export.svg_dir.
type RasterConfig struct {
	PNGDir      string `koanf:"png_dir"     validate:"required"                   env:"ICONPIPE_PNG_DIR"`
	Sizes       []int  `koanf:"sizes"       validate:"required,min=1,ascending"   env:"ICONPIPE_SIZES"`
	Supersample int    `koanf:"supersample" validate:"min=1,max=4"                env:"ICONPIPE_SUPERSAMPLE"`
	Strict      bool   `koanf:"strict"                                            env:"ICONPIPE_STRICT"`
	Concurrency int    `koanf:"concurrency" validate:"min=1"                      env:"ICONPIPE_RASTER_CONCURRENCY"`
}

// RuntimeConfig contains logging settings.
type RuntimeConfig struct {
	LogLevel  string `koanf:"log_level"  validate:"oneof=debug info warn error disabled" env:"ICONPIPE_LOG_LEVEL"`
	LogJSON   bool   `koanf:"log_json"                                                   env:"ICONPIPE_LOG_JSON"`
	LogSource bool   `koanf:"log_source"                                                 env:"ICONPIPE_LOG_SOURCE"`
}

// CLIConfig contains CLI-specific configuration.
type CLIConfig struct {
	Interactive bool `koanf:"interactive" env:"ICONPIPE_INTERACTIVE"`
	NoColor     bool `koanf:"no_color"    env:"NO_COLOR"`
}

// Service defines the configuration management service interface.
type Service interface {
	// Load loads configuration from the specified sources with precedence order.
	Load(ctx context.Context, sources ...Source) (*Config, error)
	// Validate checks if the configuration meets all validation requirements.
	Validate(config *Config) error
	// GetSource returns the source type that provided a configuration key.
	GetSource(key string) SourceType
}

// Source defines the interface for configuration sources.
type Source interface {
	// Load reads configuration from the source.
	Load() (map[string]any, error)
	// Type returns the source type identifier.
	Type() SourceType
}

// SourceType identifies the type of configuration source.
type SourceType string

const (
	SourceCLI     SourceType = "cli"
	SourceYAML    SourceType = "yaml"
	SourceEnv     SourceType = "env"
	SourceDefault SourceType = "default"
)

// Metadata contains metadata about configuration sources.
type Metadata struct {
	Sources  map[string]SourceType `json:"sources"`
	LoadedAt time.Time             `json:"loaded_at"`
}

// Default returns a Config populated from the field registry.
func Default() *Config {
	registry := definition.CreateRegistry()
	return &Config{
		Acquire: AcquireConfig{
			Package:     getString(registry, "acquire.package"),
			CacheDir:    getString(registry, "acquire.cache_dir"),
			RegistryURL: getString(registry, "acquire.registry_url"),
			Version:     getString(registry, "acquire.version"),
			Timeout:     getDuration(registry, "acquire.timeout"),
			MaxRetries:  getInt(registry, "acquire.max_retries"),
		},
		Export: ExportConfig{
			SVGDir:         getString(registry, "export.svg_dir"),
			Include:        getStringSlice(registry, "export.include"),
			Color:          getString(registry, "export.color"),
			FillMissing:    getBool(registry, "export.fill_missing"),
			IncludeAliases: getBool(registry, "export.include_aliases"),
			Concurrency:    getInt(registry, "export.concurrency"),
		},
		Raster: RasterConfig{
			PNGDir:      getString(registry, "raster.png_dir"),
			Sizes:       getIntSlice(registry, "raster.sizes"),
			Supersample: getInt(registry, "raster.supersample"),
			Strict:      getBool(registry, "raster.strict"),
			Concurrency: getInt(registry, "raster.concurrency"),
		},
		Runtime: RuntimeConfig{
			LogLevel:  getString(registry, "runtime.log_level"),
			LogJSON:   getBool(registry, "runtime.log_json"),
			LogSource: getBool(registry, "runtime.log_source"),
		},
		CLI: CLIConfig{
			Interactive: getBool(registry, "cli.interactive"),
			NoColor:     getBool(registry, "cli.no_color"),
		},
	}
}

// Helper functions for type-safe registry access
func getString(registry *definition.Registry, path string) string {
	if s, ok := registry.GetDefault(path).(string); ok {
		return s
	}
	return ""
}

func getInt(registry *definition.Registry, path string) int {
	if i, ok := registry.GetDefault(path).(int); ok {
		return i
	}
	return 0
}

func getBool(registry *definition.Registry, path string) bool {
	if b, ok := registry.GetDefault(path).(bool); ok {
		return b
	}
	return false
}

func getDuration(registry *definition.Registry, path string) time.Duration {
	if d, ok := registry.GetDefault(path).(time.Duration); ok {
		return d
	}
	return 0
}

func getStringSlice(registry *definition.Registry, path string) []string {
	if s, ok := registry.GetDefault(path).([]string); ok {
		return append([]string{}, s...)
	}
	return []string{}
}

func getIntSlice(registry *definition.Registry, path string) []int {
	if s, ok := registry.GetDefault(path).([]int); ok {
		return append([]int{}, s...)
	}
	return []int{}
}
