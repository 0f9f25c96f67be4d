package definition

import "reflect"

// FieldDef defines a configuration field with its metadata
type FieldDef struct {
	Path      string       // Config path like "raster.png_dir"
	Default   any          // Default value
	CLIFlag   string       // CLI flag name like "png-dir"
	Shorthand string       // Single character shorthand
	EnvVar    string       // Environment variable name like "ICONPIPE_PNG_DIR"
	Type      reflect.Type // Field type for flag registration
	Help      string       // Help text for CLI
}

// Registry holds all configuration field definitions in registration order
type Registry struct {
	order  []string
	fields map[string]FieldDef
}

// NewRegistry creates a new field registry
func NewRegistry() *Registry {
	return &Registry{
		fields: make(map[string]FieldDef),
	}
}

// Register adds a field definition to the registry
func (r *Registry) Register(field *FieldDef) {
	if _, exists := r.fields[field.Path]; !exists {
		r.order = append(r.order, field.Path)
	}
	r.fields[field.Path] = *field
}

// GetField returns a field definition by path
func (r *Registry) GetField(path string) (FieldDef, bool) {
	field, exists := r.fields[path]
	return field, exists
}

// GetDefault returns the default value for a field path
func (r *Registry) GetDefault(path string) any {
	if field, exists := r.fields[path]; exists {
		return field.Default
	}
	return nil
}

// Fields returns every field in registration order
func (r *Registry) Fields() []FieldDef {
	result := make([]FieldDef, 0, len(r.order))
	for _, path := range r.order {
		result = append(result, r.fields[path])
	}
	return result
}

// GetCLIFlagMapping returns a map of CLI flag names to config paths
func (r *Registry) GetCLIFlagMapping() map[string]string {
	mapping := make(map[string]string)
	for path, field := range r.fields {
		if field.CLIFlag != "" {
			mapping[field.CLIFlag] = path
		}
	}
	return mapping
}
