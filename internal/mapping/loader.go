package mapping

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile loads and parses a YAML query mapping file from the given path.
func LoadFile(path string) (*QueryConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping file %s: %w", path, err)
	}

	return Parse(data)
}

// Parse parses YAML data into a QueryConfig.
func Parse(data []byte) (*QueryConfig, error) {
	var cfg QueryConfig

	err := yaml.Unmarshal(data, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse mapping YAML: %w", err)
	}

	// Apply defaults and normalize
	applyDefaults(&cfg)

	return &cfg, nil
}

// applyDefaults fills in default values for optional fields.
func applyDefaults(cfg *QueryConfig) {
	if cfg.Version == "" {
		cfg.Version = "1"
	}

	for i := range cfg.Schema {
		normalizeField(&cfg.Schema[i])
	}
}

// normalizeField defaults missing types: a field with children is a tuple, an
// untyped leaf is any. A bare elem shorthand ("elem: chararray") names a type.
func normalizeField(f *SchemaField) {
	if f.Type == "" {
		switch {
		case len(f.Fields) > 0:
			f.Type = TypeTuple
		case f.Elem != nil:
			f.Type = TypeBag
		default:
			f.Type = TypeAny
		}
	}

	for i := range f.Fields {
		normalizeField(&f.Fields[i])
	}

	if f.Elem == nil {
		return
	}

	if f.Elem.Type == "" && f.Elem.Name != "" && len(f.Elem.Fields) == 0 {
		f.Elem.Type, f.Elem.Name = f.Elem.Name, ""
	}

	normalizeField(f.Elem)
}

// Marshal serializes a QueryConfig to YAML.
func Marshal(cfg *QueryConfig) ([]byte, error) {
	return yaml.Marshal(cfg)
}

// WriteFile writes a QueryConfig to the given path.
func WriteFile(cfg *QueryConfig, path string) error {
	data, err := Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal mapping: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write mapping file %s: %w", path, err)
	}

	return nil
}
