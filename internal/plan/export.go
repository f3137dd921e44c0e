package plan

import (
	"gopkg.in/yaml.v3"

	"search-mapper/internal/mapping"
)

// Document is the reviewable YAML form of a projection plan.
type Document struct {
	Mode     string                `yaml:"mode"`
	Schema   []mapping.SchemaField `yaml:"schema,omitempty"`
	Dynamic  []string              `yaml:"dynamic,omitempty"`
	Required []string              `yaml:"required,omitempty"`
	Filter   []string              `yaml:"source_filter,omitempty"`
	Metadata []string              `yaml:"metadata,omitempty"`

	// Unrestricted marks a plan that sends no source filter at all.
	Unrestricted bool `yaml:"unrestricted,omitempty"`
}

const (
	ModeExact    = "exact"
	ModeSuperset = "superset"
)

// Export converts a plan into its YAML document form.
func Export(p *ProjectionPlan) *Document {
	doc := &Document{
		Mode:     ModeExact,
		Dynamic:  pathStrings(p.Dynamic),
		Required: pathStrings(p.Required),
		Filter:   p.Includes(),
	}

	doc.Unrestricted = p.Filter == nil

	if p.Superset() {
		doc.Mode = ModeSuperset
	}

	if p.Schema != nil {
		for _, c := range p.Schema.Children {
			doc.Schema = append(doc.Schema, c.ToField())
		}
	}

	for _, k := range p.Metadata {
		doc.Metadata = append(doc.Metadata, k.FieldName())
	}

	return doc
}

// ExportYAML renders the plan as YAML.
func ExportYAML(p *ProjectionPlan) ([]byte, error) {
	return yaml.Marshal(Export(p))
}
