package mapping

import (
	"fmt"

	"search-mapper/internal/datefmt"
	"search-mapper/primitive"
)

// Schema node type names accepted in mapping files, besides the scalar names
// understood by primitive.ParseKind.
const (
	TypeTuple = "tuple"
	TypeBag   = "bag"
	TypeMap   = "map"
	TypeAny   = "any"
)

// QueryConfig is the root of a YAML query mapping file. It carries everything
// a query needs before the first document is read.
type QueryConfig struct {
	// Version of the mapping file format.
	Version string `yaml:"version,omitempty"`

	// Index is the index name or index-name template to read from.
	// Example: "logs-{@timestamp|yyyy.MM.dd}"
	Index string `yaml:"index,omitempty"`

	// Aliases rename document paths to record field names.
	// Either a list of {name, path} entries or a {name: path} map.
	Aliases AliasList `yaml:"aliases,omitempty"`

	// Identity enables resolving unaliased record names as document paths (default true).
	Identity *bool `yaml:"identity,omitempty"`

	// Schema is the explicit record schema. Empty means schema-on-read.
	Schema []SchemaField `yaml:"schema,omitempty"`

	// Fields narrows the record to the named top-level fields, in schema order.
	Fields StringOrArray `yaml:"fields,omitempty"`

	// Metadata lists the metadata kinds appended to each record, in output order.
	Metadata StringOrArray `yaml:"metadata,omitempty"`

	// ReadMetadata enables metadata retrieval (default true).
	ReadMetadata *bool `yaml:"read_metadata,omitempty"`

	// SourceFilter is the caller's explicit source restriction. Absent means none.
	SourceFilter StringOrArray `yaml:"source_filter,omitempty"`

	// MissingIndexAsEmpty turns an absent index into an empty result.
	MissingIndexAsEmpty bool `yaml:"missing_index_as_empty,omitempty"`

	// DateFormats are tried in order when a text value is decoded as a date.
	DateFormats StringOrArray `yaml:"date_formats,omitempty"`

	// Coercions lists the allowed scalar coercion categories (default all).
	Coercions StringOrArray `yaml:"coercions,omitempty"`
}

// SchemaField is one node of an explicit schema.
//
// In YAML a field is either a mapping {name, type, fields, elem} or the
// shorthand string "name:type" ("name" alone means type any).
type SchemaField struct {
	Name   string        `yaml:"name,omitempty"`
	Type   string        `yaml:"type,omitempty"`
	Fields []SchemaField `yaml:"fields,omitempty"`
	Elem   *SchemaField  `yaml:"elem,omitempty"`
}

// IdentityEnabled reports the identity fallback setting.
func (c *QueryConfig) IdentityEnabled() bool {
	return c.Identity == nil || *c.Identity
}

// ReadMetadataEnabled reports whether metadata retrieval is on.
func (c *QueryConfig) ReadMetadataEnabled() bool {
	return c.ReadMetadata == nil || *c.ReadMetadata
}

// HasSourceFilter reports whether a source filter was given, even an empty one.
func (c *QueryConfig) HasSourceFilter() bool {
	return c.SourceFilter != nil
}

// AliasTable builds the alias table of the configuration.
func (c *QueryConfig) AliasTable() (*AliasTable, error) {
	return NewAliasTable(c.Aliases, WithIdentity(c.IdentityEnabled()))
}

// MetadataKinds returns the requested metadata kinds, or none when metadata
// retrieval is disabled.
func (c *QueryConfig) MetadataKinds() ([]MetadataKind, error) {
	if !c.ReadMetadataEnabled() {
		return nil, nil
	}

	return ParseMetadataKinds(c.Metadata)
}

// SourceFilterPaths parses the source filter; nil when none was given.
func (c *QueryConfig) SourceFilterPaths() ([]FieldPath, error) {
	if !c.HasSourceFilter() {
		return nil, nil
	}

	paths, err := ParsePaths(c.SourceFilter)
	if err != nil {
		return nil, fmt.Errorf("source_filter: %w", err)
	}

	return paths, nil
}

// DateFormatList compiles the configured date formats.
func (c *QueryConfig) DateFormatList() (datefmt.List, error) {
	if len(c.DateFormats) == 0 {
		return datefmt.Default(), nil
	}

	return datefmt.CompileList(c.DateFormats)
}

// CoercionSet returns the allowed coercion categories.
func (c *QueryConfig) CoercionSet() (primitive.CategoryEnum, error) {
	return primitive.ParseCategories(c.Coercions)
}

// IsComposite reports whether the field type is tuple, bag or map.
func (f *SchemaField) IsComposite() bool {
	switch f.Type {
	case TypeTuple, TypeBag, TypeMap:
		return true
	default:
		return false
	}
}
