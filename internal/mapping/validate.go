package mapping

import (
	"fmt"

	"search-mapper/internal/datefmt"
	"search-mapper/internal/diagnostic"
	"search-mapper/internal/match"
	"search-mapper/primitive"
)

// Diagnostic scopes, one per configuration section.
const (
	ScopeAliases      = "aliases"
	ScopeSchema       = "schema"
	ScopeFields       = "fields"
	ScopeMetadata     = "metadata"
	ScopeSourceFilter = "source_filter"
	ScopeDateFormats  = "date_formats"
	ScopeCoercions    = "coercions"
)

// Validate checks a query configuration structurally: every section must parse
// and every name must be unique where uniqueness matters. It reports all
// problems at once instead of stopping at the first.
func Validate(cfg *QueryConfig) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}
	if cfg == nil {
		res.AddError("config_is_nil", "query config is nil", "", "")
		return res
	}

	validateAliases(res, cfg.Aliases)

	seen := map[string]struct{}{}
	for i := range cfg.Schema {
		validateSchemaField(res, "", &cfg.Schema[i], seen)
	}

	validateFields(res, cfg)
	validateMetadata(res, cfg)

	for _, f := range cfg.SourceFilter {
		if _, err := ParsePath(f); err != nil {
			res.AddError("invalid_source_filter", err.Error(), ScopeSourceFilter, f)
		}
	}

	for _, spec := range cfg.DateFormats {
		if _, err := datefmt.Compile(spec); err != nil {
			res.AddError("invalid_date_format", err.Error(), ScopeDateFormats, spec)
		}
	}

	for _, name := range cfg.Coercions {
		if _, err := primitive.ParseCategory(name); err != nil {
			res.AddError("unknown_coercion", err.Error(), ScopeCoercions, name)
			res.AddSuggestion(match.Suggest(name, primitive.CategoryNames(), 1)...)
		}
	}

	return res
}

func validateAliases(res *diagnostic.Diagnostics, aliases AliasList) {
	names := map[string]struct{}{}
	paths := make([]FieldPath, 0, len(aliases))
	owners := make([]string, 0, len(aliases))

	for _, a := range aliases {
		if a.Name == "" {
			res.AddError("alias_without_name", fmt.Sprintf("alias for %q has no name", a.Path), ScopeAliases, a.Path)
			continue
		}

		if _, dup := names[a.Name]; dup {
			res.AddError("duplicate_alias", fmt.Sprintf("record field %q aliased twice", a.Name), ScopeAliases, a.Name)
			continue
		}

		names[a.Name] = struct{}{}

		path, err := ParsePath(a.Path)
		if err != nil {
			res.AddError("invalid_alias_path", err.Error(), ScopeAliases, a.Name)
			continue
		}

		for i, other := range paths {
			if conflicting(owners[i], other, a.Name, path) {
				res.AddError("overlapping_alias",
					fmt.Sprintf("%q overlaps %q (%s)", path, owners[i], other), ScopeAliases, a.Name)
			}
		}

		paths = append(paths, path)
		owners = append(owners, a.Name)
	}
}

func validateSchemaField(res *diagnostic.Diagnostics, parent string, f *SchemaField, siblings map[string]struct{}) {
	qualified := f.Name
	if parent != "" {
		qualified = parent + "." + f.Name
	}

	if siblings != nil {
		if f.Name == "" {
			res.AddError("field_without_name", "schema field has no name", ScopeSchema, parent)
		} else if _, dup := siblings[f.Name]; dup {
			res.AddError("duplicate_field", fmt.Sprintf("field %q declared twice", f.Name), ScopeSchema, qualified)
		} else {
			siblings[f.Name] = struct{}{}
		}
	}

	switch f.Type {
	case TypeTuple:
		children := map[string]struct{}{}
		for i := range f.Fields {
			validateSchemaField(res, qualified, &f.Fields[i], children)
		}
	case TypeBag, TypeMap:
		if len(f.Fields) > 0 {
			res.AddError("fields_on_collection",
				fmt.Sprintf("%s field declares fields, use elem", f.Type), ScopeSchema, qualified)
		}

		if f.Elem != nil {
			// element names carry no meaning, only their shape
			validateSchemaField(res, qualified+"[]", f.Elem, nil)
		}
	case TypeAny:
	default:
		if _, ok := primitive.ParseKind(f.Type); !ok {
			res.AddError("unknown_type", fmt.Sprintf("unknown type %q", f.Type), ScopeSchema, qualified)
			return
		}

		if len(f.Fields) > 0 || f.Elem != nil {
			res.AddWarning("scalar_with_children",
				fmt.Sprintf("scalar %s field ignores its fields/elem", f.Type), ScopeSchema, qualified)
		}
	}
}

func validateFields(res *diagnostic.Diagnostics, cfg *QueryConfig) {
	if len(cfg.Schema) == 0 {
		return
	}

	declared := make([]string, 0, len(cfg.Schema))
	for _, f := range cfg.Schema {
		declared = append(declared, f.Name)
	}

	seen := map[string]struct{}{}

	for _, name := range cfg.Fields {
		if _, dup := seen[name]; dup {
			res.AddWarning("duplicate_selected_field", fmt.Sprintf("field %q selected twice", name), ScopeFields, name)
			continue
		}

		seen[name] = struct{}{}

		found := false

		for _, d := range declared {
			if d == name {
				found = true
				break
			}
		}

		if !found {
			res.AddError("unknown_selected_field", fmt.Sprintf("field %q is not in the schema", name), ScopeFields, name)
			res.AddSuggestion(match.Suggest(name, declared, 3)...)
		}
	}
}

func validateMetadata(res *diagnostic.Diagnostics, cfg *QueryConfig) {
	seen := map[MetadataKind]struct{}{}

	for _, name := range cfg.Metadata {
		k, err := ParseMetadataKind(name)
		if err != nil {
			res.AddError("unknown_metadata_kind", err.Error(), ScopeMetadata, name)

			known := make([]string, len(AllMetadataKinds))
			for i, k := range AllMetadataKinds {
				known[i] = k.String()
			}

			res.AddSuggestion(match.Suggest(name, known, 1)...)

			continue
		}

		if _, dup := seen[k]; dup {
			res.AddError("duplicate_metadata_kind", fmt.Sprintf("metadata kind %q requested twice", k), ScopeMetadata, name)
		}

		seen[k] = struct{}{}
	}

	if len(cfg.Metadata) > 0 && !cfg.ReadMetadataEnabled() {
		res.AddWarning("metadata_disabled", "metadata kinds are ignored while read_metadata is false", ScopeMetadata, "")
	}
}
