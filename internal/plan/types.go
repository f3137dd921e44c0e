package plan

import (
	"fmt"
	"strings"

	"search-mapper/internal/mapping"
	"search-mapper/internal/schema"
)

// ProjectionPlan is the immutable outcome of planning.
type ProjectionPlan struct {
	// Schema is the resolved record schema the plan was built from.
	Schema *schema.Node
	// Metadata lists the metadata kinds appended to records, in order.
	Metadata []mapping.MetadataKind
	// Required are the document paths the schema reads, in schema order.
	// Empty for a superset plan.
	Required []mapping.FieldPath
	// Dynamic are the paths of the schema's any nodes.
	Dynamic []mapping.FieldPath
	// Exact is false for a superset plan.
	Exact bool
	// UserFilter is the caller's source filter, nil when none was given.
	UserFilter []mapping.FieldPath
	// Filter is the source restriction to send to the store, nil for none.
	Filter []mapping.FieldPath
}

// Superset reports whether the plan needs unrestricted documents.
func (p *ProjectionPlan) Superset() bool {
	return !p.Exact
}

// Includes renders Filter in path expression form, nil when unrestricted.
func (p *ProjectionPlan) Includes() []string {
	return pathStrings(p.Filter)
}

// HasMetadata reports whether the kind was requested.
func (p *ProjectionPlan) HasMetadata(kind mapping.MetadataKind) bool {
	for _, k := range p.Metadata {
		if k == kind {
			return true
		}
	}

	return false
}

// ProjectionConflictError reports a caller source filter that would drop data
// the schema needs. Requested is the caller's filter. Conflicting holds the
// required paths the filter misses, or the dynamic paths of a superset plan.
type ProjectionConflictError struct {
	Requested   []mapping.FieldPath
	Conflicting []mapping.FieldPath
	// Fields are the record field names behind Conflicting.
	Fields   []string
	Superset bool
}

func (e *ProjectionConflictError) Error() string {
	if e.Superset {
		return fmt.Sprintf("projection conflict: schema reads dynamic fields at [%s], source filter [%s] cannot be applied",
			strings.Join(pathStrings(e.Conflicting), ", "), strings.Join(pathStrings(e.Requested), ", "))
	}

	return fmt.Sprintf("projection conflict: source filter [%s] excludes required fields [%s]",
		strings.Join(pathStrings(e.Requested), ", "), strings.Join(e.Fields, ", "))
}

func pathStrings(paths []mapping.FieldPath) []string {
	if paths == nil {
		return nil
	}

	out := make([]string, len(paths))
	for i, p := range paths {
		if p.IsRoot() {
			out[i] = mapping.Wildcard
			continue
		}

		out[i] = p.String()
	}

	return out
}
