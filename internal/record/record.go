// Package record assembles the records handed to the host: a decoded body
// shaped by the plan's schema followed by the requested hit metadata.
package record

import (
	"fmt"

	"search-mapper/internal/mapping"
	"search-mapper/internal/value"
)

// Metadata holds the non-body attributes of one hit. A kind the hit does not
// carry is absent from the map.
type Metadata map[mapping.MetadataKind]value.Value

// Get returns the value of kind when the hit carries a non-null one.
func (m Metadata) Get(kind mapping.MetadataKind) (value.Value, bool) {
	v, ok := m[kind]
	if !ok || v.IsNull() {
		return value.Null(), false
	}

	return v, true
}

// Record is one mapped hit.
type Record struct {
	// Value is a tuple: body fields first, then metadata fields.
	Value value.Value
	// Anomalies are the non-fatal problems met while reading this hit.
	Anomalies []error
}

// OK reports whether the hit mapped without anomalies.
func (r Record) OK() bool {
	return len(r.Anomalies) == 0
}

// MetadataUnavailableError is recorded when a requested metadata kind is
// missing on a hit; the field is emitted as null.
type MetadataUnavailableError struct {
	Kind mapping.MetadataKind
}

func (e *MetadataUnavailableError) Error() string {
	return fmt.Sprintf("metadata %s is not available on this hit", e.Kind.FieldName())
}
