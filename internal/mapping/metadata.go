package mapping

import (
	"fmt"
	"strings"

	"search-mapper/internal/common"
)

// MetadataKind is a non-body attribute of a search hit that can be appended
// to a record.
type MetadataKind int

const (
	MetadataID MetadataKind = iota + 1
	MetadataScore
	MetadataRouting
	MetadataParent
	MetadataIndex
	MetadataVersion
)

// AllMetadataKinds lists every kind in canonical order.
var AllMetadataKinds = []MetadataKind{
	MetadataID, MetadataScore, MetadataRouting, MetadataParent, MetadataIndex, MetadataVersion,
}

func (k MetadataKind) String() string {
	switch k {
	case MetadataID:
		return "id"
	case MetadataScore:
		return "score"
	case MetadataRouting:
		return "routing"
	case MetadataParent:
		return "parent"
	case MetadataIndex:
		return "index"
	case MetadataVersion:
		return "version"
	default:
		return common.UnknownStr
	}
}

// FieldName is the record field name the kind is emitted under.
func (k MetadataKind) FieldName() string {
	return "_" + k.String()
}

// ParseMetadataKind accepts a kind name with or without the leading underscore.
func ParseMetadataKind(s string) (MetadataKind, error) {
	name := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "_")
	for _, k := range AllMetadataKinds {
		if k.String() == name {
			return k, nil
		}
	}

	return 0, fmt.Errorf("unknown metadata kind %q", s)
}

// ParseMetadataKinds parses names in order, rejecting duplicates.
func ParseMetadataKinds(names []string) ([]MetadataKind, error) {
	kinds := make([]MetadataKind, 0, len(names))
	seen := map[MetadataKind]struct{}{}

	for _, n := range names {
		k, err := ParseMetadataKind(n)
		if err != nil {
			return nil, err
		}

		if _, dup := seen[k]; dup {
			return nil, fmt.Errorf("metadata kind %q requested twice", k)
		}

		seen[k] = struct{}{}
		kinds = append(kinds, k)
	}

	return kinds, nil
}

// MarshalYAML writes the kind by name.
func (k MetadataKind) MarshalYAML() (any, error) {
	return k.String(), nil
}
