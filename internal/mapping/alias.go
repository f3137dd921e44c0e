package mapping

import (
	"fmt"
	"strings"

	"search-mapper/internal/match"
)

// Alias is one configured (record field name, source path expression) pair.
type Alias struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

// AliasTable maps record field names to document paths and back.
// It is built once per query and never modified afterwards.
type AliasTable struct {
	byName   map[string]FieldPath
	byPath   map[string]string
	names    []string
	identity bool
}

// AliasOption configures NewAliasTable.
type AliasOption func(*AliasTable)

// WithIdentity enables or disables the identity fallback: an unaliased record
// name resolves to the path spelled by the name itself. Enabled by default.
func WithIdentity(enabled bool) AliasOption {
	return func(t *AliasTable) {
		t.identity = enabled
	}
}

// NewAliasTable builds a table from alias entries. Two entries with the same
// record name, with equal paths, or with nested paths for independent record
// fields are an *AliasConflictError. Nested paths are allowed when the record
// names nest the same way ("author" and "author.first").
func NewAliasTable(entries []Alias, opts ...AliasOption) (*AliasTable, error) {
	t := &AliasTable{
		byName:   make(map[string]FieldPath, len(entries)),
		byPath:   make(map[string]string, len(entries)),
		names:    make([]string, 0, len(entries)),
		identity: true,
	}

	for _, opt := range opts {
		opt(t)
	}

	for _, e := range entries {
		if e.Name == "" {
			return nil, fmt.Errorf("alias for path %q has no record field name", e.Path)
		}

		if _, dup := t.byName[e.Name]; dup {
			return nil, &AliasConflictError{
				Name: e.Name, Other: e.Name, Path: t.byName[e.Name].String(), OtherPath: e.Path,
			}
		}

		path, err := ParsePath(e.Path)
		if err != nil {
			return nil, fmt.Errorf("alias %q: %w", e.Name, err)
		}

		for _, name := range t.names {
			if existing := t.byName[name]; conflicting(name, existing, e.Name, path) {
				return nil, &AliasConflictError{
					Name: name, Other: e.Name, Path: existing.String(), OtherPath: path.String(),
				}
			}
		}

		t.byName[e.Name] = path
		t.byPath[path.String()] = e.Name
		t.names = append(t.names, e.Name)
	}

	return t, nil
}

func conflicting(name string, path FieldPath, other string, otherPath FieldPath) bool {
	if path.Equal(otherPath) {
		return true
	}

	if !path.Overlaps(otherPath) {
		return false
	}

	return !strings.HasPrefix(other, name+".") && !strings.HasPrefix(name, other+".")
}

// Resolve returns the document path of a record field name.
func (t *AliasTable) Resolve(name string) (FieldPath, error) {
	if path, ok := t.byName[name]; ok {
		return path, nil
	}

	if t.identity {
		if path, err := ParsePath(name); err == nil {
			return path, nil
		}
	}

	return FieldPath{}, &UnknownFieldError{Name: name, Suggestions: match.Suggest(name, t.names, 3)}
}

// Lookup returns the aliased path of a name without the identity fallback.
func (t *AliasTable) Lookup(name string) (FieldPath, bool) {
	path, ok := t.byName[name]
	return path, ok
}

// NameOf returns the record field name aliased to exactly this path.
func (t *AliasTable) NameOf(path FieldPath) (string, bool) {
	name, ok := t.byPath[path.String()]
	return name, ok
}

// Names returns the aliased record field names in declaration order.
func (t *AliasTable) Names() []string {
	return append([]string(nil), t.names...)
}

// Len returns the number of aliases.
func (t *AliasTable) Len() int {
	return len(t.names)
}

// Identity reports whether the identity fallback is enabled.
func (t *AliasTable) Identity() bool {
	return t.identity
}

// AliasConflictError reports two aliases whose record names or document paths overlap.
type AliasConflictError struct {
	Name, Other     string
	Path, OtherPath string
}

func (e *AliasConflictError) Error() string {
	if e.Name == e.Other {
		return fmt.Sprintf("alias conflict: record field %q declared twice (%q, %q)", e.Name, e.Path, e.OtherPath)
	}

	return fmt.Sprintf("alias conflict: %q (%s) and %q (%s) address overlapping document paths",
		e.Name, e.Path, e.Other, e.OtherPath)
}

// UnknownFieldError reports a record field name with no alias and no identity path.
type UnknownFieldError struct {
	Name        string
	Suggestions []string
}

func (e *UnknownFieldError) Error() string {
	msg := fmt.Sprintf("unknown record field %q", e.Name)
	if len(e.Suggestions) > 0 {
		msg += " (did you mean " + strings.Join(e.Suggestions, ", ") + "?)"
	}

	return msg
}
