package mapping

import (
	"fmt"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"search-mapper/internal/common"
)

// StringOrArray is a list of strings that may be written as a single string in YAML.
type StringOrArray []string

// AliasList is an ordered list of aliases.
type AliasList []Alias

// --- StringOrArray YAML methods ---

// UnmarshalYAML accepts either a single string or an array of strings.
// A present but empty array stays non-nil so callers can tell it from absence.
func (s *StringOrArray) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var str string

		err := node.Decode(&str)
		if err != nil {
			return err
		}

		if str != "" {
			*s = StringOrArray{str}
		} else {
			*s = StringOrArray{}
		}

		return nil

	case yaml.SequenceNode:
		var arr []string

		err := node.Decode(&arr)
		if err != nil {
			return err
		}

		*s = append(StringOrArray{}, arr...)

		return nil

	default:
		return fmt.Errorf("line %d: expected string or array, got %v", node.Line, node.Kind)
	}
}

// MarshalYAML outputs a single string if length is 1, otherwise an array.
func (s StringOrArray) MarshalYAML() (any, error) {
	if len(s) == 1 {
		return s[0], nil
	}

	return []string(s), nil
}

// First returns the first element or empty string if empty.
func (s StringOrArray) First() string {
	if v, ok := common.First(s); ok {
		return v
	}

	return ""
}

// IsEmpty returns true if the array is empty.
func (s StringOrArray) IsEmpty() bool {
	return common.IsEmpty(s)
}

// Contains returns true if the array contains the given string.
func (s StringOrArray) Contains(str string) bool {
	return slices.Contains(s, str)
}

// --- AliasList YAML methods ---

// UnmarshalYAML accepts:
//   - a list of entries: [{name: artist, path: name}]
//   - a list of one-key maps: [{artist: name}]
//   - a map: {artist: name, url: links.href}
//
// Declaration order is kept in every form.
func (a *AliasList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.MappingNode:
		pairs, err := aliasPairs(node)
		if err != nil {
			return err
		}

		*a = pairs

		return nil

	case yaml.SequenceNode:
		var list AliasList

		for _, item := range node.Content {
			if item.Kind != yaml.MappingNode {
				return fmt.Errorf("line %d: alias entry must be a map", item.Line)
			}

			if hasKey(item, "name") || hasKey(item, "path") {
				var entry Alias
				if err := item.Decode(&entry); err != nil {
					return err
				}

				list = append(list, entry)

				continue
			}

			pairs, err := aliasPairs(item)
			if err != nil {
				return err
			}

			list = append(list, pairs...)
		}

		*a = list

		return nil

	default:
		return fmt.Errorf("line %d: expected alias list or map, got %v", node.Line, node.Kind)
	}
}

func aliasPairs(node *yaml.Node) (AliasList, error) {
	list := make(AliasList, 0, len(node.Content)/2)

	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i], node.Content[i+1]
		if v.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("line %d: alias %q must map to a path string", v.Line, k.Value)
		}

		list = append(list, Alias{Name: k.Value, Path: v.Value})
	}

	return list, nil
}

func hasKey(node *yaml.Node, key string) bool {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return true
		}
	}

	return false
}

// --- SchemaField YAML methods ---

// schemaFieldYAML avoids recursion into SchemaField.UnmarshalYAML.
type schemaFieldYAML SchemaField

// UnmarshalYAML accepts the full mapping form or the "name:type" shorthand.
func (f *SchemaField) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		name, typ, found := strings.Cut(node.Value, ":")

		f.Name = strings.TrimSpace(name)
		if found {
			f.Type = strings.TrimSpace(typ)
		}

		return nil
	}

	var raw schemaFieldYAML
	if err := node.Decode(&raw); err != nil {
		return err
	}

	*f = SchemaField(raw)

	return nil
}

// MarshalYAML writes leaf fields in the shorthand form.
func (f SchemaField) MarshalYAML() (any, error) {
	if !f.IsComposite() && f.Name != "" && len(f.Fields) == 0 && f.Elem == nil {
		return f.Name + ":" + f.Type, nil
	}

	return schemaFieldYAML(f), nil
}
