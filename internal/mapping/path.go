package mapping

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Wildcard is a path segment matching any single key, usable in source filters.
const Wildcard = "*"

// PathSegment is one step of a FieldPath: an object key or an array index.
type PathSegment struct {
	Key     string
	Index   int
	IsIndex bool
}

func (s PathSegment) String() string {
	if s.IsIndex {
		return "[" + strconv.Itoa(s.Index) + "]"
	}

	return s.Key
}

// FieldPath addresses a value inside a document. The empty path is the root.
// Keys are compared case-sensitively.
type FieldPath struct {
	Segments []PathSegment
}

// Root is the empty path.
var Root = FieldPath{}

// ParsePath parses a path expression: "name", "author.name", "@timestamp",
// "links[0]", "a.b[2].c". Segments are separated by '.', indexes follow a key
// in brackets. A backslash makes the next character part of the key, so
// `a\.b` is the single key "a.b".
func ParsePath(expr string) (FieldPath, error) {
	if expr == "" {
		return FieldPath{}, errors.New("empty path")
	}

	if trailing := len(expr) - len(strings.TrimRight(expr, `\`)); trailing%2 == 1 {
		return FieldPath{}, fmt.Errorf("invalid path %q: dangling escape", expr)
	}

	var segments []PathSegment

	for _, part := range splitUnescaped(expr, '.') {
		key, indexes, err := splitIndexes(part)
		if err != nil {
			return FieldPath{}, fmt.Errorf("invalid path %q: %w", expr, err)
		}

		if key == "" {
			return FieldPath{}, fmt.Errorf("invalid path %q: empty segment", expr)
		}

		segments = append(segments, PathSegment{Key: key})
		for _, idx := range indexes {
			segments = append(segments, PathSegment{Index: idx, IsIndex: true})
		}
	}

	return FieldPath{Segments: segments}, nil
}

func indexUnescaped(s string, c byte) int {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case c:
			return i
		}
	}

	return -1
}

func splitUnescaped(s string, sep byte) []string {
	var parts []string

	for {
		i := indexUnescaped(s, sep)
		if i < 0 {
			return append(parts, s)
		}

		parts = append(parts, s[:i])
		s = s[i+1:]
	}
}

func unescape(s string) string {
	if strings.IndexByte(s, '\\') < 0 {
		return s
	}

	var b strings.Builder

	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
		}

		b.WriteByte(s[i])
	}

	return b.String()
}

var keyEscaper = strings.NewReplacer(`\`, `\\`, ".", `\.`, "[", `\[`, "]", `\]`)

// MustParsePath is ParsePath for literals known to be valid.
func MustParsePath(expr string) FieldPath {
	p, err := ParsePath(expr)
	if err != nil {
		panic(err)
	}

	return p
}

// ParsePaths parses each expression in order.
func ParsePaths(exprs []string) ([]FieldPath, error) {
	result := make([]FieldPath, 0, len(exprs))

	for _, e := range exprs {
		fp, err := ParsePath(e)
		if err != nil {
			return nil, err
		}

		result = append(result, fp)
	}

	return result, nil
}

// Keys builds a path of plain key segments without parsing them,
// so keys may contain dots or brackets.
func Keys(keys ...string) FieldPath {
	segments := make([]PathSegment, len(keys))
	for i, k := range keys {
		segments[i] = PathSegment{Key: k}
	}

	return FieldPath{Segments: segments}
}

func splitIndexes(part string) (string, []int, error) {
	open := indexUnescaped(part, '[')
	if open < 0 {
		if indexUnescaped(part, ']') >= 0 {
			return "", nil, fmt.Errorf("unbalanced ']' in %q", part)
		}

		return unescape(part), nil, nil
	}

	key := unescape(part[:open])
	rest := part[open:]

	var indexes []int

	for rest != "" {
		if rest[0] != '[' {
			return "", nil, fmt.Errorf("unexpected %q after index in %q", rest, part)
		}

		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return "", nil, fmt.Errorf("unbalanced '[' in %q", part)
		}

		idx, err := strconv.Atoi(rest[1:end])
		if err != nil || idx < 0 {
			return "", nil, fmt.Errorf("invalid index %q in %q", rest[1:end], part)
		}

		indexes = append(indexes, idx)
		rest = rest[end+1:]
	}

	return key, indexes, nil
}

// String renders the path back to its expression form.
func (p FieldPath) String() string {
	var b strings.Builder

	for i, s := range p.Segments {
		if !s.IsIndex && i > 0 {
			b.WriteByte('.')
		}

		if s.IsIndex {
			b.WriteString(s.String())
		} else {
			b.WriteString(keyEscaper.Replace(s.Key))
		}
	}

	return b.String()
}

// Len returns the number of segments.
func (p FieldPath) Len() int {
	return len(p.Segments)
}

// IsRoot reports whether the path is empty.
func (p FieldPath) IsRoot() bool {
	return len(p.Segments) == 0
}

// Equal reports segment-wise equality.
func (p FieldPath) Equal(other FieldPath) bool {
	if len(p.Segments) != len(other.Segments) {
		return false
	}

	for i := range p.Segments {
		if p.Segments[i] != other.Segments[i] {
			return false
		}
	}

	return true
}

// HasPrefix reports whether prefix is p itself or one of its ancestors.
func (p FieldPath) HasPrefix(prefix FieldPath) bool {
	if len(prefix.Segments) > len(p.Segments) {
		return false
	}

	for i := range prefix.Segments {
		if p.Segments[i] != prefix.Segments[i] {
			return false
		}
	}

	return true
}

// Overlaps reports whether one path is a prefix of the other.
func (p FieldPath) Overlaps(other FieldPath) bool {
	return p.HasPrefix(other) || other.HasPrefix(p)
}

// Covers reports whether a source filter entry p selects target: p equals
// target or is its ancestor, where a Wildcard key in p matches any key.
func (p FieldPath) Covers(target FieldPath) bool {
	if len(p.Segments) > len(target.Segments) {
		return false
	}

	for i, s := range p.Segments {
		t := target.Segments[i]
		if !s.IsIndex && s.Key == Wildcard && !t.IsIndex {
			continue
		}

		if s != t {
			return false
		}
	}

	return true
}

// Append returns a new path with other's segments after p's.
func (p FieldPath) Append(other FieldPath) FieldPath {
	segments := make([]PathSegment, 0, len(p.Segments)+len(other.Segments))
	segments = append(segments, p.Segments...)
	segments = append(segments, other.Segments...)

	return FieldPath{Segments: segments}
}

// Child returns p extended by one key.
func (p FieldPath) Child(key string) FieldPath {
	return p.Append(Keys(key))
}

// Last returns the final segment; ok is false for the root.
func (p FieldPath) Last() (PathSegment, bool) {
	if len(p.Segments) == 0 {
		return PathSegment{}, false
	}

	return p.Segments[len(p.Segments)-1], true
}

// KeysOnly drops index segments. Source filters address arrays transparently.
func (p FieldPath) KeysOnly() FieldPath {
	segments := make([]PathSegment, 0, len(p.Segments))

	for _, s := range p.Segments {
		if !s.IsIndex {
			segments = append(segments, s)
		}
	}

	return FieldPath{Segments: segments}
}

// MarshalYAML renders the path in expression form.
func (p FieldPath) MarshalYAML() (any, error) {
	return p.String(), nil
}
