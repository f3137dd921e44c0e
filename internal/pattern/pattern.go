// Package pattern resolves index-name templates such as
// "logs-{@timestamp|YYYY.MM.dd}" against a document.
//
// A template is literal text with placeholders in braces. {path} is replaced
// by the value of the document field at path. {path|format} (or
// {path:format}) formats a date: the field's value when the document has it,
// else the context's current instant. A backslash escapes a brace.
package pattern

import (
	"fmt"
	"strings"
	"time"

	"github.com/viant/parsly"

	"search-mapper/internal/datefmt"
	"search-mapper/internal/mapping"
	"search-mapper/internal/value"
)

// FieldAccessor reads document fields; value.Value implements it.
type FieldAccessor interface {
	Lookup(path mapping.FieldPath) (value.Value, bool)
}

// Context carries what a template is resolved against.
type Context struct {
	// Fields is the current document, nil when there is none.
	Fields FieldAccessor
	// Now is used by date placeholders whose field is absent.
	Now time.Time
	// Formats parse textual field values of date placeholders; the default
	// list when empty.
	Formats datefmt.List
}

// PatternResolutionError reports a malformed template or a placeholder that
// could not be resolved.
type PatternResolutionError struct {
	Template    string
	Placeholder string
	Reason      string
}

func (e *PatternResolutionError) Error() string {
	if e.Placeholder == "" {
		return fmt.Sprintf("index pattern %q: %s", e.Template, e.Reason)
	}

	return fmt.Sprintf("index pattern %q: placeholder {%s}: %s", e.Template, e.Placeholder, e.Reason)
}

type segmentKind int

const (
	segmentLiteral segmentKind = iota
	segmentField
	segmentDate
)

type segment struct {
	kind   segmentKind
	text   string
	path   mapping.FieldPath
	format datefmt.Format
}

// Pattern is a parsed template. It is immutable and safe for concurrent use.
type Pattern struct {
	template string
	segments []segment
}

// Parse parses template. Date formats are compiled here, so a bad format is
// reported before any document is read.
func Parse(template string) (*Pattern, error) {
	p := &Pattern{template: template}
	cursor := parsly.NewCursor("", []byte(template), 0)

	var literal strings.Builder

	flush := func() {
		if literal.Len() > 0 {
			p.segments = append(p.segments, segment{kind: segmentLiteral, text: literal.String()})
			literal.Reset()
		}
	}

	for cursor.Pos < cursor.InputSize {
		offset := cursor.Pos

		matched := cursor.MatchAny(escapeMatcher, placeholderMatcher, literalMatcher)
		switch matched.Code {
		case literalToken:
			literal.WriteString(matched.Text(cursor))
		case escapeToken:
			text := matched.Text(cursor)
			switch text[1] {
			case '{', '}', '\\':
				literal.WriteByte(text[1])
			default:
				literal.WriteString(text)
			}
		case placeholderToken:
			text := matched.Text(cursor)

			seg, err := p.placeholder(text[1 : len(text)-1])
			if err != nil {
				return nil, err
			}

			flush()
			p.segments = append(p.segments, seg)
		default:
			return nil, p.errorf("", "unbalanced brace at offset %d", offset)
		}
	}

	flush()

	return p, nil
}

// MustParse is Parse for literals known to be valid.
func MustParse(template string) *Pattern {
	p, err := Parse(template)
	if err != nil {
		panic(err)
	}

	return p
}

func (p *Pattern) placeholder(body string) (segment, error) {
	expr := strings.TrimSpace(body)
	if expr == "" {
		return segment{}, p.errorf(body, "empty placeholder")
	}

	field, format, isDate := strings.Cut(expr, "|")
	if !isDate {
		field, format, isDate = strings.Cut(expr, ":")
	}

	seg := segment{kind: segmentField, text: expr}

	field = strings.TrimSpace(field)
	if field != "" {
		path, err := mapping.ParsePath(field)
		if err != nil {
			return segment{}, p.errorf(expr, "%v", err)
		}

		seg.path = path
	}

	if !isDate {
		return seg, nil
	}

	f, err := datefmt.Compile(format)
	if err != nil {
		return segment{}, p.errorf(expr, "%v", err)
	}

	seg.kind = segmentDate
	seg.format = f

	return seg, nil
}

func (p *Pattern) errorf(placeholder, format string, args ...any) error {
	return &PatternResolutionError{Template: p.template, Placeholder: placeholder, Reason: fmt.Sprintf(format, args...)}
}

// Template returns the source text.
func (p *Pattern) Template() string {
	return p.template
}

// Static reports whether the template has no placeholders.
func (p *Pattern) Static() bool {
	for _, s := range p.segments {
		if s.kind != segmentLiteral {
			return false
		}
	}

	return true
}

// Fields returns the document paths the placeholders read, in template order.
func (p *Pattern) Fields() []mapping.FieldPath {
	var paths []mapping.FieldPath

	for _, s := range p.segments {
		if s.kind != segmentLiteral && !s.path.IsRoot() {
			paths = append(paths, s.path)
		}
	}

	return paths
}

// Resolve renders the template against ctx.
func (p *Pattern) Resolve(ctx Context) (string, error) {
	var b strings.Builder

	for _, s := range p.segments {
		switch s.kind {
		case segmentLiteral:
			b.WriteString(s.text)
		case segmentField:
			text, err := p.field(s, ctx)
			if err != nil {
				return "", err
			}

			b.WriteString(text)
		case segmentDate:
			t, err := p.date(s, ctx)
			if err != nil {
				return "", err
			}

			b.WriteString(s.format.Format(t))
		}
	}

	return b.String(), nil
}

func (p *Pattern) field(s segment, ctx Context) (string, error) {
	v, ok := lookup(ctx.Fields, s.path)
	if !ok {
		return "", p.errorf(s.text, "field %s is absent", s.path)
	}

	if v.Kind() != value.KindScalar {
		return "", p.errorf(s.text, "field %s is a %s, not a scalar", s.path, v.Kind())
	}

	return v.Text(), nil
}

func (p *Pattern) date(s segment, ctx Context) (time.Time, error) {
	v, ok := lookup(ctx.Fields, s.path)
	if !ok {
		// With a document the named field must be present; the clock only
		// stands in when there is no document or no field.
		if ctx.Fields != nil && !s.path.IsRoot() {
			return time.Time{}, p.errorf(s.text, "field %s is absent", s.path)
		}

		if ctx.Now.IsZero() {
			return time.Time{}, p.errorf(s.text, "field %s is absent and no current time is set", s.path)
		}

		return ctx.Now, nil
	}

	switch x := v.Interface().(type) {
	case time.Time:
		return x, nil
	case int64:
		return time.UnixMilli(x).UTC(), nil
	case int32:
		return time.UnixMilli(int64(x)).UTC(), nil
	case string:
		formats := ctx.Formats
		if len(formats) == 0 {
			formats = datefmt.Default()
		}

		if t, ok := formats.Parse(x); ok {
			return t, nil
		}

		return time.Time{}, p.errorf(s.text, "field %s value %q is not a date", s.path, x)
	default:
		return time.Time{}, p.errorf(s.text, "field %s is not a date", s.path)
	}
}

func lookup(fields FieldAccessor, path mapping.FieldPath) (value.Value, bool) {
	if fields == nil || path.IsRoot() {
		return value.Null(), false
	}

	v, ok := fields.Lookup(path)
	if !ok || v.IsNull() {
		return value.Null(), false
	}

	return v, true
}

// Resolve parses and resolves template in one step.
func Resolve(template string, ctx Context) (string, error) {
	p, err := Parse(template)
	if err != nil {
		return "", err
	}

	return p.Resolve(ctx)
}

// IsPattern reports whether template has an unescaped placeholder and so
// needs per-document resolution.
func IsPattern(template string) bool {
	for i := 0; i < len(template); i++ {
		switch template[i] {
		case '\\':
			i++
		case '{':
			return true
		}
	}

	return false
}
