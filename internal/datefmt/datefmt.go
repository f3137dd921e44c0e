// Package datefmt converts date format specifications into Go layouts and
// parses or formats dates with them.
//
// A specification is either a named format (rfc3339, rfc3339_nano, date,
// date_time, epoch_millis) or a Java/Joda style pattern such as
// "yyyy-MM-dd'T'HH:mm:ss" or "YYYY.MM.dd". Quoted text is literal.
package datefmt

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/viant/toolbox"
)

// DefaultSpecs is the date format list used when none is configured.
var DefaultSpecs = []string{"rfc3339_nano", "date_time", "date"}

var named = map[string]string{
	"rfc3339":      time.RFC3339,
	"rfc3339_nano": time.RFC3339Nano,
	"date":         time.DateOnly,
	"date_time":    "2006-01-02T15:04:05",
	"basic_date":   "20060102",
}

const epochMillis = "epoch_millis"

// patternLetters are the Java pattern letters with a Go layout equivalent.
const patternLetters = "yYuMdHhmsSaEZz"

// Format is a compiled date format.
type Format struct {
	spec   string
	chunks []chunk
	epoch  bool
}

// chunk is either a Go layout or quoted text that a Go layout would read as
// layout tokens.
type chunk struct {
	text    string
	literal bool
}

// Compile turns a specification into a Format.
func Compile(spec string) (Format, error) {
	s := strings.TrimSpace(spec)
	if s == "" {
		return Format{}, fmt.Errorf("empty date format")
	}

	if s == epochMillis {
		return Format{spec: s, epoch: true}, nil
	}

	if layout, ok := named[strings.ToLower(s)]; ok {
		return Format{spec: s, chunks: []chunk{{text: layout}}}, nil
	}

	chunks, err := compileJava(s)
	if err != nil {
		return Format{}, err
	}

	return Format{spec: s, chunks: chunks}, nil
}

// MustCompile is Compile for literals known to be valid.
func MustCompile(spec string) Format {
	f, err := Compile(spec)
	if err != nil {
		panic(err)
	}

	return f
}

// compileJava converts the unquoted parts of a Java pattern with
// toolbox.DateFormatToLayout. Quoted text joins the layout when Go reads it
// back unchanged and stays a literal chunk otherwise.
func compileJava(pattern string) ([]chunk, error) {
	var (
		chunks  []chunk
		segment strings.Builder
	)

	add := func(text string, literal bool) {
		if text == "" {
			return
		}

		if literal && layoutSafe(text) {
			literal = false
		}

		if n := len(chunks); n > 0 && chunks[n-1].literal == literal {
			chunks[n-1].text += text
			return
		}

		chunks = append(chunks, chunk{text: text, literal: literal})
	}

	flush := func() error {
		if segment.Len() == 0 {
			return nil
		}

		s := segment.String()
		segment.Reset()

		for _, r := range s {
			if (r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') && !strings.ContainsRune(patternLetters, r) {
				return fmt.Errorf("invalid date format %q: unsupported pattern letter %q", pattern, r)
			}
		}

		// week-year and ISO year letters are treated as the calendar year
		s = strings.NewReplacer("Y", "y", "u", "y").Replace(s)
		add(toolbox.DateFormatToLayout(zoneOffsets(s)), false)

		return nil
	}

	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		if c != '\'' {
			segment.WriteByte(c)
			continue
		}

		if err := flush(); err != nil {
			return nil, err
		}

		end := strings.IndexByte(pattern[i+1:], '\'')
		if end < 0 {
			return nil, fmt.Errorf("invalid date format %q: unterminated quote", pattern)
		}

		if end == 0 {
			add("'", true)
		} else {
			add(pattern[i+1:i+1+end], true)
		}

		i += end + 1
	}

	if err := flush(); err != nil {
		return nil, err
	}

	return chunks, nil
}

// zoneOffsets rewrites Java offset letters ahead of the toolbox conversion:
// Z is +0000, ZZ is +00:00 and three or more name the zone.
func zoneOffsets(s string) string {
	var b strings.Builder

	for i := 0; i < len(s); {
		if s[i] != 'Z' {
			b.WriteByte(s[i])
			i++

			continue
		}

		n := 1
		for i+n < len(s) && s[i+n] == 'Z' {
			n++
		}

		switch n {
		case 1:
			b.WriteString("-0700")
		case 2:
			b.WriteString("-07:00")
		default:
			b.WriteByte('z')
		}

		i += n
	}

	return b.String()
}

var (
	sampleA = time.Date(2017, time.October, 6, 14, 5, 9, 123000000, time.UTC)
	sampleB = time.Date(2003, time.March, 9, 1, 7, 2, 500000000, time.FixedZone("CET", 3600))
)

// layoutSafe reports whether text has no Go layout tokens, so that it can be
// written into a layout as is.
func layoutSafe(text string) bool {
	return sampleA.Format(text) == text && sampleB.Format(text) == text
}

// Spec returns the specification the format was compiled from.
func (f Format) Spec() string {
	return f.spec
}

// Layout returns the Go layout. It is empty for epoch_millis and for
// formats with quoted text a Go layout cannot express.
func (f Format) Layout() string {
	if len(f.chunks) != 1 || f.chunks[0].literal {
		return ""
	}

	return f.chunks[0].text
}

// Parse parses s strictly: the whole string must match the format.
func (f Format) Parse(s string) (time.Time, error) {
	if f.epoch {
		ms, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("%q is not epoch millis", s)
		}

		return time.UnixMilli(ms).UTC(), nil
	}

	if layout := f.Layout(); layout != "" {
		return time.Parse(layout, s)
	}

	// Literal chunks are matched and cut out; the layout chunks and the text
	// between the literals are then parsed together.
	var layouts, values []string

	rest := s

	for i, c := range f.chunks {
		if c.literal {
			if !strings.HasPrefix(rest, c.text) {
				return time.Time{}, fmt.Errorf("%q does not match date format %q", s, f.spec)
			}

			rest = rest[len(c.text):]

			continue
		}

		end := len(rest)
		if i+1 < len(f.chunks) {
			end = strings.Index(rest, f.chunks[i+1].text)
			if end < 0 {
				return time.Time{}, fmt.Errorf("%q does not match date format %q", s, f.spec)
			}
		}

		layouts = append(layouts, c.text)
		values = append(values, rest[:end])
		rest = rest[end:]
	}

	if rest != "" {
		return time.Time{}, fmt.Errorf("%q does not match date format %q", s, f.spec)
	}

	return time.Parse(strings.Join(layouts, "\x00"), strings.Join(values, "\x00"))
}

// Format renders t with the format.
func (f Format) Format(t time.Time) string {
	if f.epoch {
		return strconv.FormatInt(t.UnixMilli(), 10)
	}

	var b strings.Builder

	for _, c := range f.chunks {
		if c.literal {
			b.WriteString(c.text)
		} else {
			b.WriteString(t.Format(c.text))
		}
	}

	return b.String()
}

// List is an ordered list of formats tried in turn.
type List []Format

// CompileList compiles every specification, failing on the first invalid one.
func CompileList(specs []string) (List, error) {
	list := make(List, 0, len(specs))

	for _, s := range specs {
		f, err := Compile(s)
		if err != nil {
			return nil, err
		}

		list = append(list, f)
	}

	return list, nil
}

// Default returns the compiled DefaultSpecs.
func Default() List {
	list, err := CompileList(DefaultSpecs)
	if err != nil {
		panic(err)
	}

	return list
}

// Parse returns the time parsed by the first matching format.
func (l List) Parse(s string) (time.Time, bool) {
	for _, f := range l {
		if t, err := f.Parse(s); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}
