package value

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// TimeLayout renders time scalars in text output.
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// String renders v the way the batch engine prints records: tuples as
// (a,b), bags as {(a),(b)}, maps as [k#v]. Null renders empty.
func (v Value) String() string {
	var b strings.Builder

	v.writeText(&b)

	return b.String()
}

func (v Value) writeText(b *strings.Builder) {
	switch v.kind {
	case KindNull:
	case KindScalar:
		b.WriteString(v.Text())
	case KindBag:
		b.WriteByte('{')

		for i, item := range v.items {
			if i > 0 {
				b.WriteByte(',')
			}

			if item.kind == KindTuple {
				item.writeText(b)
				continue
			}

			// bags hold tuples, a bare item is a tuple of one
			b.WriteByte('(')
			item.writeText(b)
			b.WriteByte(')')
		}

		b.WriteByte('}')
	case KindTuple:
		b.WriteByte('(')

		i := 0
		for pair := v.fields.Oldest(); pair != nil; pair = pair.Next() {
			if i > 0 {
				b.WriteByte(',')
			}

			pair.Value.writeText(b)
			i++
		}

		b.WriteByte(')')
	case KindMap:
		b.WriteByte('[')

		i := 0
		for pair := v.fields.Oldest(); pair != nil; pair = pair.Next() {
			if i > 0 {
				b.WriteByte(',')
			}

			b.WriteString(pair.Key)
			b.WriteByte('#')
			pair.Value.writeText(b)
			i++
		}

		b.WriteByte(']')
	}
}

// Text returns the textual form of a scalar; empty for other kinds.
func (v Value) Text() string {
	switch x := v.v.(type) {
	case string:
		return x
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case []byte:
		return string(x)
	case time.Time:
		return x.UTC().Format(TimeLayout)
	default:
		return ""
	}
}

// MarshalJSON writes tuples and maps as objects in field order, bags as
// arrays and times as RFC 3339 strings.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindBag:
		return json.Marshal(v.items)
	case KindTuple, KindMap:
		return v.fields.MarshalJSON()
	default:
		if t, ok := v.v.(time.Time); ok {
			return json.Marshal(t.Format(time.RFC3339Nano))
		}

		return json.Marshal(v.v)
	}
}
