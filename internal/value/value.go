// Package value is the generic record value: a tagged union of null, typed
// scalars, ordered bags, tuples and maps. Values are immutable; every
// constructor copies its input.
package value

import (
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"search-mapper/internal/common"
	"search-mapper/internal/mapping"
	"search-mapper/primitive"
)

// Kind is the tag of a Value.
type Kind int

const (
	KindNull Kind = iota
	KindScalar
	KindBag
	KindTuple
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindScalar:
		return "scalar"
	case KindBag:
		return "bag"
	case KindTuple:
		return "tuple"
	case KindMap:
		return "map"
	default:
		return common.UnknownStr
	}
}

// Value is one node of a record. The zero Value is Null.
type Value struct {
	kind   Kind
	scalar primitive.KindEnum
	v      any
	items  []Value
	fields *orderedmap.OrderedMap[string, Value]
}

// Field is a named member of a tuple or map.
type Field struct {
	Name  string
	Value Value
}

// Null returns the null value.
func Null() Value {
	return Value{}
}

func scalar(kind primitive.KindEnum, v any) Value {
	return Value{kind: KindScalar, scalar: kind, v: v}
}

// String returns a string scalar.
func String(s string) Value {
	return scalar(primitive.KindString, s)
}

func Int32(i int32) Value {
	return scalar(primitive.KindInt32, i)
}

func Int64(i int64) Value {
	return scalar(primitive.KindInt64, i)
}

func Float32(f float32) Value {
	return scalar(primitive.KindFloat32, f)
}

func Float64(f float64) Value {
	return scalar(primitive.KindFloat64, f)
}

func Bool(b bool) Value {
	return scalar(primitive.KindBool, b)
}

func Time(t time.Time) Value {
	return scalar(primitive.KindTime, t)
}

func Bytes(b []byte) Value {
	return scalar(primitive.KindBytes, append([]byte(nil), b...))
}

// Bag returns an ordered bag of the given items.
func Bag(items ...Value) Value {
	return Value{kind: KindBag, items: append([]Value{}, items...)}
}

// Tuple returns a tuple with the fields in the given order. A repeated name
// keeps its first position and its last value.
func Tuple(fields ...Field) Value {
	return Value{kind: KindTuple, fields: collect(fields)}
}

// Map returns a key-value map in the given key order.
func Map(entries ...Field) Value {
	return Value{kind: KindMap, fields: collect(entries)}
}

func collect(fields []Field) *orderedmap.OrderedMap[string, Value] {
	om := orderedmap.New[string, Value](len(fields))
	for _, f := range fields {
		om.Set(f.Name, f.Value)
	}

	return om
}

// Kind returns the tag.
func (v Value) Kind() Kind {
	return v.kind
}

// IsNull reports whether v is null.
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// ScalarKind returns the scalar type, zero for non-scalars.
func (v Value) ScalarKind() primitive.KindEnum {
	return v.scalar
}

// Interface returns the Go value of a scalar (string, int32, int64, float32,
// float64, bool, []byte, time.Time) and nil otherwise.
func (v Value) Interface() any {
	if b, ok := v.v.([]byte); ok {
		return append([]byte(nil), b...)
	}

	return v.v
}

// Len is the number of items of a bag or fields of a tuple or map.
func (v Value) Len() int {
	switch v.kind {
	case KindBag:
		return len(v.items)
	case KindTuple, KindMap:
		return v.fields.Len()
	default:
		return 0
	}
}

// Index returns the i-th bag item, or null when out of range.
func (v Value) Index(i int) Value {
	if v.kind != KindBag || i < 0 || i >= len(v.items) {
		return Null()
	}

	return v.items[i]
}

// Items returns a copy of the bag items.
func (v Value) Items() []Value {
	if v.kind != KindBag {
		return nil
	}

	return append([]Value{}, v.items...)
}

// Get returns the named field of a tuple or map.
func (v Value) Get(name string) (Value, bool) {
	if v.fields == nil {
		return Null(), false
	}

	return v.fields.Get(name)
}

// Names returns field names of a tuple or map in order.
func (v Value) Names() []string {
	if v.fields == nil {
		return nil
	}

	names := make([]string, 0, v.fields.Len())
	for pair := v.fields.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}

	return names
}

// Fields returns the fields of a tuple or map in order.
func (v Value) Fields() []Field {
	if v.fields == nil {
		return nil
	}

	fields := make([]Field, 0, v.fields.Len())
	for pair := v.fields.Oldest(); pair != nil; pair = pair.Next() {
		fields = append(fields, Field{Name: pair.Key, Value: pair.Value})
	}

	return fields
}

// Lookup follows a path through tuples and maps by key and bags by index.
// When a key segment misses, the remaining keys are tried as one dotted key
// so {"a.b": 1} answers "a.b".
func (v Value) Lookup(path mapping.FieldPath) (Value, bool) {
	cur := v

	for i := 0; i < len(path.Segments); i++ {
		seg := path.Segments[i]
		if seg.IsIndex {
			if cur.kind != KindBag || seg.Index >= len(cur.items) {
				return Null(), false
			}

			cur = cur.items[seg.Index]

			continue
		}

		next, ok := cur.Get(seg.Key)
		if !ok {
			return cur.lookupDotted(path.Segments[i:])
		}

		cur = next
	}

	return cur, true
}

func (v Value) lookupDotted(rest []mapping.PathSegment) (Value, bool) {
	key := ""

	for j, seg := range rest {
		if seg.IsIndex {
			return Null(), false
		}

		if j > 0 {
			key += "."
		}

		key += seg.Key
		if j == 0 {
			continue
		}

		if found, ok := v.Get(key); ok {
			return found.Lookup(mapping.FieldPath{Segments: rest[j+1:]})
		}
	}

	return Null(), false
}

// Equal reports deep equality, including field order.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}

	switch v.kind {
	case KindNull:
		return true
	case KindScalar:
		return v.scalar == other.scalar && scalarEqual(v.v, other.v)
	case KindBag:
		if len(v.items) != len(other.items) {
			return false
		}

		for i := range v.items {
			if !v.items[i].Equal(other.items[i]) {
				return false
			}
		}

		return true
	default:
		if v.fields.Len() != other.fields.Len() {
			return false
		}

		a, b := v.fields.Oldest(), other.fields.Oldest()
		for ; a != nil; a, b = a.Next(), b.Next() {
			if a.Key != b.Key || !a.Value.Equal(b.Value) {
				return false
			}
		}

		return true
	}
}

func scalarEqual(a, b any) bool {
	switch x := a.(type) {
	case []byte:
		y, ok := b.([]byte)
		return ok && string(x) == string(y)
	case time.Time:
		y, ok := b.(time.Time)
		return ok && x.Equal(y)
	default:
		return a == b
	}
}
