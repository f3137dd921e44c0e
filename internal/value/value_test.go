package value

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"search-mapper/internal/mapping"
	"search-mapper/primitive"
)

func TestValue_Kinds(t *testing.T) {
	tests := []struct {
		name   string
		v      Value
		kind   Kind
		scalar primitive.KindEnum
	}{
		{"zero", Value{}, KindNull, 0},
		{"string", String("x"), KindScalar, primitive.KindString},
		{"int32", Int32(1), KindScalar, primitive.KindInt32},
		{"float64", Float64(1.5), KindScalar, primitive.KindFloat64},
		{"time", Time(time.Unix(0, 0)), KindScalar, primitive.KindTime},
		{"bag", Bag(String("a")), KindBag, 0},
		{"tuple", Tuple(), KindTuple, 0},
		{"map", Map(), KindMap, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.v.Kind())
			assert.Equal(t, tt.scalar, tt.v.ScalarKind())
		})
	}
}

func TestValue_Immutable(t *testing.T) {
	raw := []byte("abc")
	b := Bytes(raw)
	raw[0] = 'x'
	assert.Equal(t, []byte("abc"), b.Interface())

	got := b.Interface().([]byte)
	got[0] = 'y'
	assert.Equal(t, "abc", b.Text())

	items := []Value{String("a"), String("b")}
	bag := Bag(items...)
	items[0] = String("z")
	assert.Equal(t, "a", bag.Index(0).Text())

	copied := bag.Items()
	copied[1] = Null()
	assert.Equal(t, "b", bag.Index(1).Text())
	assert.True(t, bag.Index(5).IsNull())
}

func TestValue_TupleOrder(t *testing.T) {
	tuple := Tuple(
		Field{Name: "z", Value: Int64(1)},
		Field{Name: "a", Value: Int64(2)},
		Field{Name: "z", Value: Int64(3)},
	)

	assert.Equal(t, []string{"z", "a"}, tuple.Names())
	assert.Equal(t, 2, tuple.Len())

	z, ok := tuple.Get("z")
	require.True(t, ok)
	assert.Equal(t, int64(3), z.Interface())

	_, ok = tuple.Get("missing")
	assert.False(t, ok)

	_, ok = String("s").Get("z")
	assert.False(t, ok)
}

func TestValue_Lookup(t *testing.T) {
	doc := Tuple(
		Field{Name: "author", Value: Tuple(Field{Name: "name", Value: String("Ann")})},
		Field{Name: "links", Value: Bag(String("http://a"), String("http://b"))},
		Field{Name: "geo.city", Value: String("Oslo")},
		Field{Name: "a", Value: Tuple(Field{Name: "b.c", Value: Tuple(Field{Name: "d", Value: Int32(4)})})},
	)

	tests := []struct {
		path     string
		expected string
		found    bool
	}{
		{"author.name", "Ann", true},
		{"links[1]", "http://b", true},
		{"links[2]", "", false},
		{"geo.city", "Oslo", true},
		{"a.b.c.d", "4", true},
		{"author.age", "", false},
		{"author.name.first", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := doc.Lookup(mapping.MustParsePath(tt.path))
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.expected, got.String())
		})
	}

	root, ok := doc.Lookup(mapping.Root)
	require.True(t, ok)
	assert.True(t, root.Equal(doc))
}

func TestValue_String(t *testing.T) {
	record := Tuple(
		Field{Name: "name", Value: String("Megadeth")},
		Field{Name: "links", Value: Bag(String("http://a"), String("http://b"))},
		Field{Name: "meta", Value: Map(Field{Name: "k", Value: Int32(1)})},
		Field{Name: "missing", Value: Null()},
		Field{Name: "members", Value: Bag(Tuple(Field{Name: "n", Value: String("Dave")}))},
		Field{Name: "score", Value: Float64(1.5)},
		Field{Name: "at", Value: Time(time.Date(2017, 10, 6, 0, 0, 0, 0, time.UTC))},
	)

	assert.Equal(t, "(Megadeth,{(http://a),(http://b)},[k#1],,{(Dave)},1.5,2017-10-06T00:00:00.000Z)", record.String())
}

func TestValue_MarshalJSON(t *testing.T) {
	record := Tuple(
		Field{Name: "z", Value: String("last?")},
		Field{Name: "a", Value: Bag(Int64(1), Null(), Bool(true))},
		Field{Name: "m", Value: Map(Field{Name: "k", Value: Float32(0.5)})},
		Field{Name: "t", Value: Time(time.Date(2017, 10, 6, 1, 2, 3, 0, time.UTC))},
		Field{Name: "b", Value: Bytes([]byte("hi"))},
	)

	data, err := json.Marshal(record)
	require.NoError(t, err)
	assert.Equal(t, `{"z":"last?","a":[1,null,true],"m":{"k":0.5},"t":"2017-10-06T01:02:03Z","b":"aGk="}`, string(data))
}

func TestValue_Equal(t *testing.T) {
	a := Tuple(Field{Name: "x", Value: Int64(1)}, Field{Name: "y", Value: Bag(String("s"))})
	b := Tuple(Field{Name: "x", Value: Int64(1)}, Field{Name: "y", Value: Bag(String("s"))})
	reordered := Tuple(Field{Name: "y", Value: Bag(String("s"))}, Field{Name: "x", Value: Int64(1)})

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(reordered), "field order is significant")
	assert.False(t, Int64(1).Equal(Int32(1)))
	assert.False(t, Tuple().Equal(Map()))
	assert.True(t, Null().Equal(Value{}))
	assert.True(t, Bytes([]byte("a")).Equal(Bytes([]byte("a"))))
	assert.True(t, Time(time.Unix(5, 0)).Equal(Time(time.Unix(5, 0).UTC())))
}
