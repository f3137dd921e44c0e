package decode

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"search-mapper/internal/datefmt"
	"search-mapper/internal/schema"
	"search-mapper/internal/value"
	"search-mapper/primitive"
)

func resolve(t *testing.T, children ...*schema.Node) *schema.Node {
	t.Helper()

	root, err := schema.NewResolver(nil).ResolveExplicit(schema.Tuple("", children...))
	require.NoError(t, err)

	return root
}

func TestDecodeExplicit(t *testing.T) {
	root := resolve(t,
		schema.Scalar("name", primitive.KindString),
		schema.Bag("links", schema.Scalar("", primitive.KindString)),
	)

	got, err := New().Decode([]byte(`{"links":["http://a","http://b"],"name":"Megadeth","extra":true}`), root)
	require.NoError(t, err)

	want := value.Tuple(
		value.Field{Name: "name", Value: value.String("Megadeth")},
		value.Field{Name: "links", Value: value.Bag(value.String("http://a"), value.String("http://b"))},
	)
	assert.True(t, want.Equal(got), "got %s", got)
	assert.Equal(t, []string{"name", "links"}, got.Names(), "schema order wins over document order")
}

func TestDecodeNestedTuple(t *testing.T) {
	root := resolve(t,
		schema.Scalar("name", primitive.KindString),
		schema.Bag("links", schema.Scalar("", primitive.KindString)),
		schema.Tuple("genre", schema.Scalar("main", primitive.KindString), schema.Scalar("sub", primitive.KindString)),
	)

	tests := []struct {
		name string
		raw  any
	}{
		{"json", []byte(`{"name":"Megadeth","links":["http://a","http://b"],"genre":{"sub":"speed","main":"thrash"}}`)},
		{"map", map[string]any{
			"name":  "Megadeth",
			"links": []any{"http://a", "http://b"},
			"genre": map[string]any{"main": "thrash", "sub": "speed"},
		}},
		{"bson", bson.D{
			{Key: "genre", Value: bson.D{{Key: "main", Value: "thrash"}, {Key: "sub", Value: "speed"}}},
			{Key: "links", Value: bson.A{"http://a", "http://b"}},
			{Key: "name", Value: "Megadeth"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := New().Decode(tt.raw, root)
			require.NoError(t, err)
			assert.Equal(t, "(Megadeth,{(http://a),(http://b)},(thrash,speed))", got.String())
		})
	}
}

func TestDecodeDynamic(t *testing.T) {
	d := New()

	got, err := d.Decode([]byte(`{"a":{"x":1,"y":2}}`), schema.NewResolver(nil).ResolveDynamic())
	require.NoError(t, err)

	a, ok := got.Get("a")
	require.True(t, ok)
	assert.Equal(t, value.KindTuple, a.Kind())
	assert.Equal(t, "((1,2))", got.String())

	inferred, err := d.Infer([]byte(`{"b":[1,"two",null],"a":{"y":2.5}}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, inferred.Names(), "document order under Any")

	b, _ := inferred.Get("b")
	assert.Equal(t, 3, b.Len())
	assert.True(t, b.Index(2).IsNull())
}

func TestDecodeMissingAndNull(t *testing.T) {
	root := resolve(t,
		schema.Scalar("present", primitive.KindInt32),
		schema.Scalar("missing", primitive.KindString),
		schema.Tuple("nested", schema.Scalar("x", primitive.KindInt64)),
	)

	got, anomalies, err := New().DecodeReport([]byte(`{"present":7,"nested":null}`), root)
	require.NoError(t, err)
	assert.Empty(t, anomalies, "missing fields are not anomalies")
	assert.Equal(t, "(7,,)", got.String())
}

func TestDecodeBag(t *testing.T) {
	root := resolve(t,
		schema.Bag("tags", schema.Scalar("", primitive.KindString)),
		schema.Bag("people", schema.Tuple("", schema.Scalar("name", primitive.KindString), schema.Scalar("age", primitive.KindInt32))),
	)

	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"order and count kept", `{"tags":["b","a","b"]}`, "({(b),(a),(b)},)"},
		{"single value promoted", `{"tags":"solo"}`, "({(solo)},)"},
		{"empty array", `{"tags":[]}`, "({},)"},
		{"tuple elements", `{"people":[{"age":30,"name":"x"},{"name":"y"}]}`, "(,{(x,30),(y,)})"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := New().Decode([]byte(tt.doc), root)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestDecodeMap(t *testing.T) {
	root := resolve(t, schema.Map("attrs", schema.Scalar("", primitive.KindInt64)))

	got, err := New().Decode([]byte(`{"attrs":{"z":1,"a":"2"}}`), root)
	require.NoError(t, err)

	attrs, _ := got.Get("attrs")
	assert.Equal(t, value.KindMap, attrs.Kind())
	assert.Equal(t, []string{"z", "a"}, attrs.Names())
	assert.Equal(t, "([z#1,a#2])", got.String())
}

func TestDecodeDottedKeys(t *testing.T) {
	root := resolve(t,
		schema.Scalar("a.b", primitive.KindInt32),
		schema.Scalar("c.d.e", primitive.KindString),
		schema.Scalar("f.g", primitive.KindString),
	)

	got, err := New().Decode([]byte(`{"a.b":1,"c":{"d.e":"deep"},"f":{"g":"nested"}}`), root)
	require.NoError(t, err)
	assert.Equal(t, "(1,deep,nested)", got.String())
}

func TestDecodeCoercion(t *testing.T) {
	when := time.Date(2017, 10, 6, 12, 30, 0, 0, time.UTC)

	tests := []struct {
		name    string
		kind    primitive.KindEnum
		raw     any
		want    value.Value
		anomaly AnomalyKind
	}{
		{"int widens to long", primitive.KindInt64, int64(5), value.Int64(5), ""},
		{"long to int", primitive.KindInt32, int64(42), value.Int32(42), ""},
		{"int overflow", primitive.KindInt32, int64(1) << 40, value.Null(), AnomalyMismatch},
		{"integral float to int", primitive.KindInt64, 3.0, value.Int64(3), ""},
		{"fractional float to int", primitive.KindInt64, 3.5, value.Null(), AnomalyMismatch},
		{"text to int", primitive.KindInt32, " 12 ", value.Int32(12), ""},
		{"bad text to int", primitive.KindInt32, "twelve", value.Null(), AnomalyMismatch},
		{"int to double", primitive.KindFloat64, int64(2), value.Float64(2), ""},
		{"text to double", primitive.KindFloat64, "2.5", value.Float64(2.5), ""},
		{"number to string", primitive.KindString, int64(7), value.String("7"), ""},
		{"bool to string", primitive.KindString, true, value.String("true"), ""},
		{"text to bool", primitive.KindBool, "Yes", value.Bool(true), ""},
		{"off to bool", primitive.KindBool, "off", value.Bool(false), ""},
		{"int to bool", primitive.KindBool, int64(1), value.Bool(true), ""},
		{"two to bool", primitive.KindBool, int64(2), value.Null(), AnomalyMismatch},
		{"base64 to bytes", primitive.KindBytes, base64.StdEncoding.EncodeToString([]byte("hi")), value.Bytes([]byte("hi")), ""},
		{"text to bytes", primitive.KindBytes, "not base64!", value.Bytes([]byte("not base64!")), ""},
		{"binary", primitive.KindBytes, bson.Binary{Data: []byte{1, 2}}, value.Bytes([]byte{1, 2}), ""},
		{"text to date", primitive.KindTime, "2017-10-06T12:30:00Z", value.Time(when), ""},
		{"epoch millis to date", primitive.KindTime, when.UnixMilli(), value.Time(when), ""},
		{"bson datetime", primitive.KindTime, bson.NewDateTimeFromTime(when), value.Time(when), ""},
		{"date fallback", primitive.KindTime, "next tuesday", value.String("next tuesday"), AnomalyDateFallback},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := resolve(t, schema.Scalar("v", tt.kind))

			got, anomalies, err := New().DecodeReport(bson.D{{Key: "v", Value: tt.raw}}, root)
			require.NoError(t, err)

			field, _ := got.Get("v")
			assert.True(t, tt.want.Equal(field), "want %s got %s", tt.want, field)

			if tt.anomaly == "" {
				assert.Empty(t, anomalies)
				return
			}

			require.Len(t, anomalies, 1)
			assert.Equal(t, tt.anomaly, anomalies[0].Kind)
			assert.Equal(t, "v", anomalies[0].Path)
		})
	}
}

func TestDecodeShapeMismatch(t *testing.T) {
	root := resolve(t,
		schema.Scalar("title", primitive.KindString),
		schema.Tuple("author", schema.Scalar("name", primitive.KindString)),
		schema.Map("attrs", schema.Scalar("", primitive.KindString)),
		schema.Scalar("year", primitive.KindInt32),
		schema.Scalar("pages", primitive.KindInt32),
	)

	doc := `{"title":{"text":"x"},"author":"anon","attrs":[1],"year":[1999],"pages":[1,2]}`

	got, anomalies, err := New().DecodeReport([]byte(doc), root)
	require.NoError(t, err)
	assert.Equal(t, "(,,,1999,)", got.String())

	var paths []string
	for _, a := range anomalies {
		assert.Equal(t, AnomalyMismatch, a.Kind)
		paths = append(paths, a.Path)
	}

	assert.Equal(t, []string{"title", "author", "attrs", "pages"}, paths)
}

func TestDecodeRestrictedCoercions(t *testing.T) {
	root := resolve(t,
		schema.Scalar("count", primitive.KindInt32),
		schema.Scalar("when", primitive.KindTime),
		schema.Scalar("ratio", primitive.KindFloat64),
	)

	d := New(WithCoercions(primitive.CategorySafeNumber))

	got, anomalies, err := d.DecodeReport([]byte(`{"count":"12","when":"2017-10-06","ratio":3}`), root)
	require.NoError(t, err)

	count, _ := got.Get("count")
	assert.True(t, count.IsNull(), "text numbers are disabled")

	when, _ := got.Get("when")
	assert.True(t, value.String("2017-10-06").Equal(when), "dates fall back to text")

	ratio, _ := got.Get("ratio")
	assert.True(t, value.Float64(3).Equal(ratio))

	require.Len(t, anomalies, 2)
	assert.Equal(t, AnomalyMismatch, anomalies[0].Kind)
	assert.Equal(t, AnomalyDateFallback, anomalies[1].Kind)
}

func TestDecodeDateFormats(t *testing.T) {
	root := resolve(t, schema.Scalar("day", primitive.KindTime))

	formats, err := datefmt.CompileList([]string{"dd/MM/yyyy"})
	require.NoError(t, err)

	got, err := New(WithDateFormats(formats)).Decode([]byte(`{"day":"06/10/2017"}`), root)
	require.NoError(t, err)

	day, _ := got.Get("day")
	assert.True(t, value.Time(time.Date(2017, 10, 6, 0, 0, 0, 0, time.UTC)).Equal(day), "got %s", day)
}

func TestDecodeBSON(t *testing.T) {
	root := resolve(t,
		schema.Scalar("_id", primitive.KindString),
		schema.Scalar("name", primitive.KindString),
		schema.Bag("links", schema.Scalar("", primitive.KindString)),
	)

	oid := bson.NewObjectID()

	data, err := bson.Marshal(bson.D{
		{Key: "_id", Value: oid},
		{Key: "name", Value: "Megadeth"},
		{Key: "links", Value: bson.A{"http://a", "http://b"}},
	})
	require.NoError(t, err)

	for name, d := range map[string]*Decoder{"raw": New(), "bytes": New(WithBSONBytes())} {
		t.Run(name, func(t *testing.T) {
			var raw any = bson.Raw(data)
			if name == "bytes" {
				raw = data
			}

			got, err := d.Decode(raw, root)
			require.NoError(t, err)
			assert.Equal(t, "("+oid.Hex()+",Megadeth,{(http://a),(http://b)})", got.String())
		})
	}
}

func TestDecodeMaterialised(t *testing.T) {
	root := resolve(t,
		schema.Scalar("a", primitive.KindInt64),
		schema.Bag("b", schema.Scalar("", primitive.KindString)),
	)

	got, err := New().Decode(map[string]any{"a": 1, "b": []string{"x", "y"}}, root)
	require.NoError(t, err)
	assert.Equal(t, "(1,{(x),(y)})", got.String())

	inferred, err := New().Infer(bson.M{"z": 1, "a": 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "z"}, inferred.Names(), "unordered maps are read in key order")
}

func TestDecodeMalformed(t *testing.T) {
	tests := []struct {
		name string
		d    *Decoder
		raw  any
	}{
		{"truncated JSON", New(), []byte(`{"a":`)},
		{"bad JSON array", New(), []byte(`{"a":[1,}`)},
		{"truncated BSON", New(), bson.Raw{0x10, 0, 0, 0}},
		{"JSON read as BSON", New(WithBSONBytes()), []byte(`{"a":1}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.d.Decode(tt.raw, nil)
			assert.Error(t, err)
		})
	}
}
