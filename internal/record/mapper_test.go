package record

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"search-mapper/internal/mapping"
	"search-mapper/internal/plan"
	"search-mapper/internal/schema"
	"search-mapper/internal/value"
	"search-mapper/primitive"
)

func field(name string, v value.Value) value.Field {
	return value.Field{Name: name, Value: v}
}

func explicitPlan(t *testing.T, metadata ...mapping.MetadataKind) *plan.ProjectionPlan {
	t.Helper()

	root, err := schema.NewResolver(nil).ResolveExplicit(schema.Tuple("",
		schema.Scalar("name", primitive.KindString),
		schema.Bag("links", schema.Scalar("", primitive.KindString)),
	))
	require.NoError(t, err)

	p, err := plan.Build(root, metadata, nil)
	require.NoError(t, err)

	return p
}

func TestMapExplicit(t *testing.T) {
	body := value.Tuple(
		field("name", value.String("Megadeth")),
		field("links", value.Bag(value.String("http://a"), value.String("http://b"))),
	)

	rec := NewMapper(nil).Map(body, explicitPlan(t), nil)

	assert.True(t, rec.OK())
	assert.Equal(t, "(Megadeth,{(http://a),(http://b)})", rec.Value.String())
	assert.Equal(t, []string{"name", "links"}, rec.Value.Names())
}

func TestMapExplicitNullBody(t *testing.T) {
	rec := NewMapper(nil).Map(value.Null(), explicitPlan(t), nil)

	assert.Equal(t, []string{"name", "links"}, rec.Value.Names())
	assert.Equal(t, "(,)", rec.Value.String())
}

func TestMapMetadata(t *testing.T) {
	p := explicitPlan(t, mapping.MetadataScore, mapping.MetadataID, mapping.MetadataParent)
	md := Metadata{
		mapping.MetadataID:    value.String("42"),
		mapping.MetadataScore: value.Float64(1.5),
	}

	rec := NewMapper(nil).Map(value.Tuple(field("name", value.String("x"))), p, md)

	assert.Equal(t, []string{"name", "links", "_score", "_id", "_parent"}, rec.Value.Names())
	assert.Equal(t, "(x,,1.5,42,)", rec.Value.String())

	require.Len(t, rec.Anomalies, 1)

	var unavailable *MetadataUnavailableError
	require.True(t, errors.As(rec.Anomalies[0], &unavailable))
	assert.Equal(t, mapping.MetadataParent, unavailable.Kind)
	assert.Contains(t, unavailable.Error(), "_parent")
}

func TestMapDynamic(t *testing.T) {
	aliases, err := mapping.NewAliasTable([]mapping.Alias{
		{Name: "artist", Path: "name"},
		{Name: "author", Path: "writer"},
		{Name: "author.first", Path: "writer.given_name"},
	})
	require.NoError(t, err)

	p, err := plan.Build(schema.NewResolver(aliases).ResolveDynamic(), []mapping.MetadataKind{mapping.MetadataID}, nil)
	require.NoError(t, err)

	body := value.Tuple(
		field("name", value.String("Megadeth")),
		field("artist", value.String("shadowed")),
		field("writer", value.Tuple(field("given_name", value.String("Dave")), field("family", value.String("M")))),
		field("_id", value.String("from body")),
		field("tags", value.Bag(value.Tuple(field("name", value.String("thrash"))))),
	)

	rec := NewMapper(aliases).Map(body, p, Metadata{mapping.MetadataID: value.String("hit-1")})

	assert.Equal(t, []string{"artist", "author", "tags", "_id"}, rec.Value.Names())

	author, _ := rec.Value.Get("author")
	assert.Equal(t, []string{"first", "family"}, author.Names())

	tags, _ := rec.Value.Get("tags")
	assert.Equal(t, []string{"name"}, tags.Index(0).Names(), "only exact paths are renamed")

	id, _ := rec.Value.Get("_id")
	assert.True(t, value.String("hit-1").Equal(id), "metadata wins over a body field of the same name")
}

func TestMapDynamicProjection(t *testing.T) {
	root, err := schema.Project(schema.NewResolver(nil).ResolveDynamic(), []string{"b", "missing", "a"})
	require.NoError(t, err)

	p, err := plan.Build(root, nil, nil)
	require.NoError(t, err)

	body := value.Tuple(
		field("a", value.Int32(1)),
		field("b", value.Int32(2)),
		field("c", value.Int32(3)),
	)

	rec := NewMapper(nil).Map(body, p, nil)

	assert.Equal(t, []string{"b", "missing", "a"}, rec.Value.Names())
	assert.Equal(t, "(2,,1)", rec.Value.String())
}
