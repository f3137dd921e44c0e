package schema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"search-mapper/internal/mapping"
	"search-mapper/primitive"
)

func aliasTable(t *testing.T, identity bool, entries ...mapping.Alias) *mapping.AliasTable {
	t.Helper()

	table, err := mapping.NewAliasTable(entries, mapping.WithIdentity(identity))
	require.NoError(t, err)

	return table
}

func TestResolveExplicit(t *testing.T) {
	table := aliasTable(t, true,
		mapping.Alias{Name: "artist", Path: "name"},
		mapping.Alias{Name: "author", Path: "writer"},
		mapping.Alias{Name: "author.first", Path: "writer.given_name"},
		mapping.Alias{Name: "band.members.who", Path: "band.members.person"},
	)

	user := Tuple("",
		Scalar("artist", primitive.KindString),
		Tuple("author", Scalar("first", primitive.KindString), Scalar("last", primitive.KindString)),
		Bag("links", Scalar("", primitive.KindString)),
		Tuple("band", Bag("members", Tuple("", Scalar("who", primitive.KindString)))),
	)

	root, err := NewResolver(table).ResolveExplicit(user)
	require.NoError(t, err)
	require.True(t, root.Resolved())
	assert.False(t, user.Resolved(), "input is not modified")

	members := root.Child("band").Child("members")

	tests := []struct {
		name string
		node *Node
		path string
		rel  string
	}{
		{"aliased", root.Child("artist"), "name", "name"},
		{"aliased tuple", root.Child("author"), "writer", "writer"},
		{"nested alias", root.Child("author").Child("first"), "writer.given_name", "given_name"},
		{"nested identity", root.Child("author").Child("last"), "writer.last", "last"},
		{"bag", root.Child("links"), "links", "links"},
		{"bag element", root.Child("links").Elem, "links", ""},
		{"bag in tuple", members, "band.members", "members"},
		{"bag element field", members.Elem.Child("who"), "band.members.person", "person"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.path, tt.node.Path.String())
			assert.Equal(t, tt.rel, tt.node.Rel.String())
			assert.True(t, tt.node.Resolved())
		})
	}
}

func TestResolveExplicit_Unresolved(t *testing.T) {
	table := aliasTable(t, false,
		mapping.Alias{Name: "artist", Path: "name"},
		mapping.Alias{Name: "author", Path: "writer"},
		mapping.Alias{Name: "author.first", Path: "elsewhere.first"},
	)

	user := Tuple("",
		Scalar("artst", primitive.KindString),
		Tuple("author", Scalar("first", primitive.KindString), Scalar("last", primitive.KindString)),
		Scalar("links", primitive.KindString),
	)

	_, err := NewResolver(table).ResolveExplicit(user)

	var unresolved *UnresolvedFieldError
	require.True(t, errors.As(err, &unresolved), "got %v", err)
	assert.Equal(t, []string{"artst", "author.first", "author.last", "links"}, unresolved.Fields)
	assert.Contains(t, err.Error(), "did you mean artist?")
	assert.Contains(t, err.Error(), `must address a field under "writer"`)
}

func TestResolveExplicit_Roots(t *testing.T) {
	r := NewResolver(nil)

	_, err := r.ResolveExplicit(nil)
	require.Error(t, err)

	_, err = r.ResolveExplicit(Scalar("x", primitive.KindString))
	require.Error(t, err)

	root, err := r.ResolveExplicit(Any(""))
	require.NoError(t, err)
	assert.Equal(t, KindAny, root.Kind)

	dyn := r.ResolveDynamic()
	assert.Equal(t, KindAny, dyn.Kind)
	assert.True(t, dyn.Resolved())
	assert.True(t, dyn.Path.IsRoot())

	// identity fallback through the default table
	root, err = r.ResolveExplicit(Tuple("", Scalar("@timestamp", primitive.KindTime)))
	require.NoError(t, err)
	assert.Equal(t, "@timestamp", root.Child("@timestamp").Path.String())
}

func TestProject(t *testing.T) {
	root, err := NewResolver(nil).ResolveExplicit(Tuple("",
		Scalar("alpha", primitive.KindString),
		Scalar("beta", primitive.KindInt64),
		Scalar("gamma", primitive.KindBool),
	))
	require.NoError(t, err)

	projected, err := Project(root, []string{"gamma", "alpha", "gamma"})
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "gamma"}, projected.ChildNames(), "schema order is kept")
	assert.Len(t, root.Children, 3)
	assert.Equal(t, "gamma", projected.Child("gamma").Path.String())

	same, err := Project(root, nil)
	require.NoError(t, err)
	assert.Same(t, root, same)

	_, err = Project(root, []string{"betta"})

	var unresolved *UnresolvedFieldError
	require.True(t, errors.As(err, &unresolved))
	assert.Equal(t, []string{"betta"}, unresolved.Fields)
	assert.Contains(t, err.Error(), "did you mean beta?")

	dyn, err := Project(NewResolver(nil).ResolveDynamic(), []string{"x", " y", "x"})
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, dyn.Projection)
	assert.True(t, dyn.Resolved())

	_, err = Project(Scalar("s", primitive.KindString), []string{"s"})
	require.Error(t, err)
}
