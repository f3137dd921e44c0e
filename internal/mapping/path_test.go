package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePath(t *testing.T) {
	tests := []struct {
		expr     string
		segments []PathSegment
	}{
		{"name", []PathSegment{{Key: "name"}}},
		{"author.name", []PathSegment{{Key: "author"}, {Key: "name"}}},
		{"@timestamp", []PathSegment{{Key: "@timestamp"}}},
		{"links[0]", []PathSegment{{Key: "links"}, {Index: 0, IsIndex: true}}},
		{"a[1][2].b", []PathSegment{{Key: "a"}, {Index: 1, IsIndex: true}, {Index: 2, IsIndex: true}, {Key: "b"}}},
		{"Name", []PathSegment{{Key: "Name"}}},
		{`a\.b`, []PathSegment{{Key: "a.b"}}},
		{`x\[0\].y`, []PathSegment{{Key: "x[0]"}, {Key: "y"}}},
		{`a\\.b`, []PathSegment{{Key: `a\`}, {Key: "b"}}},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			p, err := ParsePath(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.segments, p.Segments)
			assert.Equal(t, tt.expr, p.String())
		})
	}
}

func TestParsePath_Invalid(t *testing.T) {
	for _, expr := range []string{"", "a..b", ".a", "a.", "a[", "a[x]", "a]", "[0]", "a[-1]", "a[0]b", `a\`, `a\\\`} {
		t.Run(expr, func(t *testing.T) {
			_, err := ParsePath(expr)
			assert.Error(t, err)
		})
	}
}

func TestFieldPath_Relations(t *testing.T) {
	ab := MustParsePath("a.b")
	a := MustParsePath("a")
	abc := MustParsePath("a.b.c")
	ax := MustParsePath("ax")

	assert.True(t, abc.HasPrefix(ab))
	assert.True(t, ab.HasPrefix(ab))
	assert.False(t, ab.HasPrefix(abc))
	assert.True(t, abc.HasPrefix(Root))

	assert.True(t, a.Overlaps(abc))
	assert.True(t, abc.Overlaps(a))
	assert.False(t, a.Overlaps(ax), "prefix is segment-wise, not textual")

	assert.True(t, ab.Equal(MustParsePath("a.b")))
	assert.False(t, ab.Equal(MustParsePath("A.b")), "keys are case-sensitive")
}

func TestFieldPath_Covers(t *testing.T) {
	tests := []struct {
		filter, target string
		expected       bool
	}{
		{"name", "name", true},
		{"author", "author.name", true},
		{"author.name", "author", false},
		{"author.*", "author.name", true},
		{"*", "anything", true},
		{"a.*.c", "a.b.c", true},
		{"a.*.c", "a.b.d", false},
		{"links", "linksx", false},
	}

	for _, tt := range tests {
		t.Run(tt.filter+"_"+tt.target, func(t *testing.T) {
			assert.Equal(t, tt.expected, MustParsePath(tt.filter).Covers(MustParsePath(tt.target)))
		})
	}
}

func TestFieldPath_Building(t *testing.T) {
	p := MustParsePath("links[3].href")

	assert.Equal(t, "links.href", p.KeysOnly().String())
	assert.Equal(t, "links[3].href.x", p.Child("x").String())
	assert.Equal(t, 3, p.Len())

	last, ok := p.Last()
	require.True(t, ok)
	assert.Equal(t, "href", last.Key)

	_, ok = Root.Last()
	assert.False(t, ok)
	assert.True(t, Root.IsRoot())

	dotted := Keys("a.b", "c")
	assert.Equal(t, 2, dotted.Len())
	assert.Equal(t, "a.b", dotted.Segments[0].Key)
	assert.Equal(t, `a\.b.c`, dotted.String())
	assert.True(t, dotted.Equal(MustParsePath(dotted.String())))
}
