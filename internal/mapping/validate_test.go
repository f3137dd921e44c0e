package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Valid(t *testing.T) {
	cfg, err := Parse([]byte(`
aliases: {artist: name, url: links.href}
schema:
  - artist:chararray
  - name: url
    type: bag
    elem: chararray
  - name: author
    type: tuple
    fields: ["first:chararray", "last:chararray"]
  - name: tags
    type: map
    elem: long
fields: [artist]
metadata: [id, parent]
source_filter: [name, "links.*"]
date_formats: [yyyy-MM-dd, epoch_millis]
coercions: [all]
`))
	require.NoError(t, err)

	res := Validate(cfg)
	assert.True(t, res.IsValid(), "%v", res.Error())
	assert.Empty(t, res.Warnings)
}

func TestValidate_ReportsEverything(t *testing.T) {
	cfg, err := Parse([]byte(`
aliases:
  - {name: a, path: x}
  - {name: a, path: y}
  - {name: b, path: x.z}
  - {name: c, path: "p..q"}
schema:
  - name: title
    type: strng
  - title:chararray
  - name: tags
    type: bag
    fields: [x]
fields: [titel]
metadata: [scor]
source_filter: ["a..b"]
date_formats: [yyyy-qq]
coercions: [safe_numbr]
`))
	require.NoError(t, err)

	res := Validate(cfg)
	require.True(t, res.HasErrors())

	codes := map[string]int{}
	for _, e := range res.Errors {
		codes[e.Code]++
	}

	for _, code := range []string{
		"duplicate_alias", "overlapping_alias", "invalid_alias_path", "unknown_type", "duplicate_field",
		"fields_on_collection", "unknown_selected_field", "unknown_metadata_kind", "invalid_source_filter",
		"invalid_date_format", "unknown_coercion",
	} {
		assert.Equal(t, 1, codes[code], code)
	}

	assert.Equal(t, []string{"titel"}, res.FieldPaths("unknown_selected_field"))
	assert.Contains(t, res.Error().Error(), "did you mean title?")
	assert.Contains(t, res.Error().Error(), "did you mean score?")
	assert.Contains(t, res.Error().Error(), "did you mean safe_number?")
}

func TestValidate_Warnings(t *testing.T) {
	cfg, err := Parse([]byte("read_metadata: false\nmetadata: [id]\nschema: [{name: n, type: long, elem: int}]\n"))
	require.NoError(t, err)

	res := Validate(cfg)
	assert.True(t, res.IsValid())
	require.Len(t, res.Warnings, 2)
	assert.Equal(t, "scalar_with_children", res.Warnings[0].Code)
	assert.Equal(t, "metadata_disabled", res.Warnings[1].Code)
}

func TestValidate_Nil(t *testing.T) {
	res := Validate(nil)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "config_is_nil", res.Errors[0].Code)
}
