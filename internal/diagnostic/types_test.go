package diagnostic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnostics_ErrorAggregation(t *testing.T) {
	var d Diagnostics

	assert.True(t, d.IsValid())
	assert.NoError(t, d.Error())

	d.AddError("unresolved_field", "no alias or identity path", "schema", "links")
	d.AddSuggestion("link")
	d.AddWarning("unused_alias", "alias is never referenced", "aliases", "old")
	d.AddInfo("superset_plan", "schema has dynamic nodes", "schema", "")

	require.False(t, d.IsValid())
	assert.True(t, d.HasErrors())
	assert.Len(t, d.Warnings, 1)
	assert.Len(t, d.Infos, 1)

	err := d.Error()
	require.Error(t, err)
	assert.Equal(t,
		"[schema] links: [unresolved_field] no alias or identity path (did you mean link?)",
		err.Error())
}

func TestDiagnostics_FieldPaths(t *testing.T) {
	var d Diagnostics
	d.AddError("unresolved_field", "x", "schema", "a")
	d.AddError("duplicate_field", "x", "schema", "b")
	d.AddError("unresolved_field", "x", "schema", "c")

	assert.Equal(t, []string{"a", "c"}, d.FieldPaths("unresolved_field"))
}

func TestDiagnostics_Merge(t *testing.T) {
	var a, b Diagnostics
	a.AddError("e1", "first", "", "")
	b.AddError("e2", "second", "", "")
	b.AddWarning("w1", "warn", "", "")

	a.Merge(b)

	assert.Len(t, a.Errors, 2)
	assert.Len(t, a.Warnings, 1)
	assert.Equal(t, "[e1] first; [e2] second", a.Error().Error())
}

func TestDiagnosticSeverity_String(t *testing.T) {
	assert.Equal(t, "info", DiagnosticInfo.String())
	assert.Equal(t, "warning", DiagnosticWarning.String())
	assert.Equal(t, "error", DiagnosticError.String())
	assert.Equal(t, "unknown", DiagnosticSeverity(42).String())
}
