package record

import (
	"strings"

	"search-mapper/internal/mapping"
	"search-mapper/internal/plan"
	"search-mapper/internal/schema"
	"search-mapper/internal/value"
)

// Mapper is immutable and safe for concurrent use.
type Mapper struct {
	aliases *mapping.AliasTable
}

// NewMapper returns a mapper renaming dynamic fields through aliases. A nil
// table renames nothing.
func NewMapper(aliases *mapping.AliasTable) *Mapper {
	return &Mapper{aliases: aliases}
}

// Map builds the record of one hit from its decoded body. It never fails:
// missing metadata is recorded in the record's anomalies.
func (m *Mapper) Map(body value.Value, p *plan.ProjectionPlan, md Metadata) Record {
	var rec Record

	reserved := make(map[string]struct{}, len(p.Metadata))
	for _, kind := range p.Metadata {
		reserved[kind.FieldName()] = struct{}{}
	}

	var fields []value.Field
	if p.Schema == nil || p.Schema.Kind == schema.KindAny {
		fields = m.dynamicBody(body, p.Schema)
	} else {
		fields = explicitBody(body, p.Schema)
	}

	out := make([]value.Field, 0, len(fields)+len(p.Metadata))

	for _, f := range fields {
		if _, ok := reserved[f.Name]; ok {
			continue
		}

		out = append(out, f)
	}

	for _, kind := range p.Metadata {
		v, ok := md.Get(kind)
		if !ok {
			rec.Anomalies = append(rec.Anomalies, &MetadataUnavailableError{Kind: kind})
		}

		out = append(out, value.Field{Name: kind.FieldName(), Value: v})
	}

	rec.Value = value.Tuple(out...)

	return rec
}

// explicitBody takes exactly the schema's top-level fields in schema order.
func explicitBody(body value.Value, root *schema.Node) []value.Field {
	if root.Kind != schema.KindTuple {
		return []value.Field{{Name: root.Name, Value: body}}
	}

	fields := make([]value.Field, len(root.Children))
	for i, c := range root.Children {
		v, _ := body.Get(c.Name)
		fields[i] = value.Field{Name: c.Name, Value: v}
	}

	return fields
}

// dynamicBody renames the decoded fields through the alias table and applies
// the recorded projection.
func (m *Mapper) dynamicBody(body value.Value, root *schema.Node) []value.Field {
	renamed := m.rename(body, mapping.Root, true)

	var projection []string
	if root != nil {
		projection = root.Projection
	}

	if len(projection) == 0 {
		return renamed.Fields()
	}

	fields := make([]value.Field, len(projection))
	for i, name := range projection {
		v, _ := renamed.Get(name)
		fields[i] = value.Field{Name: name, Value: v}
	}

	return fields
}

// rename walks tuples and bags and renames every field whose document path
// is aliased. Nested fields take the last segment of the alias name. An
// unaliased field is dropped when an aliased sibling claims its name.
func (m *Mapper) rename(v value.Value, path mapping.FieldPath, top bool) value.Value {
	switch v.Kind() {
	case value.KindTuple:
		fields := v.Fields()
		names := make([]string, len(fields))
		claimed := map[string]struct{}{}
		aliased := make([]bool, len(fields))

		for i, f := range fields {
			names[i] = f.Name

			if name, ok := m.nameOf(path.Child(f.Name), top); ok {
				names[i] = name
				aliased[i] = true
				claimed[name] = struct{}{}
			}
		}

		out := make([]value.Field, 0, len(fields))

		for i, f := range fields {
			if _, ok := claimed[names[i]]; ok && !aliased[i] {
				continue
			}

			out = append(out, value.Field{Name: names[i], Value: m.rename(f.Value, path.Child(f.Name), false)})
		}

		return value.Tuple(out...)
	case value.KindBag:
		items := v.Items()
		for i, item := range items {
			items[i] = m.rename(item, path, false)
		}

		return value.Bag(items...)
	default:
		return v
	}
}

func (m *Mapper) nameOf(path mapping.FieldPath, top bool) (string, bool) {
	if m.aliases == nil {
		return "", false
	}

	name, ok := m.aliases.NameOf(path)
	if !ok {
		return "", false
	}

	if !top {
		if i := strings.LastIndexByte(name, '.'); i >= 0 {
			name = name[i+1:]
		}
	}

	return name, true
}
