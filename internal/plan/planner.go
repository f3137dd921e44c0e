package plan

import (
	"errors"

	"search-mapper/internal/mapping"
	"search-mapper/internal/schema"
)

// requirement is one required document path and the record field behind it.
type requirement struct {
	path  mapping.FieldPath
	field string
}

// Build plans a query over a resolved schema.
func Build(root *schema.Node, metadata []mapping.MetadataKind, userFilter []mapping.FieldPath) (*ProjectionPlan, error) {
	if root == nil {
		return nil, errors.New("plan: schema is nil")
	}

	if !root.Resolved() {
		return nil, errors.New("plan: schema is not resolved")
	}

	w := &walker{seen: map[string]struct{}{}}
	w.visit(root, "")

	p := &ProjectionPlan{
		Schema:   root,
		Metadata: append([]mapping.MetadataKind(nil), metadata...),
		Dynamic:  w.dynamic,
		Exact:    len(w.dynamic) == 0,
	}

	if userFilter != nil {
		p.UserFilter = append([]mapping.FieldPath{}, userFilter...)
	}

	if p.Exact {
		p.Required = make([]mapping.FieldPath, len(w.required))
		for i, r := range w.required {
			p.Required[i] = r.path
		}
	}

	switch {
	case userFilter == nil && p.Exact:
		p.Filter = p.Required
	case userFilter == nil:
		p.Filter = nil
	case !p.Exact:
		return nil, &ProjectionConflictError{Requested: p.UserFilter, Conflicting: p.Dynamic, Superset: true}
	default:
		if err := checkCovered(w.required, p.UserFilter); err != nil {
			return nil, err
		}

		p.Filter = p.UserFilter
	}

	return p, nil
}

// checkCovered fails with the required paths no filter entry covers. Index
// segments are ignored on both sides.
func checkCovered(required []requirement, filter []mapping.FieldPath) error {
	conflict := &ProjectionConflictError{Requested: filter}

	for _, r := range required {
		covered := false

		for _, f := range filter {
			if f.KeysOnly().Covers(r.path) {
				covered = true
				break
			}
		}

		if !covered {
			conflict.Conflicting = append(conflict.Conflicting, r.path)
			conflict.Fields = append(conflict.Fields, r.field)
		}
	}

	if len(conflict.Conflicting) > 0 {
		return conflict
	}

	return nil
}

type walker struct {
	required []requirement
	dynamic  []mapping.FieldPath
	seen     map[string]struct{}
}

func (w *walker) visit(n *schema.Node, field string) {
	switch n.Kind {
	case schema.KindAny:
		w.dynamic = append(w.dynamic, n.Path.KeysOnly())
	case schema.KindScalar:
		w.require(n, field)
	case schema.KindTuple:
		if len(n.Children) == 0 {
			w.require(n, field)
			return
		}

		for _, c := range n.Children {
			w.visit(c, qualify(field, c.Name))
		}
	case schema.KindBag:
		// elements share the bag's path, a tuple element contributes its fields
		if n.Elem.Kind == schema.KindTuple && len(n.Elem.Children) > 0 {
			w.visit(n.Elem, field)
			return
		}

		w.require(n, field)
		w.visitElem(n.Elem)
	case schema.KindMap:
		w.require(n, field)
		w.visitElem(n.Elem)
	}
}

// visitElem only looks for dynamic nodes under a collection that is required
// as a whole.
func (w *walker) visitElem(elem *schema.Node) {
	elem.Walk(func(node *schema.Node) bool {
		if node.Kind == schema.KindAny {
			w.dynamic = append(w.dynamic, node.Path.KeysOnly())
		}

		return true
	})
}

func (w *walker) require(n *schema.Node, field string) {
	path := n.Path.KeysOnly()

	key := path.String()
	if _, dup := w.seen[key]; dup {
		return
	}

	w.seen[key] = struct{}{}
	w.required = append(w.required, requirement{path: path, field: field})
}

func qualify(parent, name string) string {
	if parent == "" {
		return name
	}

	return parent + "." + name
}
