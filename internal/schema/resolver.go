package schema

import (
	"errors"
	"fmt"
	"strings"

	"search-mapper/internal/diagnostic"
	"search-mapper/internal/mapping"
	"search-mapper/internal/match"
)

const codeUnresolved = "unresolved_field"

// UnresolvedFieldError lists every schema field that could not be tied to a
// document path.
type UnresolvedFieldError struct {
	Fields      []string
	Diagnostics *diagnostic.Diagnostics
}

func (e *UnresolvedFieldError) Error() string {
	return "unresolved record fields: " + e.Diagnostics.Error().Error()
}

// Resolver ties record schemas to document paths through an alias table.
type Resolver struct {
	aliases *mapping.AliasTable
}

// NewResolver returns a resolver over aliases. A nil table means no aliases
// with identity fallback.
func NewResolver(aliases *mapping.AliasTable) *Resolver {
	if aliases == nil {
		aliases, _ = mapping.NewAliasTable(nil)
	}

	return &Resolver{aliases: aliases}
}

// ResolveDynamic returns the schema-on-read root: a single Any node whose
// shape is discovered per document.
func (r *Resolver) ResolveDynamic() *Node {
	return &Node{Kind: KindAny, resolved: true}
}

// ResolveExplicit resolves a copy of the user schema. Top-level fields go
// through the alias table; a nested field first looks up its qualified name
// (parent.child) and otherwise hangs its own name under the parent's path.
// All unresolved fields are reported together.
func (r *Resolver) ResolveExplicit(user *Node) (*Node, error) {
	if user == nil {
		return nil, errors.New("explicit schema is nil")
	}

	if user.Kind == KindAny {
		return r.ResolveDynamic(), nil
	}

	if user.Kind != KindTuple {
		return nil, fmt.Errorf("explicit schema root must be a tuple, got %s", user.Kind)
	}

	root := user.Clone()
	root.Path, root.Rel = mapping.Root, mapping.Root
	root.resolved = true

	diags := &diagnostic.Diagnostics{}
	r.resolveChildren(diags, root, "", true)

	if diags.HasErrors() {
		return nil, &UnresolvedFieldError{Fields: diags.FieldPaths(codeUnresolved), Diagnostics: diags}
	}

	return root, nil
}

// resolveChildren resolves the children of a tuple whose Path is set. For a
// bag element tuple that path is the bag's own path.
func (r *Resolver) resolveChildren(diags *diagnostic.Diagnostics, tuple *Node, qualifier string, top bool) {
	for _, c := range tuple.Children {
		qualified := c.Name
		if qualifier != "" {
			qualified = qualifier + "." + c.Name
		}

		rel, ok := r.relativePath(diags, tuple.Path, qualified, c.Name, top)
		if !ok {
			continue
		}

		c.Rel = rel
		c.Path = tuple.Path.Append(rel)
		c.resolved = true

		r.resolveNested(diags, c, qualified)
	}
}

func (r *Resolver) resolveNested(diags *diagnostic.Diagnostics, n *Node, qualified string) {
	switch n.Kind {
	case KindTuple:
		r.resolveChildren(diags, n, qualified, false)
	case KindBag, KindMap:
		elem := n.Elem
		elem.Path, elem.Rel = n.Path, mapping.Root
		elem.resolved = true

		r.resolveNested(diags, elem, qualified)
	}
}

func (r *Resolver) relativePath(
	diags *diagnostic.Diagnostics,
	base mapping.FieldPath,
	qualified, name string,
	top bool,
) (mapping.FieldPath, bool) {
	if top {
		path, err := r.aliases.Resolve(name)
		if err != nil {
			diags.AddError(codeUnresolved, "no alias and no identity path", mapping.ScopeSchema, qualified)
			diags.AddSuggestion(suggestionsOf(err)...)

			return mapping.FieldPath{}, false
		}

		return path, true
	}

	if path, ok := r.aliases.Lookup(qualified); ok {
		if !path.HasPrefix(base) || path.Len() == base.Len() {
			diags.AddError(codeUnresolved,
				fmt.Sprintf("alias %q (%s) must address a field under %q", qualified, path, base),
				mapping.ScopeSchema, qualified)

			return mapping.FieldPath{}, false
		}

		return mapping.FieldPath{Segments: path.Segments[base.Len():]}, true
	}

	if !r.aliases.Identity() {
		diags.AddError(codeUnresolved,
			fmt.Sprintf("no alias for %q and identity paths are disabled", qualified),
			mapping.ScopeSchema, qualified)
		diags.AddSuggestion(match.Suggest(qualified, r.aliases.Names(), 3)...)

		return mapping.FieldPath{}, false
	}

	return mapping.Keys(name), true
}

func suggestionsOf(err error) []string {
	var unknown *mapping.UnknownFieldError
	if errors.As(err, &unknown) {
		return unknown.Suggestions
	}

	return nil
}

// Project narrows a resolved schema to the requested top-level record fields,
// keeping schema order. On an Any root the selection is recorded in
// Projection and applied while mapping. An empty selection returns node as is.
func Project(node *Node, fields []string) (*Node, error) {
	if node == nil || len(fields) == 0 {
		return node, nil
	}

	if node.Kind == KindAny {
		projected := node.Clone()
		projected.Projection = dedupe(fields)

		return projected, nil
	}

	if node.Kind != KindTuple {
		return nil, fmt.Errorf("cannot project a %s schema", node.Kind)
	}

	wanted := map[string]struct{}{}
	for _, f := range fields {
		wanted[f] = struct{}{}
	}

	diags := &diagnostic.Diagnostics{}
	names := node.ChildNames()

	for _, f := range dedupe(fields) {
		if node.Child(f) == nil {
			diags.AddError(codeUnresolved, fmt.Sprintf("field %q is not in the schema", f), mapping.ScopeFields, f)
			diags.AddSuggestion(match.Suggest(f, names, 3)...)
		}
	}

	if diags.HasErrors() {
		return nil, &UnresolvedFieldError{Fields: diags.FieldPaths(codeUnresolved), Diagnostics: diags}
	}

	projected := node.Clone()
	projected.Children = projected.Children[:0]

	for _, c := range node.Children {
		if _, ok := wanted[c.Name]; ok {
			projected.Children = append(projected.Children, c.Clone())
		}
	}

	return projected, nil
}

func dedupe(names []string) []string {
	seen := map[string]struct{}{}
	result := make([]string, 0, len(names))

	for _, n := range names {
		n = strings.TrimSpace(n)
		if _, dup := seen[n]; dup || n == "" {
			continue
		}

		seen[n] = struct{}{}
		result = append(result, n)
	}

	return result
}
