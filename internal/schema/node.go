// Package schema describes the target record shape and resolves it against
// the alias table before a query runs.
package schema

import (
	"fmt"
	"strings"

	"search-mapper/internal/common"
	"search-mapper/internal/mapping"
	"search-mapper/primitive"
)

// Kind is the shape of a schema node.
type Kind int

const (
	KindAny Kind = iota
	KindScalar
	KindTuple
	KindBag
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindAny:
		return mapping.TypeAny
	case KindScalar:
		return "scalar"
	case KindTuple:
		return mapping.TypeTuple
	case KindBag:
		return mapping.TypeBag
	case KindMap:
		return mapping.TypeMap
	default:
		return common.UnknownStr
	}
}

// Node is one node of a record schema.
//
// After resolution Path is the absolute document path of the node and Rel the
// path relative to the enclosing tuple (or bag element). Bag and map elements
// share the path of their collection and have an empty Rel.
type Node struct {
	Name     string
	Kind     Kind
	Scalar   primitive.KindEnum
	Children []*Node
	Elem     *Node

	Path mapping.FieldPath
	Rel  mapping.FieldPath

	// Projection narrows an Any root to these record fields, applied per document.
	Projection []string

	resolved bool
}

func Any(name string) *Node {
	return &Node{Name: name, Kind: KindAny}
}

func Scalar(name string, kind primitive.KindEnum) *Node {
	return &Node{Name: name, Kind: KindScalar, Scalar: kind}
}

func Tuple(name string, children ...*Node) *Node {
	return &Node{Name: name, Kind: KindTuple, Children: children}
}

// Bag returns a bag node; a nil elem means elements of any shape.
func Bag(name string, elem *Node) *Node {
	if elem == nil {
		elem = Any("")
	}

	return &Node{Name: name, Kind: KindBag, Elem: elem}
}

// Map returns a map node; a nil elem means values of any shape.
func Map(name string, elem *Node) *Node {
	if elem == nil {
		elem = Any("")
	}

	return &Node{Name: name, Kind: KindMap, Elem: elem}
}

// Resolved reports whether the node went through a Resolver.
func (n *Node) Resolved() bool {
	return n != nil && n.resolved
}

// Child returns the named child of a tuple.
func (n *Node) Child(name string) *Node {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}

	return nil
}

// ChildNames returns the tuple's child names in declaration order.
func (n *Node) ChildNames() []string {
	names := make([]string, len(n.Children))
	for i, c := range n.Children {
		names[i] = c.Name
	}

	return names
}

// HasAny reports whether an Any node occurs anywhere under n, n included.
func (n *Node) HasAny() bool {
	found := false

	n.Walk(func(node *Node) bool {
		if node.Kind == KindAny {
			found = true
		}

		return !found
	})

	return found
}

// Walk visits n and its descendants depth-first until fn returns false.
func (n *Node) Walk(fn func(*Node) bool) bool {
	if n == nil {
		return true
	}

	if !fn(n) {
		return false
	}

	for _, c := range n.Children {
		if !c.Walk(fn) {
			return false
		}
	}

	return n.Elem.Walk(fn)
}

// Clone returns a deep copy.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}

	c := *n
	c.Path = mapping.FieldPath{Segments: append([]mapping.PathSegment(nil), n.Path.Segments...)}
	c.Rel = mapping.FieldPath{Segments: append([]mapping.PathSegment(nil), n.Rel.Segments...)}
	c.Projection = append([]string(nil), n.Projection...)
	c.Elem = n.Elem.Clone()

	if n.Children != nil {
		c.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			c.Children[i] = child.Clone()
		}
	}

	return &c
}

// TypeName returns the mapping file type name of the node.
func (n *Node) TypeName() string {
	if n.Kind == KindScalar {
		return n.Scalar.TypeName()
	}

	return n.Kind.String()
}

// String renders the schema compactly: name:type for scalars, (..) for
// tuples, {..} for bags, [..] for maps.
func (n *Node) String() string {
	var b strings.Builder

	n.write(&b)

	return b.String()
}

func (n *Node) write(b *strings.Builder) {
	if n.Name != "" {
		b.WriteString(n.Name)
		b.WriteByte(':')
	}

	switch n.Kind {
	case KindTuple:
		b.WriteByte('(')

		for i, c := range n.Children {
			if i > 0 {
				b.WriteByte(',')
			}

			c.write(b)
		}

		b.WriteByte(')')
	case KindBag:
		b.WriteByte('{')
		n.Elem.write(b)
		b.WriteByte('}')
	case KindMap:
		b.WriteByte('[')
		n.Elem.write(b)
		b.WriteByte(']')
	default:
		b.WriteString(n.TypeName())
	}
}

// FromFields builds an unresolved root tuple from mapping file fields.
// An empty list yields nil: no explicit schema.
func FromFields(fields []mapping.SchemaField) (*Node, error) {
	if len(fields) == 0 {
		return nil, nil
	}

	children := make([]*Node, 0, len(fields))

	for i := range fields {
		c, err := fromField(&fields[i])
		if err != nil {
			return nil, err
		}

		children = append(children, c)
	}

	return Tuple("", children...), nil
}

func fromField(f *mapping.SchemaField) (*Node, error) {
	switch strings.ToLower(f.Type) {
	case mapping.TypeAny, "":
		return Any(f.Name), nil
	case mapping.TypeTuple:
		children := make([]*Node, 0, len(f.Fields))

		for i := range f.Fields {
			c, err := fromField(&f.Fields[i])
			if err != nil {
				return nil, err
			}

			children = append(children, c)
		}

		return Tuple(f.Name, children...), nil
	case mapping.TypeBag, mapping.TypeMap:
		var elem *Node

		if f.Elem != nil {
			e, err := fromField(f.Elem)
			if err != nil {
				return nil, err
			}

			e.Name = ""
			elem = e
		}

		if strings.ToLower(f.Type) == mapping.TypeBag {
			return Bag(f.Name, elem), nil
		}

		return Map(f.Name, elem), nil
	default:
		kind, ok := primitive.ParseKind(f.Type)
		if !ok {
			return nil, fmt.Errorf("field %q: unknown type %q", f.Name, f.Type)
		}

		return Scalar(f.Name, kind), nil
	}
}

// ToField converts the node back to its mapping file form.
func (n *Node) ToField() mapping.SchemaField {
	f := mapping.SchemaField{Name: n.Name, Type: n.TypeName()}

	for _, c := range n.Children {
		f.Fields = append(f.Fields, c.ToField())
	}

	if n.Elem != nil {
		elem := n.Elem.ToField()
		f.Elem = &elem
	}

	return f
}
