package decode

import (
	"fmt"
	"strconv"

	"search-mapper/internal/schema"
	"search-mapper/internal/value"
)

type walk struct {
	d         *Decoder
	anomalies []Anomaly
}

func (w *walk) report(kind AnomalyKind, path, format string, args ...any) {
	w.anomalies = append(w.anomalies, Anomaly{Kind: kind, Path: path, Detail: fmt.Sprintf(format, args...)})
}

func (w *walk) decode(raw any, node *schema.Node, path string) value.Value {
	if raw == nil {
		return value.Null()
	}

	switch node.Kind {
	case schema.KindAny:
		return infer(raw)
	case schema.KindTuple:
		return w.tuple(raw, node, path)
	case schema.KindBag:
		return w.bag(raw, node, path)
	case schema.KindMap:
		return w.mapping(raw, node, path)
	default:
		return w.scalar(raw, node, path)
	}
}

// tuple follows schema order; document order and extra keys are ignored.
func (w *walk) tuple(raw any, node *schema.Node, path string) value.Value {
	obj, ok := asObject(raw)
	if !ok {
		w.report(AnomalyMismatch, path, "expected an object for tuple, got %T", raw)
		return value.Null()
	}

	fields := make([]value.Field, 0, len(node.Children))

	for _, c := range node.Children {
		childRaw, err := lookup(obj, c.Rel)
		if err != nil {
			childRaw = nil
		}

		fields = append(fields, value.Field{Name: c.Name, Value: w.decode(childRaw, c, join(path, c.Rel.String()))})
	}

	return value.Tuple(fields...)
}

// bag keeps element order and count; a lone value is a bag of one.
func (w *walk) bag(raw any, node *schema.Node, path string) value.Value {
	arr, ok := asArray(raw)
	if !ok {
		return value.Bag(w.decode(raw, node.Elem, path+"[0]"))
	}

	items := make([]value.Value, len(arr))
	for i, item := range arr {
		items[i] = w.decode(item, node.Elem, path+"["+strconv.Itoa(i)+"]")
	}

	return value.Bag(items...)
}

func (w *walk) mapping(raw any, node *schema.Node, path string) value.Value {
	obj, ok := asObject(raw)
	if !ok {
		w.report(AnomalyMismatch, path, "expected an object for map, got %T", raw)
		return value.Null()
	}

	var entries []value.Field

	obj.each(func(key string, v any) {
		entries = append(entries, value.Field{Name: key, Value: w.decode(v, node.Elem, join(path, key))})
	})

	return value.Map(entries...)
}

func (w *walk) scalar(raw any, node *schema.Node, path string) value.Value {
	if arr, ok := asArray(raw); ok {
		if len(arr) != 1 {
			w.report(AnomalyMismatch, path, "expected a single %s, got %d values", node.Scalar.TypeName(), len(arr))
			return value.Null()
		}

		raw = arr[0]
	}

	if _, ok := asObject(raw); ok {
		w.report(AnomalyMismatch, path, "expected %s, got an object", node.Scalar.TypeName())
		return value.Null()
	}

	if raw == nil {
		return value.Null()
	}

	v, kind, err := w.d.coerce(raw, node.Scalar)

	switch {
	case err == nil:
		return v
	case kind == AnomalyDateFallback:
		w.report(kind, path, "%v", err)
		return v
	default:
		w.report(AnomalyMismatch, path, "%v", err)
		return value.Null()
	}
}

// infer decodes without a schema: objects become tuples in document order,
// arrays bags, scalars keep their natural type.
func infer(raw any) value.Value {
	if raw == nil {
		return value.Null()
	}

	if obj, ok := asObject(raw); ok {
		var fields []value.Field

		obj.each(func(key string, v any) {
			fields = append(fields, value.Field{Name: key, Value: infer(v)})
		})

		return value.Tuple(fields...)
	}

	if arr, ok := asArray(raw); ok {
		items := make([]value.Value, len(arr))
		for i, item := range arr {
			items[i] = infer(item)
		}

		return value.Bag(items...)
	}

	v, _ := natural(raw)

	return v
}

func join(parent, child string) string {
	if parent == "" {
		return child
	}

	if child == "" {
		return parent
	}

	return parent + "." + child
}
