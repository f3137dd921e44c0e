package decode

import (
	"errors"
	"fmt"
	"strings"

	"github.com/buger/jsonparser"
	"go.mongodb.org/mongo-driver/v2/bson"

	"search-mapper/internal/common"
	"search-mapper/internal/mapping"
)

// parseJSON reads a JSON document into an ordered tree: objects become
// bson.D so key order survives, arrays bson.A, integers int64 and other
// numbers float64.
func parseJSON(data []byte) (any, error) {
	v, typ, _, err := jsonparser.Get(data)
	if err != nil {
		return nil, fmt.Errorf("malformed JSON document: %w", err)
	}

	return jsonValue(v, typ)
}

func jsonValue(v []byte, typ jsonparser.ValueType) (any, error) {
	switch typ {
	case jsonparser.Object:
		doc := bson.D{}

		err := jsonparser.ObjectEach(v, func(key, val []byte, dt jsonparser.ValueType, _ int) error {
			k, err := jsonparser.ParseString(key)
			if err != nil {
				return err
			}

			child, err := jsonValue(val, dt)
			if err != nil {
				return err
			}

			doc = append(doc, bson.E{Key: k, Value: child})

			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("malformed JSON object: %w", err)
		}

		return doc, nil
	case jsonparser.Array:
		arr := bson.A{}

		var inner error

		_, err := jsonparser.ArrayEach(v, func(val []byte, dt jsonparser.ValueType, _ int, cbErr error) {
			if inner != nil {
				return
			}

			if cbErr != nil {
				inner = cbErr
				return
			}

			child, err := jsonValue(val, dt)
			if err != nil {
				inner = err
				return
			}

			arr = append(arr, child)
		})
		if err == nil {
			err = inner
		}

		if err != nil {
			return nil, fmt.Errorf("malformed JSON array: %w", err)
		}

		return arr, nil
	case jsonparser.String:
		return jsonparser.ParseString(v)
	case jsonparser.Number:
		if i, err := jsonparser.ParseInt(v); err == nil {
			return i, nil
		}

		return jsonparser.ParseFloat(v)
	case jsonparser.Boolean:
		return jsonparser.ParseBoolean(v)
	case jsonparser.Null:
		return nil, nil
	default:
		return nil, fmt.Errorf("unexpected JSON value %q", v)
	}
}

func parseBSON(data []byte) (any, error) {
	raw := bson.Raw(data)
	if err := raw.Validate(); err != nil {
		return nil, fmt.Errorf("malformed BSON document: %w", err)
	}

	var doc bson.D
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("malformed BSON document: %w", err)
	}

	return doc, nil
}

// object is an ordered view over the object forms a tree may hold.
type object interface {
	get(key string) (any, bool)
	each(fn func(key string, v any))
}

type docObject bson.D

func (o docObject) get(key string) (any, bool) {
	for _, e := range o {
		if e.Key == key {
			return e.Value, true
		}
	}

	return nil, false
}

func (o docObject) each(fn func(string, any)) {
	for _, e := range o {
		fn(e.Key, e.Value)
	}
}

// mapObject iterates in sorted key order so output is deterministic.
type mapObject map[string]any

func (o mapObject) get(key string) (any, bool) {
	v, ok := o[key]
	return v, ok
}

func (o mapObject) each(fn func(string, any)) {
	for _, k := range common.SortedKeys(o) {
		fn(k, o[k])
	}
}

func asObject(v any) (object, bool) {
	switch o := v.(type) {
	case object:
		return o, true
	case bson.D:
		return docObject(o), true
	case bson.M:
		return mapObject(o), true
	case map[string]any:
		return mapObject(o), true
	default:
		return nil, false
	}
}

func asArray(v any) ([]any, bool) {
	switch a := v.(type) {
	case bson.A:
		return a, true
	case []any:
		return a, true
	case []string:
		out := make([]any, len(a))
		for i, s := range a {
			out[i] = s
		}

		return out, true
	default:
		return nil, false
	}
}

var errMissing = errors.New("missing")

// lookup follows rel from v. When a key misses, the remaining keys are tried
// as one dotted key.
func lookup(v any, rel mapping.FieldPath) (any, error) {
	cur := v

	for i := 0; i < len(rel.Segments); i++ {
		seg := rel.Segments[i]
		if seg.IsIndex {
			arr, ok := asArray(cur)
			if !ok || seg.Index >= len(arr) {
				return nil, errMissing
			}

			cur = arr[seg.Index]

			continue
		}

		obj, ok := asObject(cur)
		if !ok {
			return nil, errMissing
		}

		next, ok := obj.get(seg.Key)
		if !ok {
			return lookupDotted(obj, rel.Segments[i:])
		}

		cur = next
	}

	return cur, nil
}

func lookupDotted(obj object, rest []mapping.PathSegment) (any, error) {
	keys := make([]string, 0, len(rest))

	for j, seg := range rest {
		if seg.IsIndex {
			return nil, errMissing
		}

		keys = append(keys, seg.Key)
		if j == 0 {
			continue
		}

		if found, ok := obj.get(strings.Join(keys, ".")); ok {
			return lookup(found, mapping.FieldPath{Segments: rest[j+1:]})
		}
	}

	return nil, errMissing
}
