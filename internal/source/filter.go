package source

import (
	"bytes"

	"github.com/buger/jsonparser"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/v2/bson"

	"search-mapper/internal/mapping"
)

// includes selects document fields the way a store-side source filter does:
// an entry keeps its path and everything beneath it, arrays are transparent.
type includes []mapping.FieldPath

func parseIncludes(exprs []string) (includes, error) {
	if exprs == nil {
		return nil, nil
	}

	paths, err := mapping.ParsePaths(exprs)
	if err != nil {
		return nil, errors.Wrap(err, "invalid includes")
	}

	inc := make(includes, len(paths))
	for i, p := range paths {
		inc[i] = p.KeysOnly()
	}

	return inc, nil
}

func (inc includes) keep(path mapping.FieldPath) bool {
	for _, p := range inc {
		if p.Covers(path) {
			return true
		}
	}

	return false
}

// descend reports whether some entry selects fields below path.
func (inc includes) descend(path mapping.FieldPath) bool {
	for _, p := range inc {
		if len(p.Segments) > len(path.Segments) && (mapping.FieldPath{Segments: p.Segments[:len(path.Segments)]}).Covers(path) {
			return true
		}
	}

	return false
}

// filterJSON rewrites a JSON object keeping only included fields. Values are
// copied as raw bytes.
func (inc includes) filterJSON(data []byte) ([]byte, error) {
	var b bytes.Buffer
	if err := inc.writeObject(&b, data, mapping.Root); err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}

func (inc includes) writeObject(b *bytes.Buffer, data []byte, path mapping.FieldPath) error {
	b.WriteByte('{')

	first := true
	field := func(key []byte) {
		if !first {
			b.WriteByte(',')
		}

		first = false

		b.WriteByte('"')
		b.Write(key)
		b.WriteString(`":`)
	}

	err := jsonparser.ObjectEach(data, func(key, val []byte, dt jsonparser.ValueType, _ int) error {
		name, err := jsonparser.ParseString(key)
		if err != nil {
			return err
		}

		child := path.Child(name)

		switch {
		case inc.keep(child):
			field(key)
			writeRaw(b, val, dt)
		case !inc.descend(child):
		case dt == jsonparser.Object:
			field(key)
			return inc.writeObject(b, val, child)
		case dt == jsonparser.Array:
			field(key)
			return inc.writeArray(b, val, child)
		}

		return nil
	})
	if err != nil {
		return err
	}

	b.WriteByte('}')

	return nil
}

func (inc includes) writeArray(b *bytes.Buffer, data []byte, path mapping.FieldPath) error {
	b.WriteByte('[')

	first := true

	var inner error

	_, err := jsonparser.ArrayEach(data, func(val []byte, dt jsonparser.ValueType, _ int, cbErr error) {
		if inner != nil {
			return
		}

		if cbErr != nil {
			inner = cbErr
			return
		}

		if dt != jsonparser.Object && dt != jsonparser.Array {
			return
		}

		if !first {
			b.WriteByte(',')
		}

		first = false

		if dt == jsonparser.Object {
			inner = inc.writeObject(b, val, path)
		} else {
			inner = inc.writeArray(b, val, path)
		}
	})
	if err == nil {
		err = inner
	}

	if err != nil {
		return err
	}

	b.WriteByte(']')

	return nil
}

// writeRaw copies a value from jsonparser; strings come without their quotes.
func writeRaw(b *bytes.Buffer, val []byte, dt jsonparser.ValueType) {
	if dt == jsonparser.String {
		b.WriteByte('"')
		b.Write(val)
		b.WriteByte('"')

		return
	}

	b.Write(val)
}

// filterDoc is filterJSON for decoded BSON documents.
func (inc includes) filterDoc(doc bson.D, path mapping.FieldPath) bson.D {
	out := bson.D{}

	for _, e := range doc {
		child := path.Child(e.Key)

		switch {
		case inc.keep(child):
			out = append(out, e)
		case !inc.descend(child):
		default:
			switch v := e.Value.(type) {
			case bson.D:
				out = append(out, bson.E{Key: e.Key, Value: inc.filterDoc(v, child)})
			case bson.A:
				out = append(out, bson.E{Key: e.Key, Value: inc.filterArray(v, child)})
			}
		}
	}

	return out
}

func (inc includes) filterArray(arr bson.A, path mapping.FieldPath) bson.A {
	out := bson.A{}

	for _, item := range arr {
		switch v := item.(type) {
		case bson.D:
			out = append(out, inc.filterDoc(v, path))
		case bson.A:
			out = append(out, inc.filterArray(v, path))
		}
	}

	return out
}
