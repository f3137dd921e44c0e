package source

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/buger/jsonparser"
	"github.com/pkg/errors"

	"search-mapper/internal/mapping"
	"search-mapper/internal/record"
	"search-mapper/internal/value"
)

const maxLine = 16 << 20

// NDJSON reads search hits from newline-delimited JSON files. The index name
// is the file path, relative to Dir unless absolute. Each line is one hit
// envelope: _index, _id, _score, _routing, _parent, _version and _source.
type NDJSON struct {
	Dir string
}

func (n NDJSON) path(index string) string {
	if n.Dir == "" || filepath.IsAbs(index) {
		return index
	}

	return filepath.Join(n.Dir, index)
}

func (n NDJSON) Read(ctx context.Context, req Request) (<-chan Hit, <-chan error) {
	out := make(chan Hit, 100)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		if err := n.read(ctx, req, out); err != nil {
			errCh <- err
		}
	}()

	return out, errCh
}

func (n NDJSON) read(ctx context.Context, req Request, out chan<- Hit) error {
	inc, err := parseIncludes(req.Includes)
	if err != nil {
		return err
	}

	name := n.path(req.Index)

	f, err := os.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return errors.Wrapf(ErrIndexNotFound, "index %q", req.Index)
		}

		return errors.Wrapf(err, "failed to open index %q", req.Index)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64<<10), maxLine)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		hit := parseHit(append([]byte(nil), line...), req, inc)

		select {
		case out <- hit:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return errors.Wrapf(scanner.Err(), "failed to read index %q", req.Index)
}

// parseHit never fails: an envelope it cannot read is passed on whole as the
// body so the decoder reports it for this hit only.
func parseHit(line []byte, req Request, inc includes) Hit {
	hit := Hit{Metadata: record.Metadata{}}

	body, dt, _, err := jsonparser.Get(line, "_source")

	switch {
	case err == nil && dt == jsonparser.Object:
		if inc != nil {
			if filtered, ferr := inc.filterJSON(body); ferr == nil {
				body = filtered
			}
		}

		hit.Source = json.RawMessage(body)
	case errors.Is(err, jsonparser.KeyPathNotFoundError), err == nil && dt == jsonparser.Null:
	case err == nil:
		var b bytes.Buffer
		writeRaw(&b, body, dt)
		hit.Source = json.RawMessage(b.Bytes())
	default:
		hit.Source = json.RawMessage(line)
		return hit
	}

	for _, kind := range req.Metadata {
		if v, ok := metadataOf(line, kind, req.Index); ok {
			hit.Metadata[kind] = v
		}
	}

	return hit
}

func metadataOf(line []byte, kind mapping.MetadataKind, index string) (value.Value, bool) {
	key := kind.FieldName()

	switch kind {
	case mapping.MetadataScore:
		if f, err := jsonparser.GetFloat(line, key); err == nil {
			return value.Float64(f), true
		}
	case mapping.MetadataVersion:
		if i, err := jsonparser.GetInt(line, key); err == nil {
			return value.Int64(i), true
		}
	case mapping.MetadataIndex:
		if s, err := jsonparser.GetString(line, key); err == nil {
			return value.String(s), true
		}

		return value.String(index), true
	case mapping.MetadataParent:
		if v, ok := textOf(line, key); ok {
			return v, true
		}

		return joinParent(line)
	default:
		return textOf(line, key)
	}

	return value.Null(), false
}

// textOf reads a string field; numeric ids and routing values are read as text.
func textOf(line []byte, key string) (value.Value, bool) {
	if s, err := jsonparser.GetString(line, key); err == nil {
		return value.String(s), true
	}

	if raw, dt, _, err := jsonparser.Get(line, key); err == nil && dt == jsonparser.Number {
		return value.String(string(raw)), true
	}

	return value.Null(), false
}

// joinParent reads the parent id of a join field, returned by the store as a
// "fields" entry named "<join>#<parent relation>".
func joinParent(line []byte) (value.Value, bool) {
	parent := value.Null()
	found := false

	_ = jsonparser.ObjectEach(line, func(key, val []byte, dt jsonparser.ValueType, _ int) error {
		if found || !strings.Contains(string(key), "#") {
			return nil
		}

		switch dt {
		case jsonparser.Array:
			if s, err := jsonparser.GetString(val, "[0]"); err == nil {
				parent, found = value.String(s), true
			}
		case jsonparser.String:
			if s, err := jsonparser.ParseString(val); err == nil {
				parent, found = value.String(s), true
			}
		}

		return nil
	}, "fields")

	return parent, found
}
