package source

import (
	"bufio"
	"context"
	"encoding/binary"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/v2/bson"

	"search-mapper/internal/mapping"
	"search-mapper/internal/record"
	"search-mapper/internal/value"
)

const maxDocument = 16 << 20

// BSONDump reads documents from a mongodump style file: BSON documents
// written back to back. The index name is the file path, relative to Dir
// unless absolute. Documents carry their body inline and _id as identifier.
type BSONDump struct {
	Dir string
}

func (d BSONDump) path(index string) string {
	if d.Dir == "" || filepath.IsAbs(index) {
		return index
	}

	return filepath.Join(d.Dir, index)
}

func (d BSONDump) Read(ctx context.Context, req Request) (<-chan Hit, <-chan error) {
	out := make(chan Hit, 100)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		if err := d.read(ctx, req, out); err != nil {
			errCh <- err
		}
	}()

	return out, errCh
}

func (d BSONDump) read(ctx context.Context, req Request, out chan<- Hit) error {
	inc, err := parseIncludes(req.Includes)
	if err != nil {
		return err
	}

	f, err := os.Open(d.path(req.Index))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return errors.Wrapf(ErrIndexNotFound, "index %q", req.Index)
		}

		return errors.Wrapf(err, "failed to open index %q", req.Index)
	}
	defer f.Close()

	r := bufio.NewReader(f)

	for {
		doc, err := nextDocument(r)
		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			return errors.Wrapf(err, "failed to read index %q", req.Index)
		}

		hit := documentHit(doc, req, inc)

		select {
		case out <- hit:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// nextDocument returns io.EOF only at a document boundary.
func nextDocument(r io.Reader) (bson.Raw, error) {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, errors.New("truncated document length")
		}

		return nil, err
	}

	size := int(int32(binary.LittleEndian.Uint32(header[:])))
	if size < 5 || size > maxDocument {
		return nil, errors.Errorf("invalid document length %d", size)
	}

	doc := make([]byte, size)
	copy(doc, header[:])

	if _, err := io.ReadFull(r, doc[4:]); err != nil {
		return nil, errors.Wrap(err, "truncated document")
	}

	return bson.Raw(doc), nil
}

func documentHit(doc bson.Raw, req Request, inc includes) Hit {
	hit := Hit{Source: doc, Metadata: record.Metadata{}}

	if inc != nil {
		var d bson.D
		if err := bson.Unmarshal(doc, &d); err == nil {
			hit.Source = inc.filterDoc(d, mapping.Root)
		}
	}

	for _, kind := range req.Metadata {
		switch kind {
		case mapping.MetadataID:
			if id, ok := documentID(doc); ok {
				hit.Metadata[kind] = value.String(id)
			}
		case mapping.MetadataIndex:
			hit.Metadata[kind] = value.String(req.Index)
		}
	}

	return hit
}

func documentID(doc bson.Raw) (string, bool) {
	rv, err := doc.LookupErr("_id")
	if err != nil {
		return "", false
	}

	if oid, ok := rv.ObjectIDOK(); ok {
		return oid.Hex(), true
	}

	if s, ok := rv.StringValueOK(); ok {
		return s, true
	}

	return rv.String(), true
}
