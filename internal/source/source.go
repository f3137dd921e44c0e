// Package source is the boundary to the document store: it fetches the hits
// of one index for a query. Bundled sources read search hits from local files
// or memory.
package source

import (
	"context"

	"github.com/pkg/errors"

	"search-mapper/internal/mapping"
	"search-mapper/internal/record"
)

// ErrIndexNotFound is returned, possibly wrapped, when the target index does
// not exist.
var ErrIndexNotFound = errors.New("index not found")

// Request describes one read.
type Request struct {
	// Index is the resolved index name.
	Index string
	// Includes restricts the returned document bodies; nil returns them whole.
	Includes []string
	// Metadata lists the hit metadata to return.
	Metadata []mapping.MetadataKind
}

// Hit is one search hit: a raw body the decoder accepts and its metadata.
type Hit struct {
	Source   any
	Metadata record.Metadata
}

// Source streams the hits of an index.
type Source interface {
	// Read streams hits in store order. Both channels are closed when the
	// read ends; at most one error is sent.
	Read(ctx context.Context, req Request) (<-chan Hit, <-chan error)
}

func wants(kinds []mapping.MetadataKind, kind mapping.MetadataKind) bool {
	for _, k := range kinds {
		if k == kind {
			return true
		}
	}

	return false
}

// Slice is an in-memory source keyed by index name. Includes are not applied.
type Slice map[string][]Hit

func (s Slice) Read(ctx context.Context, req Request) (<-chan Hit, <-chan error) {
	out := make(chan Hit, 100)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		hits, ok := s[req.Index]
		if !ok {
			errCh <- errors.Wrapf(ErrIndexNotFound, "index %q", req.Index)
			return
		}

		for _, hit := range hits {
			select {
			case out <- hit:
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			}
		}
	}()

	return out, errCh
}
