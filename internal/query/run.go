package query

import (
	"context"

	"github.com/go-kit/log/level"
	"github.com/pkg/errors"

	"search-mapper/internal/decode"
	"search-mapper/internal/pattern"
	"search-mapper/internal/record"
	"search-mapper/internal/source"
	"search-mapper/internal/value"
)

// MalformedDocumentError is recorded when a hit body cannot be parsed at all.
type MalformedDocumentError struct {
	Err error
}

func (e *MalformedDocumentError) Error() string {
	return "malformed document: " + e.Err.Error()
}

func (e *MalformedDocumentError) Unwrap() error {
	return e.Err
}

// MapHit decodes and maps one hit. It never fails; problems are carried in
// the record's anomalies.
func (q *Query) MapHit(hit source.Hit) record.Record {
	body, anomalies, err := q.decoder.DecodeReport(hit.Source, q.plan.Schema)

	var problems []error
	if err != nil {
		problems = append(problems, &MalformedDocumentError{Err: err})
	}

	for _, a := range anomalies {
		problems = append(problems, a)
	}

	rec := q.mapper.Map(body, q.plan, hit.Metadata)
	rec.Anomalies = append(problems, rec.Anomalies...)

	q.metrics.mapped()

	for _, a := range rec.Anomalies {
		kind := anomalyKind(a)
		q.metrics.anomaly(kind)
		level.Debug(q.logger).Log("msg", "document anomaly", "kind", kind, "err", a)
	}

	return rec
}

func anomalyKind(err error) string {
	var (
		anomaly     decode.Anomaly
		malformed   *MalformedDocumentError
		unavailable *record.MetadataUnavailableError
	)

	switch {
	case errors.As(err, &anomaly):
		return string(anomaly.Kind)
	case errors.As(err, &malformed):
		return "malformed_document"
	case errors.As(err, &unavailable):
		return "metadata_unavailable"
	default:
		return "other"
	}
}

// ResolveIndex resolves the index template against a document, or against
// the query alone when doc is null.
func (q *Query) ResolveIndex(doc value.Value) (string, error) {
	if q.index == nil {
		return "", errors.New("no index configured")
	}

	ctx := pattern.Context{Now: q.now(), Formats: q.formats}
	if !doc.IsNull() {
		ctx.Fields = doc
	}

	return q.index.Resolve(ctx)
}

// Run reads the index from src and emits one record per hit, in source
// order. An absent index yields no records and no error when the query
// treats a missing index as empty. Run stops at the first emit error.
func (q *Query) Run(ctx context.Context, src source.Source, emit func(record.Record) error) error {
	index, err := q.ResolveIndex(value.Null())
	if err != nil {
		return errors.Wrap(err, "failed to resolve index")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	req := source.Request{
		Index:    index,
		Includes: q.plan.Includes(),
		Metadata: q.plan.Metadata,
	}

	level.Debug(q.logger).Log("msg", "reading index", "index", index, "includes", len(req.Includes))

	hits, errs := src.Read(ctx, req)

	count := 0

	for hit := range hits {
		if err := emit(q.MapHit(hit)); err != nil {
			return errors.Wrap(err, "failed to emit record")
		}

		count++
	}

	if err := <-errs; err != nil {
		if errors.Is(err, source.ErrIndexNotFound) && q.missingAsEmpty {
			q.metrics.missingIndex()
			level.Warn(q.logger).Log("msg", "index not found, returning no records", "index", index)

			return nil
		}

		return errors.Wrapf(err, "failed to read index %q", index)
	}

	level.Info(q.logger).Log("msg", "index read", "index", index, "records", count)

	return nil
}
