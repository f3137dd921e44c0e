// Package decode turns one raw search hit body into a value tree shaped by a
// resolved schema.
//
// Raw input may be JSON bytes, BSON bytes or an already materialised tree
// (bson.D, bson.M, map[string]any, []any and scalars). Missing fields and
// values that cannot be coerced become null; only unparseable raw bytes are
// reported as errors.
package decode

import (
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"

	"search-mapper/internal/datefmt"
	"search-mapper/internal/schema"
	"search-mapper/internal/value"
	"search-mapper/primitive"
)

// AnomalyKind classifies a value the decoder could not honour.
type AnomalyKind string

const (
	// AnomalyMismatch is a value whose shape or type does not fit the schema; it decodes as null.
	AnomalyMismatch AnomalyKind = "type_mismatch"
	// AnomalyDateFallback is text matching no date format; it decodes as a string.
	AnomalyDateFallback AnomalyKind = "date_fallback"
)

// Anomaly is one non-fatal decoding problem.
type Anomaly struct {
	Kind   AnomalyKind
	Path   string
	Detail string
}

func (a Anomaly) Error() string {
	return fmt.Sprintf("%s at %q: %s", a.Kind, a.Path, a.Detail)
}

// Decoder is immutable and safe for concurrent use.
type Decoder struct {
	formats   datefmt.List
	coercions primitive.CategoryEnum
	bsonBytes bool
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithDateFormats sets the formats tried when text is decoded as a date.
func WithDateFormats(formats datefmt.List) Option {
	return func(d *Decoder) {
		d.formats = formats
	}
}

// WithCoercions restricts the allowed scalar coercions.
func WithCoercions(categories primitive.CategoryEnum) Option {
	return func(d *Decoder) {
		d.coercions = categories
	}
}

// WithBSONBytes makes plain []byte input decode as BSON instead of JSON.
func WithBSONBytes() Option {
	return func(d *Decoder) {
		d.bsonBytes = true
	}
}

// New returns a decoder with the default date formats and all coercions.
func New(opts ...Option) *Decoder {
	d := &Decoder{
		formats:   datefmt.Default(),
		coercions: primitive.CategoryAll,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Decode decodes raw against node, discarding anomalies.
func (d *Decoder) Decode(raw any, node *schema.Node) (value.Value, error) {
	v, _, err := d.DecodeReport(raw, node)
	return v, err
}

// DecodeReport decodes raw against node and returns the anomalies met on the way.
func (d *Decoder) DecodeReport(raw any, node *schema.Node) (value.Value, []Anomaly, error) {
	tree, err := d.materialize(raw)
	if err != nil {
		return value.Null(), nil, err
	}

	if node == nil {
		node = schema.Any("")
	}

	w := &walk{d: d}

	return w.decode(tree, node, node.Path.String()), w.anomalies, nil
}

// Infer decodes raw without a schema: the shape is taken from the document.
func (d *Decoder) Infer(raw any) (value.Value, error) {
	tree, err := d.materialize(raw)
	if err != nil {
		return value.Null(), err
	}

	return infer(tree), nil
}

func (d *Decoder) materialize(raw any) (any, error) {
	switch r := raw.(type) {
	case bson.Raw:
		return parseBSON(r)
	case json.RawMessage:
		return parseJSON(r)
	case []byte:
		if d.bsonBytes {
			return parseBSON(r)
		}

		return parseJSON(r)
	default:
		return raw, nil
	}
}
