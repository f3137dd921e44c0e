// Package query prepares a mapping configuration into an executable query
// and maps the hits of a source into records.
//
// Everything that can fail because of the configuration fails in Prepare,
// before any document is read. A prepared Query is immutable; MapHit and
// ResolveIndex may be called concurrently.
package query

import (
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"search-mapper/internal/datefmt"
	"search-mapper/internal/decode"
	"search-mapper/internal/diagnostic"
	"search-mapper/internal/mapping"
	"search-mapper/internal/pattern"
	"search-mapper/internal/plan"
	"search-mapper/internal/record"
	"search-mapper/internal/schema"
)

// Query is a prepared query.
type Query struct {
	id             string
	aliases        *mapping.AliasTable
	plan           *plan.ProjectionPlan
	decoder        *decode.Decoder
	mapper         *record.Mapper
	index          *pattern.Pattern
	formats        datefmt.List
	missingAsEmpty bool

	logger  log.Logger
	metrics *Metrics
	now     func() time.Time
}

// Option configures Prepare.
type Option func(*Query)

// WithLogger sets the logger; the default discards everything.
func WithLogger(logger log.Logger) Option {
	return func(q *Query) {
		q.logger = logger
	}
}

// WithMetrics sets the metrics to record into.
func WithMetrics(m *Metrics) Option {
	return func(q *Query) {
		q.metrics = m
	}
}

// WithClock sets the clock used by date placeholders of the index template.
func WithClock(now func() time.Time) Option {
	return func(q *Query) {
		q.now = now
	}
}

// Prepare validates cfg, resolves its schema and plans the projection.
//
// Typed errors are returned, possibly wrapped, for the failures callers act
// on: *mapping.AliasConflictError, *schema.UnresolvedFieldError,
// *plan.ProjectionConflictError and *pattern.PatternResolutionError.
func Prepare(cfg *mapping.QueryConfig, opts ...Option) (*Query, error) {
	q := &Query{
		id:     uuid.NewString(),
		logger: log.NewNopLogger(),
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(q)
	}

	q.logger = log.With(q.logger, "query", q.id)

	if err := q.prepare(cfg); err != nil {
		reason := failureReason(err)
		q.metrics.planningFailure(reason)
		level.Error(q.logger).Log("msg", "query rejected", "reason", reason, "err", err)

		return nil, err
	}

	level.Info(q.logger).Log(
		"msg", "query prepared",
		"mode", plan.Export(q.plan).Mode,
		"required", len(q.plan.Required),
		"dynamic", len(q.plan.Dynamic),
		"metadata", len(q.plan.Metadata),
		"index", q.IndexTemplate(),
	)

	return q, nil
}

func (q *Query) prepare(cfg *mapping.QueryConfig) error {
	if cfg == nil {
		return errors.New("query config is nil")
	}

	diags := mapping.Validate(cfg)
	for _, w := range diags.Warnings {
		level.Warn(q.logger).Log("msg", "query config warning", "detail", w.String())
	}

	aliases, err := cfg.AliasTable()
	if err != nil {
		return errors.Wrap(err, "failed to build alias table")
	}

	q.aliases = aliases

	root, err := q.resolveSchema(cfg)
	if err != nil {
		return err
	}

	metadata, err := cfg.MetadataKinds()
	if err != nil {
		return errors.Wrap(err, "invalid metadata")
	}

	filter, err := cfg.SourceFilterPaths()
	if err != nil {
		return errors.Wrap(err, "invalid source filter")
	}

	q.plan, err = plan.Build(root, metadata, filter)
	if err != nil {
		return errors.Wrap(err, "failed to plan projection")
	}

	diags.Merge(planNotes(q.plan))
	for _, n := range diags.Infos {
		level.Debug(q.logger).Log("msg", "query plan note", "detail", n.String())
	}

	formats, err := cfg.DateFormatList()
	if err != nil {
		return errors.Wrap(err, "invalid date formats")
	}

	coercions, err := cfg.CoercionSet()
	if err != nil {
		return errors.Wrap(err, "invalid coercions")
	}

	if cfg.Index != "" {
		q.index, err = pattern.Parse(cfg.Index)
		if err != nil {
			return errors.Wrap(err, "invalid index")
		}
	}

	if err := diags.Error(); err != nil {
		return errors.Wrap(err, "invalid query config")
	}

	q.decoder = decode.New(decode.WithDateFormats(formats), decode.WithCoercions(coercions))
	q.mapper = record.NewMapper(aliases)
	q.formats = formats
	q.missingAsEmpty = cfg.MissingIndexAsEmpty

	return nil
}

func (q *Query) resolveSchema(cfg *mapping.QueryConfig) (*schema.Node, error) {
	resolver := schema.NewResolver(q.aliases)

	user, err := schema.FromFields(cfg.Schema)
	if err != nil {
		return nil, errors.Wrap(err, "invalid schema")
	}

	root := resolver.ResolveDynamic()
	if user != nil {
		root, err = resolver.ResolveExplicit(user)
		if err != nil {
			return nil, errors.Wrap(err, "failed to resolve schema")
		}
	}

	root, err = schema.Project(root, cfg.Fields)
	if err != nil {
		return nil, errors.Wrap(err, "failed to project schema")
	}

	return root, nil
}

func planNotes(p *plan.ProjectionPlan) diagnostic.Diagnostics {
	var notes diagnostic.Diagnostics
	if p.Superset() {
		notes.AddInfo("superset_plan", "schema has dynamic fields, the whole source is fetched", mapping.ScopeSchema, "")
	}

	if p.Exact && len(p.UserFilter) > 0 {
		notes.AddInfo("user_filter", "caller source filter covers the schema and is sent as is", mapping.ScopeSourceFilter, "")
	}

	return notes
}

func failureReason(err error) string {
	var (
		aliasConflict *mapping.AliasConflictError
		unresolved    *schema.UnresolvedFieldError
		conflict      *plan.ProjectionConflictError
		badPattern    *pattern.PatternResolutionError
	)

	switch {
	case errors.As(err, &aliasConflict):
		return "alias_conflict"
	case errors.As(err, &unresolved):
		return "unresolved_field"
	case errors.As(err, &conflict):
		return "projection_conflict"
	case errors.As(err, &badPattern):
		return "index_pattern"
	default:
		return "invalid_config"
	}
}

// ID returns the query id used in logs.
func (q *Query) ID() string {
	return q.id
}

// Plan returns the projection plan.
func (q *Query) Plan() *plan.ProjectionPlan {
	return q.plan
}

// IndexTemplate returns the configured index template, empty when none.
func (q *Query) IndexTemplate() string {
	if q.index == nil {
		return ""
	}

	return q.index.Template()
}
