package kanjisim

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/hupe1980/kanjisim/config"
	"github.com/hupe1980/kanjisim/dataset"
	"github.com/hupe1980/kanjisim/distance"
	"github.com/hupe1980/kanjisim/feature"
	"github.com/hupe1980/kanjisim/index"
	"github.com/hupe1980/kanjisim/internal/cache"
	"github.com/hupe1980/kanjisim/internal/resource"
	"github.com/hupe1980/kanjisim/model"
	"github.com/hupe1980/kanjisim/quality"
)

// Match is one neighbor returned by Similar.
type Match struct {
	Record model.KanjiRecord `json:"record" yaml:"record"`
	// Score is in [0, 1]; higher is more similar.
	Score    float32        `json:"score" yaml:"score"`
	Distance float32        `json:"distance" yaml:"distance"`
	Terms    distance.Terms `json:"terms" yaml:"terms"`
}

// Engine is a loaded, indexed kanji dataset.
//
// An Engine is immutable after Open and safe for concurrent use. To pick up a
// new dataset, open a new Engine.
type Engine struct {
	buildID string
	cfg     config.Config

	version  string
	records  map[model.ID]*model.KanjiRecord
	order    []model.ID
	radicals map[int]model.RadicalRecord
	idx      *index.Index
	report   quality.ValidationReport

	cache *cache.LRU[queryKey, []index.Result]
	rc    *resource.Controller

	logger  *Logger
	metrics MetricsCollector
	closed  atomic.Bool
}

// queryKey identifies a Similar call for the result cache. k is resolved
// against the default before lookup.
type queryKey struct {
	id         model.ID
	k          int
	weights    config.Weights
	hasWeights bool
}

// Open loads the dataset from source, derives feature vectors and builds
// the similarity index.
//
// The configuration is validated before anything is read; an invalid one
// fails with a *config.Error. Malformed records do not fail Open: they are
// excluded and listed in the validation report.
func Open(ctx context.Context, source Source, optFns ...Option) (*Engine, error) {
	opts := applyOptions(optFns)

	cfg, err := opts.config.Normalized()
	if err != nil {
		return nil, err
	}
	if source == nil {
		return nil, fmt.Errorf("kanjisim: nil source")
	}

	e := &Engine{
		buildID: uuid.NewString(),
		cfg:     cfg,
		cache:   cache.NewLRU[queryKey, []index.Result](opts.queryCache),
		rc:      resource.NewController(resource.Config{MaxConcurrentQueries: opts.maxQueries}),
		metrics: opts.metricsCollector,
	}
	e.logger = opts.logger.WithBuildID(e.buildID)

	dsOpts := append([]dataset.Option{dataset.WithParallelism(opts.parallelism)}, opts.datasetOptions...)

	start := time.Now()
	snap, err := source.load(ctx, dsOpts)
	if err != nil {
		e.logger.LogLoad(ctx, source.String(), 0, 0, time.Since(start), err)
		e.metrics.RecordLoad(0, 0, time.Since(start), err)
		return nil, err
	}
	structural := len(snap.Report.StructuralErrors)
	e.logger.LogLoad(ctx, source.String(), snap.Len(), structural, time.Since(start), nil)
	e.metrics.RecordLoad(snap.Len(), structural, time.Since(start), nil)

	start = time.Now()
	if err := e.build(ctx, snap, opts.parallelism); err != nil {
		e.logger.LogBuild(ctx, 0, 0, 0, time.Since(start), err)
		e.metrics.RecordBuild(0, 0, time.Since(start), err)
		return nil, err
	}
	excluded := e.idx.Len() - e.idx.Eligible()
	e.logger.LogBuild(ctx, e.idx.Eligible(), excluded, len(e.report.Records), time.Since(start), nil)
	e.metrics.RecordBuild(e.idx.Eligible(), excluded, time.Since(start), nil)

	return e, nil
}

func (e *Engine) build(ctx context.Context, snap *dataset.Snapshot, parallelism int) error {
	sorted := snap.Sorted()

	vectors, derived, err := feature.BuildAll(ctx, e.cfg, sorted, snap.Radicals, parallelism)
	if err != nil {
		return fmt.Errorf("kanjisim: build features: %w", err)
	}

	// The snapshot stays untouched; derivation flags go onto engine-owned copies.
	records := make([]*model.KanjiRecord, len(sorted))
	e.records = make(map[model.ID]*model.KanjiRecord, len(sorted))
	for i, rec := range sorted {
		c := rec.Clone()
		if f := derived[rec.ID]; len(f) > 0 {
			c.Flags = model.MergeFlags(c.Flags, f)
		}
		records[i] = &c
		e.records[c.ID] = &c
	}
	e.order = snap.Order
	e.radicals = snap.Radicals
	e.version = snap.Version

	if e.idx, err = index.New(vectors, e.cfg); err != nil {
		return err
	}

	e.report = quality.Build(records, snap.Report.Dropped, snap.Report.StructuralErrors)
	e.report.BuildID = e.buildID
	e.report.Version = snap.Version
	e.report.Checksum = snap.Checksum
	return nil
}

// BuildID identifies this engine build in logs and reports.
func (e *Engine) BuildID() string { return e.buildID }

// Version returns the dataset version stamp.
func (e *Engine) Version() string { return e.version }

// Config returns the effective configuration, weights normalized.
func (e *Engine) Config() config.Config { return e.cfg }

// Len returns the number of loaded records.
func (e *Engine) Len() int { return len(e.order) }

// IDs returns the IDs of all loaded records in ascending order.
func (e *Engine) IDs() []model.ID {
	out := make([]model.ID, len(e.order))
	copy(out, e.order)
	return out
}

// Lookup returns a copy of the record for id.
func (e *Engine) Lookup(id model.ID) (model.KanjiRecord, error) {
	if e.closed.Load() {
		return model.KanjiRecord{}, ErrClosed
	}
	rec, ok := e.records[id]
	e.metrics.RecordLookup(ok)
	if !ok {
		return model.KanjiRecord{}, &NotFoundError{ID: id}
	}
	return rec.Clone(), nil
}

// LookupLiteral returns a copy of the record for a single-character literal.
func (e *Engine) LookupLiteral(literal string) (model.KanjiRecord, error) {
	id, err := model.IDFromLiteral(literal)
	if err != nil {
		e.metrics.RecordLookup(false)
		return model.KanjiRecord{}, fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return e.Lookup(id)
}

// Similar returns the k records most similar to id, best first.
//
// k == 0 uses the configured default. The query record is never part of the
// result, and fewer than k matches are returned only when the index holds
// fewer eligible records. Ties within the configured epsilon are ordered by
// ascending ID, so results are deterministic.
func (e *Engine) Similar(ctx context.Context, id model.ID, k int, optFns ...SimilarOption) ([]Match, error) {
	if e.closed.Load() {
		return nil, ErrClosed
	}
	var so similarOptions
	for _, fn := range optFns {
		fn(&so)
	}

	start := time.Now()
	results, err := e.query(ctx, id, k, so.weights)
	e.logger.LogQuery(ctx, id, k, len(results), err)
	e.metrics.RecordQuery(k, len(results), time.Since(start), err)
	if err != nil {
		return nil, err
	}

	out := make([]Match, len(results))
	for i, r := range results {
		out[i] = Match{
			Record:   e.records[r.ID].Clone(),
			Score:    r.Score,
			Distance: r.Distance,
			Terms:    r.Terms,
		}
	}
	return out, nil
}

func (e *Engine) query(ctx context.Context, id model.ID, k int, weights *config.Weights) ([]index.Result, error) {
	key := queryKey{id: id, k: k}
	if k == 0 {
		key.k = e.idx.DefaultK()
	}
	if weights != nil {
		key.weights, key.hasWeights = *weights, true
	}
	if k >= 0 {
		if res, ok := e.cache.Get(key); ok {
			return res, nil
		}
	}

	if err := e.rc.AcquireQuery(ctx); err != nil {
		return nil, err
	}
	defer e.rc.ReleaseQuery()

	res, err := e.idx.Query(ctx, id, k, weights)
	if err != nil {
		return nil, translateError(err)
	}
	e.cache.Set(key, res)
	return res, nil
}

// CacheStats returns the hit and miss counts of the result cache.
func (e *Engine) CacheStats() (hits, misses int64) {
	return e.cache.Stats()
}

// SimilarLiteral is Similar keyed by literal.
func (e *Engine) SimilarLiteral(ctx context.Context, literal string, k int, optFns ...SimilarOption) ([]Match, error) {
	id, err := model.IDFromLiteral(literal)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return e.Similar(ctx, id, k, optFns...)
}

// ValidationReport returns the report of this build. Derivation flags
// (GEOMETRY_MISSING, TRUNCATED_STROKES) are included.
func (e *Engine) ValidationReport() quality.ValidationReport {
	r := e.report
	r.Counts = maps.Clone(e.report.Counts)
	r.Records = make(map[model.ID][]model.Flag, len(e.report.Records))
	for id, f := range e.report.Records {
		r.Records[id] = slices.Clone(f)
	}
	r.StructuralErrors = slices.Clone(e.report.StructuralErrors)
	r.Dropped = slices.Clone(e.report.Dropped)
	return r
}

// VariantRoot follows variant_of from id to the root of its variant tree
// and returns a copy of the root record. A record without variant_of is its
// own root.
func (e *Engine) VariantRoot(id model.ID) (model.KanjiRecord, error) {
	if e.closed.Load() {
		return model.KanjiRecord{}, ErrClosed
	}
	rec, ok := e.records[id]
	if !ok {
		return model.KanjiRecord{}, &NotFoundError{ID: id}
	}
	for steps := 0; rec.VariantOf != "" && steps <= len(e.records); steps++ {
		next, err := model.IDFromLiteral(rec.VariantOf)
		if err != nil {
			break
		}
		parent, ok := e.records[next]
		if !ok {
			break
		}
		rec = parent
	}
	return rec.Clone(), nil
}

// Radical returns the radical reference entry for id.
func (e *Engine) Radical(id int) (model.RadicalRecord, bool) {
	r, ok := e.radicals[id]
	return r, ok
}
