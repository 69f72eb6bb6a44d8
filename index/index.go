package index

import (
	"cmp"
	"context"
	"slices"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/kanjisim/config"
	"github.com/hupe1980/kanjisim/distance"
	"github.com/hupe1980/kanjisim/feature"
	"github.com/hupe1980/kanjisim/internal/searcher"
	"github.com/hupe1980/kanjisim/model"
)

// DefaultChunkSize is the number of candidates scored between context checks.
const DefaultChunkSize = 256

// Result is one neighbor of a query.
type Result struct {
	ID model.ID
	// Score is 1 - Distance, in [0, 1]. Higher is more similar.
	Score float32
	// Distance is the weighted composite distance, in [0, 1].
	Distance float32
	// Terms are the unweighted term distances.
	Terms distance.Terms
}

type options struct {
	chunkSize int
}

// Option configures an Index.
type Option func(*options)

// WithChunkSize sets how many candidates are scored between context checks.
func WithChunkSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.chunkSize = n
		}
	}
}

// Index is an immutable flat similarity index.
type Index struct {
	slots    int
	epsilon  float32
	defaultK int
	weights  config.Weights
	chunk    int

	vectors  []feature.Vector
	pos      map[model.ID]int
	excluded *roaring.Bitmap
}

// New builds an index over vectors. The configuration is validated and its
// weights normalized. Vectors marked Excluded are kept so that queries on
// them can be told apart from unknown IDs, but they are never returned.
func New(vectors []feature.Vector, cfg config.Config, optFns ...Option) (*Index, error) {
	cfg, err := cfg.Normalized()
	if err != nil {
		return nil, err
	}

	opts := options{chunkSize: DefaultChunkSize}
	for _, fn := range optFns {
		fn(&opts)
	}

	sorted := slices.Clone(vectors)
	slices.SortFunc(sorted, func(a, b feature.Vector) int { return cmp.Compare(a.ID, b.ID) })

	idx := &Index{
		slots:    cfg.StrokeSlots,
		epsilon:  float32(cfg.TieEpsilon),
		defaultK: cfg.DefaultK,
		weights:  cfg.Weights,
		chunk:    opts.chunkSize,
		vectors:  sorted,
		pos:      make(map[model.ID]int, len(sorted)),
		excluded: roaring.New(),
	}
	for i, v := range sorted {
		idx.pos[v.ID] = i
		if v.Excluded {
			idx.excluded.Add(uint32(v.ID))
		}
	}
	idx.excluded.RunOptimize()
	return idx, nil
}

// Len returns the number of vectors held, excluded ones included.
func (idx *Index) Len() int { return len(idx.vectors) }

// Eligible returns the number of vectors that take part in search.
func (idx *Index) Eligible() int {
	return len(idx.vectors) - int(idx.excluded.GetCardinality())
}

// Contains reports whether id is held by the index.
func (idx *Index) Contains(id model.ID) bool {
	_, ok := idx.pos[id]
	return ok
}

// Excluded reports whether id is held but excluded from search.
func (idx *Index) Excluded(id model.ID) bool {
	return idx.excluded.Contains(uint32(id))
}

// Vector returns the vector of id.
func (idx *Index) Vector(id model.ID) (feature.Vector, bool) {
	i, ok := idx.pos[id]
	if !ok {
		return feature.Vector{}, false
	}
	return idx.vectors[i], true
}

// Weights returns the normalized default weights.
func (idx *Index) Weights() config.Weights { return idx.weights }

// DefaultK returns the k used when a query asks for k == 0.
func (idx *Index) DefaultK() int { return idx.defaultK }

// Query returns the k records most similar to id, best first.
//
// k == 0 uses the configured default. weights overrides the configured
// weights for this call; they are validated and normalized first. The
// query record itself is never returned; fewer than k results are returned
// only when fewer eligible records exist.
func (idx *Index) Query(ctx context.Context, id model.ID, k int, weights *config.Weights) ([]Result, error) {
	if k < 0 {
		return nil, ErrInvalidK
	}
	if k == 0 {
		k = idx.defaultK
	}

	w := idx.weights
	if weights != nil {
		var err error
		if w, err = weights.Normalize(); err != nil {
			return nil, err
		}
	}

	qi, ok := idx.pos[id]
	if !ok {
		return nil, &ErrNodeNotFound{ID: id}
	}
	if idx.Excluded(id) {
		return nil, &ErrNodeExcluded{ID: id}
	}
	q := idx.vectors[qi]

	s := searcher.Get()
	defer searcher.Put(s)

	for i, v := range idx.vectors {
		if i%idx.chunk == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if i == qi || v.Excluded {
			continue
		}
		terms := distance.Compute(q.Geometric, v.Geometric, idx.slots, q.StrokeCount, v.StrokeCount, q.Radicals, v.Radicals)
		d := terms.Weighted(w)
		s.Add(searcher.Candidate{ID: v.ID, Score: 1 - d, Distance: d, Terms: terms})
	}

	top := s.TopK(k, idx.epsilon)
	out := make([]Result, len(top))
	for i, c := range top {
		out[i] = Result(c)
	}
	return out, nil
}
