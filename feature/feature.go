// Package feature derives fixed-shape feature vectors from kanji records.
//
// A Vector has three parts:
//
//   - a geometric block of 4×N float32 values, four per stroke slot;
//   - a min-max normalized stroke-count scalar;
//   - the radical set, kept as a roaring bitmap and compared by overlap.
//
// Every geometric value lies in [0, 0.5], so the Euclidean contribution of a
// single slot never exceeds 1 and the whole block, scaled by 1/√N, stays in
// [0, 1]. Slots past the record's stroke count are zero.
package feature

import (
	"context"
	"math"
	"runtime"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/kanjisim/config"
	"github.com/hupe1980/kanjisim/distance"
	"github.com/hupe1980/kanjisim/model"
)

// SlotWidth is the number of values per stroke slot.
const SlotWidth = distance.SlotWidth

// unknownRadicalBit namespaces radical ids without a Kangxi class so they
// never collide with Kangxi numbers.
const unknownRadicalBit = 1 << 31

// Vector is the derived representation of one record.
// It is never mutated after construction.
type Vector struct {
	ID model.ID
	// Geometric is the 4×N stroke block.
	Geometric []float32
	// StrokeCount is the normalized effective stroke count in [0, 1].
	StrokeCount float32
	// Radicals holds the radical classes of the record.
	Radicals *roaring.Bitmap
	// Excluded marks records that do not take part in similarity search.
	Excluded bool
}

// Range is the observed effective stroke-count range of a dataset.
type Range struct {
	Min int
	Max int
}

// RangeOf returns the effective stroke-count range of the indexable records.
func RangeOf(records []*model.KanjiRecord) Range {
	var r Range
	first := true
	for _, rec := range records {
		if !rec.Indexable() {
			continue
		}
		c := rec.EffectiveStrokeCount()
		if first {
			r = Range{Min: c, Max: c}
			first = false
			continue
		}
		r.Min = min(r.Min, c)
		r.Max = max(r.Max, c)
	}
	return r
}

// Normalize maps count into [0, 1]. A degenerate range maps everything to 0.
func (r Range) Normalize(count int) float32 {
	if r.Max <= r.Min {
		return 0
	}
	v := float64(count-r.Min) / float64(r.Max-r.Min)
	return float32(math.Min(1, math.Max(0, v)))
}

// Builder builds vectors for a fixed configuration, radical table and
// stroke-count range. Build is pure and safe for concurrent use.
type Builder struct {
	slots    int
	radicals map[int]model.RadicalRecord
	strokes  Range
}

// NewBuilder returns a Builder. The radical table may be nil.
func NewBuilder(cfg config.Config, radicals map[int]model.RadicalRecord, strokeRange Range) *Builder {
	slots := cfg.StrokeSlots
	if slots <= 0 {
		slots = config.DefaultStrokeSlots
	}
	return &Builder{slots: slots, radicals: radicals, strokes: strokeRange}
}

// Slots returns the stroke-slot cap N.
func (b *Builder) Slots() int { return b.slots }

// Dim returns the length of the geometric block.
func (b *Builder) Dim() int { return b.slots * SlotWidth }

// Build derives the vector of rec and the flags raised while doing so
// (TRUNCATED_STROKES, GEOMETRY_MISSING).
func (b *Builder) Build(rec *model.KanjiRecord) (Vector, []model.Flag) {
	v := Vector{
		ID:          rec.ID,
		Geometric:   make([]float32, b.Dim()),
		StrokeCount: b.strokes.Normalize(rec.EffectiveStrokeCount()),
		Radicals:    b.radicalSet(rec.RadicalsAll),
		Excluded:    !rec.Indexable(),
	}

	var flags []model.Flag
	if !rec.HasGeometry() {
		return v, append(flags, model.FlagGeometryMissing)
	}
	if len(rec.Strokes) > b.slots {
		flags = append(flags, model.FlagTruncatedStrokes)
	}

	var total float64
	for _, s := range rec.Strokes {
		total += s.Length
	}

	for i, s := range rec.Strokes[:min(len(rec.Strokes), b.slots)] {
		share := 0.0
		if total > 0 {
			share = s.Length / total
		}
		slot := v.Geometric[i*SlotWidth : (i+1)*SlotWidth]
		// One turn spans distance.AnglePeriod; distance compares it circularly.
		slot[0] = unit((s.Direction.MeanAngle+math.Pi)/(4*math.Pi), 0.5)
		slot[1] = unit(s.Direction.StdAngle/(2*math.Pi), 0.5)
		slot[2] = unit(s.Direction.Straightness/2, 0.5)
		slot[3] = unit(share/2, 0.5)
	}
	return v, flags
}

// radicalSet maps radical ids to their Kangxi class when the table knows
// one, so positional forms of the same radical compare equal.
func (b *Builder) radicalSet(ids []int) *roaring.Bitmap {
	bm := roaring.New()
	for _, id := range ids {
		if r, ok := b.radicals[id]; ok && r.Kangxi > 0 {
			bm.Add(uint32(r.Kangxi))
			continue
		}
		bm.Add(uint32(id) | unknownRadicalBit)
	}
	bm.RunOptimize()
	return bm
}

func unit(v, hi float64) float32 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return float32(math.Min(v, hi))
}

// BuildAll builds the vectors of records in parallel. The stroke-count range
// is taken from the indexable records. Vectors are returned in input order;
// flags holds the derivation flags of every record that raised any.
func BuildAll(ctx context.Context, cfg config.Config, records []*model.KanjiRecord, radicals map[int]model.RadicalRecord, parallelism int) ([]Vector, map[model.ID][]model.Flag, error) {
	if parallelism <= 0 {
		parallelism = runtime.GOMAXPROCS(0)
	}
	b := NewBuilder(cfg, radicals, RangeOf(records))

	vectors := make([]Vector, len(records))
	local := make([][]model.Flag, len(records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for i, rec := range records {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			vectors[i], local[i] = b.Build(rec)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	flags := make(map[model.ID][]model.Flag)
	for i, f := range local {
		if len(f) > 0 {
			flags[records[i].ID] = f
		}
	}
	return vectors, flags, nil
}
