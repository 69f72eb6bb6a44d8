package index

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/kanjisim/config"
	"github.com/hupe1980/kanjisim/feature"
	"github.com/hupe1980/kanjisim/geometry"
	"github.com/hupe1980/kanjisim/model"
)

// glyph returns a record with n strokes at the given angles (radians).
func glyph(id model.ID, radicals []int, angles ...float64) *model.KanjiRecord {
	raw := make([]geometry.RawStroke, len(angles))
	for i, a := range angles {
		cx, cy := 0.5, float64(i+1)/float64(len(angles)+1)
		dx, dy := 0.1*math.Cos(a), 0.1*math.Sin(a)
		raw[i] = geometry.RawStroke{Index: i, Points: []model.Point{
			{X: cx - dx, Y: cy - dy}, {X: cx + dx, Y: cy + dy},
		}}
	}
	return &model.KanjiRecord{
		ID:                 id,
		Literal:            id.Literal(),
		StrokeCountPrimary: len(angles),
		RadicalsAll:        radicals,
		Strokes:            geometry.Normalize(raw).Strokes,
	}
}

func build(t *testing.T, cfg config.Config, records ...*model.KanjiRecord) *Index {
	t.Helper()
	vectors, _, err := feature.BuildAll(context.Background(), cfg, records, nil, 0)
	require.NoError(t, err)
	idx, err := New(vectors, cfg)
	require.NoError(t, err)
	return idx
}

func resultIDs(rs []Result) []model.ID {
	out := make([]model.ID, len(rs))
	for i, r := range rs {
		out[i] = r.ID
	}
	return out
}

const (
	idA model.ID = 0x4e00
	idB model.ID = 0x4e01
	idC model.ID = 0x4e02
)

func scenario() []*model.KanjiRecord {
	a := []float64{0, 0, math.Pi / 2, math.Pi / 2, 0, math.Pi / 4, -math.Pi / 4, 0}
	b := make([]float64, len(a))
	for i, x := range a {
		b[i] = x + 0.02
	}
	return []*model.KanjiRecord{
		glyph(idA, []int{1}, a...),
		glyph(idB, []int{1}, b...),
		glyph(idC, []int{99}, math.Pi/2, 0, math.Pi/3),
	}
}

func TestQuery_Scenario(t *testing.T) {
	idx := build(t, config.Default(), scenario()...)

	fromA, err := idx.Query(context.Background(), idA, 1, nil)
	require.NoError(t, err)
	require.Len(t, fromA, 1)
	assert.Equal(t, idB, fromA[0].ID)

	fromC, err := idx.Query(context.Background(), idC, 2, nil)
	require.NoError(t, err)
	var scoreCA float32 = -1
	for _, r := range fromC {
		if r.ID == idA {
			scoreCA = r.Score
		}
	}
	require.GreaterOrEqual(t, scoreCA, float32(0))
	assert.Greater(t, fromA[0].Score, scoreCA)

	assert.Equal(t, float32(0), fromA[0].Terms.Radical)
	assert.Equal(t, float32(1), fromC[0].Terms.Radical)
}

func TestQuery_Contract(t *testing.T) {
	recs := scenario()
	recs = append(recs,
		glyph(0x4e03, []int{1}, 0, 0),
		glyph(0x4e04, []int{2}, math.Pi/2),
	)
	idx := build(t, config.Default(), recs...)

	for _, rec := range recs {
		for k := 1; k <= 6; k++ {
			res, err := idx.Query(context.Background(), rec.ID, k, nil)
			require.NoError(t, err)
			assert.Len(t, res, min(k, len(recs)-1))
			assert.NotContains(t, resultIDs(res), rec.ID)
			for i, r := range res {
				assert.GreaterOrEqual(t, r.Score, float32(0))
				assert.LessOrEqual(t, r.Score, float32(1))
				assert.InDelta(t, 1, r.Score+r.Distance, 1e-6)
				if i > 0 {
					assert.LessOrEqual(t, r.Score, res[i-1].Score+1e-6)
				}
			}
		}
	}
}

func TestQuery_DefaultK(t *testing.T) {
	cfg := config.Default()
	cfg.DefaultK = 2
	idx := build(t, cfg, scenario()...)
	assert.Equal(t, 2, idx.DefaultK())

	res, err := idx.Query(context.Background(), idA, 0, nil)
	require.NoError(t, err)
	assert.Len(t, res, 2)
}

func TestQuery_Errors(t *testing.T) {
	recs := scenario()
	recs = append(recs, &model.KanjiRecord{
		ID: 0x4e05, RadicalsAll: []int{1}, Flags: []model.Flag{model.FlagVariantCycle},
	})
	idx := build(t, config.Default(), recs...)
	ctx := context.Background()

	_, err := idx.Query(ctx, 0x9999, 1, nil)
	var nf *ErrNodeNotFound
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, model.ID(0x9999), nf.ID)

	_, err = idx.Query(ctx, 0x4e05, 1, nil)
	var ex *ErrNodeExcluded
	require.True(t, errors.As(err, &ex))

	_, err = idx.Query(ctx, idA, -1, nil)
	assert.ErrorIs(t, err, ErrInvalidK)

	_, err = idx.Query(ctx, idA, 1, &config.Weights{Geometric: -1, Radical: 1})
	var cerr *config.Error
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, "weights.geometric", cerr.Option)

	_, err = idx.Query(ctx, idA, 1, &config.Weights{Geometric: math.Inf(1), StrokeCount: 0.15, Radical: 0.25})
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, "weights.geometric", cerr.Option)

	_, err = idx.Query(ctx, idA, 1, &config.Weights{Geometric: 1e308, StrokeCount: 1e308, Radical: 1e308})
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, "weights", cerr.Option)
}

func TestQuery_Excluded(t *testing.T) {
	recs := scenario()
	recs = append(recs, &model.KanjiRecord{
		ID: 0x4e05, RadicalsAll: []int{1}, Flags: []model.Flag{model.FlagVariantCycle},
	})
	idx := build(t, config.Default(), recs...)

	assert.Equal(t, 4, idx.Len())
	assert.Equal(t, 3, idx.Eligible())
	assert.True(t, idx.Contains(0x4e05))
	assert.True(t, idx.Excluded(0x4e05))

	res, err := idx.Query(context.Background(), idA, 10, nil)
	require.NoError(t, err)
	assert.Equal(t, []model.ID{idB, idC}, resultIDs(res))
}

func TestQuery_TieBreak(t *testing.T) {
	// Identical candidates tie exactly and come back in ascending ID order
	// whatever order they were indexed in.
	q := glyph(0x5000, []int{1}, 0, math.Pi/2)
	same := func(id model.ID) *model.KanjiRecord { return glyph(id, []int{2}, math.Pi/4) }
	idx := build(t, config.Default(), same(0x6003), q, same(0x6001), same(0x6002))

	res, err := idx.Query(context.Background(), 0x5000, 3, nil)
	require.NoError(t, err)
	assert.Equal(t, []model.ID{0x6001, 0x6002, 0x6003}, resultIDs(res))
}

func TestQuery_GeometryMissing(t *testing.T) {
	withGeom := glyph(0x4e00, []int{1, 2}, 0, math.Pi/2)
	noGeom := &model.KanjiRecord{ID: 0x4e8c, StrokeCountPrimary: 2, RadicalsAll: []int{1, 2}}
	other := glyph(0x4e09, []int{7}, 0, 0, 0)
	idx := build(t, config.Default(), withGeom, noGeom, other)

	res, err := idx.Query(context.Background(), withGeom.ID, 1, nil)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, noGeom.ID, res[0].ID)
	assert.Less(t, res[0].Score, float32(1))
	assert.Greater(t, res[0].Terms.Geometric, float32(0))
}

func TestQuery_AngleSeam(t *testing.T) {
	// Leftward strokes just above and just below the negative x axis are
	// 0.02 rad apart; the upward stroke is a quarter turn away.
	q := glyph(0x4e00, []int{1}, math.Pi-0.01)
	near := glyph(0x4e01, []int{1}, -math.Pi+0.01)
	mid := glyph(0x4e02, []int{1}, math.Pi/2)
	idx := build(t, config.Default(), q, near, mid)

	res, err := idx.Query(context.Background(), q.ID, 2, nil)
	require.NoError(t, err)
	assert.Equal(t, []model.ID{near.ID, mid.ID}, resultIDs(res))
	assert.Less(t, res[0].Terms.Geometric, float32(0.01))
	assert.Greater(t, res[0].Score, res[1].Score)
}

func TestQuery_WeightOverride(t *testing.T) {
	idx := build(t, config.Default(), scenario()...)

	// Only radicals count: A and B share theirs exactly.
	res, err := idx.Query(context.Background(), idA, 2, &config.Weights{Radical: 5})
	require.NoError(t, err)
	assert.Equal(t, float32(1), res[0].Score)
	assert.Equal(t, float32(0), res[1].Score)
}

func TestQuery_ScoresBounded(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	recs := scenario()
	recs = append(recs, &model.KanjiRecord{ID: 0x4e10, StrokeCountPrimary: 20})
	idx := build(t, config.Default(), recs...)

	for range 50 {
		w := config.Weights{Geometric: rng.Float64(), StrokeCount: rng.Float64() * 10, Radical: rng.Float64()}
		for _, rec := range recs {
			res, err := idx.Query(context.Background(), rec.ID, 10, &w)
			require.NoError(t, err)
			for _, r := range res {
				assert.GreaterOrEqual(t, r.Score, float32(0))
				assert.LessOrEqual(t, r.Score, float32(1))
			}
		}
	}
}

func TestQuery_Deterministic(t *testing.T) {
	a := build(t, config.Default(), scenario()...)
	recs := scenario()
	recs[0], recs[2] = recs[2], recs[0]
	b := build(t, config.Default(), recs...)

	for _, id := range []model.ID{idA, idB, idC} {
		ra, err := a.Query(context.Background(), id, 5, nil)
		require.NoError(t, err)
		rb, err := b.Query(context.Background(), id, 5, nil)
		require.NoError(t, err)
		assert.Equal(t, ra, rb)
	}
}

func TestQuery_Concurrent(t *testing.T) {
	idx := build(t, config.Default(), scenario()...)
	want, err := idx.Query(context.Background(), idA, 2, nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := idx.Query(context.Background(), idA, 2, nil)
			if err != nil {
				errs <- err
				return
			}
			if !assert.ObjectsAreEqual(want, got) {
				errs <- errors.New("result mismatch")
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestQuery_Canceled(t *testing.T) {
	idx := build(t, config.Default(), scenario()...)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := idx.Query(ctx, idA, 1, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

// countdownCtx reports cancellation once Err has been called n times.
type countdownCtx struct {
	context.Context
	n int
}

func (c *countdownCtx) Err() error {
	if c.n <= 0 {
		return context.Canceled
	}
	c.n--
	return nil
}

func TestQuery_CanceledMidScan(t *testing.T) {
	cfg := config.Default()
	records := []*model.KanjiRecord{
		glyph(idA, []int{1}, 0),
		glyph(idB, []int{1}, 0.1),
		glyph(idC, []int{1}, 0.2),
		glyph(0x4e03, []int{1}, 0.3),
	}
	vectors, _, err := feature.BuildAll(context.Background(), cfg, records, nil, 0)
	require.NoError(t, err)

	idx, err := New(vectors, cfg, WithChunkSize(1))
	require.NoError(t, err)

	res, err := idx.Query(&countdownCtx{Context: context.Background(), n: 2}, idA, 3, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, res)

	res, err = idx.Query(&countdownCtx{Context: context.Background(), n: len(records)}, idA, 3, nil)
	require.NoError(t, err)
	assert.Len(t, res, 3)
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Weights = config.Weights{}
	_, err := New(nil, cfg)
	assert.ErrorIs(t, err, config.ErrInvalid)
}
