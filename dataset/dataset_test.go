package dataset

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/kanjisim/blobstore"
	"github.com/hupe1980/kanjisim/model"
)

type kanjiOpt func(map[string]any)

func kanji(literal string, strokes int, opts ...kanjiOpt) map[string]any {
	k := map[string]any{
		"codepoint":            fmt.Sprintf("%x", []rune(literal)[0]),
		"literal":              literal,
		"stroke_count_primary": strokes,
		"radical_id":           1,
		"radicals_all":         []int{1},
		"meanings":             []string{"m-" + literal},
	}
	for _, o := range opts {
		o(k)
	}
	return k
}

func set(key string, v any) kanjiOpt {
	return func(k map[string]any) { k[key] = v }
}

func unset(key string) kanjiOpt {
	return func(k map[string]any) { delete(k, key) }
}

func horizontal(n int) kanjiOpt {
	strokes := make([]map[string]any, n)
	for i := range strokes {
		y := float64(i+1) / float64(n+1)
		strokes[i] = map[string]any{"index": i, "points": [][]float64{{0.1, y}, {0.9, y}}}
	}
	return set("strokes", strokes)
}

func testDocument(elements ...any) []byte {
	doc := map[string]any{
		"version":      "test-1",
		"generated_at": "2024-01-01T00:00:00Z",
		"kanji":        elements,
		"radicals": map[string]any{
			"1":  map[string]any{"glyph": "一", "kangxi": 1, "stroke_count": 1},
			"85": map[string]any{"glyph": "水", "kangxi": 85, "stroke_count": 4},
		},
		"source_meta": map[string]any{"kanjidic2": "test"},
	}
	b, err := json.Marshal(doc)
	if err != nil {
		panic(err)
	}
	return b
}

func load(t *testing.T, data []byte) *Snapshot {
	t.Helper()
	snap, err := Load(context.Background(), bytes.NewReader(data))
	require.NoError(t, err)
	return snap
}

func TestLoad(t *testing.T) {
	snap := load(t, testDocument(
		kanji("二", 2, horizontal(2)),
		kanji("一", 1, horizontal(1)),
	))

	assert.Equal(t, "test-1", snap.Version)
	assert.Equal(t, "2024-01-01T00:00:00Z", snap.GeneratedAt)
	assert.Equal(t, CompressionNone, snap.Compression)
	assert.NotZero(t, snap.Checksum)
	assert.Equal(t, snap.Checksum, snap.Report.Checksum)
	assert.Equal(t, []model.ID{0x4e00, 0x4e8c}, snap.Order)
	assert.Equal(t, 2, snap.Len())
	assert.Len(t, snap.Radicals, 2)
	assert.Equal(t, "水", snap.Radicals[85].Glyph)
	assert.Equal(t, "test", snap.SourceMeta["kanjidic2"])

	rec, ok := snap.ByLiteral("二")
	require.True(t, ok)
	assert.Equal(t, 2, rec.StrokeCountPrimary)
	assert.Equal(t, []string{"m-二"}, rec.Meanings)
	require.Len(t, rec.Strokes, 2)
	assert.InDelta(t, 0.8, rec.Strokes[1].Length, 1e-12)
	assert.Empty(t, rec.Flags)

	assert.True(t, snap.Report.Clean())
	assert.Equal(t, 2, snap.Report.Loaded)
	assert.Equal(t, "test-1", snap.Report.Version)
}

func TestLoad_StructuralErrors(t *testing.T) {
	tests := []struct {
		name    string
		element any
		reason  string
	}{
		{"missing literal", kanji("一", 1, unset("literal")), "literal"},
		{"missing stroke count", kanji("一", 1, unset("stroke_count_primary")), "stroke_count_primary"},
		{"wrong value type", kanji("一", 1, set("stroke_count_primary", "one")), "stroke_count_primary"},
		{"bad codepoint", kanji("一", 1, set("codepoint", "zz")), "codepoint"},
		{"codepoint mismatch", kanji("一", 1, set("codepoint", "4e8c")), "does not match"},
		{"multi-character literal", kanji("一", 1, set("literal", "一二")), "literal"},
		{"negative radical", kanji("一", 1, set("radicals_all", []int{-3})), "radicals_all"},
		{"three coordinates", kanji("一", 1, set("strokes", []map[string]any{
			{"index": 0, "points": [][]float64{{0.1, 0.1, 0.1}}},
		})), "points"},
		{"null element", nil, "required"},
		{"not an object", 42, "cannot unmarshal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := load(t, testDocument(kanji("三", 3), tt.element))

			assert.Equal(t, []model.ID{0x4e09}, snap.Order)
			require.Len(t, snap.Report.StructuralErrors, 1)
			serr := snap.Report.StructuralErrors[0]
			assert.Equal(t, 1, serr.Position)
			assert.Contains(t, serr.Reason, tt.reason)
		})
	}
}

func TestLoad_BadRadicalEntry(t *testing.T) {
	doc := map[string]any{
		"kanji": []any{kanji("一", 1)},
		"radicals": map[string]any{
			"1": map[string]any{"glyph": "一", "kangxi": 1, "stroke_count": 1},
			"x": map[string]any{"glyph": "乙"},
			"2": map[string]any{"kangxi": 2},
		},
	}
	data, err := json.Marshal(doc)
	require.NoError(t, err)

	snap := load(t, data)
	assert.Len(t, snap.Radicals, 1)
	require.Len(t, snap.Report.StructuralErrors, 2)
	for _, serr := range snap.Report.StructuralErrors {
		assert.Equal(t, -1, serr.Position)
		assert.Contains(t, serr.Reason, "radical")
	}
	assert.Equal(t, 1, snap.Len())
}

func TestLoad_Malformed(t *testing.T) {
	_, err := Load(context.Background(), bytes.NewReader([]byte(`{"kanji": [`)))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformed))

	_, err = Load(context.Background(), bytes.NewReader([]byte(`{"kanji": {}}`)))
	assert.True(t, errors.Is(err, ErrMalformed))
}

func TestLoad_Duplicates(t *testing.T) {
	snap := load(t, testDocument(
		kanji("一", 1),
		kanji("二", 2),
		kanji("一", 5),
	))

	assert.Equal(t, 2, snap.Len())
	rec, ok := snap.ByLiteral("一")
	require.True(t, ok)
	assert.Equal(t, 1, rec.StrokeCountPrimary, "first record in document order wins")

	require.Len(t, snap.Report.Dropped, 1)
	d := snap.Report.Dropped[0]
	assert.Equal(t, 2, d.Position)
	assert.Equal(t, model.ID(0x4e00), d.ID)
	assert.Equal(t, model.FlagDuplicateLiteral, d.Flag)
	assert.Equal(t, 1, snap.Report.Duplicates)
}

func TestLoad_SelfVariant(t *testing.T) {
	snap := load(t, testDocument(kanji("一", 1, set("variant_of", "一"))))

	rec := snap.Records[0x4e00]
	assert.Empty(t, rec.VariantOf)
	assert.Equal(t, []model.Flag{model.FlagVariantCycle}, rec.Flags)
	assert.Equal(t, 1, snap.Report.CycleBreaks)
	assert.Equal(t, 1, snap.Report.Counts[model.FlagVariantCycle])
	assert.Equal(t, 0, snap.Report.Indexed)
}

func TestLoad_VariantCycle(t *testing.T) {
	data := testDocument(
		kanji("一", 1, set("variant_of", "二")),
		kanji("二", 2, set("variant_of", "三")),
		kanji("三", 3, set("variant_of", "一")),
		kanji("四", 5, set("variant_of", "一")),
	)
	snap := load(t, data)

	// Walk starts at U+4E00 and closes the cycle at U+4E09.
	assert.Equal(t, "二", snap.Records[0x4e00].VariantOf)
	assert.Equal(t, "三", snap.Records[0x4e8c].VariantOf)
	assert.Empty(t, snap.Records[0x4e09].VariantOf)
	assert.Equal(t, "一", snap.Records[0x56db].VariantOf)
	assert.Equal(t, []model.ID{0x4e09}, snap.Report.Flagged())
	assert.Equal(t, 1, snap.Report.CycleBreaks)

	for _, rec := range snap.Sorted() {
		root := snap.Root(rec)
		assert.Empty(t, root.VariantOf)
		assert.Equal(t, model.ID(0x4e09), root.ID)
	}

	t.Run("Idempotent", func(t *testing.T) {
		again := load(t, data)
		for _, id := range snap.Order {
			assert.Equal(t, snap.Records[id].VariantOf, again.Records[id].VariantOf)
			assert.Equal(t, snap.Records[id].Flags, again.Records[id].Flags)
		}
	})

	t.Run("Reload", func(t *testing.T) {
		// Feeding the repaired records back in yields the same edges and flags.
		elements := make([]any, 0, snap.Len())
		for _, rec := range snap.Sorted() {
			elements = append(elements, rec)
		}
		again := load(t, testDocument(elements...))
		for _, id := range snap.Order {
			assert.Equal(t, snap.Records[id].VariantOf, again.Records[id].VariantOf)
			assert.Equal(t, snap.Records[id].Flags, again.Records[id].Flags)
		}
	})
}

func TestLoad_TwoCycle(t *testing.T) {
	snap := load(t, testDocument(
		kanji("二", 2, set("variant_of", "一")),
		kanji("一", 1, set("variant_of", "二")),
	))
	assert.Equal(t, "二", snap.Records[0x4e00].VariantOf)
	assert.Empty(t, snap.Records[0x4e8c].VariantOf)
	assert.True(t, snap.Records[0x4e8c].HasFlag(model.FlagVariantCycle))
	assert.False(t, snap.Records[0x4e00].HasFlag(model.FlagVariantCycle))
}

func TestLoad_VariantTargetMissing(t *testing.T) {
	snap := load(t, testDocument(
		kanji("一", 1, set("variant_of", "龍"), set("variants", []string{"二", "龍"})),
		kanji("二", 2, set("variant_of", "一")),
	))

	rec := snap.Records[0x4e00]
	assert.Empty(t, rec.VariantOf)
	assert.Equal(t, []string{"二"}, rec.Variants)
	assert.Equal(t, []model.Flag{model.FlagVariantTargetMissing}, rec.Flags)
	assert.Equal(t, "一", snap.Records[0x4e8c].VariantOf)
}

func TestLoad_StrokeDiscrepancy(t *testing.T) {
	snap := load(t, testDocument(kanji("三", 3, horizontal(2))))
	rec := snap.Records[0x4e09]
	assert.Equal(t, []model.Flag{model.FlagAltStrokeDiscrepancy}, rec.Flags)
	assert.Equal(t, 2, rec.EffectiveStrokeCount())
	assert.Equal(t, 1, snap.Report.Discrepancies)
}

func TestLoad_Radicals(t *testing.T) {
	t.Run("Repaired", func(t *testing.T) {
		snap := load(t, testDocument(kanji("一", 1, set("radical_id", 85), set("radicals_all", []int{1, 1}))))
		rec := snap.Records[0x4e00]
		assert.Equal(t, []int{1, 85}, rec.RadicalsAll)
		assert.Equal(t, []model.Flag{model.FlagRadicalSetRepaired}, rec.Flags)
	})

	t.Run("Unknown", func(t *testing.T) {
		snap := load(t, testDocument(kanji("一", 1, set("radicals_all", []int{200, 1}))))
		rec := snap.Records[0x4e00]
		assert.Equal(t, []int{1, 200}, rec.RadicalsAll)
		assert.Equal(t, []model.Flag{model.FlagUnknownRadical}, rec.Flags)
	})
}

func TestLoad_FlagsPreservedAndAdded(t *testing.T) {
	snap := load(t, testDocument(
		kanji("A", 1, set("quality_flags", []string{"MANUAL_REVIEW", " "})),
	))
	rec := snap.Records[0x41]
	assert.Equal(t, []model.Flag{"MANUAL_REVIEW", model.FlagNonCJKLiteral}, rec.Flags)
}

func TestLoad_GeometryClamped(t *testing.T) {
	snap := load(t, testDocument(
		kanji("一", 1, set("strokes", []map[string]any{
			{"index": 3, "points": [][]float64{{-0.2, 0.5}, {1.00001, 0.5}}},
		})),
	))
	rec := snap.Records[0x4e00]
	assert.Equal(t, []model.Flag{model.FlagCoordinateOutOfRange, model.FlagStrokeIndexMismatch}, rec.Flags)
	for _, s := range rec.Strokes {
		assert.True(t, s.BBox.Within(geometryTolerance))
	}
	assert.Equal(t, 0, rec.Strokes[0].Index)
}

const geometryTolerance = 1e-4

func TestLoad_Compressed(t *testing.T) {
	data := testDocument(
		kanji("一", 1, horizontal(1)),
		kanji("二", 2, horizontal(2), set("variant_of", "一")),
	)
	plain := load(t, data)

	for _, c := range []Compression{CompressionZSTD, CompressionLZ4} {
		t.Run(c.String(), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Compress(&buf, data, c))
			assert.NotEqual(t, data, buf.Bytes())

			snap := load(t, buf.Bytes())
			assert.Equal(t, c, snap.Compression)
			assert.Equal(t, plain.Checksum, snap.Checksum)
			assert.Equal(t, plain.Sorted(), snap.Sorted())
			assert.Equal(t, plain.Report, snap.Report)
		})
	}
}

func TestOpen(t *testing.T) {
	data := testDocument(kanji("一", 1, horizontal(1)))
	var zbuf bytes.Buffer
	require.NoError(t, Compress(&zbuf, data, CompressionZSTD))

	store := blobstore.NewMemoryStore()
	store.Put("kanji.json", data)
	store.Put("kanji.json.zst", zbuf.Bytes())

	for _, name := range []string{"kanji.json", "kanji.json.zst"} {
		t.Run(name, func(t *testing.T) {
			snap, err := Open(context.Background(), store, name)
			require.NoError(t, err)
			assert.Equal(t, 1, snap.Len())
		})
	}

	_, err := Open(context.Background(), store, "missing.json")
	assert.True(t, errors.Is(err, blobstore.ErrNotFound))
}

func TestLoad_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Load(ctx, bytes.NewReader(testDocument(kanji("一", 1))))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestCompressionFromName(t *testing.T) {
	assert.Equal(t, CompressionZSTD, CompressionFromName("a.json.zst"))
	assert.Equal(t, CompressionLZ4, CompressionFromName("a.json.lz4"))
	assert.Equal(t, CompressionNone, CompressionFromName("a.json"))
	assert.Equal(t, CompressionAuto, CompressionFromName("kanji"))
}
