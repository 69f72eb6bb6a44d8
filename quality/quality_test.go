package quality

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/hupe1980/kanjisim/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(id model.ID, flags ...model.Flag) *model.KanjiRecord {
	return &model.KanjiRecord{ID: id, Literal: id.Literal(), Flags: model.MergeFlags(flags)}
}

func TestBuild(t *testing.T) {
	records := []*model.KanjiRecord{
		rec(0x4e00),
		rec(0x4e8c, model.FlagGeometryMissing),
		rec(0x4e09, model.FlagVariantCycle, model.FlagAltStrokeDiscrepancy),
		rec(0x6f22, model.FlagAltStrokeDiscrepancy, model.FlagTruncatedStrokes),
	}
	dropped := []DroppedRecord{
		{Position: 7, ID: 0x4e00, Literal: "一", Flag: model.FlagDuplicateLiteral},
		{Position: 5, ID: 0x4e01, Literal: "丁", Flag: model.FlagDuplicateLiteral},
	}
	structural := []StructuralError{
		{Position: 9, Reason: "literal: required"},
		{Position: 2, Codepoint: "zz", Reason: "codepoint: hexadecimal"},
	}

	r := Build(records, dropped, structural)

	assert.Equal(t, 4, r.Loaded)
	assert.Equal(t, 3, r.Indexed)
	assert.Equal(t, 2, r.Duplicates)
	assert.Equal(t, 1, r.CycleBreaks)
	assert.Equal(t, 1, r.MissingGeometry)
	assert.Equal(t, 2, r.Discrepancies)
	assert.Equal(t, 1, r.Counts[model.FlagTruncatedStrokes])
	assert.Equal(t, 2, r.Counts[model.FlagDuplicateLiteral])

	assert.Equal(t, []model.ID{0x4e09, 0x4e8c, 0x6f22}, r.Flagged())
	assert.Equal(t, []model.Flag{model.FlagGeometryMissing}, r.Flags(0x4e8c))
	assert.Nil(t, r.Flags(0x4e00))

	require.Len(t, r.Dropped, 2)
	assert.Equal(t, 5, r.Dropped[0].Position)
	require.Len(t, r.StructuralErrors, 2)
	assert.Equal(t, 2, r.StructuralErrors[0].Position)
	assert.False(t, r.Clean())
}

func TestBuild_Clean(t *testing.T) {
	r := Build([]*model.KanjiRecord{rec(0x4e00), rec(0x4e8c)}, nil, nil)
	assert.True(t, r.Clean())
	assert.Equal(t, 2, r.Indexed)
	assert.Empty(t, r.Flagged())
}

func TestBuild_DoesNotAliasInput(t *testing.T) {
	r0 := rec(0x4e8c, model.FlagGeometryMissing)
	r := Build([]*model.KanjiRecord{r0}, nil, nil)
	r0.Flags[0] = model.FlagVariantCycle
	assert.Equal(t, []model.Flag{model.FlagGeometryMissing}, r.Flags(0x4e8c))
}

func TestSummary(t *testing.T) {
	r := Build([]*model.KanjiRecord{
		rec(0x4e8c, model.FlagGeometryMissing),
		rec(0x4e09, model.FlagVariantCycle),
	}, nil, nil)
	s := r.Summary()
	assert.Contains(t, s, "loaded=2 indexed=1")
	assert.Contains(t, s, "cycle_breaks=1")
	// Flags are listed in sorted order.
	assert.Less(t, strings.Index(s, "GEOMETRY_MISSING"), strings.Index(s, "VARIANT_CYCLE"))
	assert.Equal(t, s, r.Summary())
}

func TestStructuralError(t *testing.T) {
	assert.Equal(t, "record 3 (6f22): bad", StructuralError{Position: 3, Codepoint: "6f22", Reason: "bad"}.Error())
	assert.Equal(t, "record 3: bad", StructuralError{Position: 3, Reason: "bad"}.Error())
}

func TestReportJSONUsesHexIDs(t *testing.T) {
	r := Build([]*model.KanjiRecord{rec(0x6f22, model.FlagGeometryMissing)}, nil, nil)
	data, err := json.Marshal(&r)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"6f22":["GEOMETRY_MISSING"]`)
}
