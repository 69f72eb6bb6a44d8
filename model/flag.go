package model

import "slices"

// Flag is a non-fatal quality annotation recording a detected data
// inconsistency. Flags never block feature derivation.
type Flag string

const (
	// FlagDuplicateLiteral marks a record dropped because an earlier record
	// carries the same literal. The codepoint is derived from the literal, so
	// this also covers duplicate codepoints.
	FlagDuplicateLiteral Flag = "DUPLICATE_LITERAL"
	// FlagVariantCycle marks a record whose variant_of edge closed a cycle and
	// was cleared. Such records are excluded from the similarity index.
	FlagVariantCycle Flag = "VARIANT_CYCLE"
	// FlagVariantTargetMissing marks a variant reference to a literal that is
	// not part of the dataset.
	FlagVariantTargetMissing Flag = "VARIANT_TARGET_MISSING"
	// FlagAltStrokeDiscrepancy marks a primary stroke count that disagrees with
	// the number of stroke descriptors.
	FlagAltStrokeDiscrepancy Flag = "ALT_STROKE_DISCREPANCY"
	// FlagGeometryMissing marks a record without stroke geometry.
	FlagGeometryMissing Flag = "GEOMETRY_MISSING"
	// FlagTruncatedStrokes marks a record with more strokes than stroke slots.
	FlagTruncatedStrokes Flag = "TRUNCATED_STROKES"
	// FlagDegenerateStroke marks a record with at least one zero-length stroke.
	FlagDegenerateStroke Flag = "DEGENERATE_STROKE"
	// FlagCoordinateOutOfRange marks stroke points outside the unit square
	// beyond rounding tolerance. They are clamped.
	FlagCoordinateOutOfRange Flag = "COORDINATE_OUT_OF_RANGE"
	// FlagStrokeIndexMismatch marks stroke indices that disagree with their
	// position in the drawing sequence. They are rewritten.
	FlagStrokeIndexMismatch Flag = "STROKE_INDEX_MISMATCH"
	// FlagRadicalSetRepaired marks a primary radical that was missing from
	// radicals_all and has been added.
	FlagRadicalSetRepaired Flag = "RADICAL_SET_REPAIRED"
	// FlagUnknownRadical marks radical ids without a radical reference entry.
	FlagUnknownRadical Flag = "UNKNOWN_RADICAL"
	// FlagNonCJKLiteral marks literals outside the CJK ideograph blocks.
	FlagNonCJKLiteral Flag = "NON_CJK_LITERAL"
)

// MergeFlags returns the sorted union of the given flag lists.
func MergeFlags(lists ...[]Flag) []Flag {
	n := 0
	for _, l := range lists {
		n += len(l)
	}
	if n == 0 {
		return nil
	}
	out := make([]Flag, 0, n)
	for _, l := range lists {
		out = append(out, l...)
	}
	slices.Sort(out)
	return slices.Compact(out)
}
