package distance

import (
	"math"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/kanjisim/config"
)

// SlotWidth is the number of values per stroke slot of a geometric block.
// Value 0 of a slot is the encoded mean angle; value 2 is the encoded
// straightness, which is positive for every real stroke and 0 for padding.
const SlotWidth = 4

// AnglePeriod is one full turn in the encoded mean-angle coordinate.
const AnglePeriod = 0.5

// SquaredL2 calculates the squared L2 (Euclidean) distance between two vectors.
// Assumes vectors are the same length (caller's responsibility).
func SquaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// Jaccard returns |a ∩ b| / |a ∪ b|. Two empty sets have overlap 0.
func Jaccard(a, b *roaring.Bitmap) float64 {
	union := a.OrCardinality(b)
	if union == 0 {
		return 0
	}
	return float64(a.AndCardinality(b)) / float64(union)
}

// Terms holds the three unweighted distance terms.
type Terms struct {
	Geometric   float32 `json:"geometric" yaml:"geometric"`
	StrokeCount float32 `json:"stroke_count" yaml:"stroke_count"`
	Radical     float32 `json:"radical" yaml:"radical"`
}

// Geometric returns the Euclidean distance of two geometric blocks of the
// given slot count, scaled by 1/√slots and clamped to [0, 1].
//
// Mean angles are compared around the circle when both slots hold a stroke,
// so directions on either side of ±π are close. A slot's contribution stays
// at most 1.
func Geometric(a, b []float32, slots int) float32 {
	if slots <= 0 {
		return 0
	}
	n := min(len(a), len(b))
	var sum float32
	for i := 0; i+SlotWidth <= n; i += SlotWidth {
		sa, sb := a[i:i+SlotWidth], b[i:i+SlotWidth]
		d := float32(math.Abs(float64(sa[0] - sb[0])))
		if sa[2] > 0 && sb[2] > 0 {
			d = min(d, AnglePeriod-d)
		}
		sum += d*d + SquaredL2(sa[1:], sb[1:])
	}
	return clamp01(float32(math.Sqrt(float64(sum))) / float32(math.Sqrt(float64(slots))))
}

// StrokeCount returns the absolute difference of two normalized counts.
func StrokeCount(a, b float32) float32 {
	return clamp01(float32(math.Abs(float64(a - b))))
}

// Radical returns 1 - Jaccard(a, b); disjoint or empty sets give 1.
func Radical(a, b *roaring.Bitmap) float32 {
	return clamp01(float32(1 - Jaccard(a, b)))
}

// Compute evaluates all three terms.
func Compute(ga, gb []float32, slots int, sa, sb float32, ra, rb *roaring.Bitmap) Terms {
	return Terms{
		Geometric:   Geometric(ga, gb, slots),
		StrokeCount: StrokeCount(sa, sb),
		Radical:     Radical(ra, rb),
	}
}

// Weighted combines the terms with weights that are already normalized to
// sum to 1. The result is clamped to [0, 1].
func (t Terms) Weighted(w config.Weights) float32 {
	d := w.Geometric*float64(t.Geometric) +
		w.StrokeCount*float64(t.StrokeCount) +
		w.Radical*float64(t.Radical)
	return clamp01(float32(d))
}

func clamp01(v float32) float32 {
	switch {
	case math.IsNaN(float64(v)), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
