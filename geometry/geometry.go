// Package geometry converts raw per-stroke polylines into normalized stroke
// descriptors: bounding box, polyline length and direction statistics.
//
// Input points are already expressed relative to the glyph-local bounding
// box. The normalizer never rescales across glyphs; it only clamps points
// into the unit square. Stroke order is preserved.
package geometry

import (
	"math"

	"github.com/hupe1980/kanjisim/model"
)

const (
	// DefaultTolerance is the slack outside [0,1] that is clamped silently.
	DefaultTolerance = 1e-4
	// DegenerateLength is the polyline length below which a stroke is
	// considered degenerate.
	DegenerateLength = 1e-9
	// MinStraightness is the lower bound of the straightness ratio.
	MinStraightness = 1e-6
)

// RawStroke is one stroke as found in the dataset.
type RawStroke struct {
	// Index is the declared drawing-order index (may disagree with position).
	Index int
	// Points is the polyline in glyph-local coordinates.
	Points []model.Point
}

// Options configures Normalize.
type Options struct {
	// Tolerance is the slack outside [0,1] clamped without a flag.
	Tolerance float64
}

// DefaultOptions are the options used when none are given.
var DefaultOptions = Options{Tolerance: DefaultTolerance}

// Result is the output of Normalize.
type Result struct {
	Strokes []model.StrokeDescriptor
	// Flags are the quality flags raised while normalizing (sorted, unique).
	Flags []model.Flag
}

// Normalize converts raw strokes into stroke descriptors.
//
// It never fails: out-of-range coordinates are clamped and flagged,
// degenerate strokes get straightness 1.0 and are flagged, and indices that
// disagree with their position are rewritten and flagged.
func Normalize(raw []RawStroke, optFns ...func(o *Options)) Result {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	if len(raw) == 0 {
		return Result{}
	}

	var flags []model.Flag
	out := make([]model.StrokeDescriptor, len(raw))
	for i, rs := range raw {
		if rs.Index != i {
			flags = append(flags, model.FlagStrokeIndexMismatch)
		}

		pts, outOfRange := clampPoints(rs.Points, opts.Tolerance)
		if outOfRange {
			flags = append(flags, model.FlagCoordinateOutOfRange)
		}

		length := PolylineLength(pts)
		dir, degenerate := Directions(pts, length)
		if degenerate {
			flags = append(flags, model.FlagDegenerateStroke)
		}

		out[i] = model.StrokeDescriptor{
			Index:     i,
			Points:    pts,
			Length:    length,
			BBox:      BoundingBox(pts),
			Direction: dir,
		}
	}

	return Result{Strokes: out, Flags: model.MergeFlags(flags)}
}

// clampPoints copies pts into the unit square. It reports whether any
// coordinate lay further than tol outside.
func clampPoints(pts []model.Point, tol float64) ([]model.Point, bool) {
	out := make([]model.Point, len(pts))
	outOfRange := false
	for i, p := range pts {
		var bad bool
		p.X, bad = clamp01(p.X, tol)
		outOfRange = outOfRange || bad
		p.Y, bad = clamp01(p.Y, tol)
		outOfRange = outOfRange || bad
		out[i] = p
	}
	return out, outOfRange
}

func clamp01(v, tol float64) (float64, bool) {
	switch {
	case math.IsNaN(v):
		return 0, true
	case v < 0:
		return 0, v < -tol
	case v > 1:
		return 1, v > 1+tol
	default:
		return v, false
	}
}

// PolylineLength returns the cumulative Euclidean length of the polyline.
func PolylineLength(pts []model.Point) float64 {
	var sum float64
	for i := 1; i < len(pts); i++ {
		sum += math.Hypot(pts[i].X-pts[i-1].X, pts[i].Y-pts[i-1].Y)
	}
	return sum
}

// BoundingBox returns the bounding box of pts, or the zero box when empty.
func BoundingBox(pts []model.Point) model.BBox {
	if len(pts) == 0 {
		return model.BBox{}
	}
	b := model.BBox{MinX: pts[0].X, MinY: pts[0].Y, MaxX: pts[0].X, MaxY: pts[0].Y}
	for _, p := range pts[1:] {
		b.MinX = math.Min(b.MinX, p.X)
		b.MinY = math.Min(b.MinY, p.Y)
		b.MaxX = math.Max(b.MaxX, p.X)
		b.MaxY = math.Max(b.MaxY, p.Y)
	}
	return b
}

// Directions computes the length-weighted direction statistics of a
// polyline whose total length is length.
//
// The mean is the weighted circular mean of the segment angles; the standard
// deviation is the weighted RMS of each segment's angular deviation from that
// mean, wrapped into [-π, π]. Zero-length segments carry no weight, so paths
// digitized with many short segments are not over-represented.
//
// The second return value reports a degenerate stroke (length ≈ 0), for which
// the statistics are (0, 0, 1).
func Directions(pts []model.Point, length float64) (model.Direction, bool) {
	if len(pts) < 2 || length < DegenerateLength {
		return model.Direction{Straightness: 1}, true
	}

	var sumSin, sumCos float64
	for i := 1; i < len(pts); i++ {
		dx, dy := pts[i].X-pts[i-1].X, pts[i].Y-pts[i-1].Y
		w := math.Hypot(dx, dy)
		if w == 0 {
			continue
		}
		// sin/cos of the segment angle scaled by its length.
		sumSin += dy
		sumCos += dx
	}
	mean := math.Atan2(sumSin, sumCos)

	var sumSq float64
	for i := 1; i < len(pts); i++ {
		dx, dy := pts[i].X-pts[i-1].X, pts[i].Y-pts[i-1].Y
		w := math.Hypot(dx, dy)
		if w == 0 {
			continue
		}
		d := WrapAngle(math.Atan2(dy, dx) - mean)
		sumSq += w * d * d
	}
	std := math.Sqrt(sumSq / length)

	first, last := pts[0], pts[len(pts)-1]
	chord := math.Hypot(last.X-first.X, last.Y-first.Y)
	straightness := math.Min(1, math.Max(MinStraightness, chord/length))

	return model.Direction{MeanAngle: mean, StdAngle: std, Straightness: straightness}, false
}

// WrapAngle maps an angle into [-π, π].
func WrapAngle(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}
