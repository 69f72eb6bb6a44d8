package model

import (
	"maps"
	"slices"
)

// Point is a 2-D point in glyph-local unit-square coordinates.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// BBox is an axis-aligned bounding box (minx, miny, maxx, maxy).
type BBox struct {
	MinX float64 `json:"min_x" yaml:"min_x"`
	MinY float64 `json:"min_y" yaml:"min_y"`
	MaxX float64 `json:"max_x" yaml:"max_x"`
	MaxY float64 `json:"max_y" yaml:"max_y"`
}

// Within reports whether the box lies inside [0,1]x[0,1] allowing tol slack.
func (b BBox) Within(tol float64) bool {
	return b.MinX >= -tol && b.MinY >= -tol && b.MaxX <= 1+tol && b.MaxY <= 1+tol
}

// Direction holds the direction statistics of a stroke.
// Angles are radians in [-π, π]; Straightness is in (0, 1].
type Direction struct {
	MeanAngle    float64 `json:"mean_angle" yaml:"mean_angle"`
	StdAngle     float64 `json:"std_angle" yaml:"std_angle"`
	Straightness float64 `json:"straightness" yaml:"straightness"`
}

// StrokeDescriptor is the normalized geometric summary of one brush stroke.
// Index equals the stroke's position in the drawing sequence.
type StrokeDescriptor struct {
	Index     int       `json:"index" yaml:"index"`
	Points    []Point   `json:"points" yaml:"points"`
	Length    float64   `json:"length" yaml:"length"`
	BBox      BBox      `json:"bbox" yaml:"bbox"`
	Direction Direction `json:"direction" yaml:"direction"`
}

// RadicalRecord is immutable radical reference data.
type RadicalRecord struct {
	ID          int    `json:"id" yaml:"id"`
	Glyph       string `json:"glyph" yaml:"glyph"`
	Kangxi      int    `json:"kangxi" yaml:"kangxi"`
	StrokeCount int    `json:"stroke_count" yaml:"stroke_count"`
}

// KanjiRecord is one validated kanji literal or historical variant.
type KanjiRecord struct {
	ID                 ID                 `json:"codepoint" yaml:"codepoint"`
	Literal            string             `json:"literal" yaml:"literal"`
	StrokeCountPrimary int                `json:"stroke_count_primary" yaml:"stroke_count_primary"`
	StrokeCountAlt     []int              `json:"stroke_count_alt,omitempty" yaml:"stroke_count_alt,omitempty"`
	RadicalID          *int               `json:"radical_id,omitempty" yaml:"radical_id,omitempty"`
	RadicalsAll        []int              `json:"radicals_all" yaml:"radicals_all"`
	OnReadings         []string           `json:"on_readings,omitempty" yaml:"on_readings,omitempty"`
	KunReadings        []string           `json:"kun_readings,omitempty" yaml:"kun_readings,omitempty"`
	Meanings           []string           `json:"meanings,omitempty" yaml:"meanings,omitempty"`
	FreqRank           *int               `json:"freq_rank,omitempty" yaml:"freq_rank,omitempty"`
	Joyo               bool               `json:"joyo" yaml:"joyo"`
	Jinmeiyo           bool               `json:"jinmeiyo" yaml:"jinmeiyo"`
	VariantOf          string             `json:"variant_of,omitempty" yaml:"variant_of,omitempty"`
	Variants           []string           `json:"variants,omitempty" yaml:"variants,omitempty"`
	Strokes            []StrokeDescriptor `json:"strokes,omitempty" yaml:"strokes,omitempty"`
	Sources            map[string]any     `json:"sources,omitempty" yaml:"sources,omitempty"`
	Flags              []Flag             `json:"quality_flags,omitempty" yaml:"quality_flags,omitempty"`
}

// HasGeometry reports whether the record carries stroke geometry.
func (r *KanjiRecord) HasGeometry() bool {
	return len(r.Strokes) > 0
}

// EffectiveStrokeCount returns the stroke count used for comparison:
// the number of stroke descriptors when geometry exists, otherwise the
// primary stroke count.
func (r *KanjiRecord) EffectiveStrokeCount() int {
	if len(r.Strokes) > 0 {
		return len(r.Strokes)
	}
	return r.StrokeCountPrimary
}

// HasFlag reports whether the record carries flag f.
func (r *KanjiRecord) HasFlag(f Flag) bool {
	_, ok := slices.BinarySearch(r.Flags, f)
	return ok
}

// Clone returns a deep copy of the record.
func (r *KanjiRecord) Clone() KanjiRecord {
	c := *r
	c.StrokeCountAlt = slices.Clone(r.StrokeCountAlt)
	if r.RadicalID != nil {
		v := *r.RadicalID
		c.RadicalID = &v
	}
	c.RadicalsAll = slices.Clone(r.RadicalsAll)
	c.OnReadings = slices.Clone(r.OnReadings)
	c.KunReadings = slices.Clone(r.KunReadings)
	c.Meanings = slices.Clone(r.Meanings)
	if r.FreqRank != nil {
		v := *r.FreqRank
		c.FreqRank = &v
	}
	c.Variants = slices.Clone(r.Variants)
	if r.Strokes != nil {
		c.Strokes = make([]StrokeDescriptor, len(r.Strokes))
		for i, s := range r.Strokes {
			s.Points = slices.Clone(s.Points)
			c.Strokes[i] = s
		}
	}
	c.Sources = maps.Clone(r.Sources)
	c.Flags = slices.Clone(r.Flags)
	return c
}

// Indexable reports whether the record takes part in similarity search.
// Records whose variant edge was broken to resolve a cycle are excluded.
func (r *KanjiRecord) Indexable() bool {
	return !r.HasFlag(FlagVariantCycle)
}
