package testutil

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"sync"
)

// Element is one kanji element of a dataset document. It is a plain map so
// tests can add, remove or corrupt any field.
type Element map[string]any

// ElementOption modifies an Element.
type ElementOption func(Element)

// Set sets key to v.
func Set(key string, v any) ElementOption {
	return func(e Element) { e[key] = v }
}

// Unset removes key.
func Unset(key string) ElementOption {
	return func(e Element) { delete(e, key) }
}

// VariantOf marks the element as a variant of literal.
func VariantOf(literal string) ElementOption {
	return Set("variant_of", literal)
}

// NoGeometry removes the stroke geometry but keeps the stroke count.
func NoGeometry() ElementOption {
	return Unset("strokes")
}

// Glyph returns an element for literal whose strokes are straight segments of
// length 0.2 at the given angles (radians), stacked vertically in the unit
// square. radicals[0] becomes the primary radical.
func Glyph(literal string, radicals []int, angles ...float64) Element {
	return GlyphWith(literal, radicals, angles)
}

// GlyphWith is Glyph with element options applied afterwards.
func GlyphWith(literal string, radicals []int, angles []float64, opts ...ElementOption) Element {
	strokes := make([]map[string]any, len(angles))
	for i, a := range angles {
		cx, cy := 0.5, float64(i+1)/float64(len(angles)+1)
		dx, dy := 0.1*math.Cos(a), 0.1*math.Sin(a)
		strokes[i] = map[string]any{
			"index":  i,
			"points": [][]float64{{cx - dx, cy - dy}, {cx + dx, cy + dy}},
		}
	}
	e := Element{
		"codepoint":            fmt.Sprintf("%X", []rune(literal)[0]),
		"literal":              literal,
		"stroke_count_primary": len(angles),
		"radicals_all":         radicals,
		"strokes":              strokes,
	}
	if len(radicals) > 0 {
		e["radical_id"] = radicals[0]
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Radical is a radical reference entry.
type Radical struct {
	Glyph       string `json:"glyph"`
	Kangxi      int    `json:"kangxi"`
	StrokeCount int    `json:"stroke_count"`
}

// Document accumulates a dataset document.
type Document struct {
	Version     string             `json:"version"`
	GeneratedAt string             `json:"generated_at"`
	Kanji       []any              `json:"kanji"`
	Radicals    map[string]Radical `json:"radicals"`
	SourceMeta  map[string]any     `json:"source_meta,omitempty"`
}

// NewDocument returns an empty document with a fixed version stamp and a
// small radical table (一 1, 丨 2, 人 9, 口 30, 水 85, 氵 as Kangxi 85).
func NewDocument() *Document {
	return &Document{
		Version:     "synthetic-1",
		GeneratedAt: "2024-01-01T00:00:00Z",
		Radicals: map[string]Radical{
			"1":   {Glyph: "一", Kangxi: 1, StrokeCount: 1},
			"2":   {Glyph: "丨", Kangxi: 2, StrokeCount: 1},
			"9":   {Glyph: "人", Kangxi: 9, StrokeCount: 2},
			"30":  {Glyph: "口", Kangxi: 30, StrokeCount: 3},
			"85":  {Glyph: "水", Kangxi: 85, StrokeCount: 4},
			"300": {Glyph: "氵", Kangxi: 85, StrokeCount: 3},
		},
	}
}

// Add appends kanji elements. Anything JSON-encodable is accepted so that
// tests can inject malformed elements.
func (d *Document) Add(elements ...any) *Document {
	d.Kanji = append(d.Kanji, elements...)
	return d
}

// Bytes encodes the document. It panics on encoding failure, which only
// happens for unencodable test input.
func (d *Document) Bytes() []byte {
	b, err := json.Marshal(d)
	if err != nil {
		panic(err)
	}
	return b
}

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// FirstCodepoint is the codepoint of the first synthetic kanji (一).
const FirstCodepoint = 0x4e00

// Elements generates n synthetic kanji elements on consecutive codepoints
// starting at FirstCodepoint. Stroke counts are 1..24, angles are drawn from
// the eight principal brush directions plus jitter, and radicals come from
// the NewDocument table. About one in ten elements has no geometry and one in
// twenty is a variant of an earlier element.
func (r *RNG) Elements(n int) []Element {
	r.mu.Lock()
	defer r.mu.Unlock()

	radicals := []int{1, 2, 9, 30, 85, 300}
	out := make([]Element, n)
	for i := range n {
		literal := string(rune(FirstCodepoint + i))

		strokes := 1 + r.rand.Intn(24)
		angles := make([]float64, strokes)
		for j := range angles {
			angles[j] = float64(r.rand.Intn(8)-3)*math.Pi/4 + (r.rand.Float64()-0.5)*0.1
		}

		rads := []int{radicals[r.rand.Intn(len(radicals))]}
		if r.rand.Intn(3) == 0 {
			rads = append(rads, radicals[r.rand.Intn(len(radicals))])
		}

		e := GlyphWith(literal, rads, angles,
			Set("freq_rank", 1+r.rand.Intn(2500)),
			Set("joyo", r.rand.Intn(2) == 0),
			Set("meanings", []string{fmt.Sprintf("synthetic %d", i)}),
		)
		if r.rand.Intn(10) == 0 {
			NoGeometry()(e)
		}
		if i > 0 && r.rand.Intn(20) == 0 {
			VariantOf(string(rune(FirstCodepoint + r.rand.Intn(i))))(e)
		}
		out[i] = e
	}
	return out
}

// Dataset generates an encoded document holding n synthetic kanji elements.
func (r *RNG) Dataset(n int) []byte {
	doc := NewDocument()
	for _, e := range r.Elements(n) {
		doc.Add(e)
	}
	doc.SourceMeta = map[string]any{"generator": "testutil", "seed": r.seed}
	return doc.Bytes()
}
