package dataset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/hupe1980/kanjisim/geometry"
	"github.com/hupe1980/kanjisim/model"
	"github.com/hupe1980/kanjisim/quality"
)

// document is the top-level shape of a dataset. Kanji elements and radical
// entries are kept raw so that a malformed element fails on its own.
type document struct {
	Version     string                     `json:"version"`
	GeneratedAt string                     `json:"generated_at"`
	Kanji       []json.RawMessage          `json:"kanji"`
	Radicals    map[string]json.RawMessage `json:"radicals"`
	SourceMeta  map[string]any             `json:"source_meta"`
}

// rawRecord mirrors one kanji element. Fields the engine does not consume
// (curvature, embedding and future additions) are ignored.
type rawRecord struct {
	Codepoint          string         `json:"codepoint" validate:"required,codepoint"`
	Literal            string         `json:"literal" validate:"required,glyph"`
	StrokeCountPrimary *int           `json:"stroke_count_primary" validate:"required,gte=0"`
	StrokeCountAlt     []int          `json:"stroke_count_alt" validate:"dive,gte=1"`
	RadicalID          *int           `json:"radical_id" validate:"omitempty,gte=1"`
	RadicalsAll        []int          `json:"radicals_all" validate:"dive,gte=1"`
	OnReadings         []string       `json:"on_readings"`
	KunReadings        []string       `json:"kun_readings"`
	Meanings           []string       `json:"meanings"`
	FreqRank           *int           `json:"freq_rank" validate:"omitempty,gte=1"`
	Joyo               bool           `json:"joyo"`
	Jinmeiyo           bool           `json:"jinmeiyo"`
	VariantOf          *string        `json:"variant_of"`
	Variants           []string       `json:"variants"`
	Strokes            []rawStroke    `json:"strokes" validate:"dive"`
	Sources            map[string]any `json:"sources"`
	QualityFlags       []string       `json:"quality_flags"`
}

// rawStroke mirrors one stroke element. Derived values stored in the
// document (length, bbox, direction stats) are recomputed, not trusted.
type rawStroke struct {
	Index  *int       `json:"index" validate:"omitempty,gte=0"`
	Points []rawPoint `json:"points"`
}

// rawPoint accepts both the compact [x, y] pair and the {"x": .., "y": ..}
// object written by this module's own encoders.
type rawPoint model.Point

func (p *rawPoint) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var xy []float64
		if err := json.Unmarshal(data, &xy); err != nil {
			return err
		}
		if len(xy) != 2 {
			return fmt.Errorf("points: expected [x, y] pair, got %d coordinates", len(xy))
		}
		p.X, p.Y = xy[0], xy[1]
		return nil
	}
	var obj struct {
		X *float64 `json:"x"`
		Y *float64 `json:"y"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	if obj.X == nil || obj.Y == nil {
		return errors.New("points: point needs both x and y")
	}
	p.X, p.Y = *obj.X, *obj.Y
	return nil
}

type rawRadical struct {
	Glyph       string `json:"glyph" validate:"required"`
	Kangxi      int    `json:"kangxi" validate:"gte=0"`
	StrokeCount int    `json:"stroke_count" validate:"gte=0"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("codepoint", func(fl validator.FieldLevel) bool {
		_, err := model.ParseID(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("glyph", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return utf8.RuneCountInString(s) == 1 && utf8.ValidString(s)
	})
	return v
}

// describe renders the first validation failure as "field: reason".
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		ns = ns[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return ns + ": missing required field"
	case "codepoint":
		return fmt.Sprintf("%s: %q is not a hexadecimal codepoint", ns, fe.Value())
	case "glyph":
		return fmt.Sprintf("%s: %q is not a single character", ns, fe.Value())
	default:
		return fmt.Sprintf("%s: must be %s %s", ns, fe.Tag(), fe.Param())
	}
}

// parseRadicals decodes the radicals mapping. Bad entries are skipped and
// reported; keys are processed in sorted order so the report is stable.
func parseRadicals(raw map[string]json.RawMessage) (map[int]model.RadicalRecord, []quality.StructuralError) {
	out := make(map[int]model.RadicalRecord, len(raw))
	var errs []quality.StructuralError

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		fail := func(reason string) {
			errs = append(errs, quality.StructuralError{Position: -1, Reason: "radical " + k + ": " + reason})
		}
		id, err := strconv.Atoi(strings.TrimSpace(k))
		if err != nil || id < 1 {
			fail("radical id must be a positive integer")
			continue
		}
		var rr rawRadical
		if err := json.Unmarshal(raw[k], &rr); err != nil {
			fail(err.Error())
			continue
		}
		if err := validate.Struct(rr); err != nil {
			fail(describe(err))
			continue
		}
		out[id] = model.RadicalRecord{ID: id, Glyph: rr.Glyph, Kangxi: rr.Kangxi, StrokeCount: rr.StrokeCount}
	}
	return out, errs
}

// parseRecord turns one kanji element into a record. It is a pure function
// of its inputs and safe to run concurrently. Exactly one of the results is
// non-nil.
func parseRecord(pos int, raw json.RawMessage, radicals map[int]model.RadicalRecord, gopts geometry.Options) (*model.KanjiRecord, *quality.StructuralError) {
	var rr rawRecord
	fail := func(reason string) (*model.KanjiRecord, *quality.StructuralError) {
		return nil, &quality.StructuralError{
			Position:  pos,
			Codepoint: rr.Codepoint,
			Literal:   rr.Literal,
			Reason:    reason,
		}
	}

	if len(raw) == 0 {
		raw = json.RawMessage("null")
	}
	if err := json.Unmarshal(raw, &rr); err != nil {
		return fail(err.Error())
	}
	if err := validate.Struct(rr); err != nil {
		return fail(describe(err))
	}

	id, _ := model.ParseID(rr.Codepoint)
	litID, err := model.IDFromLiteral(rr.Literal)
	if err != nil {
		return fail(err.Error())
	}
	if litID != id {
		return fail(fmt.Sprintf("codepoint %s does not match literal %q (%s)", id, rr.Literal, litID))
	}

	var flags []model.Flag
	for _, f := range rr.QualityFlags {
		if f = strings.TrimSpace(f); f != "" {
			flags = append(flags, model.Flag(f))
		}
	}

	rec := &model.KanjiRecord{
		ID:                 id,
		Literal:            rr.Literal,
		StrokeCountPrimary: *rr.StrokeCountPrimary,
		StrokeCountAlt:     rr.StrokeCountAlt,
		RadicalID:          rr.RadicalID,
		OnReadings:         rr.OnReadings,
		KunReadings:        rr.KunReadings,
		Meanings:           rr.Meanings,
		FreqRank:           rr.FreqRank,
		Joyo:               rr.Joyo,
		Jinmeiyo:           rr.Jinmeiyo,
		Variants:           rr.Variants,
		Sources:            rr.Sources,
	}
	if rr.VariantOf != nil {
		rec.VariantOf = strings.TrimSpace(*rr.VariantOf)
	}

	rec.RadicalsAll = slices.Clone(rr.RadicalsAll)
	slices.Sort(rec.RadicalsAll)
	rec.RadicalsAll = slices.Compact(rec.RadicalsAll)
	if rec.RadicalID != nil {
		if _, ok := slices.BinarySearch(rec.RadicalsAll, *rec.RadicalID); !ok {
			rec.RadicalsAll = append(rec.RadicalsAll, *rec.RadicalID)
			slices.Sort(rec.RadicalsAll)
			flags = append(flags, model.FlagRadicalSetRepaired)
		}
	}
	if len(radicals) > 0 {
		for _, rid := range rec.RadicalsAll {
			if _, ok := radicals[rid]; !ok {
				flags = append(flags, model.FlagUnknownRadical)
				break
			}
		}
	}

	if !id.IsCJK() {
		flags = append(flags, model.FlagNonCJKLiteral)
	}

	if len(rr.Strokes) > 0 {
		strokes := make([]geometry.RawStroke, len(rr.Strokes))
		for i, s := range rr.Strokes {
			idx := i
			if s.Index != nil {
				idx = *s.Index
			}
			pts := make([]model.Point, len(s.Points))
			for j, p := range s.Points {
				pts[j] = model.Point(p)
			}
			strokes[i] = geometry.RawStroke{Index: idx, Points: pts}
		}
		res := geometry.Normalize(strokes, func(o *geometry.Options) { *o = gopts })
		rec.Strokes = res.Strokes
		flags = append(flags, res.Flags...)

		if len(rec.Strokes) != rec.StrokeCountPrimary {
			flags = append(flags, model.FlagAltStrokeDiscrepancy)
		}
	}

	rec.Flags = model.MergeFlags(flags)
	return rec, nil
}
