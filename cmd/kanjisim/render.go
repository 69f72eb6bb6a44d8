package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hupe1980/kanjisim"
	"github.com/hupe1980/kanjisim/codec"
	"github.com/hupe1980/kanjisim/model"
	"github.com/hupe1980/kanjisim/quality"
)

// renderer writes command results in one output format. A nil codec means
// plain text.
type renderer struct {
	codec codec.Codec
}

func newRenderer(format string) (renderer, error) {
	switch format {
	case "text", "":
		return renderer{}, nil
	case "json":
		return renderer{codec: codec.JSON{Indent: "  "}}, nil
	case "yaml":
		return renderer{codec: codec.YAML{}}, nil
	default:
		return renderer{}, fmt.Errorf("unknown output format %q (want text, json or yaml)", format)
	}
}

func (r renderer) encode(w io.Writer, v any) error {
	b, err := r.codec.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := w.Write(b); err != nil {
		return err
	}
	if len(b) > 0 && b[len(b)-1] != '\n' {
		_, err = io.WriteString(w, "\n")
	}
	return err
}

func (r renderer) matches(w io.Writer, query model.KanjiRecord, ms []kanjisim.Match) error {
	if r.codec != nil {
		return r.encode(w, struct {
			Query   string           `json:"query" yaml:"query"`
			Matches []kanjisim.Match `json:"matches" yaml:"matches"`
		}{query.Literal, ms})
	}
	fmt.Fprintf(w, "%s (U+%s)\n", query.Literal, strings.ToUpper(query.ID.String()))
	for i, m := range ms {
		fmt.Fprintf(w, "%3d  %s  U+%-6s %.4f  geo=%.3f strokes=%.3f radicals=%.3f  n=%d radical=%s freq=%s\n",
			i+1, m.Record.Literal, strings.ToUpper(m.Record.ID.String()), m.Score,
			m.Terms.Geometric, m.Terms.StrokeCount, m.Terms.Radical,
			m.Record.EffectiveStrokeCount(), optional(m.Record.RadicalID), optional(m.Record.FreqRank))
	}
	return nil
}

// optional renders a nullable dataset field, "-" when absent.
func optional(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}

func (r renderer) record(w io.Writer, rec model.KanjiRecord, root model.KanjiRecord) error {
	if r.codec != nil {
		return r.encode(w, rec)
	}
	fmt.Fprintf(w, "literal:   %s\n", rec.Literal)
	fmt.Fprintf(w, "codepoint: U+%s\n", strings.ToUpper(rec.ID.String()))
	fmt.Fprintf(w, "strokes:   %d (geometry for %d)\n", rec.StrokeCountPrimary, len(rec.Strokes))
	fmt.Fprintf(w, "radicals:  %v\n", rec.RadicalsAll)
	if len(rec.Meanings) > 0 {
		fmt.Fprintf(w, "meanings:  %s\n", strings.Join(rec.Meanings, "; "))
	}
	if rec.VariantOf != "" {
		fmt.Fprintf(w, "variant:   of %s (root %s)\n", rec.VariantOf, root.Literal)
	}
	if len(rec.Flags) > 0 {
		flags := make([]string, len(rec.Flags))
		for i, f := range rec.Flags {
			flags[i] = string(f)
		}
		fmt.Fprintf(w, "flags:     %s\n", strings.Join(flags, ", "))
	}
	return nil
}

func (r renderer) report(w io.Writer, rep quality.ValidationReport) error {
	if r.codec != nil {
		return r.encode(w, rep)
	}
	fmt.Fprintf(w, "build %s, dataset version %q, crc32c %08x\n", rep.BuildID, rep.Version, rep.Checksum)
	_, err := io.WriteString(w, rep.Summary())
	for _, se := range rep.StructuralErrors {
		fmt.Fprintf(w, "  error: %s\n", se.Error())
	}
	return err
}
