// Package quality aggregates validation and derivation issues into a
// dataset-level report.
//
// The reporter observes every stage of the pipeline but never feeds back into
// it; the similarity index does not consult the report at query time.
package quality

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/hupe1980/kanjisim/model"
)

// StructuralError describes a record that failed structural parsing and was
// excluded from the dataset.
type StructuralError struct {
	// Position is the index of the record in the document's kanji sequence,
	// or -1 for entries of the radicals mapping.
	Position  int    `json:"position" yaml:"position"`
	Codepoint string `json:"codepoint,omitempty" yaml:"codepoint,omitempty"`
	Literal   string `json:"literal,omitempty" yaml:"literal,omitempty"`
	Reason    string `json:"reason" yaml:"reason"`
}

func (e StructuralError) Error() string {
	if e.Codepoint != "" {
		return fmt.Sprintf("record %d (%s): %s", e.Position, e.Codepoint, e.Reason)
	}
	return fmt.Sprintf("record %d: %s", e.Position, e.Reason)
}

// DroppedRecord describes a structurally valid record removed by a
// cross-record check (duplicates).
type DroppedRecord struct {
	Position int        `json:"position" yaml:"position"`
	ID       model.ID   `json:"codepoint" yaml:"codepoint"`
	Literal  string     `json:"literal" yaml:"literal"`
	Flag     model.Flag `json:"flag" yaml:"flag"`
}

// ValidationReport summarizes per-record quality flags and dataset-wide
// counts.
type ValidationReport struct {
	// BuildID identifies the engine build the report belongs to.
	BuildID string `json:"build_id,omitempty" yaml:"build_id,omitempty"`
	// Version is the dataset document version stamp.
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
	// Checksum is the CRC32C of the decompressed dataset document.
	Checksum uint32 `json:"checksum,omitempty" yaml:"checksum,omitempty"`

	// Loaded is the number of records that survived loading.
	Loaded int `json:"loaded" yaml:"loaded"`
	// Indexed is the number of loaded records eligible for similarity search.
	Indexed int `json:"indexed" yaml:"indexed"`

	Duplicates      int `json:"duplicates" yaml:"duplicates"`
	CycleBreaks     int `json:"cycle_breaks" yaml:"cycle_breaks"`
	MissingGeometry int `json:"missing_geometry" yaml:"missing_geometry"`
	Discrepancies   int `json:"discrepancies" yaml:"discrepancies"`

	// Counts holds the number of records carrying each flag, dropped records
	// included.
	Counts map[model.Flag]int `json:"counts,omitempty" yaml:"counts,omitempty"`
	// Records maps each flagged record to its flags.
	Records map[model.ID][]model.Flag `json:"records,omitempty" yaml:"records,omitempty"`

	StructuralErrors []StructuralError `json:"structural_errors,omitempty" yaml:"structural_errors,omitempty"`
	Dropped          []DroppedRecord   `json:"dropped,omitempty" yaml:"dropped,omitempty"`
}

// Build aggregates the flags of records, the dropped records and the
// structural errors into a report. It is a pure function of its inputs.
func Build(records []*model.KanjiRecord, dropped []DroppedRecord, structural []StructuralError) ValidationReport {
	r := ValidationReport{
		Loaded:  len(records),
		Counts:  make(map[model.Flag]int),
		Records: make(map[model.ID][]model.Flag),
	}

	for _, rec := range records {
		if rec.Indexable() {
			r.Indexed++
		}
		if len(rec.Flags) == 0 {
			continue
		}
		r.Records[rec.ID] = slices.Clone(rec.Flags)
		for _, f := range rec.Flags {
			r.Counts[f]++
		}
	}

	for _, d := range dropped {
		r.Counts[d.Flag]++
		if d.Flag == model.FlagDuplicateLiteral {
			r.Duplicates++
		}
	}

	r.CycleBreaks = r.Counts[model.FlagVariantCycle]
	r.MissingGeometry = r.Counts[model.FlagGeometryMissing]
	r.Discrepancies = r.Counts[model.FlagAltStrokeDiscrepancy]

	r.Dropped = slices.Clone(dropped)
	slices.SortFunc(r.Dropped, func(a, b DroppedRecord) int { return a.Position - b.Position })
	r.StructuralErrors = slices.Clone(structural)
	slices.SortFunc(r.StructuralErrors, func(a, b StructuralError) int { return a.Position - b.Position })

	return r
}

// Flags returns the flags recorded for id.
func (r *ValidationReport) Flags(id model.ID) []model.Flag {
	return r.Records[id]
}

// Flagged returns the IDs of all flagged records in ascending order.
func (r *ValidationReport) Flagged() []model.ID {
	return slices.Sorted(maps.Keys(r.Records))
}

// Clean reports whether the dataset loaded without any issue.
func (r *ValidationReport) Clean() bool {
	return len(r.Records) == 0 && len(r.Dropped) == 0 && len(r.StructuralErrors) == 0
}

// Summary renders a stable, human-readable summary.
func (r *ValidationReport) Summary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "loaded=%d indexed=%d structural_errors=%d dropped=%d\n",
		r.Loaded, r.Indexed, len(r.StructuralErrors), len(r.Dropped))
	fmt.Fprintf(&sb, "duplicates=%d cycle_breaks=%d missing_geometry=%d discrepancies=%d\n",
		r.Duplicates, r.CycleBreaks, r.MissingGeometry, r.Discrepancies)
	for _, f := range slices.Sorted(maps.Keys(r.Counts)) {
		fmt.Fprintf(&sb, "  %-26s %d\n", f, r.Counts[f])
	}
	return sb.String()
}
