package dataset

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/kanjisim/blobstore"
	"github.com/hupe1980/kanjisim/codec"
	"github.com/hupe1980/kanjisim/geometry"
	"github.com/hupe1980/kanjisim/internal/hash"
	"github.com/hupe1980/kanjisim/model"
	"github.com/hupe1980/kanjisim/quality"
)

// ErrMalformed is returned when the document as a whole cannot be decoded.
var ErrMalformed = errors.New("dataset: malformed document")

// Options configures Load.
type Options struct {
	// Parallelism bounds the number of records normalized concurrently.
	// Zero means GOMAXPROCS.
	Parallelism int
	// Compression selects the document framing. Defaults to auto-detection.
	Compression Compression
	// Geometry configures the stroke normalizer.
	Geometry geometry.Options
}

// Option configures Load.
type Option func(*Options)

// WithParallelism bounds the number of records normalized concurrently.
func WithParallelism(n int) Option {
	return func(o *Options) { o.Parallelism = n }
}

// WithCompression forces the document framing.
func WithCompression(c Compression) Option {
	return func(o *Options) { o.Compression = c }
}

// WithTolerance sets the coordinate slack clamped without a flag.
func WithTolerance(tol float64) Option {
	return func(o *Options) { o.Geometry.Tolerance = tol }
}

func applyOptions(optFns []Option) Options {
	o := Options{Geometry: geometry.DefaultOptions}
	for _, fn := range optFns {
		fn(&o)
	}
	if o.Parallelism <= 0 {
		o.Parallelism = runtime.GOMAXPROCS(0)
	}
	return o
}

// Snapshot is an immutable, validated dataset.
//
// Callers must treat every reachable value as read-only.
type Snapshot struct {
	Version     string
	GeneratedAt string
	// Compression is the framing the document was read with.
	Compression Compression
	// Checksum is the CRC32C of the decompressed document.
	Checksum uint32
	// Records holds every surviving record by ID.
	Records map[model.ID]*model.KanjiRecord
	// Order lists the IDs of Records in ascending order.
	Order      []model.ID
	Radicals   map[int]model.RadicalRecord
	SourceMeta map[string]any
	// Report is the load-stage validation report.
	Report quality.ValidationReport
}

// Len returns the number of surviving records.
func (s *Snapshot) Len() int { return len(s.Order) }

// Sorted returns the records in ascending ID order.
func (s *Snapshot) Sorted() []*model.KanjiRecord {
	out := make([]*model.KanjiRecord, len(s.Order))
	for i, id := range s.Order {
		out[i] = s.Records[id]
	}
	return out
}

// ByLiteral returns the record for a literal.
func (s *Snapshot) ByLiteral(literal string) (*model.KanjiRecord, bool) {
	id, err := model.IDFromLiteral(literal)
	if err != nil {
		return nil, false
	}
	rec, ok := s.Records[id]
	return rec, ok
}

// Open reads the named dataset from store.
//
// When no compression is forced, the blob name's extension is consulted
// before sniffing the content.
func Open(ctx context.Context, store blobstore.BlobStore, name string, optFns ...Option) (*Snapshot, error) {
	data, err := blobstore.ReadAll(ctx, store, name)
	if err != nil {
		return nil, fmt.Errorf("dataset: open %s: %w", name, err)
	}
	if c := CompressionFromName(name); c != CompressionAuto {
		optFns = append([]Option{WithCompression(c)}, optFns...)
	}
	return Load(ctx, bytes.NewReader(data), optFns...)
}

// Load reads, validates and normalizes a dataset document.
//
// Only failures affecting the whole document are returned as errors. Bad
// kanji elements are excluded and listed in Snapshot.Report.
func Load(ctx context.Context, r io.Reader, optFns ...Option) (*Snapshot, error) {
	opts := applyOptions(optFns)

	data, compression, err := readDocument(r, opts.Compression)
	if err != nil {
		return nil, fmt.Errorf("dataset: read: %w", err)
	}

	var doc document
	if err := (codec.GoJSON{}).Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	radicals, structural := parseRadicals(doc.Radicals)

	parsed, perrs, err := parseAll(ctx, doc.Kanji, radicals, opts)
	if err != nil {
		return nil, err
	}
	structural = append(structural, perrs...)

	records, dropped := dedupe(parsed)
	resolveVariants(records)

	snap := &Snapshot{
		Version:     doc.Version,
		GeneratedAt: doc.GeneratedAt,
		Compression: compression,
		Checksum:    hash.CRC32C(data),
		Records:     make(map[model.ID]*model.KanjiRecord, len(records)),
		Order:       make([]model.ID, 0, len(records)),
		Radicals:    radicals,
		SourceMeta:  doc.SourceMeta,
	}
	for _, rec := range records {
		snap.Records[rec.ID] = rec
		snap.Order = append(snap.Order, rec.ID)
	}
	slices.Sort(snap.Order)

	snap.Report = quality.Build(snap.Sorted(), dropped, structural)
	snap.Report.Version = doc.Version
	snap.Report.Checksum = snap.Checksum
	return snap, nil
}

// parsedRecord is the task-local output of one parse task.
type parsedRecord struct {
	pos int
	rec *model.KanjiRecord
}

// parseAll parses and normalizes every kanji element in parallel. Results
// are written to per-position slots and merged in document order.
func parseAll(ctx context.Context, raw []json.RawMessage, radicals map[int]model.RadicalRecord, opts Options) ([]parsedRecord, []quality.StructuralError, error) {
	recs := make([]*model.KanjiRecord, len(raw))
	errs := make([]*quality.StructuralError, len(raw))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Parallelism)
	for i := range raw {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			recs[i], errs[i] = parseRecord(i, raw[i], radicals, opts.Geometry)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	out := make([]parsedRecord, 0, len(raw))
	var structural []quality.StructuralError
	for i := range raw {
		if errs[i] != nil {
			structural = append(structural, *errs[i])
			continue
		}
		out = append(out, parsedRecord{pos: i, rec: recs[i]})
	}
	return out, structural, nil
}

// dedupe keeps the first record per literal in document order.
func dedupe(parsed []parsedRecord) ([]*model.KanjiRecord, []quality.DroppedRecord) {
	seen := make(map[model.ID]struct{}, len(parsed))
	records := make([]*model.KanjiRecord, 0, len(parsed))
	var dropped []quality.DroppedRecord
	for _, p := range parsed {
		if _, dup := seen[p.rec.ID]; dup {
			dropped = append(dropped, quality.DroppedRecord{
				Position: p.pos,
				ID:       p.rec.ID,
				Literal:  p.rec.Literal,
				Flag:     model.FlagDuplicateLiteral,
			})
			continue
		}
		seen[p.rec.ID] = struct{}{}
		records = append(records, p.rec)
	}
	return records, dropped
}
