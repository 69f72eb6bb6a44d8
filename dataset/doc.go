// Package dataset loads the canonical kanji dataset into an immutable
// Snapshot.
//
// A dataset document is a JSON object:
//
//	{
//	  "version": "2024-05-01",
//	  "generated_at": "2024-05-01T12:00:00Z",
//	  "kanji": [ { "codepoint": "6f22", "literal": "漢", ... }, ... ],
//	  "radicals": { "85": { "glyph": "水", "kangxi": 85, "stroke_count": 4 } },
//	  "source_meta": { ... }
//	}
//
// The document may be compressed with zstd or lz4. Compression is detected
// from the blob name (".zst", ".lz4") or, failing that, from the frame magic.
//
// Loading isolates faults: a kanji element that fails structural parsing is
// excluded and recorded as a quality.StructuralError, never returned as an
// error. Cross-record problems (duplicates, variant cycles, dangling variant
// references) are repaired and surfaced as quality flags. Load fails only when
// the document as a whole cannot be read.
package dataset
