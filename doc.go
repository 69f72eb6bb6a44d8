// Package kanjisim finds visually and structurally similar kanji.
//
// An Engine loads a kanji dataset once, validates it, derives a fixed-length
// feature vector per record from stroke geometry, stroke count and radical
// membership, and answers k-nearest-neighbor queries over the result. The
// engine is read-only after Open and safe for concurrent use.
//
// # Quick Start
//
// Local mode:
//
//	ctx := context.Background()
//	eng, _ := kanjisim.Open(ctx, kanjisim.Local("./kanji.json"))
//	defer eng.Close()
//
//	matches, _ := eng.SimilarLiteral(ctx, "未", 5)
//	for _, m := range matches {
//	    fmt.Println(m.Record.Literal, m.Score)
//	}
//
// Cloud mode:
//
//	s3Store, _ := s3.New(ctx, "my-bucket", s3.WithPrefix("datasets/"))
//	eng, _ := kanjisim.Open(ctx, kanjisim.Remote(s3Store, "kanji.json.zst"))
//
// # Scoring
//
// The distance between two records is a weighted sum of three terms, each in
// [0, 1]:
//
//   - geometric: Euclidean distance of the per-stroke direction slots,
//     divided by the square root of the slot count; stroke directions wrap
//     around, so strokes either side of ±π are close
//   - stroke count: absolute difference of min-max normalized stroke counts
//   - radical: Jaccard distance of the radical sets
//
// Score is 1 - distance. Weights come from config.Config and can be
// overridden per call with WithWeights. Candidates whose scores differ by
// less than the configured tie epsilon are ordered by ascending codepoint.
//
// # Data Quality
//
// Loading never fails on a bad record. Structurally invalid records are
// excluded and listed; duplicates, variant cycles, stroke-count
// discrepancies and geometry problems are flagged on the record. Everything
// is summarized by Engine.ValidationReport.
package kanjisim
