// Package testutil provides testing utilities for kanjisim.
//
// This package is intended for use in tests and benchmarks only. It builds
// dataset documents in the on-disk JSON format, either element by element or
// as seeded synthetic datasets.
//
// # Hand-built Documents
//
//	doc := testutil.NewDocument().
//	    Add(testutil.Glyph("一", []int{1}, 0)).
//	    Add(testutil.Glyph("二", []int{7}, 0, 0)).
//	    Bytes()
//
// # Synthetic Datasets
//
//	rng := testutil.NewRNG(4711)
//	doc := rng.Dataset(500)
package testutil
