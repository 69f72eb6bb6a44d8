// Package model defines the core types shared by every stage of kanjisim.
//
// # Identity Types
//
//   - ID: Unicode codepoint of a kanji literal (uint32), the unique key
//   - RadicalID: classical radical number as used by the dataset (int)
//
// # Data Types
//
//   - KanjiRecord: one validated kanji (or historical variant)
//   - StrokeDescriptor: normalized geometric summary of one brush stroke
//   - RadicalRecord: immutable radical reference data
//   - Flag: non-fatal quality annotation attached to a record
//
// Records are produced by the dataset loader and are never mutated after the
// engine is built. Use Clone when handing a record to code that may modify it.
package model
