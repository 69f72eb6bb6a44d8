// Package index answers top-k similarity queries over feature vectors.
//
// The index is a flat table of vectors sorted by ID. Every query scans the
// whole table, scores each eligible candidate with the composite distance
// and orders the results by descending score with an epsilon tie-break on
// ascending ID. At a few thousand records a full scan is cheap and the
// ordering contract holds by construction.
//
// An Index is immutable after New and safe for unbounded concurrent readers
// without locking. A changed dataset requires building a new Index.
package index
