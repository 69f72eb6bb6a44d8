// Package searcher provides pooled scratch space and result ordering for
// similarity scans.
//
// A Searcher owns the candidate buffer of one query. Searchers are managed by
// a package-level pool so steady-state queries do not allocate a buffer per
// call.
package searcher
