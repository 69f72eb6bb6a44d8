// Package cache provides a bounded, concurrency-safe LRU cache.
//
// The engine uses it to memoize similarity results: the index is immutable
// after build, so an entry never goes stale and needs no invalidation.
package cache
