package kanjisim

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; package
// metrics/prometheus provides a Prometheus implementation.
type MetricsCollector interface {
	// RecordLoad is called once after the dataset has been read.
	// records is the number of surviving records, structuralErrors the
	// number of elements excluded as malformed.
	RecordLoad(records, structuralErrors int, duration time.Duration, err error)

	// RecordBuild is called once after feature derivation and indexing.
	RecordBuild(indexed, excluded int, duration time.Duration, err error)

	// RecordQuery is called after each similarity query.
	// k is the number of neighbors requested, results the number returned.
	RecordQuery(k, results int, duration time.Duration, err error)

	// RecordLookup is called after each record lookup.
	RecordLookup(found bool)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordLoad(int, int, time.Duration, error)  {}
func (NoopMetricsCollector) RecordBuild(int, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordQuery(int, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordLookup(bool)                          {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	LoadCount        atomic.Int64
	LoadErrors       atomic.Int64
	LoadedRecords    atomic.Int64
	StructuralErrors atomic.Int64
	IndexedRecords   atomic.Int64
	ExcludedRecords  atomic.Int64
	QueryCount       atomic.Int64
	QueryErrors      atomic.Int64
	QueryTotalNanos  atomic.Int64
	QueryResults     atomic.Int64
	LookupCount      atomic.Int64
	LookupMisses     atomic.Int64
}

// RecordLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLoad(records, structuralErrors int, _ time.Duration, err error) {
	b.LoadCount.Add(1)
	if err != nil {
		b.LoadErrors.Add(1)
		return
	}
	b.LoadedRecords.Store(int64(records))
	b.StructuralErrors.Store(int64(structuralErrors))
}

// RecordBuild implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBuild(indexed, excluded int, _ time.Duration, err error) {
	if err != nil {
		return
	}
	b.IndexedRecords.Store(int64(indexed))
	b.ExcludedRecords.Store(int64(excluded))
}

// RecordQuery implements MetricsCollector.
func (b *BasicMetricsCollector) RecordQuery(_, results int, duration time.Duration, err error) {
	b.QueryCount.Add(1)
	b.QueryTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.QueryErrors.Add(1)
		return
	}
	b.QueryResults.Add(int64(results))
}

// RecordLookup implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLookup(found bool) {
	b.LookupCount.Add(1)
	if !found {
		b.LookupMisses.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		LoadCount:        b.LoadCount.Load(),
		LoadErrors:       b.LoadErrors.Load(),
		LoadedRecords:    b.LoadedRecords.Load(),
		StructuralErrors: b.StructuralErrors.Load(),
		IndexedRecords:   b.IndexedRecords.Load(),
		ExcludedRecords:  b.ExcludedRecords.Load(),
		QueryCount:       b.QueryCount.Load(),
		QueryErrors:      b.QueryErrors.Load(),
		QueryAvgNanos:    b.getAvgQueryNanos(),
		QueryResults:     b.QueryResults.Load(),
		LookupCount:      b.LookupCount.Load(),
		LookupMisses:     b.LookupMisses.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgQueryNanos() int64 {
	count := b.QueryCount.Load()
	if count == 0 {
		return 0
	}
	return b.QueryTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	LoadCount        int64
	LoadErrors       int64
	LoadedRecords    int64
	StructuralErrors int64
	IndexedRecords   int64
	ExcludedRecords  int64
	QueryCount       int64
	QueryErrors      int64
	QueryAvgNanos    int64
	QueryResults     int64
	LookupCount      int64
	LookupMisses     int64
}
