package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "kanjisim"

// Collector implements kanjisim.MetricsCollector on Prometheus metrics.
type Collector struct {
	loads            *prometheus.CounterVec
	loadDuration     prometheus.Histogram
	records          prometheus.Gauge
	structuralErrors prometheus.Gauge

	buildDuration prometheus.Histogram
	indexed       prometheus.Gauge
	excluded      prometheus.Gauge

	queries       *prometheus.CounterVec
	queryDuration *prometheus.HistogramVec
	queryResults  prometheus.Histogram

	lookups *prometheus.CounterVec
}

// New registers the engine metrics with reg and returns a collector.
// A nil reg registers with the default registry.
func New(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Collector{
		// loads counts dataset loads.
		// Labels: status (success, error)
		loads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dataset",
			Name:      "loads_total",
			Help:      "Total dataset loads",
		}, []string{"status"}),
		loadDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "dataset",
			Name:      "load_duration_seconds",
			Help:      "Time to read and validate the dataset",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}),
		records: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "dataset",
			Name:      "records",
			Help:      "Records that survived loading",
		}),
		structuralErrors: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "dataset",
			Name:      "structural_errors",
			Help:      "Kanji elements excluded as structurally invalid",
		}),

		buildDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "index",
			Name:      "build_duration_seconds",
			Help:      "Time to derive features and build the index",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		}),
		indexed: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "index",
			Name:      "eligible_records",
			Help:      "Records taking part in similarity search",
		}),
		excluded: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "index",
			Name:      "excluded_records",
			Help:      "Records excluded from similarity search",
		}),

		// queries counts similarity queries.
		// Labels: status (success, error)
		queries: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "query",
			Name:      "total",
			Help:      "Total similarity queries",
		}, []string{"status"}),
		queryDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "query",
			Name:      "duration_seconds",
			Help:      "Similarity query latency in seconds",
			Buckets:   []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
		}, []string{"status"}),
		queryResults: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "query",
			Name:      "results",
			Help:      "Number of neighbors returned per query",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100},
		}),

		// lookups counts record lookups.
		// Labels: result (hit, miss)
		lookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "lookup",
			Name:      "total",
			Help:      "Total record lookups",
		}, []string{"result"}),
	}
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordLoad implements kanjisim.MetricsCollector.
func (c *Collector) RecordLoad(records, structuralErrors int, duration time.Duration, err error) {
	c.loads.WithLabelValues(status(err)).Inc()
	if err != nil {
		return
	}
	c.loadDuration.Observe(duration.Seconds())
	c.records.Set(float64(records))
	c.structuralErrors.Set(float64(structuralErrors))
}

// RecordBuild implements kanjisim.MetricsCollector.
func (c *Collector) RecordBuild(indexed, excluded int, duration time.Duration, err error) {
	if err != nil {
		return
	}
	c.buildDuration.Observe(duration.Seconds())
	c.indexed.Set(float64(indexed))
	c.excluded.Set(float64(excluded))
}

// RecordQuery implements kanjisim.MetricsCollector.
func (c *Collector) RecordQuery(_, results int, duration time.Duration, err error) {
	s := status(err)
	c.queries.WithLabelValues(s).Inc()
	c.queryDuration.WithLabelValues(s).Observe(duration.Seconds())
	if err == nil {
		c.queryResults.Observe(float64(results))
	}
}

// RecordLookup implements kanjisim.MetricsCollector.
func (c *Collector) RecordLookup(found bool) {
	if found {
		c.lookups.WithLabelValues("hit").Inc()
		return
	}
	c.lookups.WithLabelValues("miss").Inc()
}
