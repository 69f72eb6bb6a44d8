package prometheus_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/kanjisim"
	kprom "github.com/hupe1980/kanjisim/metrics/prometheus"
	"github.com/hupe1980/kanjisim/testutil"
)

var _ kanjisim.MetricsCollector = (*kprom.Collector)(nil)

func TestCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := kprom.New(reg)

	c.RecordLoad(10, 2, time.Millisecond, nil)
	c.RecordLoad(0, 0, time.Millisecond, errors.New("boom"))
	c.RecordBuild(9, 1, time.Millisecond, nil)
	c.RecordQuery(5, 5, time.Microsecond, nil)
	c.RecordQuery(5, 0, time.Microsecond, errors.New("not found"))
	c.RecordLookup(true)
	c.RecordLookup(false)
	c.RecordLookup(false)

	assert.Equal(t, 1.0, value(t, reg, "kanjisim_dataset_loads_total", "success"))
	assert.Equal(t, 1.0, value(t, reg, "kanjisim_dataset_loads_total", "error"))
	assert.Equal(t, 1.0, value(t, reg, "kanjisim_query_total", "error"))
	assert.Equal(t, 2.0, value(t, reg, "kanjisim_lookup_total", "miss"))
	assert.Equal(t, 10.0, value(t, reg, "kanjisim_dataset_records", ""))

	n, err := promtest.GatherAndCount(reg,
		"kanjisim_dataset_records",
		"kanjisim_index_eligible_records",
		"kanjisim_index_excluded_records",
	)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

// value returns the value of the counter or gauge name whose only label
// carries label (or that has no labels when label is empty).
func value(t *testing.T, reg *prometheus.Registry, name, label string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if label != "" && (len(m.GetLabel()) != 1 || m.GetLabel()[0].GetValue() != label) {
				continue
			}
			if m.GetCounter() != nil {
				return m.GetCounter().GetValue()
			}
			return m.GetGauge().GetValue()
		}
	}
	t.Fatalf("metric %s{%s} not found", name, label)
	return 0
}

func TestCollector_WithEngine(t *testing.T) {
	reg := prometheus.NewRegistry()
	doc := testutil.NewRNG(1).Dataset(20)

	eng, err := kanjisim.Open(context.Background(), kanjisim.Reader(bytes.NewReader(doc)),
		kanjisim.WithMetricsCollector(kprom.New(reg)))
	require.NoError(t, err)
	defer eng.Close()

	_, err = eng.Similar(context.Background(), testutil.FirstCodepoint, 3)
	require.NoError(t, err)

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make(map[string]bool)
	for _, mf := range families {
		names[mf.GetName()] = true
	}
	assert.True(t, names["kanjisim_dataset_loads_total"])
	assert.True(t, names["kanjisim_query_total"])
	assert.True(t, names["kanjisim_query_duration_seconds"])
}
