// Package prometheus exports kanjisim engine metrics to Prometheus.
//
//	reg := prometheus.NewRegistry()
//	eng, _ := kanjisim.Open(ctx, src, kanjisim.WithMetricsCollector(kprom.New(reg)))
//	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
package prometheus
