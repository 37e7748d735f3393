package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// SetupPrometheus builds the registry served on the metrics port. Besides the runtime
// collectors it exposes fittrack_build_info with the running version as a label.
func SetupPrometheus(versionInfo string, extraCollectors ...prometheus.Collector) *prometheus.Registry {
	promRegistry := prometheus.NewRegistry()

	buildInfo := prometheus.NewGauge(prometheus.GaugeOpts{
		Name:        "fittrack_build_info",
		Help:        "Version of the running fittrack service, always 1.",
		ConstLabels: prometheus.Labels{"version": versionInfo},
	})
	buildInfo.Set(1)

	promRegistry.MustRegister(
		buildInfo,
		collectors.NewBuildInfoCollector(),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	promRegistry.MustRegister(extraCollectors...)

	return promRegistry
}
