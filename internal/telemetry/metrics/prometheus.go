package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// NewRegistry returns a registry with the runtime and process collectors and
// a constant gymcoach_version_info series labeled with the running version.
func NewRegistry(version string, extraCollectors ...prometheus.Collector) *prometheus.Registry {
	if version == "" {
		version = "unknown"
	}

	versionInfo := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   "gymcoach",
		Name:        "version_info",
		Help:        "Running gymcoach version, always 1.",
		ConstLabels: prometheus.Labels{"version": version},
	})
	versionInfo.Set(1)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewBuildInfoCollector(),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		versionInfo,
	)
	for _, c := range extraCollectors {
		reg.MustRegister(c)
	}

	return reg
}
