package gdbindex

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/grafana/gdbindex/pkg/util"
)

const (
	phaseExtract = "extract"
	phaseHarvest = "harvest"
	phaseDedup   = "dedup"
	phaseWrite   = "write"
)

type metrics struct {
	registerer prometheus.Registerer

	phaseDuration  *prometheus.HistogramVec
	buildErrors    *prometheus.CounterVec
	indexSizeBytes prometheus.Histogram
	distinctNames  prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		registerer: reg,
		phaseDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gdbindex_build_phase_duration_seconds",
			Help:    "Time spent in each phase of the index build",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10, 30},
		}, []string{"phase"}),
		buildErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gdbindex_build_errors_total",
			Help: "Total number of failed index builds by error class",
		}, []string{"class"}),
		indexSizeBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "gdbindex_index_size_bytes",
			Help: "Size of finished index sections",
			// 4KB to 4GB
			Buckets: prometheus.ExponentialBuckets(4096, 4, 11),
		}),
		distinctNames: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "gdbindex_distinct_names",
			Help:    "Number of distinct symbol names per index build",
			Buckets: prometheus.ExponentialBuckets(64, 4, 11),
		}),
	}

	if reg != nil {
		m.register()
	}
	return m
}

func (m *metrics) register() {
	if m.registerer == nil {
		return
	}
	collectors := []prometheus.Collector{
		m.phaseDuration,
		m.buildErrors,
		m.indexSizeBytes,
		m.distinctNames,
	}
	for _, collector := range collectors {
		util.RegisterOrGet(m.registerer, collector)
	}
}
