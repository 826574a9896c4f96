// Package metrics registers the counters, histograms, and gauges that
// observe indexing and retrieval, on a private registry so importing
// this package never pollutes prometheus's global default registry.
// Only started when codelens serve is given --metrics-addr.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every registered collector.
type Metrics struct {
	registry *prometheus.Registry

	FilesIndexed     prometheus.Counter
	FilesSkipped     prometheus.Counter
	FilesErrored     prometheus.Counter
	ParseDuration    prometheus.Histogram
	MarkovEdges      *prometheus.GaugeVec
	RetrievalLatency *prometheus.HistogramVec
}

// New builds and registers every collector on a fresh private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		FilesIndexed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "codelens",
			Subsystem: "indexer",
			Name:      "files_indexed_total",
			Help:      "Files successfully parsed and written to the store.",
		}),
		FilesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "codelens",
			Subsystem: "indexer",
			Name:      "files_skipped_total",
			Help:      "Files skipped because their checksum was unchanged.",
		}),
		FilesErrored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "codelens",
			Subsystem: "indexer",
			Name:      "files_errored_total",
			Help:      "Files that failed to read, parse, or write during an indexing pass.",
		}),
		ParseDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "codelens",
			Subsystem: "indexer",
			Name:      "parse_duration_seconds",
			Help:      "Per-file parse duration.",
			Buckets:   prometheus.DefBuckets,
		}),
		MarkovEdges: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "codelens",
			Subsystem: "markov",
			Name:      "chain_edges",
			Help:      "Number of transitions currently persisted per chain.",
		}, []string{"chain"}),
		RetrievalLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "codelens",
			Subsystem: "retrieval",
			Name:      "request_duration_seconds",
			Help:      "Retrieval endpoint latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}

	reg.MustRegister(
		m.FilesIndexed, m.FilesSkipped, m.FilesErrored,
		m.ParseDuration, m.MarkovEdges, m.RetrievalLatency,
	)
	return m
}

// Handler returns the HTTP handler exposing this Metrics' private
// registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
