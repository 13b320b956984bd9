// Package metrics defines the Prometheus collectors used by docindex and
// exports them to a node_exporter textfile, since the tool runs to
// completion instead of serving a scrape endpoint.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus collectors for a single run.
type Metrics struct {
	DocsIndexedTotal   prometheus.Counter
	FilesSkippedTotal  prometheus.Counter
	TermsDroppedTotal  prometheus.Counter
	IndexDocuments     prometheus.Gauge
	IndexTerms         prometheus.Gauge
	BuildDuration      prometheus.Histogram
	IndexBytesWritten  prometheus.Counter
	SearchQueriesTotal *prometheus.CounterVec
	SearchLatency      prometheus.Histogram
	SearchResultsCount prometheus.Histogram

	gatherer prometheus.Gatherer
}

// New creates all collectors and registers them with reg.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		DocsIndexedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "docindex_docs_indexed_total",
				Help: "Total documents added to the index.",
			},
		),
		FilesSkippedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "docindex_files_skipped_total",
				Help: "Eligible files that could not be read and were skipped.",
			},
		),
		TermsDroppedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "docindex_terms_dropped_total",
				Help: "Terms longer than the field length limit that were left out of the index.",
			},
		),
		IndexDocuments: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "docindex_index_documents",
				Help: "Number of documents in the most recently built or loaded index.",
			},
		),
		IndexTerms: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "docindex_index_terms",
				Help: "Number of distinct terms in the most recently built or loaded index.",
			},
		),
		BuildDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "docindex_build_duration_seconds",
				Help:    "Wall time of a full index build, including serialization.",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
			},
		),
		IndexBytesWritten: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "docindex_index_bytes_written_total",
				Help: "Bytes written to index files.",
			},
		),
		SearchQueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docindex_search_queries_total",
				Help: "Total search queries by result type (hit, zero_result, error).",
			},
			[]string{"result_type"},
		),
		SearchLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "docindex_search_latency_seconds",
				Help:    "Search latency in seconds, including index load.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
		),
		SearchResultsCount: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "docindex_search_results_count",
				Help:    "Number of documents returned per search.",
				Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 500},
			},
		),
		gatherer: reg,
	}
	reg.MustRegister(
		m.DocsIndexedTotal,
		m.FilesSkippedTotal,
		m.TermsDroppedTotal,
		m.IndexDocuments,
		m.IndexTerms,
		m.BuildDuration,
		m.IndexBytesWritten,
		m.SearchQueriesTotal,
		m.SearchLatency,
		m.SearchResultsCount,
	)
	return m
}

// NewDiscard returns collectors on a private registry, for callers that do
// not export metrics.
func NewDiscard() *Metrics {
	return New(prometheus.NewRegistry())
}

// WriteTextfile writes every registered metric to path in the Prometheus text
// exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.gatherer); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
