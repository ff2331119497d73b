// Package metrics counts ingest outcomes for the node_exporter textfile
// collector.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "bookscape"

// Result label values.
const (
	ResultWritten = "written"
	ResultFailed  = "failed"
	ResultOK      = "ok"
	ResultError   = "error"
)

// Ingest holds the counters of one ingest run on a private registry.
// A nil *Ingest is valid and records nothing.
type Ingest struct {
	registry *prometheus.Registry
	items    *prometheus.CounterVec
	fetches  *prometheus.CounterVec
	fetched  prometheus.Counter
}

// NewIngest registers the ingest counters on a fresh registry.
func NewIngest() *Ingest {
	m := &Ingest{
		registry: prometheus.NewRegistry(),
		items: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_total",
			Help:      "Catalog items processed, by result.",
		}, []string{"result"}),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_total",
			Help:      "Search term fetches, by result.",
		}, []string{"result"}),
		fetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetched_items_total",
			Help:      "Catalog items returned by the API.",
		}),
	}
	m.registry.MustRegister(m.items, m.fetches, m.fetched)

	// Expose both label values from the start so a run with no failures still reports zero
	m.items.WithLabelValues(ResultWritten)
	m.items.WithLabelValues(ResultFailed)
	m.fetches.WithLabelValues(ResultOK)
	m.fetches.WithLabelValues(ResultError)

	return m
}

// ItemWritten counts an item stored successfully.
func (m *Ingest) ItemWritten() {
	if m == nil {
		return
	}
	m.items.WithLabelValues(ResultWritten).Inc()
}

// ItemFailed counts an item that could not be normalized or stored.
func (m *Ingest) ItemFailed() {
	if m == nil {
		return
	}
	m.items.WithLabelValues(ResultFailed).Inc()
}

// FetchSucceeded counts a completed term fetch that returned n items.
func (m *Ingest) FetchSucceeded(n int) {
	if m == nil {
		return
	}
	m.fetches.WithLabelValues(ResultOK).Inc()
	m.fetched.Add(float64(n))
}

// FetchFailed counts a term fetch that was aborted.
func (m *Ingest) FetchFailed() {
	if m == nil {
		return
	}
	m.fetches.WithLabelValues(ResultError).Inc()
}

// Gatherer exposes the registry, mostly for tests.
func (m *Ingest) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteTextfile writes the counters in the text exposition format to path.
// The file is replaced atomically.
func (m *Ingest) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
