// Package metrics tracks fetch and extraction counters for a scraper run.
//
// Counters, gauges and timings live in a private Prometheus registry so a
// one-shot run can dump them to a node_exporter textfile with WriteTextfile.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "scraper"

// Fetch outcomes
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Recorder collects the metrics of one scraper instance.
// All methods are safe on a nil *Recorder and do nothing.
type Recorder struct {
	registry *prometheus.Registry

	fetches       *prometheus.CounterVec
	fetchDuration prometheus.Histogram
	strategyHits  *prometheus.CounterVec
	extracted     *prometheus.GaugeVec
}

// New creates a Recorder with its own registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_total",
			Help:      "Page fetches by outcome.",
		}, []string{"outcome"}),
		fetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Duration of page fetches, excluding the politeness delay.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		strategyHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "course_strategy_total",
			Help:      "Course extraction strategy that produced the result.",
		}, []string{"strategy"}),
		extracted: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "items_extracted",
			Help:      "Items extracted per report section in the last run.",
		}, []string{"section"}),
	}

	r.registry.MustRegister(r.fetches, r.fetchDuration, r.strategyHits, r.extracted)
	return r
}

// ObserveFetch records one fetch and how long the request took.
func (r *Recorder) ObserveFetch(outcome string, d time.Duration) {
	if r == nil {
		return
	}
	r.fetches.WithLabelValues(outcome).Inc()
	r.fetchDuration.Observe(d.Seconds())
}

// StrategyHit records which course strategy produced results.
func (r *Recorder) StrategyHit(strategy string) {
	if r == nil {
		return
	}
	r.strategyHits.WithLabelValues(strategy).Inc()
}

// SetExtracted sets the number of items found for a report section.
func (r *Recorder) SetExtracted(section string, n int) {
	if r == nil {
		return
	}
	r.extracted.WithLabelValues(section).Set(float64(n))
}

// Registry exposes the underlying registry, e.g. for an HTTP handler or tests.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile writes all metrics to filename in the text exposition format.
func (r *Recorder) WriteTextfile(filename string) error {
	if r == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(filename, r.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
