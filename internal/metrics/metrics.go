// Package metrics collects storage and import metrics with Prometheus and
// exposes them over HTTP or as a node-exporter textfile.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records storage operations (as a storage.Observer) and
// imported snapshot records.
type Collector struct {
	ops      *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	imported prometheus.Counter
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "daybook_storage_ops_total",
			Help: "Storage operations by collection, operation and result.",
		}, []string{"collection", "op", "result"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "daybook_storage_op_seconds",
			Help:    "Storage operation latency in seconds.",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"collection", "op"}),
		imported: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "daybook_import_records_total",
			Help: "Entries applied by snapshot imports.",
		}),
	}

	reg.MustRegister(c.ops, c.latency, c.imported)
	return c
}

// ObserveOp implements storage.Observer.
func (c *Collector) ObserveOp(collection, op string, took time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.ops.WithLabelValues(collection, op, result).Inc()
	c.latency.WithLabelValues(collection, op).Observe(took.Seconds())
}

// ImportedRecords is the counter handed to the snapshot codec.
func (c *Collector) ImportedRecords() prometheus.Counter {
	return c.imported
}

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// WriteTextfile dumps gatherer in the text exposition format to path,
// replacing the file atomically.
func WriteTextfile(path string, gatherer prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, gatherer)
}
