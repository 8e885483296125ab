// Package metrics counts what happened to each record during a run and can
// export the counters in the node_exporter textfile format.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "relval"

// Collector holds the per-run metrics. The zero value is not usable; use New.
type Collector struct {
	registry *prometheus.Registry

	Read         prometheus.Counter
	Released     prometheus.Counter
	Diverted     prometheus.Counter
	Dropped      prometheus.Counter
	DivertErrors prometheus.Counter
	ReleaseLag   prometheus.Histogram
	Delay        prometheus.Histogram
}

// New registers the relval metrics on a fresh registry.
func New(policy string) *Collector {
	labels := prometheus.Labels{"policy": policy}
	c := &Collector{
		registry: prometheus.NewRegistry(),
		Read: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "records_read_total",
			Help:        "Records read from the input stream.",
			ConstLabels: labels,
		}),
		Released: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "records_released_total",
			Help:        "Records written to the primary sink.",
			ConstLabels: labels,
		}),
		Diverted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "records_diverted_total",
			Help:        "Rejected records written to the diversion sink.",
			ConstLabels: labels,
		}),
		Dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "records_dropped_total",
			Help:        "Rejected records discarded because no diversion sink is configured.",
			ConstLabels: labels,
		}),
		DivertErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "divert_errors_total",
			Help:        "Failed writes to the diversion sink.",
			ConstLabels: labels,
		}),
		ReleaseLag: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "release_lag_seconds",
			Help:        "How late each release happened relative to its scheduled instant.",
			ConstLabels: labels,
			Buckets:     prometheus.ExponentialBuckets(1e-6, 4, 10),
		}),
		Delay: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "release_delay_seconds",
			Help:        "Time each released record was held back by the pacer.",
			ConstLabels: labels,
			Buckets:     prometheus.ExponentialBuckets(1e-4, 4, 10),
		}),
	}
	c.registry.MustRegister(c.Read, c.Released, c.Diverted, c.Dropped, c.DivertErrors, c.ReleaseLag, c.Delay)
	return c
}

// ObserveRelease records a completed release.
func (c *Collector) ObserveRelease(delay, lag time.Duration) {
	c.Released.Inc()
	c.Delay.Observe(delay.Seconds())
	if lag < 0 {
		lag = 0
	}
	c.ReleaseLag.Observe(lag.Seconds())
}

// Registry exposes the underlying registry, mainly for tests and embedding.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// WriteTextfile writes all metrics to path atomically.
func (c *Collector) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, c.registry)
}
