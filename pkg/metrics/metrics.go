// Package metrics exposes the per-run Prometheus collector.
package metrics

import internalmetrics "github.com/SmitUplenchwar2687/relval/internal/metrics"

// Collector holds the counters and histograms of one run.
type Collector = internalmetrics.Collector

// New creates a collector labelled with the policy string.
func New(policy string) *Collector {
	return internalmetrics.New(policy)
}
