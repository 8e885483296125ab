// Package stream runs the relief valve over an io.Reader.
package stream

import (
	"github.com/SmitUplenchwar2687/relval/pkg/clock"
	"github.com/SmitUplenchwar2687/relval/pkg/pacer"

	internalstream "github.com/SmitUplenchwar2687/relval/internal/stream"
	"github.com/SmitUplenchwar2687/relval/internal/timestamp"
)

// Driver paces records from a reader to a writer in input order.
type Driver = internalstream.Driver

// Options holds the optional collaborators of a Driver. Build Router with
// pkg/divert and Metrics with pkg/metrics. Without a Router, rejected
// records are discarded and counted as dropped.
type Options = internalstream.Options

// Summary aggregates run statistics.
type Summary = internalstream.Summary

// Extractor decodes the leading timestamp field of a record.
type Extractor = timestamp.Extractor

// Format selects the timestamp encoding.
type Format = timestamp.Format

const (
	Calendar        = timestamp.Calendar
	UnixEpoch       = timestamp.UnixEpoch
	ProcessRelative = timestamp.ProcessRelative
)

// ErrSink marks a failed write to the primary sink.
var ErrSink = internalstream.ErrSink

// NewExtractor is timestamp.NewExtractor.
var NewExtractor = timestamp.NewExtractor

// New creates a driver over an existing pacer.
func New(x *Extractor, p *pacer.Pacer, c clock.Clock, opts Options) *Driver {
	return internalstream.New(x, p, c, opts)
}
