// Package stream drives records from an input stream through the pacer to
// the primary and diversion sinks.
package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/SmitUplenchwar2687/relval/internal/clock"
	"github.com/SmitUplenchwar2687/relval/internal/divert"
	"github.com/SmitUplenchwar2687/relval/internal/lineio"
	"github.com/SmitUplenchwar2687/relval/internal/metrics"
	"github.com/SmitUplenchwar2687/relval/internal/pacer"
	"github.com/SmitUplenchwar2687/relval/internal/timestamp"
)

// ErrSink marks a failed write to the primary sink.
var ErrSink = errors.New("writing to output")

// Driver reads, decides, waits and writes in strict record order.
// Output order is always input order.
type Driver struct {
	extractor *timestamp.Extractor
	pacer     *pacer.Pacer
	clock     clock.Clock
	router    *divert.Router
	log       *zap.Logger
	metrics   *metrics.Collector
	retries   int

	mu       sync.Mutex
	progress *Summary // summary of the current or last run
}

// Options holds the optional collaborators of a Driver.
type Options struct {
	Router       *divert.Router // nil discards rejected records
	Logger       *zap.Logger
	Metrics      *metrics.Collector
	WriteRetries int // < 0 means lineio.DefaultRetries
}

// Summary aggregates run statistics.
type Summary struct {
	Read         int           `json:"read"`
	Released     int           `json:"released"`
	Rejected     int           `json:"rejected"`
	Diverted     int           `json:"diverted"`
	Dropped      int           `json:"dropped"`
	DivertErrors int           `json:"divert_errors"`
	MaxLag       time.Duration `json:"max_lag"`       // worst lateness of a release
	FirstRelease time.Time     `json:"first_release"` // scheduled instant of the first release
	LastRelease  time.Time     `json:"last_release"`  // scheduled instant of the last release
	WallDuration time.Duration `json:"wall_duration"`
}

// Span is the scheduled time between the first and last release.
func (s *Summary) Span() time.Duration {
	if s.Released < 2 {
		return 0
	}
	return s.LastRelease.Sub(s.FirstRelease)
}

// New creates a driver. The pacer must use the same clock as c.
func New(x *timestamp.Extractor, p *pacer.Pacer, c clock.Clock, opts Options) *Driver {
	if opts.Router == nil {
		opts.Router = divert.NewRouter(nil, "", divert.Options{Metrics: opts.Metrics})
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Driver{
		extractor: x,
		pacer:     p,
		clock:     c,
		router:    opts.Router,
		log:       opts.Logger,
		metrics:   opts.Metrics,
		retries:   opts.WriteRetries,
	}
}

// Run paces every record of in onto out until in is exhausted, ctx is done,
// or a fatal error occurs. The summary is returned in every case.
func (d *Driver) Run(ctx context.Context, in io.Reader, out io.Writer) (*Summary, error) {
	r := lineio.NewReader(in)
	w := lineio.NewWriter(out, d.retries)
	summary := &Summary{}
	d.mu.Lock()
	d.progress = summary
	d.mu.Unlock()

	wallStart := time.Now()
	defer func() {
		d.mu.Lock()
		summary.WallDuration = time.Since(wallStart)
		d.mu.Unlock()
	}()

	for {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		line, err := r.ReadLine()
		if err == io.EOF {
			d.log.Debug("end of input", zap.Int("read", summary.Read))
			return summary, nil
		}
		if err != nil {
			return summary, fmt.Errorf("reading input: %w", err)
		}
		d.mu.Lock()
		summary.Read++
		d.mu.Unlock()
		if d.metrics != nil {
			d.metrics.Read.Inc()
		}

		recordAt, payload, err := d.extractor.Extract(line)
		if err != nil {
			return summary, fmt.Errorf("record %d: %w", summary.Read, err)
		}

		dec := d.pacer.Admit(recordAt)
		if !dec.Release {
			if err := d.reject(ctx, summary, line, dec); err != nil {
				return summary, err
			}
			continue
		}

		if err := d.clock.WaitUntil(ctx, dec.At); err != nil {
			return summary, err
		}
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		lag := d.clock.Since(dec.At)
		if err := w.WriteLine(payload); err != nil {
			return summary, fmt.Errorf("%w: %w", ErrSink, err)
		}
		d.released(summary, dec, lag)
	}
}

// Progress returns a copy of the summary of the current run, or of the last
// one once Run has returned. It is safe to call while Run is active.
func (d *Driver) Progress() Summary {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.progress == nil {
		return Summary{}
	}
	return *d.progress
}

func (d *Driver) released(s *Summary, dec pacer.Decision, lag time.Duration) {
	d.mu.Lock()
	if s.Released == 0 {
		s.FirstRelease = dec.At
	}
	s.LastRelease = dec.At
	s.Released++
	if lag > s.MaxLag {
		s.MaxLag = lag
	}
	d.mu.Unlock()
	if d.metrics != nil {
		d.metrics.ObserveRelease(dec.Delay, lag)
	}
	if ce := d.log.Check(zap.DebugLevel, "record released"); ce != nil {
		ce.Write(
			zap.Int("record", s.Read),
			zap.Time("at", dec.At),
			zap.Duration("delay", dec.Delay),
			zap.Duration("lag", lag),
		)
	}
}

func (d *Driver) reject(ctx context.Context, s *Summary, line []byte, dec pacer.Decision) error {
	d.mu.Lock()
	s.Rejected++
	d.mu.Unlock()
	if ce := d.log.Check(zap.DebugLevel, "record rejected"); ce != nil {
		ce.Write(zap.Int("record", s.Read), zap.Time("retry_at", dec.RetryAt))
	}

	err := d.router.Divert(ctx, line)

	d.mu.Lock()
	defer d.mu.Unlock()
	switch {
	case err != nil:
		s.DivertErrors++
		if errors.Is(err, divert.ErrUnusable) {
			return err
		}
	case d.router.Enabled():
		s.Diverted++
	default:
		s.Dropped++
	}
	return nil
}
