// Package divert delivers records the pacer rejects to a secondary sink.
package divert

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/SmitUplenchwar2687/relval/internal/lineio"
	"github.com/SmitUplenchwar2687/relval/internal/metrics"
)

// DefaultMaxFailures is how many consecutive failed writes make the
// diversion sink unusable.
const DefaultMaxFailures = 3

// ErrUnusable marks a diversion failure that must stop the run.
var ErrUnusable = errors.New("diversion sink unusable")

// Sink writes one diverted record per call.
type Sink interface {
	WriteLine(ctx context.Context, line []byte) error
	Close() error
}

// Options configures a Router.
type Options struct {
	MaxFailures int // consecutive failures tolerated; <= 0 means DefaultMaxFailures
	Retries     int // per-write retries of transient errors; < 0 means lineio.DefaultRetries
	Logger      *zap.Logger
	Metrics     *metrics.Collector
}

// Router writes rejected records, verbatim and in rejection order, without
// taking part in pacing. A Router without a sink discards records.
type Router struct {
	sink        Sink
	target      string
	maxFailures int
	failures    int
	log         *zap.Logger
	metrics     *metrics.Collector
	warn        rate.Sometimes
}

// Open resolves target and returns a Router for it. An empty target yields a
// Router that discards. Digits name an inherited file descriptor, a
// redis:// or rediss:// URL names a Redis list, anything else is a path.
func Open(ctx context.Context, target string, opts Options) (*Router, error) {
	if target == "" {
		return NewRouter(nil, "", opts), nil
	}

	var (
		s   Sink
		err error
	)
	switch {
	case isDescriptor(target):
		fd, convErr := strconv.Atoi(target)
		if convErr != nil {
			return nil, fmt.Errorf("invalid descriptor %q: %w", target, convErr)
		}
		s, err = openDescriptor(fd, opts.Retries)
	case strings.HasPrefix(target, "redis://"), strings.HasPrefix(target, "rediss://"):
		s, err = openRedis(ctx, target, opts.Retries)
	default:
		s, err = openPath(target, opts.Retries)
	}
	if err != nil {
		return nil, fmt.Errorf("opening diversion target %q: %w", target, err)
	}
	return NewRouter(s, target, opts), nil
}

// NewRouter wraps an already open sink. A nil sink discards records.
func NewRouter(s Sink, target string, opts Options) *Router {
	if opts.MaxFailures <= 0 {
		opts.MaxFailures = DefaultMaxFailures
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Router{
		sink:        s,
		target:      target,
		maxFailures: opts.MaxFailures,
		log:         opts.Logger.With(zap.String("divert_target", target)),
		metrics:     opts.Metrics,
		warn:        rate.Sometimes{First: 3, Interval: 10 * time.Second},
	}
}

// Enabled reports whether rejected records go anywhere.
func (r *Router) Enabled() bool {
	return r.sink != nil
}

// Divert writes line to the sink immediately. A failed write is reported
// and counted; it wraps ErrUnusable once the sink is closed or broken, or
// after MaxFailures consecutive failures.
func (r *Router) Divert(ctx context.Context, line []byte) error {
	if r.sink == nil {
		if r.metrics != nil {
			r.metrics.Dropped.Inc()
		}
		return nil
	}

	err := r.sink.WriteLine(ctx, line)
	if err == nil {
		r.failures = 0
		if r.metrics != nil {
			r.metrics.Diverted.Inc()
		}
		return nil
	}

	r.failures++
	if r.metrics != nil {
		r.metrics.DivertErrors.Inc()
	}
	if lineio.Unrecoverable(err) || r.failures >= r.maxFailures {
		return fmt.Errorf("%w after %d consecutive failures: %w", ErrUnusable, r.failures, err)
	}
	r.warn.Do(func() {
		r.log.Warn("diverting record failed", zap.Error(err), zap.Int("consecutive_failures", r.failures))
	})
	return fmt.Errorf("diverting record: %w", err)
}

// Close releases the sink.
func (r *Router) Close() error {
	if r.sink == nil {
		return nil
	}
	return r.sink.Close()
}

func isDescriptor(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return s != ""
}
