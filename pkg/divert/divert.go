// Package divert sends rejected records to a secondary sink.
package divert

import (
	"context"

	internaldivert "github.com/SmitUplenchwar2687/relval/internal/divert"
)

// Router writes rejected records verbatim and in rejection order.
type Router = internaldivert.Router

// Options configures a Router.
type Options = internaldivert.Options

// Sink writes one diverted record per call.
type Sink = internaldivert.Sink

// DefaultMaxFailures is the default consecutive failure limit.
const DefaultMaxFailures = internaldivert.DefaultMaxFailures

// ErrUnusable marks a diversion failure that must stop the run.
var ErrUnusable = internaldivert.ErrUnusable

// Open resolves a descriptor number, path or redis:// URL. An empty target
// discards.
func Open(ctx context.Context, target string, opts Options) (*Router, error) {
	return internaldivert.Open(ctx, target, opts)
}

// NewRouter wraps an open sink. A nil sink discards records.
func NewRouter(s Sink, target string, opts Options) *Router {
	return internaldivert.NewRouter(s, target, opts)
}
