// Package pacer decides when timestamped records may be released.
package pacer

import (
	"time"

	"github.com/SmitUplenchwar2687/relval/pkg/clock"
	"github.com/SmitUplenchwar2687/relval/pkg/policy"

	internalpacer "github.com/SmitUplenchwar2687/relval/internal/pacer"
)

// Pacer schedules releases against a policy. It is not safe for concurrent use.
type Pacer = internalpacer.Pacer

// Decision is the outcome of Admit.
type Decision = internalpacer.Decision

// Overflow selects between waiting and rejecting.
type Overflow = internalpacer.Overflow

const (
	Wait   = internalpacer.Wait
	Reject = internalpacer.Reject
)

// New creates a pacer with baseline start.
func New(p policy.Policy, overflow Overflow, c clock.Clock, start time.Time) (*Pacer, error) {
	return internalpacer.New(p, overflow, c, start)
}
