// Package policy parses rate limit specifications.
package policy

import (
	"time"

	internalpolicy "github.com/SmitUplenchwar2687/relval/internal/policy"
)

// Policy is an admission policy: a minimum interval or a count per window.
type Policy = internalpolicy.Policy

// Kind distinguishes interval and rate policies.
type Kind = internalpolicy.Kind

// ParseError reports a malformed or out-of-range specification.
type ParseError = internalpolicy.ParseError

const (
	KindInterval = internalpolicy.KindInterval
	KindRate     = internalpolicy.KindRate
)

var (
	ErrMalformed  = internalpolicy.ErrMalformed
	ErrOutOfRange = internalpolicy.ErrOutOfRange
)

// Parse converts "time" or "count / time" into a Policy.
func Parse(spec string) (Policy, error) {
	return internalpolicy.Parse(spec)
}

// Interval returns a policy with minimum spacing d.
func Interval(d time.Duration) Policy {
	return internalpolicy.Interval(d)
}

// Rate returns a policy admitting count releases per window.
func Rate(count int, window time.Duration) Policy {
	return internalpolicy.Rate(count, window)
}
