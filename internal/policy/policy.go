// Package policy parses rate limit specifications into admission policies.
//
// Two forms are accepted:
//
//	<time>              one record per interval, e.g. "1.24ms"
//	<count> / <time>    at most count records per sliding window, e.g. "10 / 1.5"
//
// <time> is an integer or decimal number followed by an optional unit
// (s, ms, us, ns; default s).
package policy

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// MaxCount is the largest record count accepted in the count-per-window form.
const MaxCount = math.MaxUint16

var (
	// ErrMalformed is returned when a spec matches neither grammar form.
	ErrMalformed = errors.New("malformed rate limit")
	// ErrOutOfRange is returned for a zero or oversized count or duration.
	ErrOutOfRange = errors.New("rate limit out of range")
)

// ParseError describes a rejected rate limit spec.
type ParseError struct {
	Spec string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%v: %q", e.Err, e.Spec)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Kind identifies which admission model a Policy carries.
type Kind int

const (
	KindInterval Kind = iota + 1
	KindRate
)

func (k Kind) String() string {
	switch k {
	case KindInterval:
		return "interval"
	case KindRate:
		return "rate"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Policy is an immutable admission policy.
//
// For KindInterval, Window is the minimum spacing between releases and
// Count is 1. For KindRate, at most Count releases may fall inside any
// sliding window of length Window.
type Policy struct {
	Kind   Kind
	Count  int
	Window time.Duration
}

// Interval returns a policy spacing releases at least d apart.
func Interval(d time.Duration) Policy {
	return Policy{Kind: KindInterval, Count: 1, Window: d}
}

// Rate returns a policy allowing count releases per sliding window.
func Rate(count int, window time.Duration) Policy {
	return Policy{Kind: KindRate, Count: count, Window: window}
}

// String renders the canonical spec, which Parse maps back to p.
func (p Policy) String() string {
	switch p.Kind {
	case KindInterval:
		return FormatDuration(p.Window)
	case KindRate:
		return strconv.Itoa(p.Count) + " / " + FormatDuration(p.Window)
	default:
		return "invalid"
	}
}

var (
	timeRe = regexp.MustCompile(`^([0-9]*)(?:\.([0-9]*))?(s|ms|us|ns)?$`)
	rateRe = regexp.MustCompile(`^([0-9]+)\s+/\s+(\S+)$`)
)

type unit struct {
	suffix string
	digits int
	size   time.Duration
}

// Ordered largest first for FormatDuration.
var units = []unit{
	{"s", 9, time.Second},
	{"ms", 6, time.Millisecond},
	{"us", 3, time.Microsecond},
	{"ns", 0, time.Nanosecond},
}

// Parse converts a rate limit spec into a Policy.
func Parse(spec string) (Policy, error) {
	s := strings.TrimSpace(spec)

	if m := rateRe.FindStringSubmatch(s); m != nil {
		count, err := strconv.ParseUint(m[1], 10, 64)
		if err != nil || count == 0 || count > MaxCount {
			return Policy{}, &ParseError{Spec: spec, Err: ErrOutOfRange}
		}
		window, err := parseTime(m[2])
		if err != nil {
			return Policy{}, &ParseError{Spec: spec, Err: err}
		}
		return Rate(int(count), window), nil
	}

	d, err := parseTime(s)
	if err != nil {
		return Policy{}, &ParseError{Spec: spec, Err: err}
	}
	return Interval(d), nil
}

// ParseDuration parses the <time> part of the grammar on its own.
// Unlike Parse it accepts zero.
func ParseDuration(s string) (time.Duration, error) {
	d, err := parseNumber(strings.TrimSpace(s))
	if err != nil {
		return 0, &ParseError{Spec: s, Err: err}
	}
	return d, nil
}

func parseTime(s string) (time.Duration, error) {
	d, err := parseNumber(s)
	if err != nil {
		return 0, err
	}
	if d == 0 {
		return 0, ErrOutOfRange
	}
	return d, nil
}

// parseNumber converts "<number><unit>?" to nanoseconds with exact decimal
// arithmetic, rounding half up at the nanosecond.
func parseNumber(s string) (time.Duration, error) {
	m := timeRe.FindStringSubmatch(s)
	if m == nil || (m[1] == "" && m[2] == "") {
		return 0, ErrMalformed
	}
	whole, frac, suffix := m[1], m[2], m[3]
	if suffix == "" {
		suffix = "s"
	}

	var u unit
	for _, cand := range units {
		if cand.suffix == suffix {
			u = cand
		}
	}

	// Shift the decimal point u.digits places right.
	for len(frac) < u.digits+1 {
		frac += "0"
	}
	digits := strings.TrimLeft(whole+frac[:u.digits], "0")

	var n uint64
	if digits != "" {
		var err error
		n, err = strconv.ParseUint(digits, 10, 64)
		if err != nil || n > math.MaxInt64 {
			return 0, ErrOutOfRange
		}
	}
	if frac[u.digits] >= '5' {
		n++
	}
	if n > math.MaxInt64 {
		return 0, ErrOutOfRange
	}
	return time.Duration(n), nil
}

// FormatDuration renders d in the <time> grammar using the largest unit
// that represents it exactly.
func FormatDuration(d time.Duration) string {
	for _, u := range units {
		if d%u.size == 0 {
			return strconv.FormatInt(int64(d/u.size), 10) + u.suffix
		}
	}
	return strconv.FormatInt(int64(d), 10) + "ns"
}
