package pacer

import (
	"fmt"
	"time"

	"github.com/SmitUplenchwar2687/relval/internal/clock"
	"github.com/SmitUplenchwar2687/relval/internal/policy"
)

// Overflow selects what happens to a record that cannot be released now.
type Overflow int

const (
	// Wait delays the record until the policy admits it.
	Wait Overflow = iota
	// Reject refuses a record that would exceed a rate policy so it can be
	// diverted. Interval policies always wait.
	Reject
)

func (o Overflow) String() string {
	switch o {
	case Wait:
		return "wait"
	case Reject:
		return "reject"
	default:
		return fmt.Sprintf("Overflow(%d)", int(o))
	}
}

// ParseOverflow maps "wait" or "reject" to an Overflow.
func ParseOverflow(s string) (Overflow, error) {
	switch s {
	case "wait":
		return Wait, nil
	case "reject":
		return Reject, nil
	default:
		return 0, fmt.Errorf("unknown overflow mode %q, must be one of: wait, reject", s)
	}
}

// Decision captures the result of an admission check.
type Decision struct {
	Release  bool          `json:"release"`
	At       time.Time     `json:"at"`        // when to release (if Release)
	Delay    time.Duration `json:"delay"`     // At minus the admission instant
	RetryAt  time.Time     `json:"retry_at"`  // earliest admissible instant (if rejected)
	RecordAt time.Time     `json:"record_at"` // the record's own timestamp, not used for scheduling
}

// Pacer schedules releases against an admission policy.
//
// For interval policies it keeps the next eligible instant. For rate
// policies it keeps a FIFO of the release instants still inside the
// trailing window, bounded by the policy count.
//
// A Pacer has a single owner and is not safe for concurrent use.
type Pacer struct {
	clock    clock.Clock
	policy   policy.Policy
	overflow Overflow

	next time.Time

	ring []time.Time
	head int
	size int
}

// New creates a pacer. start is the baseline instant, normally the process
// start time.
func New(p policy.Policy, overflow Overflow, c clock.Clock, start time.Time) (*Pacer, error) {
	if p.Window <= 0 {
		return nil, fmt.Errorf("policy window must be positive, got %s", p.Window)
	}
	if overflow != Wait && overflow != Reject {
		return nil, fmt.Errorf("unknown overflow mode %d", overflow)
	}

	pc := &Pacer{
		clock:    c,
		policy:   p,
		overflow: overflow,
	}
	switch p.Kind {
	case policy.KindInterval:
		pc.next = start
	case policy.KindRate:
		if p.Count < 1 || p.Count > policy.MaxCount {
			return nil, fmt.Errorf("policy count must be in [1,%d], got %d", policy.MaxCount, p.Count)
		}
		pc.ring = make([]time.Time, p.Count)
	default:
		return nil, fmt.Errorf("unknown policy kind %v", p.Kind)
	}
	return pc, nil
}

// Policy returns the pacer's admission policy.
func (pc *Pacer) Policy() policy.Policy {
	return pc.policy
}

// Admit decides when the next record may be released. A released decision
// is committed immediately: the caller must release the record at
// Decision.At.
func (pc *Pacer) Admit(recordAt time.Time) Decision {
	now := pc.clock.Now()

	var (
		at time.Time
		ok bool
	)
	switch pc.policy.Kind {
	case policy.KindInterval:
		at, ok = pc.admitInterval(now)
	case policy.KindRate:
		at, ok = pc.admitRate(now)
	}

	if !ok {
		// at is the earliest instant the policy would have admitted.
		return Decision{RetryAt: at, RecordAt: recordAt}
	}
	return Decision{
		Release:  true,
		At:       at,
		Delay:    at.Sub(now),
		RecordAt: recordAt,
	}
}

// admitInterval never rejects: a record inside the interval is released at
// the next eligible instant whatever the overflow mode.
func (pc *Pacer) admitInterval(now time.Time) (time.Time, bool) {
	at := now
	if now.Before(pc.next) {
		at = pc.next
	}
	pc.next = at.Add(pc.policy.Window)
	return at, true
}

func (pc *Pacer) admitRate(now time.Time) (time.Time, bool) {
	at := now
	pc.evict(at)

	if pc.size == len(pc.ring) {
		// Full: the slot frees when the oldest release leaves the window.
		free := pc.ring[pc.head].Add(pc.policy.Window)
		if pc.overflow == Reject {
			return free, false
		}
		at = free
		pc.evict(at)
	}

	pc.ring[(pc.head+pc.size)%len(pc.ring)] = at
	pc.size++
	return at, true
}

// evict drops releases that are no longer inside the window ending at t.
func (pc *Pacer) evict(t time.Time) {
	windowStart := t.Add(-pc.policy.Window)
	for pc.size > 0 && !pc.ring[pc.head].After(windowStart) {
		pc.ring[pc.head] = time.Time{}
		pc.head = (pc.head + 1) % len(pc.ring)
		pc.size--
	}
}

// InWindow returns the number of releases inside the trailing window of a
// rate policy. It is always 0 for interval policies.
func (pc *Pacer) InWindow() int {
	return pc.size
}
