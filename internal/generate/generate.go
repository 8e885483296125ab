// Package generate produces synthetic timestamped input for trying out
// pacing policies.
package generate

import (
	"fmt"
	"io"
	"math/rand"
	"sort"
	"time"

	"github.com/SmitUplenchwar2687/relval/internal/lineio"
	"github.com/SmitUplenchwar2687/relval/internal/timestamp"
)

const (
	// PatternSteady generates evenly spaced records.
	PatternSteady = "steady"
	// PatternBurst generates clustered bursts with quiet gaps.
	PatternBurst = "burst"
	// PatternRamp generates records whose density increases over time.
	PatternRamp = "ramp"
)

// DefaultPayloads is the payload pool used when Options.Payloads is empty.
var DefaultPayloads = []string{
	"level=info msg=\"request served\" status=200",
	"level=info msg=\"cache hit\" key=users",
	"level=warn msg=\"slow query\" took=812ms",
	"level=info msg=\"event accepted\" topic=orders",
	"level=error msg=\"upstream timeout\" host=db-2",
}

// Options controls how synthetic records are generated.
type Options struct {
	Count    int
	Duration time.Duration
	Pattern  string
	Start    time.Time
	Seed     int64
	Payloads []string
}

// DefaultOptions returns the defaults used by the CLI.
func DefaultOptions() Options {
	return Options{
		Count:    100,
		Duration: 10 * time.Second,
		Pattern:  PatternSteady,
	}
}

// Line is one generated record.
type Line struct {
	At      time.Time
	Payload string
}

// Lines creates records in timestamp order.
func Lines(opts Options) ([]Line, error) {
	if opts.Count <= 0 {
		return nil, fmt.Errorf("count must be positive, got %d", opts.Count)
	}
	if opts.Duration <= 0 {
		return nil, fmt.Errorf("duration must be positive, got %s", opts.Duration)
	}

	if opts.Pattern == "" {
		opts.Pattern = PatternSteady
	}
	if opts.Start.IsZero() {
		opts.Start = time.Now().Truncate(time.Second)
	}
	if len(opts.Payloads) == 0 {
		opts.Payloads = DefaultPayloads
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}

	rng := rand.New(rand.NewSource(opts.Seed))

	var lines []Line
	switch opts.Pattern {
	case PatternSteady:
		lines = generateSteady(rng, opts)
	case PatternBurst:
		lines = generateBurst(rng, opts)
	case PatternRamp:
		lines = generateRamp(rng, opts)
	default:
		return nil, fmt.Errorf("unknown pattern %q, must be one of: steady, burst, ramp", opts.Pattern)
	}

	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].At.Before(lines[j].At)
	})
	return lines, nil
}

// Write renders lines in the extractor's format, one record per line.
func Write(w io.Writer, x *timestamp.Extractor, lines []Line) error {
	lw := lineio.NewWriter(w, -1)
	for _, l := range lines {
		field, err := x.FormatTime(l.At)
		if err != nil {
			return err
		}
		if err := lw.WriteLine([]byte(field + " " + l.Payload)); err != nil {
			return fmt.Errorf("writing line: %w", err)
		}
	}
	return nil
}

func pick(rng *rand.Rand, payloads []string) string {
	return payloads[rng.Intn(len(payloads))]
}

func generateSteady(rng *rand.Rand, opts Options) []Line {
	interval := opts.Duration / time.Duration(opts.Count)
	lines := make([]Line, opts.Count)
	for i := range lines {
		lines[i] = Line{
			At:      opts.Start.Add(time.Duration(i) * interval),
			Payload: pick(rng, opts.Payloads),
		}
	}
	return lines
}

func generateBurst(rng *rand.Rand, opts Options) []Line {
	lines := make([]Line, 0, opts.Count)
	numBursts := 4
	burstSize := opts.Count / numBursts
	burstGap := opts.Duration / time.Duration(numBursts)

	for b := 0; b < numBursts; b++ {
		burstStart := opts.Start.Add(time.Duration(b) * burstGap)
		for i := 0; i < burstSize; i++ {
			// Records within a burst land in the first tenth of the gap.
			offset := time.Duration(rng.Int63n(int64(burstGap/10) + 1))
			lines = append(lines, Line{
				At:      burstStart.Add(offset),
				Payload: pick(rng, opts.Payloads),
			})
		}
	}

	for len(lines) < opts.Count {
		lines = append(lines, Line{
			At:      opts.Start.Add(time.Duration(rng.Int63n(int64(opts.Duration)))),
			Payload: pick(rng, opts.Payloads),
		})
	}
	return lines
}

func generateRamp(rng *rand.Rand, opts Options) []Line {
	lines := make([]Line, 0, opts.Count)
	// Quadratic spacing puts more records towards the end.
	for i := 0; i < opts.Count; i++ {
		frac := float64(i) / float64(opts.Count)
		lines = append(lines, Line{
			At:      opts.Start.Add(time.Duration(frac * frac * float64(opts.Duration))),
			Payload: pick(rng, opts.Payloads),
		})
	}
	return lines
}
