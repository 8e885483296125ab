package generate

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/SmitUplenchwar2687/relval/internal/lineio"
	"github.com/SmitUplenchwar2687/relval/internal/timestamp"
)

var start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestLines_AllPatterns(t *testing.T) {
	for _, p := range []string{PatternSteady, PatternBurst, PatternRamp} {
		t.Run(p, func(t *testing.T) {
			lines, err := Lines(Options{
				Count:    32,
				Duration: 2 * time.Minute,
				Pattern:  p,
				Start:    start,
				Seed:     7,
			})
			if err != nil {
				t.Fatalf("Lines() error = %v", err)
			}
			if len(lines) != 32 {
				t.Fatalf("len(lines) = %d, want 32", len(lines))
			}
			for i, l := range lines {
				if l.Payload == "" {
					t.Fatalf("line %d has no payload", i)
				}
				if l.At.Before(start) || !l.At.Before(start.Add(2*time.Minute)) {
					t.Errorf("line %d at %v outside the requested span", i, l.At)
				}
				if i > 0 && l.At.Before(lines[i-1].At) {
					t.Errorf("line %d out of order", i)
				}
			}
		})
	}
}

func TestLines_SteadySpacing(t *testing.T) {
	lines, err := Lines(Options{Count: 10, Duration: 10 * time.Second, Start: start, Seed: 1})
	if err != nil {
		t.Fatal(err)
	}
	if !lines[1].At.Equal(start.Add(time.Second)) {
		t.Errorf("line 1 at %v, want start+1s", lines[1].At)
	}
}

func TestLines_SameSeedSameOutput(t *testing.T) {
	opts := Options{Count: 20, Duration: time.Minute, Pattern: PatternBurst, Start: start, Seed: 42}
	a, _ := Lines(opts)
	b, _ := Lines(opts)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("line %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestLines_InvalidOptions(t *testing.T) {
	for _, opts := range []Options{
		{Count: 0, Duration: time.Second},
		{Count: 1, Duration: 0},
		{Count: 1, Duration: time.Second, Pattern: "zigzag"},
	} {
		if _, err := Lines(opts); err == nil {
			t.Errorf("Lines(%+v) should fail", opts)
		}
	}
}

func TestWrite_RoundTrip(t *testing.T) {
	lines, err := Lines(Options{Count: 5, Duration: 5 * time.Second, Start: start, Seed: 3, Payloads: []string{"p q"}})
	if err != nil {
		t.Fatal(err)
	}

	for _, f := range []timestamp.Format{timestamp.Calendar, timestamp.UnixEpoch, timestamp.ProcessRelative} {
		t.Run(f.String(), func(t *testing.T) {
			x := timestamp.NewExtractor(f, start, time.UTC)
			var buf bytes.Buffer
			if err := Write(&buf, x, lines); err != nil {
				t.Fatal(err)
			}

			r := lineio.NewReader(strings.NewReader(buf.String()))
			for i, want := range lines {
				line, err := r.ReadLine()
				if err != nil {
					t.Fatalf("line %d: %v", i, err)
				}
				at, payload, err := x.Extract(line)
				if err != nil {
					t.Fatalf("line %d: Extract() error = %v", i, err)
				}
				if !at.Equal(want.At) {
					t.Errorf("line %d at %v, want %v", i, at, want.At)
				}
				if string(payload) != "p q" {
					t.Errorf("line %d payload = %q", i, payload)
				}
			}
		})
	}
}
