package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveRelease(t *testing.T) {
	c := New("1s")
	c.ObserveRelease(500*time.Millisecond, 20*time.Microsecond)
	c.ObserveRelease(0, -time.Microsecond)

	if got := testutil.ToFloat64(c.Released); got != 2 {
		t.Errorf("released = %v, want 2", got)
	}
	if got := testutil.CollectAndCount(c.ReleaseLag); got != 1 {
		t.Errorf("lag histogram series = %d, want 1", got)
	}
}

func TestWriteTextfile(t *testing.T) {
	c := New("10 / 1s")
	c.Read.Add(3)
	c.Diverted.Inc()

	path := filepath.Join(t.TempDir(), "relval.prom")
	if err := c.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	for _, want := range []string{
		`relval_records_read_total{policy="10 / 1s"} 3`,
		`relval_records_diverted_total{policy="10 / 1s"} 1`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("textfile missing %q:\n%s", want, text)
		}
	}
}
