package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/SmitUplenchwar2687/relval/internal/pacer"
	"github.com/SmitUplenchwar2687/relval/internal/policy"
	"github.com/SmitUplenchwar2687/relval/internal/timestamp"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Format != timestamp.Calendar {
		t.Errorf("default format = %v, want %v", cfg.Format, timestamp.Calendar)
	}
	if cfg.Overflow != pacer.Wait {
		t.Errorf("default overflow = %v, want %v", cfg.Overflow, pacer.Wait)
	}
	if cfg.Divert.MaxFailures != 3 {
		t.Errorf("default divert max failures = %d, want 3", cfg.Divert.MaxFailures)
	}
	if cfg.WriteRetries != 3 {
		t.Errorf("default write retries = %d, want 3", cfg.WriteRetries)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("default log level = %q, want warn", cfg.Log.Level)
	}
}

func TestValidate_RequiresRateLimit(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err == nil {
		t.Error("config without a rate limit should be invalid")
	}
}

func TestResolve(t *testing.T) {
	cfg := Default()
	cfg.RateLimit = " 10 / 1s "
	if err := cfg.Resolve(); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if cfg.Policy != policy.Rate(10, time.Second) {
		t.Errorf("policy = %v, want 10 / 1s", cfg.Policy)
	}

	cfg.RateLimit = "10/1s"
	if err := cfg.Resolve(); err == nil {
		t.Error("rate limit without spaced slash should be rejected")
	}
}

func TestValidate_BadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative premature", func(c *Config) { c.Premature = -time.Second }},
		{"negative standby", func(c *Config) { c.Standby = -time.Millisecond }},
		{"negative write retries", func(c *Config) { c.WriteRetries = -1 }},
		{"zero divert failures", func(c *Config) { c.Divert.MaxFailures = 0 }},
		{"bad format", func(c *Config) { c.Format = timestamp.Format(42) }},
		{"bad overflow", func(c *Config) { c.Overflow = pacer.Overflow(42) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Policy = policy.Interval(time.Second)
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoadFile_Full(t *testing.T) {
	content := `{
  "format": "epoch",
  "timezone": "UTC",
  "rate_limit": "5 / 250ms",
  "overflow": "reject",
  "divert": { "target": "redis://localhost:6379/0", "max_failures": 7 },
  "premature": "1.5s",
  "standby": "20ms",
  "write_retries": 0,
  "log": { "level": "debug", "file": "/tmp/relval.log" },
  "metrics_file": "/tmp/relval.prom"
}`
	path := filepath.Join(t.TempDir(), "config.json")
	os.WriteFile(path, []byte(content), 0o644)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.Resolve(); err != nil {
		t.Fatal(err)
	}

	if cfg.Format != timestamp.UnixEpoch {
		t.Errorf("format = %v, want epoch", cfg.Format)
	}
	if cfg.Location != time.UTC {
		t.Errorf("location = %v, want UTC", cfg.Location)
	}
	if cfg.Policy != policy.Rate(5, 250*time.Millisecond) {
		t.Errorf("policy = %v, want 5 / 250ms", cfg.Policy)
	}
	if cfg.Overflow != pacer.Reject {
		t.Errorf("overflow = %v, want reject", cfg.Overflow)
	}
	if cfg.Divert.Target != "redis://localhost:6379/0" || cfg.Divert.MaxFailures != 7 {
		t.Errorf("divert = %+v", cfg.Divert)
	}
	if cfg.Premature != 1500*time.Millisecond {
		t.Errorf("premature = %v, want 1.5s", cfg.Premature)
	}
	if cfg.Standby != 20*time.Millisecond {
		t.Errorf("standby = %v, want 20ms", cfg.Standby)
	}
	if cfg.WriteRetries != 0 {
		t.Errorf("write retries = %d, want 0", cfg.WriteRetries)
	}
	if cfg.Log.Level != "debug" || cfg.Log.File != "/tmp/relval.log" {
		t.Errorf("log = %+v", cfg.Log)
	}
	if cfg.MetricsFile != "/tmp/relval.prom" {
		t.Errorf("metrics file = %q", cfg.MetricsFile)
	}
}

func TestLoadFile_Partial(t *testing.T) {
	content := `{ "rate_limit": "100ms" }`
	path := filepath.Join(t.TempDir(), "config.json")
	os.WriteFile(path, []byte(content), 0o644)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.RateLimit != "100ms" {
		t.Errorf("rate limit = %q, want 100ms", cfg.RateLimit)
	}
	if cfg.Format != timestamp.Calendar {
		t.Errorf("format should keep default, got %v", cfg.Format)
	}
	if cfg.WriteRetries != 3 {
		t.Errorf("write retries should keep default, got %d", cfg.WriteRetries)
	}
}

func TestLoadFile_BadValues(t *testing.T) {
	for _, content := range []string{
		`{ "format": "julian" }`,
		`{ "overflow": "drop" }`,
		`{ "premature": "5m" }`,
		`{ "timezone": "Mars/Olympus" }`,
		`{ not json`,
	} {
		path := filepath.Join(t.TempDir(), "config.json")
		os.WriteFile(path, []byte(content), 0o644)
		if _, err := LoadFile(path); err == nil {
			t.Errorf("LoadFile(%s) should fail", content)
		}
	}
}

func TestLoadFile_NotFound(t *testing.T) {
	if _, err := LoadFile("/nonexistent/config.json"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestWriteExample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "example.json")
	if err := WriteExample(path); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("example config should load: %v", err)
	}
	if err := cfg.Resolve(); err != nil {
		t.Errorf("example config should be valid: %v", err)
	}
	if cfg.Overflow != pacer.Reject {
		t.Errorf("example overflow = %v, want reject", cfg.Overflow)
	}
}
