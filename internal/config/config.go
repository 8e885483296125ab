package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/SmitUplenchwar2687/relval/internal/divert"
	"github.com/SmitUplenchwar2687/relval/internal/lineio"
	"github.com/SmitUplenchwar2687/relval/internal/logging"
	"github.com/SmitUplenchwar2687/relval/internal/pacer"
	"github.com/SmitUplenchwar2687/relval/internal/policy"
	"github.com/SmitUplenchwar2687/relval/internal/timestamp"
)

// Config is the run configuration. It is built once at startup and passed
// explicitly to everything that needs it.
type Config struct {
	// Start is the process start instant: the pacer baseline and the origin
	// of relative timestamps.
	Start time.Time `json:"-"`

	Format    timestamp.Format `json:"format"`
	Location  *time.Location   `json:"-"`
	RateLimit string           `json:"rate_limit"`
	Policy    policy.Policy    `json:"-"`
	Overflow  pacer.Overflow   `json:"overflow"`

	Divert DivertConfig `json:"divert"`

	// Premature and Standby are accepted and validated but do not affect
	// admission.
	Premature time.Duration `json:"premature"`
	Standby   time.Duration `json:"standby"`

	WriteRetries int             `json:"write_retries"`
	Log          logging.Options `json:"log"`
	MetricsFile  string          `json:"metrics_file"`
}

// DivertConfig holds the diversion sink settings.
type DivertConfig struct {
	Target      string `json:"target"`
	MaxFailures int    `json:"max_failures"`
}

// Default returns a Config with sensible defaults. Start is left zero.
func Default() Config {
	return Config{
		Format:       timestamp.Calendar,
		Location:     time.Local,
		Overflow:     pacer.Wait,
		Divert:       DivertConfig{MaxFailures: divert.DefaultMaxFailures},
		WriteRetries: lineio.DefaultRetries,
		Log:          logging.DefaultOptions(),
	}
}

// Resolve parses RateLimit into Policy and validates the config.
func (c *Config) Resolve() error {
	p, err := policy.Parse(c.RateLimit)
	if err != nil {
		return err
	}
	c.Policy = p
	return c.Validate()
}

// Validate checks that the config is valid.
func (c Config) Validate() error {
	switch c.Policy.Kind {
	case policy.KindInterval, policy.KindRate:
	default:
		return fmt.Errorf("rate limit is required")
	}
	switch c.Format {
	case timestamp.Calendar, timestamp.UnixEpoch, timestamp.ProcessRelative:
	default:
		return fmt.Errorf("unknown timestamp format %v", c.Format)
	}
	switch c.Overflow {
	case pacer.Wait, pacer.Reject:
	default:
		return fmt.Errorf("unknown overflow mode %v", c.Overflow)
	}
	if c.Premature < 0 {
		return fmt.Errorf("premature must not be negative, got %s", c.Premature)
	}
	if c.Standby < 0 {
		return fmt.Errorf("standby must not be negative, got %s", c.Standby)
	}
	if c.WriteRetries < 0 {
		return fmt.Errorf("write_retries must not be negative, got %d", c.WriteRetries)
	}
	if c.Divert.MaxFailures <= 0 {
		return fmt.Errorf("divert.max_failures must be positive, got %d", c.Divert.MaxFailures)
	}
	return nil
}

// LoadFile reads a JSON config file and merges it with defaults.
// Fields not specified in the file retain their default values.
func LoadFile(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config file: %w", err)
	}

	// Use a raw intermediate struct to handle string-typed fields.
	var raw rawConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return cfg, fmt.Errorf("parsing config file: %w", err)
	}

	if raw.Format != "" {
		f, err := timestamp.ParseFormat(raw.Format)
		if err != nil {
			return cfg, fmt.Errorf("parsing format: %w", err)
		}
		cfg.Format = f
	}
	if raw.Timezone != "" {
		loc, err := time.LoadLocation(raw.Timezone)
		if err != nil {
			return cfg, fmt.Errorf("parsing timezone: %w", err)
		}
		cfg.Location = loc
	}
	cfg.RateLimit = raw.RateLimit
	if raw.Overflow != "" {
		o, err := pacer.ParseOverflow(raw.Overflow)
		if err != nil {
			return cfg, fmt.Errorf("parsing overflow: %w", err)
		}
		cfg.Overflow = o
	}
	cfg.Divert.Target = raw.Divert.Target
	if raw.Divert.MaxFailures > 0 {
		cfg.Divert.MaxFailures = raw.Divert.MaxFailures
	}
	if raw.Premature != "" {
		d, err := policy.ParseDuration(raw.Premature)
		if err != nil {
			return cfg, fmt.Errorf("parsing premature: %w", err)
		}
		cfg.Premature = d
	}
	if raw.Standby != "" {
		d, err := policy.ParseDuration(raw.Standby)
		if err != nil {
			return cfg, fmt.Errorf("parsing standby: %w", err)
		}
		cfg.Standby = d
	}
	if raw.WriteRetries != nil {
		cfg.WriteRetries = *raw.WriteRetries
	}
	if raw.Log.Level != "" {
		cfg.Log.Level = raw.Log.Level
	}
	if raw.Log.File != "" {
		cfg.Log.File = raw.Log.File
	}
	cfg.MetricsFile = raw.MetricsFile

	return cfg, nil
}

// rawConfig is the JSON-friendly representation with string enums and
// durations in the rate limit time grammar.
type rawConfig struct {
	Format    string `json:"format"`
	Timezone  string `json:"timezone"`
	RateLimit string `json:"rate_limit"`
	Overflow  string `json:"overflow"`
	Divert    struct {
		Target      string `json:"target"`
		MaxFailures int    `json:"max_failures"`
	} `json:"divert"`
	Premature    string `json:"premature"`
	Standby      string `json:"standby"`
	WriteRetries *int   `json:"write_retries"`
	Log          struct {
		Level string `json:"level"`
		File  string `json:"file"`
	} `json:"log"`
	MetricsFile string `json:"metrics_file"`
}

// WriteExample writes an example config file to the given path.
func WriteExample(path string) error {
	example := `{
  "format": "calendar",
  "timezone": "Local",
  "rate_limit": "10 / 1s",
  "overflow": "reject",
  "divert": {
    "target": "dropped.txt",
    "max_failures": 3
  },
  "premature": "0",
  "standby": "0",
  "write_retries": 3,
  "log": {
    "level": "warn"
  },
  "metrics_file": ""
}
`
	return os.WriteFile(path, []byte(example), 0o644)
}
