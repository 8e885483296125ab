package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/SmitUplenchwar2687/relval/internal/config"
	"github.com/SmitUplenchwar2687/relval/internal/divert"
	"github.com/SmitUplenchwar2687/relval/internal/lineio"
	"github.com/SmitUplenchwar2687/relval/internal/logging"
	"github.com/SmitUplenchwar2687/relval/internal/pacer"
	"github.com/SmitUplenchwar2687/relval/internal/policy"
	"github.com/SmitUplenchwar2687/relval/internal/timestamp"
)

type runOptions struct {
	configPath string

	calendar bool
	epoch    bool
	relative bool
	tz       string

	rateLimit string
	overflow  string

	divertTarget      string
	divertMaxFailures int

	premature string
	standby   string

	writeRetries int
	logLevel     string
	logFile      string
	metricsFile  string
	summary      bool

	// format and location as loaded from a config file.
	cfgFormat   timestamp.Format
	cfgLocation *time.Location
}

func defaultRunOptions() runOptions {
	return runOptions{
		overflow:          pacer.Wait.String(),
		divertMaxFailures: divert.DefaultMaxFailures,
		premature:         "0",
		standby:           "0",
		writeRetries:      lineio.DefaultRetries,
		logLevel:          logging.DefaultOptions().Level,
	}
}

func (o *runOptions) addFlags(cmd *cobra.Command) {
	d := defaultRunOptions()
	f := cmd.Flags()
	f.StringVar(&o.configPath, "config", "", "path to JSON config file")
	f.BoolVarP(&o.calendar, "calendar", "c", false, "timestamps are local calendar time YYYYMMDDhhmmss[.frac] (default)")
	f.BoolVarP(&o.epoch, "epoch", "e", false, "timestamps are UNIX epoch seconds[.frac]")
	f.BoolVarP(&o.relative, "relative", "z", false, "timestamps are seconds[.frac] since start")
	f.StringVar(&o.tz, "tz", "", "time zone for calendar timestamps (default local)")
	f.StringVar(&o.overflow, "overflow", d.overflow, "what to do with a record beyond a count / time rate limit (wait, reject)")
	f.StringVarP(&o.divertTarget, "divert", "d", "", "where rejected records go: descriptor number, path or redis://host:port/db?key=list")
	f.IntVar(&o.divertMaxFailures, "divert-max-failures", d.divertMaxFailures, "consecutive diversion failures before giving up")
	f.StringVar(&o.premature, "premature", d.premature, "premature tolerance, accepted for compatibility and not used")
	f.StringVar(&o.standby, "standby", d.standby, "standby period, accepted for compatibility and not used")
	f.IntVar(&o.writeRetries, "write-retries", d.writeRetries, "retries of a transiently failed write")
	f.StringVar(&o.logLevel, "log-level", d.logLevel, "log level (debug, info, warn, error)")
	f.StringVar(&o.logFile, "log-file", "", "write JSON logs to this file instead of stderr")
	f.StringVar(&o.metricsFile, "metrics-file", "", "write Prometheus textfile metrics here on exit")
	f.BoolVar(&o.summary, "summary", false, "print a run summary table to stderr on exit")

	cmd.MarkFlagsMutuallyExclusive("calendar", "epoch", "relative")
}

func (o *runOptions) applyConfigIfUnset(cmd *cobra.Command, cfg *config.Config) {
	if cfg == nil {
		return
	}

	flags := cmd.Flags()
	if !flags.Changed("calendar") && !flags.Changed("epoch") && !flags.Changed("relative") {
		o.cfgFormat = cfg.Format
	}
	if !flags.Changed("tz") {
		o.cfgLocation = cfg.Location
	}
	if !flags.Changed("overflow") {
		o.overflow = cfg.Overflow.String()
	}
	if !flags.Changed("divert") {
		o.divertTarget = cfg.Divert.Target
	}
	if !flags.Changed("divert-max-failures") {
		o.divertMaxFailures = cfg.Divert.MaxFailures
	}
	if !flags.Changed("premature") {
		o.premature = policy.FormatDuration(cfg.Premature)
	}
	if !flags.Changed("standby") {
		o.standby = policy.FormatDuration(cfg.Standby)
	}
	if !flags.Changed("write-retries") {
		o.writeRetries = cfg.WriteRetries
	}
	if !flags.Changed("log-level") {
		o.logLevel = cfg.Log.Level
	}
	if !flags.Changed("log-file") {
		o.logFile = cfg.Log.File
	}
	if !flags.Changed("metrics-file") {
		o.metricsFile = cfg.MetricsFile
	}
	if o.rateLimit == "" {
		o.rateLimit = cfg.RateLimit
	}
}

func (o *runOptions) format() timestamp.Format {
	switch {
	case o.epoch:
		return timestamp.UnixEpoch
	case o.relative:
		return timestamp.ProcessRelative
	case o.calendar:
		return timestamp.Calendar
	case o.cfgFormat != 0:
		return o.cfgFormat
	default:
		return timestamp.Calendar
	}
}

func (o *runOptions) location() (*time.Location, error) {
	if o.tz != "" {
		loc, err := time.LoadLocation(o.tz)
		if err != nil {
			return nil, fmt.Errorf("invalid --tz value %q: %w", o.tz, err)
		}
		return loc, nil
	}
	if o.cfgLocation != nil {
		return o.cfgLocation, nil
	}
	return time.Local, nil
}

// toConfig resolves the options into a validated run configuration.
func (o *runOptions) toConfig(start time.Time) (config.Config, error) {
	cfg := config.Default()
	cfg.Start = start
	cfg.Format = o.format()

	loc, err := o.location()
	if err != nil {
		return cfg, err
	}
	cfg.Location = loc

	if o.rateLimit == "" {
		return cfg, fmt.Errorf("rate limit is required")
	}
	cfg.RateLimit = o.rateLimit

	if cfg.Overflow, err = pacer.ParseOverflow(o.overflow); err != nil {
		return cfg, err
	}
	if cfg.Premature, err = policy.ParseDuration(o.premature); err != nil {
		return cfg, fmt.Errorf("invalid --premature value: %w", err)
	}
	if cfg.Standby, err = policy.ParseDuration(o.standby); err != nil {
		return cfg, fmt.Errorf("invalid --standby value: %w", err)
	}

	cfg.Divert = config.DivertConfig{Target: o.divertTarget, MaxFailures: o.divertMaxFailures}
	cfg.WriteRetries = o.writeRetries
	cfg.Log.Level = o.logLevel
	cfg.Log.File = o.logFile
	cfg.MetricsFile = o.metricsFile

	if err := cfg.Resolve(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
