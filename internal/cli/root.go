package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"github.com/SmitUplenchwar2687/relval/internal/clock"
	"github.com/SmitUplenchwar2687/relval/internal/config"
	"github.com/SmitUplenchwar2687/relval/internal/divert"
	"github.com/SmitUplenchwar2687/relval/internal/logging"
	"github.com/SmitUplenchwar2687/relval/internal/metrics"
	"github.com/SmitUplenchwar2687/relval/internal/pacer"
	"github.com/SmitUplenchwar2687/relval/internal/stream"
	"github.com/SmitUplenchwar2687/relval/internal/timestamp"
)

// shutdownGrace bounds how long an interrupted run may take to notice
// cancellation, e.g. while blocked reading input.
const shutdownGrace = 200 * time.Millisecond

// NewRootCmd creates the root relval command.
func NewRootCmd() *cobra.Command {
	opts := defaultRunOptions()

	root := &cobra.Command{
		Use:   "relval [flags] ratelimit [file]",
		Short: "Relief valve: pace timestamped records to a rate limit",
		Long: `relval copies timestamped records from file (or standard input) to standard
output no faster than ratelimit allows. The leading timestamp field and its
delimiter are stripped from every released record.

Rate limit:
  time          minimum spacing between records, e.g. 100ms, 0.5, 2s
  count / time  at most count records in any window of time, e.g. "10 / 1s"
  units         s (default), ms, us, ns

Under a count / time rate limit, records beyond the count either wait
(--overflow wait) or are rejected (--overflow reject) and written verbatim
to the --divert target: a descriptor number, a path, or a redis:// URL.
A time rate limit always waits.`,
		Example: `  relval 100ms access.log
  relval -e --overflow reject -d 3 "10 / 1s" - 3>dropped.log
  relval -z --overflow reject -d redis://localhost:6379/0?key=dropped "100 / 1s" events.txt
  relval --config relval.json`,
		Args:         cobra.MaximumNArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRelief(cmd, args, &opts)
		},
	}

	opts.addFlags(root)
	root.AddCommand(newGenerateCmd())

	return root
}

func runRelief(cmd *cobra.Command, args []string, opts *runOptions) error {
	start := time.Now()

	var inPath string
	if len(args) > 0 {
		opts.rateLimit = args[0]
	}
	if len(args) > 1 {
		inPath = args[1]
	}

	if opts.configPath != "" {
		fileCfg, err := config.LoadFile(opts.configPath)
		if err != nil {
			return err
		}
		opts.applyConfigIfUnset(cmd, &fileCfg)
	}

	cfg, err := opts.toConfig(start)
	if err != nil {
		return err
	}

	logger, closeLog, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer closeLog()
	logger = logger.With(zap.String("run_id", uuid.NewString()))

	ctx, stop := signal.NotifyContext(cmd.Context(), unix.SIGINT, unix.SIGTERM, unix.SIGHUP)
	defer stop()

	in := cmd.InOrStdin()
	if inPath != "" && inPath != "-" {
		f, err := os.Open(inPath)
		if err != nil {
			return fmt.Errorf("opening input: %w", err)
		}
		defer f.Close()
		in = f
	}

	m := metrics.New(cfg.Policy.String())
	summary, runErr := relieve(ctx, cfg, in, cmd.OutOrStdout(), logger, m)

	if cfg.MetricsFile != "" {
		if err := m.WriteTextfile(cfg.MetricsFile); err != nil {
			logger.Warn("writing metrics file failed", zap.String("path", cfg.MetricsFile), zap.Error(err))
		}
	}

	if opts.summary && summary != nil {
		if err := printSummary(cmd.ErrOrStderr(), cfg.Policy.String(), summary); err != nil {
			logger.Warn("printing summary failed", zap.Error(err))
		}
	}

	fields := []zap.Field{zap.Duration("elapsed", time.Since(start))}
	if summary != nil {
		fields = append(fields,
			zap.Int("read", summary.Read),
			zap.Int("released", summary.Released),
			zap.Int("rejected", summary.Rejected),
			zap.Int("diverted", summary.Diverted),
			zap.Int("dropped", summary.Dropped),
			zap.Int("divert_errors", summary.DivertErrors),
			zap.Duration("max_lag", summary.MaxLag),
		)
	}
	if runErr != nil {
		logger.Error("run failed", append(fields, zap.Error(runErr))...)
		return runErr
	}
	logger.Info("run complete", fields...)
	return nil
}

// relieve wires the pipeline for cfg and runs it until in is exhausted or
// ctx is cancelled.
func relieve(ctx context.Context, cfg config.Config, in io.Reader, out io.Writer, logger *zap.Logger, m *metrics.Collector) (*stream.Summary, error) {
	clk := clock.NewRealClock()
	pc, err := pacer.New(cfg.Policy, cfg.Overflow, clk, cfg.Start)
	if err != nil {
		return nil, err
	}

	router, err := divert.Open(ctx, cfg.Divert.Target, divert.Options{
		MaxFailures: cfg.Divert.MaxFailures,
		Retries:     cfg.WriteRetries,
		Logger:      logger,
		Metrics:     m,
	})
	if err != nil {
		return nil, err
	}
	closeRouter := func() {
		if err := router.Close(); err != nil {
			logger.Warn("closing diversion sink failed", zap.Error(err))
		}
	}

	x := timestamp.NewExtractor(cfg.Format, cfg.Start, cfg.Location)
	d := stream.New(x, pc, clk, stream.Options{
		Router:       router,
		Logger:       logger,
		Metrics:      m,
		WriteRetries: cfg.WriteRetries,
	})

	logger.Info("starting",
		zap.Stringer("policy", cfg.Policy),
		zap.Stringer("format", cfg.Format),
		zap.Stringer("overflow", cfg.Overflow),
		zap.String("divert", cfg.Divert.Target),
	)

	type result struct {
		summary *stream.Summary
		err     error
	}
	done := make(chan result, 1)
	go func() {
		s, err := d.Run(ctx, in, out)
		done <- result{s, err}
	}()

	select {
	case res := <-done:
		closeRouter()
		return res.summary, res.err
	case <-ctx.Done():
	}

	select {
	case res := <-done:
		closeRouter()
		return res.summary, res.err
	case <-time.After(shutdownGrace):
		// Run is still blocked, most likely reading input. The diversion
		// sink stays open until it returns.
		go func() {
			<-done
			closeRouter()
		}()
		progress := d.Progress()
		return &progress, fmt.Errorf("interrupted: %w", ctx.Err())
	}
}
