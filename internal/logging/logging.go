// Package logging builds the zap logger used for diagnostics. Records never
// pass through it; diagnostics go to stderr or a rotated file so they cannot
// mix with the paced output on stdout.
package logging

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures the logger.
type Options struct {
	Level string `json:"level"` // debug, info, warn, error
	File  string `json:"file"`  // empty means stderr

	MaxSizeMB  int `json:"max_size_mb"`
	MaxBackups int `json:"max_backups"`
	MaxAgeDays int `json:"max_age_days"`
}

// DefaultOptions logs warnings and errors to stderr.
func DefaultOptions() Options {
	return Options{
		Level:      "warn",
		MaxSizeMB:  100,
		MaxBackups: 3,
		MaxAgeDays: 28,
	}
}

// New builds a logger from opts. The returned close function syncs the
// logger and releases the log file, if any.
func New(opts Options) (*zap.Logger, func() error, error) {
	level, err := zapcore.ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing log level: %w", err)
	}

	var (
		sink    zapcore.WriteSyncer
		closer  io.Closer
		encoder zapcore.Encoder
	)
	if opts.File == "" {
		sink = zapcore.Lock(os.Stderr)
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.EncodeTime = zapcore.RFC3339NanoTimeEncoder
		encoder = zapcore.NewConsoleEncoder(cfg)
	} else {
		lj := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
		}
		sink = zapcore.AddSync(lj)
		closer = lj
		cfg := zap.NewProductionEncoderConfig()
		cfg.EncodeTime = zapcore.RFC3339NanoTimeEncoder
		encoder = zapcore.NewJSONEncoder(cfg)
	}

	logger := zap.New(zapcore.NewCore(encoder, sink, level)).Named("relval")
	closeFn := func() error {
		_ = logger.Sync()
		if closer != nil {
			return closer.Close()
		}
		return nil
	}
	return logger, closeFn, nil
}
