// Package logging constructs the *zap.Logger instances threaded through
// the scheduler, event bus, and watch loop: JSON encoding for normal runs,
// a human-readable console encoding under --dev.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options configures logger construction.
type Options struct {
	Dev     bool // console encoding, debug level, caller info
	Verbose bool // debug level even without Dev
}

// New builds a logger per opts. Callers that don't care about logging can
// use zap.NewNop() directly rather than going through this constructor.
func New(opts Options) (*zap.Logger, error) {
	if opts.Dev {
		cfg := zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		return cfg.Build()
	}

	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if opts.Verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}

// Nop returns a logger that discards everything, the scheduler's default.
func Nop() *zap.Logger {
	return zap.NewNop()
}
