// Package logging wraps zap with one constructor, a per-component name,
// and level-gated calls. Fields replace Printf interpolation.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the process-wide root logger. development=true switches to a
// human-readable console encoder with debug level enabled; production mode
// uses JSON at info level.
func New(development bool) *zap.Logger {
	var cfg zap.Config
	if development {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	log, err := cfg.Build()
	if err != nil {
		// Construction only fails on a malformed config; fall back to a
		// no-op logger rather than crash the caller.
		return zap.NewNop()
	}
	return log
}

// Component returns a named child logger, using structured naming
// instead of a bracketed prefix.
func Component(log *zap.Logger, name string) *zap.Logger {
	return log.Named(name)
}
