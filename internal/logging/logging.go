// Package logging configures the process-wide zap logger.
//
// Packages log through zap.S() so they don't need a logger threaded through
// every constructor; Setup replaces the globals once at startup.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mrlokans/sitedocs/internal/config"
)

// New builds a logger for the given configuration.
func New(cfg config.Log) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
	}

	zcfg := zap.NewProductionConfig()
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	return zcfg.Build()
}

// Setup builds a logger and installs it as the zap global.
// The returned function flushes buffered entries and restores the previous globals.
func Setup(cfg config.Log) (func(), error) {
	logger, err := New(cfg)
	if err != nil {
		return nil, err
	}
	restore := zap.ReplaceGlobals(logger)
	return func() {
		_ = logger.Sync()
		restore()
	}, nil
}
