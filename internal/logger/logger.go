// Package logger provides the process-wide zap sugared logger.
package logger

import (
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logger *zap.SugaredLogger
	once   sync.Once
)

// Init configures the global logger. Later calls are no-ops, as is any call
// after Get has already lazily initialized it.
//
// level is a zap level name ("debug", "info", ...); an unparsable level falls
// back to info. env "prod" selects the JSON production encoder.
func Init(level, env string) {
	once.Do(func() { logger = build(level, env) })
}

// Get returns the shared logger, initializing it from LOG_LEVEL and APP_ENV
// if Init was never called.
func Get() *zap.SugaredLogger {
	once.Do(func() { logger = build(os.Getenv("LOG_LEVEL"), os.Getenv("APP_ENV")) })
	return logger
}

// Sync flushes buffered log entries.
func Sync() error {
	if logger == nil {
		return nil
	}
	return logger.Sync()
}

func build(levelStr, env string) *zap.SugaredLogger {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(levelStr)); err != nil {
		level = zapcore.InfoLevel
	}

	var cfg zap.Config
	if env == "prod" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stdout"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	zl, err := cfg.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	return zl.Sugar()
}
