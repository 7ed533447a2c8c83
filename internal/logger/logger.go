// Package logger holds the process wide zap logger.
package logger

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu     sync.Mutex
	level  = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	global *zap.SugaredLogger
)

// Logger returns the shared logger, building it on first use.
// It writes human readable lines to stderr.
func Logger() *zap.SugaredLogger {
	mu.Lock()
	defer mu.Unlock()

	if global == nil {
		global = build()
	}
	return global
}

// SetLogger replaces the shared logger, for example by zap.NewNop().Sugar() in tests.
func SetLogger(l *zap.SugaredLogger) {
	mu.Lock()
	defer mu.Unlock()

	global = l
}

// SetLevel changes the level of the logger built by Logger, e.g. "debug".
func SetLevel(name string) error {
	return level.UnmarshalText([]byte(name))
}

func build() *zap.SugaredLogger {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = level
	cfg.DisableStacktrace = true
	cfg.DisableCaller = true
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	l, err := cfg.Build()
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return l.Sugar()
}
