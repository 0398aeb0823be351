// Package logging provides the process-wide structured logger.
package logging

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	once   sync.Once
	logger *zap.Logger
)

// Logger returns the process-wide logger, configured from LOG_LEVEL and
// LOG_FILE on first use.
func Logger() *zap.Logger {
	once.Do(func() {
		l, err := New(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FILE"))
		if err != nil {
			l, _ = zap.NewProduction()
		}
		logger = l
	})
	return logger
}

// ParseLevel maps ERROR, WARN, INFO and DEBUG onto zap levels. Anything
// else is INFO.
func ParseLevel(name string) zapcore.Level {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "ERROR":
		return zapcore.ErrorLevel
	case "WARN":
		return zapcore.WarnLevel
	case "DEBUG", "TRACE":
		return zapcore.DebugLevel
	}
	return zapcore.InfoLevel
}

// New builds a JSON logger writing to stdout, and also appending to
// logFile when it is set.
func New(level, logFile string) (*zap.Logger, error) {
	lvl := ParseLevel(level)
	enc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	consoleCore := zapcore.NewCore(enc, zapcore.AddSync(os.Stdout), lvl)

	if logFile == "" {
		return zap.New(consoleCore), nil
	}

	if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	fileCore := zapcore.NewCore(enc, zapcore.AddSync(f), lvl)
	return zap.New(zapcore.NewTee(fileCore, consoleCore)), nil
}
