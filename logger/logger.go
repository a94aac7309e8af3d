// Package logger builds the process-wide zap logger: human-readable lines on
// stdout and JSON lines in a log file.
package logger

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/itish2003/searchdoc/config"
)

// New returns a logger writing to stdout and, when cfg.File is set, to that
// file. The returned func flushes and closes the file.
func New(cfg config.LogConfig) (*zap.Logger, func(), error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}

	console := zapcore.Lock(os.Stdout)
	color := isatty.IsTerminal(os.Stdout.Fd())

	if cfg.File == "" {
		log := zap.New(newCore(level, console, nil, color), zap.AddCaller())
		return log, func() { _ = log.Sync() }, nil
	}

	file, closeFile, err := zap.Open(cfg.File)
	if err != nil {
		return nil, nil, fmt.Errorf("logger: open %s: %w", cfg.File, err)
	}
	log := zap.New(newCore(level, console, file, color), zap.AddCaller())
	return log, func() {
		_ = log.Sync()
		closeFile()
	}, nil
}

// NewWithWriters is New with explicit sinks. file may be nil.
func NewWithWriters(level zapcore.Level, console, file zapcore.WriteSyncer) *zap.Logger {
	return zap.New(newCore(level, console, file, false))
}

func newCore(level zapcore.Level, console, file zapcore.WriteSyncer, color bool) zapcore.Core {
	consoleCfg := zap.NewDevelopmentEncoderConfig()
	consoleCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	if color {
		consoleCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), console, level),
	}

	if file != nil {
		fileCfg := zap.NewProductionEncoderConfig()
		fileCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileCfg), file, level))
	}
	return zapcore.NewTee(cores...)
}

// ParseLevel maps a LOG_LEVEL value to a zap level.
func ParseLevel(s string) (zapcore.Level, error) {
	if s == "" {
		return zapcore.InfoLevel, nil
	}
	level, err := zapcore.ParseLevel(s)
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("logger: %w", err)
	}
	return level, nil
}
