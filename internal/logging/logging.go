// Package logging builds the process logger. Messages below ERROR go to
// stdout and ERROR and above go to stderr. When a log file is configured,
// every level is also appended to it.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ParseLevel maps a config level name to a zap level.
func ParseLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel, nil
	case "", "info":
		return zapcore.InfoLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	}
	return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", level)
}

func encoder(format string) (zapcore.Encoder, error) {
	switch format {
	case "", "console":
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		return zapcore.NewConsoleEncoder(cfg), nil
	case "json":
		cfg := zap.NewProductionEncoderConfig()
		cfg.TimeKey = "timestamp"
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		return zapcore.NewJSONEncoder(cfg), nil
	}
	return nil, fmt.Errorf("unknown log format %q", format)
}

// New builds a logger writing to the process's stdout and stderr. The
// returned cleanup closes the log file, if one was opened.
func New(level, format, file string) (*zap.Logger, func(), error) {
	var out io.Writer
	cleanup := func() {}
	if file != "" {
		f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		out = f
		cleanup = func() { f.Close() }
	}

	log, err := build(level, format, os.Stdout, os.Stderr, out)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return log, func() {
		_ = log.Sync()
		cleanup()
	}, nil
}

// build wires the cores. file may be nil.
func build(level, format string, stdout, stderr, file io.Writer) (*zap.Logger, error) {
	floor, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	enc, err := encoder(format)
	if err != nil {
		return nil, err
	}

	low := zap.LevelEnablerFunc(func(l zapcore.Level) bool { return l >= floor && l < zapcore.ErrorLevel })
	high := zap.LevelEnablerFunc(func(l zapcore.Level) bool { return l >= floor && l >= zapcore.ErrorLevel })

	cores := []zapcore.Core{
		zapcore.NewCore(enc, zapcore.AddSync(stdout), low),
		zapcore.NewCore(enc.Clone(), zapcore.AddSync(stderr), high),
	}
	if file != nil {
		cores = append(cores, zapcore.NewCore(enc.Clone(), zapcore.AddSync(file), zap.NewAtomicLevelAt(floor)))
	}
	return zap.New(zapcore.NewTee(cores...)), nil
}
