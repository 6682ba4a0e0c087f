// Package logging provides the structured logger for the generation server.
//
// Output is teed to the console and a rotating JSON log file. Development
// mode lowers the level to debug and switches the console to a colored
// human-readable format.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger creates a zap logger writing to both the console and logPath.
//
//   - isDevelopment true: debug level, colored console output
//   - isDevelopment false: info level, JSON everywhere
//
// The file output rotates at 100MB, keeping 5 compressed backups for up to
// 30 days.
func NewLogger(isDevelopment bool, logPath string) *zap.Logger {
	level := zapcore.InfoLevel
	if isDevelopment {
		level = zapcore.DebugLevel
	}

	core := zapcore.NewTee(
		newConsoleCore(level, isDevelopment),
		zapcore.NewCore(zapcore.NewJSONEncoder(NewEncoderConfig()), NewFileWriter(logPath), level),
	)

	return zap.New(core, zap.AddCaller())
}

// NewTestLogger returns a no-op logger for tests and for components that
// accept an optional logger.
func NewTestLogger() *zap.Logger {
	return zap.NewNop()
}

func newConsoleCore(level zapcore.Level, isDev bool) zapcore.Core {
	var encoder zapcore.Encoder
	if isDev {
		encoder = zapcore.NewConsoleEncoder(NewConsoleEncoderConfig())
	} else {
		encoder = zapcore.NewJSONEncoder(NewEncoderConfig())
	}
	return zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), level)
}
