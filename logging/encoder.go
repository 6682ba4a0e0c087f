package logging

import (
	"time"

	"go.uber.org/zap/zapcore"
)

// Standard field names for structured log output.
const (
	FieldTimestamp  = "timestamp"
	FieldLevel      = "level"
	FieldCaller     = "caller"
	FieldMessage    = "message"
	FieldStacktrace = "stacktrace"
)

// NewEncoderConfig returns the encoder configuration used for JSON file
// output: ISO8601 timestamps, lowercase levels, short caller paths.
func NewEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:       FieldTimestamp,
		LevelKey:      FieldLevel,
		CallerKey:     FieldCaller,
		MessageKey:    FieldMessage,
		StacktraceKey: FieldStacktrace,
		LineEnding:    zapcore.DefaultLineEnding,

		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}

// NewConsoleEncoderConfig returns the encoder configuration for development
// console output: colored levels and human-readable timestamps.
func NewConsoleEncoderConfig() zapcore.EncoderConfig {
	cfg := NewEncoderConfig()
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout(time.Stamp)
	return cfg
}
