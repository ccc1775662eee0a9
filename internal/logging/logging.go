// Package logging builds the zap loggers used by the CLI and the server.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Environment overrides applied by FromEnv.
const (
	EnvLevel  = "BOMFOLD_LOG_LEVEL"
	EnvFormat = "BOMFOLD_LOG_FORMAT"
)

// Config holds logging configuration
type Config struct {
	Level       string `json:"level"`
	Format      string `json:"format"` // "json" or "console"
	OutputPath  string `json:"output_path"`
	Development bool   `json:"development"`
}

// CLI is the default for interactive use: console output, warnings only.
func CLI() Config {
	return Config{Level: "warn", Format: "console", OutputPath: "stderr"}
}

// Server is the default for `bomfold serve`.
func Server() Config {
	return Config{Level: "info", Format: "json", OutputPath: "stderr"}
}

// FromEnv returns c with BOMFOLD_LOG_LEVEL and BOMFOLD_LOG_FORMAT applied.
func (c Config) FromEnv() Config {
	if level := os.Getenv(EnvLevel); level != "" {
		c.Level = level
	}
	if format := os.Getenv(EnvFormat); format != "" {
		c.Format = format
	}
	return c
}

// New creates a logger. An unparsable level falls back to info.
func New(config Config) (*zap.Logger, error) {
	var zapConfig zap.Config

	if config.Development {
		zapConfig = zap.NewDevelopmentConfig()
	} else {
		zapConfig = zap.NewProductionConfig()
	}

	level, err := zap.ParseAtomicLevel(config.Level)
	if err != nil {
		level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	zapConfig.Level = level

	if config.Format == "console" {
		zapConfig.Encoding = "console"
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapConfig.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	} else {
		zapConfig.Encoding = "json"
	}

	if config.OutputPath != "" {
		zapConfig.OutputPaths = []string{config.OutputPath}
	}

	return zapConfig.Build()
}

// Must is New for callers that cannot continue without a logger; it falls
// back to a no-op logger instead of failing.
func Must(config Config) *zap.Logger {
	logger, err := New(config)
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
