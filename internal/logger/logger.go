// Package logger builds the zap loggers used by the mathtools host and client.
package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// New creates a logger writing to stderr.
// Stdout is reserved for the interactive prompt, so logs never go there.
// level is any zap level name ("debug", "info", ...); empty means info.
func New(level, format string) (*zap.Logger, error) {
	lvl := zapcore.InfoLevel
	if strings.TrimSpace(level) != "" {
		parsed, err := zapcore.ParseLevel(strings.ToLower(level))
		if err != nil {
			return nil, fmt.Errorf("invalid log level '%s': %w", level, err)
		}
		lvl = parsed
	}

	var conf zap.Config
	switch strings.ToLower(format) {
	case "", FormatConsole:
		conf = zap.NewDevelopmentConfig()
		conf.DisableStacktrace = true
	case FormatJSON:
		conf = zap.NewProductionConfig()
	default:
		return nil, fmt.Errorf("invalid log format '%s', valid values are '%s' and '%s'", format, FormatConsole, FormatJSON)
	}
	conf.Level = zap.NewAtomicLevelAt(lvl)
	conf.OutputPaths = []string{"stderr"}
	conf.ErrorOutputPaths = []string{"stderr"}

	l, err := conf.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return l, nil
}
