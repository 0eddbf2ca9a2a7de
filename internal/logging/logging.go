// Package logging builds the zap logger shared by the CLI, TUI and MCP server.
package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a console logger writing to stderr. Stdout stays reserved for
// command output and the MCP protocol.
func New(debug bool) (*zap.Logger, error) {
	level := zap.InfoLevel
	if debug {
		level = zap.DebugLevel
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.Development = debug
	cfg.DisableStacktrace = !debug
	cfg.DisableCaller = !debug
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	log, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return log, nil
}

// Must is New for main packages; it falls back to a no-op logger and reports
// the failure on stderr.
func Must(debug bool) *zap.Logger {
	log, err := New(debug)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return zap.NewNop()
	}
	return log
}
