package driver

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// LogConfig holds logger configuration for the driver and CLI.
type LogConfig struct {
	Level  slog.Level
	Format string // "text" or "json"
	Output io.Writer
}

// DefaultLogConfig returns the default logger configuration.
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:  slog.LevelInfo,
		Format: "text",
		Output: os.Stderr,
	}
}

// NewLogger builds a slog.Logger from the configuration.
func NewLogger(cfg LogConfig) *slog.Logger {
	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: cfg.Level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(output, opts)
	} else {
		handler = slog.NewTextHandler(output, opts)
	}
	return slog.New(handler)
}

// discardHandler drops all records; used when a session has no logger.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }
