// Package logging builds the structured loggers used by the csvmap service
// and command line.
package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Handler formats
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Options selects the level and output format of a logger
type Options struct {
	Level  string
	Format string
}

// attribute keys whose values are never written
var redactedKeys = map[string]bool{
	"api_key":       true,
	"x-api-key":     true,
	"authorization": true,
	"password":      true,
	"secret":        true,
	"token":         true,
}

// ParseLevel resolves a level name. An empty name is info.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
}

// New creates a logger writing to w
func New(w io.Writer, opts Options) (*slog.Logger, error) {
	if w == nil {
		return nil, errors.New("output writer cannot be nil")
	}

	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	handlerOpts := &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: redact,
	}

	var handler slog.Handler
	switch strings.ToLower(opts.Format) {
	case FormatText, "":
		handler = slog.NewTextHandler(w, handlerOpts)
	case FormatJSON:
		handler = slog.NewJSONHandler(w, handlerOpts)
	default:
		return nil, fmt.Errorf("unknown log format %q", opts.Format)
	}

	return slog.New(handler), nil
}

// Discard returns a logger that drops everything
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

func redact(_ []string, a slog.Attr) slog.Attr {
	if redactedKeys[strings.ToLower(a.Key)] {
		return slog.String(a.Key, "***REDACTED***")
	}
	return a
}
