// Package logger provides slog loggers with colored terminal output.
//
// Errors are rendered in red, warnings in yellow and database writes in green so that the
// load step stands out in a pipeline run.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
)

// Messages containing one of these fragments are treated as database writes.
var persistKeywords = []string{"persist", "loading graph", "merged", "loaded"}

// Options configures a logger.
type Options struct {
	Level slog.Level
	// Format is "text" (default) or "json".
	Format string
	// Color enables ANSI colors for the text format.
	Color bool
}

// NewDefaultLogger returns a colored text logger writing to stderr.
func NewDefaultLogger(level slog.Level) *slog.Logger {
	return NewLogger(os.Stderr, Options{Level: level, Format: "text", Color: true})
}

// NewLogger returns a logger writing to w.
func NewLogger(w io.Writer, opts Options) *slog.Logger {
	handlerOpts := &slog.HandlerOptions{Level: opts.Level}
	if strings.EqualFold(opts.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	}
	if !opts.Color {
		return slog.New(slog.NewTextHandler(w, handlerOpts))
	}
	return slog.New(NewColorHandler(w, handlerOpts))
}

// ParseLevel converts a level name (debug, info, warn, error) to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// ColorHandler is a slog.Handler that wraps each text line in an ANSI color.
type ColorHandler struct {
	mu    *sync.Mutex
	w     io.Writer
	attrs []slog.Attr
	group string
	opts  *slog.HandlerOptions
}

// NewColorHandler creates a ColorHandler.
func NewColorHandler(w io.Writer, opts *slog.HandlerOptions) *ColorHandler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	return &ColorHandler{mu: &sync.Mutex{}, w: w, opts: opts}
}

// Enabled implements slog.Handler
func (h *ColorHandler) Enabled(_ context.Context, level slog.Level) bool {
	min := slog.LevelInfo
	if h.opts.Level != nil {
		min = h.opts.Level.Level()
	}
	return level >= min
}

// Handle implements slog.Handler
func (h *ColorHandler) Handle(_ context.Context, r slog.Record) error {
	var sb strings.Builder
	sb.WriteString(r.Time.Format("15:04:05.000"))
	sb.WriteByte(' ')
	sb.WriteString(fmt.Sprintf("%-5s", r.Level.String()))
	sb.WriteByte(' ')
	sb.WriteString(r.Message)

	writeAttr := func(a slog.Attr) {
		if a.Equal(slog.Attr{}) {
			return
		}
		key := a.Key
		if h.group != "" {
			key = h.group + "." + key
		}
		sb.WriteString(fmt.Sprintf(" %s=%v", key, a.Value.Resolve().Any()))
	}
	for _, a := range h.attrs {
		writeAttr(a)
	}
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(a)
		return true
	})

	line := sb.String()
	if color := colorFor(r.Level, r.Message); color != "" {
		line = color + line + colorReset
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, line+"\n")
	return err
}

// WithAttrs implements slog.Handler
func (h *ColorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &clone
}

// WithGroup implements slog.Handler
func (h *ColorHandler) WithGroup(name string) slog.Handler {
	clone := *h
	if clone.group != "" {
		clone.group = clone.group + "." + name
	} else {
		clone.group = name
	}
	return &clone
}

func colorFor(level slog.Level, msg string) string {
	switch {
	case level >= slog.LevelError:
		return colorRed
	case level >= slog.LevelWarn:
		return colorYellow
	}
	lower := strings.ToLower(msg)
	for _, kw := range persistKeywords {
		if strings.Contains(lower, kw) {
			return colorGreen
		}
	}
	return ""
}
