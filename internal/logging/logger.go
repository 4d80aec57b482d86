// Package logging provides structured logging, built on the standard
// library's log/slog, following the stderr-plus-optional-file layered
// design in the teacher's pkg/logging/logger.go (trimmed here of its
// enterprise LogExporter extension point, which this system has no use
// for).
package logging

import (
	"context"
	"log/slog"
	"os"
)

// Level mirrors slog's severity ordering, kept as our own type so call
// sites don't need to import log/slog directly.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) toSlog() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Config configures a Logger. A zero-value Config logs Debug+ to stderr as
// text (LevelDebug is the zero Level).
type Config struct {
	Level   Level
	LogFile string // if set, also write JSON logs to this path (appended, created if absent)
	Service string
	JSON    bool
}

// Logger wraps slog.Logger with the file-plus-stderr fan-out this module
// needs; operators see text on stderr in the TUI's alt-screen-adjacent
// terminal, while the JSON file named in Config.LogFile gives a
// post-mortem trail for failed dispatches.
type Logger struct {
	slog *slog.Logger
	file *os.File
}

// New builds a Logger per config.
func New(config Config) *Logger {
	opts := &slog.HandlerOptions{Level: config.Level.toSlog()}

	var stderrHandler slog.Handler
	if config.JSON {
		stderrHandler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		stderrHandler = slog.NewTextHandler(os.Stderr, opts)
	}

	l := &Logger{}
	handlers := []slog.Handler{stderrHandler}

	if config.LogFile != "" {
		if f, err := os.OpenFile(config.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640); err == nil {
			l.file = f
			handlers = append(handlers, slog.NewJSONHandler(f, opts))
		}
	}

	var handler slog.Handler = handlers[0]
	if len(handlers) > 1 {
		handler = &multiHandler{handlers: handlers}
	}
	if config.Service != "" {
		handler = handler.WithAttrs([]slog.Attr{slog.String("service", config.Service)})
	}

	l.slog = slog.New(handler)
	return l
}

// Default returns an Info-level, stderr-only, text-formatted logger.
func Default() *Logger {
	return New(Config{Level: LevelInfo, Service: "panopticon"})
}

func (l *Logger) Debug(msg string, args ...any) { l.slog.Debug(msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.slog.Info(msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.slog.Warn(msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.slog.Error(msg, args...) }

// With returns a child logger carrying additional attributes on every call.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{slog: l.slog.With(args...), file: l.file}
}

// Close syncs and closes the log file, if one is open.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	_ = l.file.Sync()
	return l.file.Close()
}

// multiHandler fans a record out to every handler that accepts it
// (stderr text, file JSON), following the teacher's multiHandler.
type multiHandler struct {
	handlers []slog.Handler
}

func (h *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, r.Level) {
			if err := handler.Handle(ctx, r.Clone()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (h *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		out[i] = handler.WithAttrs(attrs)
	}
	return &multiHandler{handlers: out}
}

func (h *multiHandler) WithGroup(name string) slog.Handler {
	out := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		out[i] = handler.WithGroup(name)
	}
	return &multiHandler{handlers: out}
}
