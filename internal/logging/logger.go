// Package logging provides the logging interface and default implementations
// for corestore.
//
// Design: four-level printf-style interface so users can wrap their own
// structured loggers (slog, zap) if needed. The library never logs through
// anything else.
//
// Component namespace prefixes are used for filtering:
//   - [journal]   — journal append/replay
//   - [txn]       — write transactions
//   - [migrate]   — schema migrations
//   - [store]     — open/close lifecycle
package logging

import (
	"context"
	"fmt"
	"log/slog"
)

// Logger is the minimal leveled logging interface corestore writes to.
type Logger interface {
	// Errorf logs an error-level message.
	Errorf(format string, args ...any)

	// Warnf logs a warning-level message.
	Warnf(format string, args ...any)

	// Infof logs an info-level message.
	Infof(format string, args ...any)

	// Debugf logs a debug-level message.
	Debugf(format string, args ...any)
}

// Slog adapts a *slog.Logger to the Logger interface.
func Slog(l *slog.Logger) Logger {
	return slogLogger{l: l}
}

type slogLogger struct {
	l *slog.Logger
}

func (s slogLogger) Errorf(format string, args ...any) {
	s.l.LogAttrs(context.Background(), slog.LevelError, fmt.Sprintf(format, args...))
}

func (s slogLogger) Warnf(format string, args ...any) {
	s.l.LogAttrs(context.Background(), slog.LevelWarn, fmt.Sprintf(format, args...))
}

func (s slogLogger) Infof(format string, args ...any) {
	s.l.LogAttrs(context.Background(), slog.LevelInfo, fmt.Sprintf(format, args...))
}

func (s slogLogger) Debugf(format string, args ...any) {
	s.l.LogAttrs(context.Background(), slog.LevelDebug, fmt.Sprintf(format, args...))
}
