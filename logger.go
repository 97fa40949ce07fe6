package sharetex

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// newNopLogger creates a logger that silently discards all output.
func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

// loggerSinks holds the drivers of live services so that SetLogger reaches
// them after construction.
var (
	loggerSinksMu sync.Mutex
	loggerSinks   = make(map[loggerSetter]struct{})
)

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for sharetex and the backend drivers it
// opens. By default, sharetex produces no log output.
//
// SetLogger is safe for concurrent use. Pass nil to restore the default
// silent behavior.
//
// Log levels used by sharetex:
//   - [slog.LevelDebug]: per-texture and per-lock diagnostics
//   - [slog.LevelInfo]: device and interop session lifecycle
//   - [slog.LevelWarn]: interop unavailable, best-effort release failures
//   - [slog.LevelError]: interop session failed to close
//
// Example:
//
//	sharetex.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)

	loggerSinksMu.Lock()
	defer loggerSinksMu.Unlock()
	for s := range loggerSinks {
		s.SetLogger(l)
	}
}

// Logger returns the current logger used by sharetex.
// Backend packages call this to share the same configuration.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// loggerSetter is implemented by drivers that accept a logger.
type loggerSetter interface {
	SetLogger(*slog.Logger)
}

// propagateLogger passes the current logger to d if it implements
// loggerSetter and keeps it subscribed until detachLogger is called.
func propagateLogger(d any) {
	ls, ok := d.(loggerSetter)
	if !ok {
		return
	}
	ls.SetLogger(Logger())

	loggerSinksMu.Lock()
	loggerSinks[ls] = struct{}{}
	loggerSinksMu.Unlock()
}

// detachLogger stops propagating logger changes to d.
func detachLogger(d any) {
	ls, ok := d.(loggerSetter)
	if !ok {
		return
	}
	loggerSinksMu.Lock()
	delete(loggerSinks, ls)
	loggerSinksMu.Unlock()
}
