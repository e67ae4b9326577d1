package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

// Logger is the logging interface components depend on.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
	// WithContext binds ctx to later records; request and fork ids stored
	// in ctx with WithRequestID and WithForkID are written on every line.
	WithContext(ctx context.Context) Logger
}

// Config holds logger configuration.
type Config struct {
	Level     string    // debug, info, warn, error
	Format    string    // json (default) or text
	Output    io.Writer // defaults to os.Stderr
	AddSource bool
}

// DefaultConfig returns JSON output at info level on stderr.
func DefaultConfig() Config {
	return Config{Level: "info", Format: "json", Output: os.Stderr}
}

// level is shared by every logger so the config watcher can change it live.
var level = new(slog.LevelVar)

type ctxLogger struct {
	sl  *slog.Logger
	ctx context.Context
}

// New builds a logger and sets the process-wide level from cfg.
func New(cfg Config) (Logger, error) {
	level.Set(parseLevel(cfg.Level))

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.AddSource,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			return redactSensitive(a)
		},
	}

	var base slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "text", "console":
		base = slog.NewTextHandler(out, opts)
	default:
		base = slog.NewJSONHandler(out, opts)
	}

	return &ctxLogger{sl: slog.New(contextHandler{base}), ctx: context.Background()}, nil
}

// contextHandler appends the request and fork ids found in the record's
// context.
type contextHandler struct {
	slog.Handler
}

func (h contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if id := RequestIDFromContext(ctx); id != "" {
		r.AddAttrs(slog.String("request_id", id))
	}
	if id := ForkIDFromContext(ctx); id != "" {
		r.AddAttrs(slog.String("fork_id", id))
	}
	return h.Handler.Handle(ctx, r)
}

func (h contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return contextHandler{h.Handler.WithAttrs(attrs)}
}

func (h contextHandler) WithGroup(name string) slog.Handler {
	return contextHandler{h.Handler.WithGroup(name)}
}

func (l *ctxLogger) Debug(msg string, args ...any) { l.sl.DebugContext(l.ctx, msg, args...) }
func (l *ctxLogger) Info(msg string, args ...any)  { l.sl.InfoContext(l.ctx, msg, args...) }
func (l *ctxLogger) Warn(msg string, args ...any)  { l.sl.WarnContext(l.ctx, msg, args...) }
func (l *ctxLogger) Error(msg string, args ...any) { l.sl.ErrorContext(l.ctx, msg, args...) }

func (l *ctxLogger) With(args ...any) Logger {
	return &ctxLogger{sl: l.sl.With(args...), ctx: l.ctx}
}

func (l *ctxLogger) WithContext(ctx context.Context) Logger {
	if ctx == nil {
		ctx = context.Background()
	}
	return &ctxLogger{sl: l.sl, ctx: ctx}
}

// SetLevel changes the level of every logger built by New.
func SetLevel(s string) {
	level.Set(parseLevel(s))
}

// GetLevel returns the current level name in lower case.
func GetLevel() string {
	return strings.ToLower(level.Level().String())
}

// parseLevel maps a level name to slog; unknown names fall back to info.
func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var defaultLogger atomic.Pointer[ctxLogger]

func init() {
	l, _ := New(DefaultConfig())
	defaultLogger.Store(l.(*ctxLogger))
}

// SetDefault replaces the logger returned by Default.
func SetDefault(l Logger) {
	if cl, ok := l.(*ctxLogger); ok {
		defaultLogger.Store(cl)
	}
}

// Default returns the process-wide logger, used by components built
// without an explicit one.
func Default() Logger {
	return defaultLogger.Load()
}
