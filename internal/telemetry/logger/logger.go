package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

// Logger is the logging surface used across gymdesk.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger

	// Slog returns the underlying *slog.Logger for libraries that take one.
	Slog() *slog.Logger
}

// Config holds logger configuration.
type Config struct {
	Level     string    // debug, info, warn or error; empty means info
	Format    string    // json (default) or text
	Output    io.Writer // nil means os.Stderr
	AddSource bool
}

// levels maps accepted level names to slog levels.
var levels = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// level is shared by every logger built by New.
var level = new(slog.LevelVar)

// New builds a logger whose output passes through the redaction hook.
func New(cfg Config) (Logger, error) {
	lvl := slog.LevelInfo
	if cfg.Level != "" {
		var ok bool
		if lvl, ok = levels[strings.ToLower(cfg.Level)]; !ok {
			return nil, fmt.Errorf("unknown log level %q", cfg.Level)
		}
	}
	level.Set(lvl)

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

	var h slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "text", "console":
		h = slog.NewTextHandler(out, opts)
	default:
		h = slog.NewJSONHandler(out, opts)
	}
	return &slogLogger{Logger: slog.New(h)}, nil
}

// slogLogger adapts *slog.Logger to Logger. The leveled methods are
// promoted from the embedded logger.
type slogLogger struct {
	*slog.Logger
}

func (l *slogLogger) With(args ...any) Logger {
	return &slogLogger{Logger: l.Logger.With(args...)}
}

func (l *slogLogger) Slog() *slog.Logger {
	return l.Logger
}

// SetLevel changes the level of every logger at runtime. Unknown names
// are ignored. The config watcher calls it when log.level changes.
func SetLevel(name string) {
	if lvl, ok := levels[strings.ToLower(name)]; ok {
		level.Set(lvl)
	}
}

// GetLevel returns the current level name.
func GetLevel() string {
	return strings.ToLower(level.Level().String())
}

// ValidLevel reports whether name is an accepted level.
func ValidLevel(name string) bool {
	_, ok := levels[strings.ToLower(name)]
	return ok
}

type holder struct{ Logger }

var std atomic.Pointer[holder]

func init() {
	l, _ := New(Config{})
	std.Store(&holder{l})
}

// SetDefault replaces the process logger and installs it as the slog
// default, so code logging through log/slog is redacted as well.
func SetDefault(l Logger) {
	std.Store(&holder{l})
	slog.SetDefault(l.Slog())
}

// Default returns the process logger.
func Default() Logger {
	return std.Load().Logger
}
