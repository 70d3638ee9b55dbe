// Package logger owns the process-wide slog logger.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/config"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

type Config struct {
	Level      string
	Format     Format
	Component  string
	WithSource bool

	// Output defaults to os.Stdout.
	Output io.Writer
	// Extra receives every record in addition to Output, e.g. an OTLP bridge.
	Extra slog.Handler
}

var (
	initMu  sync.Mutex
	current atomic.Pointer[slog.Logger]
	active  = Config{Level: "info", Format: FormatText}
)

// InitFromConfig builds the global logger from the LOG_* settings.
// extra may be nil.
func InitFromConfig(c *config.Config, extra slog.Handler) {
	next := Config{Level: active.Level, Format: active.Format, Extra: extra}
	if c != nil {
		next = Config{
			Level:      c.Log.Level,
			Format:     Format(strings.ToLower(c.Log.Format)),
			Component:  c.Log.Component,
			WithSource: c.Log.Source,
			Extra:      extra,
		}
	}
	Init(&next)
}

// Init replaces the global logger and slog's default. A nil c reuses the
// previous settings.
func Init(c *Config) {
	initMu.Lock()
	defer initMu.Unlock()

	if c != nil {
		active = *c
	}

	var h slog.Handler = newHandler(active)
	if active.Extra != nil {
		h = fanout{h, active.Extra}
	}

	l := slog.New(h)
	if active.Component != "" {
		l = l.With("component", active.Component)
	}
	current.Store(l)
	slog.SetDefault(l)
}

// L returns the global logger, initializing defaults on first use.
func L() *slog.Logger {
	if l := current.Load(); l != nil {
		return l
	}
	Init(nil)
	return current.Load()
}

func With(args ...any) *slog.Logger { return L().With(args...) }

func Debug(msg string, args ...any) { L().Debug(msg, args...) }
func Info(msg string, args ...any)  { L().Info(msg, args...) }
func Warn(msg string, args ...any)  { L().Warn(msg, args...) }
func Error(msg string, args ...any) { L().Error(msg, args...) }

func newHandler(c Config) slog.Handler {
	out := c.Output
	if out == nil {
		out = os.Stdout
	}

	opts := &slog.HandlerOptions{Level: parseLevel(c.Level), AddSource: c.WithSource}
	if c.Format == FormatJSON {
		return slog.NewJSONHandler(out, opts)
	}

	// text logs are read by humans; drop the monotonic noise from timestamps
	opts.ReplaceAttr = func(groups []string, a slog.Attr) slog.Attr {
		if a.Key == slog.TimeKey && len(groups) == 0 {
			return slog.String(slog.TimeKey, a.Value.Time().Format(time.DateTime))
		}
		return a
	}
	return slog.NewTextHandler(out, opts)
}

func parseLevel(s string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(strings.ReplaceAll(strings.ToLower(s), "warning", "warn")))); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
