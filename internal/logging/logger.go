// internal/logging/logger.go

// Package logging configures the process-wide zerolog logger and exposes it to
// the rest of the service as a *slog.Logger.
//
// Components receive a *slog.Logger and log with the slog API:
//
//	logger.InfoContext(ctx, "Catalog lookup done", slog.Int("filmID", id))
//
// Records are written by zerolog, as JSON in production and through the
// console writer in development. The request id stored in the context by the
// HTTP middleware is attached to every record logged with a *Context method.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config holds logging configuration.
type Config struct {
	// Level is the minimum level: trace, debug, info, warn, error.
	Level string
	// Format is json or console.
	Format string
	// Caller adds file:line to each record.
	Caller bool
	// Output defaults to os.Stdout.
	Output io.Writer
}

// ForEnvironment returns the defaults for an environment name. Development
// gets readable console output at debug level; anything else gets JSON at info.
func ForEnvironment(env string) Config {
	if IsDevelopment(env) {
		return Config{Level: "debug", Format: "console", Caller: true}
	}
	return Config{Level: "info", Format: "json"}
}

// IsDevelopment reports whether env names a development environment.
func IsDevelopment(env string) bool {
	switch strings.ToLower(env) {
	case "", "development", "dev", "local":
		return true
	}
	return false
}

var (
	log zerolog.Logger
	mu  sync.RWMutex
)

func init() {
	log = New(Config{Level: "info", Format: "json"})
}

// Init replaces the global logger. Call it once from main before building components.
func Init(cfg Config) {
	l := New(cfg)
	mu.Lock()
	defer mu.Unlock()
	log = l
}

// New builds a zerolog logger from cfg without touching the global one.
func New(cfg Config) zerolog.Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}
	zerolog.TimeFieldFormat = time.RFC3339Nano

	var out io.Writer = cfg.Output
	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{Out: cfg.Output, TimeFormat: "15:04:05.000"}
	}

	ctx := zerolog.New(out).Level(parseLevel(cfg.Level)).With().Timestamp()
	if cfg.Caller {
		ctx = ctx.Caller()
	}
	return ctx.Logger()
}

// Logger returns the global zerolog logger.
func Logger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

// NewSlogLogger returns a *slog.Logger writing through the global zerolog logger.
func NewSlogLogger() *slog.Logger {
	return slog.New(NewSlogHandler(Logger()))
}

// Discard returns a logger that drops everything. Meant for tests.
func Discard() *slog.Logger {
	return slog.New(NewSlogHandler(zerolog.Nop()))
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}
