// Package logger holds the process-wide zerolog logger.
//
// Call Init once from main, then use Get or Component anywhere else. Every
// entry carries a timestamp, the caller and, when configured, the service name.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ServiceName tags entries written by the gameshelf binary.
const ServiceName = "gameshelf"

// Options controls how Init builds the logger.
type Options struct {
	// Level is one of trace, debug, info, warn, error. Anything else means info.
	Level string
	// Pretty switches from JSON lines to zerolog's console writer.
	Pretty bool
	// Output defaults to os.Stdout.
	Output io.Writer
	// Service is added as the "service" field when set.
	Service string
}

var (
	mu      sync.Mutex
	current *zerolog.Logger
)

// Init builds the process logger from opts. Later calls return the logger
// built by the first one until Reset is called.
func Init(opts Options) zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()

	if current == nil {
		l := build(opts)
		current = &l
	}
	return *current
}

func build(opts Options) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	if opts.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	lvl := parseLevel(opts.Level)
	zerolog.SetGlobalLevel(lvl)

	ctx := zerolog.New(out).Level(lvl).With().Timestamp().Caller()
	if opts.Service != "" {
		ctx = ctx.Str("service", opts.Service)
	}
	return ctx.Logger()
}

// Get returns the process logger. It panics when Init has not run.
func Get() zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()

	if current == nil {
		panic("logger: Get() called before Init()")
	}
	return *current
}

// Component returns the process logger with a "component" field.
func Component(name string) zerolog.Logger {
	return Get().With().Str("component", name).Logger()
}

// ForEnv returns the options for a deployment environment: console output in
// development, JSON lines elsewhere.
func ForEnv(env, level string) Options {
	return Options{
		Level:   level,
		Pretty:  strings.EqualFold(env, "development"),
		Service: ServiceName,
	}
}

// Reset drops the process logger so the next Init builds a new one. Tests only.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	current = nil
}

func parseLevel(s string) zerolog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}
