// Package logger owns the process-wide zerolog logger.
//
// Call Init once from main; packages then derive scoped loggers with
// Component instead of building their own.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Options controls how Init builds the logger.
type Options struct {
	// Level is a zerolog level name; "warning" is accepted for "warn".
	// Empty or unknown values fall back to info.
	Level string
	// Pretty switches to zerolog's console writer for local development.
	Pretty bool
	// Output defaults to os.Stdout.
	Output io.Writer
	// Service, when set, is stamped on every entry as "service".
	Service string
}

var (
	mu   sync.RWMutex
	once sync.Once
	root *zerolog.Logger
)

// Init builds the process logger from opts. Only the first call builds;
// later calls return the logger already in place.
func Init(opts Options) zerolog.Logger {
	once.Do(func() {
		l := build(opts)
		mu.Lock()
		root = &l
		mu.Unlock()
	})
	return Get()
}

func build(opts Options) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	w := opts.Output
	if w == nil {
		w = os.Stdout
	}
	if opts.Pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}

	lvl := parseLevel(opts.Level)
	zerolog.SetGlobalLevel(lvl)

	fields := zerolog.New(w).Level(lvl).With().Timestamp().Caller()
	if opts.Service != "" {
		fields = fields.Str("service", opts.Service)
	}
	return fields.Logger()
}

// Get returns the process logger. It panics when Init has not run.
func Get() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if root == nil {
		panic("logger: Get() called before Init()")
	}
	return *root
}

// Component returns the process logger with a "component" field.
func Component(name string) zerolog.Logger {
	return Get().With().Str("component", name).Logger()
}

// Reset clears the process logger so tests can call Init again.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	once = sync.Once{}
	root = nil
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
