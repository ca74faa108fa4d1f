// Package logger owns the process-wide zerolog logger.
//
// main calls Init once with values from config; packages that need a logger
// receive one through their constructor, usually Component("name").
//
// Entries are JSON unless Pretty is set. Callers must never pass passwords,
// password hashes, bearer tokens or the signing secret as fields.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Options controls logger behaviour at initialisation time.
type Options struct {
	// Level is one of trace, debug, info, warn, error. Unknown values mean info.
	Level string
	// Pretty switches to zerolog's console writer for local development.
	Pretty bool
	// Output defaults to os.Stdout.
	Output io.Writer
	// Service is attached to every entry when set.
	Service string
}

var (
	mu     sync.RWMutex
	root   zerolog.Logger
	ready  bool
	initMu sync.Once
)

// Init builds the root logger on first call and returns it. Later calls
// return the existing logger unchanged.
func Init(opts Options) zerolog.Logger {
	initMu.Do(func() {
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

		fields := zerolog.New(out).Level(lvl).With().Timestamp().Caller()
		if opts.Service != "" {
			fields = fields.Str("service", opts.Service)
		}

		mu.Lock()
		root = fields.Logger()
		ready = true
		mu.Unlock()
	})
	return Get()
}

// Get returns the root logger. It panics when Init has not run, which only
// happens through a wiring mistake in main or a test.
func Get() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if !ready {
		panic("logger: Get() called before Init()")
	}
	return root
}

// Component returns the root logger tagged with component=name.
func Component(name string) zerolog.Logger {
	return Get().With().Str("component", name).Logger()
}

// Reset forgets the root logger so the next Init rebuilds it. Tests only.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	initMu = sync.Once{}
	root = zerolog.Logger{}
	ready = false
}

// parseLevel accepts the usual level names case-insensitively, plus "warning".
// Anything else, including "disabled" and numeric levels, falls back to info.
func parseLevel(s string) zerolog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	switch s {
	case "trace", "debug", "info", "warn", "error":
		lvl, err := zerolog.ParseLevel(s)
		if err == nil {
			return lvl
		}
	}
	return zerolog.InfoLevel
}
