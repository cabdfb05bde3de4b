// Package logger holds the process-wide zerolog logger shared by the exam
// portal binaries.
//
// main calls Init once with values from the loaded configuration; request
// handlers and services receive child loggers from Component so every entry
// names the part of the portal that wrote it.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Options describes how the portal logger is built.
type Options struct {
	// Level is one of trace, debug, info, warn (or warning), error.
	// Anything else falls back to info.
	Level string
	// Pretty switches to coloured console output for local development.
	Pretty bool
	// Output defaults to os.Stdout.
	Output io.Writer
	// Service and Env are stamped on every entry when set.
	Service string
	Env     string
}

var (
	global   atomic.Pointer[zerolog.Logger]
	initOnce sync.Once
)

// New builds a logger from opts without touching the process-wide one.
func New(opts Options) zerolog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	if opts.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	fields := zerolog.New(out).Level(parseLevel(opts.Level)).With().Timestamp().Caller()
	if opts.Service != "" {
		fields = fields.Str("service", opts.Service)
	}
	if opts.Env != "" {
		fields = fields.Str("env", opts.Env)
	}
	return fields.Logger()
}

// Init sets the process-wide logger on its first call and returns it. Later
// calls return the logger from the first call and ignore opts.
func Init(opts Options) zerolog.Logger {
	initOnce.Do(func() {
		zerolog.TimeFieldFormat = time.RFC3339Nano
		l := New(opts)
		zerolog.SetGlobalLevel(l.GetLevel())
		global.Store(&l)
	})
	return Get()
}

// Get returns the logger set by Init and panics when Init has not run.
func Get() zerolog.Logger {
	l := global.Load()
	if l == nil {
		panic("logger: Get() called before Init()")
	}
	return *l
}

// Component returns a child logger tagged with the emitting part of the
// portal, e.g. "session" or "audit".
func Component(name string) zerolog.Logger {
	return Get().With().Str("component", name).Logger()
}

// Reset forgets the process-wide logger. Tests only.
func Reset() {
	initOnce = sync.Once{}
	global.Store(nil)
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
}

func parseLevel(s string) zerolog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	switch lvl, err := zerolog.ParseLevel(s); {
	case err != nil, lvl < zerolog.TraceLevel, lvl > zerolog.ErrorLevel, s == "":
		return zerolog.InfoLevel
	default:
		return lvl
	}
}
