// Package logging provides the structured, component-tagged zerolog setup
// shared by every part of the mirror core.
package logging

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu      sync.Mutex
	base    zerolog.Logger
	started bool
)

// Init configures the process-wide base logger. Calling it more than once
// replaces the writer (used when the daemon switches from console output to
// its log file after the vault directories are resolved). Safe to call from
// multiple goroutines; components that already hold a logger from
// WithComponent keep writing to whatever writer was active when they were
// created — callers that need log-file output must call Init before
// constructing their component loggers.
func Init(w io.Writer, level zerolog.Level) {
	mu.Lock()
	defer mu.Unlock()

	zerolog.TimeFieldFormat = time.RFC3339
	base = zerolog.New(w).Level(level).With().Timestamp().Logger()
	started = true
}

// InitConsole configures console-friendly output for interactive runs.
func InitConsole(level zerolog.Level) {
	Init(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}, level)
}

// InitFile configures line-buffered output to a vault log file, one JSON
// object per line with an RFC 3339 UTC timestamp, flushed after every write
// since os.File.Write already performs an unbuffered syscall per call.
func InitFile(f *os.File, level zerolog.Level) {
	zerolog.TimestampFunc = func() time.Time { return time.Now().UTC() }
	Init(f, level)
}

// WithComponent returns a logger tagged with "component" for the named
// subsystem (e.g. "mailsync", "daemon", "store"). Every package in this
// module obtains its logger this way rather than holding a bare
// zerolog.Logger, so every log line can be filtered or routed by component.
func WithComponent(name string) zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()

	if !started {
		zerolog.TimeFieldFormat = time.RFC3339
		base = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).
			Level(zerolog.InfoLevel).With().Timestamp().Logger()
		started = true
	}

	return base.With().Str("component", name).Logger()
}
