// Package logger provides a configured zerolog logger.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog"
	zpkgerrors "github.com/rs/zerolog/pkgerrors"
	"golang.org/x/term"
)

// Output formats.
const (
	FormatAuto    = "auto"
	FormatJSON    = "json"
	FormatConsole = "console"
)

// Options configures New.
type Options struct {
	Level  string    // trace, debug, info, warn, error; empty = info
	Format string    // auto, json, console; empty = auto
	Out    io.Writer // nil = os.Stderr
}

// New returns a logger tagged with serviceName. In auto format it writes
// human-readable lines when Out is a terminal and JSON otherwise.
// Call sites should use .Stack() on error events to include stacks.
func New(serviceName string, opts Options) (zerolog.Logger, error) {
	zerolog.ErrorStackMarshaler = func(err error) interface{} {
		type stackTracer interface{ StackTrace() pkgerrors.StackTrace }
		if _, ok := err.(stackTracer); !ok {
			err = pkgerrors.WithStack(err)
		}
		return zpkgerrors.MarshalStack(err)
	}

	level, err := ParseLevel(opts.Level)
	if err != nil {
		return zerolog.Nop(), err
	}

	out := opts.Out
	if out == nil {
		out = os.Stderr
	}

	var w io.Writer = out
	switch strings.ToLower(opts.Format) {
	case "", FormatAuto:
		if isTerminal(out) {
			w = consoleWriter(out)
		}
	case FormatConsole:
		w = consoleWriter(out)
	case FormatJSON:
	default:
		return zerolog.Nop(), fmt.Errorf("logger: unknown format %q (valid: auto, json, console)", opts.Format)
	}

	return zerolog.New(w).Level(level).With().
		Str("service", serviceName).
		Timestamp().
		Logger(), nil
}

// ParseLevel converts a level name into a zerolog level; empty means info.
func ParseLevel(s string) (zerolog.Level, error) {
	if s == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(strings.ToLower(s))
	if err != nil {
		return zerolog.InfoLevel, fmt.Errorf("logger: %w", err)
	}
	return level, nil
}

func consoleWriter(out io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: "15:04:05",
		NoColor:    !isTerminal(out),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
