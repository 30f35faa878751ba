// Package logging builds the zerolog logger used by the photomap commands.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// Output formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Options configures New.
type Options struct {
	// Level is a zerolog level name. If empty, info is used.
	Level string

	// Format is FormatConsole or FormatJSON. If empty, FormatConsole.
	Format string

	// Out receives log lines. If nil, os.Stderr is used.
	Out io.Writer

	// RunID tags every line. If empty, a random UUID is generated.
	RunID string
}

// ParseLevel accepts zerolog level names, case-insensitively.
func ParseLevel(s string) (zerolog.Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(s)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("unknown log level %q", s)
	}
	return level, nil
}

// ValidFormat reports whether s names a supported output format.
func ValidFormat(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", FormatConsole, FormatJSON:
		return true
	}
	return false
}

// New returns a logger tagged with a run id.
func New(opts Options) (zerolog.Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return zerolog.Nop(), err
	}
	if !ValidFormat(opts.Format) {
		return zerolog.Nop(), fmt.Errorf("unknown log format %q", opts.Format)
	}

	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	if strings.ToLower(strings.TrimSpace(opts.Format)) != FormatJSON {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339, NoColor: !isTerminal(out)}
	}

	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	return zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("run_id", runID).
		Logger(), nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
