// Package logging builds the zerolog logger shared by the CLI and the web
// server.
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Output formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

const permission = 0o664

// ErrFormatUnknown is returned for a format other than console or json.
var ErrFormatUnknown = errors.New("unknown log format")

// New returns a logger writing to w at the named level ("debug", "info",
// "warn", "error"; empty means info). Console output is human readable;
// json output is one object per line.
func New(w io.Writer, level, format string) (zerolog.Logger, error) {
	lvl := zerolog.InfoLevel
	if level != "" {
		var err error
		lvl, err = zerolog.ParseLevel(strings.ToLower(level))
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("parse log level %q: %w", level, err)
		}
	}

	switch strings.ToLower(format) {
	case FormatConsole, "":
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: !isTerminal(w)}
	case FormatJSON:
	default:
		return zerolog.Nop(), fmt.Errorf("%w: %q", ErrFormatUnknown, format)
	}

	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}

// OpenFile opens path for appending log lines. The caller closes the file.
func OpenFile(path string) (io.WriteCloser, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, permission)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
