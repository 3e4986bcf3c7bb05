package telemetry

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Log output formats.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// ValidateLogging checks that level and format are accepted by SetupLogging.
func ValidateLogging(level, format string) error {
	_, err := parseLogging(level, format)
	return err
}

func parseLogging(level, format string) (zerolog.Level, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return lvl, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	switch format {
	case FormatJSON, FormatConsole, "":
	default:
		return lvl, fmt.Errorf("invalid log format %q (expected %s or %s)", format, FormatJSON, FormatConsole)
	}
	return lvl, nil
}

// SetupLogging configures the global zerolog logger to write to w at the
// given level and format.
func SetupLogging(w io.Writer, level, format string) error {
	lvl, err := parseLogging(level, format)
	if err != nil {
		return err
	}
	if format == FormatConsole {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	zerolog.SetGlobalLevel(lvl)
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
	return nil
}
