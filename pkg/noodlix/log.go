package noodlix

import (
	"io"
	"os"
	"strings"
	"time"

	errs "github.com/jmgilman/go/errors"
	"github.com/rs/zerolog"
)

// NewLogger creates a console logger at level writing to w
func NewLogger(w io.Writer, level zerolog.Level) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
		NoColor:    true,
	}
	return zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Str("lib", "noodlix").
		Logger()
}

// NewTestLogger creates a logger for tests; verbose 0 is warn, 1 info, 2
// debug and anything higher trace.
func NewTestLogger(w io.Writer, verbose int) zerolog.Logger {
	var level zerolog.Level
	switch verbose {
	case 0:
		level = zerolog.WarnLevel
	case 1:
		level = zerolog.InfoLevel
	case 2:
		level = zerolog.DebugLevel
	default:
		level = zerolog.TraceLevel
	}
	return NewLogger(w, level)
}

// LogLevelFromString parses a level name such as "debug" or "WARN"
func LogLevelFromString(levelStr string) (zerolog.Level, error) {
	return zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(levelStr)))
}

// ParseLogger builds a console logger from a level name, as found in
// NOODLIX_LOG_LEVEL or --log-level
func ParseLogger(w io.Writer, levelStr string) (zerolog.Logger, error) {
	level, err := LogLevelFromString(levelStr)
	if err != nil {
		return zerolog.Nop(), errs.Wrapf(err, errs.CodeInvalidConfig, "invalid log level %q", levelStr)
	}
	return NewLogger(w, level), nil
}

// DefaultLogger logs warnings and above to stderr
func DefaultLogger() zerolog.Logger {
	return NewLogger(os.Stderr, zerolog.WarnLevel)
}
