// Package logging builds the zerolog loggers shared by the command and the
// MCP server. Output always goes to stderr so stdout stays free for the
// protocol stream in serve mode.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// EnvLevel overrides the configured log level when set.
const EnvLevel = "LETTER_DENOISE_LOG_LEVEL"

// ParseLevel maps a level name to a zerolog level. Unknown or empty names
// mean info.
func ParseLevel(name string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(name)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// ResolveLevel returns the environment level if set, otherwise configured.
func ResolveLevel(configured string) string {
	if env := os.Getenv(EnvLevel); env != "" {
		return env
	}
	return configured
}

// New returns a timestamped logger writing to w at the given level.
func New(w io.Writer, level string) zerolog.Logger {
	return zerolog.New(w).
		Level(ParseLevel(level)).
		With().
		Timestamp().
		Logger()
}

// NewConsole returns a human-readable logger on stderr.
func NewConsole(level string) zerolog.Logger {
	return New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}, level)
}

// Component tags every event of l with the subsystem name.
func Component(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}
