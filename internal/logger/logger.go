// Package logger builds the zerolog loggers used by the binaries.
//
// Both binaries log to stderr: the MCP server because stdout carries the
// protocol, the CLI so that logs never mix with piped output.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// New returns a JSON logger writing to w at the given level.
func New(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// NewConsole returns a human-readable logger writing to w.
func NewConsole(w io.Writer, level zerolog.Level) zerolog.Logger {
	return New(zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}, level)
}

// LevelFromEnv reads a level name ("debug", "info", "warn", ...) from the
// environment variable name. Unset or unparsable values give fallback.
func LevelFromEnv(name string, fallback zerolog.Level) zerolog.Level {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return fallback
	}
	level, err := zerolog.ParseLevel(strings.ToLower(v))
	if err != nil {
		return fallback
	}
	return level
}
