// Package logger provides structured logging configuration and setup for the application.
package logger

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// NewWithWriter builds the application logger on top of out. The logger is
// also installed as zerolog's default context logger.
func NewWithWriter(level string, out io.Writer) zerolog.Logger {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.TimeFieldFormat = time.RFC3339Nano

	logLevel, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		logLevel = zerolog.InfoLevel
		// Use a basic logger to print this warning, as the main one isn't configured yet.
		fmt.Fprintf(os.Stderr, "Invalid log level '%s', defaulting to 'info'\n", level)
	}

	goVersion, gitRevision := buildVersions()

	l := zerolog.New(
		zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}).
		Level(logLevel).
		With().
		Timestamp().
		Caller().
		Int("pid", os.Getpid()).
		Str("go_version", goVersion).
		Str("git_revision", gitRevision).
		Logger()

	zerolog.DefaultContextLogger = &l
	return l
}

func buildVersions() (goVersion, gitRevision string) {
	goVersion, gitRevision = "unknown", "unknown"
	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return goVersion, gitRevision
	}
	goVersion = buildInfo.GoVersion
	for _, v := range buildInfo.Settings {
		if v.Key == "vcs.revision" {
			gitRevision = v.Value
			break
		}
	}
	return goVersion, gitRevision
}
