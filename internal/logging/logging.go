// Package logging installs the process-wide structured logger.
package logging

import (
	"io"
	"os"
	"strings"
	"testing"

	"github.com/phuslu/log"

	"github.com/gotrs-io/recruitment-e2e/internal/config"
)

// Setup replaces log.DefaultLogger according to cfg and writes to os.Stderr.
func Setup(cfg config.LoggingConfig) {
	log.DefaultLogger = New(cfg, os.Stderr)
}

// New builds a logger writing to w. Format "json" emits one JSON object per
// line; anything else gets the human-readable console layout.
func New(cfg config.LoggingConfig, w io.Writer) log.Logger {
	l := log.Logger{
		Level:      parseLevel(cfg.Level),
		TimeFormat: "15:04:05.000",
	}
	if strings.EqualFold(cfg.Format, "json") {
		l.TimeFormat = ""
		l.Writer = &log.IOWriter{Writer: w}
		return l
	}
	l.Writer = &log.ConsoleWriter{
		Writer:         w,
		ColorOutput:    w == os.Stderr || w == os.Stdout,
		QuoteString:    true,
		EndWithMessage: true,
	}
	return l
}

func parseLevel(s string) log.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return log.TraceLevel
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	}
	return log.InfoLevel
}

// ForTest routes the default logger into t.Log for the test's duration, so
// step logs interleave with test output and only show on failure or -v.
func ForTest(t testing.TB, cfg config.LoggingConfig) {
	t.Helper()
	prev := log.DefaultLogger
	cfg.Format = "console"
	log.DefaultLogger = New(cfg, testWriter{t})
	t.Cleanup(func() { log.DefaultLogger = prev })
}

type testWriter struct{ t testing.TB }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}
