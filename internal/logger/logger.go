// Package logger builds the hclog loggers used across codesentry.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// EnvLevel is consulted when no level is configured.
const EnvLevel = "CODESENTRY_LOG_LEVEL"

// New returns a logger named name writing to w (stderr when nil). An empty
// level falls back to $CODESENTRY_LOG_LEVEL, then to info.
func New(level, name string, w io.Writer) hclog.Logger {
	if level == "" {
		level = os.Getenv(EnvLevel)
	}
	if w == nil {
		w = os.Stderr
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:        name,
		DisableTime: true,
		Output:      w,
		Level:       ParseLevel(level),
	})
}

// ParseLevel maps a level name to an hclog level. Unknown names map to info.
func ParseLevel(level string) hclog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "TRACE":
		return hclog.Trace
	case "DEBUG":
		return hclog.Debug
	case "INFO":
		return hclog.Info
	case "WARN", "WARNING":
		return hclog.Warn
	case "ERROR":
		return hclog.Error
	default:
		return hclog.Info
	}
}
