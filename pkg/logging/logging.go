// Package logging builds the logrus logger shared by the CLI and server and
// adapts it to the scan diagnostics interface.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config selects level, format and destination.
type Config struct {
	Level  string    // debug, info, warn, error; empty means info
	Format string    // text or json; empty means text
	Output io.Writer // nil means stderr
}

// New creates a logger from cfg.
func New(cfg Config) (*logrus.Logger, error) {
	logger := logrus.New()

	level := logrus.InfoLevel
	if cfg.Level != "" {
		parsed, err := logrus.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		level = parsed
	}
	logger.SetLevel(level)

	switch strings.ToLower(cfg.Format) {
	case "", FormatText:
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "15:04:05",
		})
	case FormatJSON:
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("invalid log format %q (want text or json)", cfg.Format)
	}

	if cfg.Output != nil {
		logger.SetOutput(cfg.Output)
	} else {
		logger.SetOutput(os.Stderr)
	}
	return logger, nil
}

// ResolveLevel applies the -v and -q shortcuts on top of a configured level.
// Quiet wins over verbose.
func ResolveLevel(level string, verbose, quiet bool) string {
	switch {
	case quiet:
		return logrus.ErrorLevel.String()
	case verbose:
		return logrus.DebugLevel.String()
	}
	return level
}

// DebugLogger forwards printf-style messages at debug level.
type DebugLogger struct {
	Logger logrus.FieldLogger
}

func (d DebugLogger) Log(format string, args ...interface{}) {
	d.Logger.Debugf(format, args...)
}
