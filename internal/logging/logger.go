// Package logging builds the structured logger shared by the web server and the CLI,
// and provides error annotation helpers.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls logger construction.
type Options struct {
	Level  string // debug, info, warn, error (default info)
	Format string // text or json (default text)
	File   string // optional path of a rotated log file
}

// NewLogger builds a logrus logger writing to stderr and, when configured, to a rotated file.
func NewLogger(opts Options) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(opts.Level)))
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if strings.EqualFold(opts.Format, "json") {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
			FieldMap:        logrus.FieldMap{logrus.FieldKeyTime: "timestamp"},
		})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "02 Jan 06 15:04:05",
		})
	}

	writers := []io.Writer{os.Stderr}
	if opts.File != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   opts.File,
			LocalTime:  true,
			Compress:   true,
			MaxSize:    100, // megabytes
			MaxAge:     7,   // days
			MaxBackups: 3,
		})
	}
	logger.SetOutput(io.MultiWriter(writers...))

	return logger
}

// NewNopLogger returns a logger that discards everything. Used by tests and CLI paths
// that print their own output.
func NewNopLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// WithOperation enriches the logger with operation and request identifiers.
func WithOperation(logger logrus.FieldLogger, operation, requestID string) logrus.FieldLogger {
	fields := logrus.Fields{"operation": operation}
	if requestID != "" {
		fields["request_id"] = requestID
	}
	return logger.WithFields(fields)
}
