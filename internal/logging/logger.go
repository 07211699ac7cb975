// Package logging provides a logging abstraction layer that decouples the application
// from specific logging frameworks. This allows for easier testing and flexibility
// in choosing logging implementations.
package logging

import "io"

// Logger defines the interface for structured logging throughout the application.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// WithError returns a new logger with an error field attached
	WithError(err error) Logger
	// WithField returns a new logger with a single field attached
	WithField(key string, value interface{}) Logger
	// WithFields returns a new logger with multiple fields attached
	WithFields(fields ...Field) Logger
}

// OutputRedirector is implemented by loggers whose destination can be
// swapped at runtime.
type OutputRedirector interface {
	SetOutput(w io.Writer) io.Writer
}

// Field represents a key-value pair for structured logging.
type Field struct {
	Key   string
	Value interface{}
}

// F is shorthand for building a Field inline.
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}
