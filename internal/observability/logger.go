// Package observability carries the structured logger shared by the exchange
// clients and the CLI.
package observability

import "strings"

// Logger is the logging surface the client depends on. Implementations must
// be safe for concurrent use.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

// Field represents a key/value pair for structured logging.
type Field struct {
	Key   string
	Value any
}

var defaultLogger Logger = noopLogger{}

// SetLogger replaces the process-wide logger; nil restores the noop logger.
func SetLogger(logger Logger) {
	if logger == nil {
		defaultLogger = noopLogger{}
		return
	}
	defaultLogger = logger
}

// Log returns the process-wide logger.
func Log() Logger {
	return defaultLogger
}

// Redact masks a credential for logging, keeping the first four characters
// of values long enough to stay unguessable.
func Redact(secret string) string {
	secret = strings.TrimSpace(secret)
	switch {
	case secret == "":
		return ""
	case len(secret) <= 8:
		return "****"
	default:
		return secret[:4] + "****"
	}
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...Field) {}
func (noopLogger) Info(string, ...Field)  {}
func (noopLogger) Warn(string, ...Field)  {}
func (noopLogger) Error(string, ...Field) {}
