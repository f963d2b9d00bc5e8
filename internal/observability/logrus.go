package observability

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// LogrusLogger adapts a logrus logger to the Logger interface.
type LogrusLogger struct {
	entry *logrus.Entry
}

// NewLogrusLogger builds a logger writing to out (stderr when nil).
// format is "json" or "text"; unknown levels fall back to info.
func NewLogrusLogger(out io.Writer, level, format string) *LogrusLogger {
	if out == nil {
		out = os.Stderr
	}
	logger := logrus.New()
	logger.SetOutput(out)
	if lvl, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(level))); err == nil {
		logger.SetLevel(lvl)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "text":
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339Nano,
		})
	default:
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	}
	return &LogrusLogger{entry: logrus.NewEntry(logger)}
}

// WithComponent returns a child logger tagging every entry with component.
func (l *LogrusLogger) WithComponent(component string) *LogrusLogger {
	return &LogrusLogger{entry: l.entry.WithField("component", component)}
}

func (l *LogrusLogger) Debug(msg string, fields ...Field) {
	l.entry.WithFields(toLogrusFields(fields)).Debug(msg)
}

func (l *LogrusLogger) Info(msg string, fields ...Field) {
	l.entry.WithFields(toLogrusFields(fields)).Info(msg)
}

func (l *LogrusLogger) Warn(msg string, fields ...Field) {
	l.entry.WithFields(toLogrusFields(fields)).Warn(msg)
}

func (l *LogrusLogger) Error(msg string, fields ...Field) {
	l.entry.WithFields(toLogrusFields(fields)).Error(msg)
}

func toLogrusFields(fields []Field) logrus.Fields {
	out := make(logrus.Fields, len(fields))
	for _, f := range fields {
		if f.Key == "" {
			continue
		}
		if err, ok := f.Value.(error); ok {
			out[f.Key] = err.Error()
			continue
		}
		out[f.Key] = f.Value
	}
	return out
}
