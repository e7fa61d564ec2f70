// Package logrus adapts a logrus entry to pagedrest.Logger.
package logrus

import (
	"github.com/fivetwenty-io/pagedrest/pkg/pagedrest"
	"github.com/sirupsen/logrus"
)

// LogrusLogger forwards pagedrest log calls to E.
type LogrusLogger struct{ E *logrus.Entry }

var _ pagedrest.Logger = LogrusLogger{}

// New wraps a logrus.Logger.
func New(l *logrus.Logger) LogrusLogger {
	return LogrusLogger{E: logrus.NewEntry(l)}
}

func (l LogrusLogger) Debug(msg string, f map[string]interface{}) {
	l.E.WithFields(logrus.Fields(f)).Debug(msg)
}
func (l LogrusLogger) Info(msg string, f map[string]interface{}) { l.E.WithFields(logrus.Fields(f)).Info(msg) }
func (l LogrusLogger) Warn(msg string, f map[string]interface{}) { l.E.WithFields(logrus.Fields(f)).Warn(msg) }
func (l LogrusLogger) Error(msg string, f map[string]interface{}) {
	l.E.WithFields(logrus.Fields(f)).Error(msg)
}
