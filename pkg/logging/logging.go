// Package logging defines the logging interface used across the service and
// its logrus-backed implementation.
package logging

// Logger is the logging interface handed to components, implementable by
// logrus-based loggers.
type Logger interface {
	// WithField creates a new logger with an additional field.
	WithField(key string, value interface{}) Logger
	// WithFields creates a new logger with additional fields.
	WithFields(fields map[string]interface{}) Logger
	// WithError creates a new logger with an error field.
	WithError(err error) Logger

	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Fatalf(format string, args ...interface{})

	Debug(args ...interface{})
	Info(args ...interface{})
	Warn(args ...interface{})
	Error(args ...interface{})
	Fatal(args ...interface{})

	Infoln(args ...interface{})
	Errorln(args ...interface{})
}
