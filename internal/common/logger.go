package common

import (
	"fmt"
	"io"
	"os"

	"github.com/apex/log"
	clihander "github.com/apex/log/handlers/cli"
)

// Severity represents log message severity levels
type Severity int

const (
	SeverityDebug Severity = iota
	SeverityInfo
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "DEBUG"
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Logger interface defines the logging contract for the profiler
type Logger interface {
	// Log logs a message with the specified severity
	Log(severity Severity, msg string)

	// Logf logs a formatted message with the specified severity
	Logf(severity Severity, format string, args ...interface{})

	// Error logs an error
	Error(err error)

	// Debug logs a debug message
	Debug(msg string)

	// Info logs an info message
	Info(msg string)

	// Warning logs a warning message
	Warning(msg string)
}

// ApexLogger implements Logger on top of an apex/log logger with the cli handler.
type ApexLogger struct {
	l        *log.Logger
	minLevel Severity
}

// NewApexLogger creates a logger writing to stderr.
func NewApexLogger(minLevel Severity) *ApexLogger {
	return NewApexLoggerWithWriter(os.Stderr, minLevel)
}

// NewApexLoggerWithWriter creates a logger writing to w.
func NewApexLoggerWithWriter(w io.Writer, minLevel Severity) *ApexLogger {
	return &ApexLogger{
		l: &log.Logger{
			Handler: clihander.New(w),
			Level:   apexLevel(minLevel),
		},
		minLevel: minLevel,
	}
}

func apexLevel(s Severity) log.Level {
	switch s {
	case SeverityDebug:
		return log.DebugLevel
	case SeverityInfo:
		return log.InfoLevel
	case SeverityWarning:
		return log.WarnLevel
	default:
		return log.ErrorLevel
	}
}

// Log logs a message with the specified severity
func (l *ApexLogger) Log(severity Severity, msg string) {
	if severity < l.minLevel {
		return
	}

	switch severity {
	case SeverityDebug:
		l.l.Debug(msg)
	case SeverityInfo:
		l.l.Info(msg)
	case SeverityWarning:
		l.l.Warn(msg)
	case SeverityError:
		l.l.Error(msg)
	}
}

// Logf logs a formatted message with the specified severity
func (l *ApexLogger) Logf(severity Severity, format string, args ...interface{}) {
	l.Log(severity, fmt.Sprintf(format, args...))
}

// Error logs an error. Resource errors are demoted to warnings.
func (l *ApexLogger) Error(err error) {
	if err == nil {
		return
	}
	if IsResource(err) {
		l.Log(SeverityWarning, err.Error())
		return
	}
	l.Log(SeverityError, err.Error())
}

// Debug logs a debug message
func (l *ApexLogger) Debug(msg string) {
	l.Log(SeverityDebug, msg)
}

// Info logs an info message
func (l *ApexLogger) Info(msg string) {
	l.Log(SeverityInfo, msg)
}

// Warning logs a warning message
func (l *ApexLogger) Warning(msg string) {
	l.Log(SeverityWarning, msg)
}

// NoOpLogger is a logger that doesn't log anything
type NoOpLogger struct{}

// NewNoOpLogger creates a new no-op logger
func NewNoOpLogger() *NoOpLogger {
	return &NoOpLogger{}
}

func (l *NoOpLogger) Log(severity Severity, msg string)                         {}
func (l *NoOpLogger) Logf(severity Severity, format string, args ...interface{}) {}
func (l *NoOpLogger) Error(err error)                                           {}
func (l *NoOpLogger) Debug(msg string)                                          {}
func (l *NoOpLogger) Info(msg string)                                           {}
func (l *NoOpLogger) Warning(msg string)                                        {}
