package common

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/janisozaur/valgrind/internal/cg"
)

func TestSeverityString(t *testing.T) {
	tests := []struct {
		severity Severity
		expected string
	}{
		{SeverityDebug, "DEBUG"},
		{SeverityInfo, "INFO"},
		{SeverityWarning, "WARNING"},
		{SeverityError, "ERROR"},
		{Severity(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			got := tt.severity.String()
			if got != tt.expected {
				t.Errorf("Severity.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestNewApexLogger(t *testing.T) {
	logger := NewApexLogger(SeverityInfo)
	if logger == nil {
		t.Fatal("NewApexLogger() returned nil")
	}
	if logger.minLevel != SeverityInfo {
		t.Errorf("NewApexLogger() minLevel = %v, want %v", logger.minLevel, SeverityInfo)
	}
}

func TestApexLogger_Log(t *testing.T) {
	var out bytes.Buffer
	logger := NewApexLoggerWithWriter(&out, SeverityDebug)

	tests := []struct {
		name     string
		severity Severity
		message  string
	}{
		{"Debug", SeverityDebug, "debug message"},
		{"Info", SeverityInfo, "info message"},
		{"Warning", SeverityWarning, "warning message"},
		{"Error", SeverityError, "error message"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out.Reset()
			logger.Log(tt.severity, tt.message)
			if !strings.Contains(out.String(), tt.message) {
				t.Errorf("output %q does not contain %q", out.String(), tt.message)
			}
		})
	}
}

func TestApexLogger_MinLevel(t *testing.T) {
	var out bytes.Buffer
	logger := NewApexLoggerWithWriter(&out, SeverityWarning)

	logger.Debug("hidden debug")
	logger.Info("hidden info")
	if out.Len() != 0 {
		t.Errorf("messages below min level were written: %q", out.String())
	}

	logger.Warning("shown warning")
	if !strings.Contains(out.String(), "shown warning") {
		t.Errorf("warning not written: %q", out.String())
	}
}

func TestApexLogger_Logf(t *testing.T) {
	var out bytes.Buffer
	logger := NewApexLoggerWithWriter(&out, SeverityDebug)

	logger.Logf(SeverityInfo, "%d blocks translated", 42)
	if !strings.Contains(out.String(), "42 blocks translated") {
		t.Errorf("Logf output = %q", out.String())
	}
}

func TestApexLogger_Error(t *testing.T) {
	var out bytes.Buffer
	logger := NewApexLoggerWithWriter(&out, SeverityError)

	logger.Error(nil)
	if out.Len() != 0 {
		t.Errorf("nil error produced output: %q", out.String())
	}

	logger.Error(errors.New("boom"))
	if !strings.Contains(out.String(), "boom") {
		t.Errorf("error not written: %q", out.String())
	}

	// resource errors are warnings, filtered at error level
	out.Reset()
	logger.Error(NewResourceError(cg.ErrReportWrite, errors.New("disk full"), "out"))
	if out.Len() != 0 {
		t.Errorf("resource error should be demoted below error level: %q", out.String())
	}
}

func TestNoOpLogger(t *testing.T) {
	var logger Logger = NewNoOpLogger()
	logger.Log(SeverityError, "x")
	logger.Logf(SeverityError, "%s", "x")
	logger.Error(errors.New("x"))
	logger.Debug("x")
	logger.Info("x")
	logger.Warning("x")
}
