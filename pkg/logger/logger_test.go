package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()

	var logEntry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("Failed to parse log output: %v (%q)", err, buf.String())
	}
	return logEntry
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"off", zerolog.Disabled},
		{"invalid", zerolog.InfoLevel}, // Default
		{"", zerolog.InfoLevel},        // Default
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := parseLogLevel(tt.input)
			if got != tt.want {
				t.Errorf("parseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestLoggerMethods(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "debug")

	tests := []struct {
		name      string
		logFunc   func()
		wantMsg   string
		wantLevel string
	}{
		{"debug", func() { logger.Debug("debug message") }, "debug message", "debug"},
		{"info", func() { logger.Info("info message") }, "info message", "info"},
		{"warn", func() { logger.Warn("warn message") }, "warn message", "warn"},
		{"error", func() { logger.Error("error message") }, "error message", "error"},
		{"infof", func() { logger.Infof("symbols: %d", 42) }, "symbols: 42", "info"},
		{"warnf", func() { logger.Warnf("retry attempt: %d", 3) }, "retry attempt: 3", "warn"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.logFunc()

			logEntry := decode(t, &buf)
			if logEntry["level"] != tt.wantLevel {
				t.Errorf("Expected level %q, got %q", tt.wantLevel, logEntry["level"])
			}
			if logEntry["message"] != tt.wantMsg {
				t.Errorf("Expected message %q, got %q", tt.wantMsg, logEntry["message"])
			}
		})
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "warn")

	logger.Debug("hidden")
	logger.Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("Expected no output below warn level, got %q", buf.String())
	}

	logger.Warn("shown")
	if buf.Len() == 0 {
		t.Error("Expected warn message to be written")
	}
}

func TestModuleAndFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "debug").Module("acquisition")

	logger.WithFields(map[string]interface{}{
		"symbol": "BTC",
		"points": 365,
	}).Info("series acquired")

	logEntry := decode(t, &buf)
	if logEntry["module"] != "acquisition" {
		t.Errorf("Expected module to be acquisition, got %v", logEntry["module"])
	}
	if logEntry["symbol"] != "BTC" {
		t.Errorf("Expected symbol to be BTC, got %v", logEntry["symbol"])
	}
	if logEntry["points"] != float64(365) {
		t.Errorf("Expected points to be 365, got %v", logEntry["points"])
	}
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "info")

	logger.WithError(errors.New("upstream unavailable")).Error("fetch failed")

	logEntry := decode(t, &buf)
	if logEntry["error"] != "upstream unavailable" {
		t.Errorf("Expected error to be 'upstream unavailable', got %v", logEntry["error"])
	}
	if logEntry["message"] != "fetch failed" {
		t.Errorf("Expected message 'fetch failed', got %v", logEntry["message"])
	}
}

func TestNewNop(t *testing.T) {
	logger := NewNop()
	// Must not panic and must not write anywhere
	logger.WithField("k", "v").Info("discarded")
	logger.Module("x").Errorf("discarded %d", 1)
}
