package logging

import (
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/explainify/explainify-server-go/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"  WARN ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tc := range tests {
		if got := parseLevel(tc.input); got != tc.expected {
			t.Errorf("parseLevel(%q) = %v, want %v", tc.input, got, tc.expected)
		}
	}
}

func TestNewLoggerStdout(t *testing.T) {
	logger, err := NewLogger(config.LoggingConfig{Level: "info"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if logger == nil {
		t.Fatalf("expected logger")
	}
}

func TestNewLoggerInvalidFileConfig(t *testing.T) {
	_, err := NewLogger(config.LoggingConfig{Level: "info", LogDir: t.TempDir(), MaxSizeMB: 0})
	if err == nil {
		t.Fatalf("expected error for invalid rotation config")
	}
}

func TestNewLoggerFileOutput(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	logger, err := NewLogger(config.LoggingConfig{
		Level:      "debug",
		LogDir:     dir,
		MaxSizeMB:  1,
		MaxBackups: 1,
		MaxAgeDays: 1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	logger.Info("test_entry")
}
