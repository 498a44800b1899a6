package logging_test

import (
	"bytes"
	"strings"
	"testing"

	"go.uber.org/zap"

	"kanban/internal/logging"
)

func TestNew_DebugWritesToWriter(t *testing.T) {
	var buf bytes.Buffer
	log := logging.New(&buf, true)

	log.Debug("request", zap.String("path", "/boards/"))
	_ = log.Sync()

	got := buf.String()
	if !strings.Contains(got, "request") || !strings.Contains(got, "/boards/") {
		t.Errorf("expected debug line with path, got %q", got)
	}
}

func TestNew_NonDebugLogsErrorsOnly(t *testing.T) {
	var buf bytes.Buffer
	log := logging.New(&buf, false)

	log.Debug("request", zap.String("path", "/boards/"))
	log.Info("response")
	log.Error("API request failed", zap.String("endpoint", "/boards/"))
	_ = log.Sync()

	got := buf.String()
	if strings.Contains(got, "DEBUG") || strings.Contains(got, "INFO") {
		t.Errorf("expected debug and info to be dropped, got %q", got)
	}
	if !strings.Contains(got, "API request failed") || !strings.Contains(got, "ERROR") {
		t.Errorf("expected error line, got %q", got)
	}
	if strings.Count(got, "\n") != 1 {
		t.Errorf("expected exactly one line, got %q", got)
	}
}
