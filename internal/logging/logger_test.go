package logging_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lineage/internal/logging"
	"lineage/internal/services"
)

func logFile(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "lineage.log")
}

func readLog(t *testing.T, path string) string {
	t.Helper()
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	return string(raw)
}

func TestConsoleOutput(t *testing.T) {
	path := logFile(t)
	logger, err := logging.New(logging.Options{Level: "info", Format: "console", Paths: []string{path}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	logger.Debug("suppressed")
	logger.Info("person created",
		logging.String("person", "Helen Kowalski"),
		logging.Int("count", 2))

	out := readLog(t, path)
	if strings.Contains(out, "suppressed") {
		t.Error("debug line written at info level")
	}
	if !strings.Contains(out, "INFO person created") {
		t.Errorf("missing level and message: %q", out)
	}
	if !strings.Contains(out, `person="Helen Kowalski"`) {
		t.Errorf("missing quoted attr: %q", out)
	}
	if !strings.Contains(out, "count=2") {
		t.Errorf("missing int attr: %q", out)
	}
}

func TestJSONCarriesContextFields(t *testing.T) {
	path := logFile(t)
	logger, err := logging.New(logging.Options{Level: "debug", Format: "json", Paths: []string{path}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx := services.WithObituaryID(services.WithStage(context.Background(), "resolve"), "ob-1")
	logger.InfoContext(ctx, "resolution complete")

	var entry map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(readLog(t, path))), &entry); err != nil {
		t.Fatalf("parse json line: %v", err)
	}
	if entry["msg"] != "resolution complete" {
		t.Errorf("msg = %v", entry["msg"])
	}
	if entry[logging.FieldObituaryID] != "ob-1" {
		t.Errorf("obituary_id = %v", entry[logging.FieldObituaryID])
	}
	if entry[logging.FieldStage] != "resolve" {
		t.Errorf("stage = %v", entry[logging.FieldStage])
	}
}

func TestUnsupportedFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
