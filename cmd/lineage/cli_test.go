package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	content := fmt.Sprintf("[paths]\ndata_dir = %q\nlog_dir = %q\n",
		filepath.Join(base, "data"), filepath.Join(base, "logs"))
	path := filepath.Join(base, "lineage.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func runCommand(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", configPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestObituaryAddListShow(t *testing.T) {
	configPath := writeTestConfig(t)

	obituaryFile := filepath.Join(t.TempDir(), "obit.txt")
	text := "Helen Kowalski passed away January 5, 2024, survived by her husband Walter."
	if err := os.WriteFile(obituaryFile, []byte(text), 0o644); err != nil {
		t.Fatalf("write obituary: %v", err)
	}

	out, err := runCommand(t, configPath, "obituary", "add", "--subject", "Helen Kowalski", obituaryFile)
	if err != nil {
		t.Fatalf("obituary add: %v", err)
	}
	fields := strings.Fields(out)
	if len(fields) < 3 || fields[0] != "Stored" {
		t.Fatalf("unexpected add output %q", out)
	}
	obituaryID := fields[2]

	out, err = runCommand(t, configPath, "obituary", "list")
	if err != nil {
		t.Fatalf("obituary list: %v", err)
	}
	if !strings.Contains(out, "Helen Kowalski") || !strings.Contains(out, obituaryID) {
		t.Errorf("list output %q missing obituary", out)
	}

	out, err = runCommand(t, configPath, "obituary", "show", obituaryID)
	if err != nil {
		t.Fatalf("obituary show: %v", err)
	}
	if !strings.Contains(out, text) {
		t.Errorf("show output %q missing obituary text", out)
	}
}

func TestFactsImportAndList(t *testing.T) {
	configPath := writeTestConfig(t)

	obituaryFile := filepath.Join(t.TempDir(), "obit.txt")
	if err := os.WriteFile(obituaryFile, []byte("Helen Kowalski, 89, of Milwaukee."), 0o644); err != nil {
		t.Fatalf("write obituary: %v", err)
	}
	out, err := runCommand(t, configPath, "obituary", "add", "--subject", "Helen Kowalski", obituaryFile)
	if err != nil {
		t.Fatalf("obituary add: %v", err)
	}
	obituaryID := strings.Fields(out)[2]

	factsFile := filepath.Join(t.TempDir(), "facts.json")
	factsJSON := `[
  {"type": "death_date", "value": "January 5, 2024", "confidence": 0.95},
  {"type": "relationship", "person_name": "Walter Kowalski", "relationship": "husband", "confidence": 0.9}
]`
	if err := os.WriteFile(factsFile, []byte(factsJSON), 0o644); err != nil {
		t.Fatalf("write facts file: %v", err)
	}

	out, err = runCommand(t, configPath, "facts", "import", obituaryID, factsFile)
	if err != nil {
		t.Fatalf("facts import: %v", err)
	}
	if !strings.Contains(out, "Imported") {
		t.Errorf("import output %q", out)
	}

	out, err = runCommand(t, configPath, "facts", "list", obituaryID)
	if err != nil {
		t.Fatalf("facts list: %v", err)
	}
	if !strings.Contains(out, "death_date") || !strings.Contains(out, "Walter Kowalski") {
		t.Errorf("facts list output %q missing imported facts", out)
	}
	// normalization adds the reciprocal wife fact for the subject
	if !strings.Contains(out, "wife") {
		t.Errorf("facts list output %q missing reciprocal fact", out)
	}

	out, err = runCommand(t, configPath, "status", obituaryID)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out, "not resolved yet") || !strings.Contains(out, "never run") {
		t.Errorf("status output %q", out)
	}
}

func TestRootCommandWiring(t *testing.T) {
	cmd := newRootCommand()
	want := []string{
		"obituary", "extract", "facts", "resolve", "review",
		"approve", "reject", "approve-all", "select", "create-new",
		"reject-person", "override-person", "override-value",
		"commit", "status", "gramps", "config",
	}
	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[strings.Fields(sub.Use)[0]] = true
	}
	for _, name := range want {
		if !names[name] {
			t.Errorf("root command missing %q", name)
		}
	}
}
