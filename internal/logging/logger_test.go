package logging_test

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"titledb/internal/config"
	"titledb/internal/logging"
	"titledb/internal/services"
)

func readJSONLines(t *testing.T, path string) []map[string]any {
	t.Helper()
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open log file: %v", err)
	}
	defer file.Close()

	var lines []map[string]any
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var entry map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			t.Fatalf("log line is not JSON: %v: %q", err, scanner.Text())
		}
		lines = append(lines, entry)
	}
	return lines
}

func TestFileOutputIsJSON(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "nested", "run.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("partition saved", logging.String(logging.FieldPartition, "Games"))
	logger.Debug("hidden")

	lines := readJSONLines(t, logPath)
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	if lines[0]["msg"] != "partition saved" || lines[0]["level"] != "info" {
		t.Fatalf("unexpected entry %v", lines[0])
	}
	if lines[0][logging.FieldPartition] != "Games" {
		t.Fatalf("missing partition field: %v", lines[0])
	}
	if _, ok := lines[0]["ts"]; !ok {
		t.Fatalf("expected ts key: %v", lines[0])
	}
	if _, ok := lines[0]["source"]; ok {
		t.Fatalf("info logs should not carry source: %v", lines[0])
	}
}

func TestDebugLevelIncludesSource(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "debug.log")
	logger, err := logging.New(logging.Options{Level: "debug", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Debug("with caller")

	lines := readJSONLines(t, logPath)
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	source, _ := lines[0]["source"].(string)
	if !strings.Contains(source, ".go:") {
		t.Fatalf("expected source location, got %v", lines[0])
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWithContextAddsFields(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "ctx.log")
	logger, err := logging.New(logging.Options{OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := services.WithRunID(context.Background(), "run-1")
	ctx = services.WithPipeline(ctx, "titles")
	ctx = services.WithRegion(ctx, "EUR")
	logging.WithContext(ctx, logger).Info("contextual log")

	lines := readJSONLines(t, logPath)
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	for key, want := range map[string]string{
		logging.FieldRunID:    "run-1",
		logging.FieldPipeline: "titles",
		logging.FieldRegion:   "EUR",
	} {
		if lines[0][key] != want {
			t.Fatalf("field %s = %v, want %q", key, lines[0][key], want)
		}
	}
}

func TestNewFromConfigWritesRunLogAndPrunes(t *testing.T) {
	dir := t.TempDir()
	stale := filepath.Join(dir, "titledb-20200101T000000Z.log")
	unrelated := filepath.Join(dir, "notes.txt")
	for _, path := range []string{stale, unrelated} {
		if err := os.WriteFile(path, []byte("old"), 0o644); err != nil {
			t.Fatalf("write fixture: %v", err)
		}
		old := time.Now().AddDate(0, 0, -30)
		if err := os.Chtimes(path, old, old); err != nil {
			t.Fatalf("chtimes: %v", err)
		}
	}

	cfg := config.Default()
	cfg.Logging.Dir = dir
	cfg.Logging.RetentionDays = 7
	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("hello")

	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatalf("expected stale run log to be pruned, stat err=%v", err)
	}
	if _, err := os.Stat(unrelated); err != nil {
		t.Fatalf("unrelated file should survive: %v", err)
	}
	matches, err := filepath.Glob(filepath.Join(dir, logging.RunLogPattern))
	if err != nil || len(matches) != 1 {
		t.Fatalf("expected exactly one run log, got %v (%v)", matches, err)
	}
}

func TestCleanupOldLogsDisabled(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "titledb-x.log")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	old := time.Now().AddDate(-1, 0, 0)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatal(err)
	}
	if removed := logging.CleanupOldLogs(nil, 0, logging.RetentionTarget{Dir: dir, Pattern: logging.RunLogPattern}); removed != 0 {
		t.Fatalf("expected no removals when retention is disabled, got %d", removed)
	}
}
