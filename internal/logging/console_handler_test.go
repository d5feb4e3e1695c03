package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestPrettyHandlerLayout(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newPrettyHandler(&buf, lvl, false)).With(
		String(FieldComponent, "crawl"),
		String(FieldRunID, "run-1"),
	)
	logger.Warn("listing page failed",
		String(FieldPipeline, "titles"),
		String(FieldRegion, "JPN"),
		Int("offset", 200),
		Error(errors.New("connection reset")),
	)

	line := buf.String()
	for _, want := range []string{"WARN ", "crawl [titles/JPN]: listing page failed", "offset=200", `error="connection reset"`} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %q in %q", want, line)
		}
	}
	if strings.Contains(line, "run-1") {
		t.Fatalf("run id should be hidden above debug: %q", line)
	}
}

func TestPrettyHandlerGroups(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newPrettyHandler(&buf, new(slog.LevelVar), false)).WithGroup("size")
	logger.Info("backfill", slog.Int("found", 3))
	if !strings.Contains(buf.String(), "size.found=3") {
		t.Fatalf("expected grouped key, got %q", buf.String())
	}
}

func TestTeeHandlerFansOut(t *testing.T) {
	var a, b bytes.Buffer
	infoLevel := new(slog.LevelVar)
	errorLevel := new(slog.LevelVar)
	errorLevel.Set(slog.LevelError)
	logger := slog.New(TeeHandler(newPrettyHandler(&a, infoLevel, false), nil, newJSONHandler(&b, errorLevel, false)))

	logger.Info("only console")
	logger.Error("both")

	if strings.Count(a.String(), "\n") != 2 {
		t.Fatalf("expected two console lines, got %q", a.String())
	}
	if strings.Count(b.String(), "\n") != 1 || !strings.Contains(b.String(), `"msg":"both"`) {
		t.Fatalf("expected one JSON line, got %q", b.String())
	}
}

func TestTeeHandlerDegenerateCases(t *testing.T) {
	if _, ok := TeeHandler().(NoopHandler); !ok {
		t.Fatal("expected NoopHandler for no handlers")
	}
	single := newJSONHandler(&bytes.Buffer{}, new(slog.LevelVar), false)
	if TeeHandler(single) != single {
		t.Fatal("expected single handler to be returned unchanged")
	}
}
