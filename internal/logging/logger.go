package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"titledb/internal/config"
)

// RunLogPattern matches the per-run log files written by NewFromConfig.
const RunLogPattern = "titledb-*.log"

// Options describes logger construction parameters.
type Options struct {
	// Level is debug, info, warn, or error.
	Level string
	// Format selects the terminal rendering: console or json.
	Format string
	// OutputPaths lists "stdout", "stderr", or file paths. Files always
	// receive JSON lines regardless of Format.
	OutputPaths []string
	Development bool
}

// New constructs a slog logger using the provided options.
func New(opts Options) (*slog.Logger, error) {
	level := parseLevel(opts.Level)
	levelVar := new(slog.LevelVar)
	levelVar.Set(level)
	addSource := opts.Development || level <= slog.LevelDebug

	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = "console"
	}
	if format != "console" && format != "json" {
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}

	paths := opts.OutputPaths
	if len(paths) == 0 {
		paths = []string{"stderr"}
	}

	seen := map[string]struct{}{}
	var handlers []slog.Handler
	for _, path := range paths {
		trimmed := strings.TrimSpace(path)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}

		switch trimmed {
		case "stdout", "stderr":
			w := io.Writer(os.Stderr)
			if trimmed == "stdout" {
				w = os.Stdout
			}
			if format == "json" {
				handlers = append(handlers, newJSONHandler(w, levelVar, addSource))
			} else {
				handlers = append(handlers, newPrettyHandler(w, levelVar, addSource))
			}
		default:
			file, err := openLogFile(trimmed)
			if err != nil {
				return nil, err
			}
			handlers = append(handlers, newJSONHandler(file, levelVar, addSource))
		}
	}
	return slog.New(TeeHandler(handlers...)), nil
}

// NewFromConfig creates a logger that writes to stderr and, when a log
// directory is configured, to a fresh per-run JSON log file. Run logs older
// than the configured retention are pruned.
func NewFromConfig(cfg *config.Config) (*slog.Logger, error) {
	if cfg == nil {
		return New(Options{Level: "info", Format: "console"})
	}

	outputs := []string{"stderr"}
	var runLog string
	if dir := strings.TrimSpace(cfg.Logging.Dir); dir != "" {
		runLog = filepath.Join(dir, runLogName(time.Now()))
		outputs = append(outputs, runLog)
	}

	logger, err := New(Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: outputs,
	})
	if err != nil {
		return nil, err
	}
	if runLog != "" {
		CleanupOldLogs(logger, cfg.Logging.RetentionDays, RetentionTarget{
			Dir:     cfg.Logging.Dir,
			Pattern: RunLogPattern,
			Exclude: []string{runLog},
		})
	}
	return logger, nil
}

func runLogName(now time.Time) string {
	return "titledb-" + now.UTC().Format("20060102T150405Z") + ".log"
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func openLogFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure log directory: %w", err)
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return file, nil
}
