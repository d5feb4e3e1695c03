package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"titledb/internal/fileutil"
	"titledb/internal/logging"
)

// InitialCursor is the position of a crawl that has never completed.
const InitialCursor = 1

// ReadCursor returns the stored update-list position at path. A missing file
// reads as InitialCursor, as does a malformed one (with a warning). stored
// reports whether the file held a valid position.
func ReadCursor(path string, logger *slog.Logger) (value int, stored bool, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return InitialCursor, false, nil
		}
		return 0, false, fmt.Errorf("read cursor: %w", err)
	}
	raw := strings.TrimSpace(string(data))
	value, err = strconv.Atoi(raw)
	if err != nil || value < InitialCursor {
		logging.WarnWithContext(logger, "cursor file unreadable; starting from the first update list", "cursor_invalid",
			logging.String("path", path),
			logging.String("value", raw),
			logging.String(logging.FieldErrorHint, "the file should hold one positive decimal number"),
			logging.String(logging.FieldImpact, "the full update history is crawled again"),
		)
		return InitialCursor, false, nil
	}
	return value, true, nil
}

// WriteCursor atomically stores value at path.
func WriteCursor(path string, value int) error {
	if value < InitialCursor {
		value = InitialCursor
	}
	if err := fileutil.WriteFileAtomic(path, []byte(strconv.Itoa(value))); err != nil {
		return fmt.Errorf("write cursor: %w", err)
	}
	return nil
}

// ResetCursor removes the stored position so the next crawl starts from
// InitialCursor. removed is false when nothing was stored.
func ResetCursor(path string) (removed bool, err error) {
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("reset cursor: %w", err)
	}
	return true, nil
}
