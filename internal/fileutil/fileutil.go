// Package fileutil holds the file primitives shared by the catalog and the
// cursor: atomic replacement, content fingerprints, and verified backup
// copies.
package fileutil

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/dgryski/go-farm"
	"github.com/natefinch/atomic"
)

// Fingerprint returns the content fingerprint of data.
func Fingerprint(data []byte) uint64 {
	return farm.Fingerprint64(data)
}

// FileFingerprint fingerprints the file at path. The boolean is false when
// the file does not exist.
func FileFingerprint(path string) (uint64, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return Fingerprint(data), true, nil
}

// Exists reports whether path names an existing regular file.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// WriteFileAtomic replaces path with data so readers observe either the old
// or the new contents.
func WriteFileAtomic(path string, data []byte) error {
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// CopyFile atomically replaces dst with the contents of src.
func CopyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return WriteFileAtomic(dst, data)
}

// CopyFileVerified copies src to dst and re-reads dst to confirm the
// fingerprints match. Removes dst on mismatch.
func CopyFileVerified(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("read source: %w", err)
	}
	if err := WriteFileAtomic(dst, data); err != nil {
		return err
	}
	got, ok, err := FileFingerprint(dst)
	if err != nil {
		return fmt.Errorf("verify copy: %w", err)
	}
	if !ok || got != Fingerprint(data) {
		_ = os.Remove(dst)
		return fmt.Errorf("copy fingerprint mismatch: %s corrupted during copy", dst)
	}
	return nil
}
