// Package fileutil provides file and path utility functions.
package fileutil

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrEmptyPath is returned when a write target is empty.
var ErrEmptyPath = errors.New("path cannot be empty")

// WriteFileAtomic streams r into path. The content goes to a temporary file
// in the same directory first and is renamed into place, so readers see
// either the previous file or the complete new one.
// Returns the number of bytes written.
func WriteFileAtomic(path string, r io.Reader) (int64, error) {
	if path == "" {
		return 0, ErrEmptyPath
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".html2pdf-*.tmp")
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}

	tmpPath := tmpFile.Name()
	cleanup := func() { _ = os.Remove(tmpPath) }

	n, err := io.Copy(tmpFile, r)
	if err != nil {
		_ = tmpFile.Close()
		cleanup()
		return 0, fmt.Errorf("writing temp file: %w", err)
	}

	if closeErr := tmpFile.Close(); closeErr != nil {
		cleanup()
		return 0, fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		cleanup()
		return 0, fmt.Errorf("renaming temp file: %w", err)
	}

	return n, nil
}

// FileExists returns true if the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// IsFilePath returns true if the string looks like a file path rather than a name.
// A string containing path separators (/, \) is treated as a path.
//
// Examples:
//   - "html2pdf" -> false (name)
//   - "./html2pdf.yaml" -> true (relative path)
//   - "/etc/html2pdf/config.yaml" -> true (absolute)
//   - "C:\config\html2pdf.yaml" -> true (Windows)
//   - "prod/html2pdf" -> true (contains separator)
func IsFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}
