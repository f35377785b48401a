package fileutil_test

// Notes:
// - The Close error branch of WriteFileAtomic is not tested because
//   triggering it is platform-specific.
// This is an acceptable gap: we test observable behavior, not implementation details.

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-html2pdf/internal/fileutil"
)

// ---------------------------------------------------------------------------
// TestWriteFileAtomic - Temp file then rename
// ---------------------------------------------------------------------------

func TestWriteFileAtomic(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "html file",
			content: "<html><body>Test Content</body></html>",
		},
		{
			name:    "empty content",
			content: "",
		},
		{
			name:    "binary content",
			content: "\x89PNG\r\n\x1a\n\x00\x00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "out.bin")
			n, err := fileutil.WriteFileAtomic(path, strings.NewReader(tt.content))
			if err != nil {
				t.Fatalf("WriteFileAtomic() error = %v", err)
			}
			if n != int64(len(tt.content)) {
				t.Errorf("WriteFileAtomic() = %d bytes, want %d", n, len(tt.content))
			}

			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("failed to read file: %v", err)
			}
			if string(data) != tt.content {
				t.Errorf("file content = %q, want %q", string(data), tt.content)
			}
		})
	}
}

func TestWriteFileAtomic_Replaces(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "a.css")

	for _, content := range []string{"body{}", "p{}"} {
		if _, err := fileutil.WriteFileAtomic(path, strings.NewReader(content)); err != nil {
			t.Fatalf("WriteFileAtomic() error = %v", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read file: %v", err)
	}
	if string(data) != "p{}" {
		t.Errorf("file content = %q, want last write", data)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want 1 (no temp files left)", len(entries))
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("connection reset")
}

func TestWriteFileAtomic_Errors(t *testing.T) {
	t.Parallel()

	t.Run("empty path", func(t *testing.T) {
		t.Parallel()

		_, err := fileutil.WriteFileAtomic("", strings.NewReader("x"))
		if !errors.Is(err, fileutil.ErrEmptyPath) {
			t.Errorf("error = %v, want ErrEmptyPath", err)
		}
	})

	t.Run("missing directory", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "missing", "out.bin")
		if _, err := fileutil.WriteFileAtomic(path, strings.NewReader("x")); err == nil {
			t.Error("expected error for missing parent directory")
		}
	})

	t.Run("read error leaves nothing behind", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "out.bin")
		_, err := fileutil.WriteFileAtomic(path, io.MultiReader(strings.NewReader("partial"), failingReader{}))
		if err == nil {
			t.Fatal("expected error from reader")
		}

		entries, _ := os.ReadDir(dir)
		if len(entries) != 0 {
			t.Errorf("directory has %d entries after failure, want 0", len(entries))
		}
	})
}

// ---------------------------------------------------------------------------
// TestFileExists - File existence check
// ---------------------------------------------------------------------------

func TestFileExists(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	filePath := filepath.Join(dir, "exists.txt")
	if err := os.WriteFile(filePath, []byte("x"), 0o600); err != nil {
		t.Fatalf("setup: %v", err)
	}

	tests := []struct {
		name string
		path string
		want bool
	}{
		{"existing file", filePath, true},
		{"directory", dir, false},
		{"missing file", filepath.Join(dir, "missing.txt"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := fileutil.FileExists(tt.path); got != tt.want {
				t.Errorf("FileExists(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestIsFilePath - Path vs name detection
// ---------------------------------------------------------------------------

func TestIsFilePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  bool
	}{
		{"html2pdf", false},
		{"my-config", false},
		{"./html2pdf.yaml", true},
		{"/etc/html2pdf.yaml", true},
		{`C:\config\html2pdf.yaml`, true},
		{"prod/html2pdf", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			if got := fileutil.IsFilePath(tt.input); got != tt.want {
				t.Errorf("IsFilePath(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
