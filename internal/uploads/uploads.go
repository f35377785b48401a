// Package uploads stores files sent to the service and serves them back.
//
// Names are slash-separated paths relative to the upload directory, so
// "posts/1/a.png" is valid and creates the intermediate directories. A name
// never resolves outside the directory, symlinks included.
package uploads

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/alnah/go-html2pdf/internal/fileutil"
)

// Sentinel errors for upload operations.
var (
	// ErrInvalidName indicates an empty, absolute or malformed upload name.
	ErrInvalidName = errors.New("invalid upload name")

	// ErrPathTraversal indicates a name resolving outside the upload directory.
	ErrPathTraversal = errors.New("path traversal detected")

	// ErrNotFound indicates no upload exists under the name.
	ErrNotFound = errors.New("upload not found")

	// ErrInvalidDir indicates the upload directory cannot be created or used.
	ErrInvalidDir = errors.New("invalid upload directory")
)

// MaxNameLength bounds upload names.
const MaxNameLength = 1024

// Store keeps uploads under a single directory.
// Safe for concurrent use: concurrent saves of one name race and the last
// rename wins; readers never see a partial file.
type Store struct {
	dir string
}

// NewStore creates the upload directory if needed and returns a Store on it.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidDir)
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDir, err)
	}

	if err := os.MkdirAll(absDir, 0o750); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDir, err)
	}

	// Resolve symlinks in the directory for consistent containment checks
	if realDir, err := filepath.EvalSymlinks(absDir); err == nil {
		absDir = realDir
	}

	info, err := os.Stat(absDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: not a directory: %s", ErrInvalidDir, absDir)
	}

	return &Store{dir: absDir}, nil
}

// Dir returns the absolute upload directory.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes r under name, replacing any previous upload.
// Returns the number of bytes stored.
func (s *Store) Save(name string, r io.Reader) (int64, error) {
	target, err := s.resolve(name)
	if err != nil {
		return 0, err
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return 0, fmt.Errorf("creating directory for %q: %w", name, err)
	}

	// The parent may be a symlink created since resolve ran.
	if err := s.verifyPathContainment(target); err != nil {
		return 0, err
	}

	n, err := fileutil.WriteFileAtomic(target, r)
	if err != nil {
		return 0, fmt.Errorf("saving %q: %w", name, err)
	}
	return n, nil
}

// Open returns the upload stored under name. The caller closes the file.
func (s *Store) Open(name string) (*os.File, error) {
	target, err := s.resolve(name)
	if err != nil {
		return nil, err
	}

	if !fileutil.FileExists(target) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	f, err := os.Open(target) // #nosec G304 -- target is contained in the upload directory
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("opening %q: %w", name, err)
	}
	return f, nil
}

// resolve validates name and maps it to a path inside the directory.
func (s *Store) resolve(name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	target := filepath.Join(s.dir, filepath.FromSlash(path.Clean(name)))
	if err := s.verifyPathContainment(target); err != nil {
		return "", err
	}
	return target, nil
}

// verifyPathContainment ensures the resolved file path is within the upload
// directory. Resolves symlinks to prevent escape via a symlink pointing
// outside it.
func (s *Store) verifyPathContainment(filePath string) error {
	absFilePath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("%w: cannot resolve path", ErrPathTraversal)
	}

	// If EvalSymlinks fails (file doesn't exist yet), resolve the nearest
	// existing parent instead so a symlinked directory is still caught.
	if realPath, err := filepath.EvalSymlinks(absFilePath); err == nil {
		absFilePath = realPath
	} else if realDir, err := filepath.EvalSymlinks(filepath.Dir(absFilePath)); err == nil {
		absFilePath = filepath.Join(realDir, filepath.Base(absFilePath))
	}

	// Add separator to prevent prefix attacks (e.g., /uploads vs /uploadsevil)
	if !strings.HasPrefix(absFilePath, s.dir+string(filepath.Separator)) {
		return fmt.Errorf("%w: path escapes upload directory", ErrPathTraversal)
	}
	return nil
}

// ValidateName checks that an upload name is a relative, slash-separated
// path without traversal components.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidName)
	}
	if len(name) > MaxNameLength {
		return fmt.Errorf("%w: %d chars, max %d", ErrInvalidName, len(name), MaxNameLength)
	}
	if strings.ContainsAny(name, "\\\x00") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if strings.HasPrefix(name, "/") {
		return fmt.Errorf("%w: absolute path %q", ErrInvalidName, name)
	}
	for _, part := range strings.Split(name, "/") {
		switch part {
		case "", ".":
			return fmt.Errorf("%w: %q", ErrInvalidName, name)
		case "..":
			return fmt.Errorf("%w: %q", ErrPathTraversal, name)
		}
	}
	return nil
}
