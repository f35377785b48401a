package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	html2pdf "github.com/alnah/go-html2pdf"
)

// ---------------------------------------------------------------------------
// Test Infrastructure - Fake renderer and environment
// ---------------------------------------------------------------------------

// fakeRenderer records requests and answers with a fake PDF.
type fakeRenderer struct {
	mu     sync.Mutex
	reqs   []html2pdf.RenderRequest
	merged [][]string
	opts   int
	closed bool
	err    error
	newErr error
}

func (f *fakeRenderer) RenderOne(_ context.Context, req html2pdf.RenderRequest) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-fake " + req.HTML), nil
}

func (f *fakeRenderer) RenderMerged(_ context.Context, docs []string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.merged = append(f.merged, docs)
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-fake merged"), nil
}

func (f *fakeRenderer) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// testEnv returns an Environment writing to buffers and rendering with r.
func testEnv(r *fakeRenderer) (*Environment, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	env := &Environment{
		Stdout: &stdout,
		Stderr: &stderr,
		NewRenderer: func(opts ...html2pdf.Option) (documentRenderer, error) {
			if r.newErr != nil {
				return nil, r.newErr
			}
			r.mu.Lock()
			r.opts = len(opts)
			r.mu.Unlock()
			return r, nil
		},
	}
	return env, &stdout, &stderr
}

// writeFile writes content to name under dir and returns the path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}
