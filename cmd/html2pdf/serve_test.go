package main

// Notes:
// - serve is started with an already cancelled context: it binds, then shuts
//   down at once. Request handling is covered by internal/server tests.
// - reloadPatterns is tested directly; SIGHUP delivery is covered in
//   signal_unix_test.go.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"bytes"
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	html2pdf "github.com/alnah/go-html2pdf"
	"github.com/alnah/go-html2pdf/internal/config"
)

// ---------------------------------------------------------------------------
// TestServe - Startup and shutdown
// ---------------------------------------------------------------------------

func TestServe(t *testing.T) {
	t.Parallel()

	t.Run("starts and stops with context", func(t *testing.T) {
		t.Parallel()

		uploadDir := filepath.Join(t.TempDir(), "nested", "uploads")
		env, _, stderr := testEnv(&fakeRenderer{})

		root := newRootCmd(env)
		root.SetArgs([]string{"serve", "--addr", "127.0.0.1:0", "--upload-dir", uploadDir, "--workers", "2"})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if err := root.ExecuteContext(ctx); err != nil {
			t.Fatalf("serve error: %v\nstderr: %s", err, stderr.String())
		}

		if info, err := os.Stat(uploadDir); err != nil || !info.IsDir() {
			t.Errorf("upload directory should be created: %v", err)
		}
		for _, want := range []string{"starting server", "workers=2", "server stopped"} {
			if !strings.Contains(stderr.String(), want) {
				t.Errorf("stderr should contain %q, got:\n%s", want, stderr.String())
			}
		}
	})

	t.Run("upload directory is a file", func(t *testing.T) {
		t.Parallel()

		file := writeFile(t, t.TempDir(), "uploads", "x")
		env, _, stderr := testEnv(&fakeRenderer{})

		code := run([]string{"serve", "--addr", "127.0.0.1:0", "--upload-dir", file}, env)
		if code != ExitIO {
			t.Errorf("run() = %d, want %d\nstderr: %s", code, ExitIO, stderr.String())
		}
		if !strings.Contains(stderr.String(), "UPLOAD_DIR") {
			t.Errorf("stderr should hint at UPLOAD_DIR, got:\n%s", stderr.String())
		}
	})

	t.Run("address in use", func(t *testing.T) {
		t.Parallel()

		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatalf("listen: %v", err)
		}
		defer func() { _ = ln.Close() }()

		env, _, stderr := testEnv(&fakeRenderer{})
		code := run([]string{"serve", "--addr", ln.Addr().String(), "--upload-dir", t.TempDir()}, env)
		if code != ExitGeneral {
			t.Errorf("run() = %d, want %d\nstderr: %s", code, ExitGeneral, stderr.String())
		}
		if !strings.Contains(stderr.String(), "listening on") {
			t.Errorf("stderr = %q", stderr.String())
		}
	})
}

// ---------------------------------------------------------------------------
// TestReloadPatterns - Live policy swap
// ---------------------------------------------------------------------------

func TestReloadPatterns(t *testing.T) {
	t.Parallel()

	t.Run("stores new patterns", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		patterns := html2pdf.NewLivePatterns(html2pdf.DefaultURLPatterns())

		reloadPatterns(patterns, log.New(&buf), func() (*config.Config, error) {
			cfg := config.DefaultConfig()
			cfg.Policy.AllowedURLPattern = "https://cdn/"
			return cfg, nil
		})

		got := patterns.URLPatterns()
		if got.Allowed != "https://cdn/" {
			t.Errorf("Allowed = %q, want https://cdn/", got.Allowed)
		}
		if !strings.Contains(buf.String(), "url patterns reloaded") {
			t.Errorf("log = %q", buf.String())
		}
	})

	t.Run("keeps patterns on error", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		before := html2pdf.URLPatterns{Allowed: "https://old/", Blocked: "^.*$"}
		patterns := html2pdf.NewLivePatterns(before)

		reloadPatterns(patterns, log.New(&buf), func() (*config.Config, error) {
			return nil, errors.New("config vanished")
		})

		if got := patterns.URLPatterns(); got != before {
			t.Errorf("patterns = %+v, want unchanged %+v", got, before)
		}
		if !strings.Contains(buf.String(), "config vanished") {
			t.Errorf("log = %q", buf.String())
		}
	})

	t.Run("policy sees reloaded patterns", func(t *testing.T) {
		t.Parallel()

		patterns := html2pdf.NewLivePatterns(html2pdf.DefaultURLPatterns())
		policy := html2pdf.NewAccessPolicy(patterns, log.New(&bytes.Buffer{}))

		if policy.CheckAccess("https://cdn/app.css") {
			t.Fatal("default patterns should deny")
		}

		reloadPatterns(patterns, log.New(&bytes.Buffer{}), func() (*config.Config, error) {
			cfg := config.DefaultConfig()
			cfg.Policy.AllowedURLPattern = `https://cdn/`
			return cfg, nil
		})

		if !policy.CheckAccess("https://cdn/app.css") {
			t.Error("reloaded patterns should allow")
		}
	})
}
