package main

// Notes:
// - run: we test exit codes and stderr through the cobra tree. Commands that
//   render use a fake renderer; serve is covered in serve_test.go.
// - hintFor: we test that each error family gets its hint and that other
//   errors get none.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	html2pdf "github.com/alnah/go-html2pdf"
	"github.com/alnah/go-html2pdf/internal/config"
	"github.com/alnah/go-html2pdf/internal/hints"
	"github.com/alnah/go-html2pdf/internal/uploads"
)

// ---------------------------------------------------------------------------
// TestRun - Exit codes for command-line usage
// ---------------------------------------------------------------------------

func TestRun(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		args       []string
		wantCode   int
		wantStdout string
		wantStderr string
	}{
		{
			name:       "help",
			args:       []string{"--help"},
			wantCode:   ExitSuccess,
			wantStdout: "serve",
		},
		{
			name:       "version",
			args:       []string{"--version"},
			wantCode:   ExitSuccess,
			wantStdout: Version,
		},
		{
			name:       "unknown flag",
			args:       []string{"render", "--no-such-flag", "a.html"},
			wantCode:   ExitUsage,
			wantStderr: "unknown flag",
		},
		{
			name:       "render without input",
			args:       []string{"render"},
			wantCode:   ExitUsage,
			wantStderr: "accepts 1 arg",
		},
		{
			name:       "merge without input",
			args:       []string{"merge"},
			wantCode:   ExitUsage,
			wantStderr: "requires at least 1 arg",
		},
		{
			name:       "serve with argument",
			args:       []string{"serve", "extra"},
			wantCode:   ExitUsage,
			wantStderr: "unknown command",
		},
		{
			name:       "invalid page size",
			args:       []string{"config", "--page-size", "tabloid"},
			wantCode:   ExitUsage,
			wantStderr: "invalid page size",
		},
		{
			name:       "invalid pattern",
			args:       []string{"config", "--allowed-url-pattern", "(unclosed"},
			wantCode:   ExitUsage,
			wantStderr: "policy.allowedUrlPattern",
		},
		{
			name:       "missing config file",
			args:       []string{"config", "--config", "/nonexistent/html2pdf.yaml"},
			wantCode:   ExitUsage,
			wantStderr: "hint:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, stdout, stderr := testEnv(&fakeRenderer{})
			code := run(tt.args, env)

			if code != tt.wantCode {
				t.Errorf("run(%v) = %d, want %d\nstderr: %s", tt.args, code, tt.wantCode, stderr.String())
			}
			if tt.wantStdout != "" && !strings.Contains(stdout.String(), tt.wantStdout) {
				t.Errorf("stdout should contain %q, got:\n%s", tt.wantStdout, stdout.String())
			}
			if tt.wantStderr != "" && !strings.Contains(stderr.String(), tt.wantStderr) {
				t.Errorf("stderr should contain %q, got:\n%s", tt.wantStderr, stderr.String())
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestHintFor - Actionable hints per error family
// ---------------------------------------------------------------------------

func TestHintFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		wantHint string
	}{
		{"timeout", fmt.Errorf("rendering: %w", context.DeadlineExceeded), "--timeout"},
		{"access denied", fmt.Errorf("%w: https://example.com/a.css", html2pdf.ErrAccessDenied), "ALLOWED_URL_PATTERN"},
		{"upload dir", fmt.Errorf("%w: permission denied", uploads.ErrInvalidDir), "UPLOAD_DIR"},
		{"write pdf", fmt.Errorf("%w: no such directory", ErrWritePDF), "writable"},
		{"config not found", config.ErrConfigNotFound, "--config"},
		{"other", errors.New("boom"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := hintFor(tt.err)
			if tt.wantHint == "" {
				if got != "" {
					t.Errorf("hintFor() = %q, want empty", got)
				}
				return
			}
			if !strings.Contains(got, tt.wantHint) {
				t.Errorf("hintFor() = %q, want it to contain %q", got, tt.wantHint)
			}
		})
	}
}

func TestHintFor_BrowserConnect(t *testing.T) {
	t.Parallel()

	// The browser hint depends on CI and ROD_* variables and may be empty
	got := hintFor(fmt.Errorf("rendering: %w", html2pdf.ErrBrowserConnect))
	if want := hints.ForBrowserConnect(); got != want {
		t.Errorf("hintFor() = %q, want %q", got, want)
	}
}
