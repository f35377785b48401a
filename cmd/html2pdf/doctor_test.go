package main

// Notes:
// - Tests use black-box approach: testing through run() observable outputs
// - Container detection tests modify environment variables, cannot use t.Parallel()
// - Chrome detection depends on system state; a missing ROD_BROWSER_BIN is
//   used to force the error path deterministically
// - checkConfig is tested directly because its inputs (config errors,
//   directory states) are awkward to reach through the command

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/alnah/go-html2pdf/internal/config"
)

// ---------------------------------------------------------------------------
// TestDoctorCmd_JSONOutput - Verifies JSON output format and structure
// ---------------------------------------------------------------------------

func TestDoctorCmd_JSONOutput(t *testing.T) {
	t.Parallel()

	env, stdout, _ := testEnv(&fakeRenderer{})
	exitCode := run([]string{"doctor", "--json", "--upload-dir", t.TempDir()}, env)

	var result doctorResult
	if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
		t.Fatalf("Invalid JSON output: %v\nOutput was: %s", err, stdout.String())
	}

	validStatuses := map[string]bool{"ready": true, "warnings": true, "errors": true}
	if !validStatuses[result.Status] {
		t.Errorf("Invalid status %q, expected ready/warnings/errors", result.Status)
	}

	// Exit code should be consistent with status
	if result.Status == "errors" && exitCode != ExitGeneral {
		t.Errorf("Expected exit code %d for errors status, got %d", ExitGeneral, exitCode)
	}
	if result.Status != "errors" && exitCode != ExitSuccess {
		t.Errorf("Expected exit code %d for non-error status, got %d", ExitSuccess, exitCode)
	}

	if result.Env.OS != runtime.GOOS {
		t.Errorf("OS = %q, want %q", result.Env.OS, runtime.GOOS)
	}
	if result.Env.Arch != runtime.GOARCH {
		t.Errorf("Arch = %q, want %q", result.Env.Arch, runtime.GOARCH)
	}
	if !result.System.UploadWritable {
		t.Error("temp upload directory should be writable")
	}
	if !result.System.ConfigValid {
		t.Error("default configuration should be valid")
	}
}

// ---------------------------------------------------------------------------
// TestDoctorCmd_HumanOutput - Verifies human-readable output format
// ---------------------------------------------------------------------------

func TestDoctorCmd_HumanOutput(t *testing.T) {
	t.Parallel()

	env, stdout, _ := testEnv(&fakeRenderer{})
	run([]string{"doctor", "--upload-dir", t.TempDir()}, env)

	output := stdout.String()

	requiredSections := []string{
		"html2pdf doctor",
		"Chrome/Chromium",
		"Environment",
		"System",
		"Upload directory",
		"Status:",
	}
	for _, section := range requiredSections {
		if !strings.Contains(output, section) {
			t.Errorf("Output should contain section %q", section)
		}
	}

	platformStr := runtime.GOOS + "/" + runtime.GOARCH
	if !strings.Contains(output, platformStr) {
		t.Errorf("Output should contain platform %q", platformStr)
	}
}

// ---------------------------------------------------------------------------
// TestDoctorCmd_MissingBrowser - Explicit browser path that does not exist
// ---------------------------------------------------------------------------

func TestDoctorCmd_MissingBrowser(t *testing.T) {
	// NO t.Parallel() - modifies environment variables
	t.Setenv("ROD_BROWSER_BIN", filepath.Join(t.TempDir(), "no-chrome"))

	env, stdout, stderr := testEnv(&fakeRenderer{})
	code := run([]string{"doctor", "--json", "--upload-dir", t.TempDir()}, env)

	if code != ExitGeneral {
		t.Errorf("exit code = %d, want %d", code, ExitGeneral)
	}

	var result doctorResult
	if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
		t.Fatalf("Invalid JSON output: %v", err)
	}
	if result.Status != "errors" {
		t.Errorf("Status = %q, want errors", result.Status)
	}
	if result.Chrome.Found {
		t.Error("Chrome should not be found")
	}
	if !strings.Contains(stderr.String(), ErrNotReady.Error()) {
		t.Errorf("stderr = %q, want %q", stderr.String(), ErrNotReady.Error())
	}
}

// ---------------------------------------------------------------------------
// TestDoctorCmd_ContainerDetection - Verifies container environment detection
// ---------------------------------------------------------------------------

func TestDoctorCmd_ContainerDetection(t *testing.T) {
	// NO t.Parallel() - modifies environment variables

	tests := []struct {
		name     string
		envVar   string
		envVal   string
		wantHint string
	}{
		{"explicit override", envContainer, "1", envContainer + "=1"},
		{"kubernetes environment", "KUBERNETES_SERVICE_HOST", "10.0.0.1", "KUBERNETES_SERVICE_HOST"},
		{"podman container", "container", "podman", "container=podman"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Clear the other signals so the expected one is reported
			for _, name := range []string{envContainer, "KUBERNETES_SERVICE_HOST", "container"} {
				t.Setenv(name, "")
			}
			t.Setenv(tt.envVar, tt.envVal)

			if _, err := os.Stat("/.dockerenv"); err == nil && tt.envVar != envContainer {
				t.Skip("/.dockerenv takes precedence")
			}

			env, stdout, _ := testEnv(&fakeRenderer{})
			run([]string{"doctor", "--json", "--upload-dir", t.TempDir()}, env)

			var result doctorResult
			if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
				t.Fatalf("Invalid JSON output: %v", err)
			}
			if !result.Env.Container {
				t.Error("container should be detected")
			}
			if result.Env.ContainerHint != tt.wantHint {
				t.Errorf("ContainerHint = %q, want %q", result.Env.ContainerHint, tt.wantHint)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestCheckConfig - Configuration and upload directory checks
// ---------------------------------------------------------------------------

func TestCheckConfig(t *testing.T) {
	t.Parallel()

	withDir := func(dir string) *config.Config {
		cfg := config.DefaultConfig()
		cfg.Auth.APIKey = "key"
		cfg.Storage.UploadDir = dir
		return cfg
	}

	file := writeFile(t, t.TempDir(), "file", "x")

	tests := []struct {
		name         string
		cfg          *config.Config
		cfgErr       error
		wantValid    bool
		wantWritable bool
		wantErrors   int
		wantWarnings int
	}{
		{
			name:         "writable directory",
			cfg:          withDir(t.TempDir()),
			wantValid:    true,
			wantWritable: true,
		},
		{
			name:         "missing directory is a warning",
			cfg:          withDir(filepath.Join(t.TempDir(), "later")),
			wantValid:    true,
			wantWarnings: 1,
		},
		{
			name:       "file instead of directory",
			cfg:        withDir(file),
			wantValid:  true,
			wantErrors: 1,
		},
		{
			name:         "no api key",
			cfg:          func() *config.Config { c := withDir(t.TempDir()); c.Auth.APIKey = ""; return c }(),
			wantValid:    true,
			wantWritable: true,
			wantWarnings: 1,
		},
		{
			name:         "auth disabled",
			cfg:          func() *config.Config { c := withDir(t.TempDir()); c.Auth.APIKey = ""; c.Auth.Disabled = true; return c }(),
			wantValid:    true,
			wantWritable: true,
			wantWarnings: 1,
		},
		{
			name:       "invalid configuration",
			cfgErr:     errors.New("bad value"),
			wantErrors: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result := &doctorResult{}
			checkConfig(result, tt.cfg, tt.cfgErr)

			if result.System.ConfigValid != tt.wantValid {
				t.Errorf("ConfigValid = %v, want %v", result.System.ConfigValid, tt.wantValid)
			}
			if tt.cfgErr != nil {
				// The default upload directory may or may not exist here
				if len(result.Errors) < tt.wantErrors {
					t.Errorf("Errors = %v, want at least %d", result.Errors, tt.wantErrors)
				}
				return
			}
			if result.System.UploadWritable != tt.wantWritable {
				t.Errorf("UploadWritable = %v, want %v", result.System.UploadWritable, tt.wantWritable)
			}
			if len(result.Errors) != tt.wantErrors {
				t.Errorf("Errors = %v, want %d", result.Errors, tt.wantErrors)
			}
			if len(result.Warnings) != tt.wantWarnings {
				t.Errorf("Warnings = %v, want %d", result.Warnings, tt.wantWarnings)
			}
		})
	}
}
