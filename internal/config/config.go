// Package config loads the service configuration from a YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/alnah/go-html2pdf/internal/fileutil"
	"github.com/alnah/go-html2pdf/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxAddrLength        = 255
	MaxAPIKeyLength      = 512
	MaxPatternLength     = 4096
	MaxPathLength        = 4096
	MaxPageSizeLength    = 10 // "letter", "a4", "legal"
	MaxOrientationLength = 10 // "portrait", "landscape"
)

// Defaults.
const (
	DefaultAddr             = ":8000"
	DefaultUploadDir        = "/usr/src/app/uploads"
	DefaultMaxBodyBytes     = 32 << 20
	DefaultReadTimeout      = 60 * time.Second
	DefaultWriteTimeout     = 120 * time.Second
	DefaultIdleTimeout      = 120 * time.Second
	DefaultShutdownTimeout  = 30 * time.Second
	DefaultRenderTimeout    = 30 * time.Second
	DefaultMergeConcurrency = 4
	DefaultAllowedPattern   = "^$"
	DefaultBlockedPattern   = "^.*$"
)

// Config holds all configuration for the service.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Auth    AuthConfig    `yaml:"auth"`
	Policy  PolicyConfig  `yaml:"policy"`
	Storage StorageConfig `yaml:"storage"`
	Render  RenderConfig  `yaml:"render"`
	Log     LogConfig     `yaml:"log"`
}

// ServerConfig defines the HTTP listener.
type ServerConfig struct {
	Addr            string            `yaml:"addr"`
	ReadTimeout     yamlutil.Duration `yaml:"readTimeout"`
	WriteTimeout    yamlutil.Duration `yaml:"writeTimeout"`
	IdleTimeout     yamlutil.Duration `yaml:"idleTimeout"`
	ShutdownTimeout yamlutil.Duration `yaml:"shutdownTimeout"`
	MaxBodyBytes    int64             `yaml:"maxBodyBytes"` // request body cap, bytes
}

// AuthConfig defines the shared-secret check.
type AuthConfig struct {
	APIKey        string `yaml:"apiKey"`        // Empty = protected routes answer 401
	Disabled      bool   `yaml:"disabled"`      // Serve protected routes openly when no key is set
	ProtectUpload bool   `yaml:"protectUpload"` // Require the key on /upload too
}

// PolicyConfig defines which resource URLs the renderer may fetch.
// Both patterns are regular expressions matched at the start of the URL.
type PolicyConfig struct {
	AllowedURLPattern string `yaml:"allowedUrlPattern"`
	BlockedURLPattern string `yaml:"blockedUrlPattern"`
}

// StorageConfig defines where uploads live.
type StorageConfig struct {
	UploadDir string `yaml:"uploadDir"`
}

// RenderConfig defines the rendering engine.
type RenderConfig struct {
	Timeout          yamlutil.Duration `yaml:"timeout"`          // Page load and print timeout
	Workers          int               `yaml:"workers"`          // Browser instances, 0 = auto
	MergeConcurrency int               `yaml:"mergeConcurrency"` // Parallel renders per merge
	BaseDir          string            `yaml:"baseDir"`          // Root of relative references, empty = working directory
	Page             PageConfig        `yaml:"page"`
}

// PageConfig defines PDF page settings.
type PageConfig struct {
	Size        string  `yaml:"size"`        // "letter", "a4", "legal" (default: "a4")
	Orientation string  `yaml:"orientation"` // "portrait", "landscape" (default: "portrait")
	Margin      float64 `yaml:"margin"`      // inches (default: 0.5)
}

// LogConfig defines logging output.
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "text", "json", "logfmt"
}

// Validate checks values and field lengths.
// Called automatically by LoadConfig, but available for configurations
// assembled from flags and environment.
func (c *Config) Validate() error {
	// Validate server fields
	if c.Server.Addr == "" {
		return fmt.Errorf("%w: server.addr: required", ErrInvalidValue)
	}
	if err := validateFieldLength("server.addr", c.Server.Addr, MaxAddrLength); err != nil {
		return err
	}
	for name, d := range map[string]yamlutil.Duration{
		"server.readTimeout":     c.Server.ReadTimeout,
		"server.writeTimeout":    c.Server.WriteTimeout,
		"server.idleTimeout":     c.Server.IdleTimeout,
		"server.shutdownTimeout": c.Server.ShutdownTimeout,
	} {
		if d < 0 {
			return fmt.Errorf("%w: %s: must not be negative, got %s", ErrInvalidValue, name, d)
		}
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("%w: server.maxBodyBytes: must be positive, got %d", ErrInvalidValue, c.Server.MaxBodyBytes)
	}

	// Validate auth fields
	if err := validateFieldLength("auth.apiKey", c.Auth.APIKey, MaxAPIKeyLength); err != nil {
		return err
	}

	// Validate policy fields
	if err := validatePattern("policy.allowedUrlPattern", c.Policy.AllowedURLPattern); err != nil {
		return err
	}
	if err := validatePattern("policy.blockedUrlPattern", c.Policy.BlockedURLPattern); err != nil {
		return err
	}

	// Validate storage fields
	if c.Storage.UploadDir == "" {
		return fmt.Errorf("%w: storage.uploadDir: required", ErrInvalidValue)
	}
	if err := validateFieldLength("storage.uploadDir", c.Storage.UploadDir, MaxPathLength); err != nil {
		return err
	}

	// Validate render fields
	if c.Render.Timeout <= 0 {
		return fmt.Errorf("%w: render.timeout: must be positive, got %s", ErrInvalidValue, c.Render.Timeout)
	}
	if c.Render.Workers < 0 {
		return fmt.Errorf("%w: render.workers: must not be negative, got %d", ErrInvalidValue, c.Render.Workers)
	}
	if c.Render.MergeConcurrency < 0 {
		return fmt.Errorf("%w: render.mergeConcurrency: must not be negative, got %d", ErrInvalidValue, c.Render.MergeConcurrency)
	}
	if err := validateFieldLength("render.baseDir", c.Render.BaseDir, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("render.page.size", c.Render.Page.Size, MaxPageSizeLength); err != nil {
		return err
	}
	if err := validateFieldLength("render.page.orientation", c.Render.Page.Orientation, MaxOrientationLength); err != nil {
		return err
	}

	// Validate log fields
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log.level: %q (must be debug, info, warn, or error)", ErrInvalidValue, c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json", "logfmt":
	default:
		return fmt.Errorf("%w: log.format: %q (must be text, json, or logfmt)", ErrInvalidValue, c.Log.Format)
	}

	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// validatePattern checks that an access pattern compiles.
func validatePattern(fieldName, pattern string) error {
	if err := validateFieldLength(fieldName, pattern, MaxPatternLength); err != nil {
		return err
	}
	if _, err := regexp.Compile(pattern); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidValue, fieldName, err)
	}
	return nil
}

// DefaultConfig returns the configuration used when no file is given:
// auth disabled, every remote resource blocked, A4 pages.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            DefaultAddr,
			ReadTimeout:     yamlutil.Duration(DefaultReadTimeout),
			WriteTimeout:    yamlutil.Duration(DefaultWriteTimeout),
			IdleTimeout:     yamlutil.Duration(DefaultIdleTimeout),
			ShutdownTimeout: yamlutil.Duration(DefaultShutdownTimeout),
			MaxBodyBytes:    DefaultMaxBodyBytes,
		},
		Policy: PolicyConfig{
			AllowedURLPattern: DefaultAllowedPattern,
			BlockedURLPattern: DefaultBlockedPattern,
		},
		Storage: StorageConfig{UploadDir: DefaultUploadDir},
		Render: RenderConfig{
			Timeout:          yamlutil.Duration(DefaultRenderTimeout),
			MergeConcurrency: DefaultMergeConcurrency,
			Page: PageConfig{
				Size:        "a4",
				Orientation: "portrait",
				Margin:      0.5,
			},
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Fields absent from the file keep their DefaultConfig values.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is operator-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Redacted returns a copy of c safe to print: the API key is masked.
func (c *Config) Redacted() *Config {
	out := *c
	if out.Auth.APIKey != "" {
		out.Auth.APIKey = "********"
	}
	return &out
}

// SearchPaths returns the files LoadConfig tries for a config name, in order:
// current directory then ~/.config/go-html2pdf/, .yaml before .yml.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2) // 2 locations

	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, "go-html2pdf", name+ext))
		}
	}
	return paths
}

// resolveConfigPath returns the first existing file of SearchPaths.
func resolveConfigPath(name string) (string, error) {
	paths := SearchPaths(name)
	for _, p := range paths {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(paths, ", "))
}
