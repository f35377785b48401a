package main

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/alnah/go-html2pdf/internal/config"
	"github.com/alnah/go-html2pdf/internal/yamlutil"
)

// Environment variable names.
const (
	envAPIKey         = "X_API_KEY"
	envAllowedPattern = "ALLOWED_URL_PATTERN"
	envBlockedPattern = "BLOCKED_URL_PATTERN"
	envUploadDir      = "UPLOAD_DIR"

	envPrefix     = "HTML2PDF_"
	envConfigPath = "HTML2PDF_CONFIG"
	envAddr       = "HTML2PDF_ADDR"
	envTimeout    = "HTML2PDF_TIMEOUT"
	envWorkers    = "HTML2PDF_WORKERS"
	envBaseDir    = "HTML2PDF_BASE_DIR"
	envLogLevel   = "HTML2PDF_LOG_LEVEL"
	envLogFormat  = "HTML2PDF_LOG_FORMAT"
	envContainer  = "HTML2PDF_CONTAINER"
	envNoAuth     = "HTML2PDF_AUTH_DISABLED"
)

// envConfig holds configuration from environment variables.
// Provides container-friendly overrides without requiring YAML files.
type envConfig struct {
	// Deployment variables
	APIKey         string  // X_API_KEY: shared secret, empty = unset
	AllowedPattern *string // ALLOWED_URL_PATTERN: nil = unset, "" is a valid pattern
	BlockedPattern *string // BLOCKED_URL_PATTERN: nil = unset, "" is a valid pattern
	UploadDir      string  // UPLOAD_DIR: upload directory

	// HTML2PDF_* variables
	ConfigPath string        // HTML2PDF_CONFIG: config file path or name
	Addr       string        // HTML2PDF_ADDR: listen address
	Timeout    time.Duration // HTML2PDF_TIMEOUT: render timeout
	Workers    int           // HTML2PDF_WORKERS: browser instances
	BaseDir    string        // HTML2PDF_BASE_DIR: root of relative references
	LogLevel   string        // HTML2PDF_LOG_LEVEL: debug, info, warn, error
	LogFormat  string        // HTML2PDF_LOG_FORMAT: text, json, logfmt
	NoAuth     *bool         // HTML2PDF_AUTH_DISABLED: nil = unset
}

// knownEnvVars lists valid HTML2PDF_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	envConfigPath: true,
	envAddr:       true,
	envTimeout:    true,
	envWorkers:    true,
	envBaseDir:    true,
	envLogLevel:   true,
	envLogFormat:  true,
	envContainer:  true,
	envNoAuth:     true,
}

// loadEnvConfig reads configuration from environment variables.
// Invalid timeout, worker and boolean values are ignored.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		APIKey:         os.Getenv(envAPIKey),
		AllowedPattern: lookupEnv(envAllowedPattern),
		BlockedPattern: lookupEnv(envBlockedPattern),
		UploadDir:      os.Getenv(envUploadDir),
		ConfigPath:     os.Getenv(envConfigPath),
		Addr:           os.Getenv(envAddr),
		BaseDir:        os.Getenv(envBaseDir),
		LogLevel:       os.Getenv(envLogLevel),
		LogFormat:      os.Getenv(envLogFormat),
	}

	// Parse duration for timeout
	if timeout := os.Getenv(envTimeout); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	// Parse int for workers
	if workers := os.Getenv(envWorkers); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	// Parse bool for auth opt-out
	if noAuth := os.Getenv(envNoAuth); noAuth != "" {
		if b, err := strconv.ParseBool(noAuth); err == nil {
			cfg.NoAuth = &b
		}
	}

	return cfg
}

// lookupEnv returns a pointer to the value of a set variable, nil otherwise.
func lookupEnv(name string) *string {
	if v, ok := os.LookupEnv(name); ok {
		return &v
	}
	return nil
}

// warnUnknownEnvVars logs warnings for unrecognized HTML2PDF_* variables.
// Helps catch typos like HTML2PDF_WORKER instead of HTML2PDF_WORKERS.
func warnUnknownEnvVars(logger *log.Logger) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, envPrefix) {
			name, _, _ := strings.Cut(env, "=")
			if !knownEnvVars[name] {
				logger.Warn("unknown environment variable (typo?)", "name", name)
			}
		}
	}
}

// applyEnvConfig applies environment variable values to config.
// A set variable replaces the config file value. CLI flags are applied
// afterwards, giving: CLI flags > env vars > config file > defaults.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.APIKey != "" {
		cfg.Auth.APIKey = env.APIKey
	}
	if env.NoAuth != nil {
		cfg.Auth.Disabled = *env.NoAuth
	}
	if env.AllowedPattern != nil {
		cfg.Policy.AllowedURLPattern = *env.AllowedPattern
	}
	if env.BlockedPattern != nil {
		cfg.Policy.BlockedURLPattern = *env.BlockedPattern
	}
	if env.UploadDir != "" {
		cfg.Storage.UploadDir = env.UploadDir
	}

	if env.Addr != "" {
		cfg.Server.Addr = env.Addr
	}
	if env.Timeout > 0 {
		cfg.Render.Timeout = yamlutil.Duration(env.Timeout)
	}
	if env.Workers > 0 {
		cfg.Render.Workers = env.Workers
	}
	if env.BaseDir != "" {
		cfg.Render.BaseDir = env.BaseDir
	}
	if env.LogLevel != "" {
		cfg.Log.Level = env.LogLevel
	}
	if env.LogFormat != "" {
		cfg.Log.Format = env.LogFormat
	}
}
