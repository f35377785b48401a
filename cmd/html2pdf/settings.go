package main

import (
	"io"

	"github.com/charmbracelet/log"
	flag "github.com/spf13/pflag"

	html2pdf "github.com/alnah/go-html2pdf"
	"github.com/alnah/go-html2pdf/internal/config"
	"github.com/alnah/go-html2pdf/internal/logging"
)

// resolveConfig builds the effective configuration.
// Precedence: CLI flags > env vars > config file > defaults.
// Without --config or HTML2PDF_CONFIG no file is read.
func resolveConfig(fs *flag.FlagSet, common *commonFlags, f *settingsFlags) (*config.Config, error) {
	env := loadEnvConfig()

	name := common.config
	if name == "" {
		name = env.ConfigPath
	}

	cfg := config.DefaultConfig()
	if name != "" {
		loaded, err := config.LoadConfig(name)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	applyEnvConfig(env, cfg)
	applyFlags(fs, f, cfg)

	switch {
	case common.verbose:
		cfg.Log.Level = "debug"
	case common.quiet:
		cfg.Log.Level = "error"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := pageSettings(cfg).Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the process logger from the log section of cfg.
func newLogger(cfg *config.Config, w io.Writer) *log.Logger {
	return logging.New(cfg.Log, w)
}

// pageSettings converts the page section of cfg.
func pageSettings(cfg *config.Config) *html2pdf.PageSettings {
	return &html2pdf.PageSettings{
		Size:        cfg.Render.Page.Size,
		Orientation: cfg.Render.Page.Orientation,
		Margin:      cfg.Render.Page.Margin,
	}
}

// urlPatterns converts the policy section of cfg.
func urlPatterns(cfg *config.Config) html2pdf.URLPatterns {
	return html2pdf.URLPatterns{
		Allowed: cfg.Policy.AllowedURLPattern,
		Blocked: cfg.Policy.BlockedURLPattern,
	}
}

// rendererOptions wires the access policy, fetcher and engine settings of
// cfg into renderer options. Patterns are read from source on every check.
func rendererOptions(cfg *config.Config, source html2pdf.PatternSource, logger *log.Logger) []html2pdf.Option {
	policy := html2pdf.NewAccessPolicy(source, logger)

	fetcherOpts := []html2pdf.FetcherOption{html2pdf.WithFetcherLogger(logger)}
	if cfg.Render.BaseDir != "" {
		fetcherOpts = append(fetcherOpts, html2pdf.WithBaseDir(cfg.Render.BaseDir))
	}

	return []html2pdf.Option{
		html2pdf.WithFetcher(html2pdf.NewFetcher(policy, fetcherOpts...)),
		html2pdf.WithLogger(logger),
		html2pdf.WithTimeout(cfg.Render.Timeout.Std()),
		html2pdf.WithPageSettings(pageSettings(cfg)),
		html2pdf.WithMergeConcurrency(cfg.Render.MergeConcurrency),
	}
}
