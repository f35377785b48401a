package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"

	"github.com/alnah/go-html2pdf/internal/config"
	"github.com/alnah/go-html2pdf/internal/yamlutil"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// serverFlags holds HTTP listener and storage flags.
type serverFlags struct {
	addr      string
	uploadDir string
	noAuth    bool
}

// policyFlags holds resource access flags.
type policyFlags struct {
	allowed string
	blocked string
}

// engineFlags holds rendering engine flags.
type engineFlags struct {
	timeout time.Duration
	workers int
	baseDir string
}

// pageFlags holds page layout flags.
type pageFlags struct {
	size        string
	orientation string
	margin      float64
}

// settingsFlags holds every flag that overrides a config value.
// Commands register the subsets they use.
type settingsFlags struct {
	server serverFlags
	policy policyFlags
	engine engineFlags
	page   pageFlags
}

// addCommonFlags registers the global flags.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file path or name (env: "+envConfigPath+")")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only log errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "enable debug logging")
}

// addServerFlags registers listener and storage flags.
func addServerFlags(fs *flag.FlagSet, f *serverFlags) {
	fs.StringVar(&f.addr, "addr", config.DefaultAddr, "listen address (env: "+envAddr+")")
	fs.StringVar(&f.uploadDir, "upload-dir", config.DefaultUploadDir, "upload directory (env: "+envUploadDir+")")
	fs.BoolVar(&f.noAuth, "no-auth", false, "serve rendering routes without an API key (env: "+envNoAuth+")")
}

// addPolicyFlags registers resource access flags.
func addPolicyFlags(fs *flag.FlagSet, f *policyFlags) {
	fs.StringVar(&f.allowed, "allowed-url-pattern", config.DefaultAllowedPattern, "regexp of resource URLs the renderer may fetch (env: "+envAllowedPattern+")")
	fs.StringVar(&f.blocked, "blocked-url-pattern", config.DefaultBlockedPattern, "regexp of resource URLs refused unless allowed (env: "+envBlockedPattern+")")
}

// addEngineFlags registers rendering engine flags.
// withWorkers is false for commands that use a single browser.
func addEngineFlags(fs *flag.FlagSet, f *engineFlags, withWorkers bool) {
	fs.DurationVarP(&f.timeout, "timeout", "t", config.DefaultRenderTimeout, "page load and print timeout (env: "+envTimeout+")")
	fs.StringVar(&f.baseDir, "base-dir", "", "root of relative references (env: "+envBaseDir+")")
	if withWorkers {
		fs.IntVarP(&f.workers, "workers", "w", 0, "browser instances, 0 = auto (env: "+envWorkers+")")
	}
}

// addPageFlags registers page layout flags.
func addPageFlags(fs *flag.FlagSet, f *pageFlags) {
	fs.StringVarP(&f.size, "page-size", "p", "a4", "page size: letter, a4, legal")
	fs.StringVar(&f.orientation, "orientation", "portrait", "page orientation: portrait, landscape")
	fs.Float64Var(&f.margin, "margin", 0.5, "page margin in inches (0-3)")
}

// applyFlags copies explicitly set flags onto cfg.
// Flags left at their default never override the config file or environment.
func applyFlags(fs *flag.FlagSet, f *settingsFlags, cfg *config.Config) {
	if fs.Changed("addr") {
		cfg.Server.Addr = f.server.addr
	}
	if fs.Changed("upload-dir") {
		cfg.Storage.UploadDir = f.server.uploadDir
	}
	if fs.Changed("no-auth") {
		cfg.Auth.Disabled = f.server.noAuth
	}
	if fs.Changed("allowed-url-pattern") {
		cfg.Policy.AllowedURLPattern = f.policy.allowed
	}
	if fs.Changed("blocked-url-pattern") {
		cfg.Policy.BlockedURLPattern = f.policy.blocked
	}
	if fs.Changed("timeout") {
		cfg.Render.Timeout = yamlutil.Duration(f.engine.timeout)
	}
	if fs.Changed("workers") {
		cfg.Render.Workers = f.engine.workers
	}
	if fs.Changed("base-dir") {
		cfg.Render.BaseDir = f.engine.baseDir
	}
	if fs.Changed("page-size") {
		cfg.Render.Page.Size = f.page.size
	}
	if fs.Changed("orientation") {
		cfg.Render.Page.Orientation = f.page.orientation
	}
	if fs.Changed("margin") {
		cfg.Render.Page.Margin = f.page.margin
	}
}

// usageArgs wraps a cobra argument validator so its errors map to ExitUsage.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return fmt.Errorf("%w: %v", ErrUsage, err)
		}
		return nil
	}
}

// usageFlagError makes flag parsing errors map to ExitUsage.
func usageFlagError(_ *cobra.Command, err error) error {
	return fmt.Errorf("%w: %v", ErrUsage, err)
}
