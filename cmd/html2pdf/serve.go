package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"

	html2pdf "github.com/alnah/go-html2pdf"
	"github.com/alnah/go-html2pdf/internal/config"
	"github.com/alnah/go-html2pdf/internal/server"
	"github.com/alnah/go-html2pdf/internal/uploads"
)

func newServeCmd(env *Environment, common *commonFlags) *cobra.Command {
	var f settingsFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP rendering service",
		Long: `Run the HTTP rendering service.

SIGHUP reloads the URL access patterns from the config file and environment
without dropping requests. SIGINT and SIGTERM shut down gracefully.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), env, cmd.Flags(), common, &f)
		},
	}

	fs := cmd.Flags()
	addServerFlags(fs, &f.server)
	addPolicyFlags(fs, &f.policy)
	addEngineFlags(fs, &f.engine, true)
	addPageFlags(fs, &f.page)

	return cmd
}

// runServe serves until ctx is done, then drains requests and closes the
// browsers.
func runServe(ctx context.Context, env *Environment, fs *flag.FlagSet, common *commonFlags, f *settingsFlags) error {
	cfg, err := resolveConfig(fs, common, f)
	if err != nil {
		return err
	}

	logger := newLogger(cfg, env.Stderr)
	warnUnknownEnvVars(logger)

	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	_, _ = maxprocs.Set(maxprocs.Logger(logger.Debugf))

	store, err := uploads.NewStore(cfg.Storage.UploadDir)
	if err != nil {
		return err
	}

	patterns := html2pdf.NewLivePatterns(urlPatterns(cfg))
	pool := html2pdf.NewRendererPool(html2pdf.ResolvePoolSize(cfg.Render.Workers), rendererOptions(cfg, patterns, logger)...)
	defer func() {
		if err := pool.Close(); err != nil {
			logger.Error("closing browsers", "err", err)
		}
	}()

	notifyReload(ctx, func() {
		reloadPatterns(patterns, logger, func() (*config.Config, error) {
			return resolveConfig(fs, common, f)
		})
	})

	logger.Info("starting server",
		"addr", cfg.Server.Addr,
		"workers", pool.Size(),
		"upload_dir", store.Dir(),
		"version", Version,
	)

	if err := server.New(cfg, pool, store, logger).Run(ctx); err != nil {
		return fmt.Errorf("serving: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

// reloadPatterns re-resolves the configuration and swaps the URL access
// patterns. On failure the current patterns stay in effect.
// Other settings need a restart.
func reloadPatterns(patterns *html2pdf.LivePatterns, logger *log.Logger, load func() (*config.Config, error)) {
	cfg, err := load()
	if err != nil {
		logger.Error("reload failed, keeping current url patterns", "err", err)
		return
	}

	next := urlPatterns(cfg)
	patterns.Store(next)
	logger.Info("url patterns reloaded", "allowed", next.Allowed, "blocked", next.Blocked)
}
