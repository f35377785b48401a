package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	html2pdf "github.com/alnah/go-html2pdf"
	"github.com/alnah/go-html2pdf/internal/assets"
	"github.com/alnah/go-html2pdf/internal/config"
	"github.com/alnah/go-html2pdf/internal/uploads"
)

// readHeaderTimeout bounds slow header writers independently of the body
// read timeout.
const readHeaderTimeout = 10 * time.Second

// Renderer renders request payloads to PDF.
// *html2pdf.RendererPool satisfies it.
type Renderer interface {
	RenderOne(ctx context.Context, req html2pdf.RenderRequest) ([]byte, error)
	RenderMerged(ctx context.Context, docs []string) ([]byte, error)
}

// Compile-time interface check.
var _ Renderer = (*html2pdf.RendererPool)(nil)

// Server is the HTTP surface of the service.
type Server struct {
	cfg      *config.Config
	renderer Renderer
	store    *uploads.Store
	pages    assets.AssetLoader
	logger   *log.Logger
	handler  http.Handler
}

// Option configures a Server.
type Option func(*Server)

// WithPages sets the loader of the usage page.
func WithPages(l assets.AssetLoader) Option {
	return func(s *Server) {
		s.pages = l
	}
}

// New builds the router from cfg. The configuration is read once: later
// changes to cfg are not observed.
func New(cfg *config.Config, renderer Renderer, store *uploads.Store, logger *log.Logger, opts ...Option) *Server {
	s := &Server{
		cfg:      cfg,
		renderer: renderer,
		store:    store,
		pages:    assets.NewEmbeddedLoader(),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}

	switch {
	case cfg.Auth.APIKey != "":
	case cfg.Auth.Disabled:
		logger.Warn("authentication disabled, rendering routes are unauthenticated")
	default:
		logger.Warn("no API key configured, rendering routes reject every request")
	}

	s.handler = s.routes()
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestLogger, s.recoverer)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		fail(w, r, fmt.Errorf("%w: %s", ErrNotFound, r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
	})

	r.Get("/health", s.handleHealth)
	r.Get("/", s.handleIndex)
	r.Get("/media/*", s.handleMedia)

	r.Group(func(r chi.Router) {
		r.Use(s.limitBody)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAPIKey)
			r.Post("/pdf", s.handlePDF)
			r.Post("/multiple", s.handleMultiple)
			if s.cfg.Auth.ProtectUpload {
				r.Post("/upload", s.handleUpload)
			}
		})

		if !s.cfg.Auth.ProtectUpload {
			r.Post("/upload", s.handleUpload)
		}
	})

	return r
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run listens on server.addr and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.Server.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully:
// in-flight requests get server.shutdownTimeout to finish. A zero timeout
// closes open connections immediately.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       s.cfg.Server.ReadTimeout.Std(),
		WriteTimeout:      s.cfg.Server.WriteTimeout.Std(),
		IdleTimeout:       s.cfg.Server.IdleTimeout.Std(),
		ErrorLog:          s.logger.StandardLog(log.StandardLogOptions{ForceLevel: log.ErrorLevel}),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down", "timeout", s.cfg.Server.ShutdownTimeout.String())

	timeout := s.cfg.Server.ShutdownTimeout.Std()
	if timeout <= 0 {
		return srv.Close()
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		_ = srv.Close()
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}
