package server

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/alnah/go-html2pdf/internal/logging"
)

// Header names.
const (
	APIKeyHeader    = "X_API_KEY"
	RequestIDHeader = "X-Request-Id"
)

// requestLogger assigns a request ID, attaches a request-scoped logger to the
// context and logs every response.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		logger := s.logger.With("request_id", id)
		r = r.WithContext(logging.WithLogger(r.Context(), logger))

		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).Round(time.Millisecond),
		)
	})
}

// recoverer turns a handler panic into a 500 response.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			logging.FromContext(r.Context()).Error("handler panicked", "panic", rec, "stack", string(debug.Stack()))
			fail(w, r, fmt.Errorf("internal error: %v", rec))
		}()
		next.ServeHTTP(w, r)
	})
}

// requireAPIKey rejects requests whose X_API_KEY header is absent or does
// not match the configured key. Without a key every request is rejected,
// unless auth.disabled opts out of the check.
func (s *Server) requireAPIKey(next http.Handler) http.Handler {
	key := []byte(s.cfg.Auth.APIKey)
	open := len(key) == 0 && s.cfg.Auth.Disabled
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if open {
			next.ServeHTTP(w, r)
			return
		}
		got := r.Header.Get(APIKeyHeader)
		if got == "" || len(key) == 0 || subtle.ConstantTimeCompare([]byte(got), key) != 1 {
			fail(w, r, ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// limitBody caps request bodies at server.maxBodyBytes.
func (s *Server) limitBody(next http.Handler) http.Handler {
	limit := s.cfg.Server.MaxBodyBytes
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, limit)
		next.ServeHTTP(w, r)
	})
}
