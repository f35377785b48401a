package server

import (
	"encoding/json"
	"errors"
	"net/http"

	html2pdf "github.com/alnah/go-html2pdf"
	"github.com/alnah/go-html2pdf/internal/logging"
	"github.com/alnah/go-html2pdf/internal/uploads"
)

// Sentinel errors for request handling.
var (
	ErrUnauthorized = errors.New("missing or invalid API key")
	ErrBadRequest   = errors.New("malformed request")
	ErrNotFound     = errors.New("not found")
)

// errorResponse is the JSON body of every failed request.
type errorResponse struct {
	Error string `json:"error"`
}

// statusFor maps an error chain to an HTTP status code.
func statusFor(err error) int {
	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound),
		errors.Is(err, uploads.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, uploads.ErrInvalidName),
		errors.Is(err, uploads.ErrPathTraversal),
		errors.Is(err, html2pdf.ErrEmptyHTML),
		errors.Is(err, html2pdf.ErrNoDocuments),
		errors.Is(err, html2pdf.ErrTemplate),
		errors.Is(err, html2pdf.ErrTemplateData),
		errors.Is(err, html2pdf.ErrInvalidPageSize),
		errors.Is(err, html2pdf.ErrInvalidOrientation),
		errors.Is(err, html2pdf.ErrInvalidMargin):
		return http.StatusBadRequest
	case errors.Is(err, html2pdf.ErrPoolClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// fail logs err with the request logger and writes it as JSON.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	logger := logging.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "err", err)
	} else {
		logger.Warn("request rejected", "status", status, "err", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
