package server

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	html2pdf "github.com/alnah/go-html2pdf"
	"github.com/alnah/go-html2pdf/internal/assets"
	"github.com/alnah/go-html2pdf/internal/logging"
)

// Request parameters.
const (
	filenameParam     = "filename"
	defaultFilename   = "unnamed.pdf"
	uploadNameHeader  = "filename"
	uploadTypeHeader  = "content_type"
	multipartMemory   = 10 << 20
	uploadOKResponse  = "UPLOAD OK"
	healthOKResponse  = "ok"
	pdfContentType    = "application/pdf"
	htmlContentType   = "text/html; charset=utf-8"
	plainContentType  = "text/plain; charset=utf-8"
	maxFilenameLength = 255
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", plainContentType)
	_, _ = w.Write([]byte(healthOKResponse))
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page, err := s.pages.LoadPage(assets.IndexPage)
	if err != nil {
		fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", htmlContentType)
	_, _ = w.Write([]byte(page))
}

// handlePDF renders the form fields html and css, with the JSON object in
// payload as template context.
func (s *Server) handlePDF(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		fail(w, r, badRequest("parsing form", err))
		return
	}

	data, err := html2pdf.DecodeTemplateData([]byte(r.PostForm.Get("payload")))
	if err != nil {
		fail(w, r, badRequest("payload", err))
		return
	}

	name := responseFilename(r)
	req := html2pdf.RenderRequest{
		HTML:     r.PostForm.Get("html"),
		CSS:      r.PostForm.Get("css"),
		Context:  data,
		Filename: name,
	}

	// A client hanging up does not abort a render in progress.
	pdf, err := s.renderer.RenderOne(context.WithoutCancel(r.Context()), req)
	if err != nil {
		fail(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("rendered", "filename", name, "bytes", len(pdf))
	writePDF(w, name, pdf)
}

// parseForm reads a url-encoded or multipart body into r.PostForm.
// ParseMultipartForm hides ParseForm errors behind ErrNotMultipart, so the
// url-encoded case is parsed on its own.
func parseForm(r *http.Request) error {
	if err := r.ParseForm(); err != nil {
		return err
	}
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return nil
	}
	return r.ParseMultipartForm(multipartMemory)
}

// handleMultiple renders a JSON array of HTML documents into one PDF.
func (s *Server) handleMultiple(w http.ResponseWriter, r *http.Request) {
	var docs []string
	if err := json.NewDecoder(r.Body).Decode(&docs); err != nil {
		fail(w, r, badRequest("decoding document list", err))
		return
	}

	name := responseFilename(r)
	pdf, err := s.renderer.RenderMerged(context.WithoutCancel(r.Context()), docs)
	if err != nil {
		fail(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("merged", "filename", name, "documents", len(docs), "bytes", len(pdf))
	writePDF(w, name, pdf)
}

// handleUpload stores the raw body under the filename header.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	name := r.Header.Get(uploadNameHeader)
	if name == "" {
		fail(w, r, fmt.Errorf("%w: missing %s header", ErrBadRequest, uploadNameHeader))
		return
	}

	n, err := s.store.Save(name, r.Body)
	if err != nil {
		fail(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("stored upload",
		"filename", name,
		"content_type", r.Header.Get(uploadTypeHeader),
		"bytes", n,
	)
	w.Header().Set("Content-Type", plainContentType)
	_, _ = w.Write([]byte(uploadOKResponse))
}

// handleMedia serves a stored upload. Names that cannot be stored answer 404
// like missing files.
func (s *Server) handleMedia(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "*")

	f, err := s.store.Open(name)
	if err != nil {
		if statusFor(err) == http.StatusBadRequest {
			err = fmt.Errorf("%w: %s: %w", ErrNotFound, name, err)
		}
		fail(w, r, err)
		return
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		fail(w, r, fmt.Errorf("reading %q: %w", name, err))
		return
	}

	logging.FromContext(r.Context()).Debug("serving media", "path", name, "bytes", info.Size())
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

func writePDF(w http.ResponseWriter, name string, pdf []byte) {
	w.Header().Set("Content-Type", pdfContentType)
	w.Header().Set("Content-Disposition", "inline;filename="+name)
	_, _ = w.Write(pdf)
}

func badRequest(what string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrBadRequest, what, err)
}

// responseFilename returns the filename query parameter made safe for a
// Content-Disposition header.
func responseFilename(r *http.Request) string {
	name := sanitizeFilename(r.URL.Query().Get(filenameParam))
	if name == "" {
		return defaultFilename
	}
	return name
}

// sanitizeFilename drops control characters, quotes, separators and
// parameter delimiters.
func sanitizeFilename(name string) string {
	name = strings.Map(func(r rune) rune {
		switch {
		case r < 0x20, r == 0x7f:
			return -1
		case strings.ContainsRune(`"\/;`, r):
			return -1
		}
		return r
	}, name)
	name = strings.TrimSpace(name)
	if len(name) > maxFilenameLength {
		name = strings.ToValidUTF8(name[:maxFilenameLength], "")
	}
	return name
}
