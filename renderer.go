package html2pdf

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-html2pdf/internal/pipeline"
)

// Renderer turns HTML payloads into PDF documents.
// A Renderer owns one browser and is safe for concurrent use: every
// document renders in its own page.
type Renderer struct {
	cfg      rendererConfig
	fetcher  *Fetcher
	logger   *log.Logger
	engine   pdfEngine
	merger   pdfMerger
	expander templateExpander
	css      pipeline.CSSInjector
	base     pipeline.BaseInjector
}

// NewRenderer creates a Renderer. The browser is launched on first render.
func NewRenderer(opts ...Option) (*Renderer, error) {
	r := &Renderer{
		cfg: rendererConfig{
			timeout:          defaultTimeout,
			page:             DefaultPageSettings(),
			mergeConcurrency: defaultMergeConcurrency,
		},
		logger: log.Default(),
		css:    &pipeline.CSSInjection{},
		base:   &pipeline.BaseInjection{},
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.cfg.page == nil {
		r.cfg.page = DefaultPageSettings()
	}
	if err := r.cfg.page.Validate(); err != nil {
		return nil, err
	}

	if r.fetcher == nil {
		r.fetcher = NewFetcher(NewAccessPolicy(nil, r.logger), WithFetcherLogger(r.logger))
	}
	if r.expander == nil {
		expander, err := newPongoExpander()
		if err != nil {
			return nil, err
		}
		r.expander = expander
	}
	if r.merger == nil {
		r.merger = newPDFCPUMerger()
	}
	if r.engine == nil {
		r.engine = newRodEngine(r.fetcher, r.logger, r.cfg.timeout)
	}
	return r, nil
}

// RenderOne expands the request template, applies its stylesheet and prints
// the result. Relative references resolve against the fetcher's base
// directory. Any resource the fetcher refuses aborts the render.
func (r *Renderer) RenderOne(ctx context.Context, req RenderRequest) ([]byte, error) {
	if strings.TrimSpace(req.HTML) == "" {
		return nil, ErrEmptyHTML
	}

	page := req.Page
	if page == nil {
		page = r.cfg.page
	}
	if err := page.Validate(); err != nil {
		return nil, err
	}

	html, err := r.expander.Expand(req.HTML, req.Context)
	if err != nil {
		r.logger.Error("template substitution failed", "filename", req.Filename, "err", err)
		return nil, err
	}
	html = r.css.InjectCSS(ctx, html, req.CSS)
	html = r.base.InjectBase(ctx, html, LocalBaseURL)

	pdf, err := r.engine.RenderPDF(ctx, &document{HTML: html, LocalBase: true, Page: page})
	if err != nil {
		r.logger.Error("render failed", "filename", req.Filename, "err", err)
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}

	r.logger.Debug("rendered document", "filename", req.Filename, "bytes", len(pdf))
	return pdf, nil
}

// RenderMerged renders every HTML document independently and concatenates
// their pages, in input order, into one PDF. Documents have no base URL:
// relative references do not resolve. The first failing document aborts
// the whole merge.
func (r *Renderer) RenderMerged(ctx context.Context, docs []string) ([]byte, error) {
	if len(docs) == 0 {
		return nil, ErrNoDocuments
	}

	pdfs := make([][]byte, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.mergeConcurrency)
	for i, html := range docs {
		g.Go(func() error {
			pdf, err := r.engine.RenderPDF(gctx, &document{HTML: html, Page: r.cfg.page})
			if err != nil {
				return fmt.Errorf("document %d: %w", i, err)
			}
			pdfs[i] = pdf
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		r.logger.Error("merge render failed", "documents", len(docs), "err", err)
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}

	merged, err := r.merger.Merge(pdfs)
	if err != nil {
		r.logger.Error("merging documents failed", "documents", len(docs), "err", err)
		return nil, err
	}

	r.logger.Debug("merged documents", "documents", len(docs), "bytes", len(merged))
	return merged, nil
}

// Fetcher returns the fetcher answering the renderer's resource requests.
func (r *Renderer) Fetcher() *Fetcher {
	return r.fetcher
}

// Close releases the browser.
func (r *Renderer) Close() error {
	return r.engine.Close()
}
