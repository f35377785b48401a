// Package html2pdf renders HTML and CSS payloads to PDF using headless Chrome.
//
// # Quick Start
//
// Create a renderer, render a document, and close when done:
//
//	r, err := html2pdf.NewRenderer()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close()
//
//	pdf, err := r.RenderOne(ctx, html2pdf.RenderRequest{
//	    HTML:    "<h1>Hello {{ name }}</h1>",
//	    Context: map[string]any{"name": "World"},
//	    CSS:     "h1 { color: navy; }",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("output.pdf", pdf, 0644)
//
// Template contexts arriving as JSON decode with DecodeTemplateData, which
// keeps integral numbers integral.
//
// # Rendering Pipeline
//
// A single render follows these stages:
//
//  1. Template substitution (pongo2, Jinja2 syntax, no file-loading tags)
//  2. HTML injection (the request CSS and a <base href>)
//  3. PDF rendering via headless Chrome (go-rod)
//
// RenderMerged renders several documents independently and concatenates
// their pages in input order (pdfcpu).
//
// # Resource Access
//
// Every resource the browser requests while rendering (stylesheets, images,
// fonts) is answered by a Fetcher, never by Chrome's own network stack:
//
//   - file:// URLs are read relative to the fetcher's base directory
//   - other URLs must be allowed by the AccessPolicy, or be base64 data URLs
//   - a refused or failed fetch aborts the render
//
// The policy compares URLs against two prefix-anchored regular expressions.
// The default patterns ("^$" allowed, "^.*$" blocked) refuse every remote
// URL:
//
//	patterns := html2pdf.NewLivePatterns(html2pdf.URLPatterns{
//	    Allowed: `https://cdn\.example\.com/`,
//	    Blocked: `.*`,
//	})
//	fetcher := html2pdf.NewFetcher(html2pdf.NewAccessPolicy(patterns, logger))
//	r, err := html2pdf.NewRenderer(html2pdf.WithFetcher(fetcher))
//
// LivePatterns can be replaced at runtime with Store.
//
// # Parallel Processing
//
// For servers, use RendererPool to manage multiple browser instances:
//
//	pool := html2pdf.NewRendererPool(4, opts...)
//	defer pool.Close()
//
//	r, err := pool.Acquire(ctx)
//	if err != nil {
//	    return err
//	}
//	defer pool.Release(r)
//	pdf, err := r.RenderOne(ctx, req)
//
// # Error Handling
//
// Errors wrap sentinel values, check them with errors.Is:
//
//	pdf, err := r.RenderOne(ctx, req)
//	if errors.Is(err, html2pdf.ErrAccessDenied) {
//	    // a resource URL was refused by the policy
//	}
//
// Render failures wrap ErrRender together with their cause.
//
// # Browser
//
// Rod downloads Chromium on first use unless ROD_BROWSER_BIN points at an
// installed browser. Set ROD_NO_SANDBOX=1 (or CI=true) inside containers.
package html2pdf
