package pipeline

import (
	"context"
	"html"
	"strings"
)

// CSSInjector defines the contract for CSS injection into HTML.
type CSSInjector interface {
	InjectCSS(ctx context.Context, htmlContent, cssContent string) string
}

// BaseInjector defines the contract for <base href> injection into HTML.
type BaseInjector interface {
	InjectBase(ctx context.Context, htmlContent, baseURL string) string
}

// Compile-time interface checks.
var (
	_ CSSInjector  = (*CSSInjection)(nil)
	_ BaseInjector = (*BaseInjection)(nil)
)

// CSSInjection injects CSS as a <style> block into HTML content.
type CSSInjection struct{}

// InjectCSS inserts a <style> block into HTML content.
// Tries </head> first, then <body>, then prepends to the HTML.
// The block lands after the document's own head styles, so request CSS wins
// ties in the cascade.
func (s *CSSInjection) InjectCSS(ctx context.Context, htmlContent, cssContent string) string {
	if cssContent == "" {
		return htmlContent
	}

	if ctx.Err() != nil {
		return htmlContent
	}

	styleBlock := "<style>" + sanitizeCSS(cssContent) + "</style>"
	lowerHTML := strings.ToLower(htmlContent)

	if idx := strings.Index(lowerHTML, "</head>"); idx != -1 {
		return htmlContent[:idx] + styleBlock + htmlContent[idx:]
	}

	if pos := afterOpeningTag(htmlContent, lowerHTML, "<body"); pos != -1 {
		return htmlContent[:pos] + styleBlock + htmlContent[pos:]
	}

	return styleBlock + htmlContent
}

// sanitizeCSS escapes sequences that could break out of a <style> block.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}

// BaseInjection injects a <base href> element into HTML content.
type BaseInjection struct{}

// InjectBase inserts <base href="baseURL"> as the first child of <head>,
// before any element whose URLs it must govern. Falls back to right after
// <html>, then to prepending. Documents that already declare a <base> are
// returned unchanged.
func (b *BaseInjection) InjectBase(ctx context.Context, htmlContent, baseURL string) string {
	if baseURL == "" || ctx.Err() != nil {
		return htmlContent
	}

	lowerHTML := strings.ToLower(htmlContent)
	if hasTag(lowerHTML, "<base") {
		return htmlContent
	}

	baseTag := `<base href="` + html.EscapeString(baseURL) + `">`

	for _, tag := range []string{"<head", "<html"} {
		if pos := afterOpeningTag(htmlContent, lowerHTML, tag); pos != -1 {
			return htmlContent[:pos] + baseTag + htmlContent[pos:]
		}
	}

	return baseTag + htmlContent
}

// afterOpeningTag returns the index just past the opening tag named by
// lowerTag (e.g. "<body"), or -1. Tags sharing a prefix ("<header" for
// "<head") are skipped.
func afterOpeningTag(htmlContent, lowerHTML, lowerTag string) int {
	offset := 0
	for {
		idx := strings.Index(lowerHTML[offset:], lowerTag)
		if idx == -1 {
			return -1
		}
		start := offset + idx
		end := start + len(lowerTag)
		if end < len(lowerHTML) && isTagNameEnd(lowerHTML[end]) {
			closeIdx := strings.IndexByte(htmlContent[end:], '>')
			if closeIdx == -1 {
				return -1
			}
			return end + closeIdx + 1
		}
		offset = end
	}
}

// hasTag reports whether lowerHTML contains the opening tag lowerTag.
func hasTag(lowerHTML, lowerTag string) bool {
	return afterOpeningTag(lowerHTML, lowerHTML, lowerTag) != -1
}

func isTagNameEnd(c byte) bool {
	switch c {
	case '>', ' ', '\t', '\n', '\r', '/':
		return true
	}
	return false
}
