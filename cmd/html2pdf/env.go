package main

import (
	"context"
	"io"
	"os"

	html2pdf "github.com/alnah/go-html2pdf"
)

// documentRenderer is the part of html2pdf.Renderer the render and merge
// commands use.
type documentRenderer interface {
	RenderOne(ctx context.Context, req html2pdf.RenderRequest) ([]byte, error)
	RenderMerged(ctx context.Context, docs []string) ([]byte, error)
	Close() error
}

// Compile-time interface check.
var _ documentRenderer = (*html2pdf.Renderer)(nil)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Stdout      io.Writer
	Stderr      io.Writer
	NewRenderer func(opts ...html2pdf.Option) (documentRenderer, error)
}

// DefaultEnv returns the production environment backed by headless Chrome.
func DefaultEnv() *Environment {
	return &Environment{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		NewRenderer: func(opts ...html2pdf.Option) (documentRenderer, error) {
			return html2pdf.NewRenderer(opts...)
		},
	}
}
