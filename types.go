package html2pdf

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Page size constants.
const (
	PageSizeLetter = "letter"
	PageSizeA4     = "a4"
	PageSizeLegal  = "legal"
)

// Orientation constants.
const (
	OrientationPortrait  = "portrait"
	OrientationLandscape = "landscape"
)

// Margin bounds in inches.
const (
	MinMargin     = 0.0
	MaxMargin     = 3.0
	DefaultMargin = 0.5
)

// PageSettings configures PDF page dimensions.
// CSS @page rules in the rendered document take precedence.
// Empty Size and Orientation fall back to A4 portrait.
type PageSettings struct {
	Size        string  // "letter", "a4", "legal"
	Orientation string  // "portrait", "landscape"
	Margin      float64 // inches, applied to all sides
}

// DefaultPageSettings returns A4 portrait with half-inch margins.
func DefaultPageSettings() *PageSettings {
	return &PageSettings{
		Size:        PageSizeA4,
		Orientation: OrientationPortrait,
		Margin:      DefaultMargin,
	}
}

// Validate checks that page settings are valid.
// Returns nil if p is nil (nil means use defaults).
func (p *PageSettings) Validate() error {
	if p == nil {
		return nil
	}

	if p.Size != "" {
		if _, _, ok := paperSize(p.Size); !ok {
			return fmt.Errorf("%w: %q", ErrInvalidPageSize, p.Size)
		}
	}

	switch strings.ToLower(p.Orientation) {
	case "", OrientationPortrait, OrientationLandscape:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidOrientation, p.Orientation)
	}

	if p.Margin < MinMargin || p.Margin > MaxMargin {
		return fmt.Errorf("%w: %.2f (must be between %.2f and %.2f)", ErrInvalidMargin, p.Margin, MinMargin, MaxMargin)
	}

	return nil
}

// dimensions returns paper width and height in inches, orientation applied.
func (p *PageSettings) dimensions() (width, height float64) {
	size := p.Size
	if size == "" {
		size = PageSizeA4
	}
	width, height, _ = paperSize(size)
	if strings.EqualFold(p.Orientation, OrientationLandscape) {
		return height, width
	}
	return width, height
}

// paperSize returns portrait dimensions in inches (case-insensitive).
func paperSize(size string) (width, height float64, ok bool) {
	switch strings.ToLower(size) {
	case PageSizeLetter:
		return 8.5, 11, true
	case PageSizeA4:
		return 8.27, 11.69, true
	case PageSizeLegal:
		return 8.5, 14, true
	}
	return 0, 0, false
}

// RenderRequest is one single-document render.
type RenderRequest struct {
	HTML     string         // Template text (required)
	Context  map[string]any // Template substitution values (optional)
	CSS      string         // Stylesheet applied on top of the document (optional)
	Filename string         // Output name, used for logging
	Page     *PageSettings  // nil = renderer defaults
}

// Option configures a Renderer.
type Option func(*Renderer)

// rendererConfig holds internal configuration for Renderer.
type rendererConfig struct {
	timeout          time.Duration
	page             *PageSettings
	mergeConcurrency int
}

// Defaults used when no option overrides them.
const (
	defaultTimeout          = 30 * time.Second
	defaultMergeConcurrency = 4
)

// WithTimeout sets the per-document load and print timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("html2pdf: WithTimeout duration must be positive")
	}
	return func(r *Renderer) {
		r.cfg.timeout = d
	}
}

// WithPageSettings sets the default page settings for every render.
func WithPageSettings(p *PageSettings) Option {
	return func(r *Renderer) {
		r.cfg.page = p
	}
}

// WithFetcher sets the fetcher answering the engine's resource requests.
// Without it, a Fetcher with the default (fail-closed) policy is used.
func WithFetcher(f *Fetcher) Option {
	return func(r *Renderer) {
		r.fetcher = f
	}
}

// WithLogger sets the renderer logger.
func WithLogger(l *log.Logger) Option {
	return func(r *Renderer) {
		r.logger = l
	}
}

// WithMergeConcurrency bounds how many documents of one merge render at once.
// Values < 1 are treated as 1.
func WithMergeConcurrency(n int) Option {
	return func(r *Renderer) {
		r.cfg.mergeConcurrency = max(n, 1)
	}
}
