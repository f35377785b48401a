package html2pdf

import "errors"

// Sentinel errors for library operations.
var (
	ErrEmptyHTML     = errors.New("HTML content cannot be empty")
	ErrNoDocuments   = errors.New("no documents to merge")
	ErrTemplate      = errors.New("template substitution failed")
	ErrTemplateData  = errors.New("template data must be a JSON object")
	ErrRender        = errors.New("rendering failed")
	ErrMerge         = errors.New("PDF merge failed")
	ErrPDFGeneration = errors.New("PDF generation failed")

	// Browser errors.
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")

	// Resource fetching errors.
	ErrInvalidURL   = errors.New("invalid URL")
	ErrNotFound     = errors.New("resource not found")
	ErrAccessDenied = errors.New("access denied")
	ErrFetch        = errors.New("fetching resource failed")

	// ErrConfig reports an access pattern that does not compile.
	// CheckAccess logs it and denies the URL.
	ErrConfig = errors.New("invalid access pattern")

	// Page settings validation errors.
	ErrInvalidPageSize    = errors.New("invalid page size")
	ErrInvalidOrientation = errors.New("invalid orientation")
	ErrInvalidMargin      = errors.New("invalid margin")
)
