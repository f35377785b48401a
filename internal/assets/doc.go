// Package assets provides the static pages served by the HTTP surface.
//
// Pages are embedded at compile time under pages/ and loaded by name,
// without the .html extension:
//
//	page, err := assets.LoadPage("index")
//
// # Security
//
// Page names are validated to prevent path traversal attacks.
package assets
