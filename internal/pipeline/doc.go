// Package pipeline prepares HTML documents before they reach the browser.
//
// Two injections run on single-document renders:
//   - the request stylesheet as a <style> block at the end of <head>
//   - a <base href> so relative references resolve against a known origin
//
// Template substitution and PDF printing are handled by the root html2pdf
// package. This package only edits markup as text and never parses it: the
// browser remains the only HTML parser in the pipeline.
package pipeline
