// Package server exposes the renderer over HTTP.
//
// # Routes
//
//	GET  /health          liveness probe, answers "ok"
//	GET  /                usage page
//	POST /pdf             render one templated document (form: html, css, payload)
//	POST /multiple        render a JSON array of documents into one PDF
//	POST /upload          store the raw body under the "filename" header
//	GET  /media/{path}    serve a stored upload
//
// Rendering routes require the X_API_KEY header. Without a configured key
// they answer 401, unless auth.disabled opens them. Uploads are open unless
// auth.protectUpload is set.
//
// # Errors
//
// Failures are answered as JSON {"error": "<message>"} with a status derived
// from the error chain: 400 malformed input, 401 missing or wrong key, 404
// unknown media, 413 oversized body, 503 shutting down, 500 otherwise.
package server
