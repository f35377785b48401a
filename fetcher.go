package html2pdf

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"
)

const fileScheme = "file://"

// DefaultMaxResourceBytes caps the size of one remote resource.
const DefaultMaxResourceBytes = 64 << 20

// maxRedirects matches the net/http default.
const maxRedirects = 10

// absoluteURLRE matches the scheme prefix of an absolute URI.
var absoluteURLRE = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9.+-]+:`)

// Loader performs the default fetch for URLs that passed the access policy.
type Loader interface {
	Load(ctx context.Context, rawURL string) (*FetchResult, error)
}

// Fetcher supplies the bytes of every resource the engine dereferences
// while rendering: stylesheets, images, fonts.
type Fetcher struct {
	policy  *AccessPolicy
	loader  Loader
	baseDir string
	logger  *log.Logger
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithBaseDir sets the directory relative file:// URLs resolve against.
// Defaults to the process working directory.
func WithBaseDir(dir string) FetcherOption {
	return func(f *Fetcher) {
		f.baseDir = dir
	}
}

// WithLoader replaces the default network loader.
func WithLoader(l Loader) FetcherOption {
	return func(f *Fetcher) {
		f.loader = l
	}
}

// WithFetcherLogger sets the logger used to report rejected and failed fetches.
func WithFetcherLogger(l *log.Logger) FetcherOption {
	return func(f *Fetcher) {
		f.logger = l
	}
}

// NewFetcher creates a Fetcher guarded by policy.
// A nil policy uses the default (fail-closed) patterns.
func NewFetcher(policy *AccessPolicy, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		policy: policy,
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.policy == nil {
		f.policy = NewAccessPolicy(nil, f.logger)
	}
	if f.loader == nil {
		f.loader = NewHTTPLoader(nil, f.policy)
	}
	if f.baseDir == "" {
		if wd, err := os.Getwd(); err == nil {
			f.baseDir = wd
		} else {
			f.baseDir = "."
		}
	}
	return f
}

// BaseDir returns the directory relative file:// URLs resolve against.
func (f *Fetcher) BaseDir() string {
	return f.baseDir
}

// Fetch resolves rawURL to its content.
//
// file:// URLs are read from disk without consulting the policy. Any other
// URL must be allowed by the policy or be a base64 data URL; it is then
// handed to the loader and its MIME type normalized.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*FetchResult, error) {
	if !absoluteURLRE.MatchString(rawURL) {
		f.logger.Warn("rejected resource URL", "url", rawURL, "reason", "not an absolute URI")
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}

	if hasPrefixFold(rawURL, fileScheme) {
		return f.fetchFile(rawURL)
	}

	if !f.policy.CheckAccess(rawURL) && !isBase64DataURL(rawURL) {
		f.logger.Warn("blocked resource URL", "url", rawURL)
		return nil, fmt.Errorf("%w: %s", ErrAccessDenied, rawURL)
	}

	res, err := f.loader.Load(ctx, rawURL)
	if err != nil {
		f.logger.Warn("fetching resource failed", "url", rawURL, "err", err)
		return nil, err
	}
	res.MIMEType = normalizeMIMEType(res.MIMEType, rawURL)
	f.logger.Debug("fetched resource", "url", rawURL, "mime", res.MIMEType, "bytes", res.Content.Len())
	return res, nil
}

// fetchFile loads a file:// URL relative to the base directory.
func (f *Fetcher) fetchFile(rawURL string) (*FetchResult, error) {
	p := rawURL[len(fileScheme):]
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	p = strings.TrimPrefix(p, "localhost/")
	if unescaped, err := url.PathUnescape(p); err == nil {
		p = unescaped
	}

	p = filepath.FromSlash(p)
	if !filepath.IsAbs(p) {
		p = filepath.Join(f.baseDir, p)
	}

	file, err := os.Open(p) // #nosec G304 -- local files are trusted by design of the file:// scheme
	if err != nil {
		f.logger.Warn("local resource not found", "url", rawURL, "path", p)
		return nil, fmt.Errorf("%w: %s", ErrNotFound, rawURL)
	}
	info, err := file.Stat()
	if err != nil || info.IsDir() {
		_ = file.Close()
		f.logger.Warn("local resource not readable", "url", rawURL, "path", p)
		return nil, fmt.Errorf("%w: %s", ErrNotFound, rawURL)
	}

	return newFileResult(guessMIMEType(p), file, info.Size()), nil
}

// normalizeMIMEType replaces a missing or generic text/plain type with the
// type guessed from the URL extension.
func normalizeMIMEType(reported, rawURL string) string {
	base := reported
	if mediaType, _, err := mime.ParseMediaType(reported); err == nil {
		base = mediaType
	}
	if base != "" && base != "text/plain" {
		return reported
	}

	if u, err := url.Parse(rawURL); err == nil {
		if guessed := guessMIMEType(u.Path); guessed != "" {
			return guessed
		}
	}
	if reported == "" {
		return "application/octet-stream"
	}
	return reported
}

// guessMIMEType maps a file name extension to a MIME type, or "".
func guessMIMEType(name string) string {
	return mime.TypeByExtension(path.Ext(filepath.ToSlash(name)))
}

// HTTPLoader is the default Loader: data URLs are decoded in place and
// everything else is fetched with an HTTP GET.
type HTTPLoader struct {
	client   *http.Client
	maxBytes int64
}

// NewHTTPLoader creates an HTTPLoader. A nil client uses http.DefaultClient.
// With a non-nil policy every redirect target must pass the policy too; the
// client is copied, not modified.
func NewHTTPLoader(client *http.Client, policy *AccessPolicy) *HTTPLoader {
	if client == nil {
		client = http.DefaultClient
	}
	if policy != nil {
		client = guardRedirects(client, policy)
	}
	return &HTTPLoader{client: client, maxBytes: DefaultMaxResourceBytes}
}

// guardRedirects returns a copy of client that refuses redirects to URLs the
// policy denies. The client's own redirect check still runs afterwards.
func guardRedirects(client *http.Client, policy *AccessPolicy) *http.Client {
	guarded := *client
	next := client.CheckRedirect
	guarded.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		target := req.URL.String()
		if !policy.CheckAccess(target) {
			return fmt.Errorf("%w: redirect to %s", ErrAccessDenied, target)
		}
		if next != nil {
			return next(req, via)
		}
		if len(via) >= maxRedirects {
			return fmt.Errorf("stopped after %d redirects", maxRedirects)
		}
		return nil
	}
	return &guarded
}

// Compile-time interface check.
var _ Loader = (*HTTPLoader)(nil)

// Load fetches rawURL. Responses outside the 2xx range fail with ErrFetch,
// 404 with ErrNotFound.
func (l *HTTPLoader) Load(ctx context.Context, rawURL string) (*FetchResult, error) {
	if hasPrefixFold(rawURL, dataScheme) {
		mediaType, data, err := decodeDataURL(rawURL)
		if err != nil {
			return nil, err
		}
		return NewBytesResult(mediaType, "", data), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFetch, rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, rawURL)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s: status %d", ErrFetch, rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, l.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: reading body: %v", ErrFetch, rawURL, err)
	}
	if int64(len(body)) > l.maxBytes {
		return nil, fmt.Errorf("%w: %s: exceeds %d bytes", ErrFetch, rawURL, l.maxBytes)
	}

	return NewBytesResult(resp.Header.Get("Content-Type"), path.Base(resp.Request.URL.Path), body), nil
}
