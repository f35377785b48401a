package html2pdf

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// LocalBaseURL is the <base href> of single-document renders. Chrome resolves
// relative references against it; the hijacker maps the resulting requests to
// file:// URLs under the fetcher's base directory.
const LocalBaseURL = "http://html2pdf.local/"

// resourceHijacker answers the paused requests of one page from a Fetcher.
type resourceHijacker struct {
	ctx       context.Context
	fetcher   *Fetcher
	localBase bool

	mu  sync.Mutex
	err error
}

func newResourceHijacker(ctx context.Context, fetcher *Fetcher, localBase bool) *resourceHijacker {
	return &resourceHijacker{ctx: ctx, fetcher: fetcher, localBase: localBase}
}

// handle is the rod hijack handler for every request of the page.
func (h *resourceHijacker) handle(hj *rod.Hijack) {
	target := hj.Request.URL().String()
	if h.localBase {
		target = localFileURL(target)
	}

	body, mimeType, err := h.load(target)
	if err != nil {
		h.record(err)
		hj.Response.Fail(failureReason(err))
		return
	}

	hj.Response.SetHeader("Content-Type", mimeType)
	hj.Response.SetBody(body)
}

// load fetches target and reads its content, releasing the stream afterwards.
func (h *resourceHijacker) load(target string) ([]byte, string, error) {
	res, err := h.fetcher.Fetch(h.ctx, target)
	if err != nil {
		return nil, "", err
	}
	defer func() { _ = res.Release() }()

	body, err := res.ReadAll()
	if err != nil {
		return nil, "", fmt.Errorf("%w: %s: %v", ErrFetch, target, err)
	}
	return body, res.MIMEType, nil
}

// record keeps the first fetch error.
func (h *resourceHijacker) record(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.err == nil {
		h.err = err
	}
}

// Err returns the first fetch error seen by the page, if any.
func (h *resourceHijacker) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

// localFileURL rewrites a URL under LocalBaseURL to a file:// URL relative to
// the base directory. Other URLs are returned unchanged.
func localFileURL(rawURL string) string {
	rest, ok := strings.CutPrefix(rawURL, LocalBaseURL)
	if !ok {
		return rawURL
	}
	return fileScheme + "./" + rest
}

// failureReason maps a fetch error to the network error Chrome reports.
func failureReason(err error) proto.NetworkErrorReason {
	switch {
	case errors.Is(err, ErrAccessDenied):
		return proto.NetworkErrorReasonAccessDenied
	case errors.Is(err, ErrInvalidURL):
		return proto.NetworkErrorReasonBlockedByClient
	case errors.Is(err, context.DeadlineExceeded):
		return proto.NetworkErrorReasonTimedOut
	default:
		return proto.NetworkErrorReasonFailed
	}
}
