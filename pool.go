package html2pdf

import (
	"context"
	"errors"
	"runtime"
	"sync"
)

// Pool sizing constants.
const (
	// MinPoolSize ensures at least one worker is available.
	MinPoolSize = 1

	// MaxPoolSize caps browser instances to limit memory (~200MB each).
	MaxPoolSize = 8

	// cpuDivisor leaves headroom for Chrome child processes.
	cpuDivisor = 2
)

// ErrPoolClosed is returned by Acquire after Close.
var ErrPoolClosed = errors.New("renderer pool is closed")

// RendererPool manages a pool of Renderer instances for parallel requests.
// Each renderer has its own browser instance.
// Renderers are created lazily on first acquire to avoid startup delay.
type RendererPool struct {
	size      int
	newFn     func() (*Renderer, error)
	renderers []*Renderer
	sem       chan *Renderer
	mu        sync.Mutex
	created   int
	closed    bool
	done      chan struct{}
}

// NewRendererPool creates a pool with capacity for n renderers built with opts.
// Renderers are created when acquired, not at pool creation.
func NewRendererPool(n int, opts ...Option) *RendererPool {
	return newRendererPool(n, func() (*Renderer, error) {
		return NewRenderer(opts...)
	})
}

func newRendererPool(n int, newFn func() (*Renderer, error)) *RendererPool {
	if n < 1 {
		n = 1
	}

	return &RendererPool{
		size:      n,
		newFn:     newFn,
		renderers: make([]*Renderer, 0, n),
		sem:       make(chan *Renderer, n),
		done:      make(chan struct{}),
	}
}

// Acquire gets a renderer from the pool, creating one if needed.
// Blocks until a renderer is released, ctx is done or the pool is closed.
func (p *RendererPool) Acquire(ctx context.Context) (*Renderer, error) {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return nil, ErrPoolClosed
	}

	// Try to get an existing renderer (non-blocking)
	select {
	case r := <-p.sem:
		return r, nil
	default:
	}

	// Check if we can create a new renderer
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrPoolClosed
	}
	if p.created < p.size {
		p.created++
		p.mu.Unlock()

		// Create new renderer outside the lock
		r, err := p.newFn()
		if err != nil {
			p.mu.Lock()
			p.created--
			p.mu.Unlock()
			return nil, err
		}

		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			_ = r.Close()
			return nil, ErrPoolClosed
		}
		p.renderers = append(p.renderers, r)
		p.mu.Unlock()

		return r, nil
	}
	p.mu.Unlock()

	// All renderers created, wait for one to be released
	select {
	case r := <-p.sem:
		return r, nil
	case <-p.done:
		return nil, ErrPoolClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Release returns a renderer to the pool.
// The lock is held while sending: the channel has room for every renderer,
// so the send never blocks.
func (p *RendererPool) Release(r *Renderer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.sem <- r
}

// Close releases all browser resources.
// Returns an aggregated error if multiple renderers fail to close.
func (p *RendererPool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.done)
	renderers := p.renderers
	p.mu.Unlock()

	var errs []error
	for _, r := range renderers {
		if err := r.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RenderOne renders req on a pooled renderer.
func (p *RendererPool) RenderOne(ctx context.Context, req RenderRequest) ([]byte, error) {
	r, err := p.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer p.Release(r)
	return r.RenderOne(ctx, req)
}

// RenderMerged renders and merges docs on a pooled renderer.
func (p *RendererPool) RenderMerged(ctx context.Context, docs []string) ([]byte, error) {
	r, err := p.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer p.Release(r)
	return r.RenderMerged(ctx, docs)
}

// Size returns the pool capacity.
func (p *RendererPool) Size() int {
	return p.size
}

// ResolvePoolSize determines the optimal pool size.
// Priority: explicit workers > GOMAXPROCS-based calculation.
func ResolvePoolSize(workers int) int {
	// Explicit value takes priority
	if workers > 0 {
		return workers
	}

	// Auto-calculate based on GOMAXPROCS (adjusted by automaxprocs for containers)
	available := runtime.GOMAXPROCS(0)
	n := available / cpuDivisor

	if n < MinPoolSize {
		return MinPoolSize
	}
	if n > MaxPoolSize {
		return MaxPoolSize
	}
	return n
}
