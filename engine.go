package html2pdf

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-html2pdf/internal/process"
)

// document is one HTML document handed to the engine.
type document struct {
	HTML string
	// LocalBase makes relative references resolve against the fetcher's
	// base directory. Merged documents render without it.
	LocalBase bool
	Page      *PageSettings
}

// pdfEngine abstracts the HTML-to-PDF engine to enable testing without a browser.
type pdfEngine interface {
	RenderPDF(ctx context.Context, doc *document) ([]byte, error)
	Close() error
}

// Compile-time interface check.
var _ pdfEngine = (*rodEngine)(nil)

// rodEngine renders documents in headless Chrome via go-rod.
// Rod downloads Chromium on first run if no browser is found.
// Safe for concurrent use: each render gets its own page.
type rodEngine struct {
	fetcher *Fetcher
	logger  *log.Logger
	timeout time.Duration

	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
}

func newRodEngine(fetcher *Fetcher, logger *log.Logger, timeout time.Duration) *rodEngine {
	return &rodEngine{fetcher: fetcher, logger: logger, timeout: timeout}
}

// ensureBrowser lazily launches and connects to the browser.
func (e *rodEngine) ensureBrowser() (*rod.Browser, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.browser != nil {
		return e.browser, nil
	}

	l := launcher.New().Headless(true)

	// Use pre-installed browser if specified (Docker/containerized environments)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}

	// NoSandbox required for CI and containerized environments
	if os.Getenv("CI") == "true" || os.Getenv("ROD_BROWSER_BIN") != "" || os.Getenv("ROD_NO_SANDBOX") == "1" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	e.logger.Debug("browser started", "pid", l.PID())
	e.browser = browser
	e.launcher = l
	return browser, nil
}

// Close shuts the browser down and kills any leftover child processes.
func (e *rodEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.browser == nil {
		return nil
	}

	err := e.browser.Close()
	process.KillProcessGroup(e.launcher.PID())
	e.launcher.Cleanup()

	e.browser = nil
	e.launcher = nil
	return err
}

// RenderPDF loads doc into a fresh page and prints it.
// Every subresource request of the page is answered by the fetcher; the
// first fetch failure fails the render.
func (e *rodEngine) RenderPDF(ctx context.Context, doc *document) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	browser, err := e.ensureBrowser()
	if err != nil {
		return nil, err
	}

	// Timeout from context deadline or default
	timeout := e.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer page.Close()
	page = page.Context(ctx)

	hijacker := newResourceHijacker(ctx, e.fetcher, doc.LocalBase)
	router := page.HijackRequests()
	if err := router.Add("*", "", hijacker.handle); err != nil {
		return nil, fmt.Errorf("%w: installing request hijacking: %v", ErrPageCreate, err)
	}
	go router.Run()
	defer func() { _ = router.Stop() }()

	if err := page.SetDocumentContent(doc.HTML); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	if err := hijacker.Err(); err != nil {
		return nil, err
	}

	reader, err := page.PDF(buildPDFOptions(doc.Page))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}

	pdfBuf, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrPDFGeneration, err)
	}

	// Fonts and print-only resources are requested while printing.
	if err := hijacker.Err(); err != nil {
		return nil, err
	}

	return pdfBuf, nil
}

// buildPDFOptions constructs proto.PagePrintToPDF from page settings.
func buildPDFOptions(page *PageSettings) *proto.PagePrintToPDF {
	if page == nil {
		page = DefaultPageSettings()
	}
	width, height := page.dimensions()

	return &proto.PagePrintToPDF{
		PaperWidth:        floatPtr(width),
		PaperHeight:       floatPtr(height),
		MarginTop:         floatPtr(page.Margin),
		MarginBottom:      floatPtr(page.Margin),
		MarginLeft:        floatPtr(page.Margin),
		MarginRight:       floatPtr(page.Margin),
		PrintBackground:   true,
		PreferCSSPageSize: true,
	}
}

// floatPtr returns a pointer to a float64 value.
func floatPtr(v float64) *float64 {
	return &v
}
