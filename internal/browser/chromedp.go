package browser

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/storyline/storyline/internal/config"
)

// Chrome drives a Chrome instance through the DevTools protocol. When a
// remote URL is configured it attaches to that browser, otherwise it
// launches a local one per session.
type Chrome struct {
	remoteURL   string
	headless    bool
	pageTimeout time.Duration
	debug       bool

	mu      sync.Mutex
	ctx     context.Context
	cancels []context.CancelFunc
	baseURL string
}

// NewChrome creates an unstarted Chrome driver.
func NewChrome(settings *config.Settings) *Chrome {
	return &Chrome{
		remoteURL:   settings.Browser.RemoteURL,
		headless:    settings.Browser.IsHeadless(),
		pageTimeout: settings.Browser.PageTimeout,
	}
}

// ChromeFactory returns a Factory producing Chrome drivers. With debug set,
// chromedp protocol logs go to the standard logger.
func ChromeFactory(debug bool) Factory {
	return func(settings *config.Settings) (Driver, error) {
		d := NewChrome(settings)
		d.debug = debug
		return d, nil
	}
}

func (c *Chrome) StartTest(ctx context.Context, baseURL string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ctx != nil {
		return fmt.Errorf("browser session already started")
	}

	var allocCtx context.Context
	var allocCancel context.CancelFunc
	if c.remoteURL != "" {
		allocCtx, allocCancel = chromedp.NewRemoteAllocator(ctx, c.remoteURL)
	} else {
		opts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", c.headless),
		)
		allocCtx, allocCancel = chromedp.NewExecAllocator(ctx, opts...)
	}

	var ctxOpts []chromedp.ContextOption
	if c.debug {
		ctxOpts = append(ctxOpts, chromedp.WithLogf(log.Printf), chromedp.WithErrorf(log.Printf))
	}
	tabCtx, tabCancel := chromedp.NewContext(allocCtx, ctxOpts...)

	// The first Run allocates the browser tab; start from a clean cookie jar.
	if err := chromedp.Run(tabCtx, network.ClearBrowserCookies()); err != nil {
		tabCancel()
		allocCancel()
		return fmt.Errorf("failed to start browser session: %w", err)
	}

	c.ctx = tabCtx
	c.cancels = []context.CancelFunc{tabCancel, allocCancel}
	c.baseURL = baseURL
	return nil
}

func (c *Chrome) StopTest() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ctx == nil {
		return nil
	}
	// Cancelling the tab context closes the tab (or the launched browser).
	err := chromedp.Cancel(c.ctx)
	for _, cancel := range c.cancels {
		cancel()
	}
	c.ctx = nil
	c.cancels = nil
	c.baseURL = ""
	if err != nil && err != context.Canceled {
		return fmt.Errorf("failed to stop browser session: %w", err)
	}
	return nil
}

// run executes actions in the session, bounded by the caller's context.
func (c *Chrome) run(ctx context.Context, actions ...chromedp.Action) error {
	c.mu.Lock()
	tabCtx := c.ctx
	c.mu.Unlock()
	if tabCtx == nil {
		return ErrNotStarted
	}

	// Propagate the caller's cancellation into the session context.
	runCtx, cancel := context.WithCancel(tabCtx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}

func (c *Chrome) PageOpen(ctx context.Context, target string) error {
	c.mu.Lock()
	base := c.baseURL
	c.mu.Unlock()

	resolved, err := ResolveURL(base, target)
	if err != nil {
		return err
	}
	return c.run(ctx, chromedp.Navigate(resolved))
}

func (c *Chrome) WaitForPage(ctx context.Context, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = c.pageTimeout
	}
	return c.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		waitCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return chromedp.WaitReady("body", chromedp.ByQuery).Do(waitCtx)
	}))
}

func (c *Chrome) Title(ctx context.Context) (string, error) {
	var title string
	if err := c.run(ctx, chromedp.Title(&title)); err != nil {
		return "", err
	}
	return title, nil
}

func (c *Chrome) HTMLSource(ctx context.Context) (string, error) {
	var html string
	if err := c.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return html, nil
}
