// Package mocks provides shared test doubles for storyline packages.
package mocks

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/storyline/storyline/internal/browser"
	"github.com/storyline/storyline/internal/config"
)

// Page is the content served by Browser for one URL.
type Page struct {
	Title string
	HTML  string
}

// Browser implements browser.Driver in memory.
// Use NewBrowser() to create instances with a fluent builder API.
type Browser struct {
	mu      sync.Mutex
	pages   map[string]Page
	started bool
	baseURL string
	current string
	calls   []string

	// StartErr, when set, is returned by StartTest.
	StartErr error
	// OpenErr, when set, is returned by PageOpen.
	OpenErr error

	startCount int32
	stopCount  int32
}

// NewBrowser creates an empty in-memory browser.
func NewBrowser() *Browser {
	return &Browser{pages: make(map[string]Page)}
}

// WithPage serves title and html at url (resolved against the session base URL).
func (b *Browser) WithPage(url, title, html string) *Browser {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pages[url] = Page{Title: title, HTML: html}
	return b
}

// WithStartErr makes StartTest fail.
func (b *Browser) WithStartErr(err error) *Browser {
	b.StartErr = err
	return b
}

// Factory returns a browser.Factory that always hands out b.
func (b *Browser) Factory() browser.Factory {
	return func(*config.Settings) (browser.Driver, error) {
		return b, nil
	}
}

// browser.Driver interface implementation

func (b *Browser) StartTest(_ context.Context, baseURL string) error {
	atomic.AddInt32(&b.startCount, 1)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, "start "+baseURL)
	if b.StartErr != nil {
		return b.StartErr
	}
	b.started = true
	b.baseURL = baseURL
	return nil
}

func (b *Browser) StopTest() error {
	atomic.AddInt32(&b.stopCount, 1)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, "stop")
	b.started = false
	b.current = ""
	return nil
}

func (b *Browser) PageOpen(_ context.Context, url string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, "open "+url)
	if !b.started {
		return browser.ErrNotStarted
	}
	if b.OpenErr != nil {
		return b.OpenErr
	}
	resolved, err := browser.ResolveURL(b.baseURL, url)
	if err != nil {
		return err
	}
	b.current = resolved
	return nil
}

func (b *Browser) WaitForPage(_ context.Context, timeout time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if timeout > 0 {
		b.calls = append(b.calls, "wait "+timeout.String())
	} else {
		b.calls = append(b.calls, "wait")
	}
	if !b.started {
		return browser.ErrNotStarted
	}
	return nil
}

func (b *Browser) Title(context.Context) (string, error) {
	p, err := b.page()
	return p.Title, err
}

func (b *Browser) HTMLSource(context.Context) (string, error) {
	p, err := b.page()
	return p.HTML, err
}

func (b *Browser) page() (Page, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.started {
		return Page{}, browser.ErrNotStarted
	}
	if b.current == "" {
		return Page{}, errors.New("no page open")
	}
	p, ok := b.pages[b.current]
	if !ok {
		return Page{}, errors.New("404 " + b.current)
	}
	return p, nil
}

// Test inspection methods

// Calls returns the driver calls in order.
func (b *Browser) Calls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	result := make([]string, len(b.calls))
	copy(result, b.calls)
	return result
}

// StartCount returns the number of StartTest calls.
func (b *Browser) StartCount() int32 { return atomic.LoadInt32(&b.startCount) }

// StopCount returns the number of StopTest calls.
func (b *Browser) StopCount() int32 { return atomic.LoadInt32(&b.stopCount) }

// Started reports whether a session is open.
func (b *Browser) Started() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.started
}

// CurrentURL returns the last opened URL.
func (b *Browser) CurrentURL() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

var _ browser.Driver = (*Browser)(nil)
