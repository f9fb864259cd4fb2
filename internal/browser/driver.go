// Package browser defines the browser driver consumed by actions and the runner,
// and provides its chromedp implementation.
package browser

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/storyline/storyline/internal/config"
)

// Driver is a browser session. A driver is used by one scenario at a time;
// StartTest and StopTest bracket each scenario.
type Driver interface {
	// StartTest opens a session whose relative URLs resolve against baseURL.
	StartTest(ctx context.Context, baseURL string) error
	// StopTest releases the session. Safe to call when no session is open.
	StopTest() error

	PageOpen(ctx context.Context, url string) error
	// WaitForPage blocks until the document is ready. A zero timeout uses
	// the driver default.
	WaitForPage(ctx context.Context, timeout time.Duration) error
	Title(ctx context.Context) (string, error)
	HTMLSource(ctx context.Context) (string, error)
}

// Factory creates an unstarted driver for the given settings.
type Factory func(settings *config.Settings) (Driver, error)

// ErrNotStarted is returned by page operations outside StartTest/StopTest.
var ErrNotStarted = fmt.Errorf("browser session not started")

// ResolveURL joins target onto base. Absolute targets are returned unchanged.
func ResolveURL(base, target string) (string, error) {
	t, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", target, err)
	}
	if t.IsAbs() || base == "" {
		return t.String(), nil
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	b, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid base url %q: %w", base, err)
	}
	return b.ResolveReference(t).String(), nil
}
