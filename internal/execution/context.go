// Package execution provides the per-run state handed to every action:
// settings, the browser session, the page table and the language catalog.
package execution

import (
	"fmt"
	"strings"

	"github.com/storyline/storyline/internal/browser"
	"github.com/storyline/storyline/internal/config"
	"github.com/storyline/storyline/internal/language"
)

// DefaultBaseURL is used when the settings leave base_url empty.
const DefaultBaseURL = "http://localhost"

// Page is a named page registered in the settings.
type Page struct {
	Name string
	URL  string
}

// Context is the state of one run. A context is owned by a single
// goroutine at a time and is never shared between concurrently running
// scenarios.
type Context struct {
	Settings *config.Settings
	Browser  browser.Driver
	Language *language.Catalog

	Pages       map[string]*Page
	CurrentPage *Page
	CurrentURL  string
}

// New creates a context over an unstarted driver.
func New(settings *config.Settings, driver browser.Driver, catalog *language.Catalog) *Context {
	pages := make(map[string]*Page, len(settings.Pages))
	for name, url := range settings.Pages {
		pages[normalizePageName(name)] = &Page{Name: name, URL: url}
	}
	return &Context{
		Settings: settings,
		Browser:  driver,
		Language: catalog,
		Pages:    pages,
	}
}

// BaseURL returns the configured base URL, or DefaultBaseURL when empty.
func (c *Context) BaseURL() string {
	if c.Settings != nil && c.Settings.BaseURL != "" {
		return c.Settings.BaseURL
	}
	return DefaultBaseURL
}

// Page looks up a registered page. Spaces in name are ignored, so
// "search results" finds a page registered as "searchresults".
func (c *Context) Page(name string) (*Page, bool) {
	p, ok := c.Pages[normalizePageName(name)]
	return p, ok
}

func normalizePageName(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, " ", ""))
}

// Factory creates a fresh context for the given settings.
type Factory func(settings *config.Settings) (*Context, error)

// NewFactory returns a Factory that gives each context its own driver from
// drivers. When catalog is nil the catalog named by the settings is loaded.
func NewFactory(drivers browser.Factory, catalog *language.Catalog) Factory {
	return func(settings *config.Settings) (*Context, error) {
		driver, err := drivers(settings)
		if err != nil {
			return nil, fmt.Errorf("create browser driver: %w", err)
		}

		cat := catalog
		if cat == nil {
			cat, err = language.Load(settings.Language)
			if err != nil {
				return nil, err
			}
		}
		return New(settings, driver, cat), nil
	}
}
