// Package integration contains end-to-end tests that load the fixture
// projects under test/fixtures and run them against an in-memory browser.
package integration

import (
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/storyline/storyline/internal/actions"
	"github.com/storyline/storyline/internal/browser"
	"github.com/storyline/storyline/internal/config"
	"github.com/storyline/storyline/internal/execution"
	"github.com/storyline/storyline/internal/language"
	"github.com/storyline/storyline/internal/model"
	"github.com/storyline/storyline/internal/story"
	"github.com/storyline/storyline/internal/testing/mocks"
)

var (
	fixturesDirOnce sync.Once
	fixturesDirPath string
)

// fixturesDir returns the path to the test fixtures directory.
func fixturesDir() string {
	fixturesDirOnce.Do(func() {
		_, filename, _, _ := runtime.Caller(0)
		fixturesDirPath = filepath.Join(filepath.Dir(filename), "..", "fixtures")
	})
	return fixturesDirPath
}

// site is the content served for a fixture project.
type site map[string][2]string

var shopSite = site{
	"http://shop.test/":       {"Shop", "<html><body><h1>Welcome</h1></body></html>"},
	"http://shop.test/cart":   {"Cart", "<html><body><ul></ul></body></html>"},
	"http://shop.test/search": {"Search", "<html><body><form></form></body></html>"},
}

var lojaSite = site{
	"http://loja.test/": {"Loja", "<html><body><h1>Bem-vindo</h1></body></html>"},
}

// drivers returns a browser factory handing out a fresh in-memory browser
// serving s, recording every browser it creates.
func (s site) drivers(created *[]*mocks.Browser, mu *sync.Mutex) browser.Factory {
	return func(*config.Settings) (browser.Driver, error) {
		b := mocks.NewBrowser()
		for url, p := range s {
			b.WithPage(url, p[0], p[1])
		}
		if created != nil {
			mu.Lock()
			*created = append(*created, b)
			mu.Unlock()
		}
		return b, nil
	}
}

// project is a loaded fixture project.
type project struct {
	settings *config.Settings
	catalog  *language.Catalog
	fixture  *model.Fixture
}

// loadProject loads settings, language and stories of a fixture project.
func loadProject(t *testing.T, name string) *project {
	t.Helper()
	t.Setenv(config.EnvWorkers, "")
	t.Setenv(config.EnvBaseURL, "")

	path := filepath.Join(fixturesDir(), name, config.FileName)
	settings, warnings, err := config.LoadAndValidate(path)
	if err != nil {
		t.Fatalf("LoadAndValidate(%s) error = %v", name, err)
	}
	if len(warnings) > 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
	settings.Resolve(path)

	catalog, err := language.Load(settings.Language)
	if err != nil {
		t.Fatal(err)
	}
	registry, err := actions.NewRegistry(catalog)
	if err != nil {
		t.Fatal(err)
	}
	fixture, err := story.LoadFixture(settings.Tests.Directory, settings.Tests.Pattern, story.NewParser(registry))
	if err != nil {
		t.Fatalf("LoadFixture() error = %v", err)
	}
	return &project{settings: settings, catalog: catalog, fixture: fixture}
}

func (p *project) factory(s site, created *[]*mocks.Browser, mu *sync.Mutex) execution.Factory {
	return execution.NewFactory(s.drivers(created, mu), p.catalog)
}

// statuses flattens the action outcomes of a fixture for comparison.
func statuses(f *model.Fixture) []string {
	var out []string
	for _, sc := range f.Scenarios() {
		for _, a := range sc.Actions() {
			out = append(out, filepath.Base(sc.Story.Identity)+"#"+a.Description+"="+a.Status().String())
		}
	}
	return out
}
