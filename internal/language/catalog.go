// Package language provides the localized string catalogs used by the story
// parser and by actions: step keywords, step phrase patterns and failure
// message templates.
package language

import (
	"embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed catalogs/*.yaml
var catalogFS embed.FS

// Catalog files in the order the matcher prefers them.
var catalogs = []struct {
	tag  language.Tag
	file string
}{
	{language.AmericanEnglish, "catalogs/en-us.yaml"},
	{language.BrazilianPortuguese, "catalogs/pt-br.yaml"},
}

var (
	matcher     language.Matcher
	matcherOnce sync.Once
)

func getMatcher() language.Matcher {
	matcherOnce.Do(func() {
		tags := make([]language.Tag, len(catalogs))
		for i, c := range catalogs {
			tags[i] = c.tag
		}
		matcher = language.NewMatcher(tags)
	})
	return matcher
}

// Catalog holds the strings of one language.
type Catalog struct {
	Tag     language.Tag
	entries map[string]string
}

// Load returns the catalog best matching name (a BCP 47 tag such as "en-us").
// Regional variants fall back to the closest supported catalog.
func Load(name string) (*Catalog, error) {
	tag, err := language.Parse(name)
	if err != nil {
		return nil, fmt.Errorf("unknown language %q: %w", name, err)
	}

	_, index, confidence := getMatcher().Match(tag)
	if confidence == language.No {
		return nil, fmt.Errorf("language %q is not supported (available: %s)", name, strings.Join(Available(), ", "))
	}

	return loadFile(catalogs[index].tag, catalogs[index].file)
}

// MustLoad is like Load but panics on error. Intended for tests.
func MustLoad(name string) *Catalog {
	c, err := Load(name)
	if err != nil {
		panic(err)
	}
	return c
}

func loadFile(tag language.Tag, file string) (*Catalog, error) {
	data, err := catalogFS.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	entries := make(map[string]string)
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", file, err)
	}

	return &Catalog{
		Tag:     tag,
		entries: entries,
	}, nil
}

// Available lists the supported language tags, lowercased.
func Available() []string {
	names := make([]string, len(catalogs))
	for i, c := range catalogs {
		names[i] = strings.ToLower(c.tag.String())
	}
	sort.Strings(names)
	return names
}

// Get returns the entry for key, or an empty string when it is missing.
func (c *Catalog) Get(key string) string {
	return c.entries[key]
}

// Has reports whether key is defined.
func (c *Catalog) Has(key string) bool {
	_, ok := c.entries[key]
	return ok
}

// Format fills the template stored under key. Missing keys render the key
// itself so a broken catalog still produces a readable message.
func (c *Catalog) Format(key string, args ...interface{}) string {
	tmpl, ok := c.entries[key]
	if !ok {
		return fmt.Sprintf("%s %v", key, args)
	}
	return fmt.Sprintf(tmpl, args...)
}

// Keyword returns a story keyword in title case for display ("Given", "Dado que").
func (c *Catalog) Keyword(key string) string {
	// Casers are stateful; catalogs are shared across workers.
	return cases.Title(c.Tag).String(c.Get(key))
}
