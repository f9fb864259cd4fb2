// Package actions maps story step phrases to executable actions.
//
// Each action definition names a pattern in the language catalog. The
// registry compiles the patterns of one catalog and resolves phrases into
// model actions with their captured arguments bound.
package actions

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/storyline/storyline/internal/language"
	"github.com/storyline/storyline/internal/model"
)

// Definition describes one action implementation.
type Definition struct {
	Name       string // registry name, e.g. "page_go_to"
	PatternKey string // catalog key holding the phrase regex
	Func       model.Func
}

type entry struct {
	def     Definition
	pattern *regexp.Regexp
}

// Registry resolves step phrases of one language.
type Registry struct {
	catalog *language.Catalog
	entries []entry
	names   map[string]bool
}

// ErrNoMatch is returned by Resolve when no pattern matches a phrase.
type ErrNoMatch struct {
	Phrase string
}

func (e *ErrNoMatch) Error() string {
	return fmt.Sprintf("no action matches %q", e.Phrase)
}

// NewRegistry creates a registry with the built-in actions compiled
// against catalog.
func NewRegistry(catalog *language.Catalog) (*Registry, error) {
	r := &Registry{
		catalog: catalog,
		names:   make(map[string]bool),
	}
	for _, def := range Builtin() {
		if err := r.Register(def); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds def. Definitions are tried in registration order.
func (r *Registry) Register(def Definition) error {
	if def.Name == "" {
		return fmt.Errorf("action definition has no name")
	}
	if r.names[def.Name] {
		return fmt.Errorf("action %q registered twice", def.Name)
	}
	if def.Func == nil {
		return fmt.Errorf("action %q has no body", def.Name)
	}

	source := r.catalog.Get(def.PatternKey)
	if source == "" {
		return fmt.Errorf("action %q: language %s has no pattern %q", def.Name, r.catalog.Tag, def.PatternKey)
	}
	pattern, err := regexp.Compile(source)
	if err != nil {
		return fmt.Errorf("action %q: invalid pattern %q: %w", def.Name, def.PatternKey, err)
	}

	r.entries = append(r.entries, entry{def: def, pattern: pattern})
	r.names[def.Name] = true
	return nil
}

// Resolve finds the action matching phrase and returns it pending, with
// captured groups bound as arguments. keyword is the section the step
// appeared under (given, when or then).
func (r *Registry) Resolve(keyword, phrase string) (*model.Action, error) {
	for _, e := range r.entries {
		match := e.pattern.FindStringSubmatch(phrase)
		if match == nil {
			continue
		}
		return model.NewAction(keyword, phrase, e.def.Name, e.def.Func, bindArguments(e.pattern, match)), nil
	}
	return nil, &ErrNoMatch{Phrase: phrase}
}

func bindArguments(pattern *regexp.Regexp, match []string) model.Arguments {
	args := model.Arguments{
		Positional: make([]string, 0, len(match)-1),
		Named:      make(map[string]string),
	}
	for i, name := range pattern.SubexpNames() {
		if i == 0 {
			continue
		}
		args.Positional = append(args.Positional, match[i])
		if name != "" {
			args.Named[name] = match[i]
		}
	}
	return args
}

// Pattern describes a registered phrase for listing.
type Pattern struct {
	Name    string
	Pattern string
}

// Patterns returns the registered patterns sorted by name.
func (r *Registry) Patterns() []Pattern {
	out := make([]Pattern, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, Pattern{Name: e.def.Name, Pattern: e.pattern.String()})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}

// Language returns the catalog the registry was compiled against.
func (r *Registry) Language() *language.Catalog {
	return r.catalog
}
