package actions

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/storyline/storyline/internal/execution"
	"github.com/storyline/storyline/internal/language"
	"github.com/storyline/storyline/internal/model"
)

func newTestRegistry(t *testing.T, lang string) *Registry {
	t.Helper()
	r, err := NewRegistry(language.MustLoad(lang))
	if err != nil {
		t.Fatalf("NewRegistry(%s) error = %v", lang, err)
	}
	return r
}

func TestRegistry_Resolve(t *testing.T) {
	r := newTestRegistry(t, "en-us")

	tests := []struct {
		phrase string
		name   string
		named  map[string]string
	}{
		{`I go to "/search"`, "page_go_to", map[string]string{"url": "/search"}},
		{`And I go to "http://example.com"`, "page_go_to", map[string]string{"url": "http://example.com"}},
		{`I am in the "home" page`, "page_am_in", map[string]string{"page": "home"}},
		{`I see "Welcome" title`, "page_see_title", map[string]string{"title": "Welcome"}},
		{`I see that current page contains "<h1>Hi</h1>"`, "page_check_contains_markup", map[string]string{"markup": "<h1>Hi</h1>"}},
		{`I see that current page does not contain "error"`, "page_check_does_not_contain_markup", map[string]string{"markup": "error"}},
		{`I wait for the page to load`, "page_wait_for_page_to_load", map[string]string{"timeout": ""}},
		{`I wait for the page to load for "5" seconds`, "page_wait_for_page_to_load", map[string]string{"timeout": "5"}},
		{`I wait for "2" seconds`, "page_wait_for_seconds", map[string]string{"timeout": "2"}},
	}

	for _, tt := range tests {
		t.Run(tt.phrase, func(t *testing.T) {
			a, err := r.Resolve("when", tt.phrase)
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if a.Name != tt.name {
				t.Errorf("Name = %q, want %q", a.Name, tt.name)
			}
			if a.Keyword != "when" || a.Description != tt.phrase {
				t.Errorf("Keyword/Description = %q/%q", a.Keyword, a.Description)
			}
			if diff := cmp.Diff(tt.named, a.Args.Named); diff != "" {
				t.Errorf("Named mismatch (-want +got):\n%s", diff)
			}
			if a.Status() != model.Pending {
				t.Errorf("Status() = %v, want pending", a.Status())
			}
		})
	}
}

func TestRegistry_ResolvePortuguese(t *testing.T) {
	r := newTestRegistry(t, "pt-br")

	a, err := r.Resolve("dado que", `Eu vejo o título "Início"`)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if a.Name != "page_see_title" || a.Args.Named["title"] != "Início" {
		t.Errorf("Resolve() = %s %v", a.Name, a.Args.Named)
	}

	a, err = r.Resolve("então", `Eu vejo que a página atual não contém "erro"`)
	if err != nil {
		t.Fatal(err)
	}
	if a.Name != "page_check_does_not_contain_markup" {
		t.Errorf("Name = %q", a.Name)
	}
}

func TestRegistry_ResolveNoMatch(t *testing.T) {
	r := newTestRegistry(t, "en-us")

	_, err := r.Resolve("given", "I fly to the moon")

	var nm *ErrNoMatch
	if !errors.As(err, &nm) {
		t.Fatalf("err = %v, want *ErrNoMatch", err)
	}
	if nm.Phrase != "I fly to the moon" {
		t.Errorf("Phrase = %q", nm.Phrase)
	}
}

func TestRegistry_PositionalArguments(t *testing.T) {
	r := newTestRegistry(t, "en-us")

	a, err := r.Resolve("given", `I go to "/a"`)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"/a"}, a.Args.Positional); diff != "" {
		t.Errorf("Positional mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistry_Register(t *testing.T) {
	noop := func(context.Context, *execution.Context, model.Arguments) error { return nil }

	tests := []struct {
		name string
		def  Definition
	}{
		{"duplicate", Definition{Name: "page_go_to", PatternKey: "page_go_to_regex", Func: noop}},
		{"no name", Definition{PatternKey: "page_go_to_regex", Func: noop}},
		{"no body", Definition{Name: "custom", PatternKey: "page_go_to_regex"}},
		{"missing pattern", Definition{Name: "custom", PatternKey: "no_such_regex", Func: noop}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRegistry(t, "en-us")
			if err := r.Register(tt.def); err == nil {
				t.Error("Register() error = nil")
			}
		})
	}
}

func TestRegistry_Patterns(t *testing.T) {
	r := newTestRegistry(t, "en-us")

	patterns := r.Patterns()

	if len(patterns) != len(Builtin()) {
		t.Fatalf("len(Patterns()) = %d, want %d", len(patterns), len(Builtin()))
	}
	for i := 1; i < len(patterns); i++ {
		if patterns[i-1].Name > patterns[i].Name {
			t.Errorf("Patterns() not sorted: %s > %s", patterns[i-1].Name, patterns[i].Name)
		}
	}
	if r.Language().Tag != language.MustLoad("en-us").Tag {
		t.Error("Language() returned a different catalog")
	}
}
