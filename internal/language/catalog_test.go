package language

import (
	"regexp"
	"strings"
	"testing"

	"golang.org/x/text/language"
)

func TestLoad_Match(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		want language.Tag
	}{
		{"en-us", language.AmericanEnglish},
		{"en-US", language.AmericanEnglish},
		{"en", language.AmericanEnglish},
		{"en-gb", language.AmericanEnglish},
		{"pt-br", language.BrazilianPortuguese},
		{"pt", language.BrazilianPortuguese},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c, err := Load(tt.name)
			if err != nil {
				t.Fatalf("Load(%q) error = %v", tt.name, err)
			}
			if c.Tag != tt.want {
				t.Errorf("Load(%q).Tag = %v, want %v", tt.name, c.Tag, tt.want)
			}
		})
	}
}

func TestLoad_Unsupported(t *testing.T) {
	t.Parallel()
	for _, name := range []string{"ja", "not a tag!"} {
		if _, err := Load(name); err == nil {
			t.Errorf("Load(%q) error = nil, want error", name)
		}
	}
}

// Every catalog must define the same keys, and every pattern must compile.
func TestCatalogs_Consistent(t *testing.T) {
	t.Parallel()
	en := MustLoad("en-us")
	pt := MustLoad("pt-br")

	for key := range en.entries {
		if !pt.Has(key) {
			t.Errorf("pt-br catalog missing %q", key)
		}
	}
	for key := range pt.entries {
		if !en.Has(key) {
			t.Errorf("en-us catalog missing %q", key)
		}
	}

	for _, c := range []*Catalog{en, pt} {
		for key, value := range c.entries {
			if strings.HasSuffix(key, "_regex") {
				if _, err := regexp.Compile(value); err != nil {
					t.Errorf("%v %s does not compile: %v", c.Tag, key, err)
				}
			}
		}
	}
}

func TestCatalog_Format(t *testing.T) {
	t.Parallel()
	c := MustLoad("en-us")

	got := c.Format("page_see_title_failure", "Home", "Login")
	want := `The page title was expected to be "Home", but it was "Login".`
	if got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}

	if got := c.Format("no_such_key", 1); !strings.Contains(got, "no_such_key") {
		t.Errorf("Format(missing) = %q, want key in output", got)
	}
}

func TestCatalog_Keyword(t *testing.T) {
	t.Parallel()
	if got := MustLoad("en-us").Keyword("as_a"); got != "As A" {
		t.Errorf("Keyword(as_a) = %q, want %q", got, "As A")
	}
	if got := MustLoad("pt-br").Keyword("then"); got != "Então" {
		t.Errorf("Keyword(then) = %q, want %q", got, "Então")
	}
}

func TestAvailable(t *testing.T) {
	t.Parallel()
	got := strings.Join(Available(), ",")
	if got != "en-us,pt-br" {
		t.Errorf("Available() = %q", got)
	}
}
