// Package story parses story files into the fixture tree.
//
// A story file starts with a three line narrative followed by numbered
// scenarios, each with given, when and then sections:
//
//	As a shopper
//	I want to search the catalog
//	So that I find what I need
//
//	Scenario 1 - Searching for shoes
//	Given
//	    I go to "/search"
//	When
//	    I wait for the page to load
//	Then
//	    I see "Search" title
//
// Keywords come from the language catalog and match case-insensitively.
// Steps may also follow a section keyword on the same line. Lines starting
// with # are comments.
package story

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/cases"

	"github.com/storyline/storyline/internal/actions"
	"github.com/storyline/storyline/internal/model"
)

// ParseError reports a problem at a line of a story file.
type ParseError struct {
	Path    string
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Parser turns story text into stories with resolved actions.
type Parser struct {
	registry *actions.Registry
	keywords map[string]string // catalog key -> keyword
}

// NewParser creates a parser using the keywords of the registry's language.
func NewParser(registry *actions.Registry) *Parser {
	catalog := registry.Language()
	keywords := make(map[string]string)
	for _, key := range []string{"as_a", "i_want_to", "so_that", "scenario", "given", "when", "then"} {
		keywords[key] = catalog.Get(key)
	}
	return &Parser{registry: registry, keywords: keywords}
}

// ParseFile reads and parses the story file at path.
func (p *Parser) ParseFile(path string) (*model.Story, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return p.Parse(string(data), path)
}

type section int

const (
	noSection section = iota
	givenSection
	whenSection
	thenSection
)

// parseState tracks the position of the line scanner.
type parseState struct {
	path     string
	fold     cases.Caser
	story    *model.Story
	scenario *model.Scenario
	section  section
	header   int // narrative lines seen
}

// Parse parses content; identity names the story in reports and errors.
// Every step is resolved through the registry, so a phrase no action
// understands is a parse error.
func (p *Parser) Parse(content, identity string) (*model.Story, error) {
	content = strings.TrimPrefix(content, "\ufeff")
	content = strings.ReplaceAll(content, "\r\n", "\n")
	lines := strings.Split(content, "\n")

	st := &parseState{
		path:  identity,
		fold:  cases.Fold(),
		story: &model.Story{Identity: identity},
	}

	for i, raw := range lines {
		lineNum := i + 1
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := p.parseLine(st, line, lineNum); err != nil {
			return nil, err
		}
	}

	if st.header < 3 {
		return nil, &ParseError{Path: identity, Message: fmt.Sprintf("incomplete story header: expected %q, %q and %q lines",
			p.keywords["as_a"], p.keywords["i_want_to"], p.keywords["so_that"])}
	}
	if len(st.story.Scenarios) == 0 {
		return nil, &ParseError{Path: identity, Message: "story has no scenarios"}
	}
	return st.story, nil
}

func (p *Parser) parseLine(st *parseState, line string, lineNum int) error {
	if st.header < 3 {
		key := []string{"as_a", "i_want_to", "so_that"}[st.header]
		rest, ok := p.cut(st, line, key)
		if !ok {
			return &ParseError{Path: st.path, Line: lineNum, Message: fmt.Sprintf("expected line starting with %q", p.keywords[key])}
		}
		switch st.header {
		case 0:
			st.story.AsA = rest
		case 1:
			st.story.IWant = rest
		case 2:
			st.story.SoThat = rest
		}
		st.header++
		return nil
	}

	if rest, ok := p.cut(st, line, "scenario"); ok {
		st.scenario = st.story.AddScenario(scenarioTitle(rest))
		st.section = noSection
		return nil
	}

	for _, s := range []struct {
		key string
		sec section
	}{{"given", givenSection}, {"when", whenSection}, {"then", thenSection}} {
		if rest, ok := p.cut(st, line, s.key); ok {
			if st.scenario == nil {
				return &ParseError{Path: st.path, Line: lineNum, Message: fmt.Sprintf("%q outside of a scenario", p.keywords[s.key])}
			}
			st.section = s.sec
			if rest == "" {
				return nil
			}
			return p.addStep(st, rest, lineNum)
		}
	}

	if st.scenario == nil || st.section == noSection {
		return &ParseError{Path: st.path, Line: lineNum, Message: fmt.Sprintf("unexpected line %q", line)}
	}
	return p.addStep(st, line, lineNum)
}

func (p *Parser) addStep(st *parseState, phrase string, lineNum int) error {
	var keyword string
	switch st.section {
	case givenSection:
		keyword = p.keywords["given"]
	case whenSection:
		keyword = p.keywords["when"]
	default:
		keyword = p.keywords["then"]
	}

	action, err := p.registry.Resolve(keyword, phrase)
	if err != nil {
		return &ParseError{Path: st.path, Line: lineNum, Message: err.Error()}
	}

	switch st.section {
	case givenSection:
		st.scenario.Givens = append(st.scenario.Givens, action)
	case whenSection:
		st.scenario.Whens = append(st.scenario.Whens, action)
	default:
		st.scenario.Thens = append(st.scenario.Thens, action)
	}
	return nil
}

// cut reports whether line starts with the keyword stored under key, as a
// whole word, and returns the remainder.
func (p *Parser) cut(st *parseState, line, key string) (string, bool) {
	keyword := p.keywords[key]
	if keyword == "" {
		return "", false
	}
	words := strings.Fields(keyword)
	fields := strings.Fields(line)
	if len(fields) < len(words) {
		return "", false
	}
	for i, w := range words {
		field := fields[i]
		if i == len(words)-1 {
			field = strings.TrimSuffix(field, ":")
		}
		if st.fold.String(field) != st.fold.String(w) {
			return "", false
		}
	}

	rest := line
	for range words {
		rest = strings.TrimSpace(rest)
		if idx := strings.IndexAny(rest, " \t"); idx >= 0 {
			rest = rest[idx:]
		} else {
			rest = ""
		}
	}
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(rest), ":")), true
}

// scenarioTitle strips the "N -" or ":" prefix from a scenario header.
func scenarioTitle(rest string) string {
	rest = strings.TrimSpace(rest)
	i := 0
	for i < len(rest) && rest[i] >= '0' && rest[i] <= '9' {
		i++
	}
	rest = strings.TrimSpace(rest[i:])
	rest = strings.TrimPrefix(rest, "-")
	rest = strings.TrimPrefix(rest, ":")
	return strings.TrimSpace(rest)
}
