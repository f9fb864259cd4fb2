package story

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	storylineerrors "github.com/storyline/storyline/internal/errors"
	"github.com/storyline/storyline/internal/model"
)

// LoadFixture parses every file under dir whose name matches pattern.
// Files that fail to parse are recorded in the fixture's InvalidFiles;
// only an unreadable directory or a malformed pattern is an error.
// Stories are ordered by path.
func LoadFixture(dir, pattern string, parser *Parser) (*model.Fixture, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("tests directory not found: %s", dir)
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("tests path is not a directory: %s", dir)
	}

	matches, err := FindStories(dir, pattern)
	if err != nil {
		return nil, err
	}

	fixture := &model.Fixture{}
	for _, path := range matches {
		s, err := parser.ParseFile(path)
		if err != nil {
			fixture.InvalidFiles = append(fixture.InvalidFiles, model.InvalidFile{Path: path, Err: invalidStory(path, err)})
			continue
		}
		fixture.AddStory(s)
	}
	return fixture, nil
}

// invalidStory turns a parse failure into a validation error naming the
// story file. The original error stays reachable through errors.As.
func invalidStory(path string, err error) error {
	msg := err.Error()
	var pe *ParseError
	if errors.As(err, &pe) {
		msg = pe.Message
		if pe.Line > 0 {
			msg = fmt.Sprintf("line %d: %s", pe.Line, pe.Message)
		}
	}
	se := storylineerrors.StoryError(path, msg)
	se.Cause = err
	return se
}

// FindStories finds files under dir whose base name matches the glob
// pattern, sorted by path.
func FindStories(dir, pattern string) ([]string, error) {
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid story pattern %q: %w", pattern, err)
	}

	var matches []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		matched, err := filepath.Match(pattern, d.Name())
		if err != nil {
			return err
		}
		if matched {
			matches = append(matches, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(matches)
	return matches, nil
}
