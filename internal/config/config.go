package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/storyline/storyline/internal/schema"
)

// FileName is the name of the settings file looked up by FindSettings.
const FileName = "storyline.yaml"

// ErrNoSettings is returned when storyline.yaml is not found.
var ErrNoSettings = errors.New("storyline.yaml not found in the current directory or any parent")

func parse(data []byte) (*Settings, error) {
	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse settings file: %w", err)
	}
	return &s, nil
}

// DefaultWithEnv returns default settings with environment overrides
// applied, for runs without a settings file.
func DefaultWithEnv() (*Settings, []string) {
	s := Default()
	warnings := applyEnv(s)
	return s, warnings
}

// LoadAndValidate reads a settings file, checks it against the embedded schema,
// applies defaults and environment overrides, validates, and returns warnings.
func LoadAndValidate(path string) (*Settings, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	if err := schema.ValidateSettings(data); err != nil {
		return nil, nil, err
	}

	s, err := parse(data)
	if err != nil {
		return nil, nil, err
	}

	warnings := detectUnknownFields(data)
	applyDefaults(s)
	warnings = append(warnings, applyEnv(s)...)

	if err := Validate(s); err != nil {
		return nil, warnings, err
	}

	return s, warnings, nil
}

// FindSettings walks up from startDir until it finds storyline.yaml.
func FindSettings(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNoSettings
		}
		dir = parent
	}
}

// Resolve makes a relative tests directory absolute against the directory
// holding the settings file.
func (s *Settings) Resolve(settingsPath string) {
	if settingsPath == "" || filepath.IsAbs(s.Tests.Directory) {
		return
	}
	s.Tests.Directory = filepath.Join(filepath.Dir(settingsPath), s.Tests.Directory)
}
