package config

import (
	"fmt"
	"net/url"
	"regexp"
)

// Page names are referenced from stories with spaces removed.
var pageNamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// ValidationError represents a settings validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks settings for semantic errors the schema cannot express.
func Validate(s *Settings) error {
	if s.Workers < MinWorkers || s.Workers > MaxWorkers {
		return &ValidationError{
			Field:   "workers",
			Message: fmt.Sprintf("must be between %d and %d", MinWorkers, MaxWorkers),
		}
	}

	if err := validateBaseURL(s.BaseURL); err != nil {
		return err
	}

	if s.Parallel.PollInterval < 0 || s.Parallel.GraceDelay < 0 {
		return &ValidationError{Field: "parallel", Message: "durations must not be negative"}
	}

	for name := range s.Pages {
		if !pageNamePattern.MatchString(name) {
			return &ValidationError{
				Field:   fmt.Sprintf("pages.%s", name),
				Message: "page name must match pattern ^[A-Za-z0-9_.-]+$",
			}
		}
	}
	return nil
}

func validateBaseURL(raw string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return &ValidationError{
			Field:   "base_url",
			Message: fmt.Sprintf("%q is not an absolute URL", raw),
		}
	}
	return nil
}
