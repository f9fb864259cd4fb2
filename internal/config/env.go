package config

import (
	"fmt"
	"os"
	"strconv"
)

// Environment variables that override settings.
const (
	EnvWorkers = "STORYLINE_WORKERS"
	EnvBaseURL = "STORYLINE_BASE_URL"
)

const (
	// MinWorkers keeps at least one worker pulling from the queue.
	MinWorkers = 1
	// MaxWorkers caps the pool; each worker drives its own browser session.
	MaxWorkers = 256
)

// applyEnv applies environment overrides. Invalid values are ignored
// with a warning.
func applyEnv(s *Settings) []string {
	var warnings []string

	if v := os.Getenv(EnvBaseURL); v != "" {
		s.BaseURL = v
	}

	env := os.Getenv(EnvWorkers)
	if env == "" {
		return warnings
	}

	n, err := strconv.Atoi(env)
	if err != nil {
		return append(warnings, fmt.Sprintf("invalid %s value %q (not a number), using %d", EnvWorkers, env, s.Workers))
	}
	if n < MinWorkers || n > MaxWorkers {
		return append(warnings, fmt.Sprintf("%s=%d out of range [%d-%d], using %d", EnvWorkers, n, MinWorkers, MaxWorkers, s.Workers))
	}

	s.Workers = n
	return warnings
}
