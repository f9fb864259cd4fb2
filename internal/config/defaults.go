package config

import "time"

// Default configuration values.
const (
	DefaultBaseURL      = "http://localhost"
	DefaultWorkers      = 1
	DefaultLanguage     = "en-us"
	DefaultTestsDir     = "."
	DefaultTestsPattern = "*.acc"
	DefaultPageTimeout  = 30 * time.Second
	DefaultGraceDelay   = 2 * time.Second
	DefaultPollInterval = 1 * time.Second
)

// Default returns settings with every default applied.
func Default() *Settings {
	s := &Settings{}
	applyDefaults(s)
	return s
}

// applyDefaults fills in default values for unset fields.
// BaseURL stays empty when unset; the runner resolves it per scenario.
func applyDefaults(s *Settings) {
	if s.Workers == 0 {
		s.Workers = DefaultWorkers
	}
	if s.Language == "" {
		s.Language = DefaultLanguage
	}
	applyTestsDefaults(s)
	applyBrowserDefaults(s)
	applyParallelDefaults(s)
	if s.Pages == nil {
		s.Pages = make(map[string]string)
	}
}

func applyTestsDefaults(s *Settings) {
	if s.Tests.Directory == "" {
		s.Tests.Directory = DefaultTestsDir
	}
	if s.Tests.Pattern == "" {
		s.Tests.Pattern = DefaultTestsPattern
	}
}

func applyBrowserDefaults(s *Settings) {
	if s.Browser.PageTimeout == 0 {
		s.Browser.PageTimeout = DefaultPageTimeout
	}
}

func applyParallelDefaults(s *Settings) {
	if s.Parallel.GraceDelay == 0 {
		s.Parallel.GraceDelay = DefaultGraceDelay
	}
	if s.Parallel.PollInterval == 0 {
		s.Parallel.PollInterval = DefaultPollInterval
	}
}
