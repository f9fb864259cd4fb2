// Package config provides loading and validation of storyline.yaml settings.
package config

import "time"

// Settings is the configuration snapshot shared read-only by every
// execution context of a run.
type Settings struct {
	BaseURL  string            `yaml:"base_url,omitempty"`
	Workers  int               `yaml:"workers,omitempty"`
	Language string            `yaml:"language,omitempty"`
	Tests    TestsConfig       `yaml:"tests,omitempty"`
	Browser  BrowserConfig     `yaml:"browser,omitempty"`
	Parallel ParallelConfig    `yaml:"parallel,omitempty"`
	Pages    map[string]string `yaml:"pages,omitempty"`
}

// TestsConfig locates story files.
type TestsConfig struct {
	Directory string `yaml:"directory,omitempty"`
	Pattern   string `yaml:"pattern,omitempty"`
}

// BrowserConfig configures the browser driver.
type BrowserConfig struct {
	RemoteURL   string        `yaml:"remote_url,omitempty"` // DevTools endpoint; empty launches a local browser
	Headless    *bool         `yaml:"headless,omitempty"`
	PageTimeout time.Duration `yaml:"page_timeout,omitempty"`
}

// ParallelConfig controls how the parallel driver waits for the queue to drain.
type ParallelConfig struct {
	GraceDelay   time.Duration `yaml:"grace_delay,omitempty"`
	PollInterval time.Duration `yaml:"poll_interval,omitempty"`
}

// IsHeadless reports whether a locally launched browser runs headless.
func (b BrowserConfig) IsHeadless() bool {
	return b.Headless == nil || *b.Headless
}
