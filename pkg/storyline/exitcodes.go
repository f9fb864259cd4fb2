// Package storyline provides public constants for external tools
// integrating with storyline.
package storyline

// Exit codes returned by the storyline CLI.
const (
	// ExitSuccess indicates every scenario passed.
	ExitSuccess = 0

	// ExitFailure indicates a failed or interrupted run (failed assertion,
	// fatal action error, invalid story file).
	ExitFailure = 1

	// ExitConfigError indicates a configuration error (invalid settings,
	// unknown language, unparseable stories in check mode).
	ExitConfigError = 2

	// ExitEnvError indicates an environment error (browser unavailable).
	ExitEnvError = 3
)
