// Package diffgen provides public constants for external tools integrating with
// the diffgen CLI.
package diffgen

// Exit codes returned by the diffgen CLI.
// These constants allow scripts and CI jobs to check exit codes symbolically
// rather than using magic numbers.
const (
	// ExitSuccess indicates the concise set was generated and written.
	ExitSuccess = 0

	// ExitFailure indicates a runtime failure (interrupted run, output not writable, etc.).
	ExitFailure = 1

	// ExitConfigError indicates a configuration error (malformed document, inconsistent domains, etc.).
	ExitConfigError = 2

	// ExitToolingError indicates an implementation could not be invoked at all.
	ExitToolingError = 3

	// ExitGenerationError indicates the base set could not be generated.
	ExitGenerationError = 4
)
