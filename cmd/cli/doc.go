// Package cli constructs the commitpkg command-line interface, wiring the
// cobra root command, configuration loader, structured logging, and the
// commit workflow that enforces the version-change-or-skip-marker policy.
package cli
