// Package execshell wraps external command execution behind a typed
// executor that captures stdout, stderr, and exit codes, logs command
// lifecycle events, and classifies failures into non-zero-exit and
// could-not-execute categories.
package execshell
