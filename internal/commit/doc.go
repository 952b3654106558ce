// Package commit orchestrates the commit attempt: argument parsing, the
// version menu, the in-flight marker, the commit invocation with its retry
// menu, and the user-facing summary.
package commit
