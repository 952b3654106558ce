// Package semver parses manifest version strings and derives the candidate
// next versions offered by the commit policy menu. All derivations are pure
// value computations; writing a chosen version back to the manifest is the
// caller's responsibility.
package semver
