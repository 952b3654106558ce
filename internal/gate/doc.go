// Package gate decides whether a commit may proceed immediately or requires
// the interactive version-bump confirmation, based on the branch-tip manifest
// version and skip markers in the commit message.
package gate
