// Package manifest accesses the version field of a package manifest file,
// rewriting it in place without disturbing the rest of the document.
package manifest
