// Package ui formats command lifecycle events for human-readable console
// logging.
package ui
