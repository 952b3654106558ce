package commit

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

const (
	markerFilePermissionsConstant      = 0o644
	markerCreateErrorTemplateConstant  = "unable to create commit marker %s: %w"
	markerInspectErrorTemplateConstant = "unable to inspect commit marker %s: %w"
)

// Marker is the on-disk flag signaling that a commit attempt is in flight.
// It exists from just before the commit invocation starts until the attempt
// is resolved, so crash recovery can detect an interrupted commit.
type Marker struct {
	filePath string
}

// NewMarker constructs a Marker stored at the provided path.
func NewMarker(filePath string) *Marker {
	return &Marker{filePath: filePath}
}

// Path returns the marker file location.
func (marker *Marker) Path() string {
	return marker.filePath
}

// Create writes the empty marker file. Creating an already-present marker is
// not an error.
func (marker *Marker) Create() error {
	if writeError := os.WriteFile(marker.filePath, nil, markerFilePermissionsConstant); writeError != nil {
		return fmt.Errorf(markerCreateErrorTemplateConstant, marker.filePath, writeError)
	}
	return nil
}

// Remove deletes the marker file. A missing marker is tolerated so cleanup
// stays idempotent on every exit path.
func (marker *Marker) Remove() error {
	removeError := os.Remove(marker.filePath)
	if removeError != nil && !errors.Is(removeError, fs.ErrNotExist) {
		return removeError
	}
	return nil
}

// Exists reports whether the marker file is currently present.
func (marker *Marker) Exists() (bool, error) {
	_, statError := os.Stat(marker.filePath)
	if statError == nil {
		return true, nil
	}
	if errors.Is(statError, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf(markerInspectErrorTemplateConstant, marker.filePath, statError)
}
