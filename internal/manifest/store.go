package manifest

import (
	"errors"
	"fmt"
	"os"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/temirov/commitpkg/internal/semver"
)

const (
	versionFieldPathConstant            = "version"
	manifestIndentConstant              = "\t"
	manifestTrailingNewlineConstant     = "\n"
	manifestFilePermissionsConstant     = 0o644
	versionFieldMissingMessageConstant  = "manifest has no version field"
	manifestReadErrorTemplateConstant   = "unable to read manifest %s: %w"
	manifestWriteErrorTemplateConstant  = "unable to write manifest %s: %w"
	manifestUpdateErrorTemplateConstant = "unable to update manifest version: %w"
)

// ErrVersionFieldMissing indicates the manifest document lacks a version field.
var ErrVersionFieldMissing = errors.New(versionFieldMissingMessageConstant)

// Store reads and rewrites the version field of a JSON manifest file while
// preserving the document's key ordering.
type Store struct {
	filePath string
}

// NewStore constructs a Store for the manifest at the provided path.
func NewStore(filePath string) *Store {
	return &Store{filePath: filePath}
}

// Path returns the manifest file location.
func (store *Store) Path() string {
	return store.filePath
}

// ReadVersion loads the manifest and parses its version field.
func (store *Store) ReadVersion() (semver.Version, error) {
	manifestContent, readError := os.ReadFile(store.filePath)
	if readError != nil {
		return semver.Version{}, fmt.Errorf(manifestReadErrorTemplateConstant, store.filePath, readError)
	}
	return VersionFromDocument(manifestContent)
}

// WriteVersion rewrites the manifest with the supplied version, keeping the
// existing key order, indenting with tabs, and terminating with a newline.
func (store *Store) WriteVersion(version semver.Version) error {
	manifestContent, readError := os.ReadFile(store.filePath)
	if readError != nil {
		return fmt.Errorf(manifestReadErrorTemplateConstant, store.filePath, readError)
	}

	updatedContent, updateError := sjson.SetBytes(manifestContent, versionFieldPathConstant, version.String())
	if updateError != nil {
		return fmt.Errorf(manifestUpdateErrorTemplateConstant, updateError)
	}

	formattedContent := pretty.PrettyOptions(updatedContent, &pretty.Options{Indent: manifestIndentConstant})
	if len(formattedContent) == 0 || formattedContent[len(formattedContent)-1] != manifestTrailingNewlineConstant[0] {
		formattedContent = append(formattedContent, manifestTrailingNewlineConstant...)
	}

	if writeError := os.WriteFile(store.filePath, formattedContent, manifestFilePermissionsConstant); writeError != nil {
		return fmt.Errorf(manifestWriteErrorTemplateConstant, store.filePath, writeError)
	}

	return nil
}

// VersionFromDocument parses the version field out of a raw manifest document.
func VersionFromDocument(manifestContent []byte) (semver.Version, error) {
	versionField := gjson.GetBytes(manifestContent, versionFieldPathConstant)
	if !versionField.Exists() {
		return semver.Version{}, ErrVersionFieldMissing
	}
	return semver.Parse(versionField.String())
}
