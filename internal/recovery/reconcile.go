package recovery

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/temirov/commitpkg/internal/commit"
	"github.com/temirov/commitpkg/internal/semver"
)

const (
	abandonedCommitNoticeMessageConstant = "A previous commit attempt was interrupted."
	staleMarkerFoundLogMessageConstant   = "stale commit marker found"
	logFieldMarkerPathConstant           = "marker_path"
)

// AbandonedCommitOptions carries the collaborators for reconciling a marker
// left behind by a crashed run. CommittedVersion is the manifest version at
// the branch tip; CommittedVersionKnown is false when no such version could
// be read.
type AbandonedCommitOptions struct {
	Marker                *commit.Marker
	ManifestStore         ManifestRewriter
	MenuPresenter         MenuPresenter
	GitDirectory          string
	CommittedVersion      semver.Version
	CommittedVersionKnown bool
	Logger                *zap.Logger
	Output                io.Writer
	ErrorOutput           io.Writer
}

// ReconcileAbandonedCommit inspects the commit marker before a run begins.
// A present marker means an earlier attempt died while a commit was in
// flight: the stale lock artifacts are cleared and, when the branch-tip
// version is known, the user chooses between restoring the committed
// manifest version and keeping the current one. Without a committed version
// there is nothing to restore to, so only the artifacts are cleared.
func ReconcileAbandonedCommit(executionContext context.Context, options AbandonedCommitOptions) error {
	if options.Marker == nil {
		return ErrMarkerNotConfigured
	}
	if options.ManifestStore == nil {
		return ErrManifestStoreNotConfigured
	}
	if options.MenuPresenter == nil {
		return ErrMenuPresenterNotConfigured
	}

	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	output := options.Output
	if output == nil {
		output = io.Discard
	}
	errorOutput := options.ErrorOutput
	if errorOutput == nil {
		errorOutput = io.Discard
	}

	markerPresent, inspectError := options.Marker.Exists()
	if inspectError != nil {
		return inspectError
	}
	if !markerPresent {
		return nil
	}

	logger.Info(staleMarkerFoundLogMessageConstant, zap.String(logFieldMarkerPathConstant, options.Marker.Path()))
	clearLockArtifacts(logger, options.GitDirectory, options.Marker)
	fmt.Fprintln(errorOutput, abandonedCommitNoticeMessageConstant)

	if !options.CommittedVersionKnown {
		return nil
	}
	if offerUndo(executionContext, options.MenuPresenter, options.CommittedVersion) {
		restoreManifestVersion(options.ManifestStore, options.CommittedVersion, output, errorOutput)
	}
	return nil
}
