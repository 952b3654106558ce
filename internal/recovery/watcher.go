// Package recovery reconciles repository and manifest state when the process
// receives a termination signal.
package recovery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"

	"github.com/temirov/commitpkg/internal/commit"
	"github.com/temirov/commitpkg/internal/menu"
	"github.com/temirov/commitpkg/internal/semver"
)

const (
	indexLockFileNameConstant             = "index.lock"
	interruptNoticeMessageConstant        = "Interrupted while a commit was in flight."
	recoveryMenuTitleConstant             = "The manifest version may already be changed"
	undoOptionLabelConstant               = "undo the version change"
	keepOptionLabelConstant               = "keep it"
	versionRestoredTemplateConstant       = "Manifest version restored to %s\n"
	undoFailedTemplateConstant            = "ERROR: could not restore the manifest version: %v\n"
	sessionMissingMessageConstant         = "session not configured"
	markerMissingMessageConstant          = "commit marker not configured"
	manifestMissingMessageConstant        = "manifest store not configured"
	presenterMissingMessageConstant       = "menu presenter not configured"
	exitFunctionMissingMessageConstant    = "exit function not configured"
	signalReceivedLogMessageConstant      = "termination signal received"
	lockRemovalFailedLogMessageConstant   = "could not remove index lock"
	markerRemovalFailedLogMessageConstant = "could not remove commit marker"
	logFieldSignalConstant                = "signal"
	logFieldCommittingConstant            = "committing"
)

// ErrSessionNotConfigured indicates the session dependency was missing.
var ErrSessionNotConfigured = errors.New(sessionMissingMessageConstant)

// ErrMarkerNotConfigured indicates the commit marker dependency was missing.
var ErrMarkerNotConfigured = errors.New(markerMissingMessageConstant)

// ErrManifestStoreNotConfigured indicates the manifest store dependency was missing.
var ErrManifestStoreNotConfigured = errors.New(manifestMissingMessageConstant)

// ErrMenuPresenterNotConfigured indicates the menu presenter dependency was missing.
var ErrMenuPresenterNotConfigured = errors.New(presenterMissingMessageConstant)

// ErrExitFunctionNotConfigured indicates the exit function dependency was missing.
var ErrExitFunctionNotConfigured = errors.New(exitFunctionMissingMessageConstant)

// ManifestRewriter restores the manifest version during undo.
type ManifestRewriter interface {
	WriteVersion(version semver.Version) error
}

// MenuPresenter resolves a single-selection menu interaction.
type MenuPresenter interface {
	Choose(executionContext context.Context, title string, options []menu.Option) (menu.Selection, error)
}

// Dependencies enumerates the collaborators the watcher requires.
type Dependencies struct {
	Session       *commit.Session
	Marker        *commit.Marker
	ManifestStore ManifestRewriter
	MenuPresenter MenuPresenter
	GitDirectory  string
	Logger        *zap.Logger
	Output        io.Writer
	ErrorOutput   io.Writer
	Exit          func(code int)
}

// Watcher listens for termination signals and drives the undo-or-keep
// reconciliation when a commit was in flight.
type Watcher struct {
	session       *commit.Session
	marker        *commit.Marker
	manifestStore ManifestRewriter
	menuPresenter MenuPresenter
	gitDirectory  string
	logger        *zap.Logger
	output        io.Writer
	errorOutput   io.Writer
	exit          func(code int)
}

// NewWatcher constructs a Watcher from the provided dependencies.
func NewWatcher(dependencies Dependencies) (*Watcher, error) {
	if dependencies.Session == nil {
		return nil, ErrSessionNotConfigured
	}
	if dependencies.Marker == nil {
		return nil, ErrMarkerNotConfigured
	}
	if dependencies.ManifestStore == nil {
		return nil, ErrManifestStoreNotConfigured
	}
	if dependencies.MenuPresenter == nil {
		return nil, ErrMenuPresenterNotConfigured
	}
	if dependencies.Exit == nil {
		return nil, ErrExitFunctionNotConfigured
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	output := dependencies.Output
	if output == nil {
		output = io.Discard
	}
	errorOutput := dependencies.ErrorOutput
	if errorOutput == nil {
		errorOutput = io.Discard
	}

	return &Watcher{
		session:       dependencies.Session,
		marker:        dependencies.Marker,
		manifestStore: dependencies.ManifestStore,
		menuPresenter: dependencies.MenuPresenter,
		gitDirectory:  dependencies.GitDirectory,
		logger:        logger,
		output:        output,
		errorOutput:   errorOutput,
		exit:          dependencies.Exit,
	}, nil
}

// Start registers the signal subscription and launches the watching
// goroutine. The returned function releases the subscription.
func (watcher *Watcher) Start(executionContext context.Context) func() {
	signalChannel := make(chan os.Signal, 1)
	signal.Notify(signalChannel, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-executionContext.Done():
		case receivedSignal := <-signalChannel:
			watcher.HandleSignal(executionContext, receivedSignal)
		}
	}()

	return func() { signal.Stop(signalChannel) }
}

// HandleSignal branches on the in-flight commit flag. Without a commit in
// flight there is nothing to reconcile and the process exits cleanly. With a
// commit in flight the stale lock artifacts are cleared and the user decides
// whether the manifest keeps the chosen version or returns to the baseline.
// Either path exits with status 0: an interrupt is a cancellation, not a
// failure.
func (watcher *Watcher) HandleSignal(executionContext context.Context, receivedSignal os.Signal) {
	committing := watcher.session.Committing()
	watcher.logger.Info(
		signalReceivedLogMessageConstant,
		zap.String(logFieldSignalConstant, receivedSignal.String()),
		zap.Bool(logFieldCommittingConstant, committing),
	)

	if !committing {
		watcher.exit(0)
		return
	}

	clearLockArtifacts(watcher.logger, watcher.gitDirectory, watcher.marker)
	fmt.Fprintln(watcher.errorOutput, interruptNoticeMessageConstant)

	baselineVersion := watcher.session.BaselineVersion()
	if offerUndo(executionContext, watcher.menuPresenter, baselineVersion) {
		restoreManifestVersion(watcher.manifestStore, baselineVersion, watcher.output, watcher.errorOutput)
	}
	watcher.exit(0)
}

// clearLockArtifacts removes git's own index lock and the commit marker.
// Both deletions tolerate absence: the commit may have failed before either
// file appeared.
func clearLockArtifacts(logger *zap.Logger, gitDirectory string, marker *commit.Marker) {
	if len(gitDirectory) > 0 {
		lockPath := filepath.Join(gitDirectory, indexLockFileNameConstant)
		if removeError := os.Remove(lockPath); removeError != nil && !errors.Is(removeError, fs.ErrNotExist) {
			logger.Warn(lockRemovalFailedLogMessageConstant, zap.Error(removeError))
		}
	}
	if removeError := marker.Remove(); removeError != nil {
		logger.Warn(markerRemovalFailedLogMessageConstant, zap.Error(removeError))
	}
}

// offerUndo presents the undo-vs-keep menu. A cancelled menu or a presenter
// failure counts as keep.
func offerUndo(executionContext context.Context, presenter MenuPresenter, restoreVersion semver.Version) bool {
	recoveryOptions := []menu.Option{
		{Label: undoOptionLabelConstant, Preview: restoreVersion.String()},
		{Label: keepOptionLabelConstant},
	}

	selection, menuError := presenter.Choose(executionContext, recoveryMenuTitleConstant, recoveryOptions)
	if menuError != nil || selection.Cancelled {
		return false
	}
	return selection.Index == 0
}

func restoreManifestVersion(store ManifestRewriter, restoreVersion semver.Version, output io.Writer, errorOutput io.Writer) {
	if writeError := store.WriteVersion(restoreVersion); writeError != nil {
		fmt.Fprintf(errorOutput, undoFailedTemplateConstant, writeError)
		return
	}
	fmt.Fprintf(output, versionRestoredTemplateConstant, restoreVersion.String())
}
