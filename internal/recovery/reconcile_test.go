package recovery_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/commitpkg/internal/commit"
	"github.com/temirov/commitpkg/internal/menu"
	"github.com/temirov/commitpkg/internal/recovery"
	"github.com/temirov/commitpkg/internal/semver"
)

type reconcileFixture struct {
	marker        *commit.Marker
	manifestStore *recordingManifestStore
	presenter     *scriptedMenuPresenter
	gitDirectory  string
	outputBuffer  *bytes.Buffer
	errorBuffer   *bytes.Buffer
}

func newReconcileFixture(testInstance *testing.T, presenter *scriptedMenuPresenter) *reconcileFixture {
	gitDirectory := testInstance.TempDir()
	return &reconcileFixture{
		marker:        commit.NewMarker(filepath.Join(gitDirectory, testMarkerFileNameConstant)),
		manifestStore: &recordingManifestStore{},
		presenter:     presenter,
		gitDirectory:  gitDirectory,
		outputBuffer:  &bytes.Buffer{},
		errorBuffer:   &bytes.Buffer{},
	}
}

func (fixture *reconcileFixture) options() recovery.AbandonedCommitOptions {
	return recovery.AbandonedCommitOptions{
		Marker:                fixture.marker,
		ManifestStore:         fixture.manifestStore,
		MenuPresenter:         fixture.presenter,
		GitDirectory:          fixture.gitDirectory,
		CommittedVersion:      semver.Version{Major: 1, Minor: 2, Patch: 3},
		CommittedVersionKnown: true,
		Logger:                zap.NewNop(),
		Output:                fixture.outputBuffer,
		ErrorOutput:           fixture.errorBuffer,
	}
}

func TestReconcileAbandonedCommitValidatesDependencies(testInstance *testing.T) {
	reconcileError := recovery.ReconcileAbandonedCommit(context.Background(), recovery.AbandonedCommitOptions{})
	require.ErrorIs(testInstance, reconcileError, recovery.ErrMarkerNotConfigured)
}

func TestReconcileAbandonedCommitDoesNothingWithoutMarker(testInstance *testing.T) {
	presenter := &scriptedMenuPresenter{}
	fixture := newReconcileFixture(testInstance, presenter)

	require.NoError(testInstance, recovery.ReconcileAbandonedCommit(context.Background(), fixture.options()))

	require.Empty(testInstance, presenter.recordedTitles)
	require.Empty(testInstance, fixture.manifestStore.writtenVersions)
	require.Empty(testInstance, fixture.errorBuffer.String())
}

func TestReconcileAbandonedCommitUndoRestoresCommittedVersion(testInstance *testing.T) {
	presenter := &scriptedMenuPresenter{selection: menu.Selection{Index: 0}}
	fixture := newReconcileFixture(testInstance, presenter)

	require.NoError(testInstance, fixture.marker.Create())
	lockPath := filepath.Join(fixture.gitDirectory, testIndexLockNameConstant)
	require.NoError(testInstance, os.WriteFile(lockPath, nil, 0o644))

	require.NoError(testInstance, recovery.ReconcileAbandonedCommit(context.Background(), fixture.options()))

	require.Equal(testInstance, []semver.Version{{Major: 1, Minor: 2, Patch: 3}}, fixture.manifestStore.writtenVersions)
	require.Contains(testInstance, fixture.errorBuffer.String(), "A previous commit attempt was interrupted.")
	require.Contains(testInstance, fixture.outputBuffer.String(), "Manifest version restored to 1.2.3")

	markerPresent, existsError := fixture.marker.Exists()
	require.NoError(testInstance, existsError)
	require.False(testInstance, markerPresent)
	_, lockStatError := os.Stat(lockPath)
	require.ErrorIs(testInstance, lockStatError, os.ErrNotExist)
}

func TestReconcileAbandonedCommitKeepLeavesManifestAlone(testInstance *testing.T) {
	presenter := &scriptedMenuPresenter{selection: menu.Selection{Index: 1}}
	fixture := newReconcileFixture(testInstance, presenter)

	require.NoError(testInstance, fixture.marker.Create())
	require.NoError(testInstance, recovery.ReconcileAbandonedCommit(context.Background(), fixture.options()))

	require.Equal(testInstance, []string{"The manifest version may already be changed"}, presenter.recordedTitles)
	require.Empty(testInstance, fixture.manifestStore.writtenVersions)

	markerPresent, existsError := fixture.marker.Exists()
	require.NoError(testInstance, existsError)
	require.False(testInstance, markerPresent)
}

func TestReconcileAbandonedCommitSkipsMenuWithoutCommittedVersion(testInstance *testing.T) {
	presenter := &scriptedMenuPresenter{selection: menu.Selection{Index: 0}}
	fixture := newReconcileFixture(testInstance, presenter)

	require.NoError(testInstance, fixture.marker.Create())

	reconcileOptions := fixture.options()
	reconcileOptions.CommittedVersionKnown = false
	require.NoError(testInstance, recovery.ReconcileAbandonedCommit(context.Background(), reconcileOptions))

	// The artifacts are cleared, but with no restore target there is no menu.
	require.Empty(testInstance, presenter.recordedTitles)
	require.Empty(testInstance, fixture.manifestStore.writtenVersions)

	markerPresent, existsError := fixture.marker.Exists()
	require.NoError(testInstance, existsError)
	require.False(testInstance, markerPresent)
}
