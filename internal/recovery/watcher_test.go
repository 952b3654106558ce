package recovery_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/commitpkg/internal/commit"
	"github.com/temirov/commitpkg/internal/menu"
	"github.com/temirov/commitpkg/internal/recovery"
	"github.com/temirov/commitpkg/internal/semver"
)

const (
	testMarkerFileNameConstant = "commit-pkg"
	testIndexLockNameConstant  = "index.lock"
)

type recordingManifestStore struct {
	writtenVersions []semver.Version
	writeError      error
}

func (store *recordingManifestStore) WriteVersion(version semver.Version) error {
	store.writtenVersions = append(store.writtenVersions, version)
	return store.writeError
}

type scriptedMenuPresenter struct {
	selection      menu.Selection
	recordedTitles []string
}

func (presenter *scriptedMenuPresenter) Choose(_ context.Context, title string, _ []menu.Option) (menu.Selection, error) {
	presenter.recordedTitles = append(presenter.recordedTitles, title)
	return presenter.selection, nil
}

type watcherFixture struct {
	watcher       *recovery.Watcher
	session       *commit.Session
	marker        *commit.Marker
	manifestStore *recordingManifestStore
	presenter     *scriptedMenuPresenter
	gitDirectory  string
	outputBuffer  *bytes.Buffer
	errorBuffer   *bytes.Buffer
	exitCodes     []int
}

func newWatcherFixture(testInstance *testing.T, presenter *scriptedMenuPresenter) *watcherFixture {
	gitDirectory := testInstance.TempDir()
	fixture := &watcherFixture{
		session:       commit.NewSession(semver.Version{Major: 1, Minor: 2, Patch: 3}),
		marker:        commit.NewMarker(filepath.Join(gitDirectory, testMarkerFileNameConstant)),
		manifestStore: &recordingManifestStore{},
		presenter:     presenter,
		gitDirectory:  gitDirectory,
		outputBuffer:  &bytes.Buffer{},
		errorBuffer:   &bytes.Buffer{},
	}

	watcher, creationError := recovery.NewWatcher(recovery.Dependencies{
		Session:       fixture.session,
		Marker:        fixture.marker,
		ManifestStore: fixture.manifestStore,
		MenuPresenter: presenter,
		GitDirectory:  gitDirectory,
		Logger:        zap.NewNop(),
		Output:        fixture.outputBuffer,
		ErrorOutput:   fixture.errorBuffer,
		Exit:          func(code int) { fixture.exitCodes = append(fixture.exitCodes, code) },
	})
	require.NoError(testInstance, creationError)

	fixture.watcher = watcher
	return fixture
}

func TestWatcherValidatesDependencies(testInstance *testing.T) {
	_, creationError := recovery.NewWatcher(recovery.Dependencies{})
	require.ErrorIs(testInstance, creationError, recovery.ErrSessionNotConfigured)
}

func TestWatcherExitsCleanlyWithoutCommitInFlight(testInstance *testing.T) {
	presenter := &scriptedMenuPresenter{}
	fixture := newWatcherFixture(testInstance, presenter)

	fixture.watcher.HandleSignal(context.Background(), syscall.SIGINT)

	require.Equal(testInstance, []int{0}, fixture.exitCodes)
	require.Empty(testInstance, presenter.recordedTitles)
	require.Empty(testInstance, fixture.manifestStore.writtenVersions)
}

func TestWatcherUndoRestoresBaselineVersion(testInstance *testing.T) {
	presenter := &scriptedMenuPresenter{selection: menu.Selection{Index: 0}}
	fixture := newWatcherFixture(testInstance, presenter)

	fixture.session.SetCommitting(true)
	require.NoError(testInstance, fixture.marker.Create())
	lockPath := filepath.Join(fixture.gitDirectory, testIndexLockNameConstant)
	require.NoError(testInstance, os.WriteFile(lockPath, nil, 0o644))

	fixture.watcher.HandleSignal(context.Background(), syscall.SIGTERM)

	require.Equal(testInstance, []int{0}, fixture.exitCodes)
	require.Equal(testInstance, []semver.Version{{Major: 1, Minor: 2, Patch: 3}}, fixture.manifestStore.writtenVersions)
	require.Contains(testInstance, fixture.errorBuffer.String(), "Interrupted while a commit was in flight.")
	require.Contains(testInstance, fixture.outputBuffer.String(), "Manifest version restored to 1.2.3")

	markerPresent, existsError := fixture.marker.Exists()
	require.NoError(testInstance, existsError)
	require.False(testInstance, markerPresent)
	_, lockStatError := os.Stat(lockPath)
	require.ErrorIs(testInstance, lockStatError, os.ErrNotExist)
}

func TestWatcherKeepLeavesManifestAlone(testInstance *testing.T) {
	presenter := &scriptedMenuPresenter{selection: menu.Selection{Index: 1}}
	fixture := newWatcherFixture(testInstance, presenter)

	fixture.session.SetCommitting(true)
	fixture.watcher.HandleSignal(context.Background(), syscall.SIGINT)

	require.Equal(testInstance, []int{0}, fixture.exitCodes)
	require.Empty(testInstance, fixture.manifestStore.writtenVersions)
	require.Equal(testInstance, []string{"The manifest version may already be changed"}, presenter.recordedTitles)
}

func TestWatcherCancelledRecoveryMenuKeepsManifest(testInstance *testing.T) {
	presenter := &scriptedMenuPresenter{selection: menu.Selection{Cancelled: true}}
	fixture := newWatcherFixture(testInstance, presenter)

	fixture.session.SetCommitting(true)
	fixture.watcher.HandleSignal(context.Background(), syscall.SIGINT)

	require.Equal(testInstance, []int{0}, fixture.exitCodes)
	require.Empty(testInstance, fixture.manifestStore.writtenVersions)
}

func TestWatcherToleratesAbsentLockArtifacts(testInstance *testing.T) {
	presenter := &scriptedMenuPresenter{selection: menu.Selection{Index: 0}}
	fixture := newWatcherFixture(testInstance, presenter)

	// Neither the marker nor index.lock exists.
	fixture.session.SetCommitting(true)
	fixture.watcher.HandleSignal(context.Background(), syscall.SIGINT)

	require.Equal(testInstance, []int{0}, fixture.exitCodes)
	require.Len(testInstance, fixture.manifestStore.writtenVersions, 1)
}

func TestWatcherReportsUndoFailure(testInstance *testing.T) {
	presenter := &scriptedMenuPresenter{selection: menu.Selection{Index: 0}}
	fixture := newWatcherFixture(testInstance, presenter)
	fixture.manifestStore.writeError = os.ErrPermission

	fixture.session.SetCommitting(true)
	fixture.watcher.HandleSignal(context.Background(), syscall.SIGINT)

	require.Equal(testInstance, []int{0}, fixture.exitCodes)
	require.Contains(testInstance, fixture.errorBuffer.String(), "could not restore the manifest version")
}
