package commit_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/commitpkg/internal/commit"
)

const (
	testMarkerFileNameConstant = "commit-pkg"
)

func markerFixture(testInstance *testing.T) *commit.Marker {
	return commit.NewMarker(filepath.Join(testInstance.TempDir(), testMarkerFileNameConstant))
}

func TestMarkerLifecycle(testInstance *testing.T) {
	marker := markerFixture(testInstance)

	present, existsError := marker.Exists()
	require.NoError(testInstance, existsError)
	require.False(testInstance, present)

	require.NoError(testInstance, marker.Create())
	present, existsError = marker.Exists()
	require.NoError(testInstance, existsError)
	require.True(testInstance, present)

	require.NoError(testInstance, marker.Remove())
	present, existsError = marker.Exists()
	require.NoError(testInstance, existsError)
	require.False(testInstance, present)
}

func TestMarkerCreateIsIdempotent(testInstance *testing.T) {
	marker := markerFixture(testInstance)
	require.NoError(testInstance, marker.Create())
	require.NoError(testInstance, marker.Create())

	present, existsError := marker.Exists()
	require.NoError(testInstance, existsError)
	require.True(testInstance, present)
}

func TestMarkerRemoveToleratesAbsence(testInstance *testing.T) {
	marker := markerFixture(testInstance)
	require.NoError(testInstance, marker.Remove())
	require.NoError(testInstance, marker.Remove())
}
