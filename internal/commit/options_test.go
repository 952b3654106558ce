package commit_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/commitpkg/internal/commit"
	"github.com/temirov/commitpkg/internal/semver"
)

func optionLabels(options []menuOptionView) []string {
	labels := make([]string, 0, len(options))
	for _, option := range options {
		labels = append(labels, option.label)
	}
	return labels
}

type menuOptionView struct {
	label   string
	preview string
}

func TestBuildVersionMenuOptions(testInstance *testing.T) {
	testCases := []struct {
		name             string
		currentVersion   semver.Version
		expectedLabels   []string
		expectedPreviews []string
	}{
		{
			name:             "stable_version_offers_plain_bumps",
			currentVersion:   semver.Version{Major: 1, Minor: 2, Patch: 3},
			expectedLabels:   []string{"patch", "minor", "major", "skip version change", "cancel"},
			expectedPreviews: []string{"1.2.4", "1.3.0", "2.0.0", "[skip ci]", ""},
		},
		{
			name: "alpha_version_offers_prerelease_line",
			currentVersion: semver.Version{
				Major: 1, Minor: 2, Patch: 3,
				PrereleaseTag: semver.PrereleaseTagAlpha, PrereleaseNumber: 2,
			},
			expectedLabels:   []string{"prerelease", "release", "beta", "skip version change", "cancel"},
			expectedPreviews: []string{"1.2.3-alpha.3", "1.2.3", "1.2.3-beta.1", "[skip ci]", ""},
		},
		{
			name: "beta_version_omits_promotion",
			currentVersion: semver.Version{
				Major: 1, Minor: 2, Patch: 3,
				PrereleaseTag: semver.PrereleaseTagBeta, PrereleaseNumber: 1,
			},
			expectedLabels:   []string{"prerelease", "release", "skip version change", "cancel"},
			expectedPreviews: []string{"1.2.3-beta.2", "1.2.3", "[skip ci]", ""},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			options, cancelIndex := commit.BuildVersionMenuOptions(testCase.currentVersion, commit.VersionMenuActions{
				WriteVersion:      func(semver.Version) error { return nil },
				PrependSkipMarker: func() {},
			})

			optionViews := make([]menuOptionView, 0, len(options))
			for _, option := range options {
				optionViews = append(optionViews, menuOptionView{label: option.Label, preview: option.Preview})
			}

			require.Equal(testInstance, testCase.expectedLabels, optionLabels(optionViews))
			for optionIndex, optionView := range optionViews {
				require.Equal(testInstance, testCase.expectedPreviews[optionIndex], optionView.preview)
			}
			require.Equal(testInstance, len(options)-1, cancelIndex)
			require.Nil(testInstance, options[cancelIndex].Apply)
		})
	}
}

func TestVersionMenuOptionActions(testInstance *testing.T) {
	currentVersion := semver.Version{Major: 1, Minor: 2, Patch: 3}

	var writtenVersion semver.Version
	skipMarkerPrepended := false

	options, _ := commit.BuildVersionMenuOptions(currentVersion, commit.VersionMenuActions{
		WriteVersion: func(chosenVersion semver.Version) error {
			writtenVersion = chosenVersion
			return nil
		},
		PrependSkipMarker: func() { skipMarkerPrepended = true },
	})

	require.NoError(testInstance, options[1].Apply())
	require.Equal(testInstance, "1.3.0", writtenVersion.String())

	require.NoError(testInstance, options[3].Apply())
	require.True(testInstance, skipMarkerPrepended)
}
