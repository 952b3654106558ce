package commit

import (
	"github.com/temirov/commitpkg/internal/menu"
	"github.com/temirov/commitpkg/internal/semver"
)

const (
	patchOptionLabelConstant      = "patch"
	minorOptionLabelConstant      = "minor"
	majorOptionLabelConstant      = "major"
	prereleaseOptionLabelConstant = "prerelease"
	releaseOptionLabelConstant    = "release"
	betaOptionLabelConstant       = "beta"
	skipOptionLabelConstant       = "skip version change"
	cancelOptionLabelConstant     = "cancel"
	skipOptionPreviewConstant     = "[skip ci]"
	skipMarkerPrefixConstant      = "[skip ci] "
)

// VersionMenuActions are the side effects a version menu option may trigger.
type VersionMenuActions struct {
	// WriteVersion persists the chosen version to the manifest.
	WriteVersion func(chosenVersion semver.Version) error
	// PrependSkipMarker rewrites the commit message with the skip marker.
	PrependSkipMarker func()
}

// BuildVersionMenuOptions assembles the menu presented when the manifest
// version is unchanged. Prerelease versions offer prerelease-line choices;
// stable versions offer plain bumps. The returned cancelIndex identifies the
// always-last cancel entry.
func BuildVersionMenuOptions(currentVersion semver.Version, actions VersionMenuActions) (options []menu.Option, cancelIndex int) {
	writeVersionOption := func(label string, derivedVersion semver.Version) menu.Option {
		return menu.Option{
			Label:   label,
			Preview: derivedVersion.String(),
			Apply: func() error {
				return actions.WriteVersion(derivedVersion)
			},
		}
	}

	if currentVersion.HasPrerelease() {
		options = append(options, writeVersionOption(prereleaseOptionLabelConstant, currentVersion.NextPrerelease()))
		options = append(options, writeVersionOption(releaseOptionLabelConstant, currentVersion.Released()))
		if promotedVersion, promotionError := currentVersion.PromotedToBeta(); promotionError == nil {
			options = append(options, writeVersionOption(betaOptionLabelConstant, promotedVersion))
		}
	} else {
		options = append(options, writeVersionOption(patchOptionLabelConstant, currentVersion.NextPatch()))
		options = append(options, writeVersionOption(minorOptionLabelConstant, currentVersion.NextMinor()))
		options = append(options, writeVersionOption(majorOptionLabelConstant, currentVersion.NextMajor()))
	}

	options = append(options, menu.Option{
		Label:   skipOptionLabelConstant,
		Preview: skipOptionPreviewConstant,
		Apply: func() error {
			actions.PrependSkipMarker()
			return nil
		},
	})

	cancelIndex = len(options)
	options = append(options, menu.Option{Label: cancelOptionLabelConstant})

	return options, cancelIndex
}

// SkipMarkerPrefix returns the marker text prepended to a commit message by
// the skip option.
func SkipMarkerPrefix() string {
	return skipMarkerPrefixConstant
}
