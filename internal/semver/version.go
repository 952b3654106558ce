package semver

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

const (
	versionPatternConstant                 = `^(\d+)\.(\d+)\.(\d+)(?:-(alpha|beta)\.(\d+))?$`
	malformedVersionMessageConstant        = "version string does not match MAJOR.MINOR.PATCH[-<alpha|beta>.N]"
	malformedVersionTemplateConstant       = "%w: %q"
	promotionRequiresAlphaMessageConstant  = "promotion to beta requires an alpha prerelease"
	stableVersionTemplateConstant          = "%d.%d.%d"
	prereleaseVersionTemplateConstant      = "%d.%d.%d-%s.%d"
	initialPrereleaseNumberConstant        = 1
	prereleaseTagCaptureGroupIndexConstant = 4
	prereleaseNumberCaptureGroupConstant   = 5
)

// ErrMalformedVersion indicates the supplied string is not a supported semantic version.
var ErrMalformedVersion = errors.New(malformedVersionMessageConstant)

// ErrPromotionRequiresAlpha indicates a beta promotion was requested from a non-alpha version.
var ErrPromotionRequiresAlpha = errors.New(promotionRequiresAlphaMessageConstant)

var versionPattern = regexp.MustCompile(versionPatternConstant)

// PrereleaseTag enumerates the supported prerelease qualifiers.
type PrereleaseTag string

// Supported prerelease tags.
const (
	PrereleaseTagNone  PrereleaseTag = ""
	PrereleaseTagAlpha PrereleaseTag = "alpha"
	PrereleaseTagBeta  PrereleaseTag = "beta"
)

// Version is an immutable semantic version value. PrereleaseNumber is
// meaningful only when PrereleaseTag is not PrereleaseTagNone.
type Version struct {
	Major            int
	Minor            int
	Patch            int
	PrereleaseTag    PrereleaseTag
	PrereleaseNumber int
}

// Parse converts a version string of the form MAJOR.MINOR.PATCH[-<alpha|beta>.N]
// into a Version. Strings outside that grammar yield ErrMalformedVersion.
func Parse(versionString string) (Version, error) {
	captureGroups := versionPattern.FindStringSubmatch(versionString)
	if captureGroups == nil {
		return Version{}, fmt.Errorf(malformedVersionTemplateConstant, ErrMalformedVersion, versionString)
	}

	majorComponent, _ := strconv.Atoi(captureGroups[1])
	minorComponent, _ := strconv.Atoi(captureGroups[2])
	patchComponent, _ := strconv.Atoi(captureGroups[3])

	parsedVersion := Version{
		Major: majorComponent,
		Minor: minorComponent,
		Patch: patchComponent,
	}

	if len(captureGroups[prereleaseTagCaptureGroupIndexConstant]) > 0 {
		prereleaseNumber, _ := strconv.Atoi(captureGroups[prereleaseNumberCaptureGroupConstant])
		parsedVersion.PrereleaseTag = PrereleaseTag(captureGroups[prereleaseTagCaptureGroupIndexConstant])
		parsedVersion.PrereleaseNumber = prereleaseNumber
	}

	return parsedVersion, nil
}

// String renders the canonical textual form of the version.
func (version Version) String() string {
	if version.PrereleaseTag == PrereleaseTagNone {
		return fmt.Sprintf(stableVersionTemplateConstant, version.Major, version.Minor, version.Patch)
	}
	return fmt.Sprintf(prereleaseVersionTemplateConstant, version.Major, version.Minor, version.Patch, version.PrereleaseTag, version.PrereleaseNumber)
}

// HasPrerelease reports whether the version carries a prerelease qualifier.
func (version Version) HasPrerelease() bool {
	return version.PrereleaseTag != PrereleaseTagNone
}

// NextPatch returns the version with the patch component incremented and any
// prerelease qualifier cleared.
func (version Version) NextPatch() Version {
	return Version{Major: version.Major, Minor: version.Minor, Patch: version.Patch + 1}
}

// NextMinor returns the version with the minor component incremented, the
// patch component reset, and any prerelease qualifier cleared.
func (version Version) NextMinor() Version {
	return Version{Major: version.Major, Minor: version.Minor + 1}
}

// NextMajor returns the version with the major component incremented, lower
// components reset, and any prerelease qualifier cleared.
func (version Version) NextMajor() Version {
	return Version{Major: version.Major + 1}
}

// Released strips the prerelease qualifier while keeping the numeric
// components unchanged.
func (version Version) Released() Version {
	return Version{Major: version.Major, Minor: version.Minor, Patch: version.Patch}
}

// NextPrerelease keeps the current prerelease tag and increments its counter,
// starting at one when no counter is present.
func (version Version) NextPrerelease() Version {
	nextPrereleaseNumber := version.PrereleaseNumber + 1
	if version.PrereleaseNumber == 0 {
		nextPrereleaseNumber = initialPrereleaseNumberConstant
	}
	return Version{
		Major:            version.Major,
		Minor:            version.Minor,
		Patch:            version.Patch,
		PrereleaseTag:    version.PrereleaseTag,
		PrereleaseNumber: nextPrereleaseNumber,
	}
}

// PromotedToBeta converts an alpha prerelease into the first beta prerelease
// of the same numeric version. Promotion from any other tag is rejected.
func (version Version) PromotedToBeta() (Version, error) {
	if version.PrereleaseTag != PrereleaseTagAlpha {
		return Version{}, ErrPromotionRequiresAlpha
	}
	return Version{
		Major:            version.Major,
		Minor:            version.Minor,
		Patch:            version.Patch,
		PrereleaseTag:    PrereleaseTagBeta,
		PrereleaseNumber: initialPrereleaseNumberConstant,
	}, nil
}
