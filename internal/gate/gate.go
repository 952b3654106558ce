package gate

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/temirov/commitpkg/internal/execshell"
	"github.com/temirov/commitpkg/internal/manifest"
	"github.com/temirov/commitpkg/internal/semver"
)

const (
	skipMarkerPatternConstant             = `(?i)\[(?:skip ci|ci skip)\]`
	gitShowSubcommandConstant             = "show"
	headManifestReferenceTemplateConstant = "HEAD:%s"
	gitExecutorMissingMessageConstant     = "git executor not configured"
	manifestPathMissingMessageConstant    = "manifest path must be provided"
	headVersionLookupTemplateConstant     = "unable to read manifest at branch tip: %w"
)

// ErrGitExecutorNotConfigured indicates the git executor dependency was missing.
var ErrGitExecutorNotConfigured = errors.New(gitExecutorMissingMessageConstant)

// ErrManifestPathRequired indicates the manifest path option was empty.
var ErrManifestPathRequired = errors.New(manifestPathMissingMessageConstant)

var skipMarkerPattern = regexp.MustCompile(skipMarkerPatternConstant)

// MessageCarriesSkipMarker reports whether the commit message contains a
// bracketed skip marker ([skip ci] or [ci skip], case-insensitive).
func MessageCarriesSkipMarker(commitMessage string) bool {
	return skipMarkerPattern.MatchString(commitMessage)
}

// GitExecutor exposes the git invocation used to read the branch-tip manifest.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Decision describes whether the interactive menu must be shown before committing.
type Decision int

// Gate decisions.
const (
	// DecisionCommitDirectly proceeds to the commit without confirmation.
	DecisionCommitDirectly Decision = iota
	// DecisionRequireMenu demands an interactive version choice first.
	DecisionRequireMenu
)

// Gate decides whether a commit needs interactive version confirmation.
type Gate struct {
	executor             GitExecutor
	manifestRelativePath string
}

// NewGate constructs a Gate reading the branch-tip manifest through git.
func NewGate(executor GitExecutor, manifestRelativePath string) (*Gate, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	if len(manifestRelativePath) == 0 {
		return nil, ErrManifestPathRequired
	}
	return &Gate{executor: executor, manifestRelativePath: manifestRelativePath}, nil
}

// Evaluate compares the working manifest version against the branch tip and
// inspects the commit message for a skip marker. The menu is required only
// when the version is unchanged and no skip marker is present.
func (gate *Gate) Evaluate(executionContext context.Context, repositoryPath string, workingVersion semver.Version, commitMessage string) (Decision, error) {
	headVersion, headVersionKnown, lookupError := gate.HeadVersion(executionContext, repositoryPath)
	if lookupError != nil {
		return DecisionCommitDirectly, lookupError
	}

	if headVersionKnown && headVersion != workingVersion {
		return DecisionCommitDirectly, nil
	}
	if !headVersionKnown {
		return DecisionCommitDirectly, nil
	}

	if MessageCarriesSkipMarker(commitMessage) {
		return DecisionCommitDirectly, nil
	}

	return DecisionRequireMenu, nil
}

// HeadVersion reads the manifest version as recorded at HEAD. A manifest
// that does not exist at the tip, or whose version cannot be interpreted,
// yields headVersionKnown=false; callers proceed without a comparison.
func (gate *Gate) HeadVersion(executionContext context.Context, repositoryPath string) (semver.Version, bool, error) {
	commandDetails := execshell.CommandDetails{
		Arguments:        []string{gitShowSubcommandConstant, fmt.Sprintf(headManifestReferenceTemplateConstant, gate.manifestRelativePath)},
		WorkingDirectory: repositoryPath,
	}

	executionResult, executionError := gate.executor.ExecuteGit(executionContext, commandDetails)
	if executionError != nil {
		commandFailure := execshell.CommandFailedError{}
		if errors.As(executionError, &commandFailure) {
			return semver.Version{}, false, nil
		}
		return semver.Version{}, false, fmt.Errorf(headVersionLookupTemplateConstant, executionError)
	}

	headVersion, parseError := manifest.VersionFromDocument([]byte(executionResult.StandardOutput))
	if parseError != nil {
		return semver.Version{}, false, nil
	}

	return headVersion, true, nil
}
