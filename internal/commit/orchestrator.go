package commit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/commitpkg/internal/execshell"
	"github.com/temirov/commitpkg/internal/menu"
	"github.com/temirov/commitpkg/internal/semver"
)

const (
	gitCommitSubcommandConstant           = "commit"
	gitRevParseSubcommandConstant         = "rev-parse"
	gitAbbrevRefFlagConstant              = "--abbrev-ref"
	gitHeadReferenceConstant              = "HEAD"
	tryAgainOptionLabelConstant           = "try again"
	exitOptionLabelConstant               = "exit"
	commitFailedMenuTitleConstant         = "Commit failed"
	errorPrefixConstant                   = "ERROR: "
	commitFailedMessageConstant           = "commit failed"
	interruptedMessageConstant            = "interrupted"
	executorMissingMessageConstant        = "git executor not configured"
	markerMissingMessageConstant          = "commit marker not configured"
	sessionMissingMessageConstant         = "session not configured"
	menuPresenterMissingMessageConstant   = "menu presenter not configured"
	commitAttemptFailedLogMessageConstant = "commit attempt failed"
	logFieldAttemptConstant               = "attempt"
)

// ErrCommitFailed indicates the user chose to stop retrying after a failed commit.
var ErrCommitFailed = errors.New(commitFailedMessageConstant)

// ErrInterrupted indicates the user interrupted an interactive prompt; the
// caller routes this to interrupt recovery.
var ErrInterrupted = errors.New(interruptedMessageConstant)

// ErrGitExecutorNotConfigured indicates the git executor dependency was missing.
var ErrGitExecutorNotConfigured = errors.New(executorMissingMessageConstant)

// ErrMarkerNotConfigured indicates the commit marker dependency was missing.
var ErrMarkerNotConfigured = errors.New(markerMissingMessageConstant)

// ErrSessionNotConfigured indicates the session dependency was missing.
var ErrSessionNotConfigured = errors.New(sessionMissingMessageConstant)

// ErrMenuPresenterNotConfigured indicates the menu presenter dependency was missing.
var ErrMenuPresenterNotConfigured = errors.New(menuPresenterMissingMessageConstant)

// GitExecutor exposes the git invocation used for committing.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// MenuPresenter resolves a single-selection menu interaction.
type MenuPresenter interface {
	Choose(executionContext context.Context, title string, options []menu.Option) (menu.Selection, error)
}

// Dependencies enumerates the collaborators the orchestrator requires.
type Dependencies struct {
	GitExecutor   GitExecutor
	Marker        *Marker
	Session       *Session
	MenuPresenter MenuPresenter
	Logger        *zap.Logger
	Output        io.Writer
	ErrorOutput   io.Writer
}

// Options configures a single commit orchestration.
type Options struct {
	RepositoryPath     string
	MessageFlag        string
	Message            string
	ForwardedArguments []string
	ResultingVersion   semver.Version
}

// Orchestrator sequences marker creation, the commit invocation, retry
// handling, and cleanup.
type Orchestrator struct {
	executor      GitExecutor
	marker        *Marker
	session       *Session
	menuPresenter MenuPresenter
	logger        *zap.Logger
	output        io.Writer
	errorOutput   io.Writer
}

// NewOrchestrator constructs an Orchestrator from the provided dependencies.
func NewOrchestrator(dependencies Dependencies) (*Orchestrator, error) {
	if dependencies.GitExecutor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	if dependencies.Marker == nil {
		return nil, ErrMarkerNotConfigured
	}
	if dependencies.Session == nil {
		return nil, ErrSessionNotConfigured
	}
	if dependencies.MenuPresenter == nil {
		return nil, ErrMenuPresenterNotConfigured
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

	return &Orchestrator{
		executor:      dependencies.GitExecutor,
		marker:        dependencies.Marker,
		session:       dependencies.Session,
		menuPresenter: dependencies.MenuPresenter,
		logger:        logger,
		output:        output,
		errorOutput:   errorOutput,
	}, nil
}

// Run drives the commit state machine. The marker is created before every
// attempt and removed only once the attempt's outcome is known: immediately
// on success, or after the user resolves the retry menu on failure. While
// the retry menu is open the marker stays on disk so an interrupt still
// observes a commit in flight.
func (orchestrator *Orchestrator) Run(executionContext context.Context, options Options) (Summary, error) {
	commitArguments := append([]string{gitCommitSubcommandConstant, options.MessageFlag, options.Message}, options.ForwardedArguments...)

	for attemptNumber := 1; ; attemptNumber++ {
		if markerError := orchestrator.marker.Create(); markerError != nil {
			return Summary{}, markerError
		}
		orchestrator.session.SetCommitting(true)

		executionResult, commitError := orchestrator.executor.ExecuteGit(executionContext, execshell.CommandDetails{
			Arguments:        commitArguments,
			WorkingDirectory: options.RepositoryPath,
		})

		if commitError == nil {
			return orchestrator.finishSuccessfulCommit(executionContext, options, executionResult)
		}

		orchestrator.logger.Warn(
			commitAttemptFailedLogMessageConstant,
			zap.Int(logFieldAttemptConstant, attemptNumber),
			zap.Error(commitError),
		)
		fmt.Fprintf(orchestrator.errorOutput, "%s%v\n", errorPrefixConstant, commitError)

		retryDecision, menuError := orchestrator.presentRetryMenu(executionContext)
		if menuError != nil {
			orchestrator.resolveAttempt()
			return Summary{}, menuError
		}

		switch retryDecision {
		case retryDecisionTryAgain:
			continue
		case retryDecisionInterrupted:
			// Marker stays on disk: recovery must see the commit in flight.
			return Summary{}, ErrInterrupted
		default:
			orchestrator.resolveAttempt()
			return Summary{}, ErrCommitFailed
		}
	}
}

type retryDecision int

const (
	retryDecisionExit retryDecision = iota
	retryDecisionTryAgain
	retryDecisionInterrupted
)

func (orchestrator *Orchestrator) presentRetryMenu(executionContext context.Context) (retryDecision, error) {
	retryOptions := []menu.Option{
		{Label: tryAgainOptionLabelConstant},
		{Label: exitOptionLabelConstant},
	}

	selection, menuError := orchestrator.menuPresenter.Choose(executionContext, commitFailedMenuTitleConstant, retryOptions)
	if menuError != nil {
		return retryDecisionExit, menuError
	}
	if selection.Cancelled {
		return retryDecisionInterrupted, nil
	}
	if selection.Index == 0 {
		return retryDecisionTryAgain, nil
	}
	return retryDecisionExit, nil
}

func (orchestrator *Orchestrator) finishSuccessfulCommit(executionContext context.Context, options Options, executionResult execshell.ExecutionResult) (Summary, error) {
	orchestrator.resolveAttempt()

	if warningText := strings.TrimSpace(executionResult.StandardError); len(warningText) > 0 {
		fmt.Fprintln(orchestrator.errorOutput, warningText)
	}

	branchName := orchestrator.currentBranchName(executionContext, options.RepositoryPath)
	filesChanged, insertions, deletions := parseChangeCounts(executionResult.StandardOutput)

	commitSummary := Summary{
		Branch:       branchName,
		Message:      options.Message,
		FilesChanged: filesChanged,
		Insertions:   insertions,
		Deletions:    deletions,
		Version:      options.ResultingVersion,
	}
	fmt.Fprintln(orchestrator.output, commitSummary.Render())

	return commitSummary, nil
}

// resolveAttempt clears the in-flight signal once an attempt's outcome is known.
func (orchestrator *Orchestrator) resolveAttempt() {
	_ = orchestrator.marker.Remove()
	orchestrator.session.SetCommitting(false)
}

func (orchestrator *Orchestrator) currentBranchName(executionContext context.Context, repositoryPath string) string {
	executionResult, branchError := orchestrator.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitRevParseSubcommandConstant, gitAbbrevRefFlagConstant, gitHeadReferenceConstant},
		WorkingDirectory: repositoryPath,
	})
	if branchError != nil {
		return gitHeadReferenceConstant
	}
	return strings.TrimSpace(executionResult.StandardOutput)
}
