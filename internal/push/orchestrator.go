// Package push offers and performs a push after a successful commit.
package push

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/commitpkg/internal/execshell"
	"github.com/temirov/commitpkg/internal/menu"
)

const (
	gitPushSubcommandConstant           = "push"
	gitPorcelainFlagConstant            = "--porcelain"
	gitRemoteSubcommandConstant         = "remote"
	gitGetURLSubcommandConstant         = "get-url"
	pushMenuTitleConstant               = "Push the commit?"
	declineOptionLabelConstant          = "no"
	acceptOptionLabelConstant           = "yes"
	pushedToTemplateConstant            = "Pushed to %s\n"
	errorPrefixConstant                 = "ERROR: "
	pushFailedMessageConstant           = "push failed"
	executorMissingMessageConstant      = "git executor not configured"
	presenterMissingMessageConstant     = "menu presenter not configured"
	pushAttemptFailedLogMessageConstant = "push attempt failed"
	logFieldRemoteConstant              = "remote"
)

// ErrPushFailed indicates the push invocation was rejected by git or the
// remote. The failure is terminal and is not retried.
var ErrPushFailed = errors.New(pushFailedMessageConstant)

// ErrGitExecutorNotConfigured indicates the git executor dependency was missing.
var ErrGitExecutorNotConfigured = errors.New(executorMissingMessageConstant)

// ErrMenuPresenterNotConfigured indicates the menu presenter dependency was missing.
var ErrMenuPresenterNotConfigured = errors.New(presenterMissingMessageConstant)

// GitExecutor exposes the git invocations used for pushing.
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
	MenuPresenter MenuPresenter
	Logger        *zap.Logger
	Output        io.Writer
	ErrorOutput   io.Writer
}

// Options configures a single push orchestration.
type Options struct {
	RepositoryPath string
	RemoteName     string
}

// Orchestrator offers a push after a successful commit and performs it when
// the user accepts.
type Orchestrator struct {
	executor      GitExecutor
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
		menuPresenter: dependencies.MenuPresenter,
		logger:        logger,
		output:        output,
		errorOutput:   errorOutput,
	}, nil
}

// Run presents the push offer and, when accepted, invokes git push. Declining
// the offer, or cancelling the menu, finishes the run without error. A push
// rejection returns ErrPushFailed; the failure is not retried because remote
// and network errors are outside this tool's recovery scope.
func (orchestrator *Orchestrator) Run(executionContext context.Context, options Options) error {
	accepted, offerError := orchestrator.presentOffer(executionContext)
	if offerError != nil {
		return offerError
	}
	if !accepted {
		return nil
	}

	executionResult, pushError := orchestrator.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitPushSubcommandConstant, gitPorcelainFlagConstant, options.RemoteName},
		WorkingDirectory: options.RepositoryPath,
	})
	if pushError != nil {
		orchestrator.logger.Warn(
			pushAttemptFailedLogMessageConstant,
			zap.String(logFieldRemoteConstant, options.RemoteName),
			zap.Error(pushError),
		)
		fmt.Fprintf(orchestrator.errorOutput, "%s%v\n", errorPrefixConstant, pushError)
		return fmt.Errorf("%w: %v", ErrPushFailed, pushError)
	}

	if warningText := strings.TrimSpace(executionResult.StandardError); len(warningText) > 0 {
		fmt.Fprintln(orchestrator.errorOutput, warningText)
	}

	fmt.Fprintf(orchestrator.output, pushedToTemplateConstant, orchestrator.remoteURL(executionContext, options))
	if refReport := strings.TrimSpace(executionResult.StandardOutput); len(refReport) > 0 {
		fmt.Fprintln(orchestrator.output, refReport)
	}
	return nil
}

func (orchestrator *Orchestrator) presentOffer(executionContext context.Context) (bool, error) {
	offerOptions := []menu.Option{
		{Label: declineOptionLabelConstant},
		{Label: acceptOptionLabelConstant},
	}

	selection, menuError := orchestrator.menuPresenter.Choose(executionContext, pushMenuTitleConstant, offerOptions)
	if menuError != nil {
		return false, menuError
	}
	if selection.Cancelled {
		return false, nil
	}
	return selection.Index == 1, nil
}

func (orchestrator *Orchestrator) remoteURL(executionContext context.Context, options Options) string {
	executionResult, remoteError := orchestrator.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitRemoteSubcommandConstant, gitGetURLSubcommandConstant, options.RemoteName},
		WorkingDirectory: options.RepositoryPath,
	})
	if remoteError != nil {
		return options.RemoteName
	}
	return strings.TrimSpace(executionResult.StandardOutput)
}
