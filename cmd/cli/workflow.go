package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"

	"github.com/temirov/commitpkg/internal/commit"
	"github.com/temirov/commitpkg/internal/execshell"
	"github.com/temirov/commitpkg/internal/gate"
	"github.com/temirov/commitpkg/internal/manifest"
	"github.com/temirov/commitpkg/internal/menu"
	"github.com/temirov/commitpkg/internal/push"
	"github.com/temirov/commitpkg/internal/recovery"
	"github.com/temirov/commitpkg/internal/semver"
	"github.com/temirov/commitpkg/internal/ui"
)

const (
	commitManifestConfigKeyConstant        = "commit.manifest"
	commitRemoteConfigKeyConstant          = "commit.remote"
	commitMarkerConfigKeyConstant          = "commit.marker"
	defaultManifestFileNameConstant        = "package.json"
	defaultRemoteNameConstant              = "origin"
	defaultMarkerFileNameConstant          = "commit-pkg"
	versionMenuTitleTemplateConstant       = "Version %s is already committed. Choose a version change"
	manifestReadErrorTemplateConstant      = "unable to read manifest version: %w"
	loggerProviderMissingMessageConstant   = "logger provider not configured"
	workingDirectoryMissingMessageConstant = "working directory not configured"
	workflowGateLogMessageConstant         = "commit gate evaluated"
	logFieldDecisionMenuConstant           = "menu_required"
	logFieldBaselineVersionConstant        = "baseline_version"
)

// ErrLoggerProviderNotConfigured indicates the builder was missing a logger provider.
var ErrLoggerProviderNotConfigured = errors.New(loggerProviderMissingMessageConstant)

// ErrWorkingDirectoryNotConfigured indicates the builder was missing a working directory.
var ErrWorkingDirectoryNotConfigured = errors.New(workingDirectoryMissingMessageConstant)

// CommitConfiguration holds the configurable collaborator names of the
// commit workflow.
type CommitConfiguration struct {
	ManifestPath string `mapstructure:"manifest"`
	RemoteName   string `mapstructure:"remote"`
	MarkerName   string `mapstructure:"marker"`
}

// DefaultConfigurationValues exposes the workflow defaults consumed by the
// configuration loader.
func DefaultConfigurationValues() map[string]any {
	return map[string]any{
		commitManifestConfigKeyConstant: defaultManifestFileNameConstant,
		commitRemoteConfigKeyConstant:   defaultRemoteNameConstant,
		commitMarkerConfigKeyConstant:   defaultMarkerFileNameConstant,
	}
}

// GitExecutor exposes the git invocations the workflow needs.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// MenuPresenter resolves a single-selection menu interaction.
type MenuPresenter interface {
	Choose(executionContext context.Context, title string, options []menu.Option) (menu.Selection, error)
}

// ManifestStore reads and rewrites the manifest version.
type ManifestStore interface {
	ReadVersion() (semver.Version, error)
	WriteVersion(version semver.Version) error
}

// WorkflowBuilder assembles the commit workflow from providers resolved at
// execution time, mirroring how commands obtain their collaborators.
type WorkflowBuilder struct {
	LoggerProvider               func() *zap.Logger
	ConfigurationProvider        func() CommitConfiguration
	HumanReadableLoggingProvider func() bool
	WorkingDirectory             string
	Input                        io.Reader
	Output                       io.Writer
	ErrorOutput                  io.Writer
	Exit                         func(code int)

	// GitExecutor, MenuPresenter, and ManifestStore override the defaults
	// when set; tests substitute scripted collaborators here.
	GitExecutor   GitExecutor
	MenuPresenter MenuPresenter
	ManifestStore ManifestStore
}

// Workflow drives one complete run: policy gate, optional version menu,
// commit, push offer, and interrupt recovery wiring.
type Workflow struct {
	logger        *zap.Logger
	configuration CommitConfiguration
	executor      GitExecutor
	menuPresenter MenuPresenter
	manifestStore ManifestStore
	repository    string
	output        io.Writer
	errorOutput   io.Writer
	exit          func(code int)
}

// Build validates the builder and resolves the default collaborators.
func (builder *WorkflowBuilder) Build() (*Workflow, error) {
	if builder.LoggerProvider == nil {
		return nil, ErrLoggerProviderNotConfigured
	}
	if len(builder.WorkingDirectory) == 0 {
		return nil, ErrWorkingDirectoryNotConfigured
	}

	logger := builder.LoggerProvider()
	if logger == nil {
		logger = zap.NewNop()
	}

	configuration := CommitConfiguration{
		ManifestPath: defaultManifestFileNameConstant,
		RemoteName:   defaultRemoteNameConstant,
		MarkerName:   defaultMarkerFileNameConstant,
	}
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}

	executor := builder.GitExecutor
	if executor == nil {
		shellExecutor, executorError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner())
		if executorError != nil {
			return nil, executorError
		}
		if builder.HumanReadableLoggingProvider != nil && builder.HumanReadableLoggingProvider() {
			shellExecutor.SetCommandEventObserver(ui.NewConsoleCommandEventLogger(logger))
		}
		executor = shellExecutor
	}

	menuPresenter := builder.MenuPresenter
	if menuPresenter == nil {
		menuPresenter = menu.NewController(builder.Input, builder.Output)
	}

	manifestStore := builder.ManifestStore
	if manifestStore == nil {
		manifestStore = manifest.NewStore(filepath.Join(builder.WorkingDirectory, configuration.ManifestPath))
	}

	output := builder.Output
	if output == nil {
		output = io.Discard
	}
	errorOutput := builder.ErrorOutput
	if errorOutput == nil {
		errorOutput = io.Discard
	}
	exit := builder.Exit
	if exit == nil {
		exit = func(int) {}
	}

	return &Workflow{
		logger:        logger,
		configuration: configuration,
		executor:      executor,
		menuPresenter: menuPresenter,
		manifestStore: manifestStore,
		repository:    builder.WorkingDirectory,
		output:        output,
		errorOutput:   errorOutput,
		exit:          exit,
	}, nil
}

// Run executes the commit workflow over the provided raw commit arguments.
// A user cancel at the version menu finishes the run without error; a commit
// failure the user declined to retry and a rejected push both surface as
// errors for a nonzero exit.
func (workflow *Workflow) Run(executionContext context.Context, rawArguments []string) error {
	commitArguments, argumentsError := commit.ParseArguments(rawArguments)
	if argumentsError != nil {
		return argumentsError
	}

	gitDirectory, gitDirectoryError := commit.ResolveGitDirectory(executionContext, workflow.executor, workflow.repository)
	if gitDirectoryError != nil {
		return gitDirectoryError
	}
	marker := commit.NewMarker(filepath.Join(gitDirectory, workflow.configuration.MarkerName))

	commitGate, gateError := gate.NewGate(workflow.executor, workflow.configuration.ManifestPath)
	if gateError != nil {
		return gateError
	}

	if reconcileError := workflow.reconcileStaleMarker(executionContext, commitGate, marker, gitDirectory); reconcileError != nil {
		return reconcileError
	}

	baselineVersion, manifestError := workflow.manifestStore.ReadVersion()
	if manifestError != nil {
		return fmt.Errorf(manifestReadErrorTemplateConstant, manifestError)
	}
	session := commit.NewSession(baselineVersion)

	recoveryWatcher, recoveryError := recovery.NewWatcher(recovery.Dependencies{
		Session:       session,
		Marker:        marker,
		ManifestStore: workflow.manifestStore,
		MenuPresenter: workflow.menuPresenter,
		GitDirectory:  gitDirectory,
		Logger:        workflow.logger,
		Output:        workflow.output,
		ErrorOutput:   workflow.errorOutput,
		Exit:          workflow.exit,
	})
	if recoveryError != nil {
		return recoveryError
	}
	stopWatching := recoveryWatcher.Start(executionContext)
	defer stopWatching()

	decision, evaluationError := commitGate.Evaluate(executionContext, workflow.repository, baselineVersion, commitArguments.Message)
	if evaluationError != nil {
		return evaluationError
	}
	workflow.logger.Debug(
		workflowGateLogMessageConstant,
		zap.Bool(logFieldDecisionMenuConstant, decision == gate.DecisionRequireMenu),
		zap.String(logFieldBaselineVersionConstant, baselineVersion.String()),
	)

	commitMessage := commitArguments.Message
	resultingVersion := baselineVersion

	if decision == gate.DecisionRequireMenu {
		chosenVersion, updatedMessage, proceed, menuError := workflow.resolveVersionMenu(executionContext, baselineVersion, commitMessage)
		if menuError != nil {
			return menuError
		}
		if !proceed {
			return nil
		}
		commitMessage = updatedMessage
		resultingVersion = chosenVersion
	}

	commitOrchestrator, orchestratorError := commit.NewOrchestrator(commit.Dependencies{
		GitExecutor:   workflow.executor,
		Marker:        marker,
		Session:       session,
		MenuPresenter: workflow.menuPresenter,
		Logger:        workflow.logger,
		Output:        workflow.output,
		ErrorOutput:   workflow.errorOutput,
	})
	if orchestratorError != nil {
		return orchestratorError
	}

	_, commitError := commitOrchestrator.Run(executionContext, commit.Options{
		RepositoryPath:     workflow.repository,
		MessageFlag:        commitArguments.MessageFlag,
		Message:            commitMessage,
		ForwardedArguments: commitArguments.Forwarded,
		ResultingVersion:   resultingVersion,
	})
	if commitError != nil {
		if errors.Is(commitError, commit.ErrInterrupted) {
			// The retry menu was cancelled with the marker still on disk;
			// reconcile exactly as if the signal had been delivered.
			recoveryWatcher.HandleSignal(executionContext, syscall.SIGINT)
			return nil
		}
		return commitError
	}

	pushOrchestrator, pushBuildError := push.NewOrchestrator(push.Dependencies{
		GitExecutor:   workflow.executor,
		MenuPresenter: workflow.menuPresenter,
		Logger:        workflow.logger,
		Output:        workflow.output,
		ErrorOutput:   workflow.errorOutput,
	})
	if pushBuildError != nil {
		return pushBuildError
	}

	return pushOrchestrator.Run(executionContext, push.Options{
		RepositoryPath: workflow.repository,
		RemoteName:     workflow.configuration.RemoteName,
	})
}

// reconcileStaleMarker handles a commit marker left behind by a crashed run.
// The branch tip is only consulted when a stale marker is actually present;
// its recorded version is the restore target offered by the undo menu, since
// the crashed attempt may have rewritten the working manifest before dying.
func (workflow *Workflow) reconcileStaleMarker(executionContext context.Context, commitGate *gate.Gate, marker *commit.Marker, gitDirectory string) error {
	markerPresent, inspectError := marker.Exists()
	if inspectError != nil {
		return inspectError
	}
	if !markerPresent {
		return nil
	}

	committedVersion, committedVersionKnown, headError := commitGate.HeadVersion(executionContext, workflow.repository)
	if headError != nil {
		return headError
	}

	return recovery.ReconcileAbandonedCommit(executionContext, recovery.AbandonedCommitOptions{
		Marker:                marker,
		ManifestStore:         workflow.manifestStore,
		MenuPresenter:         workflow.menuPresenter,
		GitDirectory:          gitDirectory,
		CommittedVersion:      committedVersion,
		CommittedVersionKnown: committedVersionKnown,
		Logger:                workflow.logger,
		Output:                workflow.output,
		ErrorOutput:           workflow.errorOutput,
	})
}

// resolveVersionMenu presents the version menu and applies the selected
// action after the menu program has finished. proceed=false reports a user
// cancel; the caller treats it as a clean exit.
func (workflow *Workflow) resolveVersionMenu(executionContext context.Context, baselineVersion semver.Version, commitMessage string) (resultingVersion semver.Version, updatedMessage string, proceed bool, err error) {
	resultingVersion = baselineVersion
	updatedMessage = commitMessage

	menuOptions, cancelIndex := commit.BuildVersionMenuOptions(baselineVersion, commit.VersionMenuActions{
		WriteVersion: func(chosenVersion semver.Version) error {
			if writeError := workflow.manifestStore.WriteVersion(chosenVersion); writeError != nil {
				return writeError
			}
			resultingVersion = chosenVersion
			return nil
		},
		PrependSkipMarker: func() {
			updatedMessage = commit.SkipMarkerPrefix() + commitMessage
		},
	})

	menuTitle := fmt.Sprintf(versionMenuTitleTemplateConstant, baselineVersion.String())
	selection, selectionError := workflow.menuPresenter.Choose(executionContext, menuTitle, menuOptions)
	if selectionError != nil {
		return baselineVersion, commitMessage, false, selectionError
	}
	if selection.Cancelled || selection.Index == cancelIndex {
		return baselineVersion, commitMessage, false, nil
	}

	if applyAction := menuOptions[selection.Index].Apply; applyAction != nil {
		if applyError := applyAction(); applyError != nil {
			return baselineVersion, commitMessage, false, applyError
		}
	}

	return resultingVersion, updatedMessage, true, nil
}
