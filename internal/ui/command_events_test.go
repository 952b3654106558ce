package ui_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/commitpkg/internal/execshell"
	"github.com/temirov/commitpkg/internal/ui"
)

const (
	testCommitSubcommandConstant = "commit"
	testCommitMessageConstant    = "fix: adjust parser"
)

func commitCommandFixture() execshell.ShellCommand {
	return execshell.ShellCommand{
		Name:    execshell.CommandGit,
		Details: execshell.CommandDetails{Arguments: []string{testCommitSubcommandConstant, "-m", testCommitMessageConstant}},
	}
}

func TestCommandEventFormatterMessages(testInstance *testing.T) {
	formatter := ui.CommandEventFormatter{}
	command := commitCommandFixture()

	testCases := []struct {
		name            string
		build           func() string
		expectedMessage string
	}{
		{
			name:            "started",
			build:           func() string { return formatter.BuildStartedMessage(command) },
			expectedMessage: "Running git commit -m fix: adjust parser",
		},
		{
			name:            "success",
			build:           func() string { return formatter.BuildSuccessMessage(command) },
			expectedMessage: "Completed git commit -m fix: adjust parser",
		},
		{
			name: "failure_with_standard_error",
			build: func() string {
				return formatter.BuildFailureMessage(command, execshell.ExecutionResult{ExitCode: 1, StandardError: "nothing to commit\n"})
			},
			expectedMessage: "git commit -m fix: adjust parser failed with exit code 1: nothing to commit",
		},
		{
			name: "execution_failure",
			build: func() string {
				return formatter.BuildExecutionFailureMessage(command, errors.New("executable not found"))
			},
			expectedMessage: "git commit -m fix: adjust parser failed: executable not found",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedMessage, testCase.build())
		})
	}
}

func TestConsoleCommandEventLoggerLevels(testInstance *testing.T) {
	observerCore, observedLogs := observer.New(zap.DebugLevel)
	eventLogger := ui.NewConsoleCommandEventLogger(zap.New(observerCore))
	command := commitCommandFixture()

	eventLogger.CommandStarted(command)
	eventLogger.CommandCompleted(command, execshell.ExecutionResult{ExitCode: 0})
	eventLogger.CommandCompleted(command, execshell.ExecutionResult{ExitCode: 1})
	eventLogger.CommandExecutionFailed(command, errors.New("boom"))

	recordedEntries := observedLogs.All()
	require.Len(testInstance, recordedEntries, 4)
	require.Equal(testInstance, zap.InfoLevel, recordedEntries[0].Level)
	require.Equal(testInstance, zap.InfoLevel, recordedEntries[1].Level)
	require.Equal(testInstance, zap.WarnLevel, recordedEntries[2].Level)
	require.Equal(testInstance, zap.ErrorLevel, recordedEntries[3].Level)
}
