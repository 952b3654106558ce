package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseGlobalOptions(t *testing.T) {
	testCases := []struct {
		name                    string
		arguments               []string
		expectedConfigPath      string
		expectedLogLevel        string
		expectedLogLevelChanged bool
		expectedHelp            bool
		expectedCommitArguments []string
		expectError             bool
	}{
		{
			name:                    "commit_arguments_pass_through",
			arguments:               []string{"-m", "fix: adjust parser", "--no-verify"},
			expectedCommitArguments: []string{"-m", "fix: adjust parser", "--no-verify"},
		},
		{
			name:                    "config_flag_extracted",
			arguments:               []string{"--config", "/tmp/config.yaml", "-m", "fix: x"},
			expectedConfigPath:      "/tmp/config.yaml",
			expectedCommitArguments: []string{"-m", "fix: x"},
		},
		{
			name:                    "inline_assignment_extracted",
			arguments:               []string{"--log-level=debug", "-am", "fix: x"},
			expectedLogLevel:        "debug",
			expectedLogLevelChanged: true,
			expectedCommitArguments: []string{"-am", "fix: x"},
		},
		{
			name:                    "wrapper_flags_after_commit_arguments",
			arguments:               []string{"-m", "fix: x", "--log-level", "warn"},
			expectedLogLevel:        "warn",
			expectedLogLevelChanged: true,
			expectedCommitArguments: []string{"-m", "fix: x"},
		},
		{
			name:         "help_requested",
			arguments:    []string{"--help"},
			expectedHelp: true,
		},
		{
			name:        "missing_flag_value_rejected",
			arguments:   []string{"--config"},
			expectError: true,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			options, commitArguments, parseError := parseGlobalOptions(testCase.arguments)
			if testCase.expectError {
				require.Error(t, parseError)
				return
			}
			require.NoError(t, parseError)
			require.Equal(t, testCase.expectedConfigPath, options.configFilePath)
			require.Equal(t, testCase.expectedLogLevel, options.logLevelValue)
			require.Equal(t, testCase.expectedLogLevelChanged, options.logLevelChanged)
			require.Equal(t, testCase.expectedHelp, options.helpRequested)
			require.Equal(t, testCase.expectedCommitArguments, commitArguments)
		})
	}
}

func TestInitializeConfigurationAppliesOverrides(t *testing.T) {
	configurationDirectory := t.TempDir()
	configurationFilePath := filepath.Join(configurationDirectory, "config.yaml")
	configurationContent := "common:\n  log_level: warn\ncommit:\n  remote: upstream\n"
	require.NoError(t, os.WriteFile(configurationFilePath, []byte(configurationContent), 0o600))

	application := NewApplication()
	initializationError := application.initializeConfiguration(application.rootCommand, globalOptions{
		configFilePath:   configurationFilePath,
		logLevelValue:    "error",
		logLevelChanged:  true,
		logFormatValue:   "structured",
		logFormatChanged: true,
	})
	require.NoError(t, initializationError)

	require.Equal(t, "error", application.configuration.Common.LogLevel)
	require.Equal(t, "structured", application.configuration.Common.LogFormat)
	require.Equal(t, "upstream", application.configuration.Commit.RemoteName)
	// Keys absent from the file keep their embedded defaults.
	require.Equal(t, "package.json", application.configuration.Commit.ManifestPath)
	require.Equal(t, "commit-pkg", application.configuration.Commit.MarkerName)

	contextConfigurationPath, available := application.commandContextAccessor.ConfigurationFilePath(application.rootCommand.Context())
	require.True(t, available)
	require.Equal(t, configurationFilePath, contextConfigurationPath)

	require.False(t, application.humanReadableLoggingEnabled())
}

func TestInitializeConfigurationRejectsUnknownLogLevel(t *testing.T) {
	application := NewApplication()
	initializationError := application.initializeConfiguration(application.rootCommand, globalOptions{
		logLevelValue:   "verbose",
		logLevelChanged: true,
	})
	require.Error(t, initializationError)
	require.Contains(t, initializationError.Error(), "unable to create logger")
}

func TestDefaultConfigurationValues(t *testing.T) {
	defaults := DefaultConfigurationValues()
	require.Equal(t, "package.json", defaults["commit.manifest"])
	require.Equal(t, "origin", defaults["commit.remote"])
	require.Equal(t, "commit-pkg", defaults["commit.marker"])
}
