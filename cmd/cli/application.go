package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/commitpkg/internal/utils"
)

const (
	applicationNameConstant                 = "commitpkg"
	applicationShortDescriptionConstant     = "Commit wrapper enforcing a version bump or skip marker on every commit"
	applicationLongDescriptionConstant      = "commitpkg wraps git commit: when the manifest version is unchanged and the message carries no [skip ci] marker, it asks for a version change before committing and offers a push afterwards."
	applicationUsageTemplateConstant        = "%s -m <message> [commit arguments...]"
	configFileFlagNameConstant              = "config"
	configFileFlagUsageConstant             = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagUsageConstant               = "Override the configured log level."
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagUsageConstant              = "Override the configured log format (structured or console)."
	helpFlagNameConstant                    = "help"
	helpFlagShorthandConstant               = "h"
	helpFlagUsageConstant                   = "Show usage."
	flagTokenPrefixConstant                 = "--"
	shortFlagTokenPrefixConstant            = "-"
	flagAssignmentSeparatorConstant         = "="
	missingFlagValueTemplateConstant        = "flag --%s requires a value"
	commonLogLevelConfigKeyConstant         = "common.log_level"
	commonLogFormatConfigKeyConstant        = "common.log_format"
	environmentPrefixConstant               = "COMMITPKG"
	configurationNameConstant               = "config"
	configurationTypeConstant               = "yaml"
	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationFileFieldConstant          = "config_file"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	workingDirectoryErrorTemplateConstant   = "unable to resolve working directory: %w"
	defaultConfigurationSearchPathConstant  = "."
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common ApplicationCommonConfiguration `mapstructure:"common"`
	Commit CommitConfiguration            `mapstructure:"commit"`
}

// ApplicationCommonConfiguration stores logging configuration shared across the process.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// globalOptions captures the flags owned by the wrapper itself, separated
// from the arguments forwarded to git commit.
type globalOptions struct {
	configFilePath   string
	logLevelValue    string
	logLevelChanged  bool
	logFormatValue   string
	logFormatChanged bool
	helpRequested    bool
}

// Application wires the cobra root command, configuration loader, and
// structured logger around the commit workflow.
type Application struct {
	rootCommand            *cobra.Command
	configurationLoader    *utils.ConfigurationLoader
	loggerFactory          *utils.LoggerFactory
	logger                 *zap.Logger
	configuration          ApplicationConfiguration
	configurationMetadata  utils.LoadedConfiguration
	commandContextAccessor utils.CommandContextAccessor
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	embeddedConfiguration, _ := EmbeddedDefaultConfiguration()
	configurationLoader := utils.NewConfigurationLoader(utils.LoaderOptions{
		ConfigurationName:     configurationNameConstant,
		ConfigurationType:     configurationTypeConstant,
		EnvironmentPrefix:     environmentPrefixConstant,
		SearchPaths:           []string{defaultConfigurationSearchPathConstant},
		EmbeddedConfiguration: embeddedConfiguration,
	})

	application := &Application{
		configurationLoader:    configurationLoader,
		loggerFactory:          utils.NewLoggerFactory(),
		logger:                 zap.NewNop(),
		commandContextAccessor: utils.NewCommandContextAccessor(),
	}

	cobraCommand := &cobra.Command{
		Use:           fmt.Sprintf(applicationUsageTemplateConstant, applicationNameConstant),
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs,
		// Every argument that is not a wrapper flag belongs to git commit
		// verbatim, so cobra must not interpret the argument list.
		DisableFlagParsing: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runRootCommand(command, arguments)
		},
	}
	cobraCommand.SetContext(context.Background())

	application.rootCommand = cobraCommand

	return application
}

// Execute runs the configured cobra command hierarchy and ensures logger flushing.
func (application *Application) Execute() error {
	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

func (application *Application) runRootCommand(command *cobra.Command, arguments []string) error {
	options, commitArguments, parseError := parseGlobalOptions(arguments)
	if parseError != nil {
		return parseError
	}

	if options.helpRequested {
		return command.Help()
	}

	if configurationError := application.initializeConfiguration(command, options); configurationError != nil {
		return configurationError
	}

	workingDirectory, workingDirectoryError := os.Getwd()
	if workingDirectoryError != nil {
		return fmt.Errorf(workingDirectoryErrorTemplateConstant, workingDirectoryError)
	}

	workflowBuilder := WorkflowBuilder{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		ConfigurationProvider: func() CommitConfiguration {
			return application.configuration.Commit
		},
		HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
		WorkingDirectory:             workingDirectory,
		Input:                        os.Stdin,
		Output:                       utils.NewFlushingWriter(os.Stdout),
		ErrorOutput:                  utils.NewFlushingWriter(os.Stderr),
		Exit:                         os.Exit,
	}
	workflow, buildError := workflowBuilder.Build()
	if buildError != nil {
		return buildError
	}

	return workflow.Run(command.Context(), commitArguments)
}

// parseGlobalOptions separates the wrapper's own flags from the commit
// argument list. Wrapper flags may appear anywhere; everything else keeps its
// original order.
func parseGlobalOptions(arguments []string) (globalOptions, []string, error) {
	flagSet := pflag.NewFlagSet(applicationNameConstant, pflag.ContinueOnError)
	configFlagValue := flagSet.String(configFileFlagNameConstant, "", configFileFlagUsageConstant)
	logLevelFlagValue := flagSet.String(logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	logFormatFlagValue := flagSet.String(logFormatFlagNameConstant, "", logFormatFlagUsageConstant)
	helpFlagValue := flagSet.BoolP(helpFlagNameConstant, helpFlagShorthandConstant, false, helpFlagUsageConstant)

	wrapperTokens := []string{}
	var commitArguments []string

	for argumentIndex := 0; argumentIndex < len(arguments); argumentIndex++ {
		currentArgument := arguments[argumentIndex]
		flagName, hasInlineValue := splitFlagToken(currentArgument)

		if !isWrapperFlagName(flagName) {
			commitArguments = append(commitArguments, currentArgument)
			continue
		}

		wrapperTokens = append(wrapperTokens, currentArgument)
		if flagName != helpFlagNameConstant && flagName != helpFlagShorthandConstant && !hasInlineValue {
			if argumentIndex+1 >= len(arguments) {
				return globalOptions{}, nil, fmt.Errorf(missingFlagValueTemplateConstant, flagName)
			}
			argumentIndex++
			wrapperTokens = append(wrapperTokens, arguments[argumentIndex])
		}
	}

	if parseError := flagSet.Parse(wrapperTokens); parseError != nil {
		return globalOptions{}, nil, parseError
	}

	options := globalOptions{
		configFilePath:   *configFlagValue,
		logLevelValue:    *logLevelFlagValue,
		logLevelChanged:  flagSet.Changed(logLevelFlagNameConstant),
		logFormatValue:   *logFormatFlagValue,
		logFormatChanged: flagSet.Changed(logFormatFlagNameConstant),
		helpRequested:    *helpFlagValue,
	}
	return options, commitArguments, nil
}

func splitFlagToken(argument string) (flagName string, hasInlineValue bool) {
	token := argument
	switch {
	case strings.HasPrefix(token, flagTokenPrefixConstant):
		token = strings.TrimPrefix(token, flagTokenPrefixConstant)
	case strings.HasPrefix(token, shortFlagTokenPrefixConstant):
		token = strings.TrimPrefix(token, shortFlagTokenPrefixConstant)
	default:
		return "", false
	}

	if separatorIndex := strings.Index(token, flagAssignmentSeparatorConstant); separatorIndex >= 0 {
		return token[:separatorIndex], true
	}
	return token, false
}

func isWrapperFlagName(flagName string) bool {
	switch flagName {
	case configFileFlagNameConstant, logLevelFlagNameConstant, logFormatFlagNameConstant,
		helpFlagNameConstant, helpFlagShorthandConstant:
		return true
	default:
		return false
	}
}

func (application *Application) initializeConfiguration(command *cobra.Command, options globalOptions) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:  string(utils.LogLevelInfo),
		commonLogFormatConfigKeyConstant: string(utils.LogFormatConsole),
	}
	for configurationKey, configurationValue := range DefaultConfigurationValues() {
		defaultValues[configurationKey] = configurationValue
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(options.configFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration

	if options.logLevelChanged {
		application.configuration.Common.LogLevel = options.logLevelValue
	}
	if options.logFormatChanged {
		application.configuration.Common.LogFormat = options.logFormatValue
	}

	logger, loggerCreationError := application.loggerFactory.CreateLogger(
		utils.LogLevel(application.configuration.Common.LogLevel),
		utils.LogFormat(application.configuration.Common.LogFormat),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = logger

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
	)

	if command != nil {
		updatedContext := application.commandContextAccessor.WithConfigurationFilePath(
			command.Context(),
			application.configurationMetadata.ConfigFileUsed,
		)
		command.SetContext(updatedContext)
	}

	return nil
}

func (application *Application) humanReadableLoggingEnabled() bool {
	logFormatValue := strings.TrimSpace(application.configuration.Common.LogFormat)
	return strings.EqualFold(logFormatValue, string(utils.LogFormatConsole))
}

func (application *Application) flushLogger() error {
	if application.logger == nil {
		return nil
	}

	syncError := application.logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	default:
		return syncError
	}
}
