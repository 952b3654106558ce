// Package utils exposes reusable helpers consumed across the CLI.
//
// It houses the ConfigurationLoader and LoggerFactory abstractions that
// integrate viper, environment variables, and zap logging, plus small
// plumbing types shared by the command layer.
package utils
