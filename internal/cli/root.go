// Package cli defines the command-line interface for deployctl.
package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/newsletter-ops/deployctl/internal/logging"
)

const (
	// defaultConfigPath is the default path to the deployment configuration file.
	defaultConfigPath = "deploy.yaml"
)

// Options stores global CLI options shared between commands.
type Options struct {
	ConfigPath string
	LogLevel   logging.Level
}

// Execute builds the root command, runs it with the provided args and logger, and returns any error.
func Execute(args []string, logger *slog.Logger) error {
	if logger == nil {
		logger = logging.NewLogger(os.Stderr, logging.LevelInfo)
	}

	var base baseEnv
	if err := parseEnv(&base); err != nil {
		return err
	}

	rootOpts := &Options{
		ConfigPath: defaultConfigPath,
		LogLevel:   logging.LevelInfo,
	}
	if base.ConfigPath != "" {
		rootOpts.ConfigPath = base.ConfigPath
	}

	rootCmd := newRootCommand(rootOpts, base, logger)
	rootCmd.SetArgs(args)

	return rootCmd.Execute()
}

// newRootCommand constructs the root cobra.Command with global flags and subcommands.
func newRootCommand(opts *Options, base baseEnv, logger *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deployctl",
		Short: "deployctl renders and ships a cloud application spec",
		Long: "deployctl renders an application specification from a template, resolving " +
			"environment values and Vault secrets, submits it to the platform's update API, " +
			"and removes the rendered file so secrets do not persist on disk.",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level := logging.ParseLevel(cmd.Flag("log-level").Value.String())
			opts.LogLevel = level
			logger = logging.NewLogger(os.Stderr, level)
			cmd.SetContext(context.WithValue(cmd.Context(), loggerKey{}, logger))
			logger.Debug("logger initialized", "level", level)
			return nil
		},
	}

	defaultLevel := base.LogLevel
	if defaultLevel == "" {
		defaultLevel = "info"
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", opts.ConfigPath, "Path to deploy.yaml configuration file")
	cmd.PersistentFlags().String("log-level", defaultLevel, "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("vars", base.Vars, "Additional variables in k=v,k2=v2 format")
	cmd.PersistentFlags().String("env-file", base.EnvFile, "Path to an extra .env file merged over the environment")

	cmd.AddCommand(
		newDeployCommand(opts),
		newDoctorCommand(opts),
		newRenderCommand(opts),
		newApplyCommand(opts),
	)

	return cmd
}

// loggerKey is a private context key used to store a logger in command contexts.
type loggerKey struct{}

// LoggerFromContext extracts a logger from the context or falls back to a default logger.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return logging.NewLogger(os.Stderr, logging.LevelInfo)
	}
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && l != nil {
		return l
	}
	return logging.NewLogger(os.Stderr, logging.LevelInfo)
}
