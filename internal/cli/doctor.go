package cli

import (
	"github.com/spf13/cobra"

	"github.com/newsletter-ops/deployctl/internal/preflight"
)

// newDoctorCommand creates the "doctor" subcommand that runs environment preflight checks.
func newDoctorCommand(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Run environment preflight checks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := LoggerFromContext(cmd.Context())

			cfg, _, err := loadConfigFromFlags(cmd, opts)
			if err != nil {
				return err
			}

			checker := preflight.New(preflight.DefaultCapabilities(), logger)
			if err := checker.Run(requirementsFor(cfg)); err != nil {
				return err
			}

			logger.Info("doctor checks completed successfully", "project", cfg.Project)
			return nil
		},
	}

	return cmd
}
