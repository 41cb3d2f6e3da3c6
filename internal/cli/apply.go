package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/newsletter-ops/deployctl/internal/platform"
	"github.com/newsletter-ops/deployctl/internal/preflight"
)

// newApplyCommand creates the "apply" subcommand that submits an
// already-rendered spec file to the platform.
func newApplyCommand(opts *Options) *cobra.Command {
	var (
		specPath string
		cleanup  bool
	)

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Submit a rendered spec to the platform's update API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := LoggerFromContext(cmd.Context())

			cfg, vars, err := loadConfigFromFlags(cmd, opts)
			if err != nil {
				return err
			}
			if specPath == "" {
				specPath = cfg.Output
			}

			if _, err := os.Stat(specPath); err != nil {
				return fmt.Errorf("rendered spec %q is not readable; run deploy or render first: %w", specPath, err)
			}

			checker := preflight.New(preflight.DefaultCapabilities(), logger)
			req := preflight.Requirements{EnvVars: []string{"VAULT_ADDR"}, Tools: []string{"vault", cfg.Platform.Binary}}
			if err := checker.Run(req); err != nil {
				return err
			}

			store := buildStore(vars)

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.RunTimeout())
			defer cancel()

			appID, err := store.Get(ctx, cfg.Secrets.AppPath, cfg.Secrets.AppIDField)
			if err != nil {
				return fmt.Errorf("resolve application id: %w", err)
			}

			client := platform.NewDoctlClient(cfg.Platform.Binary, logger)
			if err := client.UpdateApp(ctx, appID, specPath); err != nil {
				return err
			}
			logger.Info("spec accepted by platform", "app", appID, "spec", specPath)

			if cleanup {
				if err := os.Remove(specPath); err != nil {
					logger.Warn("could not remove rendered spec", "path", specPath, "error", err)
				} else {
					logger.Info("rendered spec removed", "path", specPath)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&specPath, "spec", "", "Path to the rendered spec (defaults to the configured output)")
	cmd.Flags().BoolVar(&cleanup, "cleanup", false, "Remove the spec file after a successful apply")

	return cmd
}
