package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/newsletter-ops/deployctl/internal/pipeline"
	"github.com/newsletter-ops/deployctl/internal/platform"
	"github.com/newsletter-ops/deployctl/internal/preflight"
)

// newDeployCommand creates the "deploy" subcommand that runs the full pipeline.
func newDeployCommand(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Render the app spec, apply it to the platform, and clean up",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := LoggerFromContext(cmd.Context())

			cfg, vars, err := loadConfigFromFlags(cmd, opts)
			if err != nil {
				return err
			}

			checker := preflight.New(preflight.DefaultCapabilities(), logger)
			store := buildStore(vars)

			runner := &pipeline.Runner{
				Preflight: func(context.Context) error {
					return checker.Run(requirementsFor(cfg))
				},
				Store:        store,
				Renderer:     buildRenderer(cfg, store, vars, logger),
				Platform:     platform.NewDoctlClient(cfg.Platform.Binary, logger),
				Logger:       logger,
				TemplatePath: cfg.Template,
				OutputPath:   cfg.Output,
				AppIDPath:    cfg.Secrets.AppPath,
				AppIDField:   cfg.Secrets.AppIDField,
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.RunTimeout())
			defer cancel()

			state, err := runner.Run(ctx)
			if err != nil {
				return err
			}

			logger.Info("deploy completed", "project", cfg.Project, "state", string(state))
			return nil
		},
	}

	return cmd
}
