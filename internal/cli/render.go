package cli

import (
	"github.com/spf13/cobra"

	"github.com/newsletter-ops/deployctl/internal/config"
	"github.com/newsletter-ops/deployctl/internal/preflight"
)

// newRenderCommand creates the "render" subcommand that renders the spec once
// and keeps the file. The output carries resolved secret values; it is the
// operator's job to remove it.
func newRenderCommand(opts *Options) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the application spec from its template",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := LoggerFromContext(cmd.Context())

			cfg, vars, err := loadConfigFromFlags(cmd, opts)
			if err != nil {
				return err
			}
			if output != "" {
				cfg.Output = output
			}

			req := preflight.Requirements{EnvVars: []string{"VAULT_ADDR"}, Tools: []string{"vault"}}
			if cfg.Renderer.Engine == config.EngineExec {
				req.Tools = append(req.Tools, cfg.Renderer.Binary)
			}
			checker := preflight.New(preflight.DefaultCapabilities(), logger)
			if err := checker.Run(req); err != nil {
				return err
			}

			store := buildStore(vars)
			renderer := buildRenderer(cfg, store, vars, logger)
			if err := renderer.RenderOnce(cmd.Context(), cfg.Template, cfg.Output); err != nil {
				return err
			}

			logger.Warn("rendered spec contains secret material; do not commit it", "path", cfg.Output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output path override for the rendered spec")

	return cmd
}
