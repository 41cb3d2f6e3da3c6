package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/newsletter-ops/deployctl/internal/config"
	"github.com/newsletter-ops/deployctl/internal/env"
	"github.com/newsletter-ops/deployctl/internal/preflight"
	"github.com/newsletter-ops/deployctl/internal/render"
	"github.com/newsletter-ops/deployctl/internal/secrets"
)

// loadConfigFromFlags reads deploy.yaml plus the persistent --vars/--env-file
// flags and returns the config with the merged variable set.
func loadConfigFromFlags(cmd *cobra.Command, opts *Options) (*config.Config, env.Vars, error) {
	inlineVars, err := env.ParseInlineVars(cmd.Flag("vars").Value.String())
	if err != nil {
		return nil, nil, err
	}

	var envFiles []string
	if envFile := cmd.Flag("env-file").Value.String(); envFile != "" {
		envFiles = append(envFiles, envFile)
	}

	return config.Load(opts.ConfigPath, config.LoadOptions{
		UserVars: inlineVars,
		EnvFiles: envFiles,
	})
}

// requirementsFor lists the preconditions a run against cfg needs.
// The renderer binary is only required for the exec engine.
func requirementsFor(cfg *config.Config) preflight.Requirements {
	req := preflight.Requirements{
		EnvVars: []string{"VAULT_ADDR"},
		Tools:   []string{"vault"},
	}
	if cfg.Renderer.Engine == config.EngineExec {
		req.Tools = append(req.Tools, cfg.Renderer.Binary)
	}
	req.Tools = append(req.Tools, cfg.Platform.Binary)
	return req
}

// buildStore constructs the Vault-backed secret store from the merged vars.
// Construction is side-effect free; the client connects on first lookup.
func buildStore(vars env.Vars) *secrets.VaultStore {
	return secrets.NewVaultStore(secrets.VaultConfig{
		Address: vars["VAULT_ADDR"],
		Token:   vars["VAULT_TOKEN"],
	})
}

// buildRenderer selects the template engine configured in deploy.yaml.
func buildRenderer(cfg *config.Config, store secrets.Store, vars env.Vars, logger *slog.Logger) render.Renderer {
	if cfg.Renderer.Engine == config.EngineExec {
		return render.NewConsulTemplate(cfg.Renderer.Binary, logger)
	}
	return render.NewTemplate(store, vars)
}
