package cli

import (
	envparse "github.com/caarlos0/env/v11"
)

// baseEnv defines root CLI defaults sourced from DEPLOYCTL_* env vars.
type baseEnv struct {
	// ConfigPath is the deploy.yaml path from DEPLOYCTL_CONFIG.
	ConfigPath string `env:"DEPLOYCTL_CONFIG"`
	// LogLevel is the logging level from DEPLOYCTL_LOG_LEVEL.
	LogLevel string `env:"DEPLOYCTL_LOG_LEVEL"`
	// Vars is a k=v,k2=v2 list from DEPLOYCTL_VARS.
	Vars string `env:"DEPLOYCTL_VARS"`
	// EnvFile is an extra .env path from DEPLOYCTL_ENV_FILE.
	EnvFile string `env:"DEPLOYCTL_ENV_FILE"`
}

// parseEnv fills target from DEPLOYCTL_* env vars via caarlos0/env.
func parseEnv(target interface{}) error {
	return envparse.Parse(target)
}
