// Package config contains the loader and strongly typed model for deploy.yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/newsletter-ops/deployctl/internal/env"
)

// Renderer engine names accepted in deploy.yaml.
const (
	EngineBuiltin = "builtin"
	EngineExec    = "exec"
)

// Config describes one deployable application and how its spec is produced.
type Config struct {
	// Project is the short project name used in logs and defaults.
	Project string `yaml:"project"`
	// Template is the spec template path, relative to deploy.yaml.
	Template string `yaml:"template,omitempty"`
	// Output is where the rendered spec is written, relative to deploy.yaml.
	Output string `yaml:"output,omitempty"`
	// EnvFiles lists .env files merged over the process environment.
	EnvFiles []string `yaml:"envFiles,omitempty"`
	// Secrets configures secret-store paths used by the pipeline.
	Secrets SecretsConfig `yaml:"secrets,omitempty"`
	// Renderer selects and configures the template engine.
	Renderer RendererConfig `yaml:"renderer,omitempty"`
	// Platform configures the platform CLI used for updates.
	Platform PlatformConfig `yaml:"platform,omitempty"`
}

// SecretsConfig locates deployment metadata in the secret store.
type SecretsConfig struct {
	// AppPath is the store path holding the application identity,
	// e.g. "kv/newsletter". Defaults to "kv/<project>".
	AppPath string `yaml:"appPath,omitempty"`
	// AppIDField is the field under AppPath naming the platform app ID.
	AppIDField string `yaml:"appIdField,omitempty"`
}

// RendererConfig selects the template engine.
type RendererConfig struct {
	// Engine is "builtin" (in-process Go templates) or "exec" (consul-template).
	Engine string `yaml:"engine,omitempty"`
	// Binary overrides the exec engine's binary name.
	Binary string `yaml:"binary,omitempty"`
}

// PlatformConfig configures the platform CLI invocation.
type PlatformConfig struct {
	// Binary is the platform CLI name. Defaults to "doctl".
	Binary string `yaml:"binary,omitempty"`
	// Timeout bounds a whole deploy run, e.g. "10m".
	Timeout string `yaml:"timeout,omitempty"`
}

// LoadOptions carries variable sources that override the process environment.
type LoadOptions struct {
	// UserVars are inline variables with the highest precedence.
	UserVars env.Vars
	// EnvFiles are extra .env files appended after those from deploy.yaml.
	EnvFiles []string
}

// Load reads deploy.yaml, applies defaults, and returns the config together
// with the merged variable set (OS < envFiles < user vars). Paths inside the
// config are resolved relative to the config file's directory.
func Load(path string, opts LoadOptions) (*Config, env.Vars, error) {
	if path == "" {
		return nil, nil, fmt.Errorf("config path is empty")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve config path: %w", err)
	}

	raw, err := os.ReadFile(absPath)
	if err != nil {
		return nil, nil, fmt.Errorf("read config %q: %w", absPath, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, nil, fmt.Errorf("parse config %q: %w", absPath, err)
	}

	baseDir := filepath.Dir(absPath)
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, nil, err
	}
	cfg.resolvePaths(baseDir)

	fileVars, err := env.LoadEnvFiles(baseDir, append(append([]string{}, cfg.EnvFiles...), opts.EnvFiles...))
	if err != nil {
		return nil, nil, err
	}
	vars := env.Merge(env.FromOS(), fileVars, opts.UserVars)

	return &cfg, vars, nil
}

func (c *Config) applyDefaults() {
	if c.Template == "" {
		c.Template = "spec.yaml.tpl"
	}
	if c.Output == "" {
		c.Output = "spec.yaml"
	}
	if c.Secrets.AppPath == "" && c.Project != "" {
		c.Secrets.AppPath = "kv/" + c.Project
	}
	if c.Secrets.AppIDField == "" {
		c.Secrets.AppIDField = "app_id"
	}
	if c.Renderer.Engine == "" {
		c.Renderer.Engine = EngineBuiltin
	}
	if c.Renderer.Binary == "" {
		c.Renderer.Binary = "consul-template"
	}
	if c.Platform.Binary == "" {
		c.Platform.Binary = "doctl"
	}
	if c.Platform.Timeout == "" {
		c.Platform.Timeout = "10m"
	}
}

func (c *Config) validate() error {
	if c.Project == "" {
		return fmt.Errorf("config: project is required")
	}
	switch c.Renderer.Engine {
	case EngineBuiltin, EngineExec:
	default:
		return fmt.Errorf("config: renderer.engine %q is not supported (use %q or %q)",
			c.Renderer.Engine, EngineBuiltin, EngineExec)
	}
	if _, err := time.ParseDuration(c.Platform.Timeout); err != nil {
		return fmt.Errorf("config: platform.timeout %q: %w", c.Platform.Timeout, err)
	}
	return nil
}

func (c *Config) resolvePaths(baseDir string) {
	if !filepath.IsAbs(c.Template) {
		c.Template = filepath.Join(baseDir, c.Template)
	}
	if !filepath.IsAbs(c.Output) {
		c.Output = filepath.Join(baseDir, c.Output)
	}
}

// RunTimeout returns the parsed platform timeout. validate guarantees it parses.
func (c *Config) RunTimeout() time.Duration {
	d, err := time.ParseDuration(c.Platform.Timeout)
	if err != nil {
		return 10 * time.Minute
	}
	return d
}
