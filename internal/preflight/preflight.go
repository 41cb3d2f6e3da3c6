// Package preflight verifies the operator environment before any side effect occurs.
package preflight

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

// Capabilities abstracts the ambient process state the checks inspect,
// so tests can inject fakes instead of mutating the real environment.
type Capabilities struct {
	// LookupEnv reports an environment variable and whether it is set.
	LookupEnv func(key string) (string, bool)
	// LookPath resolves an executable on the execution path.
	LookPath func(name string) (string, error)
}

// DefaultCapabilities returns Capabilities backed by the real process state.
func DefaultCapabilities() Capabilities {
	return Capabilities{
		LookupEnv: os.LookupEnv,
		LookPath:  exec.LookPath,
	}
}

// Requirements lists what a pipeline run needs before it may start.
type Requirements struct {
	// EnvVars must be set and non-empty.
	EnvVars []string
	// Tools must be resolvable on the execution path.
	Tools []string
}

// Checker runs precondition checks against a set of capabilities.
type Checker struct {
	caps   Capabilities
	logger *slog.Logger
}

// New constructs a Checker. Nil capability functions fall back to the real ones.
func New(caps Capabilities, logger *slog.Logger) *Checker {
	if caps.LookupEnv == nil {
		caps.LookupEnv = os.LookupEnv
	}
	if caps.LookPath == nil {
		caps.LookPath = exec.LookPath
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Checker{caps: caps, logger: logger}
}

// Run checks every requirement, logging each result, and returns an error
// naming all failed preconditions. Checks have no side effects.
func (c *Checker) Run(req Requirements) error {
	var failed []string

	for _, key := range req.EnvVars {
		value, ok := c.caps.LookupEnv(key)
		if !ok || strings.TrimSpace(value) == "" {
			msg := fmt.Sprintf("environment variable %s is not set", key)
			c.logger.Error("preflight check failed", "check", key, "error", msg)
			failed = append(failed, msg)
			continue
		}
		c.logger.Info("preflight check ok", "check", key)
	}

	for _, tool := range req.Tools {
		if _, err := c.caps.LookPath(tool); err != nil {
			msg := fmt.Sprintf("required tool %q not found in PATH", tool)
			c.logger.Error("preflight check failed", "check", tool, "error", err)
			failed = append(failed, msg)
			continue
		}
		c.logger.Info("preflight check ok", "check", tool)
	}

	if len(failed) > 0 {
		return fmt.Errorf("preconditions not met: %s", strings.Join(failed, "; "))
	}
	return nil
}
