package render

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"

	"github.com/newsletter-ops/deployctl/internal/logging"
)

// ConsulTemplate is a Renderer that shells out to consul-template in -once
// mode. The binary reads VAULT_ADDR and the operator token from the process
// environment and performs the secret lookups itself.
type ConsulTemplate struct {
	Binary string
	Logger *slog.Logger
}

// NewConsulTemplate constructs the exec-based renderer. An empty binary
// defaults to "consul-template".
func NewConsulTemplate(binary string, logger *slog.Logger) *ConsulTemplate {
	if binary == "" {
		binary = "consul-template"
	}
	return &ConsulTemplate{Binary: binary, Logger: logger}
}

// RenderOnce runs the renderer binary once for the given template/output pair.
func (r *ConsulTemplate) RenderOnce(ctx context.Context, templatePath, outputPath string) error {
	args := []string{"-template", templatePath + ":" + outputPath, "-once"}

	cmd := exec.CommandContext(ctx, r.Binary, args...)
	cmd.Stdout = logging.NewWriter(r.Logger, r.Binary)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := bytes.TrimSpace(stderr.Bytes()); len(msg) > 0 {
			return fmt.Errorf("%s -once failed: %s: %w", r.Binary, msg, err)
		}
		return fmt.Errorf("%s -once failed: %w", r.Binary, err)
	}
	return nil
}
