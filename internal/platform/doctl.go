package platform

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"

	"github.com/newsletter-ops/deployctl/internal/logging"
)

// DoctlClient wraps the platform CLI (doctl by default) for app updates.
type DoctlClient struct {
	Binary string
	Logger *slog.Logger
}

// NewDoctlClient constructs a DoctlClient. An empty binary defaults to "doctl".
func NewDoctlClient(binary string, logger *slog.Logger) *DoctlClient {
	if binary == "" {
		binary = "doctl"
	}
	return &DoctlClient{Binary: binary, Logger: logger}
}

// UpdateApp submits the rendered spec for the given application ID. The call
// returns once the platform accepts the new spec; reconciliation of the live
// application continues asynchronously on the platform side. Rejections
// (malformed spec, unknown app ID, authorization) surface through the CLI's
// stderr, which is preserved in the returned error.
func (c *DoctlClient) UpdateApp(ctx context.Context, appID, specPath string) error {
	if appID == "" {
		return fmt.Errorf("application id is empty")
	}
	args := []string{"apps", "update", appID, "--spec", specPath}

	cmd := exec.CommandContext(ctx, c.Binary, args...)
	cmd.Stdout = logging.NewWriter(c.Logger, c.Binary)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := bytes.TrimSpace(stderr.Bytes()); len(msg) > 0 {
			return fmt.Errorf("%s apps update %s rejected: %s: %w", c.Binary, appID, msg, err)
		}
		return fmt.Errorf("%s apps update %s failed: %w", c.Binary, appID, err)
	}
	return nil
}
