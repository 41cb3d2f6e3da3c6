// Package platform integrates with the cloud platform's control plane via its CLI.
package platform

import "context"

// Client updates an already-provisioned application's desired state.
// The update is idempotent on the platform side: re-submitting the same spec
// converges to the same state.
type Client interface {
	UpdateApp(ctx context.Context, appID, specPath string) error
}
