// Package pipeline contains the render-then-apply-then-cleanup deployment flow.
//
// The flow is strictly sequential and fail-fast: preflight checks, a single
// render of the application spec, one update call against the platform, and
// removal of the secret-bearing spec file. The first failing stage terminates
// the run; there is no retry or re-entry. Concurrent runs against the same
// application are not safe and must be serialized by the operator.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/newsletter-ops/deployctl/internal/platform"
	"github.com/newsletter-ops/deployctl/internal/render"
	"github.com/newsletter-ops/deployctl/internal/secrets"
)

// State identifies how far a pipeline run progressed.
type State string

const (
	StateStart    State = "START"
	StateChecked  State = "CHECKED"
	StateRendered State = "RENDERED"
	StateApplied  State = "APPLIED"
	StateCleaned  State = "CLEANED"
)

// Stage names the pipeline stage that produced an error.
type Stage string

const (
	StagePreflight Stage = "preflight"
	StageRender    Stage = "render"
	StageApply     Stage = "apply"
	StageCleanup   Stage = "cleanup"
)

// StageError attributes a failure to the stage it originated from.
// The underlying error is preserved verbatim for the operator.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Runner wires the pipeline's collaborators together.
type Runner struct {
	// Preflight verifies the operator environment. It runs before the secret
	// store or the filesystem is touched.
	Preflight func(ctx context.Context) error
	// Store resolves the application identity.
	Store secrets.Store
	// Renderer produces the spec file in one shot.
	Renderer render.Renderer
	// Platform submits the rendered spec.
	Platform platform.Client
	// Logger receives per-stage progress. Nil falls back to slog.Default.
	Logger *slog.Logger

	// TemplatePath is the spec template input.
	TemplatePath string
	// OutputPath is where the rendered spec is written and later removed.
	OutputPath string
	// AppIDPath and AppIDField locate the application identity in the store.
	AppIDPath  string
	AppIDField string
}

// Run executes the pipeline and returns the terminal state.
//
// On success the state is CLEANED and the rendered file is gone. A failed
// apply leaves the rendered file on disk for inspection; a failed cleanup is
// logged as a warning and does not fail the run, since the spec has already
// been applied safely.
func (r *Runner) Run(ctx context.Context) (State, error) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("run", uuid.NewString())

	state := StateStart

	if r.Preflight != nil {
		if err := r.Preflight(ctx); err != nil {
			return state, &StageError{Stage: StagePreflight, Err: err}
		}
	}
	state = StateChecked
	logger.Info("preconditions verified")

	if err := r.Renderer.RenderOnce(ctx, r.TemplatePath, r.OutputPath); err != nil {
		return state, &StageError{Stage: StageRender, Err: err}
	}
	state = StateRendered
	logger.Info("spec rendered", "template", r.TemplatePath, "output", r.OutputPath)

	appID, err := r.Store.Get(ctx, r.AppIDPath, r.AppIDField)
	if err != nil {
		return state, &StageError{Stage: StageApply, Err: fmt.Errorf("resolve application id: %w", err)}
	}
	if err := r.Platform.UpdateApp(ctx, appID, r.OutputPath); err != nil {
		return state, &StageError{Stage: StageApply, Err: err}
	}
	state = StateApplied
	logger.Info("spec accepted by platform", "app", appID)

	if err := os.Remove(r.OutputPath); err != nil {
		// The spec is applied; a leftover file is an operator-visible risk,
		// not a correctness failure.
		logger.Warn("could not remove rendered spec", "path", r.OutputPath, "error", err)
	} else {
		logger.Info("rendered spec removed", "path", r.OutputPath)
	}
	state = StateCleaned

	return state, nil
}
