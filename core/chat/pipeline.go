package chat

import (
	"context"
	"fmt"

	"promptrelay/providers/observability"
)

// FailurePolicy decides what a stage error means for the request.
type FailurePolicy int

const (
	// FailFast aborts the pipeline and fails the whole request.
	FailFast FailurePolicy = iota

	// Degrade records the failure and continues without the stage's output.
	Degrade
)

func (p FailurePolicy) String() string {
	if p == Degrade {
		return "degrade"
	}
	return "fail_fast"
}

// Stage is one named step of the chat pipeline.
type Stage struct {
	Name   string
	Policy FailurePolicy
	Run    func(ctx context.Context, st *state) error
}

// runPipeline executes the stages in order against the shared request state.
// A FailFast stage error is returned wrapped with the stage name; a Degrade
// stage error is observed and swallowed.
func runPipeline(ctx context.Context, stages []Stage, st *state) error {
	span := observability.SpanFromContext(ctx)
	observer := observability.ObserverFromContext(ctx)

	for _, stage := range stages {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := stage.Run(ctx, st)
		if err == nil {
			continue
		}

		if stage.Policy == FailFast {
			return fmt.Errorf("stage %s: %w", stage.Name, err)
		}

		if span != nil {
			span.AddEvent(observability.EventStageDegraded,
				observability.String(observability.AttrPipelineStage, stage.Name),
				observability.Error(err),
			)
		}
		if observer != nil {
			observer.Warn(ctx, "pipeline stage degraded",
				observability.String(observability.AttrPipelineStage, stage.Name),
				observability.String(observability.AttrPipelineStagePolicy, stage.Policy.String()),
				observability.Error(err),
			)
		}
	}

	return nil
}
