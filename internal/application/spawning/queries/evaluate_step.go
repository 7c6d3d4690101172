package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/colony-go/internal/adapters/metrics"
	"github.com/andrescamacho/colony-go/internal/application/common"
	"github.com/andrescamacho/colony-go/internal/application/spawning"
)

// EvaluateStepQuery runs the pipeline over a caller-supplied snapshot without
// touching any producer.
type EvaluateStepQuery struct {
	Input spawning.StepInput
}

// EvaluateStepHandler handles the EvaluateStep query
type EvaluateStepHandler struct {
	pipeline *spawning.Pipeline
}

// NewEvaluateStepHandler creates a new EvaluateStepHandler
func NewEvaluateStepHandler(pipeline *spawning.Pipeline) *EvaluateStepHandler {
	return &EvaluateStepHandler{pipeline: pipeline}
}

// Handle executes the EvaluateStep query and returns a *spawning.StepPlan
func (h *EvaluateStepHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*EvaluateStepQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *EvaluateStepQuery")
	}

	plan := h.pipeline.Evaluate(query.Input)
	metrics.RecordComposition(plan.SiteID, "target", plan.Target.AsMap())
	metrics.RecordComposition(plan.SiteID, "current", plan.Current.AsMap())
	metrics.RecordCriticalSignals(plan.SiteID, plan.Report.ZeroPrimary, plan.Report.PrimaryBelowSources)

	if plan.Notes.ScarcityApplied {
		common.LoggerFromContext(ctx).Log(common.LevelWarning, "low energy, reducing non-essential workers", map[string]interface{}{
			"site_id":      plan.SiteID,
			"energy_ratio": plan.Notes.EnergyRatio,
		})
	}
	return &plan, nil
}
