package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/andrescamacho/colony-go/internal/adapters/metrics"
	"github.com/andrescamacho/colony-go/internal/application/common"
	"github.com/andrescamacho/colony-go/internal/application/spawning"
	"github.com/andrescamacho/colony-go/internal/domain/colony"
	"github.com/andrescamacho/colony-go/internal/domain/shared"
)

// TargetLogInterval is how often, in ticks, the target population is logged.
const TargetLogInterval = 100

// Step results that are not producer outcomes.
const (
	ResultIdle         = "idle"
	ResultSlotBusy     = "slot_busy"
	ResultLowEnergy    = "insufficient_energy"
	ResultUnconfigured = "unconfigured_role"
	ResultFailed       = "failed"
)

// RunSpawnStepCommand runs the spawn pipeline once for a site
type RunSpawnStepCommand struct {
	SiteID string
	Tick   uint64
}

// RunSpawnStepResponse reports what the step did
type RunSpawnStepResponse struct {
	Result     string
	WorkerName string
	Request    *colony.ProductionRequest
	Plan       *spawning.StepPlan
	Elapsed    time.Duration
}

// Spawned reports whether the producer accepted a request this step.
func (r *RunSpawnStepResponse) Spawned() bool {
	return r.Result == string(colony.OutcomeAccepted)
}

// RunSpawnStepHandler handles the RunSpawnStep command
type RunSpawnStepHandler struct {
	pipeline *spawning.Pipeline
	rooms    colony.RoomStateReader
	workers  colony.WorkerRegistry
	producer colony.Producer
	clock    shared.Clock
}

// NewRunSpawnStepHandler creates a new RunSpawnStepHandler
func NewRunSpawnStepHandler(
	pipeline *spawning.Pipeline,
	rooms colony.RoomStateReader,
	workers colony.WorkerRegistry,
	producer colony.Producer,
	clock shared.Clock,
) *RunSpawnStepHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}

	return &RunSpawnStepHandler{
		pipeline: pipeline,
		rooms:    rooms,
		workers:  workers,
		producer: producer,
		clock:    clock,
	}
}

// Handle executes the RunSpawnStep command
func (h *RunSpawnStepHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*RunSpawnStepCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *RunSpawnStepCommand")
	}
	if cmd.SiteID == "" {
		return nil, shared.NewValidationError("site_id", "required")
	}

	logger := common.LoggerFromContext(ctx)
	start := h.clock.Now()
	resp, err := h.run(ctx, logger, cmd)
	if resp != nil {
		resp.Elapsed = h.clock.Now().Sub(start)
		logger.Log(common.LevelDebug, "spawn step finished", map[string]interface{}{
			"site_id":    cmd.SiteID,
			"tick":       cmd.Tick,
			"result":     resp.Result,
			"elapsed_ms": float64(resp.Elapsed.Microseconds()) / 1000,
		})
	}
	return resp, err
}

func (h *RunSpawnStepHandler) run(ctx context.Context, logger common.StepLogger, cmd *RunSpawnStepCommand) (*RunSpawnStepResponse, error) {
	// Nothing can be produced while the producer is busy; skip the step
	slot, err := h.producer.Slot(ctx, cmd.SiteID)
	if err != nil {
		return nil, fmt.Errorf("failed to read production slot: %w", err)
	}
	if !slot.Free() {
		metrics.RecordSchedulingResult(cmd.SiteID, "", ResultSlotBusy)
		return &RunSpawnStepResponse{Result: ResultSlotBusy}, nil
	}

	state, err := h.rooms.ReadState(ctx, cmd.SiteID)
	if err != nil {
		return nil, fmt.Errorf("failed to read room state: %w", err)
	}
	state.SiteID = cmd.SiteID

	workers, err := h.workers.ListWorkers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list workers: %w", err)
	}

	// The snapshot may be stale by now; the re-read is the budget
	budget, err := h.rooms.EnergyAvailable(ctx, cmd.SiteID)
	if err != nil {
		return nil, fmt.Errorf("failed to read available energy: %w", err)
	}

	plan := h.pipeline.Evaluate(spawning.StepInput{
		State:   state,
		Workers: workers,
		Budget:  budget,
		Slot:    slot,
	})
	h.observe(logger, cmd, &plan)

	resp := &RunSpawnStepResponse{Plan: &plan}

	if plan.Err != nil {
		return h.deferred(logger, cmd, &plan, budget, resp)
	}

	if plan.Request == nil {
		resp.Result = ResultIdle
		metrics.RecordSchedulingResult(cmd.SiteID, "", ResultIdle)
		return resp, nil
	}

	req := plan.Request
	resp.Request = req
	resp.WorkerName = req.WorkerName(cmd.Tick)

	logger.Log(common.LevelInfo, "need to spawn", map[string]interface{}{
		"site_id":  cmd.SiteID,
		"role":     req.Role.String(),
		"priority": plan.Priorities.Get(req.Role).String(),
		"tick":     cmd.Tick,
	})

	outcome, err := h.producer.Produce(ctx, *req)
	if err != nil {
		logger.Log(common.LevelError, "production request failed", map[string]interface{}{
			"site_id": cmd.SiteID,
			"role":    req.Role.String(),
			"error":   err.Error(),
		})
		metrics.RecordSchedulingResult(cmd.SiteID, req.Role.String(), ResultFailed)
		return nil, fmt.Errorf("failed to produce %s: %w", req.Role, err)
	}

	resp.Result = string(outcome)
	metrics.RecordSchedulingResult(cmd.SiteID, req.Role.String(), string(outcome))

	if outcome.Succeeded() {
		metrics.RecordProductionCost(cmd.SiteID, req.Role.String(), req.Cost)
		logger.Log(common.LevelInfo, "spawning new worker", map[string]interface{}{
			"site_id": cmd.SiteID,
			"name":    resp.WorkerName,
			"role":    req.Role.String(),
			"cost":    req.Cost,
			"parts":   req.Loadout.String(),
		})
		return resp, nil
	}

	logger.Log(common.LevelWarning, "spawn failed", map[string]interface{}{
		"site_id": cmd.SiteID,
		"role":    req.Role.String(),
		"outcome": string(outcome),
	})
	return resp, nil
}

// deferred logs a step that selected a role but could not emit a request.
func (h *RunSpawnStepHandler) deferred(
	logger common.StepLogger,
	cmd *RunSpawnStepCommand,
	plan *spawning.StepPlan,
	budget int,
	resp *RunSpawnStepResponse,
) (*RunSpawnStepResponse, error) {
	var insufficient *colony.InsufficientEnergyError
	var unconfigured *colony.UnconfiguredRoleError

	switch {
	case errors.As(plan.Err, &insufficient):
		resp.Result = ResultLowEnergy
		metrics.RecordSchedulingResult(cmd.SiteID, insufficient.Role.String(), ResultLowEnergy)
		logger.Log(common.LevelInfo, "waiting for energy", map[string]interface{}{
			"site_id":   cmd.SiteID,
			"role":      insufficient.Role.String(),
			"required":  insufficient.Required,
			"available": insufficient.Available,
		})

	case errors.As(plan.Err, &unconfigured):
		resp.Result = ResultUnconfigured
		metrics.RecordSchedulingResult(cmd.SiteID, unconfigured.Role.String(), ResultUnconfigured)
		logger.Log(common.LevelError, "no loadout configured for role", map[string]interface{}{
			"site_id": cmd.SiteID,
			"role":    unconfigured.Role.String(),
			"budget":  budget,
		})

	case errors.Is(plan.Err, colony.ErrProductionSlotOccupied):
		resp.Result = ResultSlotBusy
		metrics.RecordSchedulingResult(cmd.SiteID, "", ResultSlotBusy)

	default:
		return nil, fmt.Errorf("failed to schedule: %w", plan.Err)
	}

	return resp, nil
}

// observe publishes compositions and alarms for the step.
func (h *RunSpawnStepHandler) observe(logger common.StepLogger, cmd *RunSpawnStepCommand, plan *spawning.StepPlan) {
	metrics.RecordComposition(cmd.SiteID, "target", plan.Target.AsMap())
	metrics.RecordComposition(cmd.SiteID, "current", plan.Current.AsMap())

	amounts := make(map[string]int)
	for _, role := range colony.AllRoles() {
		amounts[role.String()] = 0
	}
	for _, d := range plan.Report.Deficits {
		amounts[d.Role.String()] = d.Amount
	}
	metrics.RecordDeficits(cmd.SiteID, amounts)
	metrics.RecordCriticalSignals(cmd.SiteID, plan.Report.ZeroPrimary, plan.Report.PrimaryBelowSources)

	if cmd.Tick%TargetLogInterval == 0 {
		logger.Log(common.LevelInfo, "target population", map[string]interface{}{
			"site_id": cmd.SiteID,
			"tick":    cmd.Tick,
			"tier":    plan.Notes.Tier.String(),
			"target":  plan.Target.String(),
			"current": plan.Current.String(),
		})
	}

	if plan.Notes.ScarcityApplied {
		logger.Log(common.LevelWarning, "low energy, reducing non-essential workers", map[string]interface{}{
			"site_id":      cmd.SiteID,
			"energy_ratio": plan.Notes.EnergyRatio,
			"upgraders":    plan.Target.Get(colony.RoleUpgrader),
			"builders":     plan.Target.Get(colony.RoleBuilder),
		})
	}

	if plan.Report.ZeroPrimary && plan.Target.Get(colony.RoleHarvester) > 0 {
		logger.Log(common.LevelWarning, colony.WarningNoHarvesters, map[string]interface{}{
			"site_id": cmd.SiteID,
		})
	}
}
