package simulation

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/andrescamacho/colony-go/internal/application/common"
	"github.com/andrescamacho/colony-go/internal/application/spawning/commands"
)

// StepReport is what the runner hands back after every tick.
type StepReport struct {
	Tick     uint64
	Energy   int
	Response *commands.RunSpawnStepResponse
}

// Runner drives a World through the mediator, one spawn step per tick.
type Runner struct {
	world    *World
	mediator common.Mediator
	siteID   string
	limiter  *rate.Limiter
	runID    string
}

// NewRunner creates a runner. ticksPerSecond <= 0 runs unpaced.
func NewRunner(world *World, mediator common.Mediator, siteID string, ticksPerSecond float64) *Runner {
	var limiter *rate.Limiter
	if ticksPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(ticksPerSecond), 1)
	}
	return &Runner{
		world:    world,
		mediator: mediator,
		siteID:   siteID,
		limiter:  limiter,
		runID:    uuid.NewString(),
	}
}

// RunID identifies this run in logs.
func (r *Runner) RunID() string {
	return r.runID
}

// Run executes steps ticks. Each tick runs the spawn step first and then
// advances the world. A failing step is logged and reported as failed; only
// cancellation of ctx ends the run early. onStep may be nil.
func (r *Runner) Run(ctx context.Context, steps int, onStep func(StepReport)) error {
	logger := common.LoggerFromContext(ctx)
	logger.Log(common.LevelInfo, "simulation started", map[string]interface{}{
		"site_id": r.siteID,
		"run_id":  r.runID,
		"steps":   steps,
	})

	for i := 0; i < steps; i++ {
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				return err
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		tick := r.world.Tick()
		response, err := r.step(ctx, tick)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			// A failed step never halts the loop
			logger.Log(common.LevelError, "spawn step failed", map[string]interface{}{
				"site_id": r.siteID,
				"tick":    tick,
				"error":   err.Error(),
			})
			response = &commands.RunSpawnStepResponse{Result: commands.ResultFailed}
		}

		energy, _ := r.world.EnergyAvailable(ctx, r.siteID)
		if onStep != nil {
			onStep(StepReport{Tick: tick, Energy: energy, Response: response})
		}

		r.world.Advance()
	}

	logger.Log(common.LevelInfo, "simulation finished", map[string]interface{}{
		"site_id": r.siteID,
		"run_id":  r.runID,
		"workers": len(r.world.Workers()),
	})
	return nil
}

func (r *Runner) step(ctx context.Context, tick uint64) (*commands.RunSpawnStepResponse, error) {
	resp, err := r.mediator.Send(ctx, &commands.RunSpawnStepCommand{SiteID: r.siteID, Tick: tick})
	if err != nil {
		return nil, fmt.Errorf("tick %d: %w", tick, err)
	}
	response, ok := resp.(*commands.RunSpawnStepResponse)
	if !ok {
		return nil, fmt.Errorf("tick %d: unexpected response type %T", tick, resp)
	}
	return response, nil
}
