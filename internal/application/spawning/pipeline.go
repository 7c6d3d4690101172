// Package spawning wires the population domain into per-step use cases.
package spawning

import (
	"sync/atomic"

	"github.com/andrescamacho/colony-go/internal/domain/colony"
)

// StepInput is everything one evaluation reads. Budget is the energy re-read
// at scheduling time and overrides State.EnergyAvailable for sizing.
type StepInput struct {
	State   colony.RoomState
	Workers []colony.Worker
	Budget  int
	Slot    colony.ProductionSlot
}

// StepPlan is the full trace of one evaluation.
type StepPlan struct {
	SiteID     string
	Target     colony.Composition
	Current    colony.Composition
	Notes      colony.PlanNotes
	Report     colony.DeficitReport
	Priorities colony.Priorities

	// Request is nil when nothing is produced this step; Err says why when
	// the reason is not an empty deficit list.
	Request *colony.ProductionRequest
	Err     error
}

// Pipeline chains planner, counter, analyzer, assigner and scheduler. The
// loadout table and ranks can be swapped while steps run.
type Pipeline struct {
	planner   *colony.PopulationPlanner
	counter   *colony.PopulationCounter
	analyzer  *colony.DeficitAnalyzer
	assigner  *colony.PriorityAssigner
	scheduler *colony.SpawnScheduler

	table atomic.Pointer[colony.LoadoutTable]
	ranks atomic.Pointer[colony.StaticRanks]
}

// NewPipeline creates a pipeline. A nil table falls back to the stock loadouts.
func NewPipeline(policy colony.PlannerPolicy, ranks colony.StaticRanks, table *colony.LoadoutTable) *Pipeline {
	p := &Pipeline{
		planner:   colony.NewPopulationPlanner(policy),
		counter:   colony.NewPopulationCounter(),
		analyzer:  colony.NewDeficitAnalyzer(),
		assigner:  colony.NewPriorityAssigner(),
		scheduler: colony.NewSpawnScheduler(),
	}
	if table == nil {
		table = colony.DefaultLoadoutTable()
	}
	p.SetLoadoutTable(table)
	p.SetStaticRanks(ranks)
	return p
}

// NewDefaultPipeline uses the stock policy, ranks and loadouts.
func NewDefaultPipeline() *Pipeline {
	return NewPipeline(colony.DefaultPlannerPolicy(), colony.DefaultStaticRanks(), nil)
}

// SetLoadoutTable replaces the loadout table used by later evaluations.
func (p *Pipeline) SetLoadoutTable(table *colony.LoadoutTable) {
	if table != nil {
		p.table.Store(table)
	}
}

// SetStaticRanks replaces the ranks used by later evaluations.
func (p *Pipeline) SetStaticRanks(ranks colony.StaticRanks) {
	p.ranks.Store(&ranks)
}

// LoadoutTable returns the table currently in use.
func (p *Pipeline) LoadoutTable() *colony.LoadoutTable {
	return p.table.Load()
}

// Policy returns the planner thresholds.
func (p *Pipeline) Policy() colony.PlannerPolicy {
	return p.planner.Policy()
}

// Evaluate runs one step over in-memory inputs. It has no side effects: the
// same input always yields the same plan.
func (p *Pipeline) Evaluate(in StepInput) StepPlan {
	state := in.State.Normalized()
	target, notes := p.planner.PlanWithNotes(state)
	current := p.counter.Count(in.Workers, state.SiteID)
	report := p.analyzer.Analyze(target, current, state.SourceCount)
	priorities := p.assigner.Assign(report.Deficits, *p.ranks.Load())

	request, err := p.scheduler.Schedule(report.Deficits, priorities, in.Budget, p.table.Load(), in.Slot)
	if request != nil {
		request.SiteID = state.SiteID
	}

	return StepPlan{
		SiteID:     state.SiteID,
		Target:     target,
		Current:    current,
		Notes:      notes,
		Report:     report,
		Priorities: priorities,
		Request:    request,
		Err:        err,
	}
}

// Needs builds the operator report of a site.
func (p *Pipeline) Needs(state colony.RoomState, workers []colony.Worker) (colony.NeedsReport, colony.PlanNotes) {
	target, notes := p.planner.PlanWithNotes(state)
	current := p.counter.Count(workers, state.SiteID)
	return p.analyzer.AnalyzeNeeds(state, target, current), notes
}
