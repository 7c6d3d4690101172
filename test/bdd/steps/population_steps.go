package steps

import (
	"context"
	"errors"
	"fmt"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/colony-go/internal/domain/colony"
)

// populationContext drives the domain services directly: planner, counter,
// analyzer, assigner and scheduler
type populationContext struct {
	state   colony.RoomState
	workers []colony.Worker
	alive   map[colony.Role]int
	table   *colony.LoadoutTable
	ranks   colony.StaticRanks
	slot    colony.ProductionSlot

	target     colony.Composition
	notes      colony.PlanNotes
	current    colony.Composition
	report     colony.DeficitReport
	priorities colony.Priorities
	request    *colony.ProductionRequest
	err        error
}

func (pc *populationContext) reset() {
	pc.state = colony.RoomState{SiteID: "W1N1"}
	pc.workers = nil
	pc.alive = make(map[colony.Role]int)
	pc.table = colony.DefaultLoadoutTable()
	pc.ranks = colony.DefaultStaticRanks()
	pc.slot = colony.SlotFree

	pc.target = colony.Composition{}
	pc.notes = colony.PlanNotes{}
	pc.current = colony.Composition{}
	pc.report = colony.DeficitReport{}
	pc.priorities = colony.Priorities{}
	pc.request = nil
	pc.err = nil
}

// Given steps

func (pc *populationContext) aSiteAtDevelopmentLevelWithSources(level, sources int) error {
	pc.state.DevelopmentLevel = level
	pc.state.SourceCount = sources
	return nil
}

func (pc *populationContext) theSiteHoldsOfEnergy(available, capacity int) error {
	pc.state.EnergyAvailable = available
	pc.state.EnergyCapacity = capacity
	return nil
}

func (pc *populationContext) theSiteHasOutstandingConstruction() error {
	pc.state.HasOutstandingConstruction = true
	return nil
}

func (pc *populationContext) theSiteHasDamagedStructures(count int) error {
	pc.state.DamagedStructureCount = count
	return nil
}

func (pc *populationContext) theRegistryLists(table *godog.Table) error {
	for _, row := range table.Rows[1:] {
		pc.workers = append(pc.workers, colony.Worker{
			Name:   getCellValue(table, row, "name"),
			Role:   getCellValue(table, row, "role"),
			SiteID: getCellValue(table, row, "site"),
		})
	}
	return nil
}

func (pc *populationContext) theAliveWorkersAre(table *godog.Table) error {
	counts, err := roleCounts(table)
	if err != nil {
		return err
	}
	pc.alive = counts
	return nil
}

func (pc *populationContext) onlyHarvestersHaveALoadout() error {
	table, err := colony.NewLoadoutTable(map[colony.Role][]colony.LoadoutTier{
		colony.RoleHarvester: colony.DefaultLoadoutTable().Tiers(colony.RoleHarvester),
	})
	if err != nil {
		return err
	}
	pc.table = table
	return nil
}

func (pc *populationContext) theProductionSlotIsBusy() error {
	pc.slot = colony.SlotOccupied
	return nil
}

// When steps

func (pc *populationContext) iPlanTheTargetPopulation() error {
	planner := colony.NewPopulationPlanner(colony.DefaultPlannerPolicy())
	pc.target, pc.notes = planner.PlanWithNotes(pc.state)
	return nil
}

func (pc *populationContext) iCountTheWorkersOfSite(siteID string) error {
	pc.current = colony.NewPopulationCounter().Count(pc.workers, siteID)
	return nil
}

func (pc *populationContext) iScheduleWithABudgetOf(budget int) error {
	if err := pc.iPlanTheTargetPopulation(); err != nil {
		return err
	}
	pc.current = colony.NewComposition(pc.alive)
	pc.report = colony.NewDeficitAnalyzer().Analyze(pc.target, pc.current, pc.state.SourceCount)
	pc.priorities = colony.NewPriorityAssigner().Assign(pc.report.Deficits, pc.ranks)
	pc.request, pc.err = colony.NewSpawnScheduler().Schedule(pc.report.Deficits, pc.priorities, budget, pc.table, pc.slot)
	return nil
}

// Then steps

func (pc *populationContext) theTargetPopulationShouldBe(table *godog.Table) error {
	want, err := roleCounts(table)
	if err != nil {
		return err
	}
	return compareComposition("target", pc.target, want)
}

func (pc *populationContext) theCurrentPopulationShouldBe(table *godog.Table) error {
	want, err := roleCounts(table)
	if err != nil {
		return err
	}
	return compareComposition("current", pc.current, want)
}

func (pc *populationContext) theTierShouldBe(tier string) error {
	if pc.notes.Tier.String() != tier {
		return fmt.Errorf("expected tier %s, got %s", tier, pc.notes.Tier)
	}
	return nil
}

func (pc *populationContext) scarcityShouldBeApplied() error {
	if !pc.notes.ScarcityApplied {
		return fmt.Errorf("expected scarcity to be applied (ratio %.2f)", pc.notes.EnergyRatio)
	}
	return nil
}

func (pc *populationContext) scarcityShouldNotBeApplied() error {
	if pc.notes.ScarcityApplied {
		return fmt.Errorf("expected no scarcity (ratio %.2f)", pc.notes.EnergyRatio)
	}
	return nil
}

func (pc *populationContext) thePriorityOfShouldBe(roleName, priority string) error {
	role, err := colony.ParseRole(roleName)
	if err != nil {
		return err
	}
	if got := pc.priorities.Get(role).String(); got != priority {
		return fmt.Errorf("expected %s priority %s, got %s", role, priority, got)
	}
	return nil
}

func (pc *populationContext) theRequestShouldBeACosting(roleName string, cost int) error {
	if pc.err != nil {
		return fmt.Errorf("expected a request, got error: %w", pc.err)
	}
	if pc.request == nil {
		return fmt.Errorf("expected a request, got none")
	}
	if pc.request.Role.String() != roleName {
		return fmt.Errorf("expected a %s request, got %s", roleName, pc.request.Role)
	}
	if pc.request.Cost != cost {
		return fmt.Errorf("expected cost %d, got %d (%s)", cost, pc.request.Cost, pc.request.Loadout)
	}
	return nil
}

func (pc *populationContext) noRequestShouldBeMade() error {
	if pc.request != nil {
		return fmt.Errorf("expected no request, got %s", pc.request.Role)
	}
	if pc.err != nil {
		return fmt.Errorf("expected no error, got %w", pc.err)
	}
	return nil
}

func (pc *populationContext) schedulingShouldBeDeferredForInsufficientEnergy() error {
	var insufficient *colony.InsufficientEnergyError
	if !errors.As(pc.err, &insufficient) {
		return fmt.Errorf("expected insufficient energy, got %v", pc.err)
	}
	if !colony.IsDeferred(pc.err) {
		return fmt.Errorf("insufficient energy must be a deferral")
	}
	return nil
}

func (pc *populationContext) schedulingShouldBeDeferredBecauseTheSlotIsOccupied() error {
	if !errors.Is(pc.err, colony.ErrProductionSlotOccupied) {
		return fmt.Errorf("expected slot occupied, got %v", pc.err)
	}
	return nil
}

func (pc *populationContext) schedulingShouldFailForUnconfigured(roleName string) error {
	var unconfigured *colony.UnconfiguredRoleError
	if !errors.As(pc.err, &unconfigured) {
		return fmt.Errorf("expected an unconfigured role error, got %v", pc.err)
	}
	if unconfigured.Role.String() != roleName {
		return fmt.Errorf("expected unconfigured %s, got %s", roleName, unconfigured.Role)
	}
	if colony.IsDeferred(pc.err) {
		return fmt.Errorf("an unconfigured role must not be a deferral")
	}
	return nil
}

func (pc *populationContext) theHarvesterAlarmShouldBe(alarm string) error {
	switch alarm {
	case "zero":
		if !pc.report.ZeroPrimary {
			return fmt.Errorf("expected the zero harvester alarm")
		}
	case "below sources":
		if pc.report.ZeroPrimary || !pc.report.PrimaryBelowSources {
			return fmt.Errorf("expected only the below-sources alarm, got %+v", pc.report)
		}
	case "off":
		if pc.report.ZeroPrimary || pc.report.PrimaryBelowSources {
			return fmt.Errorf("expected no harvester alarm, got %+v", pc.report)
		}
	default:
		return fmt.Errorf("unknown alarm %q", alarm)
	}
	return nil
}

// InitializePopulationScenario registers the domain steps
func InitializePopulationScenario(ctx *godog.ScenarioContext) {
	pc := &populationContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		pc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^a site at development level (\d+) with (\d+) sources?$`, pc.aSiteAtDevelopmentLevelWithSources)
	ctx.Step(`^the site holds (\d+) of (\d+) energy$`, pc.theSiteHoldsOfEnergy)
	ctx.Step(`^the site has outstanding construction$`, pc.theSiteHasOutstandingConstruction)
	ctx.Step(`^the site has (\d+) damaged structures$`, pc.theSiteHasDamagedStructures)
	ctx.Step(`^the registry lists:$`, pc.theRegistryLists)
	ctx.Step(`^the alive workers are:$`, pc.theAliveWorkersAre)
	ctx.Step(`^only harvesters have a loadout$`, pc.onlyHarvestersHaveALoadout)
	ctx.Step(`^the production slot is busy$`, pc.theProductionSlotIsBusy)

	// When steps
	ctx.Step(`^I plan the target population$`, pc.iPlanTheTargetPopulation)
	ctx.Step(`^I count the workers of site "([^"]*)"$`, pc.iCountTheWorkersOfSite)
	ctx.Step(`^I schedule with a budget of (\d+) energy$`, pc.iScheduleWithABudgetOf)

	// Then steps
	ctx.Step(`^the target population should be:$`, pc.theTargetPopulationShouldBe)
	ctx.Step(`^the current population should be:$`, pc.theCurrentPopulationShouldBe)
	ctx.Step(`^the tier should be "([^"]*)"$`, pc.theTierShouldBe)
	ctx.Step(`^scarcity should be applied$`, pc.scarcityShouldBeApplied)
	ctx.Step(`^scarcity should not be applied$`, pc.scarcityShouldNotBeApplied)
	ctx.Step(`^the priority of (\w+) should be "([^"]*)"$`, pc.thePriorityOfShouldBe)
	ctx.Step(`^the request should be a (\w+) costing (\d+)$`, pc.theRequestShouldBeACosting)
	ctx.Step(`^no request should be made$`, pc.noRequestShouldBeMade)
	ctx.Step(`^scheduling should be deferred for insufficient energy$`, pc.schedulingShouldBeDeferredForInsufficientEnergy)
	ctx.Step(`^scheduling should be deferred because the slot is occupied$`, pc.schedulingShouldBeDeferredBecauseTheSlotIsOccupied)
	ctx.Step(`^scheduling should fail because (\w+) has no loadout$`, pc.schedulingShouldFailForUnconfigured)
	ctx.Step(`^the harvester alarm should be "([^"]*)"$`, pc.theHarvesterAlarmShouldBe)
}
