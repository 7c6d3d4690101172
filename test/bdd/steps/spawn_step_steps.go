package steps

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/colony-go/internal/application/common"
	"github.com/andrescamacho/colony-go/internal/application/spawning"
	"github.com/andrescamacho/colony-go/internal/application/spawning/commands"
	"github.com/andrescamacho/colony-go/internal/domain/colony"
	"github.com/andrescamacho/colony-go/internal/domain/shared"
	"github.com/andrescamacho/colony-go/test/helpers"
)

// spawnStepContext runs RunSpawnStep through the mediator against a mock world
type spawnStepContext struct {
	world  *helpers.MockColony
	logger *helpers.RecordingLogger
	clock  *shared.MockClock

	response *commands.RunSpawnStepResponse
	err      error
}

func (sc *spawnStepContext) reset() {
	sc.world = helpers.NewMockColony()
	sc.logger = helpers.NewRecordingLogger()
	sc.clock = shared.NewMockClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	sc.response = nil
	sc.err = nil
}

// Given steps

func (sc *spawnStepContext) anInMemorySiteWithEnergy(siteID string, level, sources, available, capacity int) error {
	sc.world.SetState(colony.RoomState{
		SiteID:           siteID,
		DevelopmentLevel: level,
		SourceCount:      sources,
		EnergyAvailable:  available,
		EnergyCapacity:   capacity,
	})
	return nil
}

func (sc *spawnStepContext) siteHasWorkersOfRole(siteID string, count int, role string) error {
	sc.world.AddWorkers(siteID, role, count)
	return nil
}

func (sc *spawnStepContext) theEnergyOfSiteDropsTo(siteID string, energy int) error {
	sc.world.SetBudget(siteID, energy)
	return nil
}

func (sc *spawnStepContext) theProducerOfSiteIsBusy(siteID string) error {
	sc.world.SetBusy(siteID, true)
	return nil
}

func (sc *spawnStepContext) theProducerAnswers(outcome string) error {
	sc.world.Outcome = colony.ProductionOutcome(outcome)
	return nil
}

func (sc *spawnStepContext) theProducerFailsWith(message string) error {
	sc.world.ProduceErr = errors.New(message)
	return nil
}

// When steps

func (sc *spawnStepContext) iRunASpawnStepForAtTick(siteID string, tick int) error {
	med := common.NewMediator()
	med.Use(common.TimingMiddleware(sc.clock.Now))
	handler := commands.NewRunSpawnStepHandler(spawning.NewDefaultPipeline(), sc.world, sc.world, sc.world, sc.clock)
	if err := common.RegisterHandler[*commands.RunSpawnStepCommand](med, handler); err != nil {
		return err
	}

	ctx := common.WithLogger(context.Background(), sc.logger)
	resp, err := med.Send(ctx, &commands.RunSpawnStepCommand{SiteID: siteID, Tick: uint64(tick)})
	sc.err = err
	if resp != nil {
		sc.response = resp.(*commands.RunSpawnStepResponse)
	}
	return nil
}

// Then steps

func (sc *spawnStepContext) theStepResultShouldBe(result string) error {
	if sc.err != nil {
		return fmt.Errorf("expected result %s, got error: %w", result, sc.err)
	}
	if sc.response.Result != result {
		return fmt.Errorf("expected result %s, got %s", result, sc.response.Result)
	}
	return nil
}

func (sc *spawnStepContext) theStepShouldFailWith(fragment string) error {
	if sc.err == nil {
		return fmt.Errorf("expected the step to fail")
	}
	if !strings.Contains(sc.err.Error(), fragment) {
		return fmt.Errorf("expected error containing %q, got %v", fragment, sc.err)
	}
	return nil
}

func (sc *spawnStepContext) theProducerShouldHaveReceivedARequestNamed(role, name string) error {
	if sc.world.ProducedCount() != 1 {
		return fmt.Errorf("expected 1 request, got %d", sc.world.ProducedCount())
	}
	if got := sc.world.Produced[0].Role.String(); got != role {
		return fmt.Errorf("expected a %s request, got %s", role, got)
	}
	if sc.response.WorkerName != name {
		return fmt.Errorf("expected worker name %s, got %s", name, sc.response.WorkerName)
	}
	return nil
}

func (sc *spawnStepContext) theRequestShouldCostAtMost(budget int) error {
	if sc.world.ProducedCount() == 0 {
		return fmt.Errorf("no request reached the producer")
	}
	if cost := sc.world.Produced[0].Cost; cost > budget {
		return fmt.Errorf("request costs %d, more than %d", cost, budget)
	}
	return nil
}

func (sc *spawnStepContext) theProducerShouldHaveReceivedNoRequest() error {
	if n := sc.world.ProducedCount(); n != 0 {
		return fmt.Errorf("expected no request, got %d", n)
	}
	return nil
}

func (sc *spawnStepContext) anEntryShouldBeLogged(level, fragment string) error {
	if _, ok := sc.logger.Find(level, fragment); !ok {
		return fmt.Errorf("no %s entry containing %q in %d entries", level, fragment, len(sc.logger.Entries))
	}
	return nil
}

func (sc *spawnStepContext) theSiteStateShouldNotHaveBeenRead() error {
	if sc.world.StateReads != 0 {
		return fmt.Errorf("expected no state read, got %d", sc.world.StateReads)
	}
	return nil
}

// InitializeSpawnStepScenario registers the application steps
func InitializeSpawnStepScenario(ctx *godog.ScenarioContext) {
	sc := &spawnStepContext{}

	ctx.Before(func(ctx context.Context, s *godog.Scenario) (context.Context, error) {
		sc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^an in-memory site "([^"]*)" at level (\d+) with (\d+) sources? and (\d+) of (\d+) energy$`, sc.anInMemorySiteWithEnergy)
	ctx.Step(`^site "([^"]*)" has (\d+) workers? of role "([^"]*)"$`, sc.siteHasWorkersOfRole)
	ctx.Step(`^the energy of site "([^"]*)" drops to (\d+) before scheduling$`, sc.theEnergyOfSiteDropsTo)
	ctx.Step(`^the producer of site "([^"]*)" is busy$`, sc.theProducerOfSiteIsBusy)
	ctx.Step(`^the producer answers "([^"]*)"$`, sc.theProducerAnswers)
	ctx.Step(`^the producer fails with "([^"]*)"$`, sc.theProducerFailsWith)

	// When steps
	ctx.Step(`^I run a spawn step for "([^"]*)" at tick (\d+)$`, sc.iRunASpawnStepForAtTick)

	// Then steps
	ctx.Step(`^the step result should be "([^"]*)"$`, sc.theStepResultShouldBe)
	ctx.Step(`^the step should fail with "([^"]*)"$`, sc.theStepShouldFailWith)
	ctx.Step(`^the producer should have received a "([^"]*)" request named "([^"]*)"$`, sc.theProducerShouldHaveReceivedARequestNamed)
	ctx.Step(`^the request should cost at most (\d+) energy$`, sc.theRequestShouldCostAtMost)
	ctx.Step(`^the producer should have received no request$`, sc.theProducerShouldHaveReceivedNoRequest)
	ctx.Step(`^an? (DEBUG|INFO|WARNING|ERROR) entry containing "([^"]*)" should be logged$`, sc.anEntryShouldBeLogged)
	ctx.Step(`^the site state should not have been read$`, sc.theSiteStateShouldNotHaveBeenRead)
}
