package steps

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/colony-go/internal/adapters/persistence"
	"github.com/andrescamacho/colony-go/internal/application/common"
	"github.com/andrescamacho/colony-go/internal/application/spawning"
	"github.com/andrescamacho/colony-go/internal/application/spawning/queries"
	"github.com/andrescamacho/colony-go/internal/domain/colony"
	"github.com/andrescamacho/colony-go/internal/domain/shared"
	"github.com/andrescamacho/colony-go/test/helpers"
)

// siteStoreContext exercises the gorm repositories on the shared database
type siteStoreContext struct {
	clock   *shared.MockClock
	sites   *persistence.GormSiteRepository
	workers *persistence.GormWorkerRepository
	logs    *persistence.GormStepLogRepository
	writer  *persistence.StepLogWriter

	report *queries.GetPopulationReportResponse
	err    error
}

func (sc *siteStoreContext) reset() error {
	if err := helpers.TruncateAllTables(); err != nil {
		return err
	}
	db := helpers.SharedTestDB
	sc.clock = shared.NewMockClock(time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC))
	sc.sites = persistence.NewGormSiteRepository(db, sc.clock)
	sc.workers = persistence.NewGormWorkerRepository(db, sc.clock)
	sc.logs = persistence.NewGormStepLogRepository(db, sc.clock)
	sc.writer = nil
	sc.report = nil
	sc.err = nil
	return nil
}

// Given steps

func (sc *siteStoreContext) aStoredSiteWithEnergy(siteID string, level, sources, available, capacity int) error {
	return sc.sites.Save(context.Background(), colony.RoomState{
		SiteID:           siteID,
		DevelopmentLevel: level,
		SourceCount:      sources,
		EnergyAvailable:  available,
		EnergyCapacity:   capacity,
	})
}

func (sc *siteStoreContext) theStoredWorkersOfAre(siteID string, table *godog.Table) error {
	var workers []persistence.RegisteredWorker
	for _, row := range table.Rows[1:] {
		workers = append(workers, persistence.RegisteredWorker{
			Worker: colony.Worker{
				Name:   getCellValue(table, row, "name"),
				Role:   getCellValue(table, row, "role"),
				SiteID: siteID,
			},
		})
	}
	return sc.workers.ReplaceSite(context.Background(), siteID, workers)
}

func (sc *siteStoreContext) aStepLogWriterForAtLevel(siteID, level string) error {
	sc.writer = persistence.NewStepLogWriter(sc.logs, nil, level, siteID)
	return nil
}

// When steps

func (sc *siteStoreContext) iRequestThePopulationReportFor(siteID string) error {
	med := common.NewMediator()
	handler := queries.NewGetPopulationReportHandler(spawning.NewDefaultPipeline(), sc.sites, sc.workers)
	if err := common.RegisterHandler[*queries.GetPopulationReportQuery](med, handler); err != nil {
		return err
	}

	resp, err := med.Send(context.Background(), &queries.GetPopulationReportQuery{SiteID: siteID})
	sc.err = err
	if resp != nil {
		sc.report = resp.(*queries.GetPopulationReportResponse)
	}
	return nil
}

func (sc *siteStoreContext) theWriterLogs(level, message string) error {
	sc.writer.Log(level, message, map[string]interface{}{"role": "harvester"})
	return nil
}

func (sc *siteStoreContext) theWriterLogsForWorker(level, message, name string) error {
	sc.writer.Log(level, message, map[string]interface{}{"name": name})
	return nil
}

func (sc *siteStoreContext) minutesPass(minutes int) error {
	sc.clock.Advance(time.Duration(minutes) * time.Minute)
	return nil
}

// Then steps

func (sc *siteStoreContext) theReportShouldShowTier(tier string) error {
	if sc.err != nil {
		return fmt.Errorf("report failed: %w", sc.err)
	}
	if sc.report.Tier.String() != tier {
		return fmt.Errorf("expected tier %s, got %s", tier, sc.report.Tier)
	}
	return nil
}

func (sc *siteStoreContext) theReportShouldFlagScarcity() error {
	if !sc.report.Scarcity {
		return fmt.Errorf("expected scarcity (ratio %.2f)", sc.report.EnergyRatio)
	}
	return nil
}

func (sc *siteStoreContext) theReportShouldWarnAbout(fragment string) error {
	for _, w := range sc.report.Needs.Warnings {
		if strings.Contains(w, fragment) {
			return nil
		}
	}
	return fmt.Errorf("no warning containing %q in %v", fragment, sc.report.Needs.Warnings)
}

func (sc *siteStoreContext) theReportShouldSuggest(fragment string) error {
	for _, s := range sc.report.Needs.Suggestions {
		if strings.Contains(s, fragment) {
			return nil
		}
	}
	return fmt.Errorf("no suggestion containing %q in %v", fragment, sc.report.Needs.Suggestions)
}

func (sc *siteStoreContext) theReportDeficitOfShouldBe(roleName string, amount int) error {
	role, err := colony.ParseRole(roleName)
	if err != nil {
		return err
	}
	for _, d := range sc.report.Needs.Deficits {
		if d.Role == role {
			if d.Amount != amount {
				return fmt.Errorf("expected %s deficit %d, got %d", role, amount, d.Amount)
			}
			return nil
		}
	}
	if amount == 0 {
		return nil
	}
	return fmt.Errorf("no %s deficit", role)
}

func (sc *siteStoreContext) theReportShouldFailWith(fragment string) error {
	if sc.err == nil {
		return fmt.Errorf("expected the report to fail")
	}
	if !strings.Contains(sc.err.Error(), fragment) {
		return fmt.Errorf("expected error containing %q, got %v", fragment, sc.err)
	}
	return nil
}

func (sc *siteStoreContext) theStoredLogOfShouldHoldEntriesWithMessage(siteID string, count int, message string) error {
	entries, err := sc.logs.GetLogs(context.Background(), persistence.StepLogQuery{SiteID: siteID})
	if err != nil {
		return err
	}
	found := 0
	for _, e := range entries {
		if e.Message == message {
			found++
		}
	}
	if found != count {
		return fmt.Errorf("expected %d %q entries, got %d", count, message, found)
	}
	return nil
}

// InitializeSiteStoreScenario registers the persistence steps
func InitializeSiteStoreScenario(ctx *godog.ScenarioContext) {
	sc := &siteStoreContext{}

	ctx.Before(func(ctx context.Context, s *godog.Scenario) (context.Context, error) {
		return ctx, sc.reset()
	})

	// Given steps
	ctx.Step(`^a stored site "([^"]*)" at level (\d+) with (\d+) sources? and (\d+) of (\d+) energy$`, sc.aStoredSiteWithEnergy)
	ctx.Step(`^the stored workers of "([^"]*)" are:$`, sc.theStoredWorkersOfAre)
	ctx.Step(`^a step log writer for "([^"]*)" at level "([^"]*)"$`, sc.aStepLogWriterForAtLevel)

	// When steps
	ctx.Step(`^I request the population report for "([^"]*)"$`, sc.iRequestThePopulationReportFor)
	ctx.Step(`^the writer logs (DEBUG|INFO|WARNING|ERROR) "([^"]*)"$`, sc.theWriterLogs)
	ctx.Step(`^the writer logs (DEBUG|INFO|WARNING|ERROR) "([^"]*)" for worker "([^"]*)"$`, sc.theWriterLogsForWorker)
	ctx.Step(`^(\d+) minutes pass$`, sc.minutesPass)

	// Then steps
	ctx.Step(`^the report should show the "([^"]*)" tier$`, sc.theReportShouldShowTier)
	ctx.Step(`^the report should flag scarcity$`, sc.theReportShouldFlagScarcity)
	ctx.Step(`^the report should warn about "([^"]*)"$`, sc.theReportShouldWarnAbout)
	ctx.Step(`^the report should suggest "([^"]*)"$`, sc.theReportShouldSuggest)
	ctx.Step(`^the report deficit of (\w+) should be (\d+)$`, sc.theReportDeficitOfShouldBe)
	ctx.Step(`^the report should fail with "([^"]*)"$`, sc.theReportShouldFailWith)
	ctx.Step(`^the stored log of "([^"]*)" should hold (\d+) entr(?:y|ies) with message "([^"]*)"$`, sc.theStoredLogOfShouldHoldEntriesWithMessage)
}
