package bdd

import (
	"os"
	"testing"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/colony-go/test/bdd/steps"
	"github.com/andrescamacho/colony-go/test/helpers"
)

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features/domain", "features/application", "features/adapters"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}

func InitializeScenario(sc *godog.ScenarioContext) {
	// Domain
	steps.InitializePopulationScenario(sc)

	// Application: one spawn step against an in-memory site
	steps.InitializeSpawnStepScenario(sc)

	// Adapters: stored sites and step logs
	steps.InitializeSiteStoreScenario(sc)
}

func TestMain(m *testing.M) {
	// One migrated in-memory database shared by every scenario
	if err := helpers.InitializeSharedTestDB(); err != nil {
		panic("Failed to initialize shared test database: " + err.Error())
	}
	defer helpers.CloseSharedTestDB()

	os.Exit(m.Run())
}
