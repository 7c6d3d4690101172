package colony_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/colony-go/internal/domain/colony"
)

func TestAnalyze_OnlyPositiveGaps(t *testing.T) {
	analyzer := colony.NewDeficitAnalyzer()
	target := comp(2, 2, 2, 1, 0)
	current := comp(2, 3, 0, 0, 1)

	report := analyzer.Analyze(target, current, 2)

	require.Len(t, report.Deficits, 2)
	upgrader, ok := report.Find(colony.RoleUpgrader)
	require.True(t, ok)
	assert.Equal(t, colony.Deficit{Role: colony.RoleUpgrader, Current: 0, Target: 2, Amount: 2}, upgrader)
	_, ok = report.Find(colony.RoleHauler)
	assert.False(t, ok, "surplus is not a deficit")
	assert.False(t, report.ZeroPrimary)
	assert.False(t, report.PrimaryBelowSources)
}

func TestAnalyze_SatisfiedTargetIsEmpty(t *testing.T) {
	target := comp(2, 2, 1, 1, 0)

	report := colony.NewDeficitAnalyzer().Analyze(target, target, 2)

	assert.False(t, report.HasDeficits())
	assert.Empty(t, report.Deficits)
}

func TestAnalyze_PrimarySignals(t *testing.T) {
	analyzer := colony.NewDeficitAnalyzer()

	report := analyzer.Analyze(comp(2, 0, 1, 0, 0), comp(0, 0, 0, 0, 0), 2)
	assert.True(t, report.ZeroPrimary)
	assert.True(t, report.PrimaryBelowSources)

	report = analyzer.Analyze(comp(2, 0, 1, 0, 0), comp(1, 0, 1, 0, 0), 2)
	assert.False(t, report.ZeroPrimary)
	assert.True(t, report.PrimaryBelowSources)
}

func TestAnalyzeNeeds_WarningsAndSuggestions(t *testing.T) {
	analyzer := colony.NewDeficitAnalyzer()
	state := colony.RoomState{
		DevelopmentLevel: 4, SourceCount: 2,
		EnergyAvailable: 950, EnergyCapacity: 1000,
		ConstructionSiteCount: 12,
	}
	current := comp(0, 1, 2, 1, 0)

	needs := analyzer.AnalyzeNeeds(state, comp(2, 3, 2, 2, 0), current)

	assert.Equal(t, []string{colony.WarningNoHarvesters, colony.WarningHarvestersBelowSrc}, needs.Warnings)
	assert.Equal(t, []string{colony.SuggestMoreUpgraders, colony.SuggestMoreBuilders}, needs.Suggestions)
	assert.Len(t, needs.Deficits, 3)
}

func TestAnalyzeNeeds_QuietWhenHealthy(t *testing.T) {
	state := colony.RoomState{
		DevelopmentLevel: 3, SourceCount: 2,
		EnergyAvailable: 400, EnergyCapacity: 800,
		ConstructionSiteCount: 3,
	}
	target := comp(2, 3, 2, 2, 0)

	needs := colony.NewDeficitAnalyzer().AnalyzeNeeds(state, target, target)

	assert.Empty(t, needs.Warnings)
	assert.Empty(t, needs.Suggestions)
	assert.Empty(t, needs.Deficits)
}
