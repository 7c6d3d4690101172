package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/colony-go/internal/domain/colony"
	"github.com/andrescamacho/colony-go/internal/infrastructure/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "colony.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig_DefaultsReproduceStockTables(t *testing.T) {
	cfg, err := config.LoadConfig(writeConfig(t, "logging:\n  level: debug\n"))
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, colony.DefaultPlannerPolicy(), cfg.Planner.ToPolicy())

	table, err := cfg.Spawn.ToLoadoutTable()
	require.NoError(t, err)
	assert.Equal(t, colony.DefaultLoadoutTable(), table)

	ranks, err := cfg.Spawn.ToStaticRanks()
	require.NoError(t, err)
	assert.Equal(t, colony.DefaultStaticRanks(), ranks)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "planner:\n  scarcity_ratio: 0.25\n  abundance_ratio: 0.85\n")
	t.Setenv("COLONY_PLANNER_SCARCITY_RATIO", "0.2")

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 0.2, cfg.Planner.ScarcityRatio)
	assert.Equal(t, 0.85, cfg.Planner.AbundanceRatio)
}

func TestLoadConfig_PartialLoadoutsLeaveRolesUnconfigured(t *testing.T) {
	path := writeConfig(t, `
spawn:
  loadouts:
    harvester:
      - threshold: 300
        parts: [work, carry, move]
`)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	table, err := cfg.Spawn.ToLoadoutTable()
	require.NoError(t, err)
	assert.True(t, table.Has(colony.RoleHarvester))
	assert.False(t, table.Has(colony.RoleRepairer))
}

func TestLoadConfig_RejectsInvalidSections(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown part", "spawn:\n  loadouts:\n    builder:\n      - threshold: 300\n        parts: [work, wings]\n"},
		{"unknown role", "spawn:\n  ranks:\n    scout: 2\n"},
		{"zero threshold", "spawn:\n  loadouts:\n    builder:\n      - threshold: 0\n        parts: [work]\n"},
		{"abundance below scarcity", "planner:\n  scarcity_ratio: 0.6\n  abundance_ratio: 0.5\n"},
		{"bad log level", "logging:\n  level: verbose\n"},
		{"duplicate ranks", "spawn:\n  ranks:\n    hauler: 3\n    upgrader: 3\n"},
		{"rank taken by a stock role", "spawn:\n  ranks:\n    repairer: 1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.LoadConfig(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestToStaticRanks_MergesDistinctRanks(t *testing.T) {
	spawn := config.SpawnConfig{Ranks: map[string]int{"harvester": 5, "repairer": 1}}

	ranks, err := spawn.ToStaticRanks()

	require.NoError(t, err)
	assert.Equal(t, 1, ranks.Rank(colony.RoleRepairer))
	assert.Equal(t, 5, ranks.Rank(colony.RoleHarvester))
	assert.Equal(t, 2, ranks.Rank(colony.RoleHauler))
}

func TestToStaticRanks_RejectsSharedRank(t *testing.T) {
	spawn := config.SpawnConfig{Ranks: map[string]int{"builder": 2}}

	_, err := spawn.ToStaticRanks()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "share rank 2")
}

func TestDefault_IsValid(t *testing.T) {
	assert.NoError(t, config.ValidateConfig(config.Default()))
}
