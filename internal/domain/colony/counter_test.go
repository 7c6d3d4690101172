package colony_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/andrescamacho/colony-go/internal/domain/colony"
)

func TestCount_FiltersSiteAndUnknownRoles(t *testing.T) {
	counter := colony.NewPopulationCounter()
	workers := []colony.Worker{
		{Name: "harvester_10", Role: "harvester", SiteID: "W1N1"},
		{Name: "harvester_12", Role: "Harvester", SiteID: "W1N1"},
		{Name: "hauler_20", Role: "hauler", SiteID: "W1N1"},
		{Name: "scout_21", Role: "scout", SiteID: "W1N1"},
		{Name: "upgrader_30", Role: "upgrader", SiteID: "W2N2"},
	}

	got := counter.Count(workers, "W1N1")

	assert.Equal(t, 2, got.Get(colony.RoleHarvester))
	assert.Equal(t, 1, got.Get(colony.RoleHauler))
	assert.Equal(t, 0, got.Get(colony.RoleUpgrader))
	assert.Equal(t, 3, got.Total())
}

func TestCount_EmptyRegistry(t *testing.T) {
	got := colony.NewPopulationCounter().Count(nil, "W1N1")

	assert.Equal(t, 0, got.Total())
	assert.Len(t, got.AsMap(), 5)
}

func TestComposition_WithClampsAndCopies(t *testing.T) {
	base := colony.NewComposition(map[colony.Role]int{colony.RoleBuilder: 2})
	changed := base.With(colony.RoleBuilder, -4)

	assert.Equal(t, 2, base.Get(colony.RoleBuilder))
	assert.Equal(t, 0, changed.Get(colony.RoleBuilder))
	assert.Equal(t, "{harvester:0 hauler:0 upgrader:0 builder:2 repairer:0}", base.String())
}

func TestParseRole(t *testing.T) {
	role, err := colony.ParseRole("  Repairer ")
	assert.NoError(t, err)
	assert.Equal(t, colony.RoleRepairer, role)

	_, err = colony.ParseRole("claimer")
	assert.Error(t, err)
}
