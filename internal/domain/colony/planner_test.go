package colony_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/andrescamacho/colony-go/internal/domain/colony"
)

func fullEnergy(level, sources int) colony.RoomState {
	return colony.RoomState{
		SiteID:           "W1N1",
		DevelopmentLevel: level,
		SourceCount:      sources,
		EnergyAvailable:  300,
		EnergyCapacity:   300,
	}
}

func comp(harvester, hauler, upgrader, builder, repairer int) colony.Composition {
	return colony.NewComposition(map[colony.Role]int{
		colony.RoleHarvester: harvester,
		colony.RoleHauler:    hauler,
		colony.RoleUpgrader:  upgrader,
		colony.RoleBuilder:   builder,
		colony.RoleRepairer:  repairer,
	})
}

func TestPlan_Tiers(t *testing.T) {
	planner := colony.NewPopulationPlanner(colony.DefaultPlannerPolicy())

	tests := []struct {
		name  string
		state colony.RoomState
		want  colony.Composition
	}{
		{
			name:  "survival with one source",
			state: fullEnergy(1, 1),
			want:  comp(2, 0, 1, 0, 0),
		},
		{
			name:  "survival clamps harvesters to four",
			state: fullEnergy(1, 3),
			want:  comp(4, 0, 1, 0, 0),
		},
		{
			name:  "transition without construction",
			state: fullEnergy(2, 1),
			want:  comp(1, 2, 2, 0, 0),
		},
		{
			name: "transition with construction",
			state: func() colony.RoomState {
				s := fullEnergy(2, 3)
				s.HasOutstandingConstruction = true
				return s
			}(),
			want: comp(3, 3, 2, 1, 0),
		},
		{
			name: "growth with construction and heavy damage",
			state: func() colony.RoomState {
				s := fullEnergy(3, 2)
				s.HasOutstandingConstruction = true
				s.DamagedStructureCount = 6
				return s
			}(),
			want: comp(2, 3, 2, 2, 1),
		},
		{
			name: "growth keeps a standby builder and skips repair at the threshold",
			state: func() colony.RoomState {
				s := fullEnergy(4, 2)
				s.DamagedStructureCount = 5
				return s
			}(),
			want: comp(2, 3, 2, 1, 0),
		},
		{
			name:  "production",
			state: fullEnergy(5, 2),
			want:  comp(2, 4, 3, 1, 1),
		},
		{
			name: "production with many sources",
			state: func() colony.RoomState {
				s := fullEnergy(6, 3)
				s.HasOutstandingConstruction = true
				return s
			}(),
			want: comp(3, 5, 3, 2, 1),
		},
		{
			name: "optimization with abundant energy",
			state: colony.RoomState{
				DevelopmentLevel: 7, SourceCount: 2,
				EnergyAvailable: 900, EnergyCapacity: 1000,
			},
			want: comp(2, 5, 5, 1, 2),
		},
		{
			name: "optimization with moderate energy",
			state: colony.RoomState{
				DevelopmentLevel: 8, SourceCount: 2,
				EnergyAvailable: 500, EnergyCapacity: 1000,
				HasOutstandingConstruction: true,
			},
			want: comp(2, 5, 3, 3, 2),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, planner.Plan(tt.state), "got %s", planner.Plan(tt.state))
		})
	}
}

func TestPlan_ScarcityOverride(t *testing.T) {
	planner := colony.NewPopulationPlanner(colony.DefaultPlannerPolicy())

	state := colony.RoomState{
		DevelopmentLevel: 5, SourceCount: 2,
		EnergyAvailable: 200, EnergyCapacity: 1000,
		HasOutstandingConstruction: true,
	}
	target, notes := planner.PlanWithNotes(state)

	assert.True(t, notes.ScarcityApplied)
	assert.Equal(t, 3, notes.TierTarget.Get(colony.RoleUpgrader))
	assert.Equal(t, 1, target.Get(colony.RoleUpgrader))
	assert.Equal(t, 1, target.Get(colony.RoleBuilder))
	assert.Equal(t, 4, target.Get(colony.RoleHauler), "haulers are not shed")

	state.HasOutstandingConstruction = false
	target = planner.Plan(state)
	assert.Equal(t, 0, target.Get(colony.RoleBuilder))
}

func TestPlan_ScarcityInvariant(t *testing.T) {
	planner := colony.NewPopulationPlanner(colony.DefaultPlannerPolicy())

	for level := 0; level <= 8; level++ {
		for sources := 0; sources <= 4; sources++ {
			for _, construction := range []bool{false, true} {
				for _, available := range []int{0, 1, 100, 299} {
					state := colony.RoomState{
						DevelopmentLevel:           level,
						SourceCount:                sources,
						EnergyAvailable:            available,
						EnergyCapacity:             1000,
						HasOutstandingConstruction: construction,
						DamagedStructureCount:      10,
					}
					target, notes := planner.PlanWithNotes(state)

					assert.True(t, notes.ScarcityApplied)
					assert.GreaterOrEqual(t, target.Get(colony.RoleUpgrader), 1, "state %+v", state)
					assert.LessOrEqual(t, target.Get(colony.RoleUpgrader), notes.TierTarget.Get(colony.RoleUpgrader), "state %+v", state)
				}
			}
		}
	}
}

func TestPlan_ZeroCapacityTakesNonScarcePath(t *testing.T) {
	planner := colony.NewPopulationPlanner(colony.DefaultPlannerPolicy())

	state := colony.RoomState{DevelopmentLevel: 7, SourceCount: 2, EnergyAvailable: 50, EnergyCapacity: 0}
	target, notes := planner.PlanWithNotes(state)

	assert.False(t, notes.RatioKnown)
	assert.False(t, notes.ScarcityApplied)
	assert.Equal(t, 3, target.Get(colony.RoleUpgrader), "abundance branch needs a known ratio")
	assert.Equal(t, 1, target.Get(colony.RoleBuilder))
}

func TestPlan_ClampsOutOfRangeInputs(t *testing.T) {
	planner := colony.NewPopulationPlanner(colony.DefaultPlannerPolicy())

	state := colony.RoomState{DevelopmentLevel: -3, SourceCount: -1, EnergyAvailable: 300, EnergyCapacity: 300}

	assert.Equal(t, comp(0, 0, 1, 0, 0), planner.Plan(state))
}

// The optimization tier and the scarcity override read the same ratio with
// different thresholds. With the stock thresholds they cannot both fire; a
// policy whose scarcity threshold sits above the abundance threshold makes
// them compound, which this test pins down.
func TestPlan_EnergyLayersCompound(t *testing.T) {
	planner := colony.NewPopulationPlanner(colony.PlannerPolicy{
		ScarcityRatio:  0.95,
		AbundanceRatio: 0.8,
	})

	state := colony.RoomState{DevelopmentLevel: 7, SourceCount: 2, EnergyAvailable: 900, EnergyCapacity: 1000}
	target, notes := planner.PlanWithNotes(state)

	assert.Equal(t, 5, notes.TierTarget.Get(colony.RoleUpgrader))
	assert.True(t, notes.ScarcityApplied)
	assert.Equal(t, 2, target.Get(colony.RoleUpgrader))
}

func TestPlan_StockThresholdsNeverCompound(t *testing.T) {
	planner := colony.NewPopulationPlanner(colony.DefaultPlannerPolicy())

	for available := 0; available <= 1000; available += 25 {
		state := colony.RoomState{DevelopmentLevel: 8, SourceCount: 2, EnergyAvailable: available, EnergyCapacity: 1000}
		target, notes := planner.PlanWithNotes(state)
		if notes.TierTarget.Get(colony.RoleUpgrader) == 5 {
			assert.False(t, notes.ScarcityApplied)
			assert.Equal(t, 5, target.Get(colony.RoleUpgrader))
		}
	}
}

func TestTierForLevel(t *testing.T) {
	assert.Equal(t, colony.TierSurvival, colony.TierForLevel(0))
	assert.Equal(t, colony.TierSurvival, colony.TierForLevel(1))
	assert.Equal(t, colony.TierTransition, colony.TierForLevel(2))
	assert.Equal(t, colony.TierGrowth, colony.TierForLevel(4))
	assert.Equal(t, colony.TierProduction, colony.TierForLevel(6))
	assert.Equal(t, colony.TierOptimization, colony.TierForLevel(8))
	assert.Equal(t, "optimization", colony.TierForLevel(12).String())
}
