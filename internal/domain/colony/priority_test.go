package colony_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/andrescamacho/colony-go/internal/domain/colony"
)

func TestPriority_TotalOrder(t *testing.T) {
	zero := colony.CriticalZeroPriority()
	low := colony.CriticalLowPriority()
	first := colony.StaticPriority(1)
	last := colony.StaticPriority(5)
	negative := colony.StaticPriority(-10)

	assert.True(t, zero.MoreUrgentThan(low))
	assert.True(t, low.MoreUrgentThan(first))
	assert.True(t, low.MoreUrgentThan(negative), "critical beats any configured rank")
	assert.True(t, first.MoreUrgentThan(last))
	assert.Equal(t, 0, first.Compare(colony.StaticPriority(1)))
	assert.Equal(t, 0, zero.Compare(colony.CriticalZeroPriority()))
	assert.Equal(t, 1, last.Compare(zero))
}

func TestPriority_Score(t *testing.T) {
	assert.Equal(t, 0.0, colony.CriticalZeroPriority().Score())
	assert.Equal(t, 0.5, colony.CriticalLowPriority().Score())
	assert.Equal(t, 3.0, colony.StaticPriority(3).Score())
	assert.Equal(t, "static(3)", colony.StaticPriority(3).String())
}

func TestAssign_DefaultsForEveryRole(t *testing.T) {
	assigner := colony.NewPriorityAssigner()

	priorities := assigner.Assign(nil, colony.DefaultStaticRanks())

	for i, role := range colony.AllRoles() {
		assert.Equal(t, colony.StaticPriority(i+1), priorities.Get(role), role.String())
	}
}

func TestAssign_HarvesterOverrides(t *testing.T) {
	assigner := colony.NewPriorityAssigner()
	ranks := colony.DefaultStaticRanks()

	tests := []struct {
		name    string
		current int
		want    colony.Priority
	}{
		{"no harvester alive", 0, colony.CriticalZeroPriority()},
		{"single harvester", 1, colony.CriticalLowPriority()},
		{"two harvesters", 2, colony.StaticPriority(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deficits := []colony.Deficit{
				{Role: colony.RoleHarvester, Current: tt.current, Target: 4, Amount: 4 - tt.current},
			}
			assert.Equal(t, tt.want, assigner.Assign(deficits, ranks).Get(colony.RoleHarvester))
		})
	}
}

func TestAssign_OverridesOnlyApplyToDeficits(t *testing.T) {
	assigner := colony.NewPriorityAssigner()

	// Harvester satisfied (not in the list) even though the upgrader has zero.
	deficits := []colony.Deficit{{Role: colony.RoleUpgrader, Current: 0, Target: 2, Amount: 2}}
	priorities := assigner.Assign(deficits, colony.DefaultStaticRanks())

	assert.Equal(t, colony.StaticPriority(1), priorities.Get(colony.RoleHarvester))
	assert.Equal(t, colony.StaticPriority(3), priorities.Get(colony.RoleUpgrader))
}

func TestAssign_ZeroHarvestersOutranksEveryStaticDefault(t *testing.T) {
	planner := colony.NewPopulationPlanner(colony.DefaultPlannerPolicy())
	analyzer := colony.NewDeficitAnalyzer()
	assigner := colony.NewPriorityAssigner()
	ranks := colony.DefaultStaticRanks()

	for level := 1; level <= 8; level++ {
		for sources := 1; sources <= 3; sources++ {
			for _, available := range []int{0, 250, 800, 1000} {
				state := colony.RoomState{
					DevelopmentLevel: level, SourceCount: sources,
					EnergyAvailable: available, EnergyCapacity: 1000,
				}
				current := colony.NewComposition(map[colony.Role]int{colony.RoleHauler: 1, colony.RoleUpgrader: 2})

				report := analyzer.Analyze(planner.Plan(state), current, state.SourceCount)
				priorities := assigner.Assign(report.Deficits, ranks)

				harvester := priorities.Get(colony.RoleHarvester)
				for _, role := range colony.AllRoles() {
					if role == colony.RoleHarvester {
						continue
					}
					assert.True(t, harvester.MoreUrgentThan(colony.StaticPriority(ranks.Rank(role))),
						"level %d sources %d: %s vs %s", level, sources, harvester, role)
				}
			}
		}
	}
}

func TestNewStaticRanks_KeepsDefaultsForMissingRoles(t *testing.T) {
	ranks := colony.NewStaticRanks(map[colony.Role]int{colony.RoleRepairer: 0})

	assert.Equal(t, 0, ranks.Rank(colony.RoleRepairer))
	assert.Equal(t, 2, ranks.Rank(colony.RoleHauler))
}
