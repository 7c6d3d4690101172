package colony_test

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/colony-go/internal/domain/colony"
)

func TestSelectRole_LowestPriorityWins(t *testing.T) {
	scheduler := colony.NewSpawnScheduler()
	deficits := []colony.Deficit{
		{Role: colony.RoleRepairer, Current: 0, Target: 2, Amount: 2},
		{Role: colony.RoleHauler, Current: 0, Target: 1, Amount: 1},
		{Role: colony.RoleUpgrader, Current: 0, Target: 5, Amount: 5},
	}
	priorities := colony.NewPriorityAssigner().Assign(deficits, colony.DefaultStaticRanks())

	selected, ok := scheduler.SelectRole(deficits, priorities)

	require.True(t, ok)
	assert.Equal(t, colony.RoleHauler, selected.Role)
}

func TestSelectRole_TieBrokenByLargestDeficit(t *testing.T) {
	scheduler := colony.NewSpawnScheduler()
	ranks := colony.NewStaticRanks(map[colony.Role]int{
		colony.RoleUpgrader: 3,
		colony.RoleBuilder:  3,
	})
	deficits := []colony.Deficit{
		{Role: colony.RoleUpgrader, Current: 1, Target: 2, Amount: 1},
		{Role: colony.RoleBuilder, Current: 0, Target: 3, Amount: 3},
	}
	priorities := colony.NewPriorityAssigner().Assign(deficits, ranks)

	selected, ok := scheduler.SelectRole(deficits, priorities)

	require.True(t, ok)
	assert.Equal(t, colony.RoleBuilder, selected.Role)
}

func TestSelectRole_CriticalHarvesterBeatsConfiguredRanks(t *testing.T) {
	scheduler := colony.NewSpawnScheduler()
	ranks := colony.NewStaticRanks(map[colony.Role]int{
		colony.RoleHarvester: 9,
		colony.RoleHauler:    -1,
	})
	deficits := []colony.Deficit{
		{Role: colony.RoleHauler, Current: 0, Target: 3, Amount: 3},
		{Role: colony.RoleHarvester, Current: 1, Target: 2, Amount: 1},
	}
	priorities := colony.NewPriorityAssigner().Assign(deficits, ranks)

	selected, _ := scheduler.SelectRole(deficits, priorities)

	assert.Equal(t, colony.RoleHarvester, selected.Role)
}

func TestSchedule_DeterministicUnderShuffle(t *testing.T) {
	scheduler := colony.NewSpawnScheduler()
	ranks := colony.NewStaticRanks(map[colony.Role]int{
		colony.RoleHauler:   2,
		colony.RoleUpgrader: 2,
		colony.RoleBuilder:  2,
	})
	deficits := []colony.Deficit{
		{Role: colony.RoleHauler, Current: 1, Target: 3, Amount: 2},
		{Role: colony.RoleUpgrader, Current: 0, Target: 2, Amount: 2},
		{Role: colony.RoleBuilder, Current: 0, Target: 2, Amount: 2},
		{Role: colony.RoleRepairer, Current: 0, Target: 2, Amount: 2},
	}
	priorities := colony.NewPriorityAssigner().Assign(deficits, ranks)
	table := colony.DefaultLoadoutTable()

	want, err := scheduler.Schedule(deficits, priorities, 600, table, colony.SlotFree)
	require.NoError(t, err)
	require.NotNil(t, want)
	assert.Equal(t, colony.RoleHauler, want.Role, "equal ranks and amounts fall back to role order")

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 50; i++ {
		shuffled := make([]colony.Deficit, len(deficits))
		copy(shuffled, deficits)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		got, err := scheduler.Schedule(shuffled, priorities, 600, table, colony.SlotFree)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestSchedule_SizesLoadoutToBudget(t *testing.T) {
	scheduler := colony.NewSpawnScheduler()
	table := colony.DefaultLoadoutTable()
	deficits := []colony.Deficit{{Role: colony.RoleHarvester, Current: 0, Target: 2, Amount: 2}}
	priorities := colony.NewPriorityAssigner().Assign(deficits, colony.DefaultStaticRanks())

	tests := []struct {
		name   string
		budget int
		cost   int
		parts  int
	}{
		{"largest tier", 1300, 700, 8},
		{"exact threshold", 800, 550, 8},
		{"between thresholds", 600, 450, 7},
		{"below every threshold but affordable", 260, 250, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := scheduler.Schedule(deficits, priorities, tt.budget, table, colony.SlotFree)
			require.NoError(t, err)
			require.NotNil(t, req)
			assert.Equal(t, colony.RoleHarvester, req.Role)
			assert.Equal(t, tt.cost, req.Cost)
			assert.Equal(t, tt.cost, req.Loadout.Cost())
			assert.Len(t, req.Loadout, tt.parts)
		})
	}
}

func TestSchedule_InsufficientEnergy(t *testing.T) {
	scheduler := colony.NewSpawnScheduler()
	deficits := []colony.Deficit{{Role: colony.RoleHarvester, Current: 0, Target: 1, Amount: 1}}
	priorities := colony.NewPriorityAssigner().Assign(deficits, colony.DefaultStaticRanks())

	req, err := scheduler.Schedule(deficits, priorities, 200, colony.DefaultLoadoutTable(), colony.SlotFree)

	assert.Nil(t, req)
	var insufficient *colony.InsufficientEnergyError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, 250, insufficient.Required)
	assert.Equal(t, 200, insufficient.Available)
	assert.Equal(t, colony.RoleHarvester, insufficient.Role)
	assert.True(t, colony.IsDeferred(err))
}

func TestSchedule_NegativeBudgetCountsAsZero(t *testing.T) {
	scheduler := colony.NewSpawnScheduler()
	deficits := []colony.Deficit{{Role: colony.RoleHauler, Current: 0, Target: 2, Amount: 2}}
	priorities := colony.NewPriorityAssigner().Assign(deficits, colony.DefaultStaticRanks())

	req, err := scheduler.Schedule(deficits, priorities, -5, colony.DefaultLoadoutTable(), colony.SlotFree)

	assert.Nil(t, req)
	var insufficient *colony.InsufficientEnergyError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, 200, insufficient.Required)
	assert.Equal(t, 0, insufficient.Available)
}

func TestSchedule_UnconfiguredRole(t *testing.T) {
	scheduler := colony.NewSpawnScheduler()
	table := colony.MustNewLoadoutTable(map[colony.Role][]colony.LoadoutTier{
		colony.RoleHarvester: {{Threshold: 300, Parts: colony.Loadout{colony.PartWork, colony.PartCarry, colony.PartMove}}},
	})
	deficits := []colony.Deficit{{Role: colony.RoleRepairer, Current: 0, Target: 1, Amount: 1}}
	priorities := colony.NewPriorityAssigner().Assign(deficits, colony.DefaultStaticRanks())

	req, err := scheduler.Schedule(deficits, priorities, 5000, table, colony.SlotFree)

	assert.Nil(t, req)
	var unconfigured *colony.UnconfiguredRoleError
	require.True(t, errors.As(err, &unconfigured))
	assert.Equal(t, colony.RoleRepairer, unconfigured.Role)
	assert.False(t, colony.IsDeferred(err))
}

func TestSchedule_EmptyDeficitsIsNoOp(t *testing.T) {
	scheduler := colony.NewSpawnScheduler()

	req, err := scheduler.Schedule(nil, colony.Priorities{}, 1000, colony.DefaultLoadoutTable(), colony.SlotFree)

	assert.NoError(t, err)
	assert.Nil(t, req)
}

func TestSchedule_OccupiedSlot(t *testing.T) {
	scheduler := colony.NewSpawnScheduler()
	deficits := []colony.Deficit{{Role: colony.RoleHauler, Current: 0, Target: 1, Amount: 1}}

	req, err := scheduler.Schedule(deficits, colony.Priorities{}, 1000, colony.DefaultLoadoutTable(), colony.SlotOccupied)

	assert.Nil(t, req)
	assert.ErrorIs(t, err, colony.ErrProductionSlotOccupied)
	assert.True(t, colony.IsDeferred(err))
}

func TestSchedule_RequestDoesNotAliasTable(t *testing.T) {
	scheduler := colony.NewSpawnScheduler()
	table := colony.DefaultLoadoutTable()
	deficits := []colony.Deficit{{Role: colony.RoleHauler, Current: 0, Target: 1, Amount: 1}}
	priorities := colony.NewPriorityAssigner().Assign(deficits, colony.DefaultStaticRanks())

	first, err := scheduler.Schedule(deficits, priorities, 300, table, colony.SlotFree)
	require.NoError(t, err)
	first.Loadout[0] = colony.PartClaim

	second, err := scheduler.Schedule(deficits, priorities, 300, table, colony.SlotFree)
	require.NoError(t, err)
	assert.Equal(t, colony.PartCarry, second.Loadout[0])
}
