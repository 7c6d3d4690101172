package colony

import "sort"

// SpawnScheduler picks at most one role to produce and sizes its loadout.
type SpawnScheduler struct{}

// NewSpawnScheduler creates a scheduler.
func NewSpawnScheduler() *SpawnScheduler {
	return &SpawnScheduler{}
}

// SelectRole returns the most urgent deficit: lowest priority first, then the
// largest amount, then role order. ok is false for an empty list.
func (s *SpawnScheduler) SelectRole(deficits []Deficit, priorities Priorities) (Deficit, bool) {
	if len(deficits) == 0 {
		return Deficit{}, false
	}

	ranked := make([]Deficit, len(deficits))
	copy(ranked, deficits)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if cmp := priorities.Get(a.Role).Compare(priorities.Get(b.Role)); cmp != 0 {
			return cmp < 0
		}
		if a.Amount != b.Amount {
			return a.Amount > b.Amount
		}
		return a.Role < b.Role
	})

	return ranked[0], true
}

// Schedule returns the production request for this step.
//
// It returns (nil, nil) when nothing is in deficit. Every other non-request
// result is an error the caller logs and moves past:
// ErrProductionSlotOccupied, *UnconfiguredRoleError and
// *InsufficientEnergyError.
func (s *SpawnScheduler) Schedule(
	deficits []Deficit,
	priorities Priorities,
	budget int,
	table *LoadoutTable,
	slot ProductionSlot,
) (*ProductionRequest, error) {
	if !slot.Free() {
		return nil, ErrProductionSlotOccupied
	}
	if budget < 0 {
		budget = 0
	}

	selected, ok := s.SelectRole(deficits, priorities)
	if !ok {
		return nil, nil
	}

	loadout, err := table.Select(selected.Role, budget)
	if err != nil {
		return nil, err
	}

	cost := loadout.Cost()
	if cost > budget {
		return nil, NewInsufficientEnergyError(selected.Role, cost, budget)
	}

	return &ProductionRequest{
		Role:    selected.Role,
		Loadout: loadout,
		Cost:    cost,
	}, nil
}
