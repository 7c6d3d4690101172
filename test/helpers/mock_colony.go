package helpers

import (
	"context"
	"fmt"
	"sync"

	"github.com/andrescamacho/colony-go/internal/domain/colony"
)

// MockColony is an in-memory site world implementing RoomStateReader,
// WorkerRegistry and Producer
type MockColony struct {
	mu sync.RWMutex

	states  map[string]colony.RoomState // siteID -> snapshot
	budgets map[string]int              // siteID -> re-read energy, overrides the snapshot
	busy    map[string]bool             // siteID -> producer busy
	workers []colony.Worker

	// Outcome returned by Produce; defaults to accepted
	Outcome colony.ProductionOutcome

	// Error injection
	ReadErr    error
	ProduceErr error

	// Call tracking
	Produced     []colony.ProductionRequest
	EnergyReads  int
	StateReads   int
	RegistryHits int
}

// NewMockColony creates an empty mock world
func NewMockColony() *MockColony {
	return &MockColony{
		states:  make(map[string]colony.RoomState),
		budgets: make(map[string]int),
		busy:    make(map[string]bool),
		Outcome: colony.OutcomeAccepted,
	}
}

// SetState stores the snapshot of a site
func (m *MockColony) SetState(state colony.RoomState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[state.SiteID] = state
}

// SetBudget makes the energy re-read return a value different from the snapshot
func (m *MockColony) SetBudget(siteID string, energy int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.budgets[siteID] = energy
}

// SetBusy marks the producer of siteID busy or free
func (m *MockColony) SetBusy(siteID string, busy bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.busy[siteID] = busy
}

// AddWorkers registers count live workers of role at siteID
func (m *MockColony) AddWorkers(siteID, role string, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := 0; i < count; i++ {
		m.workers = append(m.workers, colony.Worker{
			Name:   fmt.Sprintf("%s_%d", role, len(m.workers)),
			Role:   role,
			SiteID: siteID,
		})
	}
}

// ClearWorkers empties the registry
func (m *MockColony) ClearWorkers() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.workers = nil
}

// ReadState implements colony.RoomStateReader
func (m *MockColony) ReadState(ctx context.Context, siteID string) (colony.RoomState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StateReads++
	if m.ReadErr != nil {
		return colony.RoomState{}, m.ReadErr
	}
	state, ok := m.states[siteID]
	if !ok {
		return colony.RoomState{}, fmt.Errorf("site %s not found", siteID)
	}
	return state, nil
}

// EnergyAvailable implements colony.RoomStateReader
func (m *MockColony) EnergyAvailable(ctx context.Context, siteID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EnergyReads++
	if m.ReadErr != nil {
		return 0, m.ReadErr
	}
	if energy, ok := m.budgets[siteID]; ok {
		return energy, nil
	}
	return m.states[siteID].EnergyAvailable, nil
}

// ListWorkers implements colony.WorkerRegistry
func (m *MockColony) ListWorkers(ctx context.Context) ([]colony.Worker, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RegistryHits++
	out := make([]colony.Worker, len(m.workers))
	copy(out, m.workers)
	return out, nil
}

// Slot implements colony.Producer
func (m *MockColony) Slot(ctx context.Context, siteID string) (colony.ProductionSlot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.busy[siteID] {
		return colony.SlotOccupied, nil
	}
	return colony.SlotFree, nil
}

// Produce implements colony.Producer
func (m *MockColony) Produce(ctx context.Context, request colony.ProductionRequest) (colony.ProductionOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ProduceErr != nil {
		return "", m.ProduceErr
	}
	m.Produced = append(m.Produced, request)
	return m.Outcome, nil
}

// ProducedCount returns how many requests reached the producer
func (m *MockColony) ProducedCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.Produced)
}
