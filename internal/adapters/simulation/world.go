// Package simulation is an in-process stand-in for the game world: one site,
// its energy economy, the live workers and a single spawner.
package simulation

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/google/uuid"
	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/andrescamacho/colony-go/internal/domain/colony"
	"github.com/andrescamacho/colony-go/internal/domain/shared"
)

// SpawnRegenFloor is the energy level below which the spawner regenerates one
// unit per tick on its own.
const SpawnRegenFloor = 300

// Options configure a World.
type Options struct {
	Seed           int64
	IncomePerWork  float64
	WorkerLifetime int
}

// Worker is a simulated worker.
type Worker struct {
	ID        uuid.UUID
	Name      string
	Role      colony.Role
	SiteID    string
	Body      colony.Loadout
	BornTick  uint64
	DiesAfter uint64
	Working   bool
}

// World implements colony.RoomStateReader, colony.WorkerRegistry and
// colony.Producer. It is safe for concurrent use.
type World struct {
	mu sync.Mutex

	opts   Options
	noise  opensimplex.Noise
	tick   uint64
	site   colony.RoomState
	energy float64

	workers   map[string]*Worker
	busyUntil uint64
}

// NewWorld creates a world around one site.
func NewWorld(site colony.RoomState, opts Options) *World {
	if opts.IncomePerWork <= 0 {
		opts.IncomePerWork = 2
	}
	if opts.WorkerLifetime <= 0 {
		opts.WorkerLifetime = 1500
	}
	site = site.Normalized()
	return &World{
		opts:    opts,
		noise:   opensimplex.NewNormalized(opts.Seed),
		site:    site,
		energy:  float64(site.EnergyAvailable),
		workers: make(map[string]*Worker),
	}
}

// Tick returns the current tick.
func (w *World) Tick() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.tick
}

// Advance moves the world one tick: workers age out, then harvesters bring in
// energy scaled by a smooth noise factor between 0.5 and 1.5.
func (w *World) Advance() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.tick++

	for name, worker := range w.workers {
		if w.tick > worker.DiesAfter {
			delete(w.workers, name)
		}
	}

	work := 0
	harvesters := 0
	for _, worker := range w.workers {
		if worker.Role == colony.RoleHarvester && w.tick >= worker.BornTick+uint64(worker.Body.SpawnTicks()) {
			harvesters++
			work += worker.Body.Count(colony.PartWork)
		}
	}
	// Harvesters beyond two per source find no free access point
	if limit := 2 * w.site.SourceCount; harvesters > limit && harvesters > 0 {
		work = work * limit / harvesters
	}

	factor := 0.5 + w.noise.Eval2(float64(w.tick)*0.05, float64(w.opts.Seed%1000))
	income := float64(work) * w.opts.IncomePerWork * factor
	// An idle spawner trickles energy back up to the regen floor
	if w.energy < SpawnRegenFloor {
		income++
	}
	w.energy = math.Min(float64(w.site.EnergyCapacity), w.energy+income)
}

// Workers returns a snapshot of the live workers, sorted by name.
func (w *World) Workers() []Worker {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]Worker, 0, len(w.workers))
	for _, worker := range w.workers {
		out = append(out, *worker)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// AddWorker places a worker directly, bypassing the spawner.
func (w *World) AddWorker(role colony.Role, body colony.Loadout) Worker {
	w.mu.Lock()
	defer w.mu.Unlock()
	return *w.addLocked(role, body)
}

func (w *World) addLocked(role colony.Role, body colony.Loadout) *Worker {
	name := fmt.Sprintf("%s_%d", role, w.tick)
	for i := 1; w.workers[name] != nil; i++ {
		name = fmt.Sprintf("%s_%d_%d", role, w.tick, i)
	}
	worker := &Worker{
		ID:        uuid.New(),
		Name:      name,
		Role:      role,
		SiteID:    w.site.SiteID,
		Body:      body,
		BornTick:  w.tick,
		DiesAfter: w.tick + uint64(w.opts.WorkerLifetime),
	}
	w.workers[name] = worker
	return worker
}

// SetSite replaces the site conditions, keeping the current energy.
func (w *World) SetSite(site colony.RoomState) {
	w.mu.Lock()
	defer w.mu.Unlock()
	site = site.Normalized()
	site.EnergyAvailable = int(w.energy)
	w.site = site
}

// ReadState implements colony.RoomStateReader.
func (w *World) ReadState(ctx context.Context, siteID string) (colony.RoomState, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if siteID != w.site.SiteID {
		return colony.RoomState{}, shared.NewNotFoundError("site", siteID)
	}
	state := w.site
	state.EnergyAvailable = int(w.energy)
	return state, nil
}

// EnergyAvailable implements colony.RoomStateReader.
func (w *World) EnergyAvailable(ctx context.Context, siteID string) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if siteID != w.site.SiteID {
		return 0, shared.NewNotFoundError("site", siteID)
	}
	return int(w.energy), nil
}

// ListWorkers implements colony.WorkerRegistry.
func (w *World) ListWorkers(ctx context.Context) ([]colony.Worker, error) {
	live := w.Workers()
	out := make([]colony.Worker, len(live))
	for i, worker := range live {
		out[i] = colony.Worker{Name: worker.Name, Role: worker.Role.String(), SiteID: worker.SiteID}
	}
	return out, nil
}

// Slot implements colony.Producer. The spawner is busy while a body is
// being assembled.
func (w *World) Slot(ctx context.Context, siteID string) (colony.ProductionSlot, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if siteID != w.site.SiteID {
		return colony.SlotOccupied, shared.NewNotFoundError("site", siteID)
	}
	if w.tick < w.busyUntil {
		return colony.SlotOccupied, nil
	}
	return colony.SlotFree, nil
}

// Produce implements colony.Producer. Refusals are outcomes, never errors.
func (w *World) Produce(ctx context.Context, request colony.ProductionRequest) (colony.ProductionOutcome, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch {
	case request.SiteID != w.site.SiteID || !request.Role.Valid() || len(request.Loadout) == 0:
		return colony.OutcomeRejectedInvalid, nil
	case w.tick < w.busyUntil:
		return colony.OutcomeRejectedBusy, nil
	case float64(request.Loadout.Cost()) > w.energy:
		return colony.OutcomeRejectedInsufficientResources, nil
	}

	body := make(colony.Loadout, len(request.Loadout))
	copy(body, request.Loadout)

	w.energy -= float64(body.Cost())
	w.addLocked(request.Role, body)
	w.busyUntil = w.tick + uint64(body.SpawnTicks())

	return colony.OutcomeAccepted, nil
}
