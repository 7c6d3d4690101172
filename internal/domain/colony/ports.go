package colony

import "context"

// RoomStateReader provides the per-step snapshot of a site.
type RoomStateReader interface {
	// ReadState returns the current snapshot of siteID.
	ReadState(ctx context.Context, siteID string) (RoomState, error)

	// EnergyAvailable re-reads the budget at scheduling time. It is
	// authoritative over the snapshot value.
	EnergyAvailable(ctx context.Context, siteID string) (int, error)
}

// WorkerRegistry lists live workers. This subsystem never mutates it.
type WorkerRegistry interface {
	ListWorkers(ctx context.Context) ([]Worker, error)
}

// Producer is the single production facility of a site.
type Producer interface {
	// Slot returns whether a production can start at siteID.
	Slot(ctx context.Context, siteID string) (ProductionSlot, error)

	// Produce hands a request over. The error is reserved for transport
	// failures; refusals are reported through the outcome.
	Produce(ctx context.Context, request ProductionRequest) (ProductionOutcome, error)
}
