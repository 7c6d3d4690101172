package colony

import "fmt"

// ProductionSlot is the capability token of the single producer. The
// scheduler only reads it.
type ProductionSlot int

const (
	SlotFree ProductionSlot = iota
	SlotOccupied
)

func (s ProductionSlot) String() string {
	if s == SlotOccupied {
		return "occupied"
	}
	return "free"
}

// Free reports whether a production can start.
func (s ProductionSlot) Free() bool {
	return s == SlotFree
}

// ProductionRequest asks the producer for one worker. It has no identity and
// is never retried: the next step recomputes from scratch.
type ProductionRequest struct {
	SiteID  string
	Role    Role
	Loadout Loadout
	Cost    int
}

// WorkerName returns the conventional name of the worker produced at tick.
func (r ProductionRequest) WorkerName(tick uint64) string {
	return fmt.Sprintf("%s_%d", r.Role, tick)
}

// ProductionOutcome is the producer's answer to a request.
type ProductionOutcome string

const (
	OutcomeAccepted                      ProductionOutcome = "accepted"
	OutcomeRejectedInsufficientResources ProductionOutcome = "rejected_insufficient_resources"
	OutcomeRejectedBusy                  ProductionOutcome = "rejected_busy"
	OutcomeRejectedInvalid               ProductionOutcome = "rejected_invalid"
)

// Succeeded reports whether the producer accepted the request.
func (o ProductionOutcome) Succeeded() bool {
	return o == OutcomeAccepted
}
