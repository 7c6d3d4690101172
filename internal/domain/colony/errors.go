package colony

import (
	"errors"
	"fmt"

	"github.com/andrescamacho/colony-go/internal/domain/shared"
)

// ErrProductionSlotOccupied is returned when scheduling is attempted while the
// producer is already busy.
var ErrProductionSlotOccupied = errors.New("production slot occupied")

// UnconfiguredRoleError reports a role without any loadout tier. It is a
// configuration error: the step is skipped, never defaulted to an empty body.
type UnconfiguredRoleError struct {
	*shared.DomainError
	Role Role
}

func NewUnconfiguredRoleError(role Role) *UnconfiguredRoleError {
	return &UnconfiguredRoleError{
		DomainError: shared.NewDomainError(fmt.Sprintf("no loadout configured for role %s", role)),
		Role:        role,
	}
}

// InsufficientEnergyError reports that the chosen loadout costs more than the
// budget. Production is deferred; the next step retries naturally.
type InsufficientEnergyError struct {
	*shared.DomainError
	Role      Role
	Required  int
	Available int
}

func NewInsufficientEnergyError(role Role, required, available int) *InsufficientEnergyError {
	return &InsufficientEnergyError{
		DomainError: shared.NewDomainError(fmt.Sprintf("insufficient energy for %s: need %d, have %d", role, required, available)),
		Role:        role,
		Required:    required,
		Available:   available,
	}
}

// IsDeferred reports whether err is a condition that resolves by itself on a
// later step rather than a failure.
func IsDeferred(err error) bool {
	var insufficient *InsufficientEnergyError
	return errors.As(err, &insufficient) || errors.Is(err, ErrProductionSlotOccupied)
}
