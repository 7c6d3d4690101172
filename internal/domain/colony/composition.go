package colony

import (
	"fmt"
	"strings"
)

// Composition maps every role to a non-negative worker count. It is a plain
// value: assignment copies it.
type Composition struct {
	counts [roleCount]int
}

// NewComposition builds a composition from a role map. Missing roles are 0,
// negative counts are clamped to 0.
func NewComposition(counts map[Role]int) Composition {
	var c Composition
	for role, n := range counts {
		c = c.With(role, n)
	}
	return c
}

// Get returns the count for role, or 0 for an unknown role.
func (c Composition) Get(role Role) int {
	if !role.Valid() {
		return 0
	}
	return c.counts[role]
}

// With returns a copy of c with role set to n.
func (c Composition) With(role Role, n int) Composition {
	if !role.Valid() {
		return c
	}
	if n < 0 {
		n = 0
	}
	c.counts[role] = n
	return c
}

// Total returns the sum over all roles.
func (c Composition) Total() int {
	total := 0
	for _, n := range c.counts {
		total += n
	}
	return total
}

// AsMap returns the composition keyed by role name, with every role present.
func (c Composition) AsMap() map[string]int {
	out := make(map[string]int, roleCount)
	for _, role := range AllRoles() {
		out[role.String()] = c.counts[role]
	}
	return out
}

func (c Composition) String() string {
	parts := make([]string, 0, roleCount)
	for _, role := range AllRoles() {
		parts = append(parts, fmt.Sprintf("%s:%d", role, c.counts[role]))
	}
	return "{" + strings.Join(parts, " ") + "}"
}
