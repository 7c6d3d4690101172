// Package colony plans the worker population of a site and schedules one
// production per step under an energy budget.
package colony

import (
	"fmt"
	"strings"
)

// Role identifies a worker specialization. The set of roles is closed.
type Role int

const (
	// RoleHarvester is the primary-resource worker. At development level 1 it
	// both gathers and delivers energy.
	RoleHarvester Role = iota
	// RoleHauler moves energy from sources to consumers.
	RoleHauler
	// RoleUpgrader works the advancement task (controller upgrades).
	RoleUpgrader
	// RoleBuilder works outstanding construction.
	RoleBuilder
	// RoleRepairer maintains damaged structures.
	RoleRepairer

	roleCount
)

var roleNames = [roleCount]string{
	RoleHarvester: "harvester",
	RoleHauler:    "hauler",
	RoleUpgrader:  "upgrader",
	RoleBuilder:   "builder",
	RoleRepairer:  "repairer",
}

// AllRoles returns every known role in rank order.
func AllRoles() []Role {
	roles := make([]Role, 0, roleCount)
	for r := Role(0); r < roleCount; r++ {
		roles = append(roles, r)
	}
	return roles
}

// String returns the registry name of the role.
func (r Role) String() string {
	if !r.Valid() {
		return fmt.Sprintf("role(%d)", int(r))
	}
	return roleNames[r]
}

// Valid reports whether r belongs to the closed role set.
func (r Role) Valid() bool {
	return r >= 0 && r < roleCount
}

// ParseRole maps a registry name to a Role.
func ParseRole(name string) (Role, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for r, n := range roleNames {
		if n == normalized {
			return Role(r), nil
		}
	}
	return 0, fmt.Errorf("unknown role: %q", name)
}
