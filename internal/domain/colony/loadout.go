package colony

import (
	"fmt"
	"sort"
	"strings"
)

// PartKind is one capability part of a worker body.
type PartKind string

const (
	PartWork         PartKind = "work"
	PartCarry        PartKind = "carry"
	PartMove         PartKind = "move"
	PartAttack       PartKind = "attack"
	PartRangedAttack PartKind = "ranged_attack"
	PartHeal         PartKind = "heal"
	PartClaim        PartKind = "claim"
	PartTough        PartKind = "tough"
)

// TicksPerPart is how long the producer takes per part.
const TicksPerPart = 3

var partCosts = map[PartKind]int{
	PartWork:         100,
	PartCarry:        50,
	PartMove:         50,
	PartAttack:       80,
	PartRangedAttack: 150,
	PartHeal:         250,
	PartClaim:        600,
	PartTough:        10,
}

// ParsePartKind maps a part name to a PartKind.
func ParsePartKind(name string) (PartKind, error) {
	kind := PartKind(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := partCosts[kind]; !ok {
		return "", fmt.Errorf("unknown part kind: %q", name)
	}
	return kind, nil
}

// Cost returns the energy cost of one part.
func (k PartKind) Cost() int {
	return partCosts[k]
}

// Loadout is an ordered sequence of parts.
type Loadout []PartKind

// Cost returns the total energy cost of the loadout.
func (l Loadout) Cost() int {
	total := 0
	for _, part := range l {
		total += part.Cost()
	}
	return total
}

// Count returns how many parts of kind the loadout carries.
func (l Loadout) Count(kind PartKind) int {
	n := 0
	for _, part := range l {
		if part == kind {
			n++
		}
	}
	return n
}

// SpawnTicks returns the production time of the loadout.
func (l Loadout) SpawnTicks() int {
	return len(l) * TicksPerPart
}

func (l Loadout) String() string {
	names := make([]string, len(l))
	for i, part := range l {
		names[i] = string(part)
	}
	return "[" + strings.Join(names, ",") + "]"
}

// LoadoutTier is the best loadout affordable at or above Threshold energy.
type LoadoutTier struct {
	Threshold int
	Parts     Loadout
}

// LoadoutTable holds the tiers of every configured role, each sorted by
// descending threshold.
type LoadoutTable struct {
	tiers map[Role][]LoadoutTier
}

// NewLoadoutTable validates and sorts the tiers. Roles may be left out; they
// are reported as unconfigured at scheduling time.
func NewLoadoutTable(tiers map[Role][]LoadoutTier) (*LoadoutTable, error) {
	table := &LoadoutTable{tiers: make(map[Role][]LoadoutTier, len(tiers))}

	for role, roleTiers := range tiers {
		if !role.Valid() {
			return nil, fmt.Errorf("loadout table: invalid role %d", int(role))
		}
		if len(roleTiers) == 0 {
			continue
		}

		sorted := make([]LoadoutTier, 0, len(roleTiers))
		seen := make(map[int]bool, len(roleTiers))
		for _, tier := range roleTiers {
			if tier.Threshold <= 0 {
				return nil, fmt.Errorf("loadout table: %s threshold must be positive, got %d", role, tier.Threshold)
			}
			if seen[tier.Threshold] {
				return nil, fmt.Errorf("loadout table: %s has duplicate threshold %d", role, tier.Threshold)
			}
			seen[tier.Threshold] = true
			if len(tier.Parts) == 0 {
				return nil, fmt.Errorf("loadout table: %s tier %d has no parts", role, tier.Threshold)
			}
			for _, part := range tier.Parts {
				if _, ok := partCosts[part]; !ok {
					return nil, fmt.Errorf("loadout table: %s tier %d has unknown part %q", role, tier.Threshold, part)
				}
			}
			parts := make(Loadout, len(tier.Parts))
			copy(parts, tier.Parts)
			sorted = append(sorted, LoadoutTier{Threshold: tier.Threshold, Parts: parts})
		}

		sort.Slice(sorted, func(i, j int) bool {
			return sorted[i].Threshold > sorted[j].Threshold
		})
		table.tiers[role] = sorted
	}

	return table, nil
}

// MustNewLoadoutTable panics on an invalid table. Intended for static tables.
func MustNewLoadoutTable(tiers map[Role][]LoadoutTier) *LoadoutTable {
	table, err := NewLoadoutTable(tiers)
	if err != nil {
		panic(err)
	}
	return table
}

// Has reports whether role has at least one tier.
func (t *LoadoutTable) Has(role Role) bool {
	return t != nil && len(t.tiers[role]) > 0
}

// Tiers returns a copy of the tiers of role, highest threshold first.
func (t *LoadoutTable) Tiers(role Role) []LoadoutTier {
	if !t.Has(role) {
		return nil
	}
	out := make([]LoadoutTier, len(t.tiers[role]))
	copy(out, t.tiers[role])
	return out
}

// Select returns the loadout of the highest tier whose threshold fits budget,
// or the cheapest tier when none does. The returned loadout may still cost
// more than budget.
func (t *LoadoutTable) Select(role Role, budget int) (Loadout, error) {
	if !t.Has(role) {
		return nil, NewUnconfiguredRoleError(role)
	}

	tiers := t.tiers[role]
	chosen := tiers[len(tiers)-1]
	for _, tier := range tiers {
		if tier.Threshold <= budget {
			chosen = tier
			break
		}
	}

	parts := make(Loadout, len(chosen.Parts))
	copy(parts, chosen.Parts)
	return parts, nil
}

// DefaultLoadoutTable returns the stock loadouts.
func DefaultLoadoutTable() *LoadoutTable {
	w, c, m := PartWork, PartCarry, PartMove
	return MustNewLoadoutTable(map[Role][]LoadoutTier{
		RoleHarvester: {
			{Threshold: 300, Parts: Loadout{w, c, m, m}},
			{Threshold: 550, Parts: Loadout{w, w, c, c, m, m, m}},
			{Threshold: 800, Parts: Loadout{w, w, w, c, c, m, m, m}},
			{Threshold: 1200, Parts: Loadout{w, w, w, w, w, w, m, m}},
		},
		RoleHauler: {
			{Threshold: 300, Parts: Loadout{c, c, m, m}},
			{Threshold: 450, Parts: Loadout{c, c, c, m, m, m}},
			{Threshold: 600, Parts: Loadout{c, c, c, c, m, m, m, m}},
		},
		RoleUpgrader: {
			{Threshold: 300, Parts: Loadout{w, c, m, m}},
			{Threshold: 550, Parts: Loadout{w, w, w, c, m, m}},
			{Threshold: 800, Parts: Loadout{w, w, w, w, c, c, m, m, m}},
		},
		RoleBuilder: {
			{Threshold: 300, Parts: Loadout{w, c, m, m}},
			{Threshold: 550, Parts: Loadout{w, w, c, c, m, m, m}},
			{Threshold: 800, Parts: Loadout{w, w, w, c, c, c, m, m, m}},
		},
		RoleRepairer: {
			{Threshold: 300, Parts: Loadout{w, c, m, m}},
			{Threshold: 550, Parts: Loadout{w, w, c, c, m, m, m}},
			{Threshold: 800, Parts: Loadout{w, w, w, c, c, c, m, m, m}},
		},
	})
}
