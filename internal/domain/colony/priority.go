package colony

import "fmt"

// PriorityKind tags a Priority. Declaration order is urgency order.
type PriorityKind int

const (
	// PriorityCriticalZero marks total production stoppage: no harvester alive.
	PriorityCriticalZero PriorityKind = iota
	// PriorityCriticalLow marks imminent stoppage: a single harvester left.
	PriorityCriticalLow
	// PriorityStatic is the configured rank of a role.
	PriorityStatic
)

// Priority is the urgency of producing a role. Critical variants always
// outrank every static rank regardless of the configured values.
type Priority struct {
	kind PriorityKind
	rank int
}

// StaticPriority returns a static-rank priority. Lower rank is more urgent.
func StaticPriority(rank int) Priority {
	return Priority{kind: PriorityStatic, rank: rank}
}

// CriticalZeroPriority returns the most urgent priority.
func CriticalZeroPriority() Priority {
	return Priority{kind: PriorityCriticalZero}
}

// CriticalLowPriority returns the second most urgent priority.
func CriticalLowPriority() Priority {
	return Priority{kind: PriorityCriticalLow}
}

// Kind returns the variant tag.
func (p Priority) Kind() PriorityKind { return p.kind }

// Rank returns the static rank; it is 0 for critical variants.
func (p Priority) Rank() int { return p.rank }

// Compare returns -1 when p is more urgent than o, 1 when less, 0 when equal.
func (p Priority) Compare(o Priority) int {
	if p.kind != o.kind {
		if p.kind < o.kind {
			return -1
		}
		return 1
	}
	if p.kind != PriorityStatic || p.rank == o.rank {
		return 0
	}
	if p.rank < o.rank {
		return -1
	}
	return 1
}

// MoreUrgentThan reports whether p strictly outranks o.
func (p Priority) MoreUrgentThan(o Priority) bool {
	return p.Compare(o) < 0
}

// Score is the numeric form used in logs and metrics: 0 for CriticalZero,
// 0.5 for CriticalLow, the rank otherwise. Ordering decisions use Compare.
func (p Priority) Score() float64 {
	switch p.kind {
	case PriorityCriticalZero:
		return 0
	case PriorityCriticalLow:
		return 0.5
	default:
		return float64(p.rank)
	}
}

func (p Priority) String() string {
	switch p.kind {
	case PriorityCriticalZero:
		return "critical-zero"
	case PriorityCriticalLow:
		return "critical-low"
	default:
		return fmt.Sprintf("static(%d)", p.rank)
	}
}

// StaticRanks is the default urgency order of roles.
type StaticRanks struct {
	ranks [roleCount]int
}

// DefaultStaticRanks ranks harvester > hauler > upgrader > builder > repairer.
func DefaultStaticRanks() StaticRanks {
	var s StaticRanks
	s.ranks[RoleHarvester] = 1
	s.ranks[RoleHauler] = 2
	s.ranks[RoleUpgrader] = 3
	s.ranks[RoleBuilder] = 4
	s.ranks[RoleRepairer] = 5
	return s
}

// NewStaticRanks builds ranks from a role map. Roles missing from the map
// keep their default rank.
func NewStaticRanks(ranks map[Role]int) StaticRanks {
	s := DefaultStaticRanks()
	for role, rank := range ranks {
		if role.Valid() {
			s.ranks[role] = rank
		}
	}
	return s
}

// Rank returns the rank of role.
func (s StaticRanks) Rank(role Role) int {
	if !role.Valid() {
		return 0
	}
	return s.ranks[role]
}

// Priorities holds one priority per role.
type Priorities struct {
	byRole [roleCount]Priority
}

// Get returns the priority of role.
func (p Priorities) Get(role Role) Priority {
	if !role.Valid() {
		return StaticPriority(0)
	}
	return p.byRole[role]
}

// AsScores returns the numeric scores keyed by role name.
func (p Priorities) AsScores() map[string]float64 {
	out := make(map[string]float64, roleCount)
	for _, role := range AllRoles() {
		out[role.String()] = p.byRole[role].Score()
	}
	return out
}

// PriorityAssigner derives per-role urgency from the deficit list.
type PriorityAssigner struct{}

// NewPriorityAssigner creates an assigner.
func NewPriorityAssigner() *PriorityAssigner {
	return &PriorityAssigner{}
}

// Assign gives every role its static rank, then escalates the harvester when
// it is in deficit with zero or one alive.
func (a *PriorityAssigner) Assign(deficits []Deficit, ranks StaticRanks) Priorities {
	var out Priorities
	for _, role := range AllRoles() {
		out.byRole[role] = StaticPriority(ranks.Rank(role))
	}

	for _, d := range deficits {
		if d.Role != RoleHarvester {
			continue
		}
		switch d.Current {
		case 0:
			out.byRole[d.Role] = CriticalZeroPriority()
		case 1:
			out.byRole[d.Role] = CriticalLowPriority()
		}
	}

	return out
}
