package colony

import "math"

const (
	// DefaultScarcityRatio is the energy ratio below which non-essential roles are shed.
	DefaultScarcityRatio = 0.3
	// DefaultAbundanceRatio is the energy ratio above which optimization-tier
	// sites run extra upgraders.
	DefaultAbundanceRatio = 0.8
	// DefaultRepairTrigger is the damaged-structure count above which
	// growth-tier sites want a repairer.
	DefaultRepairTrigger = 5
	// MaxSurvivalHarvesters caps dual-purpose harvesters at level 1.
	MaxSurvivalHarvesters = 4
)

// Tier is the development band a site is planned for.
type Tier int

const (
	TierSurvival Tier = iota + 1
	TierTransition
	TierGrowth
	TierProduction
	TierOptimization
)

func (t Tier) String() string {
	switch t {
	case TierSurvival:
		return "survival"
	case TierTransition:
		return "transition"
	case TierGrowth:
		return "growth"
	case TierProduction:
		return "production"
	case TierOptimization:
		return "optimization"
	default:
		return "unknown"
	}
}

// TierForLevel maps a development level to its planning tier. Levels below 1
// are treated as level 1.
func TierForLevel(level int) Tier {
	switch {
	case level <= 1:
		return TierSurvival
	case level == 2:
		return TierTransition
	case level <= 4:
		return TierGrowth
	case level <= 6:
		return TierProduction
	default:
		return TierOptimization
	}
}

// PlannerPolicy holds the thresholds the planner branches on.
type PlannerPolicy struct {
	ScarcityRatio  float64
	AbundanceRatio float64
	RepairTrigger  int
}

// DefaultPlannerPolicy returns the stock thresholds.
func DefaultPlannerPolicy() PlannerPolicy {
	return PlannerPolicy{
		ScarcityRatio:  DefaultScarcityRatio,
		AbundanceRatio: DefaultAbundanceRatio,
		RepairTrigger:  DefaultRepairTrigger,
	}
}

// PlanNotes explains how a target composition was derived.
type PlanNotes struct {
	Tier Tier
	// EnergyRatio is meaningful only when RatioKnown is true.
	EnergyRatio float64
	RatioKnown  bool
	// ScarcityApplied is set when the low-energy override reduced the target.
	ScarcityApplied bool
	// TierTarget is the composition before the scarcity override.
	TierTarget Composition
}

// PopulationPlanner computes the desired worker composition for a site.
type PopulationPlanner struct {
	policy PlannerPolicy
}

// NewPopulationPlanner creates a planner. Zero-valued policy fields fall back
// to the defaults.
func NewPopulationPlanner(policy PlannerPolicy) *PopulationPlanner {
	defaults := DefaultPlannerPolicy()
	if policy.ScarcityRatio <= 0 {
		policy.ScarcityRatio = defaults.ScarcityRatio
	}
	if policy.AbundanceRatio <= 0 {
		policy.AbundanceRatio = defaults.AbundanceRatio
	}
	if policy.RepairTrigger <= 0 {
		policy.RepairTrigger = defaults.RepairTrigger
	}
	return &PopulationPlanner{policy: policy}
}

// Policy returns the thresholds in effect.
func (p *PopulationPlanner) Policy() PlannerPolicy {
	return p.policy
}

// Plan returns the target composition for state. It never fails.
func (p *PopulationPlanner) Plan(state RoomState) Composition {
	target, _ := p.PlanWithNotes(state)
	return target
}

// PlanWithNotes returns the target composition together with the decisions
// that produced it.
//
// Two energy checks are applied independently: the optimization tier picks
// its upgrader count from the abundance threshold, then the scarcity override
// may halve whatever the tier produced. Both read the same ratio.
func (p *PopulationPlanner) PlanWithNotes(state RoomState) (Composition, PlanNotes) {
	s := state.Normalized()
	ratio, ratioKnown := s.EnergyRatio()

	notes := PlanNotes{
		Tier:        TierForLevel(s.DevelopmentLevel),
		EnergyRatio: ratio,
		RatioKnown:  ratioKnown,
	}

	target := p.tierTarget(notes.Tier, s, ratio, ratioKnown)
	notes.TierTarget = target

	if ratioKnown && ratio < p.policy.ScarcityRatio {
		upgraders := int(math.Floor(float64(target.Get(RoleUpgrader)) / 2))
		if upgraders < 1 {
			upgraders = 1
		}
		target = target.With(RoleUpgrader, upgraders)

		builders := 0
		if s.HasOutstandingConstruction {
			builders = 1
		}
		target = target.With(RoleBuilder, builders)
		notes.ScarcityApplied = true
	}

	return target, notes
}

func (p *PopulationPlanner) tierTarget(tier Tier, s RoomState, ratio float64, ratioKnown bool) Composition {
	sources := s.SourceCount
	var c Composition

	switch tier {
	case TierSurvival:
		c = c.With(RoleHarvester, minInt(2*sources, MaxSurvivalHarvesters))
		c = c.With(RoleUpgrader, 1)

	case TierTransition:
		c = c.With(RoleHarvester, sources)
		c = c.With(RoleHauler, maxInt(2, sources))
		c = c.With(RoleUpgrader, 2)
		if s.HasOutstandingConstruction {
			c = c.With(RoleBuilder, 1)
		}

	case TierGrowth:
		c = c.With(RoleHarvester, sources)
		c = c.With(RoleHauler, maxInt(3, sources+1))
		c = c.With(RoleUpgrader, 2)
		c = c.With(RoleBuilder, buildersFor(s, 2))
		if s.DamagedStructureCount > p.policy.RepairTrigger {
			c = c.With(RoleRepairer, 1)
		}

	case TierProduction:
		c = c.With(RoleHarvester, sources)
		c = c.With(RoleHauler, maxInt(4, sources+2))
		c = c.With(RoleUpgrader, 3)
		c = c.With(RoleBuilder, buildersFor(s, 2))
		c = c.With(RoleRepairer, 1)

	case TierOptimization:
		c = c.With(RoleHarvester, sources)
		c = c.With(RoleHauler, maxInt(5, sources+3))
		upgraders := 3
		if ratioKnown && ratio > p.policy.AbundanceRatio {
			upgraders = 5
		}
		c = c.With(RoleUpgrader, upgraders)
		c = c.With(RoleBuilder, buildersFor(s, 3))
		c = c.With(RoleRepairer, 2)
	}

	return c
}

// buildersFor returns busy when construction is outstanding, otherwise one
// builder on standby.
func buildersFor(s RoomState, busy int) int {
	if s.HasOutstandingConstruction {
		return busy
	}
	return 1
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
