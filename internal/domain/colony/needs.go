package colony

const (
	suggestUpgraderRatio   = 0.9
	suggestUpgraderCeiling = 5
	suggestBuilderSites    = 10
	suggestBuilderCeiling  = 2
)

// Needs messages surfaced to operators.
const (
	WarningNoHarvesters       = "CRITICAL: no harvesters, energy production stopped"
	WarningHarvestersBelowSrc = "WARNING: not enough harvesters for all sources"
	SuggestMoreUpgraders      = "high energy available, consider more upgraders"
	SuggestMoreBuilders       = "many construction sites, consider more builders"
)

// NeedsReport is the human-facing summary of a site's population.
type NeedsReport struct {
	Target      Composition
	Current     Composition
	Deficits    []Deficit
	Warnings    []string
	Suggestions []string
}

// AnalyzeNeeds builds the operator report for a site. It carries no decision:
// scheduling never reads it.
func (a *DeficitAnalyzer) AnalyzeNeeds(state RoomState, target, current Composition) NeedsReport {
	s := state.Normalized()
	report := a.Analyze(target, current, s.SourceCount)

	needs := NeedsReport{
		Target:   target,
		Current:  current,
		Deficits: report.Deficits,
	}

	if report.ZeroPrimary {
		needs.Warnings = append(needs.Warnings, WarningNoHarvesters)
	}
	if report.PrimaryBelowSources {
		needs.Warnings = append(needs.Warnings, WarningHarvestersBelowSrc)
	}

	if ratio, ok := s.EnergyRatio(); ok && ratio > suggestUpgraderRatio &&
		current.Get(RoleUpgrader) < suggestUpgraderCeiling {
		needs.Suggestions = append(needs.Suggestions, SuggestMoreUpgraders)
	}
	if s.ConstructionSiteCount > suggestBuilderSites && current.Get(RoleBuilder) < suggestBuilderCeiling {
		needs.Suggestions = append(needs.Suggestions, SuggestMoreBuilders)
	}

	return needs
}
