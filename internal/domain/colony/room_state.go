package colony

// RoomState is the per-step snapshot of a managed site. It is owned by the
// external world and only read here.
type RoomState struct {
	SiteID                     string
	DevelopmentLevel           int
	SourceCount                int
	EnergyAvailable            int
	EnergyCapacity             int
	HasOutstandingConstruction bool
	DamagedStructureCount      int

	// ConstructionSiteCount only feeds the builder suggestion of the needs report.
	ConstructionSiteCount int
}

// EnergyRatio returns energyAvailable/energyCapacity. ok is false when the
// capacity is not positive, in which case callers must take the
// non-scarcity path.
func (s RoomState) EnergyRatio() (ratio float64, ok bool) {
	if s.EnergyCapacity <= 0 {
		return 0, false
	}
	available := s.EnergyAvailable
	if available < 0 {
		available = 0
	}
	return float64(available) / float64(s.EnergyCapacity), true
}

// Normalized returns a copy with out-of-range inputs clamped.
func (s RoomState) Normalized() RoomState {
	out := s
	if out.DevelopmentLevel < 1 {
		out.DevelopmentLevel = 1
	}
	out.SourceCount = clampNonNegative(out.SourceCount)
	out.EnergyAvailable = clampNonNegative(out.EnergyAvailable)
	out.EnergyCapacity = clampNonNegative(out.EnergyCapacity)
	out.DamagedStructureCount = clampNonNegative(out.DamagedStructureCount)
	out.ConstructionSiteCount = clampNonNegative(out.ConstructionSiteCount)
	if out.ConstructionSiteCount > 0 {
		out.HasOutstandingConstruction = true
	}
	return out
}

func clampNonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
