package colony

// Deficit is a role whose current count is below target.
type Deficit struct {
	Role    Role
	Current int
	Target  int
	Amount  int
}

// DeficitReport is the output of one comparison of target against current.
type DeficitReport struct {
	// Deficits holds one entry per role with a positive gap, in role order.
	// Consumers must not rely on that order.
	Deficits []Deficit

	// ZeroPrimary is set when no harvester is alive: energy production stopped.
	ZeroPrimary bool
	// PrimaryBelowSources is set when some source has no harvester.
	PrimaryBelowSources bool
}

// HasDeficits reports whether any role is under target.
func (r DeficitReport) HasDeficits() bool {
	return len(r.Deficits) > 0
}

// Find returns the deficit for role, if any.
func (r DeficitReport) Find(role Role) (Deficit, bool) {
	for _, d := range r.Deficits {
		if d.Role == role {
			return d, true
		}
	}
	return Deficit{}, false
}

// DeficitAnalyzer compares target and current compositions.
type DeficitAnalyzer struct{}

// NewDeficitAnalyzer creates an analyzer.
func NewDeficitAnalyzer() *DeficitAnalyzer {
	return &DeficitAnalyzer{}
}

// Analyze returns the deficits of current against target. sourceCount feeds
// the PrimaryBelowSources signal.
func (a *DeficitAnalyzer) Analyze(target, current Composition, sourceCount int) DeficitReport {
	report := DeficitReport{}

	for _, role := range AllRoles() {
		t, c := target.Get(role), current.Get(role)
		if t > c {
			report.Deficits = append(report.Deficits, Deficit{
				Role:    role,
				Current: c,
				Target:  t,
				Amount:  t - c,
			})
		}
	}

	harvesters := current.Get(RoleHarvester)
	report.ZeroPrimary = harvesters == 0
	report.PrimaryBelowSources = harvesters < sourceCount

	return report
}
