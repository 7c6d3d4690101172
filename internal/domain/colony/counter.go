package colony

// Worker is one entry of the live worker registry. Role is the raw registry
// value so that roles unknown to this build can be skipped.
type Worker struct {
	Name   string
	Role   string
	SiteID string
}

// PopulationCounter tallies live workers by role for one site.
type PopulationCounter struct{}

// NewPopulationCounter creates a counter.
func NewPopulationCounter() *PopulationCounter {
	return &PopulationCounter{}
}

// Count returns the current composition of siteID. Workers of other sites and
// workers with unknown roles are ignored.
func (pc *PopulationCounter) Count(workers []Worker, siteID string) Composition {
	var c Composition
	for _, w := range workers {
		if w.SiteID != siteID {
			continue
		}
		role, err := ParseRole(w.Role)
		if err != nil {
			continue
		}
		c = c.With(role, c.Get(role)+1)
	}
	return c
}
