package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// SpawnMetricsCollector handles population and scheduling metrics
type SpawnMetricsCollector struct {
	population      *prometheus.GaugeVec
	deficit         *prometheus.GaugeVec
	criticalSignals *prometheus.GaugeVec
	schedulingTotal *prometheus.CounterVec
	productionCost  *prometheus.HistogramVec
}

// NewSpawnMetricsCollector creates a new spawn metrics collector
func NewSpawnMetricsCollector() *SpawnMetricsCollector {
	return &SpawnMetricsCollector{
		population: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "population",
				Help:      "Worker count per role, for the target and current compositions",
			},
			[]string{"site", "kind", "role"},
		),

		deficit: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "deficit",
				Help:      "Workers missing per role",
			},
			[]string{"site", "role"},
		),

		criticalSignals: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "critical_signal",
				Help:      "1 while the harvester alarm is raised",
			},
			[]string{"site", "signal"},
		),

		schedulingTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "scheduling_total",
				Help:      "Spawn steps by role and result",
			},
			[]string{"site", "role", "result"},
		),

		productionCost: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "production_cost_energy",
				Help:      "Energy cost of accepted production requests",
				Buckets:   []float64{200, 300, 450, 550, 700, 800, 1200, 2000},
			},
			[]string{"site", "role"},
		),
	}
}

// Register registers all spawn metrics with the Prometheus registry
func (c *SpawnMetricsCollector) Register() error {
	if Registry == nil {
		return nil // Metrics not enabled
	}

	collectors := []prometheus.Collector{
		c.population,
		c.deficit,
		c.criticalSignals,
		c.schedulingTotal,
		c.productionCost,
	}

	for _, collector := range collectors {
		if err := Registry.Register(collector); err != nil {
			return err
		}
	}

	return nil
}

// RecordComposition sets the population gauge for every role of counts
func (c *SpawnMetricsCollector) RecordComposition(siteID, kind string, counts map[string]int) {
	for role, n := range counts {
		c.population.WithLabelValues(siteID, kind, role).Set(float64(n))
	}
}

// RecordDeficits sets the deficit gauge. Roles absent from amounts keep their
// last value, so callers pass every role.
func (c *SpawnMetricsCollector) RecordDeficits(siteID string, amounts map[string]int) {
	for role, n := range amounts {
		c.deficit.WithLabelValues(siteID, role).Set(float64(n))
	}
}

// RecordCriticalSignals sets both alarm gauges
func (c *SpawnMetricsCollector) RecordCriticalSignals(siteID string, zeroPrimary, primaryBelowSources bool) {
	c.criticalSignals.WithLabelValues(siteID, "zero_harvesters").Set(boolToFloat(zeroPrimary))
	c.criticalSignals.WithLabelValues(siteID, "harvesters_below_sources").Set(boolToFloat(primaryBelowSources))
}

// RecordSchedulingResult increments the scheduling counter
func (c *SpawnMetricsCollector) RecordSchedulingResult(siteID, role, result string) {
	c.schedulingTotal.WithLabelValues(siteID, role, result).Inc()
}

// RecordProductionCost observes the cost of an accepted request
func (c *SpawnMetricsCollector) RecordProductionCost(siteID, role string, cost int) {
	c.productionCost.WithLabelValues(siteID, role).Observe(float64(cost))
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
