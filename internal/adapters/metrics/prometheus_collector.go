package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// Namespace for all metrics
	namespace = "colony"
	// Subsystem for spawn pipeline metrics
	subsystem = "spawn"
)

var (
	// Registry is the global Prometheus registry for all metrics
	Registry *prometheus.Registry

	// globalSpawnCollector is the singleton spawn metrics collector
	// Set by SetGlobalSpawnCollector() when metrics are enabled
	globalSpawnCollector SpawnMetricsRecorder
)

// SpawnMetricsRecorder defines the interface for recording spawn pipeline events
// This interface is used by application code to record metrics
type SpawnMetricsRecorder interface {
	RecordComposition(siteID, kind string, counts map[string]int)
	RecordDeficits(siteID string, amounts map[string]int)
	RecordCriticalSignals(siteID string, zeroPrimary, primaryBelowSources bool)
	RecordSchedulingResult(siteID, role, result string)
	RecordProductionCost(siteID, role string, cost int)
}

// InitRegistry initializes the Prometheus registry
// Should be called once at application startup if metrics are enabled
func InitRegistry() {
	Registry = prometheus.NewRegistry()
}

// GetRegistry returns the global Prometheus registry
// Returns nil if metrics are not initialized
func GetRegistry() *prometheus.Registry {
	return Registry
}

// IsEnabled returns true if metrics collection is enabled
func IsEnabled() bool {
	return Registry != nil
}

// SetGlobalSpawnCollector sets the global spawn metrics collector
func SetGlobalSpawnCollector(collector SpawnMetricsRecorder) {
	globalSpawnCollector = collector
}

// RecordComposition records a target or current composition globally
func RecordComposition(siteID, kind string, counts map[string]int) {
	if globalSpawnCollector != nil {
		globalSpawnCollector.RecordComposition(siteID, kind, counts)
	}
}

// RecordDeficits records per-role deficit amounts globally
func RecordDeficits(siteID string, amounts map[string]int) {
	if globalSpawnCollector != nil {
		globalSpawnCollector.RecordDeficits(siteID, amounts)
	}
}

// RecordCriticalSignals records the harvester alarms globally
func RecordCriticalSignals(siteID string, zeroPrimary, primaryBelowSources bool) {
	if globalSpawnCollector != nil {
		globalSpawnCollector.RecordCriticalSignals(siteID, zeroPrimary, primaryBelowSources)
	}
}

// RecordSchedulingResult records how a step ended globally
func RecordSchedulingResult(siteID, role, result string) {
	if globalSpawnCollector != nil {
		globalSpawnCollector.RecordSchedulingResult(siteID, role, result)
	}
}

// RecordProductionCost records the energy spent on an accepted request globally
func RecordProductionCost(siteID, role string, cost int) {
	if globalSpawnCollector != nil {
		globalSpawnCollector.RecordProductionCost(siteID, role, cost)
	}
}
