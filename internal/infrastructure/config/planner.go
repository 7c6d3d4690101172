package config

import "github.com/andrescamacho/colony-go/internal/domain/colony"

// PlannerConfig holds the thresholds the population planner branches on
type PlannerConfig struct {
	// Energy ratio below which upgraders are halved and builders shed
	ScarcityRatio float64 `mapstructure:"scarcity_ratio" yaml:"scarcity_ratio" validate:"gt=0,lt=1"`

	// Energy ratio above which optimization-tier sites run extra upgraders
	AbundanceRatio float64 `mapstructure:"abundance_ratio" yaml:"abundance_ratio" validate:"gt=0,lte=1,gtfield=ScarcityRatio"`

	// Damaged structures above which growth-tier sites want a repairer
	RepairTrigger int `mapstructure:"repair_trigger" yaml:"repair_trigger" validate:"min=1"`
}

// ToPolicy converts the section to the domain policy
func (c PlannerConfig) ToPolicy() colony.PlannerPolicy {
	return colony.PlannerPolicy{
		ScarcityRatio:  c.ScarcityRatio,
		AbundanceRatio: c.AbundanceRatio,
		RepairTrigger:  c.RepairTrigger,
	}
}
