package config

// SimulationConfig drives the in-process world used by `colony simulate`
type SimulationConfig struct {
	// Seed of the energy noise; equal seeds replay equal runs
	Seed int64 `mapstructure:"seed" yaml:"seed"`

	// Steps per second; 0 runs unpaced
	TicksPerSecond float64 `mapstructure:"ticks_per_second" yaml:"ticks_per_second" validate:"min=0"`

	// Energy produced per source per tick by one harvester work part
	IncomePerWork float64 `mapstructure:"income_per_work" yaml:"income_per_work" validate:"gt=0"`

	// Ticks a worker lives after it is produced
	WorkerLifetime int `mapstructure:"worker_lifetime" yaml:"worker_lifetime" validate:"min=1"`

	// Initial site
	Site SiteConfig `mapstructure:"site" yaml:"site"`
}

// SiteConfig seeds one simulated site
type SiteConfig struct {
	ID                    string `mapstructure:"id" yaml:"id" validate:"required"`
	DevelopmentLevel      int    `mapstructure:"development_level" yaml:"development_level" validate:"min=1,max=8"`
	SourceCount           int    `mapstructure:"source_count" yaml:"source_count" validate:"min=0"`
	EnergyCapacity        int    `mapstructure:"energy_capacity" yaml:"energy_capacity" validate:"min=0"`
	EnergyAvailable       int    `mapstructure:"energy_available" yaml:"energy_available" validate:"min=0"`
	ConstructionSiteCount int    `mapstructure:"construction_site_count" yaml:"construction_site_count" validate:"min=0"`
	DamagedStructureCount int    `mapstructure:"damaged_structure_count" yaml:"damaged_structure_count" validate:"min=0"`
}
