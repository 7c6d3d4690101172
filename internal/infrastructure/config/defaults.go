package config

import (
	"time"

	"github.com/andrescamacho/colony-go/internal/domain/colony"
)

// SetDefaults sets default values for all configuration fields
func SetDefaults(cfg *Config) {
	// Database defaults
	if cfg.Database.Type == "" {
		cfg.Database.Type = "sqlite"
	}
	if cfg.Database.Type == "sqlite" && cfg.Database.Path == "" {
		cfg.Database.Path = "colony.db"
	}
	if cfg.Database.Type == "postgres" {
		if cfg.Database.Host == "" {
			cfg.Database.Host = "localhost"
		}
		if cfg.Database.Port == 0 {
			cfg.Database.Port = 5432
		}
		if cfg.Database.User == "" {
			cfg.Database.User = "colony"
		}
		if cfg.Database.Name == "" {
			cfg.Database.Name = "colony"
		}
		if cfg.Database.SSLMode == "" {
			cfg.Database.SSLMode = "disable"
		}
	}
	if cfg.Database.Pool.MaxOpen == 0 {
		cfg.Database.Pool.MaxOpen = 10
	}
	if cfg.Database.Pool.MaxIdle == 0 {
		cfg.Database.Pool.MaxIdle = 2
	}
	if cfg.Database.Pool.MaxLifetime == 0 {
		cfg.Database.Pool.MaxLifetime = 5 * time.Minute
	}

	// Daemon defaults
	if cfg.Daemon.SocketPath == "" {
		cfg.Daemon.SocketPath = "/tmp/colony-planner.sock"
	}
	if cfg.Daemon.PIDFile == "" {
		cfg.Daemon.PIDFile = "/tmp/colony-planner.pid"
	}
	if cfg.Daemon.ShutdownTimeout == 0 {
		cfg.Daemon.ShutdownTimeout = 10 * time.Second
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	// Metrics defaults
	if cfg.Metrics.Port == 0 {
		cfg.Metrics.Port = 9464
	}
	if cfg.Metrics.Host == "" {
		cfg.Metrics.Host = "localhost"
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}

	// Planner defaults
	if cfg.Planner.ScarcityRatio == 0 {
		cfg.Planner.ScarcityRatio = colony.DefaultScarcityRatio
	}
	if cfg.Planner.AbundanceRatio == 0 {
		cfg.Planner.AbundanceRatio = colony.DefaultAbundanceRatio
	}
	if cfg.Planner.RepairTrigger == 0 {
		cfg.Planner.RepairTrigger = colony.DefaultRepairTrigger
	}

	// Spawn defaults: an absent section means the stock table; a present
	// section is taken as-is so that roles can be left unconfigured
	stock := DefaultSpawnConfig()
	if cfg.Spawn.Ranks == nil {
		cfg.Spawn.Ranks = stock.Ranks
	}
	if cfg.Spawn.Loadouts == nil {
		cfg.Spawn.Loadouts = stock.Loadouts
	}

	// Simulation defaults
	if cfg.Simulation.Seed == 0 {
		cfg.Simulation.Seed = 1
	}
	if cfg.Simulation.IncomePerWork == 0 {
		cfg.Simulation.IncomePerWork = 2
	}
	if cfg.Simulation.WorkerLifetime == 0 {
		cfg.Simulation.WorkerLifetime = 1500
	}
	site := &cfg.Simulation.Site
	if site.ID == "" {
		site.ID = "W1N1"
	}
	if site.DevelopmentLevel == 0 {
		site.DevelopmentLevel = 1
	}
	if site.SourceCount == 0 {
		site.SourceCount = 2
	}
	if site.EnergyCapacity == 0 {
		site.EnergyCapacity = 300
	}
	if site.EnergyAvailable == 0 {
		site.EnergyAvailable = site.EnergyCapacity
	}
}

// Default returns a configuration made only of defaults
func Default() *Config {
	cfg := &Config{}
	SetDefaults(cfg)
	return cfg
}
