package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"gorm.io/gorm"

	"github.com/andrescamacho/colony-go/internal/adapters/persistence"
	"github.com/andrescamacho/colony-go/internal/application/spawning"
	"github.com/andrescamacho/colony-go/internal/infrastructure/config"
	"github.com/andrescamacho/colony-go/internal/infrastructure/database"
)

// loadConfig loads the configuration named by --config
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Logging.NoColor {
		color.NoColor = true
	}
	return cfg, nil
}

// NewPipelineFromConfig builds a pipeline from the planner and spawn sections
func NewPipelineFromConfig(cfg *config.Config) (*spawning.Pipeline, error) {
	ranks, err := cfg.Spawn.ToStaticRanks()
	if err != nil {
		return nil, err
	}
	table, err := cfg.Spawn.ToLoadoutTable()
	if err != nil {
		return nil, err
	}
	return spawning.NewPipeline(cfg.Planner.ToPolicy(), ranks, table), nil
}

// openDatabase connects and migrates the configured database
func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		database.Close(db)
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return db, nil
}

// newStepLogger prints to out at the configured level, or debug with
// --verbose. repo may be nil.
func newStepLogger(cfg *config.Config, repo *persistence.GormStepLogRepository, out io.Writer, siteID string) *persistence.StepLogWriter {
	level := cfg.Logging.Level
	if verbose {
		level = "debug"
	}
	return persistence.NewStepLogWriter(repo, out, level, siteID)
}
