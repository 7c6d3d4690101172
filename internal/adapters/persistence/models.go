package persistence

import (
	"time"
)

// SiteModel represents the sites table: the latest snapshot of each managed site
type SiteModel struct {
	SiteID                     string    `gorm:"column:site_id;primaryKey"`
	DevelopmentLevel           int       `gorm:"column:development_level;not null;default:1"`
	SourceCount                int       `gorm:"column:source_count;not null;default:0"`
	EnergyAvailable            int       `gorm:"column:energy_available;not null;default:0"`
	EnergyCapacity             int       `gorm:"column:energy_capacity;not null;default:0"`
	HasOutstandingConstruction bool      `gorm:"column:has_outstanding_construction;not null;default:false"`
	ConstructionSiteCount      int       `gorm:"column:construction_site_count;not null;default:0"`
	DamagedStructureCount      int       `gorm:"column:damaged_structure_count;not null;default:0"`
	UpdatedAt                  time.Time `gorm:"column:updated_at;not null"`
}

func (SiteModel) TableName() string {
	return "sites"
}

// WorkerModel represents the workers table: the live worker registry
type WorkerModel struct {
	Name      string    `gorm:"column:name;primaryKey"`
	Role      string    `gorm:"column:role;not null;index"`
	SiteID    string    `gorm:"column:site_id;not null;index"`
	Body      string    `gorm:"column:body;type:text"` // JSON array of part names
	Working   bool      `gorm:"column:working;not null;default:false"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
}

func (WorkerModel) TableName() string {
	return "workers"
}

// StepLogModel represents the step_logs table
type StepLogModel struct {
	ID        int       `gorm:"column:id;primaryKey;autoIncrement"`
	SiteID    string    `gorm:"column:site_id;not null;index"`
	Timestamp time.Time `gorm:"column:timestamp;not null"`
	Level     string    `gorm:"column:level;not null;default:'INFO'"`
	Message   string    `gorm:"column:message;type:text;not null"`
	Metadata  string    `gorm:"column:metadata;type:text"` // JSON as text
}

func (StepLogModel) TableName() string {
	return "step_logs"
}

// AllModels lists every table for migrations
func AllModels() []interface{} {
	return []interface{}{
		&SiteModel{},
		&WorkerModel{},
		&StepLogModel{},
	}
}
