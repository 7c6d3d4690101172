package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/andrescamacho/colony-go/internal/application/spawning"
	"github.com/andrescamacho/colony-go/internal/domain/colony"
	"github.com/andrescamacho/colony-go/internal/infrastructure/config"
)

// Snapshot is the file form of one step input. Budget and SlotFree are
// optional: the budget defaults to the site's energy and the slot to free.
type Snapshot struct {
	Site     SiteSnapshot     `yaml:"site" json:"site"`
	Workers  []WorkerSnapshot `yaml:"workers" json:"workers" validate:"dive"`
	Budget   *int             `yaml:"energy_available,omitempty" json:"energy_available,omitempty" validate:"omitempty,min=0"`
	SlotFree *bool            `yaml:"slot_free,omitempty" json:"slot_free,omitempty"`
}

// SiteSnapshot mirrors colony.RoomState
type SiteSnapshot struct {
	ID                         string `yaml:"id" json:"id" validate:"required"`
	DevelopmentLevel           int    `yaml:"development_level" json:"development_level" validate:"min=0,max=8"`
	SourceCount                int    `yaml:"source_count" json:"source_count" validate:"min=0"`
	EnergyAvailable            int    `yaml:"energy_available" json:"energy_available" validate:"min=0"`
	EnergyCapacity             int    `yaml:"energy_capacity" json:"energy_capacity" validate:"min=0"`
	HasOutstandingConstruction bool   `yaml:"has_outstanding_construction" json:"has_outstanding_construction"`
	ConstructionSiteCount      int    `yaml:"construction_site_count" json:"construction_site_count" validate:"min=0"`
	DamagedStructureCount      int    `yaml:"damaged_structure_count" json:"damaged_structure_count" validate:"min=0"`
}

// WorkerSnapshot is one registry entry. An empty site means the snapshot's site.
type WorkerSnapshot struct {
	Name   string `yaml:"name" json:"name" validate:"required"`
	Role   string `yaml:"role" json:"role" validate:"required"`
	SiteID string `yaml:"site_id,omitempty" json:"site_id,omitempty"`
}

// LoadSnapshot reads a YAML or JSON snapshot; ".json" files are parsed as
// JSON, anything else as YAML
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var snap Snapshot
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &snap)
	} else {
		err = yaml.Unmarshal(data, &snap)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse snapshot %s: %w", path, err)
	}

	if err := config.NewValidator().Validate(&snap); err != nil {
		return nil, fmt.Errorf("invalid snapshot %s: %w", path, err)
	}
	return &snap, nil
}

// RoomState converts the site section
func (s *Snapshot) RoomState() colony.RoomState {
	return colony.RoomState{
		SiteID:                     s.Site.ID,
		DevelopmentLevel:           s.Site.DevelopmentLevel,
		SourceCount:                s.Site.SourceCount,
		EnergyAvailable:            s.Site.EnergyAvailable,
		EnergyCapacity:             s.Site.EnergyCapacity,
		HasOutstandingConstruction: s.Site.HasOutstandingConstruction,
		ConstructionSiteCount:      s.Site.ConstructionSiteCount,
		DamagedStructureCount:      s.Site.DamagedStructureCount,
	}
}

// RegistryWorkers converts the workers section
func (s *Snapshot) RegistryWorkers() []colony.Worker {
	workers := make([]colony.Worker, 0, len(s.Workers))
	for _, w := range s.Workers {
		siteID := w.SiteID
		if siteID == "" {
			siteID = s.Site.ID
		}
		workers = append(workers, colony.Worker{Name: w.Name, Role: w.Role, SiteID: siteID})
	}
	return workers
}

// StepInput converts the snapshot to a pipeline input
func (s *Snapshot) StepInput() spawning.StepInput {
	in := spawning.StepInput{
		State:   s.RoomState(),
		Workers: s.RegistryWorkers(),
		Budget:  s.Site.EnergyAvailable,
		Slot:    colony.SlotFree,
	}
	if s.Budget != nil {
		in.Budget = *s.Budget
	}
	if s.SlotFree != nil && !*s.SlotFree {
		in.Slot = colony.SlotOccupied
	}
	return in
}
