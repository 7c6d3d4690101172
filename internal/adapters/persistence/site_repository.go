package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/andrescamacho/colony-go/internal/domain/colony"
	"github.com/andrescamacho/colony-go/internal/domain/shared"
)

// GormSiteRepository implements colony.RoomStateReader over the sites table
type GormSiteRepository struct {
	db    *gorm.DB
	clock shared.Clock
}

// NewGormSiteRepository creates a new GORM site repository
func NewGormSiteRepository(db *gorm.DB, clock shared.Clock) *GormSiteRepository {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &GormSiteRepository{db: db, clock: clock}
}

// ReadState retrieves the snapshot of a site
func (r *GormSiteRepository) ReadState(ctx context.Context, siteID string) (colony.RoomState, error) {
	model, err := r.find(ctx, siteID)
	if err != nil {
		return colony.RoomState{}, err
	}
	return modelToRoomState(model), nil
}

// EnergyAvailable re-reads only the energy column of a site
func (r *GormSiteRepository) EnergyAvailable(ctx context.Context, siteID string) (int, error) {
	var energy []int
	err := r.db.WithContext(ctx).
		Model(&SiteModel{}).
		Where("site_id = ?", siteID).
		Pluck("energy_available", &energy).Error
	if err != nil {
		return 0, fmt.Errorf("failed to read energy: %w", err)
	}
	if len(energy) == 0 {
		return 0, shared.NewNotFoundError("site", siteID)
	}
	return energy[0], nil
}

// Save upserts the snapshot of a site
func (r *GormSiteRepository) Save(ctx context.Context, state colony.RoomState) error {
	if state.SiteID == "" {
		return shared.NewValidationError("site_id", "required")
	}

	model := roomStateToModel(state)
	model.UpdatedAt = r.clock.Now()

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(model)
	if result.Error != nil {
		return fmt.Errorf("failed to save site %s: %w", state.SiteID, result.Error)
	}
	return nil
}

// ListSiteIDs returns every known site, sorted
func (r *GormSiteRepository) ListSiteIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := r.db.WithContext(ctx).Model(&SiteModel{}).Order("site_id").Pluck("site_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to list sites: %w", err)
	}
	return ids, nil
}

func (r *GormSiteRepository) find(ctx context.Context, siteID string) (*SiteModel, error) {
	var model SiteModel
	result := r.db.WithContext(ctx).Where("site_id = ?", siteID).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("site", siteID)
		}
		return nil, fmt.Errorf("failed to find site: %w", result.Error)
	}
	return &model, nil
}

func modelToRoomState(m *SiteModel) colony.RoomState {
	return colony.RoomState{
		SiteID:                     m.SiteID,
		DevelopmentLevel:           m.DevelopmentLevel,
		SourceCount:                m.SourceCount,
		EnergyAvailable:            m.EnergyAvailable,
		EnergyCapacity:             m.EnergyCapacity,
		HasOutstandingConstruction: m.HasOutstandingConstruction,
		ConstructionSiteCount:      m.ConstructionSiteCount,
		DamagedStructureCount:      m.DamagedStructureCount,
	}
}

func roomStateToModel(s colony.RoomState) *SiteModel {
	return &SiteModel{
		SiteID:                     s.SiteID,
		DevelopmentLevel:           s.DevelopmentLevel,
		SourceCount:                s.SourceCount,
		EnergyAvailable:            s.EnergyAvailable,
		EnergyCapacity:             s.EnergyCapacity,
		HasOutstandingConstruction: s.HasOutstandingConstruction,
		ConstructionSiteCount:      s.ConstructionSiteCount,
		DamagedStructureCount:      s.DamagedStructureCount,
	}
}
