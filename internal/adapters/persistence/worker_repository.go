package persistence

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"

	"github.com/andrescamacho/colony-go/internal/domain/colony"
	"github.com/andrescamacho/colony-go/internal/domain/shared"
)

// GormWorkerRepository implements colony.WorkerRegistry over the workers table
type GormWorkerRepository struct {
	db    *gorm.DB
	clock shared.Clock
}

// NewGormWorkerRepository creates a new GORM worker repository
func NewGormWorkerRepository(db *gorm.DB, clock shared.Clock) *GormWorkerRepository {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &GormWorkerRepository{db: db, clock: clock}
}

// ListWorkers returns every live worker across all sites
func (r *GormWorkerRepository) ListWorkers(ctx context.Context) ([]colony.Worker, error) {
	var models []WorkerModel
	if err := r.db.WithContext(ctx).Order("name").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list workers: %w", err)
	}

	workers := make([]colony.Worker, len(models))
	for i, m := range models {
		workers[i] = colony.Worker{Name: m.Name, Role: m.Role, SiteID: m.SiteID}
	}
	return workers, nil
}

// RegisteredWorker is a registry entry together with its body
type RegisteredWorker struct {
	Worker colony.Worker
	Body   colony.Loadout
}

// ReplaceSite swaps every registry entry of siteID for workers in one
// transaction. Entries of other sites are untouched.
func (r *GormWorkerRepository) ReplaceSite(ctx context.Context, siteID string, workers []RegisteredWorker) error {
	models := make([]*WorkerModel, 0, len(workers))
	for _, w := range workers {
		if w.Worker.SiteID != siteID {
			return shared.NewValidationError("site_id", fmt.Sprintf("worker %s belongs to %s", w.Worker.Name, w.Worker.SiteID))
		}
		model, err := r.toModel(w.Worker, w.Body)
		if err != nil {
			return err
		}
		models = append(models, model)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("site_id = ?", siteID).Delete(&WorkerModel{}).Error; err != nil {
			return fmt.Errorf("failed to clear workers of %s: %w", siteID, err)
		}
		if len(models) == 0 {
			return nil
		}
		if err := tx.Create(&models).Error; err != nil {
			return fmt.Errorf("failed to register workers of %s: %w", siteID, err)
		}
		return nil
	})
}

func (r *GormWorkerRepository) toModel(worker colony.Worker, body colony.Loadout) (*WorkerModel, error) {
	if worker.Name == "" {
		return nil, shared.NewValidationError("name", "required")
	}

	parts := make([]string, len(body))
	for i, p := range body {
		parts[i] = string(p)
	}
	encoded, err := json.Marshal(parts)
	if err != nil {
		return nil, fmt.Errorf("failed to encode body: %w", err)
	}

	return &WorkerModel{
		Name:      worker.Name,
		Role:      worker.Role,
		SiteID:    worker.SiteID,
		Body:      string(encoded),
		CreatedAt: r.clock.Now(),
	}, nil
}

// Body returns the parts of a worker
func (r *GormWorkerRepository) Body(ctx context.Context, name string) (colony.Loadout, error) {
	var model WorkerModel
	result := r.db.WithContext(ctx).Where("name = ?", name).First(&model)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, shared.NewNotFoundError("worker", name)
		}
		return nil, fmt.Errorf("failed to find worker: %w", result.Error)
	}

	var parts []string
	if model.Body != "" {
		if err := json.Unmarshal([]byte(model.Body), &parts); err != nil {
			return nil, fmt.Errorf("failed to decode body of %s: %w", name, err)
		}
	}
	body := make(colony.Loadout, len(parts))
	for i, p := range parts {
		body[i] = colony.PartKind(p)
	}
	return body, nil
}
