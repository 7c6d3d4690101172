package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/andrescamacho/colony-go/internal/domain/shared"
)

// DefaultDedupWindow suppresses identical repeats from the same site
const DefaultDedupWindow = 60 * time.Second

// StepLogEntry represents a persisted log entry
type StepLogEntry struct {
	ID        int
	SiteID    string
	Timestamp time.Time
	Level     string
	Message   string
	Metadata  map[string]interface{}
}

// StepLogQuery filters GetLogs. Zero values mean no filter.
type StepLogQuery struct {
	SiteID string
	Level  string
	Since  *time.Time
	Limit  int
	Offset int
}

// GormStepLogRepository stores spawn step logs with time-windowed deduplication
type GormStepLogRepository struct {
	db    *gorm.DB
	clock shared.Clock

	dedupCache   map[string]time.Time // key: siteID|level|message|metadata, value: last logged time
	dedupMu      sync.Mutex
	dedupWindow  time.Duration
	dedupMaxSize int
}

// NewGormStepLogRepository creates a new step log repository
// If clock is nil, uses RealClock
func NewGormStepLogRepository(db *gorm.DB, clock shared.Clock) *GormStepLogRepository {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &GormStepLogRepository{
		db:           db,
		clock:        clock,
		dedupCache:   make(map[string]time.Time),
		dedupWindow:  DefaultDedupWindow,
		dedupMaxSize: 10000,
	}
}

// Log writes an entry unless the same site logged the identical entry, level
// message and metadata alike, within the dedup window. It reports whether the
// entry was written.
func (r *GormStepLogRepository) Log(ctx context.Context, siteID, level, message string, metadata map[string]interface{}) (bool, error) {
	now := r.clock.Now()

	var metadataJSON string
	if len(metadata) > 0 {
		// Metadata is optional; an unencodable map is dropped
		if encoded, err := json.Marshal(metadata); err == nil {
			metadataJSON = string(encoded)
		}
	}
	// json.Marshal sorts map keys, so equal metadata yields an equal key
	cacheKey := siteID + "|" + level + "|" + message + "|" + metadataJSON

	r.dedupMu.Lock()
	if lastLogged, exists := r.dedupCache[cacheKey]; exists && now.Sub(lastLogged) < r.dedupWindow {
		r.dedupMu.Unlock()
		return false, nil
	}
	if len(r.dedupCache) >= r.dedupMaxSize {
		r.cleanupDedupCache(now)
	}
	r.dedupCache[cacheKey] = now
	r.dedupMu.Unlock()

	entry := &StepLogModel{
		SiteID:    siteID,
		Timestamp: now,
		Level:     level,
		Message:   message,
		Metadata:  metadataJSON,
	}
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return false, fmt.Errorf("failed to persist step log: %w", err)
	}
	return true, nil
}

// cleanupDedupCache drops entries older than the window. Caller holds dedupMu.
func (r *GormStepLogRepository) cleanupDedupCache(now time.Time) {
	cutoff := now.Add(-r.dedupWindow)
	for key, ts := range r.dedupCache {
		if ts.Before(cutoff) {
			delete(r.dedupCache, key)
		}
	}
}

// GetLogs returns entries newest first
func (r *GormStepLogRepository) GetLogs(ctx context.Context, q StepLogQuery) ([]StepLogEntry, error) {
	query := r.db.WithContext(ctx).Model(&StepLogModel{})

	if q.SiteID != "" {
		query = query.Where("site_id = ?", q.SiteID)
	}
	if q.Level != "" {
		query = query.Where("level = ?", q.Level)
	}
	if q.Since != nil {
		query = query.Where("timestamp > ?", *q.Since)
	}

	query = query.Order("timestamp DESC").Order("id DESC")
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}
	if q.Offset > 0 {
		query = query.Offset(q.Offset)
	}

	var models []StepLogModel
	if err := query.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to query step logs: %w", err)
	}

	entries := make([]StepLogEntry, len(models))
	for i, model := range models {
		var metadata map[string]interface{}
		if model.Metadata != "" {
			if err := json.Unmarshal([]byte(model.Metadata), &metadata); err != nil {
				metadata = nil
			}
		}
		entries[i] = StepLogEntry{
			ID:        model.ID,
			SiteID:    model.SiteID,
			Timestamp: model.Timestamp,
			Level:     model.Level,
			Message:   model.Message,
			Metadata:  metadata,
		}
	}

	return entries, nil
}
