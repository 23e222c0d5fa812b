package catalog

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelscout/modelscout/internal/models"
	"github.com/modelscout/modelscout/internal/services/database"

	fiberlog "github.com/gofiber/fiber/v2/log"
)

// snapshotRecord persists one fetched catalog so a restarted instance can
// serve recommendations before its first upstream fetch completes.
type snapshotRecord struct {
	ID         uint   `gorm:"primaryKey"`
	Payload    []byte `gorm:"not null"`
	ModelCount int    `gorm:"not null"`
	FetchedAt  time.Time
	CreatedAt  time.Time
}

func (snapshotRecord) TableName() string { return "catalog_snapshots" }

// SnapshotStore reads and writes catalog snapshots through the configured
// database driver.
type SnapshotStore struct {
	db  *database.DB
	ttl time.Duration
}

// NewSnapshotStore opens the snapshot database and migrates its schema.
func NewSnapshotStore(config models.SnapshotConfig) (*SnapshotStore, error) {
	db, err := database.New(config)
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&snapshotRecord{}); err != nil {
		closeErr := db.Close()
		if closeErr != nil {
			fiberlog.Errorf("[snapshot] failed to close database after migration error: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to migrate snapshot schema: %w", err)
	}

	return &SnapshotStore{
		db:  db,
		ttl: time.Duration(config.TTLHours) * time.Hour,
	}, nil
}

// Save replaces the stored snapshot with the given catalog.
func (s *SnapshotStore) Save(catalog *models.CachedCatalog) error {
	payload, err := json.Marshal(catalog.Models)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot payload: %w", err)
	}

	record := snapshotRecord{
		Payload:    payload,
		ModelCount: len(catalog.Models),
		FetchedAt:  catalog.FetchedAt,
	}

	if err := s.db.Create(&record).Error; err != nil {
		return fmt.Errorf("failed to persist snapshot: %w", err)
	}

	// Keep only the newest snapshot around.
	if err := s.db.Where("id < ?", record.ID).Delete(&snapshotRecord{}).Error; err != nil {
		fiberlog.Warnf("[snapshot] failed to prune old snapshots: %v", err)
	}

	return nil
}

// Load returns the most recent snapshot still within the snapshot TTL, or
// nil when none is usable.
func (s *SnapshotStore) Load() (*models.CachedCatalog, error) {
	var record snapshotRecord
	result := s.db.Order("fetched_at DESC").Limit(1).Find(&record)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}

	if time.Since(record.FetchedAt) > s.ttl {
		fiberlog.Debugf("[snapshot] stored snapshot from %s is past its TTL, ignoring", record.FetchedAt.Format(time.RFC3339))
		return nil, nil
	}

	var catalogModels []models.Model
	if err := json.Unmarshal(record.Payload, &catalogModels); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot payload: %w", err)
	}

	return &models.CachedCatalog{
		Models:    catalogModels,
		FetchedAt: record.FetchedAt,
	}, nil
}

// Close closes the underlying database connection.
func (s *SnapshotStore) Close() error {
	return s.db.Close()
}
