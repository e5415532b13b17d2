package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cardkeep/internal/apperr"
	"cardkeep/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMShareRepository is a GORM implementation of ShareRepository.
type GORMShareRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGORMShareRepository creates a new instance of GORMShareRepository.
func NewGORMShareRepository(db *gorm.DB) *GORMShareRepository {
	return &GORMShareRepository{
		db:  db,
		now: time.Now,
	}
}

// Upsert inserts the record, or refreshes owner name and timestamp when the
// share id already exists.
func (r *GORMShareRepository) Upsert(ctx context.Context, record *models.ShareRecord) error {
	now := r.now()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "share_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"owner_name", "updated_at"}),
	}).Create(record).Error
	if err != nil {
		return fmt.Errorf("failed to upsert share %s: %w: %v", record.ShareID, apperr.ErrStore, err)
	}
	return nil
}

// FindByID retrieves a share record by its id.
func (r *GORMShareRepository) FindByID(ctx context.Context, shareID string) (*models.ShareRecord, error) {
	if !ValidShareID(shareID) {
		return nil, fmt.Errorf("share %s: %w", shareID, apperr.ErrNotFound)
	}
	var record models.ShareRecord
	if err := r.db.WithContext(ctx).First(&record, "share_id = ?", shareID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("share %s: %w", shareID, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get share %s: %w: %v", shareID, apperr.ErrStore, err)
	}
	return &record, nil
}
