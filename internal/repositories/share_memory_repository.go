package repositories

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cardkeep/internal/apperr"
	"cardkeep/internal/models"
)

// MemoryShareRepository is an in-memory implementation of ShareRepository.
type MemoryShareRepository struct {
	shares map[string]models.ShareRecord
	mu     sync.RWMutex
	now    func() time.Time
}

// NewMemoryShareRepository creates a new instance of MemoryShareRepository.
func NewMemoryShareRepository() *MemoryShareRepository {
	return &MemoryShareRepository{
		shares: make(map[string]models.ShareRecord),
		now:    time.Now,
	}
}

// Upsert inserts or refreshes a share record.
func (r *MemoryShareRepository) Upsert(_ context.Context, record *models.ShareRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if existing, ok := r.shares[record.ShareID]; ok {
		record.CreatedAt = existing.CreatedAt
	} else if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now
	r.shares[record.ShareID] = *record
	return nil
}

// FindByID returns the share record for shareID.
func (r *MemoryShareRepository) FindByID(_ context.Context, shareID string) (*models.ShareRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.shares[shareID]
	if !ok {
		return nil, fmt.Errorf("share %s: %w", shareID, apperr.ErrNotFound)
	}
	return &record, nil
}
