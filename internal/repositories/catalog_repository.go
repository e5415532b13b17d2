package repositories

import (
	"context"
	"fmt"
	"sync"

	"cardkeep/internal/apperr"
	"cardkeep/internal/models"

	"gorm.io/gorm"
)

// CatalogRepository is the narrow read interface onto the card catalog.
// Unknown ids are absent from the returned map; they are not an error.
type CatalogRepository interface {
	FindByIDs(ctx context.Context, ids []string) (map[string]models.Card, error)
}

// GORMCatalogRepository reads the seeded cards table.
type GORMCatalogRepository struct {
	db *gorm.DB
}

// NewGORMCatalogRepository creates a new instance of GORMCatalogRepository.
func NewGORMCatalogRepository(db *gorm.DB) *GORMCatalogRepository {
	return &GORMCatalogRepository{db: db}
}

// FindByIDs looks up all ids in one query.
func (r *GORMCatalogRepository) FindByIDs(ctx context.Context, ids []string) (map[string]models.Card, error) {
	found := make(map[string]models.Card, len(ids))
	if len(ids) == 0 {
		return found, nil
	}
	var cards []models.Card
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&cards).Error; err != nil {
		return nil, fmt.Errorf("failed to look up %d catalog cards: %w: %v", len(ids), apperr.ErrUpstream, err)
	}
	for _, c := range cards {
		found[c.ID] = c
	}
	return found, nil
}

// MemoryCatalogRepository is an in-memory catalog, used with the memory
// database driver and in tests.
type MemoryCatalogRepository struct {
	cards map[string]models.Card
	mu    sync.RWMutex
}

// NewMemoryCatalogRepository creates a catalog holding cards.
func NewMemoryCatalogRepository(cards ...models.Card) *MemoryCatalogRepository {
	r := &MemoryCatalogRepository{cards: make(map[string]models.Card, len(cards))}
	for _, c := range cards {
		r.cards[c.ID] = c
	}
	return r
}

// Put adds or replaces a catalog card.
func (r *MemoryCatalogRepository) Put(card models.Card) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cards[card.ID] = card
}

// FindByIDs returns the known cards among ids.
func (r *MemoryCatalogRepository) FindByIDs(_ context.Context, ids []string) (map[string]models.Card, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	found := make(map[string]models.Card, len(ids))
	for _, id := range ids {
		if c, ok := r.cards[id]; ok {
			found[id] = c
		}
	}
	return found, nil
}
