package repositories

import (
	"context"
	"time"

	"cardkeep/internal/models"

	"github.com/jellydator/ttlcache/v2"
)

// CachedCatalogRepository serves repeated card lookups from a TTL cache and
// only asks the underlying catalog for ids it has not seen recently.
// Ids the catalog does not know are not cached.
type CachedCatalogRepository struct {
	next  CatalogRepository
	cache *ttlcache.Cache
}

// NewCachedCatalogRepository wraps next with a cache whose entries live for ttl.
func NewCachedCatalogRepository(next CatalogRepository, ttl time.Duration) *CachedCatalogRepository {
	cache := ttlcache.NewCache()
	_ = cache.SetTTL(ttl)
	cache.SkipTTLExtensionOnHit(true)
	return &CachedCatalogRepository{
		next:  next,
		cache: cache,
	}
}

// FindByIDs returns cached cards and fetches the rest in one batch.
func (r *CachedCatalogRepository) FindByIDs(ctx context.Context, ids []string) (map[string]models.Card, error) {
	found := make(map[string]models.Card, len(ids))
	var misses []string
	for _, id := range ids {
		if v, err := r.cache.Get(id); err == nil {
			if card, ok := v.(models.Card); ok {
				found[id] = card
				continue
			}
		}
		misses = append(misses, id)
	}
	if len(misses) == 0 {
		return found, nil
	}

	fetched, err := r.next.FindByIDs(ctx, misses)
	if err != nil {
		return nil, err
	}
	for id, card := range fetched {
		found[id] = card
		_ = r.cache.Set(id, card)
	}
	return found, nil
}

// Close stops the cache's expiry goroutine.
func (r *CachedCatalogRepository) Close() error {
	return r.cache.Close()
}
