package repositories

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"cardkeep/internal/apperr"
	"cardkeep/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingCatalog records every batch it is asked for.
type countingCatalog struct {
	mu      sync.Mutex
	next    CatalogRepository
	batches [][]string
	err     error
}

func (c *countingCatalog) FindByIDs(ctx context.Context, ids []string) (map[string]models.Card, error) {
	c.mu.Lock()
	batch := append([]string(nil), ids...)
	sort.Strings(batch)
	c.batches = append(c.batches, batch)
	err := c.err
	c.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return c.next.FindByIDs(ctx, ids)
}

func TestGORMCatalogRepository(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	require.NoError(t, db.Create(&[]models.Card{
		{ID: "C1", Name: "Gundam", ImageURL: "https://img/C1.webp", SetName: "ST01", CardType: "UNIT"},
		{ID: "C2", Name: "Zaku II", ImageURL: "https://img/C2.webp", SetName: "ST02", CardType: "UNIT"},
	}).Error)
	repo := NewGORMCatalogRepository(db)

	found, err := repo.FindByIDs(ctx, []string{"C1", "C2", "missing"})
	require.NoError(t, err)
	assert.Len(t, found, 2)
	assert.Equal(t, "Zaku II", found["C2"].Name)
	assert.NotContains(t, found, "missing")

	empty, err := repo.FindByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestCachedCatalogRepository(t *testing.T) {
	ctx := context.Background()
	backing := &countingCatalog{next: NewMemoryCatalogRepository(
		models.Card{ID: "C1", Name: "Gundam"},
		models.Card{ID: "C2", Name: "Zaku II"},
	)}
	cached := NewCachedCatalogRepository(backing, time.Minute)
	defer cached.Close()

	found, err := cached.FindByIDs(ctx, []string{"C1", "missing"})
	require.NoError(t, err)
	assert.Len(t, found, 1)

	// C1 is served from the cache; the unknown id is asked for again.
	found, err = cached.FindByIDs(ctx, []string{"C1", "C2", "missing"})
	require.NoError(t, err)
	assert.Len(t, found, 2)
	assert.Equal(t, "Gundam", found["C1"].Name)

	found, err = cached.FindByIDs(ctx, []string{"C1", "C2"})
	require.NoError(t, err)
	assert.Len(t, found, 2)

	assert.Equal(t, [][]string{{"C1", "missing"}, {"C2", "missing"}}, backing.batches)

	backing.err = errors.Join(apperr.ErrUpstream, errors.New("connection refused"))
	_, err = cached.FindByIDs(ctx, []string{"C3"})
	assert.ErrorIs(t, err, apperr.ErrUpstream)

	// Cached ids still resolve while the catalog is down.
	found, err = cached.FindByIDs(ctx, []string{"C1"})
	require.NoError(t, err)
	assert.Len(t, found, 1)
}
