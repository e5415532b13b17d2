package services

import (
	"context"
	"fmt"

	"cardkeep/internal/apperr"
	"cardkeep/internal/models"
	"cardkeep/internal/repositories"

	"go.uber.org/zap"
)

// DeckService manages a user's named decks.
type DeckService struct {
	userRepo repositories.UserRepository
	catalog  repositories.CatalogRepository
}

// NewDeckService creates a new DeckService.
func NewDeckService(userRepo repositories.UserRepository, catalog repositories.CatalogRepository) *DeckService {
	return &DeckService{
		userRepo: userRepo,
		catalog:  catalog,
	}
}

// Save appends a new deck. Deck names are unique per user.
func (s *DeckService) Save(ctx context.Context, email, name string, cards []models.CardRef) (*models.Deck, error) {
	if err := models.ValidateDeck(name, cards); err != nil {
		return nil, err
	}
	if err := s.userRepo.AppendDeck(ctx, email, models.Deck{Name: name, Cards: cards}); err != nil {
		return nil, err
	}
	return s.find(ctx, email, name)
}

// List returns the stored decks without catalog enrichment.
func (s *DeckService) List(ctx context.Context, email string) ([]models.Deck, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user.Decks == nil {
		return []models.Deck{}, nil
	}
	return user.Decks, nil
}

// GetByName returns the named deck with every card overlaid by its catalog
// entry. Cards the catalog does not know keep empty display fields.
func (s *DeckService) GetByName(ctx context.Context, email, name string) (*models.EnrichedDeck, error) {
	deck, err := s.find(ctx, email, name)
	if err != nil {
		return nil, err
	}

	ids := distinctIDs(deck.Cards)
	found, err := s.catalog.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	enriched := &models.EnrichedDeck{
		ID:        deck.ID,
		Name:      deck.Name,
		Cards:     make([]models.EnrichedCard, 0, len(deck.Cards)),
		CreatedAt: deck.CreatedAt,
		UpdatedAt: deck.UpdatedAt,
	}
	misses := 0
	for _, ref := range deck.Cards {
		card, ok := found[ref.ID]
		if !ok {
			misses++
		}
		enriched.Cards = append(enriched.Cards, models.Enrich(ref, card))
	}
	if misses > 0 {
		EnrichmentMisses.Add(float64(misses))
		zap.L().Debug("Deck cards missing from catalog", zap.String("deck", deck.Name), zap.Int("misses", misses))
	}
	return enriched, nil
}

// Update replaces the named deck's name and cards, keeping its id.
func (s *DeckService) Update(ctx context.Context, email, name, newName string, cards []models.CardRef) (*models.Deck, error) {
	if err := models.ValidateDeck(newName, cards); err != nil {
		return nil, err
	}
	if err := s.userRepo.ReplaceDeckByName(ctx, email, name, models.Deck{Name: newName, Cards: cards}); err != nil {
		return nil, err
	}
	return s.find(ctx, email, newName)
}

// Delete removes the named deck.
func (s *DeckService) Delete(ctx context.Context, email, name string) error {
	return s.userRepo.RemoveDeck(ctx, email, name)
}

func (s *DeckService) find(ctx context.Context, email, name string) (*models.Deck, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	i := user.DeckByName(name)
	if i < 0 {
		return nil, fmt.Errorf("deck %q: %w", name, apperr.ErrNotFound)
	}
	deck := user.Decks[i]
	return &deck, nil
}

func distinctIDs(cards []models.CardRef) []string {
	seen := make(map[string]struct{}, len(cards))
	ids := make([]string, 0, len(cards))
	for _, c := range cards {
		if _, ok := seen[c.ID]; ok {
			continue
		}
		seen[c.ID] = struct{}{}
		ids = append(ids, c.ID)
	}
	return ids
}
