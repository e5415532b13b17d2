package services

import (
	"context"

	"cardkeep/internal/models"
	"cardkeep/internal/repositories"
)

// CollectionService reads and replaces a user's card collection.
type CollectionService struct {
	userRepo repositories.UserRepository
}

// NewCollectionService creates a new CollectionService.
func NewCollectionService(userRepo repositories.UserRepository) *CollectionService {
	return &CollectionService{
		userRepo: userRepo,
	}
}

// Save replaces the whole collection. Two concurrent saves leave one of them,
// never a merge.
func (s *CollectionService) Save(ctx context.Context, email string, cards []models.CardRef) error {
	if err := models.ValidateCollection(cards); err != nil {
		return err
	}
	return s.userRepo.SetCollection(ctx, email, cards)
}

// Get returns the stored collection, or an empty list if none was saved.
func (s *CollectionService) Get(ctx context.Context, email string) ([]models.CardRef, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user.Collection == nil {
		return []models.CardRef{}, nil
	}
	return user.Collection, nil
}
