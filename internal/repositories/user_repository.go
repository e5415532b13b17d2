package repositories

import (
	"context"

	"cardkeep/internal/models"
)

// UserRepository defines the interface for user data access.
//
// Deck mutations are read-modify-write on the user row and fail with
// apperr.ErrConflict when another writer bumped the row version in between.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Insert(ctx context.Context, user *models.User) error
	SetCollection(ctx context.Context, email string, cards []models.CardRef) error
	AppendDeck(ctx context.Context, email string, deck models.Deck) error
	RemoveDeck(ctx context.Context, email, name string) error
	ReplaceDeckByName(ctx context.Context, email, name string, deck models.Deck) error
	SetPasswordHash(ctx context.Context, email, hash string) error
}
