package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cardkeep/internal/apperr"
	"cardkeep/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMUserRepository is a GORM implementation of UserRepository.
// The *gorm.DB must be opened with TranslateError enabled so unique
// violations surface as gorm.ErrDuplicatedKey.
type GORMUserRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db:  db,
		now: time.Now,
	}
}

// FindByEmail retrieves a user by their email from the database.
func (r *GORMUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user with email %s: %w", email, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by email %s: %w: %v", email, apperr.ErrStore, err)
	}
	return &user, nil
}

// Insert creates a new user in the database.
func (r *GORMUserRepository) Insert(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.Collection == nil {
		user.Collection = models.CardList{}
	}
	if user.Decks == nil {
		user.Decks = models.DeckList{}
	}
	user.Version = 1
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: %s", apperr.ErrDuplicateEmail, user.Email)
		}
		return fmt.Errorf("failed to create user: %w: %v", apperr.ErrStore, err)
	}
	return nil
}

// SetCollection replaces the whole collection. Concurrent saves are
// last-writer-wins; the version is still bumped so in-flight deck edits
// notice the row changed.
func (r *GORMUserRepository) SetCollection(ctx context.Context, email string, cards []models.CardRef) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).
		Where("email = ?", email).
		Updates(map[string]interface{}{
			"collection": models.CardList(cards),
			"version":    gorm.Expr("version + 1"),
			"updated_at": r.now(),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update collection for %s: %w: %v", email, apperr.ErrStore, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user with email %s: %w", email, apperr.ErrNotFound)
	}
	return nil
}

// AppendDeck adds a new deck to the user's deck list.
func (r *GORMUserRepository) AppendDeck(ctx context.Context, email string, deck models.Deck) error {
	return r.mutateDecks(ctx, email, func(u *models.User) error {
		return appendDeck(u, deck, r.now())
	})
}

// RemoveDeck deletes the deck called name.
func (r *GORMUserRepository) RemoveDeck(ctx context.Context, email, name string) error {
	return r.mutateDecks(ctx, email, func(u *models.User) error {
		return removeDeck(u, name)
	})
}

// ReplaceDeckByName swaps the name and cards of the deck called name.
func (r *GORMUserRepository) ReplaceDeckByName(ctx context.Context, email, name string, deck models.Deck) error {
	return r.mutateDecks(ctx, email, func(u *models.User) error {
		return replaceDeck(u, name, deck, r.now())
	})
}

// SetPasswordHash overwrites the stored password hash.
func (r *GORMUserRepository) SetPasswordHash(ctx context.Context, email, hash string) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).
		Where("email = ?", email).
		Updates(map[string]interface{}{
			"password":   hash,
			"updated_at": r.now(),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update password for %s: %w: %v", email, apperr.ErrStore, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user with email %s: %w", email, apperr.ErrNotFound)
	}
	return nil
}

// mutateDecks loads the user, applies fn and writes the deck list back only if
// the row version is unchanged since the read.
func (r *GORMUserRepository) mutateDecks(ctx context.Context, email string, fn func(*models.User) error) error {
	user, err := r.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if err := fn(user); err != nil {
		return err
	}

	res := r.db.WithContext(ctx).Model(&models.User{}).
		Where("email = ? AND version = ?", email, user.Version).
		Updates(map[string]interface{}{
			"decks":      user.Decks,
			"version":    user.Version + 1,
			"updated_at": r.now(),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update decks for %s: %w: %v", email, apperr.ErrStore, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("decks of %s changed during update: %w", email, apperr.ErrConflict)
	}
	return nil
}
