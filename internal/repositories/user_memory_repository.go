package repositories

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cardkeep/internal/apperr"
	"cardkeep/internal/models"

	"github.com/google/uuid"
)

// MemoryUserRepository is an in-memory implementation of UserRepository.
// Every mutation runs under the write lock, so writes never conflict.
type MemoryUserRepository struct {
	users map[string]*models.User
	mu    sync.RWMutex
	now   func() time.Time
}

// NewMemoryUserRepository creates a new instance of MemoryUserRepository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users: make(map[string]*models.User),
		now:   time.Now,
	}
}

// FindByEmail returns a copy of the user stored under email.
func (r *MemoryUserRepository) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[email]
	if !ok {
		return nil, fmt.Errorf("user with email %s: %w", email, apperr.ErrNotFound)
	}
	return user.Clone(), nil
}

// Insert stores a new user.
func (r *MemoryUserRepository) Insert(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.Email]; ok {
		return fmt.Errorf("%w: %s", apperr.ErrDuplicateEmail, user.Email)
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.Collection == nil {
		user.Collection = models.CardList{}
	}
	if user.Decks == nil {
		user.Decks = models.DeckList{}
	}
	now := r.now()
	user.CreatedAt, user.UpdatedAt = now, now
	user.Version = 1
	r.users[user.Email] = user.Clone()
	return nil
}

// SetCollection replaces the whole collection.
func (r *MemoryUserRepository) SetCollection(_ context.Context, email string, cards []models.CardRef) error {
	return r.mutate(email, func(u *models.User) error {
		u.Collection = models.CardList(cards).Clone()
		return nil
	})
}

// AppendDeck adds a new deck to the user's deck list.
func (r *MemoryUserRepository) AppendDeck(_ context.Context, email string, deck models.Deck) error {
	return r.mutate(email, func(u *models.User) error {
		return appendDeck(u, deck, r.now())
	})
}

// RemoveDeck deletes the deck called name.
func (r *MemoryUserRepository) RemoveDeck(_ context.Context, email, name string) error {
	return r.mutate(email, func(u *models.User) error {
		return removeDeck(u, name)
	})
}

// ReplaceDeckByName swaps the name and cards of the deck called name.
func (r *MemoryUserRepository) ReplaceDeckByName(_ context.Context, email, name string, deck models.Deck) error {
	return r.mutate(email, func(u *models.User) error {
		return replaceDeck(u, name, deck, r.now())
	})
}

// SetPasswordHash overwrites the stored password hash.
func (r *MemoryUserRepository) SetPasswordHash(_ context.Context, email, hash string) error {
	return r.mutate(email, func(u *models.User) error {
		u.PasswordHash = hash
		return nil
	})
}

func (r *MemoryUserRepository) mutate(email string, fn func(*models.User) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.users[email]
	if !ok {
		return fmt.Errorf("user with email %s: %w", email, apperr.ErrNotFound)
	}
	next := stored.Clone()
	if err := fn(next); err != nil {
		return err
	}
	next.Version++
	next.UpdatedAt = r.now()
	r.users[email] = next
	return nil
}
