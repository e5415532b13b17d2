package repositories

import (
	"fmt"
	"time"

	"cardkeep/internal/apperr"
	"cardkeep/internal/models"

	"github.com/google/uuid"
)

// The helpers below apply one deck mutation to an in-memory copy of the user.
// Both repository implementations persist the result their own way.

func appendDeck(user *models.User, deck models.Deck, now time.Time) error {
	if err := models.ValidateDeck(deck.Name, deck.Cards); err != nil {
		return err
	}
	if user.DeckByName(deck.Name) >= 0 {
		return fmt.Errorf("%w: %q", apperr.ErrDuplicateDeck, deck.Name)
	}
	if deck.ID == "" {
		deck.ID = uuid.New().String()
	}
	if deck.CreatedAt.IsZero() {
		deck.CreatedAt = now
	}
	deck.UpdatedAt = now
	deck.Cards = append([]models.CardRef(nil), deck.Cards...)
	user.Decks = append(user.Decks, deck)
	return nil
}

func removeDeck(user *models.User, name string) error {
	i := user.DeckByName(name)
	if i < 0 {
		return fmt.Errorf("deck %q: %w", name, apperr.ErrNotFound)
	}
	user.Decks = append(user.Decks[:i], user.Decks[i+1:]...)
	return nil
}

func replaceDeck(user *models.User, name string, deck models.Deck, now time.Time) error {
	i := user.DeckByName(name)
	if i < 0 {
		return fmt.Errorf("deck %q: %w", name, apperr.ErrNotFound)
	}
	if err := models.ValidateDeck(deck.Name, deck.Cards); err != nil {
		return err
	}
	if deck.Name != name && user.DeckByName(deck.Name) >= 0 {
		return fmt.Errorf("%w: %q", apperr.ErrDuplicateDeck, deck.Name)
	}
	current := user.Decks[i]
	current.Name = deck.Name
	current.Cards = append([]models.CardRef(nil), deck.Cards...)
	current.UpdatedAt = now
	user.Decks[i] = current
	return nil
}
