package models

import (
	"fmt"
	"strings"
	"time"

	"cardkeep/internal/apperr"
)

// MaxDeckCards bounds the number of card entries in a deck.
const MaxDeckCards = 50

// MaxCollectionCards bounds the number of entries in a collection.
const MaxCollectionCards = 5000

// Deck is a named, ordered list of card references owned by one user.
type Deck struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Cards     []CardRef `json:"cards"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EnrichedDeck is a Deck whose cards carry catalog display fields.
type EnrichedDeck struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Cards     []EnrichedCard `json:"cards"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// ValidateDeck checks the name and card bounds shared by every deck write.
func ValidateDeck(name string, cards []CardRef) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: deck name is required", apperr.ErrValidation)
	}
	if len(cards) == 0 {
		return fmt.Errorf("%w: deck must contain at least one card", apperr.ErrValidation)
	}
	if len(cards) > MaxDeckCards {
		return fmt.Errorf("%w: deck cannot contain more than %d cards (got %d)", apperr.ErrValidation, MaxDeckCards, len(cards))
	}
	for i, c := range cards {
		if strings.TrimSpace(c.ID) == "" {
			return fmt.Errorf("%w: card %d has no id", apperr.ErrValidation, i)
		}
	}
	return nil
}

// ValidateCollection checks a full collection before it replaces the stored one.
func ValidateCollection(cards []CardRef) error {
	if cards == nil {
		return fmt.Errorf("%w: cards must be a list", apperr.ErrValidation)
	}
	if len(cards) > MaxCollectionCards {
		return fmt.Errorf("%w: collection cannot contain more than %d cards", apperr.ErrValidation, MaxCollectionCards)
	}
	for i, c := range cards {
		if strings.TrimSpace(c.ID) == "" {
			return fmt.Errorf("%w: card %d has no id", apperr.ErrValidation, i)
		}
	}
	return nil
}
