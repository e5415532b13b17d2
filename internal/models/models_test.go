package models_test

import (
	"fmt"
	"testing"

	"cardkeep/internal/apperr"
	"cardkeep/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cards(n int) []models.CardRef {
	out := make([]models.CardRef, n)
	for i := range out {
		out[i] = models.CardRef{ID: fmt.Sprintf("GD01-%03d", i+1), Count: 1}
	}
	return out
}

func TestValidateDeck(t *testing.T) {
	assert.NoError(t, models.ValidateDeck("Aggro", cards(1)))
	assert.NoError(t, models.ValidateDeck("Aggro", cards(models.MaxDeckCards)))

	err := models.ValidateDeck("Aggro", cards(models.MaxDeckCards+1))
	assert.ErrorIs(t, err, apperr.ErrValidation)

	assert.ErrorIs(t, models.ValidateDeck("  ", cards(3)), apperr.ErrValidation)
	assert.ErrorIs(t, models.ValidateDeck("Aggro", nil), apperr.ErrValidation)
	assert.ErrorIs(t, models.ValidateDeck("Aggro", []models.CardRef{{ID: ""}}), apperr.ErrValidation)
}

func TestValidateCollection(t *testing.T) {
	assert.NoError(t, models.ValidateCollection([]models.CardRef{}))
	assert.ErrorIs(t, models.ValidateCollection(nil), apperr.ErrValidation)
	assert.ErrorIs(t, models.ValidateCollection([]models.CardRef{{Name: "no id"}}), apperr.ErrValidation)
}

func TestDeckListColumn(t *testing.T) {
	decks := models.DeckList{{ID: "d1", Name: "Deck1", Cards: cards(2)}}
	raw, err := decks.Value()
	require.NoError(t, err)

	var scanned models.DeckList
	require.NoError(t, scanned.Scan([]byte(raw.(string))))
	assert.Equal(t, "Deck1", scanned[0].Name)
	assert.Len(t, scanned[0].Cards, 2)

	var empty models.DeckList
	require.NoError(t, empty.Scan(nil))
	assert.NotNil(t, empty)
	assert.Len(t, empty, 0)

	assert.Error(t, empty.Scan(42))
}

func TestUserCloneIsDeep(t *testing.T) {
	u := &models.User{
		Email:      "a@x.com",
		Collection: models.CardList(cards(1)),
		Decks:      models.DeckList{{Name: "Deck1", Cards: cards(1)}},
	}
	c := u.Clone()
	c.Collection[0].ID = "changed"
	c.Decks[0].Cards[0].ID = "changed"
	c.Decks[0].Name = "renamed"

	assert.Equal(t, "GD01-001", u.Collection[0].ID)
	assert.Equal(t, "GD01-001", u.Decks[0].Cards[0].ID)
	assert.Equal(t, "Deck1", u.Decks[0].Name)
}

func TestDisplayNameAndEnrich(t *testing.T) {
	assert.Equal(t, models.DefaultDisplayName, (&models.User{}).DisplayName())
	assert.Equal(t, "A", (&models.User{Name: "A"}).DisplayName())

	e := models.Enrich(models.CardRef{ID: "C1"}, models.Card{ID: "C1", Name: "Zaku", ImageURL: "http://img/c1.png"})
	assert.Equal(t, "Zaku", e.Name)
	assert.Equal(t, "http://img/c1.png", e.ImageURL)

	blank := models.Enrich(models.CardRef{ID: "C9", Name: "Mine"}, models.Card{})
	assert.Equal(t, "Mine", blank.Name)
	assert.Empty(t, blank.ImageURL)
	assert.Empty(t, blank.SetName)
	assert.Empty(t, blank.CardType)
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "a@x.com", models.NormalizeEmail("  A@X.com "))
}
