package handlers

import (
	"fmt"
	"net/url"

	"cardkeep/internal/apperr"
	"cardkeep/internal/middleware"
	"cardkeep/internal/models"
	"cardkeep/internal/services"

	"github.com/gofiber/fiber/v2"
)

var deckNotFound = details{apperr.ErrNotFound: "Deck not found."}

// DeckHandler handles HTTP requests for decks.
type DeckHandler struct {
	deckService *services.DeckService
	tokens      *services.TokenService
	validator   *requestValidator
}

// NewDeckHandler creates a new DeckHandler.
func NewDeckHandler(deckService *services.DeckService, tokens *services.TokenService) *DeckHandler {
	return &DeckHandler{
		deckService: deckService,
		tokens:      tokens,
		validator:   newRequestValidator(),
	}
}

// RegisterRoutes registers the deck routes with the Fiber app.
func (h *DeckHandler) RegisterRoutes(router fiber.Router) {
	authRequired := middleware.AuthRequired(h.tokens)
	router.Post("/auth/decks", authRequired, h.HandleCreateDeck)

	deckRoutes := router.Group("/auth/users/decks", authRequired)
	deckRoutes.Get("/", h.HandleListDecks)
	deckRoutes.Get("/:name", h.HandleGetDeck)
	deckRoutes.Put("/:name", h.HandleUpdateDeck)
	deckRoutes.Delete("/:name", h.HandleDeleteDeck)
}

// CreateDeckRequest represents the request body for a new deck.
type CreateDeckRequest struct {
	Name  string           `json:"name" validate:"required,max=100"`
	Cards []models.CardRef `json:"cards" validate:"required,min=1,max=50,dive"`
}

// UpdateDeckRequest replaces a deck. An empty name keeps the current one.
type UpdateDeckRequest struct {
	Name  string           `json:"name" validate:"max=100"`
	Cards []models.CardRef `json:"cards" validate:"required,min=1,max=50,dive"`
}

// deckName returns the unescaped :name path parameter.
func deckName(c *fiber.Ctx) (string, error) {
	name, err := url.PathUnescape(c.Params("name"))
	if err != nil {
		return "", fmt.Errorf("%w: malformed deck name", apperr.ErrValidation)
	}
	return name, nil
}

// HandleCreateDeck appends a new deck for the caller.
func (h *DeckHandler) HandleCreateDeck(c *fiber.Ctx) error {
	var req CreateDeckRequest
	if err := h.validator.bind(c, &req); err != nil {
		return respondError(c, err, nil)
	}

	deck, err := h.deckService.Save(c.UserContext(), middleware.UserEmail(c), req.Name, req.Cards)
	if err != nil {
		return respondError(c, err, details{apperr.ErrNotFound: "User not found."})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Deck saved.",
		"deck":    deck,
	})
}

// HandleListDecks returns the caller's decks without catalog fields.
func (h *DeckHandler) HandleListDecks(c *fiber.Ctx) error {
	decks, err := h.deckService.List(c.UserContext(), middleware.UserEmail(c))
	if err != nil {
		return respondError(c, err, details{apperr.ErrNotFound: "User not found."})
	}
	return c.JSON(fiber.Map{"decks": decks})
}

// HandleGetDeck returns one deck enriched from the catalog.
func (h *DeckHandler) HandleGetDeck(c *fiber.Ctx) error {
	name, err := deckName(c)
	if err != nil {
		return respondError(c, err, nil)
	}

	deck, err := h.deckService.GetByName(c.UserContext(), middleware.UserEmail(c), name)
	if err != nil {
		return respondError(c, err, deckNotFound)
	}
	return c.JSON(fiber.Map{"deck": deck})
}

// HandleUpdateDeck replaces a deck's name and cards.
func (h *DeckHandler) HandleUpdateDeck(c *fiber.Ctx) error {
	name, err := deckName(c)
	if err != nil {
		return respondError(c, err, nil)
	}
	var req UpdateDeckRequest
	if err := h.validator.bind(c, &req); err != nil {
		return respondError(c, err, nil)
	}
	newName := req.Name
	if newName == "" {
		newName = name
	}

	deck, err := h.deckService.Update(c.UserContext(), middleware.UserEmail(c), name, newName, req.Cards)
	if err != nil {
		return respondError(c, err, deckNotFound)
	}
	return c.JSON(fiber.Map{
		"message": "Deck updated.",
		"deck":    deck,
	})
}

// HandleDeleteDeck removes a deck.
func (h *DeckHandler) HandleDeleteDeck(c *fiber.Ctx) error {
	name, err := deckName(c)
	if err != nil {
		return respondError(c, err, nil)
	}

	if err := h.deckService.Delete(c.UserContext(), middleware.UserEmail(c), name); err != nil {
		return respondError(c, err, deckNotFound)
	}
	return c.JSON(fiber.Map{"message": "Deck deleted."})
}
