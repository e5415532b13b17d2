package handlers

import (
	"cardkeep/internal/apperr"
	"cardkeep/internal/middleware"
	"cardkeep/internal/models"
	"cardkeep/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CollectionHandler handles HTTP requests for collections and share links.
type CollectionHandler struct {
	collectionService *services.CollectionService
	sharingService    *services.SharingService
	tokens            *services.TokenService
	validator         *requestValidator
}

// NewCollectionHandler creates a new CollectionHandler.
func NewCollectionHandler(collectionService *services.CollectionService, sharingService *services.SharingService, tokens *services.TokenService) *CollectionHandler {
	return &CollectionHandler{
		collectionService: collectionService,
		sharingService:    sharingService,
		tokens:            tokens,
		validator:         newRequestValidator(),
	}
}

// RegisterRoutes registers the collection routes with the Fiber app.
func (h *CollectionHandler) RegisterRoutes(router fiber.Router) {
	collectionRoutes := router.Group("/auth/collection")
	// Public: resolving a share link needs no token.
	collectionRoutes.Get("/shared/:shareId", h.HandleGetShared)

	authRequired := middleware.AuthRequired(h.tokens)
	collectionRoutes.Get("/", authRequired, h.HandleGetCollection)
	collectionRoutes.Post("/", authRequired, h.HandleSaveCollection)
	collectionRoutes.Post("/share", authRequired, h.HandleShare)
}

// SaveCollectionRequest replaces the caller's whole collection.
type SaveCollectionRequest struct {
	Cards []models.CardRef `json:"cards" validate:"required,max=5000,dive"`
}

// HandleGetCollection returns the caller's collection.
func (h *CollectionHandler) HandleGetCollection(c *fiber.Ctx) error {
	cards, err := h.collectionService.Get(c.UserContext(), middleware.UserEmail(c))
	if err != nil {
		return respondError(c, err, details{apperr.ErrNotFound: "User not found."})
	}
	return c.JSON(fiber.Map{"cards": cards})
}

// HandleSaveCollection replaces the caller's collection.
func (h *CollectionHandler) HandleSaveCollection(c *fiber.Ctx) error {
	var req SaveCollectionRequest
	if err := h.validator.bind(c, &req); err != nil {
		return respondError(c, err, nil)
	}

	if err := h.collectionService.Save(c.UserContext(), middleware.UserEmail(c), req.Cards); err != nil {
		return respondError(c, err, details{apperr.ErrNotFound: "User not found."})
	}
	return c.JSON(fiber.Map{
		"message": "Collection saved.",
		"count":   len(req.Cards),
	})
}

// HandleShare creates or refreshes the caller's share link.
func (h *CollectionHandler) HandleShare(c *fiber.Ctx) error {
	shareID, err := h.sharingService.CreateOrRefresh(c.UserContext(), middleware.UserEmail(c))
	if err != nil {
		return respondError(c, err, details{apperr.ErrNotFound: "User not found."})
	}
	return c.JSON(fiber.Map{"share_id": shareID})
}

// HandleGetShared resolves a share id to a read-only collection.
func (h *CollectionHandler) HandleGetShared(c *fiber.Ctx) error {
	shared, err := h.sharingService.Resolve(c.UserContext(), c.Params("shareId"))
	if err != nil {
		return respondError(c, err, details{apperr.ErrNotFound: "Shared collection not found."})
	}
	return c.JSON(fiber.Map{
		"cards":      shared.Cards,
		"owner_name": shared.OwnerName,
	})
}
