package handlers

import (
	"cardkeep/internal/apperr"
	"cardkeep/internal/middleware"
	"cardkeep/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for accounts and password reset.
type AuthHandler struct {
	accountService *services.AccountService
	tokens         *services.TokenService
	limiter        fiber.Handler
	validator      *requestValidator
}

// NewAuthHandler creates a new AuthHandler. limiter guards the public
// credential endpoints; nil disables it.
func NewAuthHandler(accountService *services.AccountService, tokens *services.TokenService, limiter fiber.Handler) *AuthHandler {
	if limiter == nil {
		limiter = func(c *fiber.Ctx) error { return c.Next() }
	}
	return &AuthHandler{
		accountService: accountService,
		tokens:         tokens,
		limiter:        limiter,
		validator:      newRequestValidator(),
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/register", h.limiter, h.HandleRegister)
	authRoutes.Post("/login", h.limiter, h.HandleLogin)
	authRoutes.Post("/forgot-password", h.limiter, h.HandleForgotPassword)
	authRoutes.Post("/reset-password", h.limiter, h.HandleResetPassword)
	authRoutes.Get("/me", middleware.AuthRequired(h.tokens), h.HandleMe)
}

// RegisterRequest represents the request body for registration.
type RegisterRequest struct {
	Name     string `json:"name" validate:"max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,max=72"`
}

// HandleRegister handles new user registration.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := h.validator.bind(c, &req); err != nil {
		return respondError(c, err, nil)
	}

	if _, err := h.accountService.Register(c.UserContext(), req.Name, req.Email, req.Password); err != nil {
		return respondError(c, err, nil)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully.",
	})
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,max=255"`
	Password string `json:"password" validate:"required,max=72"`
}

// HandleLogin handles user login and issues a session token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := h.validator.bind(c, &req); err != nil {
		return respondError(c, err, nil)
	}

	result, err := h.accountService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return respondError(c, err, nil)
	}

	return c.JSON(fiber.Map{
		"access_token": result.Token,
		"token_type":   "bearer",
		"name":         result.Name,
	})
}

// ForgotPasswordRequest represents the request body for a reset link.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
}

// HandleForgotPassword issues a reset token and mails the link.
func (h *AuthHandler) HandleForgotPassword(c *fiber.Ctx) error {
	var req ForgotPasswordRequest
	if err := h.validator.bind(c, &req); err != nil {
		return respondError(c, err, nil)
	}

	if err := h.accountService.RequestPasswordReset(c.UserContext(), req.Email); err != nil {
		return respondError(c, err, details{
			apperr.ErrNotFound: "Email not found.",
			apperr.ErrUpstream: "Failed to send email.",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Password reset link sent to your email.",
	})
}

// ResetPasswordRequest represents the request body for setting a new password.
type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,max=72"`
}

// HandleResetPassword verifies a reset token and stores the new password.
func (h *AuthHandler) HandleResetPassword(c *fiber.Ctx) error {
	var req ResetPasswordRequest
	if err := h.validator.bind(c, &req); err != nil {
		return respondError(c, err, nil)
	}

	if err := h.accountService.ResetPassword(c.UserContext(), req.Token, req.NewPassword); err != nil {
		return respondError(c, err, details{
			apperr.ErrNotFound: "User not found.",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Password reset successful.",
	})
}

// HandleMe returns the caller's profile.
func (h *AuthHandler) HandleMe(c *fiber.Ctx) error {
	user, err := h.accountService.Profile(c.UserContext(), middleware.UserEmail(c))
	if err != nil {
		return respondError(c, err, details{
			apperr.ErrNotFound: "User not found.",
		})
	}

	return c.JSON(fiber.Map{
		"name":       user.DisplayName(),
		"email":      user.Email,
		"collection": user.Collection,
		"decks":      user.Decks,
	})
}
