package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"cardkeep/internal/apperr"
	"cardkeep/internal/models"
	"cardkeep/internal/repositories"

	"go.uber.org/zap"
)

// Notifier delivers a password reset link to an account's email address.
type Notifier interface {
	SendPasswordReset(ctx context.Context, email, link string) error
}

// AccountConfig holds the token lifetimes and link target used by AccountService.
type AccountConfig struct {
	SessionTTL  time.Duration
	ResetTTL    time.Duration
	FrontendURL string
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token string
	Name  string
}

// AccountService handles registration, login and password reset.
type AccountService struct {
	userRepo repositories.UserRepository
	hasher   PasswordHasher
	tokens   *TokenService
	notifier Notifier
	cfg      AccountConfig
}

// NewAccountService creates a new AccountService.
func NewAccountService(userRepo repositories.UserRepository, hasher PasswordHasher, tokens *TokenService, notifier Notifier, cfg AccountConfig) *AccountService {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	if cfg.ResetTTL <= 0 {
		cfg.ResetTTL = 30 * time.Minute
	}
	return &AccountService{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
		notifier: notifier,
		cfg:      cfg,
	}
}

// Register creates an account with an empty collection and no decks.
func (s *AccountService) Register(ctx context.Context, name, email, password string) (user *models.User, err error) {
	defer func() { AccountEvents.WithLabelValues("register", outcome(err)).Inc() }()

	email = models.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", apperr.ErrValidation)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = models.DefaultDisplayName
	}

	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("%w: %s", apperr.ErrDuplicateEmail, email)
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, apperr.ErrValidation) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user = &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Collection:   models.CardList{},
		Decks:        models.DeckList{},
	}
	if err := s.userRepo.Insert(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	zap.L().Info("User registered", zap.String("userID", user.ID))
	return user, nil
}

// Login checks credentials and issues a session token. Unknown emails and
// wrong passwords fail with the same error.
func (s *AccountService) Login(ctx context.Context, email, password string) (result *LoginResult, err error) {
	defer func() { AccountEvents.WithLabelValues("login", outcome(err)).Inc() }()

	email = models.NormalizeEmail(email)
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		zap.L().Error("Stored password hash is unreadable", zap.String("userID", user.ID), zap.Error(err))
		return nil, apperr.ErrInvalidCredentials
	}
	if !ok {
		return nil, apperr.ErrInvalidCredentials
	}

	if s.hasher.NeedsUpgrade(user.PasswordHash) {
		s.upgradeHash(ctx, user, password)
	}

	token, err := s.tokens.Issue(user.Email, PurposeSession, s.cfg.SessionTTL)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, Name: user.DisplayName()}, nil
}

// upgradeHash re-hashes password with the preferred algorithm. Failure is
// logged and does not affect the login.
func (s *AccountService) upgradeHash(ctx context.Context, user *models.User, password string) {
	hash, err := s.hasher.Hash(password)
	if err == nil {
		err = s.userRepo.SetPasswordHash(ctx, user.Email, hash)
	}
	if err != nil {
		zap.L().Warn("Failed to upgrade password hash", zap.String("userID", user.ID), zap.Error(err))
	}
}

// RequestPasswordReset issues a reset token for email and hands the reset
// link to the notifier. The token is stateless, so a delivery failure leaves
// nothing to roll back.
func (s *AccountService) RequestPasswordReset(ctx context.Context, email string) (err error) {
	defer func() { AccountEvents.WithLabelValues("reset_request", outcome(err)).Inc() }()

	email = models.NormalizeEmail(email)
	if _, err := s.userRepo.FindByEmail(ctx, email); err != nil {
		return err
	}

	token, err := s.tokens.Issue(email, PurposeReset, s.cfg.ResetTTL)
	if err != nil {
		return err
	}

	link := fmt.Sprintf("%s/reset-password?token=%s", s.cfg.FrontendURL, url.QueryEscape(token))
	if err := s.notifier.SendPasswordReset(ctx, email, link); err != nil {
		if errors.Is(err, apperr.ErrUpstream) {
			return err
		}
		return fmt.Errorf("failed to send email: %w: %v", apperr.ErrUpstream, err)
	}
	return nil
}

// ResetPassword verifies a reset token and stores a new hash for its subject.
// Reset tokens are not single-use; one can be replayed until it expires.
func (s *AccountService) ResetPassword(ctx context.Context, token, newPassword string) (err error) {
	defer func() { AccountEvents.WithLabelValues("reset", outcome(err)).Inc() }()

	if newPassword == "" {
		return fmt.Errorf("%w: new password is required", apperr.ErrValidation)
	}
	email, err := s.tokens.Verify(token, PurposeReset)
	if err != nil {
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		if errors.Is(err, apperr.ErrValidation) {
			return err
		}
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.userRepo.SetPasswordHash(ctx, email, hash); err != nil {
		return err
	}
	zap.L().Info("Password reset", zap.String("email", email))
	return nil
}

// Profile returns the account record for email.
func (s *AccountService) Profile(ctx context.Context, email string) (*models.User, error) {
	return s.userRepo.FindByEmail(ctx, email)
}
