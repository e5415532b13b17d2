package services_test

import (
	"context"
	"errors"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"cardkeep/internal/apperr"
	"cardkeep/internal/models"
	"cardkeep/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Insert(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) SetCollection(ctx context.Context, email string, cards []models.CardRef) error {
	return m.Called(ctx, email, cards).Error(0)
}

func (m *MockUserRepository) AppendDeck(ctx context.Context, email string, deck models.Deck) error {
	return m.Called(ctx, email, deck).Error(0)
}

func (m *MockUserRepository) RemoveDeck(ctx context.Context, email, name string) error {
	return m.Called(ctx, email, name).Error(0)
}

func (m *MockUserRepository) ReplaceDeckByName(ctx context.Context, email, name string, deck models.Deck) error {
	return m.Called(ctx, email, name, deck).Error(0)
}

func (m *MockUserRepository) SetPasswordHash(ctx context.Context, email, hash string) error {
	return m.Called(ctx, email, hash).Error(0)
}

// MockNotifier is a mock implementation of services.Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendPasswordReset(ctx context.Context, email, link string) error {
	return m.Called(ctx, email, link).Error(0)
}

// TestMain silences the global logger for cleaner output
func TestMain(m *testing.M) {
	zap.ReplaceGlobals(zap.NewNop())
	os.Exit(m.Run())
}

const testJWTSecret = "test_jwt_secret"

func newAccountService(t *testing.T, repo *MockUserRepository, notifier *MockNotifier, algorithm string) (*services.AccountService, *services.TokenService) {
	t.Helper()
	hasher, err := services.NewPasswordHasher(algorithm)
	require.NoError(t, err)
	tokens := services.NewTokenService(testJWTSecret)
	svc := services.NewAccountService(repo, hasher, tokens, notifier, services.AccountConfig{
		SessionTTL:  24 * time.Hour,
		ResetTTL:    30 * time.Minute,
		FrontendURL: "http://localhost:5173",
	})
	return svc, tokens
}

func TestAccountService_Register(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	svc, _ := newAccountService(t, mockRepo, new(MockNotifier), "bcrypt")

	// Test successful registration with a normalized email and default name
	mockRepo.On("FindByEmail", mock.Anything, "ash@example.com").Return(nil, apperr.ErrNotFound).Once()
	mockRepo.On("Insert", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
		return u.Email == "ash@example.com" &&
			u.Name == models.DefaultDisplayName &&
			u.PasswordHash != "" && u.PasswordHash != "pikachu" &&
			len(u.Collection) == 0 && len(u.Decks) == 0
	})).Return(nil).Once()

	user, err := svc.Register(ctx, "  ", "  Ash@Example.com ", "pikachu")
	require.NoError(t, err)
	assert.Equal(t, "ash@example.com", user.Email)
	mockRepo.AssertExpectations(t)

	// Test email already registered
	mockRepo.On("FindByEmail", mock.Anything, "ash@example.com").Return(&models.User{Email: "ash@example.com"}, nil).Once()
	_, err = svc.Register(ctx, "Ash", "ash@example.com", "pikachu")
	assert.ErrorIs(t, err, apperr.ErrDuplicateEmail)
	mockRepo.AssertExpectations(t)

	// Test a store failure is passed through
	mockRepo.On("FindByEmail", mock.Anything, "misty@example.com").Return(nil, apperr.ErrStore).Once()
	_, err = svc.Register(ctx, "Misty", "misty@example.com", "starmie")
	assert.ErrorIs(t, err, apperr.ErrStore)

	// Test missing password
	_, err = svc.Register(ctx, "Brock", "brock@example.com", "")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestAccountService_Login(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	svc, tokens := newAccountService(t, mockRepo, new(MockNotifier), "bcrypt")

	hasher, _ := services.NewPasswordHasher("bcrypt")
	hash, err := hasher.Hash("pikachu")
	require.NoError(t, err)
	user := &models.User{ID: "user-123", Name: "Ash", Email: "ash@example.com", PasswordHash: hash}

	// Test successful login
	mockRepo.On("FindByEmail", mock.Anything, "ash@example.com").Return(user, nil).Once()
	result, err := svc.Login(ctx, "ASH@example.com", "pikachu")
	require.NoError(t, err)
	assert.Equal(t, "Ash", result.Name)
	subject, err := tokens.Verify(result.Token, services.PurposeSession)
	require.NoError(t, err)
	assert.Equal(t, "ash@example.com", subject)

	// Test invalid credentials (wrong password)
	mockRepo.On("FindByEmail", mock.Anything, "ash@example.com").Return(user, nil).Once()
	_, err = svc.Login(ctx, "ash@example.com", "raichu")
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)

	// Test invalid credentials (user not found) is indistinguishable
	mockRepo.On("FindByEmail", mock.Anything, "gary@example.com").Return(nil, apperr.ErrNotFound).Once()
	_, err = svc.Login(ctx, "gary@example.com", "pikachu")
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)
	mockRepo.AssertExpectations(t)
}

func TestAccountService_LoginUpgradesHash(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	svc, _ := newAccountService(t, mockRepo, new(MockNotifier), "argon2id")

	bcryptHasher, _ := services.NewPasswordHasher("bcrypt")
	hash, err := bcryptHasher.Hash("pikachu")
	require.NoError(t, err)
	user := &models.User{ID: "user-123", Email: "ash@example.com", PasswordHash: hash}

	mockRepo.On("FindByEmail", mock.Anything, "ash@example.com").Return(user, nil).Once()
	mockRepo.On("SetPasswordHash", mock.Anything, "ash@example.com", mock.MatchedBy(func(h string) bool {
		return strings.HasPrefix(h, "$argon2id$")
	})).Return(errors.New("disk full")).Once()

	// A failed upgrade does not fail the login
	result, err := svc.Login(ctx, "ash@example.com", "pikachu")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultDisplayName, result.Name)
	mockRepo.AssertExpectations(t)
}

func TestAccountService_RequestPasswordReset(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	mockNotifier := new(MockNotifier)
	svc, tokens := newAccountService(t, mockRepo, mockNotifier, "bcrypt")

	var link string
	mockRepo.On("FindByEmail", mock.Anything, "ash@example.com").Return(&models.User{Email: "ash@example.com"}, nil)
	mockNotifier.On("SendPasswordReset", mock.Anything, "ash@example.com", mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) { link = args.String(2) }).
		Return(nil).Once()

	require.NoError(t, svc.RequestPasswordReset(ctx, "ash@example.com"))
	assert.True(t, strings.HasPrefix(link, "http://localhost:5173/reset-password?token="), link)

	parsed, err := url.Parse(link)
	require.NoError(t, err)
	subject, err := tokens.Verify(parsed.Query().Get("token"), services.PurposeReset)
	require.NoError(t, err)
	assert.Equal(t, "ash@example.com", subject)

	// Test delivery failure surfaces as an upstream error
	mockNotifier.On("SendPasswordReset", mock.Anything, "ash@example.com", mock.AnythingOfType("string")).
		Return(errors.New("connection refused")).Once()
	err = svc.RequestPasswordReset(ctx, "ash@example.com")
	assert.ErrorIs(t, err, apperr.ErrUpstream)

	// Test unknown email
	mockRepo.On("FindByEmail", mock.Anything, "gary@example.com").Return(nil, apperr.ErrNotFound).Once()
	err = svc.RequestPasswordReset(ctx, "gary@example.com")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	mockNotifier.AssertExpectations(t)
}

func TestAccountService_ResetPassword(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	svc, tokens := newAccountService(t, mockRepo, new(MockNotifier), "bcrypt")

	resetToken, err := tokens.Issue("ash@example.com", services.PurposeReset, 30*time.Minute)
	require.NoError(t, err)

	mockRepo.On("SetPasswordHash", mock.Anything, "ash@example.com", mock.AnythingOfType("string")).Return(nil).Once()
	require.NoError(t, svc.ResetPassword(ctx, resetToken, "raichu"))
	mockRepo.AssertExpectations(t)

	// A session token cannot reset a password
	sessionToken, err := tokens.Issue("ash@example.com", services.PurposeSession, time.Hour)
	require.NoError(t, err)
	err = svc.ResetPassword(ctx, sessionToken, "raichu")
	assert.ErrorIs(t, err, apperr.ErrInvalidToken)

	// Test unknown account
	mockRepo.On("SetPasswordHash", mock.Anything, "ash@example.com", mock.AnythingOfType("string")).Return(apperr.ErrNotFound).Once()
	err = svc.ResetPassword(ctx, resetToken, "raichu")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	// Test garbage token
	err = svc.ResetPassword(ctx, "not.a.token", "raichu")
	assert.ErrorIs(t, err, apperr.ErrInvalidToken)
}
