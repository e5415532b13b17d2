package services

import (
	"fmt"
	"time"

	"cardkeep/internal/apperr"

	"github.com/dgrijalva/jwt-go"
)

// TokenPurpose tells a session token apart from a password reset token.
type TokenPurpose string

const (
	PurposeSession TokenPurpose = "session"
	PurposeReset   TokenPurpose = "reset"
)

// tokenClaims is the JWT payload. The subject is the account email.
type tokenClaims struct {
	jwt.StandardClaims
	Purpose TokenPurpose `json:"typ"`
}

// TokenService issues and verifies HS256 bearer tokens. Tokens are stateless:
// nothing is stored, so a token stays valid until it expires.
type TokenService struct {
	secret []byte
	now    func() time.Time
	parser *jwt.Parser
}

// NewTokenService creates a TokenService signing with secret.
func NewTokenService(secret string) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		now:    time.Now,
		// Expiry is checked by Verify against s.now so the clock can be swapped.
		parser: &jwt.Parser{
			ValidMethods:         []string{jwt.SigningMethodHS256.Alg()},
			SkipClaimsValidation: true,
		},
	}
}

// WithClock replaces the time source. It is meant for tests.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	s.now = now
	return s
}

// Issue signs a token for subject that expires ttl from now. The exp claim
// has whole-second precision, so a fractional expiry is rounded up.
func (s *TokenService) Issue(subject string, purpose TokenPurpose, ttl time.Duration) (string, error) {
	now := s.now()
	exp := now.Add(ttl)
	if exp.Nanosecond() != 0 {
		exp = exp.Truncate(time.Second).Add(time.Second)
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		StandardClaims: jwt.StandardClaims{
			Subject:   subject,
			IssuedAt:  now.Unix(),
			ExpiresAt: exp.Unix(),
		},
		Purpose: purpose,
	})

	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// Verify checks the signature, expiry and purpose of tokenString and returns
// its subject.
func (s *TokenService) Verify(tokenString string, purpose TokenPurpose) (string, error) {
	var claims tokenClaims
	token, err := s.parser.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", fmt.Errorf("%w: %v", apperr.ErrInvalidToken, err)
	}

	if claims.ExpiresAt == 0 || claims.Subject == "" {
		return "", fmt.Errorf("%w: missing exp or sub claim", apperr.ErrInvalidToken)
	}
	if !s.now().Before(time.Unix(claims.ExpiresAt, 0)) {
		return "", apperr.ErrExpiredToken
	}
	if claims.Purpose != purpose {
		return "", fmt.Errorf("%w: %q token used where %q is required", apperr.ErrInvalidToken, claims.Purpose, purpose)
	}
	return claims.Subject, nil
}
