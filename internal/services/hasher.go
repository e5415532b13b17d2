package services

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"cardkeep/internal/apperr"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

const argon2idPrefix = "$argon2id$"

// MaxPasswordBytes is bcrypt's input limit. It applies to both encodings so a
// password stays valid when the preferred algorithm changes.
const MaxPasswordBytes = 72

// argon2id parameters for new hashes.
const (
	argon2Time    = 1
	argon2Memory  = 64 * 1024
	argon2Threads = 4
	argon2SaltLen = 16
	argon2KeyLen  = 32
)

// ErrEmptyPassword is returned when hashing an empty password.
var ErrEmptyPassword = errors.New("password cannot be empty")

// PasswordHasher hashes and verifies passwords. The salt is embedded in the
// returned string.
type PasswordHasher interface {
	Hash(password string) (string, error)
	// Verify returns (false, nil) on mismatch and an error only for a malformed hash.
	Verify(password, hash string) (bool, error)
	// NeedsUpgrade reports whether hash is not in the preferred encoding.
	NeedsUpgrade(hash string) bool
}

// DualHasher writes hashes with one algorithm and verifies both bcrypt and
// argon2id, so the algorithm can change without invalidating stored hashes.
type DualHasher struct {
	preferArgon bool
	bcryptCost  int
}

// NewPasswordHasher returns a hasher writing algorithm ("bcrypt" or "argon2id").
func NewPasswordHasher(algorithm string) (*DualHasher, error) {
	switch algorithm {
	case "bcrypt":
		return &DualHasher{bcryptCost: bcrypt.DefaultCost}, nil
	case "argon2id":
		return &DualHasher{preferArgon: true, bcryptCost: bcrypt.DefaultCost}, nil
	default:
		return nil, fmt.Errorf("unsupported password hasher %q", algorithm)
	}
}

// Hash produces a salted hash of password in the preferred encoding.
func (h *DualHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	if len(password) > MaxPasswordBytes {
		return "", fmt.Errorf("%w: password cannot be longer than %d bytes", apperr.ErrValidation, MaxPasswordBytes)
	}
	if h.preferArgon {
		return hashArgon2id(password)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.bcryptCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify checks password against a bcrypt or argon2id hash.
func (h *DualHasher) Verify(password, hash string) (bool, error) {
	if strings.HasPrefix(hash, argon2idPrefix) {
		return verifyArgon2id(password, hash)
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("invalid password hash: %w", err)
	}
}

// NeedsUpgrade reports whether hash was written by the other algorithm.
func (h *DualHasher) NeedsUpgrade(hash string) bool {
	return strings.HasPrefix(hash, argon2idPrefix) != h.preferArgon
}

func hashArgon2id(password string) (string, error) {
	salt := make([]byte, argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	key := argon2.IDKey([]byte(password), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)

	// $argon2id$v=19$m=65536,t=1,p=4$<salt>$<hash>
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argon2Memory, argon2Time, argon2Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

func verifyArgon2id(password, encoded string) (bool, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 {
		return false, errors.New("invalid hash format")
	}

	var memory, iterations, threads uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &threads); err != nil {
		return false, fmt.Errorf("invalid hash parameters: %w", err)
	}
	if iterations == 0 || memory == 0 {
		return false, fmt.Errorf("invalid hash cost t=%d m=%d", iterations, memory)
	}
	if threads == 0 || threads > 255 {
		return false, fmt.Errorf("invalid hash parallelism %d", threads)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, fmt.Errorf("invalid hash salt: %w", err)
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, fmt.Errorf("invalid hash key: %w", err)
	}
	if len(want) == 0 || len(want) > 1024 {
		return false, fmt.Errorf("invalid hash key length %d", len(want))
	}

	got := argon2.IDKey([]byte(password), salt, iterations, memory, uint8(threads), uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}
