package repositories

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"regexp"

	"cardkeep/internal/models"
)

// ShareIDLength is the number of hex characters kept from the email digest.
const ShareIDLength = 10

var shareIDPattern = regexp.MustCompile(`^[0-9a-f]{10}$`)

// ShareRepository defines the interface for share record access.
type ShareRepository interface {
	Upsert(ctx context.Context, record *models.ShareRecord) error
	FindByID(ctx context.Context, shareID string) (*models.ShareRecord, error)
}

// DeriveShareID returns the share id for email: the leading hex characters of
// its SHA-256 digest. The same email always maps to the same id.
func DeriveShareID(email string) string {
	sum := sha256.Sum256([]byte(email))
	return hex.EncodeToString(sum[:])[:ShareIDLength]
}

// ValidShareID reports whether id has the shape DeriveShareID produces.
func ValidShareID(id string) bool {
	return shareIDPattern.MatchString(id)
}
