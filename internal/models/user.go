package models

import (
	"strings"
	"time"
)

// DefaultDisplayName is used when a user registers without a name.
const DefaultDisplayName = "Anonymous"

// User is the account record. Email is the identity key; collection and decks
// live on the same row so every mutation is a single-row write.
type User struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name         string    `json:"name" gorm:"type:varchar(100)"`
	Email        string    `json:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	PasswordHash string    `json:"-" gorm:"column:password;type:varchar(255);not null"`
	Collection   CardList  `json:"collection" gorm:"type:text"`
	Decks        DeckList  `json:"decks" gorm:"type:text"`
	Version      int64     `json:"-" gorm:"not null;default:1"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// DisplayName returns the user's name, falling back to DefaultDisplayName.
func (u *User) DisplayName() string {
	if strings.TrimSpace(u.Name) == "" {
		return DefaultDisplayName
	}
	return u.Name
}

// DeckByName returns the index of the deck called name, or -1.
func (u *User) DeckByName(name string) int {
	for i := range u.Decks {
		if u.Decks[i].Name == name {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy so callers can mutate it without touching shared state.
func (u *User) Clone() *User {
	c := *u
	c.Collection = u.Collection.Clone()
	c.Decks = u.Decks.Clone()
	return &c
}

// NormalizeEmail trims and lower-cases an address before it is used as a key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
