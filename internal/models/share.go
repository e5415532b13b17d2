package models

import "time"

// ShareRecord maps a public share id to the account whose collection it exposes.
type ShareRecord struct {
	ShareID   string    `json:"share_id" gorm:"primaryKey;type:varchar(10)"`
	Email     string    `json:"-" gorm:"index;type:varchar(255);not null"`
	OwnerName string    `json:"owner_name" gorm:"type:varchar(100)"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SharedCollection is the read-only view served for a share id.
type SharedCollection struct {
	OwnerName string    `json:"owner_name"`
	Cards     []CardRef `json:"cards"`
}
