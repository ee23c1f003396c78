package domain

import (
	"time"

	"gorm.io/gorm"
)

// RefreshToken stores refresh tokens for sessions.
//
// Only the SHA-256 hash of the token is stored. Refresh rotates tokens:
// the old one is revoked and points at its replacement.
type RefreshToken struct {
	ID        string `json:"id" gorm:"primaryKey;size:36"`
	UserID    string `json:"user_id" gorm:"size:36;index;not null"`
	SessionID string `json:"session_id" gorm:"size:26;index;not null"`

	TokenHash string `json:"-" gorm:"size:64;uniqueIndex;not null"`

	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt time.Time  `json:"expires_at" gorm:"index;not null"`
	RevokedAt *time.Time `json:"revoked_at" gorm:"index"`

	ReplacedByID *string `json:"replaced_by_id" gorm:"size:36"`
}

func (t *RefreshToken) BeforeCreate(*gorm.DB) error {
	ensureID(&t.ID)
	return nil
}

func (t *RefreshToken) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

func (t *RefreshToken) IsRevoked() bool {
	return t.RevokedAt != nil
}
