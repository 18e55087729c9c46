package models

import "time"

// Session stores issued login sessions so that sign-out can revoke them.
type Session struct {
	ID        string    `gorm:"primaryKey;size:36"` // JWT "jti"
	UserID    string    `gorm:"size:36;index;not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
	Revoked   bool      `gorm:"index;not null"`
	CreatedAt time.Time

	User User `gorm:"constraint:OnDelete:CASCADE"`
}
