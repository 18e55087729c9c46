package models

import "time"

// Profile is one row of the profiles table, keyed by the user id.
type Profile struct {
	ID              string `gorm:"primaryKey;size:36"`
	Email           string `gorm:"size:255"`
	FullName        string `gorm:"size:128"`
	AvatarURL       string `gorm:"size:1024"`
	DefaultCurrency string `gorm:"size:8;default:BRL"`
	ThemePreference string `gorm:"size:8;default:dark"` // light / dark
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
