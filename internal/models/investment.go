package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Investment is one position of a user's mock portfolio.
type Investment struct {
	ID                string              `gorm:"primaryKey;size:36"`
	UserID            string              `gorm:"size:36;index;not null"`
	Ticker            string              `gorm:"size:16;index;not null"`
	CompanyName       string              `gorm:"size:128"`
	Quantity          decimal.Decimal     `gorm:"type:decimal(18,6);not null"`
	PurchasePrice     decimal.Decimal     `gorm:"type:decimal(14,2);not null"`
	PurchaseDate      time.Time           `gorm:"not null"`
	DividendFrequency string              `gorm:"size:32"`
	DividendAmount    decimal.NullDecimal `gorm:"type:decimal(14,4)"`
	CreatedAt         time.Time           `gorm:"index"`
	UpdatedAt         time.Time
}
