package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction 表示一笔收支记录；金额带符号，收入为正、支出为负
type Transaction struct {
	ID          string          `gorm:"primaryKey;size:36"`
	UserID      string          `gorm:"size:36;index;not null"`
	Date        time.Time       `gorm:"index;not null"`
	Type        string          `gorm:"size:16;not null"` // income / expense
	Category    string          `gorm:"size:64;not null"`
	Description string          `gorm:"size:255"`
	Amount      decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
