package models

import "time"

// User holds the credentials behind the authentication endpoint.
type User struct {
	ID           string `gorm:"primaryKey;size:36"`
	Email        string `gorm:"size:255;uniqueIndex;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	FailedLoginAttempts int        `gorm:"default:0"` // 连续登录失败次数
	LockedUntil         *time.Time `gorm:"index"`     // 账户锁定到期时间
	LastLoginAt         *time.Time // 最近登录时间

	ResetTokenHash string     `gorm:"size:64;index"` // 重置密码令牌摘要
	ResetExpiresAt *time.Time // 令牌过期时间
}
