package util

import (
	"fmt"
	"net/mail"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

var maxAmount = decimal.NewFromInt(10_000_000)

// ValidateAmount 验证录入金额（必须为正数且不超过上限）
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("amount must be positive, got %s", amount)
	}
	if amount.GreaterThanOrEqual(maxAmount) { // 限制最大金额为1千万
		return fmt.Errorf("amount too large, got %s", amount)
	}
	return nil
}

// ParseDate accepts RFC3339, a bare datetime or YYYY-MM-DD.
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("date is empty")
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date format: %q", s)
}

// ValidateCategory 验证分类（不能为空且长度合理）
func ValidateCategory(category string) error {
	if category == "" {
		return fmt.Errorf("category is empty")
	}
	if utf8.RuneCountInString(category) > 32 {
		return fmt.Errorf("category too long, max 32 characters")
	}
	return nil
}

// ValidateEmail checks the address is a bare, parseable email.
func ValidateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("invalid email %q", email)
	}
	return nil
}

// ValidatePassword requires 6..72 bytes (bcrypt ignores anything past 72).
func ValidatePassword(password string) error {
	if len(password) < 6 {
		return fmt.Errorf("password must have at least 6 characters")
	}
	if len(password) > 72 {
		return fmt.Errorf("password too long, max 72 bytes")
	}
	return nil
}
