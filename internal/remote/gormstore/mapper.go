package gormstore

import (
	"github.com/shopspring/decimal"

	"finance-dashboard/internal/domain"
	"finance-dashboard/internal/models"
)

func toProfile(m models.Profile) domain.Profile {
	return domain.Profile{
		ID:              m.ID,
		Email:           m.Email,
		FullName:        m.FullName,
		AvatarURL:       m.AvatarURL,
		DefaultCurrency: m.DefaultCurrency,
		ThemePreference: m.ThemePreference,
	}
}

func toTransaction(m models.Transaction) domain.Transaction {
	return domain.Transaction{
		ID:          m.ID,
		Amount:      m.Amount,
		Date:        m.Date,
		Description: m.Description,
		Category:    m.Category,
		Type:        domain.TxType(m.Type),
	}
}

func toInvestment(m models.Investment) domain.Investment {
	inv := domain.Investment{
		ID:                m.ID,
		Ticker:            m.Ticker,
		CompanyName:       m.CompanyName,
		Quantity:          m.Quantity,
		PurchasePrice:     m.PurchasePrice,
		PurchaseDate:      m.PurchaseDate,
		DividendFrequency: m.DividendFrequency,
		CreatedAt:         m.CreatedAt,
	}
	if m.DividendAmount.Valid {
		d := m.DividendAmount.Decimal
		inv.DividendAmount = &d
	}
	return inv
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}
