package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Investment is one position of the mock portfolio.
type Investment struct {
	ID                string           `json:"id"`
	Ticker            string           `json:"ticker"`
	CompanyName       string           `json:"company_name"`
	Quantity          decimal.Decimal  `json:"quantity"`
	PurchasePrice     decimal.Decimal  `json:"purchase_price"`
	PurchaseDate      time.Time        `json:"purchase_date"`
	DividendFrequency string           `json:"dividend_frequency,omitempty"`
	DividendAmount    *decimal.Decimal `json:"dividend_amount,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
}

// InvestmentInput is an investment without its id.
type InvestmentInput struct {
	Ticker            string           `json:"ticker"`
	CompanyName       string           `json:"company_name"`
	Quantity          decimal.Decimal  `json:"quantity"`
	PurchasePrice     decimal.Decimal  `json:"purchase_price"`
	PurchaseDate      time.Time        `json:"purchase_date"`
	DividendFrequency string           `json:"dividend_frequency,omitempty"`
	DividendAmount    *decimal.Decimal `json:"dividend_amount,omitempty"`
}
