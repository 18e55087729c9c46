package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TxType is the direction of a transaction.
type TxType string

const (
	Income  TxType = "income"
	Expense TxType = "expense"
)

// Valid reports whether t is a known direction.
func (t TxType) Valid() bool {
	return t == Income || t == Expense
}

// CategorySuggestions is the fixed list offered when recording a transaction.
// The remote store does not enforce it.
var CategorySuggestions = []string{
	"Salário", "Freelance", "Investimentos", "Outros",
	"Mercado", "Restaurante", "Transporte", "Combustível",
	"Aluguel", "Contas", "Lazer", "Saúde", "Educação",
}

// Transaction is one financial event. Amount is signed: income >= 0, expense <= 0.
type Transaction struct {
	ID          string          `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Type        TxType          `json:"type"`
}

// TransactionInput carries every field of a transaction except its id.
type TransactionInput struct {
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Type        TxType          `json:"type"`
}

// WithID builds the full record for id.
func (in TransactionInput) WithID(id string) Transaction {
	return Transaction{
		ID:          id,
		Amount:      in.Amount,
		Date:        in.Date,
		Description: in.Description,
		Category:    in.Category,
		Type:        in.Type,
	}
}

// NewTransactionInput builds an input from a user-entered positive magnitude.
// Expenses are stored negated.
func NewTransactionInput(t TxType, magnitude decimal.Decimal, date time.Time, description, category string) (TransactionInput, error) {
	if !t.Valid() {
		return TransactionInput{}, fmt.Errorf("invalid transaction type %q", t)
	}
	if !magnitude.IsPositive() {
		return TransactionInput{}, fmt.Errorf("amount must be positive, got %s", magnitude)
	}
	amount := magnitude
	if t == Expense {
		amount = magnitude.Neg()
	}
	return TransactionInput{
		Amount:      amount,
		Date:        date,
		Description: description,
		Category:    category,
		Type:        t,
	}, nil
}
