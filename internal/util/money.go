package util

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// FormatMoney renders amount in currency using its symbol and fraction digits,
// e.g. R$4.650,00 for BRL. Unknown or empty currencies fall back to BRL.
func FormatMoney(amount decimal.Decimal, currency string) string {
	if currency == "" || money.GetCurrency(currency) == nil {
		currency = money.BRL
	}
	cur := money.New(0, currency).Currency()
	minor := amount.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return cur.Formatter().Format(minor)
}
