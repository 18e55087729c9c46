package portfolio

import (
	"github.com/shopspring/decimal"

	"finance-dashboard/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// Row is one valued position.
type Row struct {
	Investment domain.Investment `json:"investment"`
	Current    decimal.Decimal   `json:"current_price"`
	Market     decimal.Decimal   `json:"market_value"`
	Cost       decimal.Decimal   `json:"cost"`
	PL         decimal.Decimal   `json:"pl"`
	PLPercent  decimal.Decimal   `json:"pl_percent"`
	Dividends  decimal.Decimal   `json:"dividends"`
}

// Summary totals a set of rows.
type Summary struct {
	Market    decimal.Decimal `json:"market_value"`
	Cost      decimal.Decimal `json:"cost"`
	PL        decimal.Decimal `json:"pl"`
	PLPercent decimal.Decimal `json:"pl_percent"`
	Dividends decimal.Decimal `json:"dividends"`
}

// Valuate prices every position; a ticker without a quote is valued at its
// purchase price.
func Valuate(list []domain.Investment, prices map[string]decimal.Decimal) []Row {
	rows := make([]Row, 0, len(list))
	for _, inv := range list {
		cur, ok := prices[inv.Ticker]
		if !ok {
			cur = inv.PurchasePrice
		}
		market := cur.Mul(inv.Quantity)
		cost := inv.PurchasePrice.Mul(inv.Quantity)
		pl := market.Sub(cost)

		div := decimal.Zero
		if inv.DividendAmount != nil {
			div = inv.DividendAmount.Mul(inv.Quantity)
		}
		rows = append(rows, Row{
			Investment: inv,
			Current:    cur,
			Market:     market,
			Cost:       cost,
			PL:         pl,
			PLPercent:  percent(pl, cost),
			Dividends:  div,
		})
	}
	return rows
}

func Totals(rows []Row) Summary {
	s := Summary{Market: decimal.Zero, Cost: decimal.Zero, PL: decimal.Zero, Dividends: decimal.Zero}
	for _, r := range rows {
		s.Market = s.Market.Add(r.Market)
		s.Cost = s.Cost.Add(r.Cost)
		s.PL = s.PL.Add(r.PL)
		s.Dividends = s.Dividends.Add(r.Dividends)
	}
	s.PLPercent = percent(s.PL, s.Cost)
	return s
}

func percent(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred).Round(2)
}
