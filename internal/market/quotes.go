// Package market serves the static market quotes and news shown on the
// dashboard.
package market

import (
	"strings"

	"github.com/shopspring/decimal"
)

// AllSectors / AllCategories select everything in a filter.
const (
	AllSectors    = "Todos"
	AllCategories = "Todos"
)

// Quote is one listed stock.
type Quote struct {
	Ticker    string            `json:"ticker"`
	Name      string            `json:"name"`
	Price     decimal.Decimal   `json:"price"`
	Change    decimal.Decimal   `json:"change"` // 当日涨跌幅，百分比
	Sector    string            `json:"sector"`
	Sparkline []decimal.Decimal `json:"sparkline"`
}

// Rising reports whether the sparkline ends at or above where it started.
func (q Quote) Rising() bool {
	if len(q.Sparkline) == 0 {
		return q.Change.Sign() >= 0
	}
	return q.Sparkline[len(q.Sparkline)-1].GreaterThanOrEqual(q.Sparkline[0])
}

// Sectors lists the sector filter options, AllSectors first.
var Sectors = []string{AllSectors, "Tecnologia", "Saúde", "Energia", "Financeiro", "Varejo"}

func quote(ticker, name, price, change, sector string, spark ...string) Quote {
	q := Quote{
		Ticker: ticker,
		Name:   name,
		Price:  decimal.RequireFromString(price),
		Change: decimal.RequireFromString(change),
		Sector: sector,
	}
	for _, s := range spark {
		q.Sparkline = append(q.Sparkline, decimal.RequireFromString(s))
	}
	return q
}

var quotes = []Quote{
	quote("AAPL", "Apple Inc.", "178.45", "2.34", "Tecnologia", "175", "176", "174", "177", "178", "179", "178.45"),
	quote("MSFT", "Microsoft Corp.", "412.80", "1.89", "Tecnologia", "405", "408", "410", "411", "413", "414", "412.80"),
	quote("GOOGL", "Alphabet Inc.", "142.65", "-0.45", "Tecnologia", "144", "143", "142", "143", "142.5", "143", "142.65"),
	quote("AMZN", "Amazon.com Inc.", "178.25", "3.12", "Tecnologia", "173", "175", "176", "177", "179", "180", "178.25"),
	quote("TSLA", "Tesla Inc.", "248.50", "-2.15", "Tecnologia", "254", "252", "250", "249", "248", "247", "248.50"),
	quote("JNJ", "Johnson & Johnson", "159.30", "0.78", "Saúde", "158", "158.5", "159", "159.2", "159.5", "159.8", "159.30"),
	quote("PFE", "Pfizer Inc.", "28.95", "-1.23", "Saúde", "29.5", "29.3", "29.1", "29", "28.9", "28.8", "28.95"),
	quote("XOM", "Exxon Mobil", "112.40", "1.45", "Energia", "110", "111", "111.5", "112", "112.5", "113", "112.40"),
	quote("CVX", "Chevron Corp.", "158.75", "0.95", "Energia", "157", "157.5", "158", "158.5", "159", "159.5", "158.75"),
	quote("JPM", "JPMorgan Chase", "198.65", "2.05", "Financeiro", "195", "196", "197", "198", "199", "200", "198.65"),
	quote("BAC", "Bank of America", "42.35", "1.34", "Financeiro", "41.5", "41.8", "42", "42.2", "42.5", "42.8", "42.35"),
	quote("WMT", "Walmart Inc.", "167.80", "-0.65", "Varejo", "168.5", "168", "167.5", "167", "167.5", "168", "167.80"),
}

// Quotes returns the quotes whose name or ticker contains search (case
// insensitive) within sector. An empty sector means AllSectors.
func Quotes(search, sector string) []Quote {
	search = strings.ToLower(strings.TrimSpace(search))
	out := make([]Quote, 0, len(quotes))
	for _, q := range quotes {
		if sector != "" && sector != AllSectors && q.Sector != sector {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(q.Name), search) &&
			!strings.Contains(strings.ToLower(q.Ticker), search) {
			continue
		}
		out = append(out, q)
	}
	return out
}

// Lookup finds a quote by ticker.
func Lookup(ticker string) (Quote, bool) {
	for _, q := range quotes {
		if strings.EqualFold(q.Ticker, ticker) {
			return q, true
		}
	}
	return Quote{}, false
}
