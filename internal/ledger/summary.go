package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"finance-dashboard/internal/domain"
)

// Balance sums every amount.
func Balance(list []domain.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, t := range list {
		total = total.Add(t.Amount)
	}
	return total
}

// CategoryTotal sums the amounts labelled category.
func CategoryTotal(list []domain.Transaction, category string) decimal.Decimal {
	total := decimal.Zero
	for _, t := range list {
		if t.Category == category {
			total = total.Add(t.Amount)
		}
	}
	return total
}

// CategoryTotals groups amounts by category.
func CategoryTotals(list []domain.Transaction) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal)
	for _, t := range list {
		totals[t.Category] = totals[t.Category].Add(t.Amount)
	}
	return totals
}

// Categories lists the distinct categories in use, sorted.
func Categories(list []domain.Transaction) []string {
	seen := make(map[string]struct{})
	for _, t := range list {
		seen[t.Category] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Filter keeps transactions dated within [start, end] (either bound may be
// zero) and, when category is not empty, labelled category.
func Filter(list []domain.Transaction, start, end time.Time, category string) []domain.Transaction {
	out := make([]domain.Transaction, 0, len(list))
	for _, t := range list {
		if !start.IsZero() && t.Date.Before(start) {
			continue
		}
		if !end.IsZero() && t.Date.After(end) {
			continue
		}
		if category != "" && t.Category != category {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Month is the income and expense of one calendar month.
type Month struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"` // 支出的绝对值
}

// MonthSummary totals the calendar month containing now, in now's location.
func MonthSummary(list []domain.Transaction, now time.Time) Month {
	m := Month{Income: decimal.Zero, Expense: decimal.Zero}
	y, mo, _ := now.Date()
	for _, t := range list {
		ty, tm, _ := t.Date.In(now.Location()).Date()
		if ty != y || tm != mo {
			continue
		}
		switch t.Type {
		case domain.Income:
			m.Income = m.Income.Add(t.Amount)
		case domain.Expense:
			m.Expense = m.Expense.Add(t.Amount.Abs())
		}
	}
	return m
}
