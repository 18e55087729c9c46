package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"finance-dashboard/internal/domain"
)

func TestBalanceAndCategory(t *testing.T) {
	list := []domain.Transaction{tx("a", 5000, "Salário"), tx("b", -350, "Alimentação"), tx("c", -50, "Alimentação")}
	assert.True(t, Balance(list).Equal(decimal.NewFromInt(4600)))
	assert.True(t, CategoryTotal(list, "Alimentação").Equal(decimal.NewFromInt(-400)))
	assert.True(t, CategoryTotal(list, "Lazer").IsZero())
	assert.Equal(t, []string{"Alimentação", "Salário"}, Categories(list))

	totals := CategoryTotals(list)
	assert.True(t, totals["Salário"].Equal(decimal.NewFromInt(5000)))
	assert.True(t, Balance(nil).IsZero())
}

func TestFilter(t *testing.T) {
	mk := func(id string, day int, cat string) domain.Transaction {
		r := tx(id, 1, cat)
		r.Date = time.Date(2024, 3, day, 12, 0, 0, 0, time.UTC)
		return r
	}
	list := []domain.Transaction{mk("a", 1, "Mercado"), mk("b", 10, "Lazer"), mk("c", 20, "Mercado")}

	start := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 25, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, []string{"b", "c"}, ids(Filter(list, start, end, "")))
	assert.Equal(t, []string{"c"}, ids(Filter(list, start, time.Time{}, "Mercado")))
	assert.Equal(t, []string{"a", "b", "c"}, ids(Filter(list, time.Time{}, time.Time{}, "")))
}

func TestMonthSummary(t *testing.T) {
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	in := tx("a", 5000, "Salário")
	in.Date = time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)
	out := tx("b", -350, "Mercado")
	out.Date = time.Date(2024, 6, 7, 0, 0, 0, 0, time.UTC)
	lastYear := tx("c", -999, "Mercado")
	lastYear.Date = time.Date(2023, 6, 7, 0, 0, 0, 0, time.UTC)
	lastMonth := tx("d", 100, "Freelance")
	lastMonth.Date = time.Date(2024, 5, 30, 0, 0, 0, 0, time.UTC)

	m := MonthSummary([]domain.Transaction{in, out, lastYear, lastMonth}, now)
	assert.True(t, m.Income.Equal(decimal.NewFromInt(5000)))
	assert.True(t, m.Expense.Equal(decimal.NewFromInt(350)))
}
