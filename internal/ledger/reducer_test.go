package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"finance-dashboard/internal/domain"
)

func tx(id string, amount int64, category string) domain.Transaction {
	typ := domain.Income
	if amount < 0 {
		typ = domain.Expense
	}
	return domain.Transaction{
		ID:       id,
		Amount:   decimal.NewFromInt(amount),
		Date:     time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Category: category,
		Type:     typ,
	}
}

func ids(list []domain.Transaction) []string {
	out := make([]string, 0, len(list))
	for _, t := range list {
		out = append(out, t.ID)
	}
	return out
}

func TestApply_InsertPrepends(t *testing.T) {
	list := []domain.Transaction{tx("a", 10, "x")}
	next := Apply(list, domain.Event[domain.Transaction]{Kind: domain.Inserted, Record: tx("b", 20, "x")})
	assert.Equal(t, []string{"b", "a"}, ids(next))
	assert.Equal(t, []string{"a"}, ids(list), "input must not change")
}

func TestApply_InsertDuplicateIgnored(t *testing.T) {
	list := []domain.Transaction{tx("a", 10, "x")}
	next := Apply(list, domain.Event[domain.Transaction]{Kind: domain.Inserted, Record: tx("a", 10, "x")})
	assert.Equal(t, []string{"a"}, ids(next))
}

func TestApply_Update(t *testing.T) {
	list := []domain.Transaction{tx("a", 10, "x"), tx("b", 20, "y")}
	next := Apply(list, domain.Event[domain.Transaction]{Kind: domain.Updated, Record: tx("b", 25, "z")})
	assert.Equal(t, []string{"a", "b"}, ids(next))
	assert.Equal(t, "z", next[1].Category)
	assert.Equal(t, "y", list[1].Category)

	same := Apply(list, domain.Event[domain.Transaction]{Kind: domain.Updated, Record: tx("zz", 1, "x")})
	assert.Equal(t, ids(list), ids(same))
}

func TestApply_Remove(t *testing.T) {
	list := []domain.Transaction{tx("a", 10, "x"), tx("b", 20, "y"), tx("c", 30, "z")}
	next := Apply(list, domain.Event[domain.Transaction]{Kind: domain.Removed, Record: domain.Transaction{ID: "b"}})
	assert.Equal(t, []string{"a", "c"}, ids(next))
	assert.Equal(t, []string{"a", "b", "c"}, ids(list))

	again := Apply(next, domain.Event[domain.Transaction]{Kind: domain.Removed, Record: domain.Transaction{ID: "b"}})
	assert.Equal(t, []string{"a", "c"}, ids(again))
}

func TestApply_UnknownKind(t *testing.T) {
	list := []domain.Transaction{tx("a", 10, "x")}
	assert.Equal(t, list, Apply(list, domain.Event[domain.Transaction]{Kind: "truncated"}))
}
