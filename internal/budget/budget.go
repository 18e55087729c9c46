// Package budget splits the balance across percentage categories and tracks
// spending against each share.
package budget

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"finance-dashboard/internal/domain"
)

var (
	ErrModelName  = errors.New("model name is required")
	ErrTotalShare = errors.New("percentages must add up to 100")
)

var hundred = decimal.NewFromInt(100)

type Category struct {
	Name       string          `json:"name"`
	Percentage decimal.Decimal `json:"percentage"`
	Color      string          `json:"color"`
}

// Model is a named split.
type Model struct {
	Name       string     `json:"name"`
	Categories []Category `json:"categories"`
}

// DefaultCategories is the 50/30/20 split.
func DefaultCategories() []Category {
	return []Category{
		{Name: "Essenciais", Percentage: decimal.NewFromInt(50), Color: "#8b5cf6"},
		{Name: "Lazer", Percentage: decimal.NewFromInt(30), Color: "#06b6d4"},
		{Name: "Investimentos", Percentage: decimal.NewFromInt(20), Color: "#10b981"},
	}
}

// TotalPercentage sums the shares.
func TotalPercentage(cats []Category) decimal.Decimal {
	total := decimal.Zero
	for _, c := range cats {
		total = total.Add(c.Percentage)
	}
	return total
}

// Validate checks that m can be saved.
func Validate(m Model) error {
	if strings.TrimSpace(m.Name) == "" {
		return ErrModelName
	}
	if total := TotalPercentage(m.Categories); !total.Equal(hundred) {
		return fmt.Errorf("%w: got %s", ErrTotalShare, total)
	}
	return nil
}

// Allocation is one category applied to a balance.
type Allocation struct {
	Category
	Allocated   decimal.Decimal `json:"allocated"`
	Spent       decimal.Decimal `json:"spent"`
	Remaining   decimal.Decimal `json:"remaining"`
	UsedPercent decimal.Decimal `json:"used_percent"`
}

// Allocate gives every category its share of balance. Spent is the absolute
// sum of expense transactions labelled with the category name.
func Allocate(balance decimal.Decimal, cats []Category, txs []domain.Transaction) []Allocation {
	out := make([]Allocation, 0, len(cats))
	for _, c := range cats {
		allocated := balance.Mul(c.Percentage).Div(hundred)
		spent := decimal.Zero
		for _, t := range txs {
			if t.Category == c.Name && t.Type == domain.Expense {
				spent = spent.Add(t.Amount.Abs())
			}
		}
		used := decimal.Zero
		if allocated.IsPositive() {
			used = spent.Div(allocated).Mul(hundred).Round(2)
		}
		out = append(out, Allocation{
			Category:    c,
			Allocated:   allocated,
			Spent:       spent,
			Remaining:   allocated.Sub(spent),
			UsedPercent: used,
		})
	}
	return out
}

// Models keeps saved splits for the process lifetime.
type Models struct {
	mu     sync.RWMutex
	models []Model
}

func NewModels() *Models { return &Models{} }

// Save validates m and stores a copy; a model with the same name is replaced.
func (s *Models) Save(m Model) error {
	if err := Validate(m); err != nil {
		return err
	}
	m.Categories = append([]Category(nil), m.Categories...)

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.models {
		if s.models[i].Name == m.Name {
			s.models[i] = m
			return nil
		}
	}
	s.models = append(s.models, m)
	return nil
}

func (s *Models) List() []Model {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Model(nil), s.models...)
}

func (s *Models) Get(name string) (Model, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.models {
		if m.Name == name {
			return m, true
		}
	}
	return Model{}, false
}
