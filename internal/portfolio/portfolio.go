// Package portfolio manages the investment positions of a session and values
// them against mock market prices.
package portfolio

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"finance-dashboard/internal/domain"
	"finance-dashboard/internal/remote"
)

var (
	ErrInvalidTicker   = errors.New("ticker is required")
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrInvalidPrice    = errors.New("purchase price must be positive")
)

// Service lists and edits one owner's positions through the data source.
type Service struct {
	source remote.Investments
}

func NewService(source remote.Investments) *Service {
	return &Service{source: source}
}

func (s *Service) List(ctx context.Context, owner string) ([]domain.Investment, error) {
	list, err := s.source.ListInvestments(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list investments: %w", err)
	}
	return list, nil
}

func (s *Service) Add(ctx context.Context, owner string, in domain.InvestmentInput) (domain.Investment, error) {
	in.Ticker = strings.ToUpper(strings.TrimSpace(in.Ticker))
	if in.Ticker == "" {
		return domain.Investment{}, ErrInvalidTicker
	}
	if !in.Quantity.IsPositive() {
		return domain.Investment{}, ErrInvalidQuantity
	}
	if !in.PurchasePrice.IsPositive() {
		return domain.Investment{}, ErrInvalidPrice
	}
	if in.CompanyName == "" {
		in.CompanyName = in.Ticker
	}
	inv, err := s.source.InsertInvestment(ctx, owner, in)
	if err != nil {
		return domain.Investment{}, fmt.Errorf("add investment: %w", err)
	}
	return inv, nil
}

func (s *Service) Remove(ctx context.Context, owner, id string) error {
	if err := s.source.DeleteInvestment(ctx, owner, id); err != nil {
		return fmt.Errorf("remove investment: %w", err)
	}
	return nil
}

// Tickers returns the distinct tickers of list in first-seen order.
func Tickers(list []domain.Investment) []string {
	seen := make(map[string]struct{}, len(list))
	out := make([]string, 0, len(list))
	for _, inv := range list {
		if _, ok := seen[inv.Ticker]; ok {
			continue
		}
		seen[inv.Ticker] = struct{}{}
		out = append(out, inv.Ticker)
	}
	return out
}
