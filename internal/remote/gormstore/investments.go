package gormstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"finance-dashboard/internal/domain"
	"finance-dashboard/internal/models"
	"finance-dashboard/internal/realtime"
)

func (s *Store) ListInvestments(ctx context.Context, owner string) ([]domain.Investment, error) {
	if _, err := s.authorize(ctx, owner); err != nil {
		return nil, err
	}

	var rows []models.Investment
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", owner).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query investments: %w", err)
	}

	list := make([]domain.Investment, 0, len(rows))
	for _, r := range rows {
		list = append(list, toInvestment(r))
	}
	return list, nil
}

func (s *Store) InsertInvestment(ctx context.Context, owner string, in domain.InvestmentInput) (domain.Investment, error) {
	if _, err := s.authorize(ctx, owner); err != nil {
		return domain.Investment{}, err
	}

	row := models.Investment{
		ID:                uuid.NewString(),
		UserID:            owner,
		Ticker:            strings.ToUpper(strings.TrimSpace(in.Ticker)),
		CompanyName:       in.CompanyName,
		Quantity:          in.Quantity,
		PurchasePrice:     in.PurchasePrice,
		PurchaseDate:      in.PurchaseDate,
		DividendFrequency: in.DividendFrequency,
		DividendAmount:    nullDecimal(in.DividendAmount),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return domain.Investment{}, fmt.Errorf("insert investment: %w", err)
	}

	inv := toInvestment(row)
	s.publish(ctx, realtime.TableInvestments, owner, domain.Inserted, inv)
	return inv, nil
}

func (s *Store) DeleteInvestment(ctx context.Context, owner, id string) error {
	if _, err := s.authorize(ctx, owner); err != nil {
		return err
	}

	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, owner).Delete(&models.Investment{})
	if res.Error != nil {
		return fmt.Errorf("delete investment: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		s.publish(ctx, realtime.TableInvestments, owner, domain.Removed, domain.Investment{ID: id})
	}
	return nil
}
