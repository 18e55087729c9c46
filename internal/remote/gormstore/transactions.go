package gormstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"finance-dashboard/internal/domain"
	"finance-dashboard/internal/models"
	"finance-dashboard/internal/realtime"
)

func (s *Store) ListTransactions(ctx context.Context, owner string) ([]domain.Transaction, error) {
	if _, err := s.authorize(ctx, owner); err != nil {
		return nil, err
	}

	var rows []models.Transaction
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", owner).
		Order("date DESC, created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}

	list := make([]domain.Transaction, 0, len(rows))
	for _, r := range rows {
		list = append(list, toTransaction(r))
	}
	return list, nil
}

func (s *Store) InsertTransaction(ctx context.Context, owner string, in domain.TransactionInput) (domain.Transaction, error) {
	if _, err := s.authorize(ctx, owner); err != nil {
		return domain.Transaction{}, err
	}

	row := models.Transaction{
		ID:          uuid.NewString(),
		UserID:      owner,
		Date:        in.Date,
		Type:        string(in.Type),
		Category:    in.Category,
		Description: in.Description,
		Amount:      in.Amount,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return domain.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	tx := toTransaction(row)
	s.publish(ctx, realtime.TableTransactions, owner, domain.Inserted, tx)
	return tx, nil
}

// UpdateTransaction replaces every field of the row. Rows that do not exist
// or belong to someone else are left alone without error.
func (s *Store) UpdateTransaction(ctx context.Context, owner, id string, in domain.TransactionInput) error {
	if _, err := s.authorize(ctx, owner); err != nil {
		return err
	}

	res := s.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("id = ? AND user_id = ?", id, owner).
		Updates(map[string]any{
			"date":        in.Date,
			"type":        string(in.Type),
			"category":    in.Category,
			"description": in.Description,
			"amount":      in.Amount,
		})
	if res.Error != nil {
		return fmt.Errorf("update transaction: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		s.publish(ctx, realtime.TableTransactions, owner, domain.Updated, in.WithID(id))
	}
	return nil
}

// DeleteTransaction removes the row; deleting a missing row is not an error.
func (s *Store) DeleteTransaction(ctx context.Context, owner, id string) error {
	if _, err := s.authorize(ctx, owner); err != nil {
		return err
	}

	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, owner).Delete(&models.Transaction{})
	if res.Error != nil {
		return fmt.Errorf("delete transaction: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		s.publish(ctx, realtime.TableTransactions, owner, domain.Removed, domain.Transaction{ID: id})
	}
	return nil
}
