package gormstore

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"finance-dashboard/internal/domain"
	"finance-dashboard/internal/models"
	"finance-dashboard/internal/realtime"
	"finance-dashboard/internal/remote"
)

func (s *Store) GetProfile(ctx context.Context, id string) (domain.Profile, error) {
	if _, err := s.authorize(ctx, id); err != nil {
		return domain.Profile{}, err
	}

	var row models.Profile
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Profile{}, remote.ErrNotFound
		}
		return domain.Profile{}, fmt.Errorf("query profile: %w", err)
	}
	return toProfile(row), nil
}

func (s *Store) UpsertProfile(ctx context.Context, id string, upd domain.ProfileUpdate) error {
	claims, err := s.authorize(ctx, id)
	if err != nil {
		return err
	}

	var saved models.Profile
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row models.Profile
		err := tx.Where("id = ?", id).First(&row).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			row = models.Profile{
				ID:              id,
				Email:           claims.Email,
				DefaultCurrency: "BRL",
				ThemePreference: domain.ThemeLight,
			}
		case err != nil:
			return fmt.Errorf("query profile: %w", err)
		}

		p := upd.Apply(toProfile(row))
		row.Email = p.Email
		row.FullName = p.FullName
		row.AvatarURL = p.AvatarURL
		row.DefaultCurrency = p.DefaultCurrency
		row.ThemePreference = p.ThemePreference
		if err := tx.Save(&row).Error; err != nil {
			return fmt.Errorf("save profile: %w", err)
		}
		saved = row
		return nil
	})
	if err != nil {
		return err
	}

	s.publish(ctx, realtime.TableProfiles, id, domain.Updated, toProfile(saved))
	return nil
}
