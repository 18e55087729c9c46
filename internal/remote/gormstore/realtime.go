package gormstore

import (
	"context"

	"finance-dashboard/internal/domain"
	"finance-dashboard/internal/realtime"
	"finance-dashboard/internal/remote"
)

func (s *Store) SubscribeTransactions(ctx context.Context, owner string) (*remote.Subscription[domain.Transaction], error) {
	if _, err := s.authorize(ctx, owner); err != nil {
		return nil, err
	}
	return remote.Subscribe[domain.Transaction](ctx, s.broker, realtime.TableTransactions, owner, s.logger)
}

func (s *Store) SubscribeProfile(ctx context.Context, id string) (*remote.Subscription[domain.Profile], error) {
	if _, err := s.authorize(ctx, id); err != nil {
		return nil, err
	}
	return remote.Subscribe[domain.Profile](ctx, s.broker, realtime.TableProfiles, id, s.logger)
}
