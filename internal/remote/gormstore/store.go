// Package gormstore is the SQL-backed remote data source: credentials,
// sessions, profile/transaction/investment rows and realtime publishing.
package gormstore

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"finance-dashboard/internal/domain"
	"finance-dashboard/internal/keystore"
	"finance-dashboard/internal/realtime"
	"finance-dashboard/internal/remote"
	"finance-dashboard/internal/util"
)

// Options tunes authentication.
type Options struct {
	JWTSecret  string
	Issuer     string
	TokenTTL   time.Duration
	BcryptCost int
	Mailer     Mailer
	Logger     zerolog.Logger
}

// Store implements remote.DataSource on top of gorm.
type Store struct {
	db     *gorm.DB
	broker realtime.Broker
	keys   keystore.Store
	mailer Mailer
	logger zerolog.Logger

	secret     string
	issuer     string
	ttl        time.Duration
	bcryptCost int

	// now 便于测试注入时间
	now func() time.Time

	mu      sync.RWMutex
	current *util.Claims
}

// New creates a store. keys holds the session token between restarts.
func New(db *gorm.DB, broker realtime.Broker, keys keystore.Store, opts Options) *Store {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 24 * time.Hour
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = 12
	}
	if opts.Issuer == "" {
		opts.Issuer = "finance-dashboard"
	}
	logger := opts.Logger.With().Str("source", "remote").Logger()
	if opts.Mailer == nil {
		opts.Mailer = NewLogMailer(logger)
	}
	return &Store{
		db:         db,
		broker:     broker,
		keys:       keys,
		mailer:     opts.Mailer,
		logger:     logger,
		secret:     opts.JWTSecret,
		issuer:     opts.Issuer,
		ttl:        opts.TokenTTL,
		bcryptCost: opts.BcryptCost,
		now:        time.Now,
	}
}

func (s *Store) Name() string { return "remote" }

// authorize returns the session claims and checks that the session acts on
// its own rows.
func (s *Store) authorize(ctx context.Context, owner string) (*util.Claims, error) {
	claims, err := s.claims(ctx)
	if err != nil {
		return nil, err
	}
	if owner != claims.UserID {
		return nil, remote.ErrForbidden
	}
	return claims, nil
}

func (s *Store) claims(ctx context.Context) (*util.Claims, error) {
	s.mu.RLock()
	c := s.current
	s.mu.RUnlock()
	if c != nil && c.ExpiresAt != nil && c.ExpiresAt.After(s.now()) {
		return c, nil
	}
	sess, err := s.CurrentSession(ctx)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, remote.ErrNotAuthenticated
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil, remote.ErrNotAuthenticated
	}
	return s.current, nil
}

// publish 推送变更事件；失败只记日志，不影响写操作结果
func (s *Store) publish(ctx context.Context, table, key string, kind domain.EventKind, record any) {
	msg, err := realtime.NewMessage(table, key, kind, record)
	if err != nil {
		s.logger.Error().Err(err).Str("table", table).Msg("encode change event failed")
		return
	}
	if err := s.broker.Publish(ctx, msg); err != nil {
		s.logger.Warn().Err(err).Str("table", table).Msg("publish change event failed")
	}
}

// Ensure Store implements the DataSource interface.
var _ remote.DataSource = (*Store)(nil)
