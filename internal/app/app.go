// Package app wires the process once at startup: it picks the data source
// (remote SQL store or local demo store) and builds every component on top
// of it.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"finance-dashboard/internal/budget"
	"finance-dashboard/internal/config"
	"finance-dashboard/internal/database"
	"finance-dashboard/internal/domain"
	"finance-dashboard/internal/keystore"
	"finance-dashboard/internal/ledger"
	"finance-dashboard/internal/objectstore"
	"finance-dashboard/internal/portfolio"
	"finance-dashboard/internal/realtime"
	"finance-dashboard/internal/remote"
	"finance-dashboard/internal/remote/gormstore"
	"finance-dashboard/internal/remote/memstore"
	"finance-dashboard/internal/session"
)

// PriceInterval is how often the mock portfolio prices move.
const PriceInterval = 5 * time.Second

// App holds the wired components of one client process.
type App struct {
	Config *config.Config
	Logger zerolog.Logger

	Keys    keystore.Store
	Broker  realtime.Broker
	Source  remote.DataSource
	Objects objectstore.Store
	Theme   *session.Indicator

	Session   *session.Store
	Ledger    *ledger.Cache
	Portfolio *portfolio.Service
	Prices    *portfolio.PriceBoard
	Budgets   *budget.Models

	// AvatarDir is set when avatars live on the local disk and must be
	// served by the HTTP layer.
	AvatarDir string

	mailer  gormstore.Mailer
	ctx     context.Context
	cancel  context.CancelFunc
	closers []func() error
}

// Option customizes New.
type Option func(*App)

// WithMailer replaces the log mailer that delivers password reset tokens in
// remote mode.
func WithMailer(m gormstore.Mailer) Option {
	return func(a *App) { a.mailer = m }
}

// New builds every dependency. Nothing talks to the data source until Start.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger, opts ...Option) (_ *App, err error) {
	a := &App{
		Config:  cfg,
		Logger:  logger,
		Theme:   &session.Indicator{},
		Budgets: budget.NewModels(),
		Prices:  portfolio.NewPriceBoard(time.Now().UnixNano()),
	}
	for _, opt := range opts {
		opt(a)
	}
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	a.Keys = keystore.NewFile(cfg.Local.Path, cfg.Local.EncryptionKey)

	if a.Broker, err = newBroker(ctx, cfg.Realtime, logger); err != nil {
		return nil, err
	}
	a.closers = append(a.closers, a.Broker.Close)

	if a.Source, err = a.newSource(cfg.Remote); err != nil {
		return nil, err
	}

	if a.Objects, err = a.newObjects(ctx, cfg.Storage); err != nil {
		return nil, err
	}

	a.Session = session.New(a.Source, a.Keys, session.Options{
		Objects: a.Objects,
		Theme:   a.Theme,
		Logger:  logger,
	})
	a.Ledger = ledger.New(a.Source, logger)
	a.Portfolio = portfolio.NewService(a.Source)

	logger.Info().
		Str("source", a.Source.Name()).
		Str("realtime", cfg.Realtime.Driver).
		Str("storage", cfg.Storage.Driver).
		Msg("application wired")
	return a, nil
}

func newBroker(ctx context.Context, cfg config.RealtimeConfig, logger zerolog.Logger) (realtime.Broker, error) {
	switch cfg.Driver {
	case "", "memory":
		return realtime.NewMemory(logger), nil
	case "redis":
		b, err := realtime.NewRedis(ctx, cfg.RedisURL, cfg.Channel, logger)
		if err != nil {
			return nil, fmt.Errorf("init realtime: %w", err)
		}
		return b, nil
	}
	return nil, fmt.Errorf("unsupported realtime driver %q", cfg.Driver)
}

// newSource 只在启动时选择一次数据源
func (a *App) newSource(cfg config.RemoteConfig) (remote.DataSource, error) {
	if !cfg.Enabled {
		a.Logger.Info().Msg("remote store not configured, running in local mode")
		return memstore.New(a.Keys, a.Broker, a.Logger), nil
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("remote.jwt_secret is required when remote.enabled is true")
	}

	db, err := database.Init(cfg)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		a.closers = append(a.closers, sqlDB.Close)
	}
	if err := database.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	return gormstore.New(db, a.Broker, a.Keys, gormstore.Options{
		JWTSecret:  cfg.JWTSecret,
		Issuer:     cfg.Issuer,
		TokenTTL:   time.Duration(cfg.ExpireHours) * time.Hour,
		BcryptCost: cfg.BcryptCost,
		Mailer:     a.mailer,
		Logger:     a.Logger,
	}), nil
}

func (a *App) newObjects(ctx context.Context, cfg config.StorageConfig) (objectstore.Store, error) {
	switch cfg.Driver {
	case "", "local":
		local := objectstore.NewLocal(cfg.Dir, cfg.BaseURL)
		a.AvatarDir = local.Dir()
		return local, nil
	case "gcs":
		g, err := objectstore.NewGCS(ctx, cfg.Bucket)
		if err != nil {
			return nil, fmt.Errorf("init object storage: %w", err)
		}
		a.closers = append(a.closers, g.Close)
		return g, nil
	}
	return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
}

// Start recovers the previous session and keeps the transaction cache bound
// to whichever session is current. The context bounds background work.
func (a *App) Start(ctx context.Context) {
	a.ctx, a.cancel = context.WithCancel(ctx)

	stop := a.Session.Watch(func(st session.State) {
		a.Ledger.SetSession(a.ctx, st.Session)
	})
	a.closers = append(a.closers, func() error { stop(); return nil })

	a.Session.LoadSession(a.ctx)
	a.Ledger.SetSession(a.ctx, a.Session.Current())

	go a.Prices.Run(a.ctx, PriceInterval)
}

// TrackInvestments registers the tickers of list on the price board.
func (a *App) TrackInvestments(list []domain.Investment) {
	a.Prices.Track(portfolio.Tickers(list)...)
}

// Close stops background work and releases resources in reverse order.
func (a *App) Close() error {
	if a.cancel != nil {
		a.cancel()
	}
	var errs []error
	if a.Ledger != nil {
		errs = append(errs, a.Ledger.Close())
	}
	if a.Session != nil {
		errs = append(errs, a.Session.Close())
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}
