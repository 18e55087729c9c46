// Package memstore is the local/demo data source. Rows live in process
// memory; the demo identity is read from the local keystore so it survives
// restarts without any network.
package memstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"finance-dashboard/internal/domain"
	"finance-dashboard/internal/keystore"
	"finance-dashboard/internal/realtime"
	"finance-dashboard/internal/remote"
)

// DefaultDemoEmail is used when a demo sign-in carries no email.
const DefaultDemoEmail = "dev@example.com"

// ErrUnsupported is returned for operations that need a real remote store.
var ErrUnsupported = errors.New("not available in local mode")

type demoUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Store implements remote.DataSource without persistence.
type Store struct {
	keys   keystore.Store
	broker realtime.Broker
	logger zerolog.Logger

	mu           sync.RWMutex
	profiles     map[string]domain.Profile
	transactions map[string][]domain.Transaction
	investments  map[string][]domain.Investment
}

func New(keys keystore.Store, broker realtime.Broker, logger zerolog.Logger) *Store {
	return &Store{
		keys:         keys,
		broker:       broker,
		logger:       logger.With().Str("source", "local").Logger(),
		profiles:     make(map[string]domain.Profile),
		transactions: make(map[string][]domain.Transaction),
		investments:  make(map[string][]domain.Investment),
	}
}

func (s *Store) Name() string { return "local" }

func (s *Store) demo() (*demoUser, error) {
	var u demoUser
	err := keystore.GetJSON(s.keys, keystore.DemoUserKey, &u)
	if errors.Is(err, keystore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// authorize 返回本次读到的演示身份，调用方不要再读第二次
func (s *Store) authorize(owner string) (*demoUser, error) {
	u, err := s.demo()
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, remote.ErrNotAuthenticated
	}
	if u.ID != owner {
		return nil, remote.ErrForbidden
	}
	return u, nil
}

// ---------- 认证 ----------

// SignIn has no credentials to check in local mode: any email becomes the
// demo identity, persisted for reload-survival.
func (s *Store) SignIn(_ context.Context, email, _ string) (domain.Session, error) {
	if email == "" {
		email = DefaultDemoEmail
	}
	u := demoUser{ID: domain.DemoUserID, Email: email}
	if err := keystore.PutJSON(s.keys, keystore.DemoUserKey, u); err != nil {
		return domain.Session{}, fmt.Errorf("persist demo identity: %w", err)
	}
	s.logger.Info().Str("email", email).Msg("demo identity stored")
	return domain.Session{ID: u.ID, Email: u.Email}, nil
}

// SignUp is the same as SignIn in local mode.
func (s *Store) SignUp(ctx context.Context, email, password string) (domain.Session, error) {
	return s.SignIn(ctx, email, password)
}

// SignOut forgets the demo identity and its edited profile.
func (s *Store) SignOut(context.Context) error {
	s.mu.Lock()
	delete(s.profiles, domain.DemoUserID)
	s.mu.Unlock()
	return s.keys.Delete(keystore.DemoUserKey)
}

// CurrentSession returns the demo identity stored by a previous demo sign-in.
func (s *Store) CurrentSession(context.Context) (*domain.Session, error) {
	u, err := s.demo()
	if err != nil || u == nil {
		return nil, err
	}
	return &domain.Session{ID: u.ID, Email: u.Email}, nil
}

// UpdateCredentials renames the demo identity. The demo identity has no
// password, so a new one is accepted and ignored.
func (s *Store) UpdateCredentials(_ context.Context, email, _ *string) error {
	u, err := s.demo()
	if err != nil {
		return err
	}
	if u == nil {
		return remote.ErrNotAuthenticated
	}
	if email == nil || *email == u.Email {
		return nil
	}
	u.Email = *email
	if err := keystore.PutJSON(s.keys, keystore.DemoUserKey, u); err != nil {
		return fmt.Errorf("persist demo identity: %w", err)
	}
	return nil
}

func (s *Store) RequestPasswordReset(context.Context, string) error {
	return fmt.Errorf("password reset: %w", ErrUnsupported)
}

func (s *Store) ConfirmPasswordReset(context.Context, string, string) error {
	return fmt.Errorf("password reset: %w", ErrUnsupported)
}

// ---------- 资料 ----------

func (s *Store) GetProfile(_ context.Context, id string) (domain.Profile, error) {
	u, err := s.demo()
	if err != nil {
		return domain.Profile{}, err
	}
	if u == nil || u.ID != id {
		return domain.Profile{}, remote.ErrNotFound
	}

	s.mu.RLock()
	p, ok := s.profiles[id]
	s.mu.RUnlock()
	if !ok {
		return domain.DefaultProfile(id, u.Email), nil
	}
	return p, nil
}

func (s *Store) UpsertProfile(ctx context.Context, id string, upd domain.ProfileUpdate) error {
	u, err := s.authorize(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	p, ok := s.profiles[id]
	if !ok {
		p = domain.DefaultProfile(id, u.Email)
	}
	p = upd.Apply(p)
	s.profiles[id] = p
	s.mu.Unlock()

	s.publish(ctx, realtime.TableProfiles, id, domain.Updated, p)
	return nil
}

// ---------- 交易 ----------

func (s *Store) ListTransactions(_ context.Context, owner string) ([]domain.Transaction, error) {
	if _, err := s.authorize(owner); err != nil {
		return nil, err
	}
	s.mu.RLock()
	list := append([]domain.Transaction(nil), s.transactions[owner]...)
	s.mu.RUnlock()

	sort.SliceStable(list, func(i, j int) bool { return list[i].Date.After(list[j].Date) })
	return list, nil
}

func (s *Store) InsertTransaction(ctx context.Context, owner string, in domain.TransactionInput) (domain.Transaction, error) {
	if _, err := s.authorize(owner); err != nil {
		return domain.Transaction{}, err
	}
	tx := in.WithID(uuid.NewString())

	s.mu.Lock()
	// 新记录放前面，和远端按时间倒序返回保持一致
	s.transactions[owner] = append([]domain.Transaction{tx}, s.transactions[owner]...)
	s.mu.Unlock()

	s.publish(ctx, realtime.TableTransactions, owner, domain.Inserted, tx)
	return tx, nil
}

func (s *Store) UpdateTransaction(ctx context.Context, owner, id string, in domain.TransactionInput) error {
	if _, err := s.authorize(owner); err != nil {
		return err
	}
	updated := in.WithID(id)

	s.mu.Lock()
	found := false
	for i, t := range s.transactions[owner] {
		if t.ID == id {
			s.transactions[owner][i] = updated
			found = true
			break
		}
	}
	s.mu.Unlock()

	if found {
		s.publish(ctx, realtime.TableTransactions, owner, domain.Updated, updated)
	}
	return nil
}

func (s *Store) DeleteTransaction(ctx context.Context, owner, id string) error {
	if _, err := s.authorize(owner); err != nil {
		return err
	}

	s.mu.Lock()
	list := s.transactions[owner]
	found := false
	for i, t := range list {
		if t.ID == id {
			s.transactions[owner] = append(list[:i:i], list[i+1:]...)
			found = true
			break
		}
	}
	s.mu.Unlock()

	if found {
		s.publish(ctx, realtime.TableTransactions, owner, domain.Removed, domain.Transaction{ID: id})
	}
	return nil
}

// ---------- 投资 ----------

func (s *Store) ListInvestments(_ context.Context, owner string) ([]domain.Investment, error) {
	if _, err := s.authorize(owner); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Investment(nil), s.investments[owner]...), nil
}

func (s *Store) InsertInvestment(ctx context.Context, owner string, in domain.InvestmentInput) (domain.Investment, error) {
	if _, err := s.authorize(owner); err != nil {
		return domain.Investment{}, err
	}
	inv := domain.Investment{
		ID:                uuid.NewString(),
		Ticker:            strings.ToUpper(strings.TrimSpace(in.Ticker)),
		CompanyName:       in.CompanyName,
		Quantity:          in.Quantity,
		PurchasePrice:     in.PurchasePrice,
		PurchaseDate:      in.PurchaseDate,
		DividendFrequency: in.DividendFrequency,
		DividendAmount:    in.DividendAmount,
		CreatedAt:         time.Now(),
	}

	s.mu.Lock()
	s.investments[owner] = append([]domain.Investment{inv}, s.investments[owner]...)
	s.mu.Unlock()

	s.publish(ctx, realtime.TableInvestments, owner, domain.Inserted, inv)
	return inv, nil
}

func (s *Store) DeleteInvestment(ctx context.Context, owner, id string) error {
	if _, err := s.authorize(owner); err != nil {
		return err
	}

	s.mu.Lock()
	list := s.investments[owner]
	found := false
	for i, inv := range list {
		if inv.ID == id {
			s.investments[owner] = append(list[:i:i], list[i+1:]...)
			found = true
			break
		}
	}
	s.mu.Unlock()

	if found {
		s.publish(ctx, realtime.TableInvestments, owner, domain.Removed, domain.Investment{ID: id})
	}
	return nil
}

// ---------- 实时 ----------

func (s *Store) SubscribeTransactions(ctx context.Context, owner string) (*remote.Subscription[domain.Transaction], error) {
	if _, err := s.authorize(owner); err != nil {
		return nil, err
	}
	return remote.Subscribe[domain.Transaction](ctx, s.broker, realtime.TableTransactions, owner, s.logger)
}

func (s *Store) SubscribeProfile(ctx context.Context, id string) (*remote.Subscription[domain.Profile], error) {
	if _, err := s.authorize(id); err != nil {
		return nil, err
	}
	return remote.Subscribe[domain.Profile](ctx, s.broker, realtime.TableProfiles, id, s.logger)
}

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
