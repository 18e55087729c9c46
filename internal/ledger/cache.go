// Package ledger keeps the current session's transactions in memory, newest
// first, and converges them with the remote store through refetches and
// realtime events.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"finance-dashboard/internal/domain"
	"finance-dashboard/internal/remote"
)

// ErrNoSession is returned by writes when no session is active.
var ErrNoSession = errors.New("not authenticated")

// Source is the part of the data source the cache needs.
type Source interface {
	remote.Transactions
	remote.Realtime
}

// Cache mirrors the transactions table for one owner.
type Cache struct {
	source Source
	logger zerolog.Logger

	mu      sync.RWMutex
	owner   string
	gen     uint64 // 每次会话切换递增，用于丢弃过期的拉取结果
	list    []domain.Transaction
	loading bool

	sub    *remote.Subscription[domain.Transaction]
	cancel context.CancelFunc

	lmu       sync.Mutex
	listeners map[int]func([]domain.Transaction)
	nextID    int
}

func New(source Source, logger zerolog.Logger) *Cache {
	return &Cache{
		source:    source,
		logger:    logger.With().Str("component", "ledger").Logger(),
		listeners: make(map[int]func([]domain.Transaction)),
	}
}

// SetSession switches the cache to sess (nil for signed out). Changing the
// owner drops the cached rows and the realtime stream; a new owner is
// fetched and subscribed.
func (c *Cache) SetSession(ctx context.Context, sess *domain.Session) {
	owner := ""
	if sess != nil {
		owner = sess.ID
	}

	c.mu.Lock()
	if owner == c.owner {
		c.mu.Unlock()
		return
	}
	c.owner = owner
	c.gen++
	c.list = nil
	c.mu.Unlock()

	c.teardown()
	c.notify()

	if owner == "" {
		return
	}
	if err := c.FetchAll(ctx); err != nil {
		c.logger.Warn().Err(err).Str("owner", owner).Msg("initial fetch failed")
	}
	c.subscribe(owner)
}

// Owner is the session id the cache currently follows.
func (c *Cache) Owner() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.owner
}

// Loading is true while a fetch is in flight.
func (c *Cache) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading
}

// FetchAll replaces the cached list with the owner's rows. On failure the
// cache keeps its last known state. A result that arrives after the session
// changed is discarded.
func (c *Cache) FetchAll(ctx context.Context) error {
	c.mu.Lock()
	owner, gen := c.owner, c.gen
	if owner == "" {
		c.mu.Unlock()
		return nil
	}
	c.loading = true
	c.mu.Unlock()

	list, err := c.source.ListTransactions(ctx, owner)

	c.mu.Lock()
	c.loading = false
	if err != nil {
		c.mu.Unlock()
		return fmt.Errorf("fetch transactions: %w", err)
	}
	if c.gen != gen {
		c.mu.Unlock()
		c.logger.Debug().Str("owner", owner).Msg("discarding fetch for previous session")
		return nil
	}
	c.list = list
	c.mu.Unlock()

	c.notify()
	return nil
}

// Add inserts in for the current owner and refetches. A failed insert leaves
// the cache untouched and skips the refetch.
func (c *Cache) Add(ctx context.Context, in domain.TransactionInput) (domain.Transaction, error) {
	owner := c.Owner()
	if owner == "" {
		return domain.Transaction{}, ErrNoSession
	}
	tx, err := c.source.InsertTransaction(ctx, owner, in)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("add transaction: %w", err)
	}
	c.resync(ctx)
	return tx, nil
}

// Update replaces every field of transaction id, then refetches.
func (c *Cache) Update(ctx context.Context, id string, in domain.TransactionInput) error {
	owner := c.Owner()
	if owner == "" {
		return ErrNoSession
	}
	if err := c.source.UpdateTransaction(ctx, owner, id, in); err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	c.resync(ctx)
	return nil
}

// Remove deletes transaction id, then refetches.
func (c *Cache) Remove(ctx context.Context, id string) error {
	owner := c.Owner()
	if owner == "" {
		return ErrNoSession
	}
	if err := c.source.DeleteTransaction(ctx, owner, id); err != nil {
		return fmt.Errorf("remove transaction: %w", err)
	}
	c.resync(ctx)
	return nil
}

// resync 写入已成功，刷新失败只记录日志
func (c *Cache) resync(ctx context.Context) {
	if err := c.FetchAll(ctx); err != nil {
		c.logger.Warn().Err(err).Msg("resync after write failed")
	}
}

// Snapshot returns a copy of the cached list, newest first.
func (c *Cache) Snapshot() []domain.Transaction {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]domain.Transaction(nil), c.list...)
}

func (c *Cache) TotalBalance() decimal.Decimal {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Balance(c.list)
}

func (c *Cache) TotalByCategory(category string) decimal.Decimal {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return CategoryTotal(c.list, category)
}

func (c *Cache) Categories() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Categories(c.list)
}

func (c *Cache) Filter(start, end time.Time, category string) []domain.Transaction {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Filter(c.list, start, end, category)
}

func (c *Cache) MonthSummary(now time.Time) Month {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return MonthSummary(c.list, now)
}

// Watch registers fn to receive the list after every change.
func (c *Cache) Watch(fn func([]domain.Transaction)) func() {
	c.lmu.Lock()
	defer c.lmu.Unlock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	return func() {
		c.lmu.Lock()
		defer c.lmu.Unlock()
		delete(c.listeners, id)
	}
}

func (c *Cache) notify() {
	list := c.Snapshot()
	c.lmu.Lock()
	fns := make([]func([]domain.Transaction), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.lmu.Unlock()
	for _, fn := range fns {
		fn(list)
	}
}

func (c *Cache) subscribe(owner string) {
	ctx, cancel := context.WithCancel(context.Background())
	sub, err := c.source.SubscribeTransactions(ctx, owner)
	if err != nil {
		cancel()
		c.logger.Warn().Err(err).Str("owner", owner).Msg("transaction realtime unavailable")
		return
	}

	c.mu.Lock()
	if c.owner != owner {
		// 订阅期间会话已切换
		c.mu.Unlock()
		cancel()
		_ = sub.Close()
		return
	}
	c.sub, c.cancel = sub, cancel
	c.mu.Unlock()

	go c.consume(owner, sub)
}

func (c *Cache) consume(owner string, sub *remote.Subscription[domain.Transaction]) {
	for ev := range sub.Events() {
		c.mu.Lock()
		if c.owner != owner {
			c.mu.Unlock()
			return
		}
		c.list = Apply(c.list, ev)
		c.mu.Unlock()
		c.notify()
	}
}

func (c *Cache) teardown() {
	c.mu.Lock()
	sub, cancel := c.sub, c.cancel
	c.sub, c.cancel = nil, nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if sub != nil {
		_ = sub.Close()
	}
}

// Close drops the realtime stream.
func (c *Cache) Close() error {
	c.teardown()
	return nil
}
