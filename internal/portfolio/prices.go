package portfolio

import (
	"context"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

var (
	minPrice    = decimal.RequireFromString("0.01")
	jitterRange = decimal.RequireFromString("0.5")
	half        = decimal.RequireFromString("0.5")
)

// PriceBoard simulates live quotes: a new ticker starts between 20 and 70
// and every tick moves each price by at most 0.25, never below 0.01.
type PriceBoard struct {
	mu     sync.RWMutex
	prices map[string]decimal.Decimal
	rnd    *rand.Rand
}

func NewPriceBoard(seed int64) *PriceBoard {
	return &PriceBoard{
		prices: make(map[string]decimal.Decimal),
		rnd:    rand.New(rand.NewSource(seed)),
	}
}

// Track seeds prices for tickers not yet on the board.
func (b *PriceBoard) Track(tickers ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, t := range tickers {
		if _, ok := b.prices[t]; !ok {
			b.prices[t] = b.initial()
		}
	}
}

func (b *PriceBoard) initial() decimal.Decimal {
	return decimal.NewFromFloat(b.rnd.Float64()*50 + 20).Round(2)
}

// Tick moves every tracked price once. Tickers are visited in sorted order
// so a seed always yields the same path.
func (b *PriceBoard) Tick() {
	b.mu.Lock()
	defer b.mu.Unlock()
	tickers := make([]string, 0, len(b.prices))
	for t := range b.prices {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)
	for _, t := range tickers {
		p := b.prices[t]
		delta := decimal.NewFromFloat(b.rnd.Float64()).Sub(half).Mul(jitterRange)
		next := p.Add(delta).Round(2)
		if next.LessThan(minPrice) {
			next = minPrice
		}
		b.prices[t] = next
	}
}

// Prices returns a copy of the board.
func (b *PriceBoard) Prices() map[string]decimal.Decimal {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[string]decimal.Decimal, len(b.prices))
	for t, p := range b.prices {
		out[t] = p
	}
	return out
}

// Run ticks every interval until ctx is done.
func (b *PriceBoard) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.Tick()
		}
	}
}
