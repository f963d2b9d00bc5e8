package exchange

import (
	"context"
	"sort"
	"sync/atomic"
	"time"

	"github.com/coachpo/meltica-rest/errs"
)

// MarketLoader fetches the full market listing from the venue.
type MarketLoader func(ctx context.Context) ([]Market, error)

// MarketResolver is an adapter heuristic for ids missing from the direct index.
// lookup queries the current index.
type MarketResolver func(id string, lookup func(id string) (Market, bool)) (Market, bool)

type marketSnapshot struct {
	list     []Market
	byID     map[string]Market
	bySymbol map[string]Market
	loadedAt time.Time
}

// MarketCache keeps the market listing in memory until it expires.
// Snapshots are immutable and swapped whole, so concurrent refreshes can at
// worst duplicate a fetch.
type MarketCache struct {
	exchangeID string
	ttl        time.Duration
	loader     MarketLoader
	now        func() time.Time
	onRefresh  func(ctx context.Context)
	snapshot   atomic.Pointer[marketSnapshot]
}

// NewMarketCache builds a cache; a non-positive ttl never expires.
func NewMarketCache(exchangeID string, ttl time.Duration, loader MarketLoader, now func() time.Time) *MarketCache {
	if now == nil {
		now = time.Now
	}
	return &MarketCache{exchangeID: exchangeID, ttl: ttl, loader: loader, now: now}
}

// Load returns the cached markets, fetching them when the cache is empty,
// expired or reload is set.
func (m *MarketCache) Load(ctx context.Context, reload bool) ([]Market, error) {
	snap := m.snapshot.Load()
	if snap != nil && !reload && !m.expired(snap) {
		return snap.list, nil
	}
	if m.loader == nil {
		return nil, errs.NotSupported(m.exchangeID, "has no market loader")
	}
	markets, err := m.loader(ctx)
	if err != nil {
		return nil, err
	}
	m.Set(markets)
	if m.onRefresh != nil {
		m.onRefresh(ctx)
	}
	return markets, nil
}

func (m *MarketCache) expired(snap *marketSnapshot) bool {
	if m.ttl <= 0 {
		return false
	}
	return m.now().Sub(snap.loadedAt) >= m.ttl
}

// Set replaces the cached listing.
func (m *MarketCache) Set(markets []Market) {
	snap := &marketSnapshot{
		list:     markets,
		byID:     make(map[string]Market, len(markets)),
		bySymbol: make(map[string]Market, len(markets)),
		loadedAt: m.now(),
	}
	for _, market := range markets {
		if _, dup := snap.byID[market.ID]; !dup {
			snap.byID[market.ID] = market
		}
		snap.bySymbol[market.Symbol] = market
	}
	m.snapshot.Store(snap)
}

// Loaded reports whether a listing is cached.
func (m *MarketCache) Loaded() bool {
	return m.snapshot.Load() != nil
}

// ByID looks up a market by venue id.
func (m *MarketCache) ByID(id string) (Market, bool) {
	snap := m.snapshot.Load()
	if snap == nil {
		return Market{}, false
	}
	market, ok := snap.byID[id]
	return market, ok
}

// Market looks up a market by unified symbol, failing with BadSymbol.
func (m *MarketCache) Market(symbol string) (Market, error) {
	if snap := m.snapshot.Load(); snap != nil {
		if market, ok := snap.bySymbol[symbol]; ok {
			return market, nil
		}
		if market, ok := snap.byID[symbol]; ok {
			return market, nil
		}
	}
	return Market{}, errs.Newf(m.exchangeID, errs.ClassBadSymbol, "does not have market symbol "+symbol)
}

// Symbols lists the cached unified symbols, sorted.
func (m *MarketCache) Symbols() []string {
	snap := m.snapshot.Load()
	if snap == nil {
		return nil
	}
	out := make([]string, 0, len(snap.bySymbol))
	for symbol := range snap.bySymbol {
		out = append(out, symbol)
	}
	sort.Strings(out)
	return out
}

// SafeMarket resolves a venue id to a market. An indexed id wins, then the
// resolver heuristic, then the caller's known market. When all of them fail
// the returned market carries the raw id as its symbol.
func (m *MarketCache) SafeMarket(id string, known *Market, resolve MarketResolver) Market {
	if id != "" {
		if market, ok := m.ByID(id); ok {
			return market
		}
		if resolve != nil {
			if market, ok := resolve(id, m.ByID); ok {
				return market
			}
		}
	}
	if known != nil {
		return *known
	}
	return Market{ID: id, Symbol: id}
}

// SafeSymbol is SafeMarket(...).Symbol.
func (m *MarketCache) SafeSymbol(id string, known *Market, resolve MarketResolver) string {
	return m.SafeMarket(id, known, resolve).Symbol
}
