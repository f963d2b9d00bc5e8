package exchange

import (
	"context"
	"sort"

	"github.com/sourcegraph/conc/pool"

	"github.com/coachpo/meltica-rest/errs"
)

// Exchange is the unified surface every adapter exposes. Methods outside an
// adapter's capability set return a NotSupported error; consult
// Describe().Has before calling.
type Exchange interface {
	ID() string
	Describe() *Descriptor
	LoadMarkets(ctx context.Context, reload bool) ([]Market, error)

	FetchMarkets(ctx context.Context, params Params) ([]Market, error)
	FetchCurrencies(ctx context.Context, params Params) (map[string]Currency, error)
	FetchTime(ctx context.Context, params Params) (int64, error)
	FetchTicker(ctx context.Context, symbol string, params Params) (Ticker, error)
	FetchTickers(ctx context.Context, symbols []string, params Params) (map[string]Ticker, error)
	FetchOrderBook(ctx context.Context, symbol string, limit int, params Params) (OrderBook, error)
	FetchTrades(ctx context.Context, symbol string, q Query) ([]Trade, error)
	FetchOHLCV(ctx context.Context, symbol, timeframe string, q Query) ([]OHLCV, error)

	FetchBalance(ctx context.Context, params Params) (Balances, error)
	CreateOrder(ctx context.Context, req OrderRequest) (Order, error)
	EditOrder(ctx context.Context, id string, req OrderRequest) (Order, error)
	CancelOrder(ctx context.Context, id, symbol string, params Params) (Order, error)
	CancelAllOrders(ctx context.Context, symbol string, params Params) ([]Order, error)
	FetchOrder(ctx context.Context, id, symbol string, params Params) (Order, error)
	FetchOpenOrders(ctx context.Context, symbol string, q Query) ([]Order, error)
	FetchClosedOrders(ctx context.Context, symbol string, q Query) ([]Order, error)
	FetchMyTrades(ctx context.Context, symbol string, q Query) ([]Trade, error)
	FetchTradingFees(ctx context.Context, params Params) (map[string]TradingFee, error)

	FetchPositions(ctx context.Context, symbols []string, params Params) ([]Position, error)
	SetLeverage(ctx context.Context, leverage, symbol string, params Params) (Leverage, error)
	FetchFundingRateHistory(ctx context.Context, symbol string, q Query) ([]FundingRate, error)
	FetchFundingHistory(ctx context.Context, symbol string, q Query) ([]FundingIncome, error)

	Transfer(ctx context.Context, req TransferRequest) (Transfer, error)
	FetchTransfers(ctx context.Context, code string, q Query) ([]Transfer, error)
	FetchDeposits(ctx context.Context, code string, q Query) ([]Transaction, error)
	FetchWithdrawals(ctx context.Context, code string, q Query) ([]Transaction, error)
	Withdraw(ctx context.Context, req WithdrawRequest) (Transaction, error)
}

// Unsupported answers every optional method with NotSupported. Adapters
// embed it and override what they implement.
type Unsupported struct {
	ExchangeID string
}

func (u Unsupported) err(method string) error {
	return errs.NotSupported(u.ExchangeID, method+"() is not supported yet")
}

func (u Unsupported) FetchMarkets(context.Context, Params) ([]Market, error) {
	return nil, u.err("fetchMarkets")
}

func (u Unsupported) FetchCurrencies(context.Context, Params) (map[string]Currency, error) {
	return nil, u.err("fetchCurrencies")
}

func (u Unsupported) FetchTime(context.Context, Params) (int64, error) {
	return 0, u.err("fetchTime")
}

func (u Unsupported) FetchTicker(context.Context, string, Params) (Ticker, error) {
	return Ticker{}, u.err("fetchTicker")
}

func (u Unsupported) FetchTickers(context.Context, []string, Params) (map[string]Ticker, error) {
	return nil, u.err("fetchTickers")
}

func (u Unsupported) FetchOrderBook(context.Context, string, int, Params) (OrderBook, error) {
	return OrderBook{}, u.err("fetchOrderBook")
}

func (u Unsupported) FetchTrades(context.Context, string, Query) ([]Trade, error) {
	return nil, u.err("fetchTrades")
}

func (u Unsupported) FetchOHLCV(context.Context, string, string, Query) ([]OHLCV, error) {
	return nil, u.err("fetchOHLCV")
}

func (u Unsupported) FetchBalance(context.Context, Params) (Balances, error) {
	return Balances{}, u.err("fetchBalance")
}

func (u Unsupported) CreateOrder(context.Context, OrderRequest) (Order, error) {
	return Order{}, u.err("createOrder")
}

func (u Unsupported) EditOrder(context.Context, string, OrderRequest) (Order, error) {
	return Order{}, u.err("editOrder")
}

func (u Unsupported) CancelOrder(context.Context, string, string, Params) (Order, error) {
	return Order{}, u.err("cancelOrder")
}

func (u Unsupported) CancelAllOrders(context.Context, string, Params) ([]Order, error) {
	return nil, u.err("cancelAllOrders")
}

func (u Unsupported) FetchOrder(context.Context, string, string, Params) (Order, error) {
	return Order{}, u.err("fetchOrder")
}

func (u Unsupported) FetchOpenOrders(context.Context, string, Query) ([]Order, error) {
	return nil, u.err("fetchOpenOrders")
}

func (u Unsupported) FetchClosedOrders(context.Context, string, Query) ([]Order, error) {
	return nil, u.err("fetchClosedOrders")
}

func (u Unsupported) FetchMyTrades(context.Context, string, Query) ([]Trade, error) {
	return nil, u.err("fetchMyTrades")
}

func (u Unsupported) FetchTradingFees(context.Context, Params) (map[string]TradingFee, error) {
	return nil, u.err("fetchTradingFees")
}

func (u Unsupported) FetchPositions(context.Context, []string, Params) ([]Position, error) {
	return nil, u.err("fetchPositions")
}

func (u Unsupported) SetLeverage(context.Context, string, string, Params) (Leverage, error) {
	return Leverage{}, u.err("setLeverage")
}

func (u Unsupported) FetchFundingRateHistory(context.Context, string, Query) ([]FundingRate, error) {
	return nil, u.err("fetchFundingRateHistory")
}

func (u Unsupported) FetchFundingHistory(context.Context, string, Query) ([]FundingIncome, error) {
	return nil, u.err("fetchFundingHistory")
}

func (u Unsupported) Transfer(context.Context, TransferRequest) (Transfer, error) {
	return Transfer{}, u.err("transfer")
}

func (u Unsupported) FetchTransfers(context.Context, string, Query) ([]Transfer, error) {
	return nil, u.err("fetchTransfers")
}

func (u Unsupported) FetchDeposits(context.Context, string, Query) ([]Transaction, error) {
	return nil, u.err("fetchDeposits")
}

func (u Unsupported) FetchWithdrawals(context.Context, string, Query) ([]Transaction, error) {
	return nil, u.err("fetchWithdrawals")
}

func (u Unsupported) Withdraw(context.Context, WithdrawRequest) (Transaction, error) {
	return Transaction{}, u.err("withdraw")
}

// FanOut runs fetch for every symbol with at most workers concurrent calls.
// The first failure cancels the remaining calls.
func FanOut[T any](ctx context.Context, symbols []string, workers int, fetch func(ctx context.Context, symbol string) (T, error)) (map[string]T, error) {
	if workers <= 0 {
		workers = 4
	}
	type result struct {
		symbol string
		value  T
	}
	p := pool.NewWithResults[result]().WithContext(ctx).WithMaxGoroutines(workers).WithCancelOnError().WithFirstError()
	for _, symbol := range symbols {
		p.Go(func(ctx context.Context) (result, error) {
			v, err := fetch(ctx, symbol)
			return result{symbol: symbol, value: v}, err
		})
	}
	results, err := p.Wait()
	if err != nil {
		return nil, err
	}
	out := make(map[string]T, len(results))
	for _, r := range results {
		out[r.symbol] = r.value
	}
	return out, nil
}

// Filter keeps the entries of m whose key is in symbols; nil symbols keeps all.
func Filter[T any](m map[string]T, symbols []string) map[string]T {
	if symbols == nil {
		return m
	}
	out := make(map[string]T, len(symbols))
	for _, s := range symbols {
		if v, ok := m[s]; ok {
			out[s] = v
		}
	}
	return out
}

// SinceLimit orders items by timestamp, drops entries older than since and
// keeps at most limit of them. Entries without a timestamp sort first.
func SinceLimit[T any](items []T, ts func(T) *int64, since *int64, limit int) []T {
	sort.SliceStable(items, func(i, j int) bool {
		return Deref(ts(items[i])) < Deref(ts(items[j]))
	})
	out := items[:0:0]
	for _, item := range items {
		if since != nil {
			if t := ts(item); t == nil || *t < *since {
				continue
			}
		}
		out = append(out, item)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
