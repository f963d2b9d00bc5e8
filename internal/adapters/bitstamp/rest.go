// Package bitstamp implements the Bitstamp spot REST adapter.
package bitstamp

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/coachpo/meltica-rest/errs"
	"github.com/coachpo/meltica-rest/internal/exchange"
	"github.com/coachpo/meltica-rest/internal/numeric"
)

// Exchange is the Bitstamp client.
type Exchange struct {
	exchange.Unsupported

	client  *exchange.Client
	adapter *adapter

	pairsMu       sync.Mutex
	pairs         []any
	pairsLoadedAt int64
}

var _ exchange.Exchange = (*Exchange)(nil)

// New builds a Bitstamp client.
func New(opts Options) (*Exchange, error) {
	desc := describe()
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = desc.URLs.API
	}
	a := newAdapter(desc, baseURL, opts.Nonce)
	client, err := exchange.NewClient(a, opts.Client)
	if err != nil {
		return nil, err
	}
	e := &Exchange{
		Unsupported: exchange.Unsupported{ExchangeID: exchangeID},
		client:      client,
		adapter:     a,
	}
	client.UseMarketLoader(func(ctx context.Context) ([]exchange.Market, error) {
		return e.FetchMarkets(ctx, nil)
	})
	return e, nil
}

// ID returns "bitstamp".
func (e *Exchange) ID() string { return exchangeID }

// Describe returns the static descriptor.
func (e *Exchange) Describe() *exchange.Descriptor { return e.client.Describe() }

// LoadMarkets fills the market cache.
func (e *Exchange) LoadMarkets(ctx context.Context, reload bool) ([]exchange.Market, error) {
	return e.client.LoadMarkets(ctx, reload)
}

// pairsInfo returns trading-pairs-info, reusing a response younger than one
// second so markets and currencies share a single call.
func (e *Exchange) pairsInfo(ctx context.Context, params exchange.Params) ([]any, error) {
	e.pairsMu.Lock()
	defer e.pairsMu.Unlock()
	now := e.client.Now()
	if e.pairs != nil && now-e.pairsLoadedAt <= pairsInfoExpiry.Milliseconds() {
		return e.pairs, nil
	}
	rows, err := e.client.CallList(ctx, epPairsInfo, params)
	if err != nil {
		return nil, err
	}
	e.pairs = rows
	e.pairsLoadedAt = now
	return rows, nil
}

// FetchMarkets lists the spot pairs.
func (e *Exchange) FetchMarkets(ctx context.Context, params exchange.Params) ([]exchange.Market, error) {
	rows, err := e.pairsInfo(ctx, params)
	if err != nil {
		return nil, err
	}
	markets := make([]exchange.Market, 0, len(rows))
	for _, item := range rows {
		if market, ok := parseMarket(exchange.AsObject(item)); ok {
			markets = append(markets, market)
		}
	}
	return markets, nil
}

// FetchCurrencies derives currencies from the pair list.
func (e *Exchange) FetchCurrencies(ctx context.Context, params exchange.Params) (map[string]exchange.Currency, error) {
	rows, err := e.pairsInfo(ctx, params)
	if err != nil {
		return nil, err
	}
	return parseCurrencies(rows), nil
}

// FetchTicker fetches the 24h ticker of one pair.
func (e *Exchange) FetchTicker(ctx context.Context, symbol string, params exchange.Params) (exchange.Ticker, error) {
	market, err := e.client.Market(ctx, symbol)
	if err != nil {
		return exchange.Ticker{}, err
	}
	raw, err := e.client.CallObject(ctx, epTicker, exchange.Params{"pair": market.ID}.Extend(params))
	if err != nil {
		return exchange.Ticker{}, err
	}
	return e.parseTicker(raw, &market), nil
}

// FetchTickers returns every ticker, filtered to symbols when given.
func (e *Exchange) FetchTickers(ctx context.Context, symbols []string, params exchange.Params) (map[string]exchange.Ticker, error) {
	if _, err := e.client.LoadMarkets(ctx, false); err != nil {
		return nil, err
	}
	rows, err := e.client.CallList(ctx, epTickers, params)
	if err != nil {
		return nil, err
	}
	out := make(map[string]exchange.Ticker, len(rows))
	for _, item := range rows {
		if raw := exchange.AsObject(item); raw != nil {
			ticker := e.parseTicker(raw, nil)
			out[ticker.Symbol] = ticker
		}
	}
	return exchange.Filter(out, symbols), nil
}

// FetchOrderBook returns the full book; the venue ignores limit.
func (e *Exchange) FetchOrderBook(ctx context.Context, symbol string, limit int, params exchange.Params) (exchange.OrderBook, error) {
	market, err := e.client.Market(ctx, symbol)
	if err != nil {
		return exchange.OrderBook{}, err
	}
	raw, err := e.client.CallObject(ctx, epOrderBook, exchange.Params{"pair": market.ID}.Extend(params))
	if err != nil {
		return exchange.OrderBook{}, err
	}
	book := exchange.OrderBook{
		Symbol: market.Symbol,
		Bids:   exchange.Levels(exchange.Items(raw, "bids")),
		Asks:   exchange.Levels(exchange.Items(raw, "asks")),
		Nonce:  exchange.Int64(raw, "microtimestamp"),
		Info:   raw,
	}
	if book.Nonce != nil {
		book.Timestamp = exchange.Ptr(*book.Nonce / 1000)
	}
	if limit > 0 {
		book.Bids = truncateLevels(book.Bids, limit)
		book.Asks = truncateLevels(book.Asks, limit)
	}
	return book, nil
}

// FetchTrades returns the last hour of public transactions.
func (e *Exchange) FetchTrades(ctx context.Context, symbol string, q exchange.Query) ([]exchange.Trade, error) {
	market, err := e.client.Market(ctx, symbol)
	if err != nil {
		return nil, err
	}
	rows, err := e.client.CallList(ctx, epTransactions, exchange.Params{"pair": market.ID, "time": "hour"}.Extend(q.Params))
	if err != nil {
		return nil, err
	}
	trades := e.parseTrades(rows, &market)
	return exchange.SinceLimit(trades, tradeTime, q.Since, q.Limit), nil
}

// FetchOHLCV requests at most 1000 candles; with since set the window end is
// derived from the step.
func (e *Exchange) FetchOHLCV(ctx context.Context, symbol, timeframe string, q exchange.Query) ([]exchange.OHLCV, error) {
	market, err := e.client.Market(ctx, symbol)
	if err != nil {
		return nil, err
	}
	step, err := e.Describe().Timeframe(timeframe)
	if err != nil {
		return nil, err
	}
	stepSeconds, _ := strconv.ParseInt(step, 10, 64)
	limit := q.Limit
	if limit <= 0 || limit > maxOHLCVLimit {
		limit = maxOHLCVLimit
	}
	request := exchange.Params{"pair": market.ID, "step": step, "limit": limit}
	if q.Since != nil {
		start := *q.Since / 1000
		request["start"] = start
		request["end"] = start + stepSeconds*int64(limit-1)
	}
	raw, err := e.client.CallObject(ctx, epOHLC, request.Extend(q.Params))
	if err != nil {
		return nil, err
	}
	rows := exchange.Items(exchange.Child(raw, "data"), "ohlc")
	candles := make([]exchange.OHLCV, 0, len(rows))
	for _, item := range rows {
		if c := exchange.AsObject(item); c != nil {
			candles = append(candles, parseOHLCV(c))
		}
	}
	return exchange.SinceLimit(candles, func(c exchange.OHLCV) *int64 { return &c.Timestamp }, q.Since, q.Limit), nil
}

// FetchBalance returns balances of every currency.
func (e *Exchange) FetchBalance(ctx context.Context, params exchange.Params) (exchange.Balances, error) {
	rows, err := e.client.CallList(ctx, epBalances, params)
	if err != nil {
		return exchange.Balances{}, err
	}
	return parseBalance(rows), nil
}

// CreateOrder places a limit, market or instant order.
func (e *Exchange) CreateOrder(ctx context.Context, req exchange.OrderRequest) (exchange.Order, error) {
	market, err := e.client.Market(ctx, req.Symbol)
	if err != nil {
		return exchange.Order{}, err
	}
	orderType := strings.ToLower(req.Type)
	byType, ok := orderEndpoints[orderType]
	if !ok {
		return exchange.Order{}, errs.Newf(exchangeID, errs.ClassInvalidOrder, "createOrder() unsupported order type "+req.Type)
	}
	ep, ok := byType[strings.ToLower(req.Side)]
	if !ok {
		return exchange.Order{}, errs.Newf(exchangeID, errs.ClassInvalidOrder, "createOrder() unsupported side "+req.Side)
	}
	request := exchange.Params{
		"pair":   market.ID,
		"amount": toPrecision(req.Amount, market.Precision.Amount),
	}
	if orderType == "limit" {
		if req.Price == nil {
			return exchange.Order{}, errs.Newf(exchangeID, errs.ClassArgumentsRequired, "createOrder() requires a price argument for limit orders")
		}
		request["price"] = toPrecision(*req.Price, market.Precision.Price)
	}
	params := req.Params
	clientID := req.ClientOrderID
	if v, ok := clientOrderIDParam(params); ok && clientID == "" {
		clientID = v
	}
	if clientID != "" {
		request["client_order_id"] = clientID
	}
	raw, err := e.client.CallObject(ctx, ep, request.Extend(params.Omit("client_order_id", "clientOrderId")))
	if err != nil {
		return exchange.Order{}, err
	}
	order := e.parseOrder(raw, &market)
	order.Type = &orderType
	return order, nil
}

// CancelOrder cancels one order by id.
func (e *Exchange) CancelOrder(ctx context.Context, id, symbol string, params exchange.Params) (exchange.Order, error) {
	if _, err := e.client.LoadMarkets(ctx, false); err != nil {
		return exchange.Order{}, err
	}
	raw, err := e.client.CallObject(ctx, epCancelOrder, exchange.Params{"id": id}.Extend(params))
	if err != nil {
		return exchange.Order{}, err
	}
	return e.parseOrder(raw, nil), nil
}

// CancelAllOrders cancels every open order, or those of one pair.
func (e *Exchange) CancelAllOrders(ctx context.Context, symbol string, params exchange.Params) ([]exchange.Order, error) {
	ep := epCancelAll
	request := exchange.Params{}
	if symbol != "" {
		market, err := e.client.Market(ctx, symbol)
		if err != nil {
			return nil, err
		}
		ep = epCancelAllPair
		request["pair"] = market.ID
	} else if _, err := e.client.LoadMarkets(ctx, false); err != nil {
		return nil, err
	}
	raw, err := e.client.CallObject(ctx, ep, request.Extend(params))
	if err != nil {
		return nil, err
	}
	return e.parseOrders(exchange.Items(raw, "canceled"), nil), nil
}

// FetchOrder queries order_status by id or client order id.
func (e *Exchange) FetchOrder(ctx context.Context, id, symbol string, params exchange.Params) (exchange.Order, error) {
	var market *exchange.Market
	if symbol != "" {
		m, err := e.client.Market(ctx, symbol)
		if err != nil {
			return exchange.Order{}, err
		}
		market = &m
	} else if _, err := e.client.LoadMarkets(ctx, false); err != nil {
		return exchange.Order{}, err
	}
	request := exchange.Params{}
	if clientID, ok := clientOrderIDParam(params); ok {
		request["client_order_id"] = clientID
	} else {
		request["id"] = id
	}
	raw, err := e.client.CallObject(ctx, epOrderStatus, request.Extend(params.Omit("client_order_id", "clientOrderId")))
	if err != nil {
		return exchange.Order{}, err
	}
	return e.parseOrder(raw, market), nil
}

// FetchOpenOrders lists open limit orders.
func (e *Exchange) FetchOpenOrders(ctx context.Context, symbol string, q exchange.Query) ([]exchange.Order, error) {
	ep := epOpenOrdersAll
	request := exchange.Params{}
	var market *exchange.Market
	if symbol != "" {
		m, err := e.client.Market(ctx, symbol)
		if err != nil {
			return nil, err
		}
		market = &m
		ep = epOpenOrdersPair
		request["pair"] = m.ID
	} else if _, err := e.client.LoadMarkets(ctx, false); err != nil {
		return nil, err
	}
	rows, err := e.client.CallList(ctx, ep, request.Extend(q.Params))
	if err != nil {
		return nil, err
	}
	orders := e.parseOrders(rows, market)
	for i := range orders {
		if orders[i].Status == nil {
			orders[i].Status = exchange.Ptr("open")
		}
		if orders[i].Type == nil {
			orders[i].Type = exchange.Ptr("limit")
		}
	}
	return exchange.SinceLimit(orders, orderTime, q.Since, q.Limit), nil
}

// FetchMyTrades returns market trades (user transaction type 2).
func (e *Exchange) FetchMyTrades(ctx context.Context, symbol string, q exchange.Query) ([]exchange.Trade, error) {
	ep := epUserTxs
	request := exchange.Params{}
	var market *exchange.Market
	if symbol != "" {
		m, err := e.client.Market(ctx, symbol)
		if err != nil {
			return nil, err
		}
		market = &m
		ep = epUserTxsPair
		request["pair"] = m.ID
	} else if _, err := e.client.LoadMarkets(ctx, false); err != nil {
		return nil, err
	}
	if q.Limit > 0 {
		request["limit"] = q.Limit
	}
	rows, err := e.client.CallList(ctx, ep, request.Extend(q.Params))
	if err != nil {
		return nil, err
	}
	var trades []any
	for _, item := range rows {
		if exchange.StringOr(exchange.AsObject(item), "", "type") == "2" {
			trades = append(trades, item)
		}
	}
	return exchange.SinceLimit(e.parseTrades(trades, market), tradeTime, q.Since, q.Limit), nil
}

// FetchTradingFees returns the account maker/taker rates per pair.
func (e *Exchange) FetchTradingFees(ctx context.Context, params exchange.Params) (map[string]exchange.TradingFee, error) {
	if _, err := e.client.LoadMarkets(ctx, false); err != nil {
		return nil, err
	}
	rows, err := e.client.CallList(ctx, epTradingFees, params)
	if err != nil {
		return nil, err
	}
	out := make(map[string]exchange.TradingFee, len(rows))
	for _, item := range rows {
		raw := exchange.AsObject(item)
		if raw == nil {
			continue
		}
		symbol := e.safeMarket(exchange.StringOr(raw, "", "market", "currency_pair"), nil).Symbol
		out[symbol] = parseTradingFee(raw, symbol)
	}
	return out, nil
}

// Transfer moves funds between the main account and a sub account.
func (e *Exchange) Transfer(ctx context.Context, req exchange.TransferRequest) (exchange.Transfer, error) {
	request := exchange.Params{
		"amount":   req.Amount,
		"currency": strings.ToUpper(req.Code),
	}
	var ep exchange.Endpoint
	switch {
	case req.FromAccount == mainAccount:
		ep = epTransferFrom
		request["subAccount"] = req.ToAccount
	case req.ToAccount == mainAccount:
		ep = epTransferToMain
		request["subAccount"] = req.FromAccount
	default:
		return exchange.Transfer{}, errs.Newf(exchangeID, errs.ClassBadRequest, "transfer() only supports from or to main")
	}
	raw, err := e.client.CallObject(ctx, ep, request.Extend(req.Params))
	if err != nil {
		return exchange.Transfer{}, err
	}
	return exchange.Transfer{
		Currency:    exchange.Ptr(strings.ToUpper(req.Code)),
		Amount:      exchange.Ptr(req.Amount),
		FromAccount: exchange.Ptr(req.FromAccount),
		ToAccount:   exchange.Ptr(req.ToAccount),
		Status:      exchange.MapEnum(transferStatuses, exchange.String(raw, "status")),
		Info:        raw,
	}, nil
}

func (e *Exchange) parseTrades(rows []any, market *exchange.Market) []exchange.Trade {
	out := make([]exchange.Trade, 0, len(rows))
	for _, item := range rows {
		if raw := exchange.AsObject(item); raw != nil {
			out = append(out, e.parseTrade(raw, market))
		}
	}
	return out
}

func (e *Exchange) parseOrders(rows []any, market *exchange.Market) []exchange.Order {
	out := make([]exchange.Order, 0, len(rows))
	for _, item := range rows {
		if raw := exchange.AsObject(item); raw != nil {
			out = append(out, e.parseOrder(raw, market))
		}
	}
	return out
}

func clientOrderIDParam(params exchange.Params) (string, bool) {
	for _, key := range []string{"client_order_id", "clientOrderId"} {
		if v, ok := params.String(key); ok {
			return v, true
		}
	}
	return "", false
}

func toPrecision(value string, step *string) string {
	if step == nil {
		return value
	}
	if out, ok := numeric.Truncate(value, int32(numeric.ScaleFromStep(*step))); ok {
		return out
	}
	return value
}

func truncateLevels(levels []exchange.PriceLevel, limit int) []exchange.PriceLevel {
	if len(levels) > limit {
		return levels[:limit]
	}
	return levels
}

func tradeTime(t exchange.Trade) *int64 { return t.Timestamp }

func orderTime(o exchange.Order) *int64 { return o.Timestamp }
