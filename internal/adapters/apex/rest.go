// Package apex implements the Apex Omni perpetuals REST adapter.
package apex

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/coachpo/meltica-rest/errs"
	"github.com/coachpo/meltica-rest/internal/exchange"
	"github.com/coachpo/meltica-rest/internal/numeric"
)

// Exchange is the Apex Omni client.
type Exchange struct {
	exchange.Unsupported

	client    *exchange.Client
	adapter   *adapter
	signer    OrderSigner
	brokerID  string
	accountID exchange.Lazy[string]
}

var _ exchange.Exchange = (*Exchange)(nil)

// New builds an Apex client.
func New(opts Options) (*Exchange, error) {
	opts, err := withDefaults(opts)
	if err != nil {
		return nil, err
	}
	a, err := newAdapter(describe(), opts.BaseURL)
	if err != nil {
		return nil, err
	}
	client, err := exchange.NewClient(a, opts.Client)
	if err != nil {
		return nil, err
	}
	e := &Exchange{
		Unsupported: exchange.Unsupported{ExchangeID: exchangeID},
		client:      client,
		adapter:     a,
		signer:      opts.Signer,
		brokerID:    opts.BrokerID,
	}
	client.UseMarketLoader(func(ctx context.Context) ([]exchange.Market, error) {
		return e.FetchMarkets(ctx, nil)
	})
	return e, nil
}

// ID returns "apex".
func (e *Exchange) ID() string { return exchangeID }

// Describe returns the static descriptor.
func (e *Exchange) Describe() *exchange.Descriptor { return e.client.Describe() }

// LoadMarkets fills the market cache.
func (e *Exchange) LoadMarkets(ctx context.Context, reload bool) ([]exchange.Market, error) {
	return e.client.LoadMarkets(ctx, reload)
}

func (e *Exchange) data(ctx context.Context, ep exchange.Endpoint, params exchange.Params) (any, error) {
	obj, err := e.client.CallObject(ctx, ep, params)
	if err != nil {
		return nil, err
	}
	return exchange.Field(obj, "data"), nil
}

func (e *Exchange) dataObject(ctx context.Context, ep exchange.Endpoint, params exchange.Params) (exchange.Object, error) {
	data, err := e.data(ctx, ep, params)
	if err != nil {
		return nil, err
	}
	obj := exchange.AsObject(data)
	if obj == nil {
		obj = exchange.Object{}
	}
	return obj, nil
}

func (e *Exchange) symbols(ctx context.Context, params exchange.Params) (exchange.Object, error) {
	return e.dataObject(ctx, epSymbols, params)
}

// FetchTime returns the server time in milliseconds.
func (e *Exchange) FetchTime(ctx context.Context, params exchange.Params) (int64, error) {
	data, err := e.dataObject(ctx, epTime, params)
	if err != nil {
		return 0, err
	}
	return exchange.Deref(exchange.Int64(data, "time")), nil
}

// FetchMarkets lists the perpetual contracts.
func (e *Exchange) FetchMarkets(ctx context.Context, params exchange.Params) ([]exchange.Market, error) {
	data, err := e.symbols(ctx, params)
	if err != nil {
		return nil, err
	}
	contracts := exchange.Items(exchange.Child(data, "contractConfig"), "perpetualContract")
	markets := make([]exchange.Market, 0, len(contracts))
	for _, item := range contracts {
		if raw := exchange.AsObject(item); raw != nil {
			markets = append(markets, parseMarket(raw))
		}
	}
	return markets, nil
}

// FetchCurrencies lists the spot assets and their chains.
func (e *Exchange) FetchCurrencies(ctx context.Context, params exchange.Params) (map[string]exchange.Currency, error) {
	data, err := e.symbols(ctx, params)
	if err != nil {
		return nil, err
	}
	return parseCurrencies(exchange.Child(data, "spotConfig")), nil
}

// FetchTicker fetches the 24h statistics of one market.
func (e *Exchange) FetchTicker(ctx context.Context, symbol string, params exchange.Params) (exchange.Ticker, error) {
	market, err := e.client.Market(ctx, symbol)
	if err != nil {
		return exchange.Ticker{}, err
	}
	data, err := e.data(ctx, epTicker, exchange.Params{"symbol": market.ID2}.Extend(params))
	if err != nil {
		return exchange.Ticker{}, err
	}
	raw := exchange.AsObject(firstItem(exchange.AsList(data)))
	if raw == nil {
		raw = exchange.Object{}
	}
	return e.parseTicker(raw, &market), nil
}

// FetchTickers returns every ticker from the bulk endpoint, or fans out one
// request per symbol when symbols are given.
func (e *Exchange) FetchTickers(ctx context.Context, symbols []string, params exchange.Params) (map[string]exchange.Ticker, error) {
	if _, err := e.client.LoadMarkets(ctx, false); err != nil {
		return nil, err
	}
	if len(symbols) > 0 {
		return exchange.FanOut(ctx, symbols, tickerWorkers, func(ctx context.Context, symbol string) (exchange.Ticker, error) {
			return e.FetchTicker(ctx, symbol, params)
		})
	}
	data, err := e.data(ctx, epAllTickers, params)
	if err != nil {
		return nil, err
	}
	out := make(map[string]exchange.Ticker)
	for _, item := range exchange.AsList(data) {
		if raw := exchange.AsObject(item); raw != nil {
			ticker := e.parseTicker(raw, nil)
			out[ticker.Symbol] = ticker
		}
	}
	return out, nil
}

// FetchOrderBook fetches depth; the default limit is 100.
func (e *Exchange) FetchOrderBook(ctx context.Context, symbol string, limit int, params exchange.Params) (exchange.OrderBook, error) {
	market, err := e.client.Market(ctx, symbol)
	if err != nil {
		return exchange.OrderBook{}, err
	}
	if limit <= 0 {
		limit = defaultDepthLimit
	}
	data, err := e.dataObject(ctx, epDepth, exchange.Params{"symbol": market.ID2, "limit": limit}.Extend(params))
	if err != nil {
		return exchange.OrderBook{}, err
	}
	return exchange.OrderBook{
		Symbol:    market.Symbol,
		Bids:      exchange.Levels(exchange.Items(data, "b")),
		Asks:      exchange.Levels(exchange.Items(data, "a")),
		Timestamp: exchange.Ptr(e.client.Now()),
		Nonce:     exchange.Int64(data, "u"),
		Info:      data,
	}, nil
}

// FetchTrades returns recent public trades; the default limit is 500.
func (e *Exchange) FetchTrades(ctx context.Context, symbol string, q exchange.Query) ([]exchange.Trade, error) {
	market, err := e.client.Market(ctx, symbol)
	if err != nil {
		return nil, err
	}
	limit := q.Limit
	if limit <= 0 {
		limit = defaultTradesLimit
	}
	data, err := e.data(ctx, epTrades, exchange.Params{"symbol": market.ID2, "limit": limit}.Extend(q.Params))
	if err != nil {
		return nil, err
	}
	trades := e.parseTrades(exchange.AsList(data), &market)
	return exchange.SinceLimit(trades, tradeTime, q.Since, q.Limit), nil
}

// FetchOHLCV returns candles; "until" in params maps to the end time.
func (e *Exchange) FetchOHLCV(ctx context.Context, symbol, timeframe string, q exchange.Query) ([]exchange.OHLCV, error) {
	market, err := e.client.Market(ctx, symbol)
	if err != nil {
		return nil, err
	}
	interval, err := e.Describe().Timeframe(timeframe)
	if err != nil {
		return nil, err
	}
	limit := q.Limit
	if limit <= 0 {
		limit = defaultOHLCVLimit
	}
	request := exchange.Params{"interval": interval, "symbol": market.ID2, "limit": limit}
	if q.Since != nil {
		request["start"] = *q.Since
	}
	params := q.Params
	if until, ok := params.String("until"); ok {
		request["end"] = until
		params = params.Omit("until")
	}
	data, err := e.dataObject(ctx, epKlines, request.Extend(params))
	if err != nil {
		return nil, err
	}
	rows := exchange.Items(data, market.ID2)
	candles := make([]exchange.OHLCV, 0, len(rows))
	for _, item := range rows {
		if raw := exchange.AsObject(item); raw != nil {
			candles = append(candles, parseOHLCV(raw))
		}
	}
	return exchange.SinceLimit(candles, func(c exchange.OHLCV) *int64 { return &c.Timestamp }, q.Since, limit), nil
}

// FetchFundingRateHistory returns historical funding rates of one market.
func (e *Exchange) FetchFundingRateHistory(ctx context.Context, symbol string, q exchange.Query) ([]exchange.FundingRate, error) {
	if symbol == "" {
		return nil, errs.Newf(exchangeID, errs.ClassArgumentsRequired, "fetchFundingRateHistory() requires a symbol argument")
	}
	market, err := e.client.Market(ctx, symbol)
	if err != nil {
		return nil, err
	}
	request, params := historyRequest(market.ID, q)
	data, err := e.dataObject(ctx, epHistoryFunding, request.Extend(params))
	if err != nil {
		return nil, err
	}
	entries := exchange.Items(data, "historyFunds")
	rates := make([]exchange.FundingRate, 0, len(entries))
	for _, item := range entries {
		raw := exchange.AsObject(item)
		if raw == nil {
			continue
		}
		rates = append(rates, exchange.FundingRate{
			Symbol:      e.safeMarket(exchange.String(raw, "symbol"), &market).Symbol,
			FundingRate: exchange.String(raw, "rate"),
			Timestamp:   exchange.Int64(raw, "fundingTimestamp"),
			Info:        raw,
		})
	}
	return exchange.SinceLimit(rates, func(r exchange.FundingRate) *int64 { return r.Timestamp }, q.Since, q.Limit), nil
}

// FetchBalance returns the USDT collateral balance.
func (e *Exchange) FetchBalance(ctx context.Context, params exchange.Params) (exchange.Balances, error) {
	data, err := e.dataObject(ctx, epAccountBalance, params)
	if err != nil {
		return exchange.Balances{}, err
	}
	return e.parseBalance(data), nil
}

// AccountID returns the Omni account id, fetching it once per client.
func (e *Exchange) AccountID(ctx context.Context) (string, error) {
	return e.accountID.Get(ctx, func(ctx context.Context) (string, error) {
		data, err := e.dataObject(ctx, epAccount, nil)
		if err != nil {
			return "", err
		}
		return exchange.StringOr(data, "0", "id"), nil
	})
}

// FetchPositions returns open positions, optionally filtered by symbol.
func (e *Exchange) FetchPositions(ctx context.Context, symbols []string, params exchange.Params) ([]exchange.Position, error) {
	if _, err := e.client.LoadMarkets(ctx, false); err != nil {
		return nil, err
	}
	data, err := e.dataObject(ctx, epAccount, params)
	if err != nil {
		return nil, err
	}
	wanted := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		wanted[s] = true
	}
	var out []exchange.Position
	for _, item := range exchange.Items(data, "positions") {
		raw := exchange.AsObject(item)
		if raw == nil {
			continue
		}
		position := e.parsePosition(raw)
		if len(wanted) > 0 && !wanted[position.Symbol] {
			continue
		}
		out = append(out, position)
	}
	return out, nil
}

// CreateOrder places an order signed by the configured OrderSigner.
func (e *Exchange) CreateOrder(ctx context.Context, req exchange.OrderRequest) (exchange.Order, error) {
	if e.signer == nil {
		return exchange.Order{}, errs.NotSupported(exchangeID, "createOrder() requires an order signer")
	}
	market, err := e.client.Market(ctx, req.Symbol)
	if err != nil {
		return exchange.Order{}, err
	}
	orderType := strings.ToUpper(req.Type)
	side := strings.ToUpper(req.Side)
	isMarket := orderType == "MARKET"
	if isMarket && req.Price == nil {
		return exchange.Order{}, errs.Newf(exchangeID, errs.ClassArgumentsRequired, "createOrder() requires a price argument for market orders")
	}
	size := toPrecision(req.Amount, market.Precision.Amount)
	price := "0"
	if req.Price != nil {
		price = toPrecision(*req.Price, market.Precision.Price)
	}
	fees := e.Describe().Fees
	limitFee := limitFeeFor(price, size, fees.Taker, market.Precision.Price)

	timeInForce := strings.ToUpper(req.TimeInForce)
	if timeInForce == "" {
		timeInForce = "GOOD_TIL_CANCEL"
	}
	if !isMarket {
		switch {
		case req.PostOnly:
			timeInForce = "POST_ONLY"
		case timeInForce == "GTC":
			timeInForce = "GOOD_TIL_CANCEL"
		case timeInForce == "IOC":
			timeInForce = "IMMEDIATE_OR_CANCEL"
		case timeInForce == "FOK":
			timeInForce = "FILL_OR_KILL"
		}
	}

	accountID, err := e.AccountID(ctx)
	if err != nil {
		return exchange.Order{}, err
	}
	params := req.Params
	clientID := req.ClientOrderID
	for _, key := range []string{"clientId", "clientOrderId", "client_order_id"} {
		if v, ok := params.String(key); ok && clientID == "" {
			clientID = v
		}
	}
	params = params.Omit("clientId", "clientOrderId", "client_order_id", "timeInForce", "postOnly")
	now := e.client.Now()
	if clientID == "" {
		clientID = clientOrderID(accountID, now)
	}

	signature, err := e.signer.SignOrder(ctx, ZKOrder{
		AccountID:    accountID,
		SlotID:       clientID,
		Nonce:        clientID,
		PairID:       market.QuoteID,
		Size:         size,
		Price:        price,
		Direction:    side,
		MakerFeeRate: fees.Maker,
		TakerFeeRate: fees.Taker,
	})
	if err != nil {
		return exchange.Order{}, errs.New(exchangeID, errs.ClassAuthentication,
			errs.WithMessage(exchangeID+" sign order"), errs.WithCause(err))
	}
	request := exchange.Params{
		"symbol":      market.ID,
		"side":        side,
		"type":        orderType,
		"size":        size,
		"price":       price,
		"limitFee":    limitFee,
		"expiration":  now/1000 + int64(orderExpiry.Seconds()),
		"timeInForce": timeInForce,
		"clientId":    clientID,
		"brokerId":    e.brokerID,
		"signature":   signature,
	}
	if req.ReduceOnly {
		request["reduceOnly"] = true
	}
	if req.TriggerPrice != nil {
		request["triggerPrice"] = toPrecision(*req.TriggerPrice, market.Precision.Price)
	}
	data, err := e.dataObject(ctx, epCreateOrder, request.Extend(params))
	if err != nil {
		return exchange.Order{}, err
	}
	return e.parseOrder(data, &market), nil
}

// CancelOrder cancels by order id, or by client order id when params carry one.
func (e *Exchange) CancelOrder(ctx context.Context, id, symbol string, params exchange.Params) (exchange.Order, error) {
	ep := epCancelOrder
	if clientID, ok := clientIDParam(params); ok {
		ep = epCancelByClient
		id = clientID
	}
	data, err := e.data(ctx, ep, exchange.Params{"id": id}.Extend(params.Omit("clientId", "clientOrderId", "client_order_id")))
	if err != nil {
		return exchange.Order{}, err
	}
	return exchange.Order{ID: exchange.Ptr(id), Symbol: symbol, Info: data}, nil
}

// CancelAllOrders cancels every open order, optionally for one market.
func (e *Exchange) CancelAllOrders(ctx context.Context, symbol string, params exchange.Params) ([]exchange.Order, error) {
	request := exchange.Params{}
	if symbol != "" {
		market, err := e.client.Market(ctx, symbol)
		if err != nil {
			return nil, err
		}
		request["symbol"] = market.ID
	}
	data, err := e.data(ctx, epCancelAll, request.Extend(params))
	if err != nil {
		return nil, err
	}
	return []exchange.Order{{Symbol: symbol, Status: exchange.Ptr("canceled"), Info: data}}, nil
}

// FetchOrder fetches one order by id or client order id.
func (e *Exchange) FetchOrder(ctx context.Context, id, symbol string, params exchange.Params) (exchange.Order, error) {
	if _, err := e.client.LoadMarkets(ctx, false); err != nil {
		return exchange.Order{}, err
	}
	ep := epOrder
	if clientID, ok := clientIDParam(params); ok {
		ep = epOrderByClientID
		id = clientID
	}
	data, err := e.dataObject(ctx, ep, exchange.Params{"id": id}.Extend(params.Omit("clientId", "clientOrderId", "client_order_id")))
	if err != nil {
		return exchange.Order{}, err
	}
	return e.parseOrder(data, nil), nil
}

// FetchOpenOrders returns every open order; symbol filters client side.
func (e *Exchange) FetchOpenOrders(ctx context.Context, symbol string, q exchange.Query) ([]exchange.Order, error) {
	if _, err := e.client.LoadMarkets(ctx, false); err != nil {
		return nil, err
	}
	data, err := e.data(ctx, epOpenOrders, q.Params)
	if err != nil {
		return nil, err
	}
	orders := e.parseOrders(exchange.AsList(data), nil)
	orders = filterOrders(orders, symbol, func(exchange.Order) bool { return true })
	return exchange.SinceLimit(orders, orderTime, q.Since, q.Limit), nil
}

// FetchClosedOrders returns filled and canceled orders from the order history.
func (e *Exchange) FetchClosedOrders(ctx context.Context, symbol string, q exchange.Query) ([]exchange.Order, error) {
	var market *exchange.Market
	if symbol != "" {
		m, err := e.client.Market(ctx, symbol)
		if err != nil {
			return nil, err
		}
		market = &m
	} else if _, err := e.client.LoadMarkets(ctx, false); err != nil {
		return nil, err
	}
	request, params := historyRequest(marketID(market), q)
	data, err := e.dataObject(ctx, epHistoryOrders, request.Extend(params))
	if err != nil {
		return nil, err
	}
	orders := e.parseOrders(exchange.Items(data, "orders"), market)
	orders = filterOrders(orders, "", func(o exchange.Order) bool {
		return exchange.Deref(o.Status) != "open"
	})
	return exchange.SinceLimit(orders, orderTime, q.Since, q.Limit), nil
}

// FetchMyTrades returns the account fills.
func (e *Exchange) FetchMyTrades(ctx context.Context, symbol string, q exchange.Query) ([]exchange.Trade, error) {
	var market *exchange.Market
	if symbol != "" {
		m, err := e.client.Market(ctx, symbol)
		if err != nil {
			return nil, err
		}
		market = &m
	} else if _, err := e.client.LoadMarkets(ctx, false); err != nil {
		return nil, err
	}
	request, params := historyRequest(marketID(market), q)
	data, err := e.dataObject(ctx, epFills, request.Extend(params))
	if err != nil {
		return nil, err
	}
	trades := e.parseTrades(exchange.Items(data, "orders"), market)
	return exchange.SinceLimit(trades, tradeTime, q.Since, q.Limit), nil
}

// FetchFundingHistory returns funding payments of the account.
func (e *Exchange) FetchFundingHistory(ctx context.Context, symbol string, q exchange.Query) ([]exchange.FundingIncome, error) {
	var market *exchange.Market
	if symbol != "" {
		m, err := e.client.Market(ctx, symbol)
		if err != nil {
			return nil, err
		}
		market = &m
	} else if _, err := e.client.LoadMarkets(ctx, false); err != nil {
		return nil, err
	}
	request, params := historyRequest(marketID(market), q)
	data, err := e.dataObject(ctx, epFunding, request.Extend(params))
	if err != nil {
		return nil, err
	}
	entries := exchange.Items(data, "fundingValues")
	out := make([]exchange.FundingIncome, 0, len(entries))
	for _, item := range entries {
		if raw := exchange.AsObject(item); raw != nil {
			out = append(out, e.parseIncome(raw, market))
		}
	}
	return exchange.SinceLimit(out, func(f exchange.FundingIncome) *int64 { return f.Timestamp }, q.Since, q.Limit), nil
}

// SetLeverage sets the initial margin rate to 1/leverage.
func (e *Exchange) SetLeverage(ctx context.Context, leverage, symbol string, params exchange.Params) (exchange.Leverage, error) {
	if symbol == "" {
		return exchange.Leverage{}, errs.Newf(exchangeID, errs.ClassArgumentsRequired, "setLeverage() requires a symbol argument")
	}
	market, err := e.client.Market(ctx, symbol)
	if err != nil {
		return exchange.Leverage{}, err
	}
	rate, ok := numeric.Inverse(leverage, 4)
	if !ok {
		return exchange.Leverage{}, errs.Newf(exchangeID, errs.ClassBadRequest, fmt.Sprintf("setLeverage() invalid leverage %q", leverage))
	}
	data, err := e.data(ctx, epSetMarginRate, exchange.Params{"symbol": market.ID, "initialMarginRate": rate}.Extend(params))
	if err != nil {
		return exchange.Leverage{}, err
	}
	return exchange.Leverage{Symbol: market.Symbol, Long: &leverage, Short: &leverage, Info: data}, nil
}

// FetchTransfers returns the transfer history.
func (e *Exchange) FetchTransfers(ctx context.Context, code string, q exchange.Query) ([]exchange.Transfer, error) {
	request := exchange.Params{}
	if code != "" {
		request["token"] = code
	}
	if q.Since != nil {
		request["beginTimeInclusive"] = *q.Since
	}
	if q.Limit > 0 {
		request["limit"] = q.Limit
	}
	data, err := e.data(ctx, epTransfers, request.Extend(q.Params))
	if err != nil {
		return nil, err
	}
	rows := exchange.AsList(data)
	if rows == nil {
		rows = exchange.Items(exchange.AsObject(data), "transfers")
	}
	out := make([]exchange.Transfer, 0, len(rows))
	for _, item := range rows {
		if raw := exchange.AsObject(item); raw != nil {
			out = append(out, parseTransfer(raw))
		}
	}
	return exchange.SinceLimit(out, func(t exchange.Transfer) *int64 { return t.Timestamp }, q.Since, q.Limit), nil
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

// historyRequest maps since/limit and the until aliases onto the
// beginTimeInclusive/endTimeExclusive window of history endpoints.
func historyRequest(marketID string, q exchange.Query) (exchange.Params, exchange.Params) {
	request := exchange.Params{}
	if marketID != "" {
		request["symbol"] = marketID
	}
	if q.Since != nil {
		request["beginTimeInclusive"] = *q.Since
	}
	if q.Limit > 0 {
		request["limit"] = q.Limit
	}
	params := q.Params
	for _, key := range []string{"endTime", "endTimeExclusive", "until"} {
		if v, ok := params.String(key); ok {
			request["endTimeExclusive"] = v
			break
		}
	}
	return request, params.Omit("endTime", "endTimeExclusive", "until")
}

func clientIDParam(params exchange.Params) (string, bool) {
	for _, key := range []string{"clientId", "clientOrderId", "client_order_id"} {
		if v, ok := params.String(key); ok {
			return v, true
		}
	}
	return "", false
}

// clientOrderID formats apexomni-<accountId>-<ms>-<6 digits>.
func clientOrderID(accountID string, nowMillis int64) string {
	if accountID == "" || accountID == "0" {
		accountID = strconv.FormatInt(100_000_000_000+rand.Int64N(900_000_000_000), 10)
	}
	return fmt.Sprintf("apexomni-%s-%d-%06d", accountID, nowMillis, rand.IntN(1_000_000))
}

// toPrecision truncates value to the decimals of step; unknown steps pass value through.
func toPrecision(value string, step *string) string {
	if step == nil {
		return value
	}
	if out, ok := numeric.Truncate(value, int32(numeric.ScaleFromStep(*step))); ok {
		return out
	}
	return value
}

// limitFeeFor is price*size*taker plus one tick, truncated to the tick precision.
func limitFeeFor(price, size, taker string, tick *string) string {
	fee := numeric.Mul(numeric.Mul(&price, &size), &taker)
	if tick != nil {
		fee = numeric.Add(fee, tick)
	}
	if fee == nil {
		return "0"
	}
	return toPrecision(*fee, tick)
}

func firstItem(list []any) any {
	if len(list) == 0 {
		return nil
	}
	return list[0]
}

func marketID(market *exchange.Market) string {
	if market == nil {
		return ""
	}
	return market.ID
}

func filterOrders(orders []exchange.Order, symbol string, keep func(exchange.Order) bool) []exchange.Order {
	out := orders[:0]
	for _, o := range orders {
		if symbol != "" && o.Symbol != symbol {
			continue
		}
		if keep(o) {
			out = append(out, o)
		}
	}
	return out
}

func tradeTime(t exchange.Trade) *int64 { return t.Timestamp }

func orderTime(o exchange.Order) *int64 { return o.Timestamp }
