// Package bitvavo implements the Bitvavo spot REST adapter.
package bitvavo

import (
	"context"
	"strconv"
	"strings"

	"github.com/coachpo/meltica-rest/errs"
	"github.com/coachpo/meltica-rest/internal/exchange"
	"github.com/coachpo/meltica-rest/internal/numeric"
)

// Exchange is the Bitvavo client.
type Exchange struct {
	exchange.Unsupported

	client     *exchange.Client
	adapter    *adapter
	operatorID int64
	currencies exchange.Lazy[map[string]exchange.Currency]
}

var _ exchange.Exchange = (*Exchange)(nil)

// New builds a Bitvavo client.
func New(opts Options) (*Exchange, error) {
	opts = opts.withDefaults()
	desc := describe()
	a := newAdapter(desc, opts.BaseURL, opts.AccessWindow)
	client, err := exchange.NewClient(a, opts.Client)
	if err != nil {
		return nil, err
	}
	e := &Exchange{
		Unsupported: exchange.Unsupported{ExchangeID: exchangeID},
		client:      client,
		adapter:     a,
		operatorID:  opts.OperatorID,
	}
	client.UseMarketLoader(func(ctx context.Context) ([]exchange.Market, error) {
		return e.FetchMarkets(ctx, nil)
	})
	return e, nil
}

// ID returns "bitvavo".
func (e *Exchange) ID() string { return exchangeID }

// Describe returns the static descriptor.
func (e *Exchange) Describe() *exchange.Descriptor { return e.client.Describe() }

// LoadMarkets fills the market cache.
func (e *Exchange) LoadMarkets(ctx context.Context, reload bool) ([]exchange.Market, error) {
	return e.client.LoadMarkets(ctx, reload)
}

// FetchTime returns the server time in milliseconds.
func (e *Exchange) FetchTime(ctx context.Context, params exchange.Params) (int64, error) {
	raw, err := e.client.CallObject(ctx, epTime, params)
	if err != nil {
		return 0, err
	}
	return exchange.Deref(exchange.Int64(raw, "time")), nil
}

// FetchMarkets lists the spot markets. The assets listing is fetched once
// for the base precision.
func (e *Exchange) FetchMarkets(ctx context.Context, params exchange.Params) ([]exchange.Market, error) {
	currencies, err := e.currencies.Get(ctx, e.fetchCurrencies)
	if err != nil {
		return nil, err
	}
	rows, err := e.client.CallList(ctx, epMarkets, params)
	if err != nil {
		return nil, err
	}
	fees := e.Describe().Fees
	markets := make([]exchange.Market, 0, len(rows))
	for _, item := range rows {
		if raw := exchange.AsObject(item); raw != nil {
			markets = append(markets, parseMarket(raw, currencies, fees))
		}
	}
	return markets, nil
}

// FetchCurrencies lists the assets and refreshes the cached copy.
func (e *Exchange) FetchCurrencies(ctx context.Context, params exchange.Params) (map[string]exchange.Currency, error) {
	rows, err := e.client.CallList(ctx, epAssets, params)
	if err != nil {
		return nil, err
	}
	currencies := parseCurrencies(rows)
	e.currencies.Set(currencies)
	return currencies, nil
}

func (e *Exchange) fetchCurrencies(ctx context.Context) (map[string]exchange.Currency, error) {
	rows, err := e.client.CallList(ctx, epAssets, nil)
	if err != nil {
		return nil, err
	}
	return parseCurrencies(rows), nil
}

// FetchTicker fetches the 24h ticker of one market.
func (e *Exchange) FetchTicker(ctx context.Context, symbol string, params exchange.Params) (exchange.Ticker, error) {
	market, err := e.client.Market(ctx, symbol)
	if err != nil {
		return exchange.Ticker{}, err
	}
	raw, err := e.client.CallObject(ctx, epTicker, exchange.Params{"market": market.ID}.Extend(params))
	if err != nil {
		return exchange.Ticker{}, err
	}
	return e.parseTicker(raw, &market), nil
}

// FetchTickers fetches every 24h ticker in one call.
func (e *Exchange) FetchTickers(ctx context.Context, symbols []string, params exchange.Params) (map[string]exchange.Ticker, error) {
	if _, err := e.client.LoadMarkets(ctx, false); err != nil {
		return nil, err
	}
	rows, err := e.client.CallList(ctx, epTicker, params)
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

// FetchOrderBook returns the book; limit maps to depth.
func (e *Exchange) FetchOrderBook(ctx context.Context, symbol string, limit int, params exchange.Params) (exchange.OrderBook, error) {
	market, err := e.client.Market(ctx, symbol)
	if err != nil {
		return exchange.OrderBook{}, err
	}
	request := exchange.Params{"market": market.ID}
	if limit > 0 {
		request["depth"] = limit
	}
	raw, err := e.client.CallObject(ctx, epBook, request.Extend(params))
	if err != nil {
		return exchange.OrderBook{}, err
	}
	return exchange.OrderBook{
		Symbol: market.Symbol,
		Bids:   exchange.Levels(exchange.Items(raw, "bids")),
		Asks:   exchange.Levels(exchange.Items(raw, "asks")),
		Nonce:  exchange.Int64(raw, "nonce"),
		Info:   raw,
	}, nil
}

// FetchTrades returns public trades; "until" in params maps to end.
func (e *Exchange) FetchTrades(ctx context.Context, symbol string, q exchange.Query) ([]exchange.Trade, error) {
	market, err := e.client.Market(ctx, symbol)
	if err != nil {
		return nil, err
	}
	request, params := rangeRequest(market.ID, q, maxTradesLimit)
	rows, err := e.client.CallList(ctx, epTrades, request.Extend(params))
	if err != nil {
		return nil, err
	}
	return exchange.SinceLimit(e.parseTrades(rows, &market), tradeTime, q.Since, q.Limit), nil
}

// FetchOHLCV returns candles. With since set and no explicit end the window
// covers limit candles, at most 1440.
func (e *Exchange) FetchOHLCV(ctx context.Context, symbol, timeframe string, q exchange.Query) ([]exchange.OHLCV, error) {
	market, err := e.client.Market(ctx, symbol)
	if err != nil {
		return nil, err
	}
	interval, err := e.Describe().Timeframe(timeframe)
	if err != nil {
		return nil, err
	}
	request := exchange.Params{"market": market.ID, "interval": interval}
	limit := q.Limit
	if q.Since != nil {
		duration, err := exchange.TimeframeDuration(timeframe)
		if err != nil {
			return nil, errs.Newf(exchangeID, errs.ClassBadRequest, err.Error())
		}
		if limit <= 0 || limit > maxOHLCVLimit {
			limit = maxOHLCVLimit
		}
		request["start"] = *q.Since
		request["end"] = *q.Since + int64(limit)*duration.Milliseconds()
	}
	params := q.Params
	if until, ok := params.String("until"); ok {
		request["end"] = until
		params = params.Omit("until")
	}
	if limit > 0 {
		request["limit"] = min(limit, maxOHLCVLimit)
	}
	rows, err := e.client.CallList(ctx, epCandles, request.Extend(params))
	if err != nil {
		return nil, err
	}
	candles := make([]exchange.OHLCV, 0, len(rows))
	for _, item := range rows {
		if row := exchange.AsList(item); len(row) >= 6 {
			candles = append(candles, parseOHLCV(row))
		}
	}
	return exchange.SinceLimit(candles, func(c exchange.OHLCV) *int64 { return &c.Timestamp }, q.Since, q.Limit), nil
}

// FetchBalance returns available and in-order amounts per asset.
func (e *Exchange) FetchBalance(ctx context.Context, params exchange.Params) (exchange.Balances, error) {
	rows, err := e.client.CallList(ctx, epBalance, params)
	if err != nil {
		return exchange.Balances{}, err
	}
	return parseBalance(rows), nil
}

// CreateOrder places an order. Market orders sized by cost, from price or a
// "cost" param, send amountQuote instead of amount. Trigger prices turn the
// order into a stopLoss or takeProfit variant.
func (e *Exchange) CreateOrder(ctx context.Context, req exchange.OrderRequest) (exchange.Order, error) {
	market, err := e.client.Market(ctx, req.Symbol)
	if err != nil {
		return exchange.Order{}, err
	}
	request, err := e.createOrderRequest(ctx, market, req)
	if err != nil {
		return exchange.Order{}, err
	}
	raw, err := e.client.CallObject(ctx, epCreateOrder, request)
	if err != nil {
		return exchange.Order{}, err
	}
	return e.parseOrder(raw, &market), nil
}

func (e *Exchange) createOrderRequest(ctx context.Context, market exchange.Market, req exchange.OrderRequest) (exchange.Params, error) {
	orderType := normalizeOrderType(req.Type)
	request := exchange.Params{
		"market":    market.ID,
		"side":      strings.ToLower(req.Side),
		"orderType": orderType,
	}
	params := req.Params
	isMarket := orderType == "market" || orderType == "stopLoss" || orderType == "takeProfit"
	isLimit := orderType == "limit" || orderType == "stopLossLimit" || orderType == "takeProfitLimit"

	timeInForce := req.TimeInForce
	if v, ok := params.String("timeInForce"); ok {
		timeInForce = v
	}
	triggerPrice := exchange.Deref(req.TriggerPrice)
	for _, key := range []string{"triggerPrice", "stopPrice", "triggerAmount"} {
		if v, ok := params.String(key); ok && triggerPrice == "" {
			triggerPrice = v
		}
	}
	stopLossPrice, hasStopLoss := params.String("stopLossPrice")
	takeProfitPrice, hasTakeProfit := params.String("takeProfitPrice")
	postOnly := !isMarket && (req.PostOnly || timeInForce == "PO")
	if v, ok := params["postOnly"].(bool); ok && !isMarket {
		postOnly = v
	}
	params = params.Omit("timeInForce", "triggerPrice", "stopPrice", "triggerAmount", "stopLossPrice", "takeProfitPrice", "postOnly", "operatorId")

	switch {
	case isMarket:
		var cost string
		if req.Price != nil {
			cost = exchange.Deref(numeric.Mul(&req.Amount, req.Price))
		} else if v, ok := params.String("cost"); ok {
			cost = v
		}
		params = params.Omit("cost")
		if cost != "" {
			request["amountQuote"] = e.quoteToPrecision(ctx, market, cost)
		} else {
			request["amount"] = amountToPrecision(market, req.Amount)
		}
	case isLimit:
		if req.Price == nil {
			return nil, errs.Newf(exchangeID, errs.ClassArgumentsRequired, "createOrder() requires a price argument for "+orderType+" orders")
		}
		request["price"] = priceToPrecision(market, *req.Price)
		request["amount"] = amountToPrecision(market, req.Amount)
	default:
		return nil, errs.Newf(exchangeID, errs.ClassInvalidOrder, "createOrder() unsupported order type "+orderType)
	}

	isTakeProfit := hasTakeProfit || orderType == "takeProfit" || orderType == "takeProfitLimit"
	isStopLoss := hasStopLoss || (triggerPrice != "" && !isTakeProfit) || orderType == "stopLoss" || orderType == "stopLossLimit"
	switch {
	case isStopLoss:
		if hasStopLoss {
			triggerPrice = stopLossPrice
		}
		request["orderType"] = pick(isMarket, "stopLoss", "stopLossLimit")
	case isTakeProfit:
		if hasTakeProfit {
			triggerPrice = takeProfitPrice
		}
		request["orderType"] = pick(isMarket, "takeProfit", "takeProfitLimit")
	}
	if triggerPrice != "" {
		request["triggerAmount"] = priceToPrecision(market, triggerPrice)
		request["triggerType"] = "price"
		request["triggerReference"] = "lastTrade"
	}
	if timeInForce != "" && timeInForce != "PO" {
		request["timeInForce"] = timeInForce
	}
	if postOnly {
		request["postOnly"] = true
	}
	if req.ClientOrderID != "" {
		request["clientOrderId"] = req.ClientOrderID
	}
	e.attachOperator(request, req.Params)
	return request.Extend(params), nil
}

// EditOrder amends price, amount or trigger of an open order.
func (e *Exchange) EditOrder(ctx context.Context, id string, req exchange.OrderRequest) (exchange.Order, error) {
	market, err := e.client.Market(ctx, req.Symbol)
	if err != nil {
		return exchange.Order{}, err
	}
	params := req.Params
	request := exchange.Params{}
	if req.Price != nil {
		request["price"] = priceToPrecision(market, *req.Price)
	}
	if req.Amount != "" {
		request["amount"] = amountToPrecision(market, req.Amount)
	}
	if v, ok := params.String("amountRemaining"); ok {
		request["amountRemaining"] = amountToPrecision(market, v)
	}
	triggerPrice := exchange.Deref(req.TriggerPrice)
	for _, key := range []string{"triggerPrice", "stopPrice", "triggerAmount"} {
		if v, ok := params.String(key); ok && triggerPrice == "" {
			triggerPrice = v
		}
	}
	if triggerPrice != "" {
		request["triggerAmount"] = priceToPrecision(market, triggerPrice)
	}
	request = request.Extend(params.Omit("amountRemaining", "triggerPrice", "stopPrice", "triggerAmount", "operatorId"))
	if len(request) == 0 {
		return exchange.Order{}, errs.Newf(exchangeID, errs.ClassArgumentsRequired, "editOrder() requires an amount argument, or a price argument, or non-empty params")
	}
	if !request.Has("clientOrderId") {
		request["orderId"] = id
	}
	e.attachOperator(request, params)
	request["market"] = market.ID
	raw, err := e.client.CallObject(ctx, epEditOrder, request)
	if err != nil {
		return exchange.Order{}, err
	}
	return e.parseOrder(raw, &market), nil
}

// CancelOrder cancels by orderId, or by clientOrderId when params carry one.
func (e *Exchange) CancelOrder(ctx context.Context, id, symbol string, params exchange.Params) (exchange.Order, error) {
	market, request, err := e.orderRequest(ctx, "cancelOrder", id, symbol, params)
	if err != nil {
		return exchange.Order{}, err
	}
	e.attachOperator(request, params)
	raw, err := e.client.CallObject(ctx, epCancelOrder, request.Extend(params.Omit("operatorId")))
	if err != nil {
		return exchange.Order{}, err
	}
	return e.parseOrder(raw, &market), nil
}

// CancelAllOrders cancels open orders, optionally of one market.
func (e *Exchange) CancelAllOrders(ctx context.Context, symbol string, params exchange.Params) ([]exchange.Order, error) {
	request := exchange.Params{}
	var market *exchange.Market
	if symbol != "" {
		m, err := e.client.Market(ctx, symbol)
		if err != nil {
			return nil, err
		}
		market = &m
		request["market"] = m.ID
	} else if _, err := e.client.LoadMarkets(ctx, false); err != nil {
		return nil, err
	}
	rows, err := e.client.CallList(ctx, epCancelOrders, request.Extend(params))
	if err != nil {
		return nil, err
	}
	return e.parseOrders(rows, market), nil
}

// FetchOrder queries one order; the symbol is required.
func (e *Exchange) FetchOrder(ctx context.Context, id, symbol string, params exchange.Params) (exchange.Order, error) {
	market, request, err := e.orderRequest(ctx, "fetchOrder", id, symbol, params)
	if err != nil {
		return exchange.Order{}, err
	}
	raw, err := e.client.CallObject(ctx, epGetOrder, request.Extend(params))
	if err != nil {
		return exchange.Order{}, err
	}
	return e.parseOrder(raw, &market), nil
}

// FetchOpenOrders lists open orders; without a symbol the call costs 25.
func (e *Exchange) FetchOpenOrders(ctx context.Context, symbol string, q exchange.Query) ([]exchange.Order, error) {
	request := exchange.Params{}
	var market *exchange.Market
	if symbol != "" {
		m, err := e.client.Market(ctx, symbol)
		if err != nil {
			return nil, err
		}
		market = &m
		request["market"] = m.ID
	} else if _, err := e.client.LoadMarkets(ctx, false); err != nil {
		return nil, err
	}
	rows, err := e.client.CallList(ctx, epOrdersOpen, request.Extend(q.Params))
	if err != nil {
		return nil, err
	}
	return exchange.SinceLimit(e.parseOrders(rows, market), orderTime, q.Since, q.Limit), nil
}

// FetchClosedOrders reads the order history of one market and drops the
// orders still open.
func (e *Exchange) FetchClosedOrders(ctx context.Context, symbol string, q exchange.Query) ([]exchange.Order, error) {
	if symbol == "" {
		return nil, errs.Newf(exchangeID, errs.ClassArgumentsRequired, "fetchClosedOrders() requires a symbol argument")
	}
	market, err := e.client.Market(ctx, symbol)
	if err != nil {
		return nil, err
	}
	request, params := rangeRequest(market.ID, q, 0)
	rows, err := e.client.CallList(ctx, epOrders, request.Extend(params))
	if err != nil {
		return nil, err
	}
	var closed []exchange.Order
	for _, order := range e.parseOrders(rows, &market) {
		if exchange.Deref(order.Status) != "open" {
			closed = append(closed, order)
		}
	}
	return exchange.SinceLimit(closed, orderTime, q.Since, q.Limit), nil
}

// FetchMyTrades lists the account's fills of one market.
func (e *Exchange) FetchMyTrades(ctx context.Context, symbol string, q exchange.Query) ([]exchange.Trade, error) {
	if symbol == "" {
		return nil, errs.Newf(exchangeID, errs.ClassArgumentsRequired, "fetchMyTrades() requires a symbol argument")
	}
	market, err := e.client.Market(ctx, symbol)
	if err != nil {
		return nil, err
	}
	request, params := rangeRequest(market.ID, q, 0)
	rows, err := e.client.CallList(ctx, epMyTrades, request.Extend(params))
	if err != nil {
		return nil, err
	}
	return exchange.SinceLimit(e.parseTrades(rows, &market), tradeTime, q.Since, q.Limit), nil
}

// FetchTradingFees applies the account fee tier to every market.
func (e *Exchange) FetchTradingFees(ctx context.Context, params exchange.Params) (map[string]exchange.TradingFee, error) {
	if _, err := e.client.LoadMarkets(ctx, false); err != nil {
		return nil, err
	}
	raw, err := e.client.CallObject(ctx, epAccount, params)
	if err != nil {
		return nil, err
	}
	fees := exchange.Child(raw, "fees")
	maker, taker := exchange.String(fees, "maker"), exchange.String(fees, "taker")
	symbols := e.client.Markets().Symbols()
	out := make(map[string]exchange.TradingFee, len(symbols))
	for _, symbol := range symbols {
		out[symbol] = exchange.TradingFee{Symbol: symbol, Maker: maker, Taker: taker, Info: raw}
	}
	return out, nil
}

// FetchDeposits lists deposits, optionally of one currency.
func (e *Exchange) FetchDeposits(ctx context.Context, code string, q exchange.Query) ([]exchange.Transaction, error) {
	return e.fetchTransactions(ctx, epDepositHistory, "deposit", code, q)
}

// FetchWithdrawals lists withdrawals, optionally of one currency.
func (e *Exchange) FetchWithdrawals(ctx context.Context, code string, q exchange.Query) ([]exchange.Transaction, error) {
	return e.fetchTransactions(ctx, epWithdrawalHistory, "withdrawal", code, q)
}

func (e *Exchange) fetchTransactions(ctx context.Context, ep exchange.Endpoint, kind, code string, q exchange.Query) ([]exchange.Transaction, error) {
	request := exchange.Params{}
	if code != "" {
		currency, err := e.currency(ctx, code)
		if err != nil {
			return nil, err
		}
		request["symbol"] = currency.ID
	}
	if q.Since != nil {
		request["start"] = *q.Since
	}
	if q.Limit > 0 {
		request["limit"] = q.Limit
	}
	rows, err := e.client.CallList(ctx, ep, request.Extend(q.Params))
	if err != nil {
		return nil, err
	}
	out := make([]exchange.Transaction, 0, len(rows))
	for _, item := range rows {
		if raw := exchange.AsObject(item); raw != nil {
			tx := parseTransaction(raw, strings.ToUpper(code))
			tx.Type = kind
			out = append(out, tx)
		}
	}
	return exchange.SinceLimit(out, func(tx exchange.Transaction) *int64 { return tx.Timestamp }, q.Since, q.Limit), nil
}

// Withdraw sends funds to an address or IBAN.
func (e *Exchange) Withdraw(ctx context.Context, req exchange.WithdrawRequest) (exchange.Transaction, error) {
	if strings.TrimSpace(req.Address) == "" {
		return exchange.Transaction{}, errs.Newf(exchangeID, errs.ClassInvalidAddress, "withdraw() requires an address")
	}
	currency, err := e.currency(ctx, req.Code)
	if err != nil {
		return exchange.Transaction{}, err
	}
	amount := req.Amount
	if currency.Precision != nil {
		if v, ok := numeric.TruncateTrim(amount, int32(numeric.ScaleFromStep(*currency.Precision))); ok {
			amount = v
		}
	}
	request := exchange.Params{
		"symbol":  currency.ID,
		"amount":  amount,
		"address": req.Address,
	}
	tag := req.Tag
	if v, ok := req.Params.String("tag"); ok && tag == "" {
		tag = v
	}
	if tag != "" {
		request["paymentId"] = tag
	}
	raw, err := e.client.CallObject(ctx, epWithdraw, request.Extend(req.Params.Omit("tag")))
	if err != nil {
		return exchange.Transaction{}, err
	}
	return parseTransaction(raw, currency.Code), nil
}

func (e *Exchange) currency(ctx context.Context, code string) (exchange.Currency, error) {
	currencies, err := e.currencies.Get(ctx, e.fetchCurrencies)
	if err != nil {
		return exchange.Currency{}, err
	}
	currency, ok := currencies[currencyCode(code)]
	if !ok {
		return exchange.Currency{}, errs.Newf(exchangeID, errs.ClassBadRequest, "does not have currency code "+code)
	}
	return currency, nil
}

// orderRequest resolves the market of a symbol-scoped order call and keys
// the request by orderId unless params carry a clientOrderId.
func (e *Exchange) orderRequest(ctx context.Context, method, id, symbol string, params exchange.Params) (exchange.Market, exchange.Params, error) {
	if symbol == "" {
		return exchange.Market{}, nil, errs.Newf(exchangeID, errs.ClassArgumentsRequired, method+"() requires a symbol argument")
	}
	market, err := e.client.Market(ctx, symbol)
	if err != nil {
		return exchange.Market{}, nil, err
	}
	request := exchange.Params{"market": market.ID}
	if !params.Has("clientOrderId") {
		request["orderId"] = id
	}
	return market, request, nil
}

func (e *Exchange) attachOperator(request, params exchange.Params) {
	if v, ok := params["operatorId"]; ok && v != nil {
		request["operatorId"] = v
		return
	}
	if e.operatorID != 0 {
		request["operatorId"] = e.operatorID
	}
}

func (e *Exchange) quoteToPrecision(ctx context.Context, market exchange.Market, cost string) string {
	currencies, err := e.currencies.Get(ctx, e.fetchCurrencies)
	if err != nil {
		return cost
	}
	if quote, ok := currencies[market.Quote]; ok && quote.Precision != nil {
		if v, ok := numeric.TruncateTrim(cost, int32(numeric.ScaleFromStep(*quote.Precision))); ok {
			return v
		}
	}
	return cost
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

// rangeRequest maps since, limit and the "until" param onto start, limit
// and end. A positive maxLimit caps the limit.
func rangeRequest(marketID string, q exchange.Query, maxLimit int) (exchange.Params, exchange.Params) {
	request := exchange.Params{"market": marketID}
	if q.Since != nil {
		request["start"] = *q.Since
	}
	if q.Limit > 0 {
		limit := q.Limit
		if maxLimit > 0 {
			limit = min(limit, maxLimit)
		}
		request["limit"] = limit
	}
	params := q.Params
	if until, ok := params.String("until"); ok {
		request["end"] = until
		params = params.Omit("until")
	}
	return request, params
}

// amountToPrecision truncates to the base asset decimals.
func amountToPrecision(market exchange.Market, amount string) string {
	if market.Precision.Amount == nil {
		return amount
	}
	if v, ok := numeric.TruncateTrim(amount, int32(numeric.ScaleFromStep(*market.Precision.Amount))); ok {
		return v
	}
	return amount
}

// priceToPrecision rounds to the market's significant digits, then cuts to
// eight decimals.
func priceToPrecision(market exchange.Market, price string) string {
	if market.Precision.PriceMode == exchange.PrecisionSignificantDigits && market.Precision.Price != nil {
		if digits, err := strconv.Atoi(*market.Precision.Price); err == nil {
			if v, ok := numeric.RoundSignificant(price, int32(digits)); ok {
				price = v
			}
		}
	}
	if v, ok := numeric.TruncateTrim(price, maxPriceDecimals); ok {
		return v
	}
	return price
}

var orderTypes = map[string]string{
	"market":          "market",
	"limit":           "limit",
	"stoploss":        "stopLoss",
	"stoplosslimit":   "stopLossLimit",
	"takeprofit":      "takeProfit",
	"takeprofitlimit": "takeProfitLimit",
}

// normalizeOrderType accepts any casing of the venue's order types.
func normalizeOrderType(t string) string {
	lower := strings.ToLower(strings.TrimSpace(t))
	if canonical, ok := orderTypes[lower]; ok {
		return canonical
	}
	return lower
}

func pick(cond bool, yes, no string) string {
	if cond {
		return yes
	}
	return no
}

func tradeTime(t exchange.Trade) *int64 { return t.Timestamp }

func orderTime(o exchange.Order) *int64 { return o.Timestamp }
