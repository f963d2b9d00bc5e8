package bitstamp

import (
	"sort"
	"strings"

	"github.com/coachpo/meltica-rest/internal/exchange"
	"github.com/coachpo/meltica-rest/internal/numeric"
)

// tradeMetaKeys are the non-currency keys of user transaction rows.
var tradeMetaKeys = map[string]bool{
	"fee":  true, "price": true, "datetime": true, "tid": true,
	"type": true, "order_id": true, "side": true, "id": true,
}

// resolvePair maps "btc_usd" and "BTC/USD" style ids onto url symbols.
func resolvePair(id string, lookup func(string) (exchange.Market, bool)) (exchange.Market, bool) {
	compact := strings.ToLower(strings.NewReplacer("_", "", "/", "").Replace(id))
	if compact == id {
		return exchange.Market{}, false
	}
	return lookup(compact)
}

// pairMarket splits an unlisted "eth_usdt" or "ETH/USDT" id into a market.
func pairMarket(id string) (exchange.Market, bool) {
	for _, sep := range []string{"_", "/"} {
		base, quote, ok := strings.Cut(id, sep)
		if ok && base != "" && quote != "" {
			b, q := strings.ToUpper(base), strings.ToUpper(quote)
			return exchange.Market{
				ID:      strings.ToLower(base + quote),
				ID2:     strings.ToLower(base + "_" + quote),
				Symbol:  b + "/" + q,
				Base:    b,
				Quote:   q,
				BaseID:  strings.ToLower(base),
				QuoteID: strings.ToLower(quote),
			}, true
		}
	}
	return exchange.Market{}, false
}

func (e *Exchange) safeMarket(id string, known *exchange.Market) exchange.Market {
	market := e.client.Markets().SafeMarket(id, known, resolvePair)
	if market.Symbol == id && id != "" {
		if split, ok := pairMarket(id); ok {
			return split
		}
	}
	return market
}

// parseMarket normalizes a trading-pairs-info row:
//
//	{"trading":"Enabled","base_decimals":8,"url_symbol":"btcusd","name":"BTC/USD",
//	 "instant_and_market_orders":"Enabled","minimum_order":"20.0 USD",
//	 "counter_decimals":2,"description":"Bitcoin / U.S. dollar"}
func parseMarket(raw exchange.Object) (exchange.Market, bool) {
	base, quote, ok := strings.Cut(exchange.StringOr(raw, "", "name"), "/")
	if !ok {
		return exchange.Market{}, false
	}
	baseID, quoteID := strings.ToLower(base), strings.ToLower(quote)
	base, quote = strings.ToUpper(base), strings.ToUpper(quote)
	active := exchange.StringOr(raw, "", "trading") == "Enabled"
	return exchange.Market{
		ID:      exchange.StringOr(raw, "", "url_symbol"),
		ID2:     baseID + "_" + quoteID,
		Symbol:  base + "/" + quote,
		Base:    base,
		Quote:   quote,
		BaseID:  baseID,
		QuoteID: quoteID,
		Type:    "spot",
		Spot:    true,
		Active:  &active,
		Precision: exchange.Precision{
			Amount: numeric.PrecisionFromDecimals(exchange.StringOr(raw, "", "base_decimals")),
			Price:  numeric.PrecisionFromDecimals(exchange.StringOr(raw, "", "counter_decimals")),
		},
		Limits: exchange.Limits{
			Cost: exchange.MinMax{Min: numeric.FirstNumber(exchange.StringOr(raw, "", "minimum_order"))},
		},
		Info: raw,
	}, true
}

// parseCurrencies derives currencies from the pair list; the quote side
// carries the minimum order cost.
func parseCurrencies(rows []any) map[string]exchange.Currency {
	out := make(map[string]exchange.Currency)
	add := func(id, name, decimals string, raw exchange.Object) {
		code := strings.ToUpper(id)
		if _, ok := out[code]; ok {
			return
		}
		currency := exchange.Currency{
			ID:        strings.ToLower(id),
			Code:      code,
			Active:    exchange.Ptr(true),
			Precision: numeric.PrecisionFromDecimals(decimals),
			Info:      raw,
		}
		if name != "" {
			currency.Name = &name
		}
		out[code] = currency
	}
	for _, item := range rows {
		raw := exchange.AsObject(item)
		base, quote, ok := strings.Cut(exchange.StringOr(raw, "", "name"), "/")
		if !ok {
			continue
		}
		baseName, quoteName, _ := strings.Cut(exchange.StringOr(raw, "", "description"), " / ")
		add(base, baseName, exchange.StringOr(raw, "", "base_decimals"), raw)
		add(quote, quoteName, exchange.StringOr(raw, "", "counter_decimals"), raw)
	}
	return out
}

// parseTicker derives quoteVolume as volume * vwap.
func (e *Exchange) parseTicker(raw exchange.Object, known *exchange.Market) exchange.Ticker {
	market := e.safeMarket(exchange.StringOr(raw, "", "pair"), known)
	vwap := exchange.String(raw, "vwap")
	baseVolume := exchange.String(raw, "volume")
	last := exchange.String(raw, "last")
	return exchange.Ticker{
		Symbol:      market.Symbol,
		Timestamp:   exchange.TimestampSeconds(raw, "timestamp"),
		High:        exchange.String(raw, "high"),
		Low:         exchange.String(raw, "low"),
		Bid:         exchange.String(raw, "bid"),
		Ask:         exchange.String(raw, "ask"),
		Vwap:        vwap,
		Open:        exchange.String(raw, "open"),
		Close:       last,
		Last:        last,
		Percentage:  exchange.String(raw, "percent_change_24"),
		BaseVolume:  baseVolume,
		QuoteVolume: numeric.Mul(baseVolume, vwap),
		Info:        raw,
	}
}

// marketFromTrade finds the market of a user transaction from its currency
// columns, e.g. {"btc": "0.5", "usd": "-100", ...}.
func (e *Exchange) marketFromTrade(raw exchange.Object) *exchange.Market {
	var ids []string
	for key := range raw {
		if !tradeMetaKeys[key] {
			ids = append(ids, key)
		}
	}
	if len(ids) != 2 {
		return nil
	}
	cache := e.client.Markets()
	for _, id := range []string{ids[0] + ids[1], ids[1] + ids[0]} {
		if market, ok := cache.ByID(id); ok {
			return &market
		}
	}
	return nil
}

// parseTrade handles public transactions, user transactions and the
// transactions embedded in order status responses.
func (e *Exchange) parseTrade(raw exchange.Object, known *exchange.Market) exchange.Trade {
	market := known
	var pairKey string
	if market == nil {
		if pairKey = pairColumn(raw); pairKey != "" {
			m := e.safeMarket(pairKey, nil)
			market = &m
		}
	}
	if market == nil {
		market = e.marketFromTrade(raw)
	}
	if market == nil {
		market = &exchange.Market{}
	}

	price := exchange.String(raw, "price")
	amount := exchange.String(raw, "amount")
	cost := exchange.String(raw, "cost")
	priceKey := pairKey
	if priceKey == "" {
		priceKey = market.ID2
	}
	if priceKey != "" {
		price = exchange.FirstNonEmpty(exchange.String(raw, priceKey), price)
	}
	if market.BaseID != "" {
		amount = exchange.FirstNonEmpty(exchange.String(raw, market.BaseID), amount)
	}
	if market.QuoteID != "" {
		cost = exchange.FirstNonEmpty(exchange.String(raw, market.QuoteID), cost)
	}

	var timestamp *int64
	if when := exchange.StringOr(raw, "", "date", "datetime"); when != "" {
		if strings.Contains(when, " ") {
			timestamp = exchange.ParseDatetime(when)
		} else {
			timestamp = exchange.TimestampSeconds(raw, "date", "datetime")
		}
	}

	var side *string
	if _, private := raw["id"]; private {
		if sign, ok := numeric.Sign(amount); ok {
			if sign < 0 {
				side = exchange.Ptr("sell")
				amount = numeric.Neg(amount)
			} else {
				side = exchange.Ptr("buy")
			}
		}
	} else {
		switch exchange.StringOr(raw, "", "type") {
		case "0":
			side = exchange.Ptr("buy")
		case "1":
			side = exchange.Ptr("sell")
		}
	}

	if cost == nil {
		cost = numeric.Mul(price, amount)
	}
	trade := exchange.Trade{
		ID:        exchange.String(raw, "id", "tid"),
		Order:     exchange.String(raw, "order_id"),
		Symbol:    market.Symbol,
		Side:      side,
		Timestamp: timestamp,
		Price:     price,
		Amount:    amount,
		Cost:      numeric.Abs(cost),
		Info:      raw,
	}
	if fee := exchange.String(raw, "fee"); fee != nil {
		trade.Fee = &exchange.Fee{Cost: fee}
		if market.Quote != "" {
			trade.Fee.Currency = exchange.Ptr(market.Quote)
		}
	}
	return trade
}

// pairColumn returns the "base_quote" price column of a user transaction,
// preferring a non-zero one when several are present.
func pairColumn(raw exchange.Object) string {
	var keys []string
	for key := range raw {
		if key != "order_id" && strings.Contains(key, "_") {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	for _, key := range keys {
		if v := exchange.String(raw, key); !numeric.IsZero(v) {
			return key
		}
	}
	if len(keys) > 0 {
		return keys[0]
	}
	return ""
}

func parseOHLCV(raw exchange.Object) exchange.OHLCV {
	return exchange.OHLCV{
		Timestamp: exchange.Deref(exchange.TimestampSeconds(raw, "timestamp")),
		Open:      exchange.String(raw, "open"),
		High:      exchange.String(raw, "high"),
		Low:       exchange.String(raw, "low"),
		Close:     exchange.String(raw, "close"),
		Volume:    exchange.String(raw, "volume"),
	}
}

func parseBalance(rows []any) exchange.Balances {
	assets := make(map[string]exchange.Balance, len(rows))
	for _, item := range rows {
		raw := exchange.AsObject(item)
		id := exchange.StringOr(raw, "", "currency")
		if id == "" {
			continue
		}
		assets[strings.ToUpper(id)] = exchange.Balance{
			Free:  exchange.String(raw, "available"),
			Used:  exchange.String(raw, "reserved"),
			Total: exchange.String(raw, "total"),
		}
	}
	return exchange.Balances{Assets: assets, Info: rows}
}

// parseOrder handles create, cancel, open order and order status shapes.
// Status responses carry no timestamp.
func (e *Exchange) parseOrder(raw exchange.Object, known *exchange.Market) exchange.Order {
	market := known
	if pair := exchange.StringLower(raw, "currency_pair", "market"); pair != nil {
		m := e.safeMarket(*pair, known)
		market = &m
	}
	var side *string
	if t := exchange.String(raw, "type"); t != nil {
		if *t == "1" {
			side = exchange.Ptr("sell")
		} else {
			side = exchange.Ptr("buy")
		}
	}
	order := exchange.Order{
		ID:            exchange.String(raw, "id"),
		ClientOrderID: exchange.String(raw, "client_order_id"),
		Side:          side,
		Status:        exchange.MapEnum(orderStatuses, exchange.String(raw, "status")),
		Timestamp:     exchange.ParseDatetime(exchange.StringOr(raw, "", "datetime")),
		Price:         exchange.String(raw, "price"),
		Amount:        exchange.String(raw, "amount"),
		Remaining:     exchange.String(raw, "amount_remaining"),
		Info:          raw,
	}
	if market != nil {
		order.Symbol = market.Symbol
	}
	for _, item := range exchange.Items(raw, "transactions") {
		if tx := exchange.AsObject(item); tx != nil {
			order.Trades = append(order.Trades, e.parseTrade(tx, market))
		}
	}
	if len(order.Trades) > 0 {
		var filled, cost *string
		for _, t := range order.Trades {
			filled = sumOrSet(filled, t.Amount)
			cost = sumOrSet(cost, t.Cost)
		}
		order.Filled = filled
		order.Cost = cost
		order.Average = numeric.Div(cost, filled)
		if order.Symbol == "" {
			order.Symbol = order.Trades[0].Symbol
		}
	}
	return order
}

func sumOrSet(acc, v *string) *string {
	if acc == nil {
		return v
	}
	if v == nil {
		return acc
	}
	return numeric.Add(acc, v)
}

func parseTradingFee(raw exchange.Object, symbol string) exchange.TradingFee {
	fees := exchange.Child(raw, "fees")
	return exchange.TradingFee{
		Symbol: symbol,
		Maker:  exchange.String(fees, "maker"),
		Taker:  exchange.String(fees, "taker"),
		Info:   raw,
	}
}
