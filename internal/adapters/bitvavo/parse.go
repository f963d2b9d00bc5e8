package bitvavo

import (
	"strconv"
	"strings"

	"github.com/coachpo/meltica-rest/internal/exchange"
	"github.com/coachpo/meltica-rest/internal/numeric"
)

// currencyCode turns a venue asset id into a unified code.
func currencyCode(id string) string {
	code := strings.ToUpper(id)
	if renamed, ok := commonCurrencies[code]; ok {
		return renamed
	}
	return code
}

// splitMarket maps an unlisted "BASE-QUOTE" id onto a market.
func splitMarket(id string, _ func(string) (exchange.Market, bool)) (exchange.Market, bool) {
	baseID, quoteID, ok := strings.Cut(id, "-")
	if !ok || baseID == "" || quoteID == "" {
		return exchange.Market{}, false
	}
	base, quote := currencyCode(baseID), currencyCode(quoteID)
	return exchange.Market{
		ID:      id,
		Symbol:  base + "/" + quote,
		Base:    base,
		Quote:   quote,
		BaseID:  baseID,
		QuoteID: quoteID,
		Type:    "spot",
		Spot:    true,
	}, true
}

func (e *Exchange) safeMarket(id *string, known *exchange.Market) exchange.Market {
	return e.client.Markets().SafeMarket(exchange.Deref(id), known, splitMarket)
}

// parseMarket normalizes a markets row. Amount precision comes from the
// base asset's decimals; Precision.Price is pricePrecision, a count of
// significant digits.
//
//	{"market":"BTC-EUR","status":"trading","base":"BTC","quote":"EUR","pricePrecision":5,
//	 "minOrderInQuoteAsset":"10","minOrderInBaseAsset":"0.001","orderTypes":["market","limit"]}
func parseMarket(raw exchange.Object, currencies map[string]exchange.Currency, fees exchange.Fees) exchange.Market {
	baseID := exchange.StringOr(raw, "", "base")
	quoteID := exchange.StringOr(raw, "", "quote")
	base, quote := currencyCode(baseID), currencyCode(quoteID)
	active := exchange.StringOr(raw, "", "status") == "trading"
	precision := numeric.PrecisionFromDecimals("8")
	if currency, ok := currencies[base]; ok && currency.Precision != nil {
		precision = currency.Precision
	}
	return exchange.Market{
		ID:      exchange.StringOr(raw, "", "market"),
		Symbol:  base + "/" + quote,
		Base:    base,
		Quote:   quote,
		BaseID:  baseID,
		QuoteID: quoteID,
		Type:    "spot",
		Spot:    true,
		Active:  &active,
		Taker:   exchange.Ptr(fees.Taker),
		Maker:   exchange.Ptr(fees.Maker),
		Precision: exchange.Precision{
			Amount:    precision,
			Price:     exchange.String(raw, "pricePrecision"),
			PriceMode: exchange.PrecisionSignificantDigits,
		},
		Limits: exchange.Limits{
			Amount: exchange.MinMax{Min: exchange.String(raw, "minOrderInBaseAsset")},
			Cost:   exchange.MinMax{Min: exchange.String(raw, "minOrderInQuoteAsset")},
		},
		Info: raw,
	}
}

// parseCurrencies normalizes the assets listing:
//
//	{"symbol":"BTC","name":"Bitcoin","decimals":8,"depositFee":"0","depositConfirmations":10,
//	 "depositStatus":"OK","withdrawalFee":"0.2","withdrawalMinAmount":"0.2",
//	 "withdrawalStatus":"OK","networks":["Mainnet"],"message":""}
func parseCurrencies(rows []any) map[string]exchange.Currency {
	out := make(map[string]exchange.Currency, len(rows))
	for _, item := range rows {
		raw := exchange.AsObject(item)
		id := exchange.StringOr(raw, "", "symbol")
		if id == "" {
			continue
		}
		code := currencyCode(id)
		deposit := exchange.StringOr(raw, "", "depositStatus") == "OK"
		withdraw := exchange.StringOr(raw, "", "withdrawalStatus") == "OK"
		active := deposit && withdraw
		fee := exchange.String(raw, "withdrawalFee")
		networks := make(map[string]exchange.Network)
		for _, n := range exchange.Items(raw, "networks") {
			networkID, ok := n.(string)
			if !ok {
				continue
			}
			networkCode := networkID
			if mapped, ok := networkCodes[networkID]; ok {
				networkCode = mapped
			}
			networks[networkCode] = exchange.Network{
				ID:       networkID,
				Network:  networkCode,
				Active:   &active,
				Deposit:  &deposit,
				Withdraw: &withdraw,
				Fee:      fee,
				Info:     raw,
			}
		}
		out[code] = exchange.Currency{
			ID:        id,
			Code:      code,
			Name:      exchange.String(raw, "name"),
			Active:    &active,
			Deposit:   &deposit,
			Withdraw:  &withdraw,
			Fee:       fee,
			Precision: numeric.PrecisionFromDecimals(exchange.StringOr(raw, "8", "decimals")),
			Networks:  networks,
			Info:      raw,
		}
	}
	return out
}

func (e *Exchange) parseTicker(raw exchange.Object, known *exchange.Market) exchange.Ticker {
	market := e.safeMarket(exchange.String(raw, "market"), known)
	last := exchange.String(raw, "last")
	return exchange.Ticker{
		Symbol:      market.Symbol,
		Timestamp:   exchange.Int64(raw, "timestamp"),
		High:        exchange.String(raw, "high"),
		Low:         exchange.String(raw, "low"),
		Bid:         exchange.String(raw, "bid"),
		BidVolume:   exchange.String(raw, "bidSize"),
		Ask:         exchange.String(raw, "ask"),
		AskVolume:   exchange.String(raw, "askSize"),
		Open:        exchange.String(raw, "open"),
		Close:       last,
		Last:        last,
		BaseVolume:  exchange.String(raw, "volume"),
		QuoteVolume: exchange.String(raw, "volumeQuote"),
		Info:        raw,
	}
}

// parseTrade handles public trades {"id","timestamp","amount","price","side"}
// and fills {"id"|"fillId","orderId","market","taker","fee","feeCurrency",...}.
func (e *Exchange) parseTrade(raw exchange.Object, known *exchange.Market) exchange.Trade {
	market := e.safeMarket(exchange.String(raw, "market"), known)
	price := exchange.String(raw, "price")
	amount := exchange.String(raw, "amount")
	trade := exchange.Trade{
		ID:        exchange.String(raw, "id", "fillId"),
		Order:     exchange.String(raw, "orderId"),
		Symbol:    market.Symbol,
		Side:      exchange.String(raw, "side"),
		Timestamp: exchange.Int64(raw, "timestamp"),
		Price:     price,
		Amount:    amount,
		Cost:      numeric.Mul(price, amount),
		Info:      raw,
	}
	if taker := exchange.Bool(raw, "taker"); taker != nil {
		role := "maker"
		if *taker {
			role = "taker"
		}
		trade.TakerOrMaker = &role
	}
	if fee := exchange.String(raw, "fee"); fee != nil {
		trade.Fee = &exchange.Fee{Cost: fee}
		if currency := exchange.String(raw, "feeCurrency"); currency != nil {
			trade.Fee.Currency = exchange.Ptr(currencyCode(*currency))
		}
	}
	return trade
}

// parseOHLCV reads [timestamp, open, high, low, close, volume] rows.
func parseOHLCV(row []any) exchange.OHLCV {
	var ts int64
	if s := exchange.CellString(row, 0); s != nil {
		ts, _ = strconv.ParseInt(*s, 10, 64)
	}
	return exchange.OHLCV{
		Timestamp: ts,
		Open:      exchange.CellString(row, 1),
		High:      exchange.CellString(row, 2),
		Low:       exchange.CellString(row, 3),
		Close:     exchange.CellString(row, 4),
		Volume:    exchange.CellString(row, 5),
	}
}

func parseBalance(rows []any) exchange.Balances {
	assets := make(map[string]exchange.Balance, len(rows))
	for _, item := range rows {
		raw := exchange.AsObject(item)
		id := exchange.StringOr(raw, "", "symbol")
		if id == "" {
			continue
		}
		free := exchange.String(raw, "available")
		used := exchange.String(raw, "inOrder")
		assets[currencyCode(id)] = exchange.Balance{Free: free, Used: used, Total: numeric.Add(free, used)}
	}
	return exchange.Balances{Assets: assets, Info: rows}
}

// parseOrder derives cost from filledAmountQuote, or amountQuote minus
// amountQuoteRemaining for market orders sized in quote.
func (e *Exchange) parseOrder(raw exchange.Object, known *exchange.Market) exchange.Order {
	market := e.safeMarket(exchange.String(raw, "market"), known)
	cost := exchange.String(raw, "filledAmountQuote")
	if cost == nil {
		cost = numeric.Sub(exchange.String(raw, "amountQuote"), exchange.String(raw, "amountQuoteRemaining"))
	}
	filled := exchange.String(raw, "filledAmount")
	order := exchange.Order{
		ID:                  exchange.String(raw, "orderId"),
		ClientOrderID:       exchange.String(raw, "clientOrderId"),
		Symbol:              market.Symbol,
		Type:                exchange.String(raw, "orderType"),
		TimeInForce:         exchange.String(raw, "timeInForce"),
		PostOnly:            exchange.Bool(raw, "postOnly"),
		Side:                exchange.String(raw, "side"),
		Status:              exchange.MapEnum(orderStatuses, exchange.String(raw, "status")),
		Timestamp:           exchange.Int64(raw, "created"),
		LastUpdateTimestamp: exchange.Int64(raw, "updated"),
		Price:               exchange.String(raw, "price"),
		TriggerPrice:        exchange.String(raw, "triggerPrice"),
		Amount:              exchange.String(raw, "amount"),
		Remaining:           exchange.String(raw, "amountRemaining"),
		Filled:              filled,
		Cost:                cost,
		Average:             numeric.Div(cost, filled),
		Info:                raw,
	}
	if fee := exchange.String(raw, "feePaid"); fee != nil {
		order.Fee = &exchange.Fee{Cost: fee}
		if currency := exchange.String(raw, "feeCurrency"); currency != nil {
			order.Fee.Currency = exchange.Ptr(currencyCode(*currency))
		}
	}
	for _, item := range exchange.Items(raw, "fills") {
		if fill := exchange.AsObject(item); fill != nil {
			trade := e.parseTrade(fill, &market)
			trade.Order = order.ID
			trade.Side = order.Side
			order.Trades = append(order.Trades, trade)
		}
	}
	return order
}

// parseTransaction tells withdrawals from deposits by the "success" or
// "address" keys only withdrawals carry.
func parseTransaction(raw exchange.Object, code string) exchange.Transaction {
	if id := exchange.String(raw, "symbol"); id != nil {
		code = currencyCode(*id)
	}
	kind := "deposit"
	if _, ok := raw["success"]; ok {
		kind = "withdrawal"
	} else if _, ok := raw["address"]; ok {
		kind = "withdrawal"
	}
	tx := exchange.Transaction{
		TxID:      exchange.String(raw, "txId"),
		Type:      kind,
		Address:   exchange.String(raw, "address"),
		Tag:       exchange.String(raw, "paymentId"),
		Amount:    exchange.String(raw, "amount"),
		Status:    exchange.MapEnum(transactionStatuses, exchange.String(raw, "status")),
		Timestamp: exchange.Int64(raw, "timestamp"),
		Info:      raw,
	}
	if code != "" {
		tx.Currency = &code
	}
	if fee := exchange.String(raw, "fee"); fee != nil {
		tx.Fee = &exchange.Fee{Cost: fee, Currency: tx.Currency}
	}
	return tx
}
