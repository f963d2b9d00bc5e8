package apex

import (
	"strings"

	"github.com/coachpo/meltica-rest/internal/exchange"
	"github.com/coachpo/meltica-rest/internal/numeric"
)

// addHyphenBeforeUSDT turns "BTCUSDT" into "BTC-USDT".
func addHyphenBeforeUSDT(id string) string {
	idx := strings.Index(strings.ToUpper(id), "USDT")
	if idx > 0 && id[idx-1] != '-' {
		return id[:idx] + "-" + id[idx:]
	}
	return id
}

// resolveMarket maps the unhyphenated ids some endpoints return onto the
// listed market, accepting the match only when it is the market's id2.
func resolveMarket(id string, lookup func(string) (exchange.Market, bool)) (exchange.Market, bool) {
	hyphenated := addHyphenBeforeUSDT(id)
	if hyphenated == id {
		return exchange.Market{}, false
	}
	market, ok := lookup(hyphenated)
	if !ok || market.ID2 != id {
		return exchange.Market{}, false
	}
	return market, true
}

func (e *Exchange) safeMarket(id *string, known *exchange.Market) exchange.Market {
	return e.client.Markets().SafeMarket(exchange.Deref(id), known, resolveMarket)
}

func parseMarket(raw exchange.Object) exchange.Market {
	baseID := exchange.StringOr(raw, "", "baseTokenId")
	settleID := exchange.StringOr(raw, "", "settleAssetId")
	base := strings.ToUpper(baseID)
	settle := strings.ToUpper(settleID)
	return exchange.Market{
		ID:           exchange.StringOr(raw, "", "symbol"),
		ID2:          exchange.StringOr(raw, "", "crossSymbolName"),
		Symbol:       base + "/" + settle + ":" + settle,
		Base:         base,
		Quote:        settle,
		Settle:       settle,
		BaseID:       baseID,
		QuoteID:      exchange.StringOr(raw, "", "l2PairId"),
		SettleID:     settleID,
		Type:         "swap",
		Swap:         true,
		Contract:     true,
		Linear:       exchange.Ptr(true),
		Inverse:      exchange.Ptr(false),
		Active:       exchange.Bool(raw, "enableTrade"),
		ContractSize: exchange.String(raw, "minOrderSize"),
		Taker:        exchange.Ptr("0.0002"),
		Maker:        exchange.Ptr("0.0005"),
		Precision: exchange.Precision{
			Amount: exchange.String(raw, "stepSize"),
			Price:  exchange.String(raw, "tickSize"),
		},
		Limits: exchange.Limits{
			Amount:   exchange.MinMax{Min: exchange.String(raw, "minOrderSize"), Max: exchange.String(raw, "maxOrderSize")},
			Leverage: exchange.MinMax{Min: exchange.String(raw, "displayMinLeverage"), Max: exchange.String(raw, "displayMaxLeverage")},
		},
		Info: raw,
	}
}

func parseCurrencies(spotConfig exchange.Object) map[string]exchange.Currency {
	chains := exchange.Items(exchange.Child(spotConfig, "multiChain"), "chains")
	out := make(map[string]exchange.Currency)
	for _, item := range exchange.Items(spotConfig, "assets") {
		asset := exchange.AsObject(item)
		id := exchange.StringOr(asset, "", "token")
		if id == "" {
			continue
		}
		code := strings.ToUpper(id)
		networks := make(map[string]exchange.Network)
		for _, rawChain := range chains {
			chain := exchange.AsObject(rawChain)
			for _, rawToken := range exchange.Items(chain, "tokens") {
				token := exchange.AsObject(rawToken)
				if exchange.StringOr(token, "", "token") != id {
					continue
				}
				networkID := exchange.StringOr(chain, "", "chainId")
				deposit := true
				if disabled := exchange.Bool(chain, "depositDisable"); disabled != nil {
					deposit = !*disabled
				}
				networks[networkID] = exchange.Network{
					ID:       networkID,
					Network:  networkID,
					Deposit:  &deposit,
					Withdraw: exchange.Bool(token, "withdrawEnable"),
					Fee:      exchange.String(token, "minFee"),
					Info:     chain,
				}
			}
		}
		currency := exchange.Currency{
			ID:       id,
			Code:     code,
			Name:     exchange.String(asset, "displayName"),
			Networks: networks,
			Info:     asset,
		}
		if len(networks) == 0 {
			currency.Deposit = exchange.Ptr(false)
			currency.Withdraw = exchange.Ptr(false)
		}
		out[code] = currency
	}
	return out
}

// parseTicker normalizes a v3/ticker entry:
//
//	{"symbol":"BTCUSDT","price24hPcnt":"0.450141","lastPrice":"43511.50",
//	 "highPrice24h":"43513.50","lowPrice24h":"29996.00","markPrice":"43513.50",
//	 "indexPrice":"40828.94","turnover24h":"5626085.23749999","volume24h":"169.317"}
func (e *Exchange) parseTicker(raw exchange.Object, known *exchange.Market) exchange.Ticker {
	market := e.safeMarket(exchange.String(raw, "symbol"), known)
	last := exchange.String(raw, "lastPrice")
	return exchange.Ticker{
		Symbol:      market.Symbol,
		Timestamp:   exchange.Ptr(e.client.Now()),
		High:        exchange.String(raw, "highPrice24h"),
		Low:         exchange.String(raw, "lowPrice24h"),
		Close:       last,
		Last:        last,
		Percentage:  exchange.String(raw, "price24hPcnt"),
		BaseVolume:  exchange.String(raw, "volume24h"),
		QuoteVolume: exchange.String(raw, "turnover24h"),
		MarkPrice:   exchange.String(raw, "markPrice"),
		IndexPrice:  exchange.String(raw, "indexPrice"),
		Info:        raw,
	}
}

func parseOHLCV(raw exchange.Object) exchange.OHLCV {
	return exchange.OHLCV{
		Timestamp: exchange.Deref(exchange.Int64(raw, "start", "t")),
		Open:      exchange.String(raw, "open", "o"),
		High:      exchange.String(raw, "high", "h"),
		Low:       exchange.String(raw, "low", "l"),
		Close:     exchange.String(raw, "close", "c"),
		Volume:    exchange.String(raw, "volume", "v"),
	}
}

// parseTrade handles public trades {"i","p","S","v","s","T"} and private
// fills {"id","price","side","size","symbol","createdAt"}.
func (e *Exchange) parseTrade(raw exchange.Object, known *exchange.Market) exchange.Trade {
	market := e.safeMarket(exchange.String(raw, "s", "symbol"), known)
	price := exchange.String(raw, "p", "price")
	amount := exchange.String(raw, "v", "size")
	trade := exchange.Trade{
		ID:        exchange.String(raw, "i", "id"),
		Order:     exchange.String(raw, "orderId"),
		Symbol:    market.Symbol,
		Side:      exchange.StringLower(raw, "S", "side"),
		Type:      exchange.String(raw, "type"),
		Timestamp: exchange.Int64(raw, "t", "T", "createdAt"),
		Price:     price,
		Amount:    amount,
		Cost:      numeric.Mul(price, amount),
		Info:      raw,
	}
	if fee := exchange.String(raw, "fee"); fee != nil {
		trade.Fee = &exchange.Fee{Cost: fee, Currency: exchange.Ptr(settleCurrency)}
	}
	return trade
}

func (e *Exchange) parseOrder(raw exchange.Object, known *exchange.Market) exchange.Order {
	market := e.safeMarket(exchange.String(raw, "symbol"), known)
	amount := exchange.String(raw, "size")
	remaining := exchange.String(raw, "remainingSize")
	if numeric.IsZero(remaining) {
		remaining = nil
	}
	var filled *string
	if remaining != nil {
		filled = numeric.Sub(amount, remaining)
	}
	order := exchange.Order{
		ID:                  exchange.String(raw, "id"),
		ClientOrderID:       exchange.String(raw, "clientId", "clientOrderId"),
		Symbol:              market.Symbol,
		Type:                exchange.StringUpper(raw, "type"),
		TimeInForce:         exchange.String(raw, "timeInForce"),
		Side:                exchange.StringLower(raw, "side"),
		Status:              exchange.MapEnum(orderStatuses, exchange.String(raw, "status")),
		Timestamp:           exchange.Int64(raw, "createdAt"),
		LastUpdateTimestamp: exchange.Int64(raw, "updatedTime"),
		PostOnly:            exchange.Bool(raw, "postOnly"),
		ReduceOnly:          exchange.Bool(raw, "reduceOnly"),
		Price:               exchange.String(raw, "price"),
		TriggerPrice:        exchange.String(raw, "triggerPrice"),
		Amount:              amount,
		Filled:              filled,
		Remaining:           remaining,
		Info:                raw,
	}
	if fee := exchange.String(raw, "fee"); fee != nil {
		currency := market.SettleID
		if currency == "" {
			currency = settleCurrency
		}
		order.Fee = &exchange.Fee{Cost: fee, Currency: &currency}
	}
	return order
}

// parsePosition derives leverage from customInitialMarginRate; zero means the
// venue default of 20x.
func (e *Exchange) parsePosition(raw exchange.Object) exchange.Position {
	market := e.safeMarket(exchange.String(raw, "symbol"), nil)
	leverage := defaultLeverage
	if rate := exchange.StringOr(raw, "0", "customInitialMarginRate", "customImr"); !numeric.IsZero(&rate) {
		if inv, ok := numeric.Inverse(rate, 4); ok {
			if whole, ok := numeric.Truncate(inv, 0); ok {
				leverage = whole
			}
		}
	}
	return exchange.Position{
		Symbol:     market.Symbol,
		Side:       exchange.StringLower(raw, "side"),
		Contracts:  exchange.String(raw, "size"),
		EntryPrice: exchange.String(raw, "entryPrice"),
		Leverage:   &leverage,
		Timestamp:  exchange.Int64(raw, "updatedTime"),
		Info:       raw,
	}
}

func (e *Exchange) parseIncome(raw exchange.Object, known *exchange.Market) exchange.FundingIncome {
	market := e.safeMarket(exchange.String(raw, "symbol"), known)
	return exchange.FundingIncome{
		ID:        exchange.String(raw, "id"),
		Symbol:    market.Symbol,
		Code:      exchange.Ptr(settleCurrency),
		Amount:    exchange.String(raw, "fundingValue"),
		Timestamp: exchange.Int64(raw, "fundingTime"),
		Info:      raw,
	}
}

func parseTransfer(raw exchange.Object) exchange.Transfer {
	return exchange.Transfer{
		ID:          exchange.String(raw, "transferId", "id"),
		Currency:    exchange.StringUpper(raw, "coin", "token"),
		Amount:      exchange.String(raw, "amount"),
		FromAccount: exchange.String(raw, "fromAccount"),
		ToAccount:   exchange.String(raw, "toAccount"),
		Status:      exchange.StringLower(raw, "status"),
		Timestamp:   exchange.Int64(raw, "timestamp", "createdAt"),
		Info:        raw,
	}
}

func (e *Exchange) parseBalance(raw exchange.Object) exchange.Balances {
	free := exchange.String(raw, "availableBalance")
	total := exchange.String(raw, "totalEquityValue")
	return exchange.Balances{
		Timestamp: exchange.Ptr(e.client.Now()),
		Assets: map[string]exchange.Balance{
			settleCurrency: {Free: free, Used: numeric.Sub(total, free), Total: total},
		},
		Info: raw,
	}
}
