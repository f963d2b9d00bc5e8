package bitvavo

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/coachpo/meltica-rest/internal/exchange"
)

func decodeObject(t *testing.T, body string) exchange.Object {
	t.Helper()
	payload, err := exchange.Decode([]byte(body))
	require.NoError(t, err)
	obj := exchange.AsObject(payload)
	require.NotNil(t, obj)
	return obj
}

func fixtureRows(t *testing.T, name string) []any {
	t.Helper()
	body, err := os.ReadFile("testdata/" + name)
	require.NoError(t, err)
	payload, err := exchange.Decode(body)
	require.NoError(t, err)
	return exchange.AsList(payload)
}

func offlineExchange(t *testing.T) *Exchange {
	t.Helper()
	e, err := New(Options{Client: exchange.Config{Clock: func() time.Time { return testNow }}})
	require.NoError(t, err)
	currencies := parseCurrencies(fixtureRows(t, "assets.json"))
	e.currencies.Set(currencies)
	var markets []exchange.Market
	for _, row := range fixtureRows(t, "markets.json") {
		markets = append(markets, parseMarket(exchange.AsObject(row), currencies, describe().Fees))
	}
	e.client.Markets().Set(markets)
	return e
}

func TestParseMarket(t *testing.T) {
	currencies := parseCurrencies(fixtureRows(t, "assets.json"))
	rows := fixtureRows(t, "markets.json")

	btc := parseMarket(exchange.AsObject(rows[0]), currencies, describe().Fees)
	require.Equal(t, "BTC-EUR", btc.ID)
	require.Equal(t, "BTC/EUR", btc.Symbol)
	require.True(t, btc.Spot)
	require.True(t, *btc.Active)
	require.Equal(t, "0.00000001", *btc.Precision.Amount)
	require.Equal(t, "5", *btc.Precision.Price)
	require.Equal(t, exchange.PrecisionSignificantDigits, btc.Precision.PriceMode)
	require.Equal(t, "0.0001", *btc.Limits.Amount.Min)
	require.Equal(t, "5", *btc.Limits.Cost.Min)
	require.Equal(t, "0.0025", *btc.Taker)

	eth := parseMarket(exchange.AsObject(rows[1]), currencies, describe().Fees)
	require.Equal(t, "0.000001", *eth.Precision.Amount)

	iota := parseMarket(exchange.AsObject(rows[2]), currencies, describe().Fees)
	require.Equal(t, "IOTA/EUR", iota.Symbol)
	require.Equal(t, "MIOTA", iota.BaseID)
	require.False(t, *iota.Active)
}

func TestParseCurrencies(t *testing.T) {
	currencies := parseCurrencies(fixtureRows(t, "assets.json"))
	require.Len(t, currencies, 4)

	btc := currencies["BTC"]
	require.True(t, *btc.Active)
	require.Equal(t, "0.0002", *btc.Fee)
	require.Equal(t, "0.00000001", *btc.Precision)
	require.Contains(t, btc.Networks, "Mainnet")

	eth := currencies["ETH"]
	require.True(t, *eth.Deposit)
	require.False(t, *eth.Withdraw)
	require.False(t, *eth.Active)
	require.Equal(t, "ETH", eth.Networks["ERC20"].ID)

	iota := currencies["IOTA"]
	require.Equal(t, "MIOTA", iota.ID)
	require.Empty(t, iota.Networks)
}

func TestParseTicker(t *testing.T) {
	e := offlineExchange(t)
	ticker := e.parseTicker(decodeObject(t, `{"market":"BTC-EUR","open":"34000","high":"36000","low":"33500",
		"last":"35000","volume":"12.5","volumeQuote":"437500","bid":"34999","bidSize":"0.3",
		"ask":"35001","askSize":"0.2","timestamp":1700000000000}`), nil)
	require.Equal(t, "BTC/EUR", ticker.Symbol)
	require.Equal(t, int64(1700000000000), *ticker.Timestamp)
	require.Equal(t, "35000", *ticker.Last)
	require.Equal(t, "0.3", *ticker.BidVolume)
	require.Equal(t, "437500", *ticker.QuoteVolume)

	unknown := e.parseTicker(decodeObject(t, `{"market":"DOGE-USDC","last":"0.1"}`), nil)
	require.Equal(t, "DOGE/USDC", unknown.Symbol)
}

func TestParseTrades(t *testing.T) {
	e := offlineExchange(t)
	public := e.parseTrade(decodeObject(t,
		`{"id":"t1","timestamp":1700000000000,"amount":"0.5","price":"35000","side":"sell"}`), nil)
	require.Equal(t, "t1", *public.ID)
	require.Equal(t, "17500", *public.Cost)
	require.Nil(t, public.TakerOrMaker)
	require.Nil(t, public.Fee)

	fill := e.parseTrade(decodeObject(t, `{"id":"f1","orderId":"o1","timestamp":1700000000500,"market":"ETH-EUR",
		"side":"buy","amount":"2","price":"1800","taker":true,"fee":"9","feeCurrency":"eur","settled":true}`), nil)
	require.Equal(t, "ETH/EUR", fill.Symbol)
	require.Equal(t, "o1", *fill.Order)
	require.Equal(t, "taker", *fill.TakerOrMaker)
	require.Equal(t, "9", *fill.Fee.Cost)
	require.Equal(t, "EUR", *fill.Fee.Currency)
}

func TestParseOrder(t *testing.T) {
	e := offlineExchange(t)
	order := e.parseOrder(decodeObject(t, `{"orderId":"o1","market":"BTC-EUR","created":1700000000000,"updated":1700000001000,
		"status":"partiallyFilled","side":"buy","orderType":"limit","amount":"0.5","amountRemaining":"0.3",
		"price":"35000","onHold":"7000","onHoldCurrency":"EUR","filledAmount":"0.2","filledAmountQuote":"7000",
		"feePaid":"17.5","feeCurrency":"EUR","fills":[{"id":"f1","timestamp":1700000000500,"amount":"0.2",
		"price":"35000","taker":false,"fee":"17.5","feeCurrency":"EUR","settled":true}],
		"timeInForce":"GTC","postOnly":false}`), nil)
	require.Equal(t, "o1", *order.ID)
	require.Equal(t, "BTC/EUR", order.Symbol)
	require.Equal(t, "open", *order.Status)
	require.Equal(t, "7000", *order.Cost)
	require.Equal(t, "35000", *order.Average)
	require.Equal(t, "0.3", *order.Remaining)
	require.Equal(t, "17.5", *order.Fee.Cost)
	require.Len(t, order.Trades, 1)
	require.Equal(t, "o1", *order.Trades[0].Order)
	require.Equal(t, "buy", *order.Trades[0].Side)
	require.Equal(t, "maker", *order.Trades[0].TakerOrMaker)

	quoteSized := e.parseOrder(decodeObject(t, `{"orderId":"o2","market":"BTC-EUR","status":"canceledIOC",
		"side":"buy","orderType":"market","amountQuote":"100","amountQuoteRemaining":"40"}`), nil)
	require.Equal(t, "60", *quoteSized.Cost)
	require.Nil(t, quoteSized.Average)
	require.Equal(t, "canceled", *quoteSized.Status)
}

func TestParseOHLCVAndBalance(t *testing.T) {
	candle := parseOHLCV([]any{1700000000000, "35000", "35100", "34900", "35050", "1.5"})
	require.Equal(t, int64(1700000000000), candle.Timestamp)
	require.Equal(t, "35050", *candle.Close)

	balance := parseBalance([]any{
		map[string]any{"symbol": "BTC", "available": "1.5", "inOrder": "0.5"},
		map[string]any{"symbol": "MIOTA", "available": "10", "inOrder": "0"},
	})
	require.Equal(t, "2", *balance.Assets["BTC"].Total)
	require.Equal(t, "10", *balance.Assets["IOTA"].Free)
}

func TestParseTransaction(t *testing.T) {
	deposit := parseTransaction(decodeObject(t, `{"timestamp":1700000000000,"symbol":"BTC","amount":"0.1",
		"fee":"0","status":"completed","txId":"0xabc"}`), "")
	require.Equal(t, "deposit", deposit.Type)
	require.Equal(t, "BTC", *deposit.Currency)
	require.Equal(t, "ok", *deposit.Status)

	withdrawal := parseTransaction(decodeObject(t, `{"success":true,"symbol":"BTC","amount":"0.1"}`), "BTC")
	require.Equal(t, "withdrawal", withdrawal.Type)
	require.Nil(t, withdrawal.Status)

	pending := parseTransaction(decodeObject(t, `{"timestamp":1700000000000,"symbol":"ETH","amount":"1",
		"address":"0xdef","fee":"0.004","status":"awaiting_processing"}`), "")
	require.Equal(t, "pending", *pending.Status)
	require.Equal(t, "0.004", *pending.Fee.Cost)
	require.Equal(t, "ETH", *pending.Fee.Currency)
}

func TestPrecisionHelpers(t *testing.T) {
	e := offlineExchange(t)
	btc, err := e.client.Markets().Market("BTC/EUR")
	require.NoError(t, err)

	require.Equal(t, "35001", priceToPrecision(btc, "35000.7"))
	require.Equal(t, "0.12346", priceToPrecision(btc, "0.123456789"))
	require.Equal(t, "0.00000001", priceToPrecision(btc, "0.0000000123"))
	require.Equal(t, "0.12345678", amountToPrecision(btc, "0.123456789"))
	require.Equal(t, "1", amountToPrecision(btc, "1.000000001"))

	tick := exchange.Market{Precision: exchange.Precision{Price: exchange.Ptr("0.01")}}
	require.Equal(t, "35000.7", priceToPrecision(tick, "35000.7"))
}

func TestNormalizeOrderType(t *testing.T) {
	require.Equal(t, "limit", normalizeOrderType("LIMIT"))
	require.Equal(t, "market", normalizeOrderType(" Market "))
	require.Equal(t, "stopLossLimit", normalizeOrderType("STOPLOSSLIMIT"))
	require.Equal(t, "takeProfit", normalizeOrderType("takeProfit"))
	require.Equal(t, "trailing", normalizeOrderType("Trailing"))
}
