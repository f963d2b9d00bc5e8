package bitstamp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/coachpo/meltica-rest/errs"
	"github.com/coachpo/meltica-rest/internal/exchange"
)

type bitstampServer struct {
	t       *testing.T
	mu      sync.Mutex
	calls   map[string]int
	form    map[string]map[string]string
	headers map[string]http.Header
	mux     *http.ServeMux
}

func newBitstampServer(t *testing.T) *bitstampServer {
	t.Helper()
	s := &bitstampServer{
		t:       t,
		calls:   map[string]int{},
		form:    map[string]map[string]string{},
		headers: map[string]http.Header{},
		mux:     http.NewServeMux(),
	}
	pairs, err := os.ReadFile("testdata/pairs.json")
	require.NoError(t, err)
	s.route("/api/v2/trading-pairs-info/", string(pairs))
	return s
}

func (s *bitstampServer) route(path, body string) {
	s.mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(s.t, r.ParseForm())
		form := map[string]string{}
		for k := range r.Form {
			form[k] = r.Form.Get(k)
		}
		s.mu.Lock()
		s.calls[path]++
		s.form[path] = form
		s.headers[path] = r.Header.Clone()
		s.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	})
}

func (s *bitstampServer) count(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[path]
}

func (s *bitstampServer) lastForm(path string) map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form[path]
}

func (s *bitstampServer) lastHeader(path string) http.Header {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.headers[path]
}

func (s *bitstampServer) start(t *testing.T) *Exchange {
	t.Helper()
	return s.startAt(t, func() time.Time { return testNow })
}

func (s *bitstampServer) startAt(t *testing.T, clock func() time.Time) *Exchange {
	t.Helper()
	srv := httptest.NewServer(s.mux)
	t.Cleanup(srv.Close)
	e, err := New(Options{
		BaseURL: srv.URL + "/api",
		Nonce:   fixedNonce,
		Client: exchange.Config{
			Credentials:     testCreds,
			DisableThrottle: true,
			Clock:           clock,
		},
	})
	require.NoError(t, err)
	return e
}

func TestMarketsAndCurrenciesSharePairsInfo(t *testing.T) {
	s := newBitstampServer(t)
	e := s.start(t)
	ctx := context.Background()

	markets, err := e.FetchMarkets(ctx, nil)
	require.NoError(t, err)
	require.Len(t, markets, 3)
	currencies, err := e.FetchCurrencies(ctx, nil)
	require.NoError(t, err)
	require.Contains(t, currencies, "ETH")
	require.Equal(t, 1, s.count("/api/v2/trading-pairs-info/"))

	loaded, err := e.LoadMarkets(ctx, false)
	require.NoError(t, err)
	require.Len(t, loaded, 3)
	require.Equal(t, 1, s.count("/api/v2/trading-pairs-info/"))
}

func TestMarketCacheOutlivesPairsInfoReuse(t *testing.T) {
	s := newBitstampServer(t)
	s.route("/api/v2/ticker/btcusd/", `{"timestamp":"1700000000","last":"35500","volume":"2","vwap":"35000"}`)
	var (
		mu  sync.Mutex
		now = testNow
	)
	advance := func(d time.Duration) {
		mu.Lock()
		now = now.Add(d)
		mu.Unlock()
	}
	e := s.startAt(t, func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := e.FetchTicker(ctx, "BTC/USD", nil)
		require.NoError(t, err)
		advance(2 * time.Second)
	}
	require.Equal(t, 1, s.count("/api/v2/trading-pairs-info/"))
	require.Equal(t, 5, s.count("/api/v2/ticker/btcusd/"))

	advance(time.Hour)
	_, err := e.FetchTicker(ctx, "BTC/USD", nil)
	require.NoError(t, err)
	require.Equal(t, 2, s.count("/api/v2/trading-pairs-info/"))
}

func TestFetchTickers(t *testing.T) {
	s := newBitstampServer(t)
	s.route("/api/v2/ticker/btcusd/", `{"timestamp":"1700000000","last":"35500","volume":"2","vwap":"35000","pair":"BTC/USD"}`)
	s.route("/api/v2/ticker/", `[
		{"timestamp":"1700000000","last":"35500","volume":"2","vwap":"35000","pair":"BTC/USD"},
		{"timestamp":"1700000000","last":"0.05","volume":"3","vwap":"0.05","pair":"ETH/BTC"}]`)
	e := s.start(t)
	ctx := context.Background()

	ticker, err := e.FetchTicker(ctx, "BTC/USD", nil)
	require.NoError(t, err)
	require.Equal(t, "70000", *ticker.QuoteVolume)

	all, err := e.FetchTickers(ctx, nil, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "0.15", *all["ETH/BTC"].QuoteVolume)

	some, err := e.FetchTickers(ctx, []string{"BTC/USD"}, nil)
	require.NoError(t, err)
	require.Len(t, some, 1)
	require.Contains(t, some, "BTC/USD")
}

func TestFetchOrderBookAndTrades(t *testing.T) {
	s := newBitstampServer(t)
	s.route("/api/v2/order_book/btcusd/", `{"timestamp":"1700000000","microtimestamp":"1700000000123456",
		"bids":[["35000","1"],["34999","2"]],"asks":[["35001","1"],["35002","3"]]}`)
	s.route("/api/v2/transactions/btcusd/", `[
		{"date":"1700000002","tid":"3","amount":"0.1","type":"0","price":"35000"},
		{"date":"1700000001","tid":"2","amount":"0.2","type":"1","price":"35001"}]`)
	e := s.start(t)
	ctx := context.Background()

	book, err := e.FetchOrderBook(ctx, "BTC/USD", 1, nil)
	require.NoError(t, err)
	require.Equal(t, "BTC/USD", book.Symbol)
	require.Equal(t, []exchange.PriceLevel{{"35000", "1"}}, book.Bids)
	require.Equal(t, []exchange.PriceLevel{{"35001", "1"}}, book.Asks)
	require.Equal(t, int64(1700000000123), *book.Timestamp)
	require.Equal(t, int64(1700000000123456), *book.Nonce)

	trades, err := e.FetchTrades(ctx, "BTC/USD", exchange.Query{})
	require.NoError(t, err)
	require.Len(t, trades, 2)
	require.Equal(t, "hour", s.lastForm("/api/v2/transactions/btcusd/")["time"])
	require.Equal(t, "2", *trades[0].ID)
	require.Equal(t, "sell", *trades[0].Side)
}

func TestFetchOHLCVWindow(t *testing.T) {
	s := newBitstampServer(t)
	path := "/api/v2/ohlc/btcusd/"
	s.route(path, `{"data":{"pair":"BTC/USD","ohlc":[
		{"timestamp":"1700000000","open":"1","high":"2","low":"0.5","close":"1.5","volume":"10"},
		{"timestamp":"1700000060","open":"1.5","high":"2","low":"1","close":"2","volume":"4"}]}}`)
	e := s.start(t)
	ctx := context.Background()

	since := int64(1700000000000)
	candles, err := e.FetchOHLCV(ctx, "BTC/USD", "1m", exchange.Query{Since: &since})
	require.NoError(t, err)
	require.Len(t, candles, 2)
	form := s.lastForm(path)
	require.Equal(t, "60", form["step"])
	require.Equal(t, "1000", form["limit"])
	require.Equal(t, "1700000000", form["start"])
	require.Equal(t, "1700059940", form["end"])

	_, err = e.FetchOHLCV(ctx, "BTC/USD", "1h", exchange.Query{Limit: 2})
	require.NoError(t, err)
	form = s.lastForm(path)
	require.Equal(t, "3600", form["step"])
	require.Equal(t, "2", form["limit"])
	require.NotContains(t, form, "start")

	_, err = e.FetchOHLCV(ctx, "BTC/USD", "7m", exchange.Query{})
	require.True(t, errs.IsClass(err, errs.ClassBadRequest))
}

func TestPrivateRequestsAreSigned(t *testing.T) {
	s := newBitstampServer(t)
	path := "/api/v2/account_balances/"
	s.route(path, `[{"currency":"usd","available":"100","reserved":"5","total":"105"},
		{"currency":"btc","available":"0.5","reserved":"0","total":"0.5"}]`)
	e := s.start(t)

	balances, err := e.FetchBalance(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, "0.5", *balances.Assets["BTC"].Total)

	headers := s.lastHeader(path)
	require.Equal(t, "BITSTAMP bitstamp-key", headers.Get("X-Auth"))
	require.Equal(t, testNonce, headers.Get("X-Auth-Nonce"))
	require.Len(t, headers.Get("X-Auth-Signature"), 64)
	require.Equal(t, "bar", s.lastForm(path)["foo"])
}

func TestPrivateRequestWithoutCredentials(t *testing.T) {
	e, err := New(Options{})
	require.NoError(t, err)
	_, err = e.FetchBalance(context.Background(), nil)
	require.True(t, errs.IsClass(err, errs.ClassAuthentication))
}

func TestCreateOrder(t *testing.T) {
	s := newBitstampServer(t)
	s.route("/api/v2/buy/btcusd/", `{"id":"1234","datetime":"2023-11-14 22:13:20","type":"0",
		"price":"35000","amount":"0.50000000","client_order_id":"cid-1"}`)
	s.route("/api/v2/sell/market/btcusd/", `{"id":"1235","datetime":"2023-11-14 22:13:20","type":"1","amount":"0.1"}`)
	e := s.start(t)
	ctx := context.Background()

	order, err := e.CreateOrder(ctx, exchange.OrderRequest{
		Symbol: "BTC/USD", Type: "limit", Side: "buy", Amount: "0.5", Price: exchange.Ptr("35000.7"),
		Params: exchange.Params{"clientOrderId": "cid-1"},
	})
	require.NoError(t, err)
	require.Equal(t, "1234", *order.ID)
	require.Equal(t, "limit", *order.Type)
	require.Equal(t, "buy", *order.Side)
	require.Equal(t, "BTC/USD", order.Symbol)
	form := s.lastForm("/api/v2/buy/btcusd/")
	require.Equal(t, "0.50000000", form["amount"])
	require.Equal(t, "35000", form["price"])
	require.Equal(t, "cid-1", form["client_order_id"])
	require.NotContains(t, form, "clientOrderId")

	market, err := e.CreateOrder(ctx, exchange.OrderRequest{Symbol: "BTC/USD", Type: "market", Side: "sell", Amount: "0.1"})
	require.NoError(t, err)
	require.Equal(t, "sell", *market.Side)
	require.Equal(t, "market", *market.Type)
	require.NotContains(t, s.lastForm("/api/v2/sell/market/btcusd/"), "price")

	_, err = e.CreateOrder(ctx, exchange.OrderRequest{Symbol: "BTC/USD", Type: "limit", Side: "buy", Amount: "1"})
	require.True(t, errs.IsClass(err, errs.ClassArgumentsRequired))
	_, err = e.CreateOrder(ctx, exchange.OrderRequest{Symbol: "BTC/USD", Type: "stop", Side: "buy", Amount: "1"})
	require.True(t, errs.IsClass(err, errs.ClassInvalidOrder))
}

func TestOrderQueries(t *testing.T) {
	s := newBitstampServer(t)
	s.route("/api/v2/order_status/", `{"id":"77","status":"Open","market":"BTC/USD","type":"0","client_order_id":"abc","transactions":[]}`)
	s.route("/api/v2/open_orders/all/", `[{"id":"1","datetime":"2023-11-14 22:13:20","type":"0","price":"1","amount":"1","currency_pair":"BTC/USD"},
		{"id":"2","datetime":"2023-11-14 22:13:21","type":"1","price":"1","amount":"1","currency_pair":"ETH/BTC"}]`)
	s.route("/api/v2/cancel_all_orders/btcusd/", `{"canceled":[{"id":1,"amount":"0.1","price":"100","type":0,"currency_pair":"BTC/USD"}],"success":true}`)
	s.route("/api/v2/cancel_order/", `{"error":"Order not found."}`)
	e := s.start(t)
	ctx := context.Background()

	order, err := e.FetchOrder(ctx, "", "", exchange.Params{"clientOrderId": "abc"})
	require.NoError(t, err)
	require.Equal(t, "open", *order.Status)
	form := s.lastForm("/api/v2/order_status/")
	require.Equal(t, "abc", form["client_order_id"])
	require.NotContains(t, form, "id")

	_, err = e.FetchOrder(ctx, "77", "BTC/USD", nil)
	require.NoError(t, err)
	require.Equal(t, "77", s.lastForm("/api/v2/order_status/")["id"])

	open, err := e.FetchOpenOrders(ctx, "", exchange.Query{})
	require.NoError(t, err)
	require.Len(t, open, 2)
	require.Equal(t, "open", *open[0].Status)
	require.Equal(t, "limit", *open[0].Type)
	require.Equal(t, "ETH/BTC", open[1].Symbol)

	canceled, err := e.CancelAllOrders(ctx, "BTC/USD", nil)
	require.NoError(t, err)
	require.Len(t, canceled, 1)
	require.Equal(t, "BTC/USD", canceled[0].Symbol)

	_, err = e.CancelOrder(ctx, "404", "", nil)
	require.True(t, errs.IsClass(err, errs.ClassOrderNotFound))
	require.Equal(t, "404", s.lastForm("/api/v2/cancel_order/")["id"])
}

func TestFetchMyTradesKeepsMarketTrades(t *testing.T) {
	s := newBitstampServer(t)
	path := "/api/v2/user_transactions/btcusd/"
	s.route(path, `[
		{"id":1,"type":"0","datetime":"2023-11-14 22:13:20","usd":"100","btc":"0","fee":"0"},
		{"id":2,"order_id":7,"type":"2","datetime":"2023-11-14 22:13:21","usd":"-35","btc":"0.001","btc_usd":"35000","fee":"0.1"}]`)
	e := s.start(t)

	trades, err := e.FetchMyTrades(context.Background(), "BTC/USD", exchange.Query{Limit: 10})
	require.NoError(t, err)
	require.Len(t, trades, 1)
	require.Equal(t, "buy", *trades[0].Side)
	require.Equal(t, "35", *trades[0].Cost)
	require.Equal(t, "10", s.lastForm(path)["limit"])
}

func TestFetchTradingFees(t *testing.T) {
	s := newBitstampServer(t)
	s.route("/api/v2/fees/trading/", `[{"currency_pair":"btcusd","market":"btcusd","fees":{"maker":"0.3","taker":"0.4"}}]`)
	e := s.start(t)

	fees, err := e.FetchTradingFees(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, "0.3", *fees["BTC/USD"].Maker)
	require.Equal(t, "0.4", *fees["BTC/USD"].Taker)
}

func TestTransfer(t *testing.T) {
	s := newBitstampServer(t)
	s.route("/api/v2/transfer-from-main/", `{"status":"ok"}`)
	s.route("/api/v2/transfer-to-main/", `{"status":"error","reason":"Strange failure"}`)
	e := s.start(t)
	ctx := context.Background()

	transfer, err := e.Transfer(ctx, exchange.TransferRequest{Code: "usd", Amount: "5", FromAccount: "main", ToAccount: "sub1"})
	require.NoError(t, err)
	require.Equal(t, "ok", *transfer.Status)
	require.Equal(t, "USD", *transfer.Currency)
	require.Equal(t, "sub1", *transfer.ToAccount)
	form := s.lastForm("/api/v2/transfer-from-main/")
	require.Equal(t, "sub1", form["subAccount"])
	require.Equal(t, "USD", form["currency"])
	require.Equal(t, "5", form["amount"])

	_, err = e.Transfer(ctx, exchange.TransferRequest{Code: "usd", Amount: "5", FromAccount: "sub1", ToAccount: "main"})
	require.True(t, errs.IsClass(err, errs.ClassExchange))

	_, err = e.Transfer(ctx, exchange.TransferRequest{Code: "usd", Amount: "5", FromAccount: "a", ToAccount: "b"})
	require.True(t, errs.IsClass(err, errs.ClassBadRequest))
}

func TestUnsupportedMethods(t *testing.T) {
	e, err := New(Options{})
	require.NoError(t, err)
	_, err = e.FetchPositions(context.Background(), nil, nil)
	require.True(t, errs.IsClass(err, errs.ClassNotSupported))
	require.False(t, e.Describe().Has(exchange.CapFetchPositions))
}
