package apex

import (
	"net/http"
	"time"

	"github.com/coachpo/meltica-rest/errs"
	"github.com/coachpo/meltica-rest/internal/exchange"
)

const (
	exchangeID         = "apex"
	defaultAPIBaseURL  = "https://omni.apex.exchange/api"
	defaultSandboxURL  = "https://testnet.omni.apex.exchange/api"
	defaultBrokerID    = "6956"
	defaultRateLimit   = 20 * time.Millisecond
	defaultOHLCVLimit  = 200
	defaultDepthLimit  = 100
	defaultTradesLimit = 500
	orderExpiry        = 30 * 24 * time.Hour
	tickerWorkers      = 8
	settleCurrency     = "USDT"
	defaultLeverage    = "20"
	userAgent          = "meltica-rest"
)

// Options configure the Apex adapter.
type Options struct {
	// BaseURL overrides the API root, e.g. for a local mock.
	BaseURL string
	Sandbox bool
	// BrokerID is attached to created orders.
	BrokerID string
	// Signer produces the zk signatures orders require. Without it CreateOrder
	// is not supported.
	Signer OrderSigner
	Client exchange.Config
}

func withDefaults(in Options) (Options, error) {
	if in.BrokerID == "" {
		in.BrokerID = defaultBrokerID
	}
	if in.BaseURL == "" {
		base, err := describe().BaseURL(in.Sandbox)
		if err != nil {
			return in, err
		}
		in.BaseURL = base
	}
	return in, nil
}

var (
	epTime            = exchange.Endpoint{Scope: exchange.Public, Method: http.MethodGet, Path: "v3/time", Cost: 1}
	epSymbols         = exchange.Endpoint{Scope: exchange.Public, Method: http.MethodGet, Path: "v3/symbols", Cost: 1}
	epTicker          = exchange.Endpoint{Scope: exchange.Public, Method: http.MethodGet, Path: "v3/ticker", Cost: 1}
	epAllTickers      = exchange.Endpoint{Scope: exchange.Public, Method: http.MethodGet, Path: "v3/data/all-ticker-info", Cost: 1}
	epKlines          = exchange.Endpoint{Scope: exchange.Public, Method: http.MethodGet, Path: "v3/klines", Cost: 1}
	epTrades          = exchange.Endpoint{Scope: exchange.Public, Method: http.MethodGet, Path: "v3/trades", Cost: 1}
	epDepth           = exchange.Endpoint{Scope: exchange.Public, Method: http.MethodGet, Path: "v3/depth", Cost: 1}
	epHistoryFunding  = exchange.Endpoint{Scope: exchange.Public, Method: http.MethodGet, Path: "v3/history-funding", Cost: 1}
	epAccount         = exchange.Endpoint{Scope: exchange.Private, Method: http.MethodGet, Path: "v3/account", Cost: 1}
	epAccountBalance  = exchange.Endpoint{Scope: exchange.Private, Method: http.MethodGet, Path: "v3/account-balance", Cost: 1}
	epFills           = exchange.Endpoint{Scope: exchange.Private, Method: http.MethodGet, Path: "v3/fills", Cost: 1}
	epOrder           = exchange.Endpoint{Scope: exchange.Private, Method: http.MethodGet, Path: "v3/order", Cost: 1}
	epOrderByClientID = exchange.Endpoint{Scope: exchange.Private, Method: http.MethodGet, Path: "v3/order-by-client-order-id", Cost: 1}
	epHistoryOrders   = exchange.Endpoint{Scope: exchange.Private, Method: http.MethodGet, Path: "v3/history-orders", Cost: 1}
	epOpenOrders      = exchange.Endpoint{Scope: exchange.Private, Method: http.MethodGet, Path: "v3/open-orders", Cost: 1}
	epFunding         = exchange.Endpoint{Scope: exchange.Private, Method: http.MethodGet, Path: "v3/funding", Cost: 1}
	epTransfers       = exchange.Endpoint{Scope: exchange.Private, Method: http.MethodGet, Path: "v3/transfers", Cost: 1}
	epCreateOrder     = exchange.Endpoint{Scope: exchange.Private, Method: http.MethodPost, Path: "v3/order", Cost: 1}
	epCancelOrder     = exchange.Endpoint{Scope: exchange.Private, Method: http.MethodPost, Path: "v3/delete-order", Cost: 1}
	epCancelByClient  = exchange.Endpoint{Scope: exchange.Private, Method: http.MethodPost, Path: "v3/delete-client-order-id", Cost: 1}
	epCancelAll       = exchange.Endpoint{Scope: exchange.Private, Method: http.MethodPost, Path: "v3/delete-open-orders", Cost: 1}
	epSetMarginRate   = exchange.Endpoint{Scope: exchange.Private, Method: http.MethodPost, Path: "v3/set-initial-margin-rate", Cost: 1}
)

func describe() *exchange.Descriptor {
	return &exchange.Descriptor{
		ID:        exchangeID,
		Name:      "Apex",
		Version:   "v3",
		RateLimit: defaultRateLimit,
		URLs: exchange.URLs{
			API:     defaultAPIBaseURL,
			Sandbox: defaultSandboxURL,
			WWW:     "https://apex.exchange/",
			Doc:     "https://api-docs.pro.apex.exchange",
		},
		Timeframes: map[string]string{
			"1m": "1", "5m": "5", "15m": "15", "30m": "30",
			"1h": "60", "2h": "120", "4h": "240", "6h": "360", "12h": "720",
			"1d": "D", "1w": "W", "1M": "M",
		},
		Fees: exchange.Fees{Taker: "0.0005", Maker: "0.0002", Percentage: true},
		RequiredCredentials: exchange.Requirements{
			APIKey:     true,
			Secret:     true,
			Passphrase: true,
		},
		Capabilities: map[exchange.Capability]bool{
			exchange.CapFetchMarkets:            true,
			exchange.CapFetchCurrencies:         true,
			exchange.CapFetchTime:               true,
			exchange.CapFetchTicker:             true,
			exchange.CapFetchTickers:            true,
			exchange.CapFetchOrderBook:          true,
			exchange.CapFetchTrades:             true,
			exchange.CapFetchOHLCV:              true,
			exchange.CapFetchBalance:            true,
			exchange.CapCreateOrder:             true,
			exchange.CapCancelOrder:             true,
			exchange.CapCancelAllOrders:         true,
			exchange.CapFetchOrder:              true,
			exchange.CapFetchOpenOrders:         true,
			exchange.CapFetchClosedOrders:       true,
			exchange.CapFetchMyTrades:           true,
			exchange.CapFetchPositions:          true,
			exchange.CapSetLeverage:             true,
			exchange.CapFetchTransfers:          true,
			exchange.CapFetchFundingRateHistory: true,
			exchange.CapFetchFundingHistory:     true,
		},
		Errors: exchange.ErrorTable{
			Exact: map[string]errs.Class{
				"20006": errs.ClassAuthentication,
				"20016": errs.ClassAuthentication,
				"10001": errs.ClassBadRequest,
			},
			Broad: map[string]errs.Class{
				"ORDER_PRICE_MUST_GREETER_ZERO":                     errs.ClassInvalidOrder,
				"ORDER_POSSIBLE_LEAD_TO_ACCOUNT_LIQUIDATED":         errs.ClassInvalidOrder,
				"ORDER_WITH_THIS_PRICE_CANNOT_REDUCE_POSITION_ONLY": errs.ClassInvalidOrder,
			},
		},
		HTTPErrors: map[int]errs.Class{
			http.StatusForbidden: errs.ClassRateLimitExceeded,
		},
		MarketsCacheTTL: time.Hour,
	}
}

var orderStatuses = map[string]string{
	"PENDING":     "open",
	"OPEN":        "open",
	"UNTRIGGERED": "open",
	"FILLED":      "closed",
	"CANCELING":   "canceled",
	"CANCELED":    "canceled",
}
