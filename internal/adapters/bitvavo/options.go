package bitvavo

import (
	"net/http"
	"time"

	"github.com/coachpo/meltica-rest/errs"
	"github.com/coachpo/meltica-rest/internal/exchange"
)

const (
	exchangeID          = "bitvavo"
	apiVersion          = "v2"
	defaultAPIBaseURL   = "https://api.bitvavo.com"
	defaultRateLimit    = 60 * time.Millisecond
	defaultAccessWindow = 10000
	maxTradesLimit      = 1000
	maxOHLCVLimit       = 1440
	maxPriceDecimals    = 8
	userAgent           = "meltica-rest"
)

// Options configure the Bitvavo adapter.
type Options struct {
	// BaseURL overrides the API root, e.g. for a local mock.
	BaseURL string
	// AccessWindow is the BITVAVO-ACCESS-WINDOW header in milliseconds.
	AccessWindow int
	// OperatorID is attached to order requests when non-zero.
	OperatorID int64
	Client     exchange.Config
}

func (o Options) withDefaults() Options {
	if o.BaseURL == "" {
		o.BaseURL = defaultAPIBaseURL
	}
	if o.AccessWindow <= 0 {
		o.AccessWindow = defaultAccessWindow
	}
	return o
}

func public(path string, cost float64) exchange.Endpoint {
	return exchange.Endpoint{Scope: exchange.Public, Method: http.MethodGet, Path: path, Cost: cost}
}

func private(method, path string, cost float64) exchange.Endpoint {
	return exchange.Endpoint{Scope: exchange.Private, Method: method, Path: path, Cost: cost}
}

var (
	epTime    = public("time", 1)
	epMarkets = public("markets", 1)
	epAssets  = public("assets", 1)
	epBook    = public("{market}/book", 1)
	epTrades  = public("{market}/trades", 5)
	epCandles = public("{market}/candles", 1)
	epTicker  = exchange.Endpoint{Scope: exchange.Public, Method: http.MethodGet, Path: "ticker/24h", Cost: 1, NoMarketCost: 25}

	epAccount           = private(http.MethodGet, "account", 1)
	epGetOrder          = private(http.MethodGet, "order", 1)
	epOrders            = private(http.MethodGet, "orders", 5)
	epOrdersOpen        = exchange.Endpoint{Scope: exchange.Private, Method: http.MethodGet, Path: "ordersOpen", Cost: 1, NoMarketCost: 25}
	epMyTrades          = private(http.MethodGet, "trades", 5)
	epBalance           = private(http.MethodGet, "balance", 5)
	epDepositHistory    = private(http.MethodGet, "depositHistory", 5)
	epWithdrawalHistory = private(http.MethodGet, "withdrawalHistory", 5)
	epCreateOrder       = private(http.MethodPost, "order", 1)
	epWithdraw          = private(http.MethodPost, "withdrawal", 1)
	epEditOrder         = private(http.MethodPut, "order", 1)
	epCancelOrder       = private(http.MethodDelete, "order", 1)
	epCancelOrders      = private(http.MethodDelete, "orders", 1)
)

func describe() *exchange.Descriptor {
	return &exchange.Descriptor{
		ID:        exchangeID,
		Name:      "Bitvavo",
		Version:   apiVersion,
		Countries: []string{"NL"},
		RateLimit: defaultRateLimit,
		URLs: exchange.URLs{
			API: defaultAPIBaseURL,
			WWW: "https://bitvavo.com/",
			Doc: "https://docs.bitvavo.com/",
		},
		Timeframes: map[string]string{
			"1m": "1m", "5m": "5m", "15m": "15m", "30m": "30m", "1h": "1h", "2h": "2h",
			"4h": "4h", "6h": "6h", "8h": "8h", "12h": "12h", "1d": "1d",
		},
		Fees:                exchange.Fees{Taker: "0.0025", Maker: "0.002", Percentage: true, TierBased: true},
		RequiredCredentials: exchange.Requirements{APIKey: true, Secret: true},
		Capabilities: map[exchange.Capability]bool{
			exchange.CapFetchMarkets:      true,
			exchange.CapFetchCurrencies:   true,
			exchange.CapFetchTime:         true,
			exchange.CapFetchTicker:       true,
			exchange.CapFetchTickers:      true,
			exchange.CapFetchOrderBook:    true,
			exchange.CapFetchTrades:       true,
			exchange.CapFetchOHLCV:        true,
			exchange.CapFetchBalance:      true,
			exchange.CapCreateOrder:       true,
			exchange.CapEditOrder:         true,
			exchange.CapCancelOrder:       true,
			exchange.CapCancelAllOrders:   true,
			exchange.CapFetchOrder:        true,
			exchange.CapFetchOpenOrders:   true,
			exchange.CapFetchClosedOrders: true,
			exchange.CapFetchMyTrades:     true,
			exchange.CapFetchTradingFees:  true,
			exchange.CapFetchDeposits:     true,
			exchange.CapFetchWithdrawals:  true,
			exchange.CapWithdraw:          true,
		},
		Errors: exchange.ErrorTable{
			Exact: map[string]errs.Class{
				"101": errs.ClassExchange,
				"102": errs.ClassBadRequest,
				"103": errs.ClassRateLimitExceeded,
				"104": errs.ClassRateLimitExceeded,
				"105": errs.ClassPermissionDenied,
				"107": errs.ClassExchangeNotAvailable,
				"108": errs.ClassExchangeNotAvailable,
				"109": errs.ClassExchangeNotAvailable,
				"110": errs.ClassBadRequest,
				"200": errs.ClassBadRequest,
				"201": errs.ClassBadRequest,
				"202": errs.ClassBadRequest,
				"203": errs.ClassBadSymbol,
				"204": errs.ClassBadRequest,
				"205": errs.ClassBadRequest,
				"206": errs.ClassBadRequest,
				"210": errs.ClassInvalidOrder,
				"211": errs.ClassInvalidOrder,
				"212": errs.ClassInvalidOrder,
				"213": errs.ClassInvalidOrder,
				"214": errs.ClassInvalidOrder,
				"215": errs.ClassInvalidOrder,
				"216": errs.ClassInsufficientFunds,
				"217": errs.ClassInvalidOrder,
				"230": errs.ClassExchange,
				"231": errs.ClassExchange,
				"232": errs.ClassBadRequest,
				"233": errs.ClassInvalidOrder,
				"234": errs.ClassInvalidOrder,
				"235": errs.ClassExchange,
				"236": errs.ClassBadRequest,
				"240": errs.ClassOrderNotFound,
				"300": errs.ClassAuthentication,
				"301": errs.ClassAuthentication,
				"302": errs.ClassAuthentication,
				"303": errs.ClassAuthentication,
				"304": errs.ClassAuthentication,
				"305": errs.ClassAuthentication,
				"306": errs.ClassAuthentication,
				"307": errs.ClassPermissionDenied,
				"308": errs.ClassAuthentication,
				"309": errs.ClassAuthentication,
				"310": errs.ClassPermissionDenied,
				"311": errs.ClassPermissionDenied,
				"312": errs.ClassPermissionDenied,
				"315": errs.ClassBadRequest,
				"317": errs.ClassAccountSuspended,
				"400": errs.ClassExchange,
				"401": errs.ClassExchange,
				"402": errs.ClassPermissionDenied,
				"403": errs.ClassPermissionDenied,
				"404": errs.ClassOnMaintenance,
				"405": errs.ClassExchange,
				"406": errs.ClassBadRequest,
				"407": errs.ClassExchange,
				"408": errs.ClassInsufficientFunds,
				"409": errs.ClassInvalidAddress,
				"410": errs.ClassExchange,
				"411": errs.ClassBadRequest,
				"412": errs.ClassInvalidAddress,
				"413": errs.ClassInvalidAddress,
				// 414: withdrawing within two minutes of logging in.
				"414": errs.ClassExchange,
			},
			Broad: map[string]errs.Class{
				"start parameter is invalid":   errs.ClassBadRequest,
				"symbol parameter is invalid":  errs.ClassBadSymbol,
				"amount parameter is invalid":  errs.ClassInvalidOrder,
				"orderId parameter is invalid": errs.ClassInvalidOrder,
			},
		},
	}
}

var orderStatuses = map[string]string{
	"new":                         "open",
	"partiallyFilled":             "open",
	"awaitingTrigger":             "open",
	"filled":                      "closed",
	"canceled":                    "canceled",
	"canceledAuction":             "canceled",
	"canceledSelfTradePrevention": "canceled",
	"canceledIOC":                 "canceled",
	"canceledFOK":                 "canceled",
	"canceledMarketProtection":    "canceled",
	"canceledPostOnly":            "canceled",
	"expired":                     "canceled",
	"rejected":                    "canceled",
}

var transactionStatuses = map[string]string{
	"awaiting_processing":         "pending",
	"awaiting_email_confirmation": "pending",
	"awaiting_bitvavo_inspection": "pending",
	"approved":                    "pending",
	"sending":                     "pending",
	"in_mempool":                  "pending",
	"processed":                   "pending",
	"completed":                   "ok",
	"canceled":                    "canceled",
}

// networkCodes maps venue network ids onto unified network codes.
var networkCodes = map[string]string{
	"ETH": "ERC20",
	"TRX": "TRC20",
}

// commonCurrencies renames legacy venue codes.
var commonCurrencies = map[string]string{
	"MIOTA": "IOTA",
}
