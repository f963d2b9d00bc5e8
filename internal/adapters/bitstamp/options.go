package bitstamp

import (
	"net/http"
	"time"

	"github.com/coachpo/meltica-rest/errs"
	"github.com/coachpo/meltica-rest/internal/exchange"
)

const (
	exchangeID        = "bitstamp"
	apiVersion        = "v2"
	defaultAPIBaseURL = "https://www.bitstamp.net/api"
	defaultRateLimit  = 75 * time.Millisecond
	pairsInfoExpiry   = time.Second
	marketsCacheTTL   = time.Hour
	maxOHLCVLimit     = 1000
	userAgent         = "meltica-rest"
	mainAccount       = "main"
)

// Options configure the Bitstamp adapter.
type Options struct {
	// BaseURL overrides the API root, e.g. for a local mock.
	BaseURL string
	// Nonce generates X-Auth-Nonce values; uuid v4 when nil.
	Nonce  func() string
	Client exchange.Config
}

func pairEndpoint(method, path string) exchange.Endpoint {
	return exchange.Endpoint{Scope: exchange.Public, Method: method, Path: path, Cost: 1}
}

func privateEndpoint(path string) exchange.Endpoint {
	return exchange.Endpoint{Scope: exchange.Private, Method: http.MethodPost, Path: path, Cost: 1}
}

var (
	epPairsInfo      = pairEndpoint(http.MethodGet, "trading-pairs-info/")
	epTicker         = pairEndpoint(http.MethodGet, "ticker/{pair}/")
	epTickers        = pairEndpoint(http.MethodGet, "ticker/")
	epOrderBook      = pairEndpoint(http.MethodGet, "order_book/{pair}/")
	epTransactions   = pairEndpoint(http.MethodGet, "transactions/{pair}/")
	epOHLC           = pairEndpoint(http.MethodGet, "ohlc/{pair}/")
	epBalances       = privateEndpoint("account_balances/")
	epBuy            = privateEndpoint("buy/{pair}/")
	epBuyMarket      = privateEndpoint("buy/market/{pair}/")
	epBuyInstant     = privateEndpoint("buy/instant/{pair}/")
	epSell           = privateEndpoint("sell/{pair}/")
	epSellMarket     = privateEndpoint("sell/market/{pair}/")
	epSellInstant    = privateEndpoint("sell/instant/{pair}/")
	epCancelOrder    = privateEndpoint("cancel_order/")
	epCancelAll      = privateEndpoint("cancel_all_orders/")
	epCancelAllPair  = privateEndpoint("cancel_all_orders/{pair}/")
	epOrderStatus    = privateEndpoint("order_status/")
	epOpenOrdersAll  = privateEndpoint("open_orders/all/")
	epOpenOrdersPair = privateEndpoint("open_orders/{pair}/")
	epUserTxs        = privateEndpoint("user_transactions/")
	epUserTxsPair    = privateEndpoint("user_transactions/{pair}/")
	epTradingFees    = privateEndpoint("fees/trading/")
	epTransferToMain = privateEndpoint("transfer-to-main/")
	epTransferFrom   = privateEndpoint("transfer-from-main/")
)

// orderEndpoints picks the create route by order type and side.
var orderEndpoints = map[string]map[string]exchange.Endpoint{
	"limit":   {"buy": epBuy, "sell": epSell},
	"market":  {"buy": epBuyMarket, "sell": epSellMarket},
	"instant": {"buy": epBuyInstant, "sell": epSellInstant},
}

func describe() *exchange.Descriptor {
	return &exchange.Descriptor{
		ID:        exchangeID,
		Name:      "Bitstamp",
		Version:   apiVersion,
		Countries: []string{"GB"},
		RateLimit: defaultRateLimit,
		URLs: exchange.URLs{
			API: defaultAPIBaseURL,
			WWW: "https://www.bitstamp.net",
			Doc: "https://www.bitstamp.net/api",
		},
		Timeframes: map[string]string{
			"1m": "60", "3m": "180", "5m": "300", "15m": "900", "30m": "1800",
			"1h": "3600", "2h": "7200", "4h": "14400", "6h": "21600", "12h": "43200",
			"1d": "86400", "3d": "259200",
		},
		Fees:                exchange.Fees{Taker: "0.004", Maker: "0.004", Percentage: true, TierBased: true},
		RequiredCredentials: exchange.Requirements{APIKey: true, Secret: true},
		Capabilities: map[exchange.Capability]bool{
			exchange.CapFetchMarkets:     true,
			exchange.CapFetchCurrencies:  true,
			exchange.CapFetchTicker:      true,
			exchange.CapFetchTickers:     true,
			exchange.CapFetchOrderBook:   true,
			exchange.CapFetchTrades:      true,
			exchange.CapFetchOHLCV:       true,
			exchange.CapFetchBalance:     true,
			exchange.CapCreateOrder:      true,
			exchange.CapCancelOrder:      true,
			exchange.CapCancelAllOrders:  true,
			exchange.CapFetchOrder:       true,
			exchange.CapFetchOpenOrders:  true,
			exchange.CapFetchMyTrades:    true,
			exchange.CapFetchTradingFees: true,
			exchange.CapTransfer:         true,
		},
		Errors: exchange.ErrorTable{
			Exact: map[string]errs.Class{
				"API0005":                    errs.ClassAuthentication,
				"No permission found":        errs.ClassPermissionDenied,
				"API key not found":          errs.ClassAuthentication,
				"IP address not allowed":     errs.ClassPermissionDenied,
				"Invalid nonce":              errs.ClassInvalidNonce,
				"Invalid signature":          errs.ClassAuthentication,
				"Authentication failed":      errs.ClassAuthentication,
				"Wrong API key format":       errs.ClassAuthentication,
				"Your account is frozen":     errs.ClassPermissionDenied,
				"Order not found.":           errs.ClassOrderNotFound,
				"Order could not be placed.": errs.ClassExchangeNotAvailable,
				"Invalid offset.":            errs.ClassBadRequest,

				"Missing key, signature and nonce parameters":                               errs.ClassAuthentication,
				"Please update your profile with your FATCA information, before using API.": errs.ClassPermissionDenied,
				"Price is more than 20% below market price.":                                errs.ClassInvalidOrder,
				"Bitstamp.net is under scheduled maintenance. We'll be back soon.":          errs.ClassOnMaintenance,
			},
			Broad: map[string]errs.Class{
				"Minimum order size is":                   errs.ClassInvalidOrder,
				"Check your account balance for details.": errs.ClassInsufficientFunds,
				"Ensure this value has at least":          errs.ClassInvalidAddress,
				"Ensure that there are no more than":      errs.ClassInvalidOrder,
			},
		},
		MarketsCacheTTL: marketsCacheTTL,
	}
}

var orderStatuses = map[string]string{
	"In Queue": "open",
	"Open":     "open",
	"Finished": "closed",
	"Canceled": "canceled",
}

var transferStatuses = map[string]string{
	"ok":    "ok",
	"error": "failed",
}
