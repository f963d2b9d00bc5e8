// Package exchange holds the venue-agnostic client core: the unified record
// types, request signing primitives, response field extraction, the error
// classifier and the market cache shared by every adapter.
package exchange

import (
	"net/http"
)

// Object is a decoded JSON object. Numbers stay json.Number so no precision
// is lost before normalization.
type Object = map[string]any

// Credentials is the key material supplied once at client construction.
type Credentials struct {
	APIKey        string
	Secret        string
	Passphrase    string
	WalletAddress string
	PrivateKey    string
}

// Request is a fully built, optionally signed, HTTP request descriptor.
type Request struct {
	Method  string
	URL     string
	Headers http.Header
	Body    string
}

// MinMax is an optional numeric range.
type MinMax struct {
	Min *string `json:"min,omitempty"`
	Max *string `json:"max,omitempty"`
}

// Precision carries step sizes for amount and price.
type Precision struct {
	Amount *string `json:"amount,omitempty"`
	Price  *string `json:"price,omitempty"`
	// PriceMode says how Price is read; the zero value is a tick size.
	PriceMode PrecisionMode `json:"priceMode,omitempty"`
}

// PrecisionMode distinguishes tick sizes from significant-digit counts.
type PrecisionMode string

const (
	PrecisionTickSize          PrecisionMode = ""
	PrecisionSignificantDigits PrecisionMode = "significantDigits"
)

// Limits groups the tradable ranges of a market.
type Limits struct {
	Amount   MinMax `json:"amount"`
	Price    MinMax `json:"price"`
	Cost     MinMax `json:"cost"`
	Leverage MinMax `json:"leverage"`
}

// Market is a tradable instrument. Symbol is always BASE/QUOTE or BASE/QUOTE:SETTLE.
type Market struct {
	ID           string    `json:"id"`
	ID2          string    `json:"id2,omitempty"`
	Symbol       string    `json:"symbol"`
	Base         string    `json:"base"`
	Quote        string    `json:"quote"`
	Settle       string    `json:"settle,omitempty"`
	BaseID       string    `json:"baseId"`
	QuoteID      string    `json:"quoteId"`
	SettleID     string    `json:"settleId,omitempty"`
	Type         string    `json:"type"`
	Spot         bool      `json:"spot"`
	Swap         bool      `json:"swap"`
	Contract     bool      `json:"contract"`
	Linear       *bool     `json:"linear,omitempty"`
	Inverse      *bool     `json:"inverse,omitempty"`
	Active       *bool     `json:"active,omitempty"`
	ContractSize *string   `json:"contractSize,omitempty"`
	Taker        *string   `json:"taker,omitempty"`
	Maker        *string   `json:"maker,omitempty"`
	Precision    Precision `json:"precision"`
	Limits       Limits    `json:"limits"`
	Info         any       `json:"info"`
}

// Network describes one deposit/withdraw chain of a currency.
type Network struct {
	ID       string  `json:"id"`
	Network  string  `json:"network"`
	Active   *bool   `json:"active,omitempty"`
	Deposit  *bool   `json:"deposit,omitempty"`
	Withdraw *bool   `json:"withdraw,omitempty"`
	Fee      *string `json:"fee,omitempty"`
	Info     any     `json:"info"`
}

// Currency is a tradable asset.
type Currency struct {
	ID        string             `json:"id"`
	Code      string             `json:"code"`
	Name      *string            `json:"name,omitempty"`
	Active    *bool              `json:"active,omitempty"`
	Deposit   *bool              `json:"deposit,omitempty"`
	Withdraw  *bool              `json:"withdraw,omitempty"`
	Fee       *string            `json:"fee,omitempty"`
	Precision *string            `json:"precision,omitempty"`
	Networks  map[string]Network `json:"networks,omitempty"`
	Info      any                `json:"info"`
}

// Ticker is a 24h market summary.
type Ticker struct {
	Symbol        string  `json:"symbol"`
	Timestamp     *int64  `json:"timestamp,omitempty"`
	High          *string `json:"high,omitempty"`
	Low           *string `json:"low,omitempty"`
	Bid           *string `json:"bid,omitempty"`
	BidVolume     *string `json:"bidVolume,omitempty"`
	Ask           *string `json:"ask,omitempty"`
	AskVolume     *string `json:"askVolume,omitempty"`
	Vwap          *string `json:"vwap,omitempty"`
	Open          *string `json:"open,omitempty"`
	Close         *string `json:"close,omitempty"`
	Last          *string `json:"last,omitempty"`
	PreviousClose *string `json:"previousClose,omitempty"`
	Change        *string `json:"change,omitempty"`
	Percentage    *string `json:"percentage,omitempty"`
	Average       *string `json:"average,omitempty"`
	BaseVolume    *string `json:"baseVolume,omitempty"`
	QuoteVolume   *string `json:"quoteVolume,omitempty"`
	MarkPrice     *string `json:"markPrice,omitempty"`
	IndexPrice    *string `json:"indexPrice,omitempty"`
	Info          any     `json:"info"`
}

// PriceLevel is a [price, amount] pair.
type PriceLevel [2]string

// OrderBook is a depth snapshot.
type OrderBook struct {
	Symbol    string       `json:"symbol"`
	Bids      []PriceLevel `json:"bids"`
	Asks      []PriceLevel `json:"asks"`
	Timestamp *int64       `json:"timestamp,omitempty"`
	Nonce     *int64       `json:"nonce,omitempty"`
	Info      any          `json:"info"`
}

// OHLCV is one candle.
type OHLCV struct {
	Timestamp int64   `json:"timestamp"`
	Open      *string `json:"open,omitempty"`
	High      *string `json:"high,omitempty"`
	Low       *string `json:"low,omitempty"`
	Close     *string `json:"close,omitempty"`
	Volume    *string `json:"volume,omitempty"`
}

// Fee is a charged or estimated fee.
type Fee struct {
	Cost     *string `json:"cost,omitempty"`
	Currency *string `json:"currency,omitempty"`
	Rate     *string `json:"rate,omitempty"`
}

// Trade is a public or private fill.
type Trade struct {
	ID           *string `json:"id,omitempty"`
	Order        *string `json:"order,omitempty"`
	Symbol       string  `json:"symbol"`
	Side         *string `json:"side,omitempty"`
	Type         *string `json:"type,omitempty"`
	TakerOrMaker *string `json:"takerOrMaker,omitempty"`
	Timestamp    *int64  `json:"timestamp,omitempty"`
	Price        *string `json:"price,omitempty"`
	Amount       *string `json:"amount,omitempty"`
	Cost         *string `json:"cost,omitempty"`
	Fee          *Fee    `json:"fee,omitempty"`
	Info         any     `json:"info"`
}

// Order is an order in any lifecycle state.
type Order struct {
	ID                  *string `json:"id,omitempty"`
	ClientOrderID       *string `json:"clientOrderId,omitempty"`
	Symbol              string  `json:"symbol"`
	Type                *string `json:"type,omitempty"`
	TimeInForce         *string `json:"timeInForce,omitempty"`
	Side                *string `json:"side,omitempty"`
	Status              *string `json:"status,omitempty"`
	Timestamp           *int64  `json:"timestamp,omitempty"`
	LastTradeTimestamp  *int64  `json:"lastTradeTimestamp,omitempty"`
	LastUpdateTimestamp *int64  `json:"lastUpdateTimestamp,omitempty"`
	PostOnly            *bool   `json:"postOnly,omitempty"`
	ReduceOnly          *bool   `json:"reduceOnly,omitempty"`
	Price               *string `json:"price,omitempty"`
	TriggerPrice        *string `json:"triggerPrice,omitempty"`
	Average             *string `json:"average,omitempty"`
	Amount              *string `json:"amount,omitempty"`
	Filled              *string `json:"filled,omitempty"`
	Remaining           *string `json:"remaining,omitempty"`
	Cost                *string `json:"cost,omitempty"`
	Fee                 *Fee    `json:"fee,omitempty"`
	Trades              []Trade `json:"trades,omitempty"`
	Info                any     `json:"info"`
}

// Position is an open derivatives position.
type Position struct {
	Symbol           string  `json:"symbol"`
	Side             *string `json:"side,omitempty"`
	MarginMode       *string `json:"marginMode,omitempty"`
	Contracts        *string `json:"contracts,omitempty"`
	EntryPrice       *string `json:"entryPrice,omitempty"`
	Notional         *string `json:"notional,omitempty"`
	Leverage         *string `json:"leverage,omitempty"`
	UnrealizedPnl    *string `json:"unrealizedPnl,omitempty"`
	LiquidationPrice *string `json:"liquidationPrice,omitempty"`
	Timestamp        *int64  `json:"timestamp,omitempty"`
	Info             any     `json:"info"`
}

// Balance is the holding of one currency.
type Balance struct {
	Free  *string `json:"free,omitempty"`
	Used  *string `json:"used,omitempty"`
	Total *string `json:"total,omitempty"`
}

// Balances is an account snapshot keyed by unified currency code.
type Balances struct {
	Timestamp *int64             `json:"timestamp,omitempty"`
	Assets    map[string]Balance `json:"assets"`
	Info      any                `json:"info"`
}

// Transfer moves funds between accounts of the same owner.
type Transfer struct {
	ID          *string `json:"id,omitempty"`
	Currency    *string `json:"currency,omitempty"`
	Amount      *string `json:"amount,omitempty"`
	FromAccount *string `json:"fromAccount,omitempty"`
	ToAccount   *string `json:"toAccount,omitempty"`
	Status      *string `json:"status,omitempty"`
	Timestamp   *int64  `json:"timestamp,omitempty"`
	Info        any     `json:"info"`
}

// Transaction is a deposit or a withdrawal.
type Transaction struct {
	ID        *string `json:"id,omitempty"`
	TxID      *string `json:"txid,omitempty"`
	Type      string  `json:"type"`
	Currency  *string `json:"currency,omitempty"`
	Network   *string `json:"network,omitempty"`
	Address   *string `json:"address,omitempty"`
	Tag       *string `json:"tag,omitempty"`
	Amount    *string `json:"amount,omitempty"`
	Status    *string `json:"status,omitempty"`
	Timestamp *int64  `json:"timestamp,omitempty"`
	Fee       *Fee    `json:"fee,omitempty"`
	Info      any     `json:"info"`
}

// FundingRate is one historical funding rate observation.
type FundingRate struct {
	Symbol      string  `json:"symbol"`
	FundingRate *string `json:"fundingRate,omitempty"`
	Timestamp   *int64  `json:"timestamp,omitempty"`
	Info        any     `json:"info"`
}

// FundingIncome is one funding payment received or paid.
type FundingIncome struct {
	ID        *string `json:"id,omitempty"`
	Symbol    string  `json:"symbol"`
	Code      *string `json:"code,omitempty"`
	Amount    *string `json:"amount,omitempty"`
	Timestamp *int64  `json:"timestamp,omitempty"`
	Info      any     `json:"info"`
}

// Leverage reports the configured leverage of a market.
type Leverage struct {
	Symbol string  `json:"symbol"`
	Long   *string `json:"longLeverage,omitempty"`
	Short  *string `json:"shortLeverage,omitempty"`
	Info   any     `json:"info"`
}

// TradingFee is the maker/taker rate for a market.
type TradingFee struct {
	Symbol string  `json:"symbol"`
	Maker  *string `json:"maker,omitempty"`
	Taker  *string `json:"taker,omitempty"`
	Info   any     `json:"info"`
}

// Query carries the common pagination arguments of list endpoints.
type Query struct {
	Since  *int64
	Limit  int
	Params Params
}

// OrderRequest describes an order to place or edit.
type OrderRequest struct {
	Symbol        string
	Type          string
	Side          string
	Amount        string
	Price         *string
	TriggerPrice  *string
	TimeInForce   string
	PostOnly      bool
	ReduceOnly    bool
	ClientOrderID string
	Params        Params
}

// TransferRequest describes an internal transfer.
type TransferRequest struct {
	Code        string
	Amount      string
	FromAccount string
	ToAccount   string
	Params      Params
}

// WithdrawRequest describes an on-chain withdrawal.
type WithdrawRequest struct {
	Code    string
	Amount  string
	Address string
	Tag     string
	Params  Params
}
