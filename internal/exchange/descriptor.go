package exchange

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/coachpo/meltica-rest/errs"
)

// Capability names a unified method an adapter may implement.
type Capability string

// Capabilities callers may consult through Descriptor.Has.
const (
	CapFetchMarkets            Capability = "fetchMarkets"
	CapFetchCurrencies         Capability = "fetchCurrencies"
	CapFetchTime               Capability = "fetchTime"
	CapFetchTicker             Capability = "fetchTicker"
	CapFetchTickers            Capability = "fetchTickers"
	CapFetchOrderBook          Capability = "fetchOrderBook"
	CapFetchTrades             Capability = "fetchTrades"
	CapFetchOHLCV              Capability = "fetchOHLCV"
	CapFetchBalance            Capability = "fetchBalance"
	CapCreateOrder             Capability = "createOrder"
	CapEditOrder               Capability = "editOrder"
	CapCancelOrder             Capability = "cancelOrder"
	CapCancelAllOrders         Capability = "cancelAllOrders"
	CapFetchOrder              Capability = "fetchOrder"
	CapFetchOpenOrders         Capability = "fetchOpenOrders"
	CapFetchClosedOrders       Capability = "fetchClosedOrders"
	CapFetchMyTrades           Capability = "fetchMyTrades"
	CapFetchPositions          Capability = "fetchPositions"
	CapSetLeverage             Capability = "setLeverage"
	CapTransfer                Capability = "transfer"
	CapFetchTransfers          Capability = "fetchTransfers"
	CapFetchFundingRateHistory Capability = "fetchFundingRateHistory"
	CapFetchFundingHistory     Capability = "fetchFundingHistory"
	CapFetchDeposits           Capability = "fetchDeposits"
	CapFetchWithdrawals        Capability = "fetchWithdrawals"
	CapWithdraw                Capability = "withdraw"
	CapFetchTradingFees        Capability = "fetchTradingFees"
)

var knownCapabilities = map[Capability]struct{}{
	CapFetchMarkets: {}, CapFetchCurrencies: {}, CapFetchTime: {}, CapFetchTicker: {},
	CapFetchTickers: {}, CapFetchOrderBook: {}, CapFetchTrades: {}, CapFetchOHLCV: {},
	CapFetchBalance: {}, CapCreateOrder: {}, CapEditOrder: {}, CapCancelOrder: {},
	CapCancelAllOrders: {}, CapFetchOrder: {}, CapFetchOpenOrders: {}, CapFetchClosedOrders: {},
	CapFetchMyTrades: {}, CapFetchPositions: {}, CapSetLeverage: {}, CapTransfer: {},
	CapFetchTransfers: {}, CapFetchFundingRateHistory: {}, CapFetchFundingHistory: {},
	CapFetchDeposits: {}, CapFetchWithdrawals: {}, CapWithdraw: {}, CapFetchTradingFees: {},
}

// URLs lists the base endpoints of an exchange.
type URLs struct {
	API     string
	Sandbox string
	WWW     string
	Doc     string
}

// Fees is the default fee schedule.
type Fees struct {
	Taker      string
	Maker      string
	Percentage bool
	TierBased  bool
}

// Descriptor is the static, validated configuration of one exchange.
type Descriptor struct {
	ID                  string
	Name                string
	Version             string
	Countries           []string
	RateLimit           time.Duration
	URLs                URLs
	Timeframes          map[string]string
	Fees                Fees
	RequiredCredentials Requirements
	Capabilities        map[Capability]bool
	Errors              ErrorTable
	HTTPErrors          map[int]errs.Class
	MarketsCacheTTL     time.Duration
}

// Has reports whether the adapter implements c.
func (d *Descriptor) Has(c Capability) bool {
	return d != nil && d.Capabilities[c]
}

// Timeframe maps a unified timeframe like "1h" onto the venue value.
func (d *Descriptor) Timeframe(tf string) (string, error) {
	if v, ok := d.Timeframes[tf]; ok {
		return v, nil
	}
	return "", errs.Newf(d.ID, errs.ClassBadRequest, fmt.Sprintf("timeframe %q is not supported", tf))
}

var timeframeUnits = map[byte]time.Duration{
	's': time.Second,
	'm': time.Minute,
	'h': time.Hour,
	'd': 24 * time.Hour,
	'w': 7 * 24 * time.Hour,
	'M': 30 * 24 * time.Hour,
	'y': 365 * 24 * time.Hour,
}

// TimeframeDuration converts a unified timeframe such as "15m" or "1d".
func TimeframeDuration(tf string) (time.Duration, error) {
	if len(tf) >= 2 {
		unit, ok := timeframeUnits[tf[len(tf)-1]]
		n, err := strconv.Atoi(tf[:len(tf)-1])
		if ok && err == nil && n > 0 {
			return time.Duration(n) * unit, nil
		}
	}
	return 0, fmt.Errorf("invalid timeframe %q", tf)
}

// BaseURL picks the production or sandbox API url.
func (d *Descriptor) BaseURL(sandbox bool) (string, error) {
	if !sandbox {
		return d.URLs.API, nil
	}
	if d.URLs.Sandbox == "" {
		return "", errs.NotSupported(d.ID, "does not have a sandbox URL")
	}
	return d.URLs.Sandbox, nil
}

// Validate checks the descriptor at startup.
func (d *Descriptor) Validate() error {
	if d == nil {
		return fmt.Errorf("descriptor required")
	}
	if strings.TrimSpace(d.ID) == "" || strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("descriptor: id and name required")
	}
	if _, err := parseBaseURL(d.URLs.API); err != nil {
		return fmt.Errorf("%s: api url: %w", d.ID, err)
	}
	if d.URLs.Sandbox != "" {
		if _, err := parseBaseURL(d.URLs.Sandbox); err != nil {
			return fmt.Errorf("%s: sandbox url: %w", d.ID, err)
		}
	}
	if d.RateLimit <= 0 {
		return fmt.Errorf("%s: rate limit must be positive", d.ID)
	}
	for c := range d.Capabilities {
		if _, ok := knownCapabilities[c]; !ok {
			return fmt.Errorf("%s: unknown capability %q", d.ID, c)
		}
	}
	if d.Has(CapFetchOHLCV) && len(d.Timeframes) == 0 {
		return fmt.Errorf("%s: fetchOHLCV requires timeframes", d.ID)
	}
	for key, class := range d.Errors.Exact {
		if !class.Known() {
			return fmt.Errorf("%s: exact error %q maps to unknown class %q", d.ID, key, class)
		}
	}
	for key, class := range d.Errors.Broad {
		if !class.Known() {
			return fmt.Errorf("%s: broad error %q maps to unknown class %q", d.ID, key, class)
		}
	}
	for status, class := range d.HTTPErrors {
		if !class.Known() {
			return fmt.Errorf("%s: http %d maps to unknown class %q", d.ID, status, class)
		}
	}
	return nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("missing host")
	}
	return u, nil
}
