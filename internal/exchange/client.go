package exchange

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/time/rate"

	"github.com/coachpo/meltica-rest/errs"
	"github.com/coachpo/meltica-rest/internal/observability"
	"github.com/coachpo/meltica-rest/internal/telemetry"
)

// maxResponseBytes caps how much of a response body is buffered.
const maxResponseBytes = 4 << 20

// Adapter is the per-exchange part of a client: its static descriptor, its
// signing scheme and its error envelope detection.
type Adapter interface {
	Describe() *Descriptor
	// Sign builds the request for ep. now is the signing timestamp.
	Sign(ep Endpoint, params Params, creds Credentials, now time.Time) (Request, error)
	// HandleErrors inspects a response and returns a typed error when the
	// venue reported one. payload is nil when the body is not JSON.
	HandleErrors(status int, body []byte, payload any) error
}

// Config tunes the transport of a Client.
type Config struct {
	Credentials Credentials
	HTTPClient  *http.Client
	// Timeout applies when HTTPClient is nil.
	Timeout time.Duration
	// RateLimit overrides the descriptor's minimum interval between weight units.
	RateLimit time.Duration
	// MaxRetries bounds transport retries of NetworkError failures. Zero disables retries.
	MaxRetries uint
	// MarketsCacheTTL overrides the descriptor's market cache expiry.
	MarketsCacheTTL time.Duration
	// DisableThrottle turns the client side rate limiter off.
	DisableThrottle bool
	Meter           metric.Meter
	Logger          observability.Logger
	Clock           func() time.Time
}

// Client is the generic transport shared by every adapter. It owns the
// credentials, the throttle, the market cache and the request metrics.
type Client struct {
	adapter    Adapter
	desc       *Descriptor
	creds      Credentials
	http       *http.Client
	limiter    *rate.Limiter
	maxRetries uint
	classifier *Classifier
	markets    *MarketCache
	metrics    *telemetry.RequestMetrics
	logger     observability.Logger
	now        func() time.Time
}

// NewClient validates the adapter descriptor and wires the transport.
func NewClient(adapter Adapter, cfg Config) (*Client, error) {
	if adapter == nil {
		return nil, fmt.Errorf("adapter required")
	}
	desc := adapter.Describe()
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	interval := desc.RateLimit
	if cfg.RateLimit > 0 {
		interval = cfg.RateLimit
	}
	var limiter *rate.Limiter
	if !cfg.DisableThrottle {
		limiter = rate.NewLimiter(rate.Every(interval), 1)
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = observability.Log()
	}
	ttl := desc.MarketsCacheTTL
	if cfg.MarketsCacheTTL > 0 {
		ttl = cfg.MarketsCacheTTL
	}

	c := &Client{
		adapter:    adapter,
		desc:       desc,
		creds:      cfg.Credentials,
		http:       httpClient,
		limiter:    limiter,
		maxRetries: cfg.MaxRetries,
		classifier: NewClassifier(desc.ID, desc.Errors, desc.HTTPErrors),
		metrics:    telemetry.NewRequestMetrics(cfg.Meter, desc.ID),
		logger:     logger,
		now:        clock,
	}
	c.markets = NewMarketCache(desc.ID, ttl, nil, clock)
	c.markets.onRefresh = func(ctx context.Context) {
		c.metrics.RecordCacheRefresh(ctx, "markets")
		c.logger.Info("market cache refreshed", observability.Field{Key: "exchange", Value: desc.ID})
	}
	return c, nil
}

// ID returns the exchange id.
func (c *Client) ID() string { return c.desc.ID }

// Describe returns the exchange descriptor.
func (c *Client) Describe() *Descriptor { return c.desc }

// Credentials returns the credential set.
func (c *Client) Credentials() Credentials { return c.creds }

// Classifier returns the error classifier built from the descriptor tables.
func (c *Client) Classifier() *Classifier { return c.classifier }

// Markets returns the market cache.
func (c *Client) Markets() *MarketCache { return c.markets }

// Now returns the client clock in milliseconds.
func (c *Client) Now() int64 { return c.now().UnixMilli() }

// UseMarketLoader installs the adapter's market listing call.
func (c *Client) UseMarketLoader(loader MarketLoader) {
	c.markets.loader = loader
}

// LoadMarkets fills or refreshes the market cache.
func (c *Client) LoadMarkets(ctx context.Context, reload bool) ([]Market, error) {
	return c.markets.Load(ctx, reload)
}

// Market loads markets if needed and resolves a unified symbol.
func (c *Client) Market(ctx context.Context, symbol string) (Market, error) {
	if _, err := c.markets.Load(ctx, false); err != nil {
		return Market{}, err
	}
	return c.markets.Market(symbol)
}

// Call performs one REST call and returns the decoded payload.
func (c *Client) Call(ctx context.Context, ep Endpoint, params Params) (any, error) {
	if c.maxRetries == 0 {
		return c.roundTrip(ctx, ep, params)
	}
	return backoff.Retry(ctx, func() (any, error) {
		out, err := c.roundTrip(ctx, ep, params)
		if err != nil && !errs.ClassOf(err).Retryable() {
			return nil, backoff.Permanent(err)
		}
		return out, err
	},
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(c.maxRetries+1),
		backoff.WithNotify(func(err error, wait time.Duration) {
			c.logger.Warn("retrying exchange request",
				observability.Field{Key: "exchange", Value: c.desc.ID},
				observability.Field{Key: "endpoint", Value: ep.Path},
				observability.Field{Key: "wait", Value: wait.String()},
				observability.Field{Key: "error", Value: err})
		}),
	)
}

// CallObject is Call for endpoints returning a JSON object.
func (c *Client) CallObject(ctx context.Context, ep Endpoint, params Params) (Object, error) {
	out, err := c.Call(ctx, ep, params)
	if err != nil {
		return nil, err
	}
	return AsObject(out), nil
}

// CallList is Call for endpoints returning a JSON array.
func (c *Client) CallList(ctx context.Context, ep Endpoint, params Params) ([]any, error) {
	out, err := c.Call(ctx, ep, params)
	if err != nil {
		return nil, err
	}
	return AsList(out), nil
}

func (c *Client) throttle(ctx context.Context, weight int) error {
	if c.limiter == nil {
		return nil
	}
	for i := 0; i < weight; i++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) roundTrip(ctx context.Context, ep Endpoint, params Params) (any, error) {
	if params == nil {
		params = Params{}
	}
	if ep.Scope == Private {
		if err := c.creds.Check(c.desc.ID, c.desc.RequiredCredentials); err != nil {
			return nil, err
		}
	}
	req, err := c.adapter.Sign(ep, params, c.creds, c.now())
	if err != nil {
		return nil, err
	}
	if err := c.throttle(ctx, ep.Weight(params)); err != nil {
		return nil, err
	}

	var body io.Reader
	if req.Body != "" {
		body = strings.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, errs.New(c.desc.ID, errs.ClassExchange, errs.WithMessage(c.desc.ID+" build request"), errs.WithCause(err))
	}
	for key, values := range req.Headers {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}

	c.logger.Debug("exchange request",
		observability.Field{Key: "exchange", Value: c.desc.ID},
		observability.Field{Key: "method", Value: req.Method},
		observability.Field{Key: "endpoint", Value: ep.Path})

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.record(ctx, ep, errs.ClassNetwork, start)
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return nil, ctxErr
		}
		return nil, errs.New(c.desc.ID, errs.ClassNetwork,
			errs.WithMessage(fmt.Sprintf("%s %s %s failed", c.desc.ID, req.Method, req.URL)),
			errs.WithCause(err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		c.record(ctx, ep, errs.ClassNetwork, start)
		return nil, errs.New(c.desc.ID, errs.ClassNetwork,
			errs.WithMessage(c.desc.ID+" read response"), errs.WithHTTP(resp.StatusCode), errs.WithCause(err))
	}

	var payload any
	if len(strings.TrimSpace(string(raw))) > 0 {
		payload, _ = Decode(raw)
	}
	if err := c.adapter.HandleErrors(resp.StatusCode, raw, payload); err != nil {
		c.fail(ctx, ep, err, start)
		return nil, err
	}
	if e := c.classifier.FromHTTP(resp.StatusCode, string(raw)); e != nil {
		c.fail(ctx, ep, e, start)
		return nil, e
	}
	if payload == nil && len(raw) > 0 {
		e := errs.New(c.desc.ID, errs.ClassExchange, errs.WithMessage(c.classifier.Feedback(string(raw))), errs.WithHTTP(resp.StatusCode))
		c.fail(ctx, ep, e, start)
		return nil, e
	}
	c.record(ctx, ep, "", start)
	return payload, nil
}

func (c *Client) fail(ctx context.Context, ep Endpoint, err error, start time.Time) {
	class := errs.ClassOf(err)
	if class == "" {
		class = errs.ClassExchange
	}
	c.record(ctx, ep, class, start)
	c.logger.Error("exchange request failed",
		observability.Field{Key: "exchange", Value: c.desc.ID},
		observability.Field{Key: "endpoint", Value: ep.Path},
		observability.Field{Key: "class", Value: string(class)},
		observability.Field{Key: "error", Value: err})
}

func (c *Client) record(ctx context.Context, ep Endpoint, class errs.Class, start time.Time) {
	c.metrics.RecordRequest(ctx, ep.Path, ep.Method, string(ep.Scope), string(class), time.Since(start))
}
