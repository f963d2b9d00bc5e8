package config

import (
	"maps"
	"time"

	"github.com/coachpo/meltica-rest/internal/exchange"
)

// ExchangeSettings aggregates transport and credential configuration of one
// exchange client. Zero durations keep the adapter defaults.
type ExchangeSettings struct {
	BaseURL         string
	Sandbox         bool
	Credentials     exchange.Credentials
	HTTPTimeout     time.Duration
	RateLimit       time.Duration
	MaxRetries      uint
	MarketsCacheTTL time.Duration
	// Options carries venue specific settings, e.g. apex "broker_id".
	Options map[string]any
}

// NewExchangeSettings constructs an empty exchange configuration with safe defaults.
func NewExchangeSettings() ExchangeSettings {
	return ExchangeSettings{
		BaseURL:         "",
		Sandbox:         false,
		Credentials:     exchange.Credentials{},
		HTTPTimeout:     defaultHTTPTimeout,
		RateLimit:       0,
		MaxRetries:      0,
		MarketsCacheTTL: 0,
		Options:         make(map[string]any),
	}
}

// CloneExchangeSettings performs a deep copy of the exchange configuration.
func CloneExchangeSettings(src ExchangeSettings) ExchangeSettings {
	clone := src
	clone.Options = make(map[string]any, len(src.Options))
	maps.Copy(clone.Options, src.Options)
	return clone
}

// ClientConfig maps the settings onto the exchange transport config.
func (s ExchangeSettings) ClientConfig() exchange.Config {
	return exchange.Config{
		Credentials:     s.Credentials,
		Timeout:         s.HTTPTimeout,
		RateLimit:       s.RateLimit,
		MaxRetries:      s.MaxRetries,
		MarketsCacheTTL: s.MarketsCacheTTL,
	}
}
