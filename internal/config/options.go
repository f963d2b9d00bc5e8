package config

import (
	"strings"
	"time"

	"github.com/coachpo/meltica-rest/internal/exchange"
)

// Option mutates AppConfig when applied via Apply.
type Option func(*AppConfig)

// Apply applies the provided Option set to a copy of the base config.
func Apply(base AppConfig, opts ...Option) AppConfig {
	cfg := base.clone()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// Exchange returns the exchange-specific configuration if present.
func (c AppConfig) Exchange(name Exchange) (ExchangeSettings, bool) {
	cfg, ok := c.Exchanges[Exchange(normalizeExchangeName(string(name)))]
	if !ok {
		return NewExchangeSettings(), false
	}
	return CloneExchangeSettings(cfg), true
}

// WithEnvironment configures the top-level environment.
func WithEnvironment(env Environment) Option {
	return func(c *AppConfig) {
		if env != "" {
			c.Environment = env
		}
	}
}

// WithLogging overrides the log level and format; empty values are ignored.
func WithLogging(level, format string) Option {
	level = strings.TrimSpace(level)
	format = strings.TrimSpace(format)
	return func(c *AppConfig) {
		if level != "" {
			c.Logging.Level = level
		}
		if format != "" {
			c.Logging.Format = format
		}
	}
}

// WithExchangeBaseURL points an exchange at another API root.
func WithExchangeBaseURL(exchange, baseURL string) Option {
	baseURL = strings.TrimSpace(baseURL)
	return mutateExchangeOption(exchange, func(es *ExchangeSettings) {
		if baseURL != "" {
			es.BaseURL = baseURL
		}
	})
}

// WithExchangeSandbox selects the sandbox API of an exchange.
func WithExchangeSandbox(exchange string, sandbox bool) Option {
	return mutateExchangeOption(exchange, func(es *ExchangeSettings) {
		es.Sandbox = sandbox
	})
}

// WithExchangeHTTPTimeout overrides the HTTP timeout for the given exchange.
func WithExchangeHTTPTimeout(exchange string, timeout time.Duration) Option {
	return mutateExchangeOption(exchange, func(es *ExchangeSettings) {
		if timeout > 0 {
			es.HTTPTimeout = timeout
		}
	})
}

// WithExchangeCredentials overrides the non-empty credential fields.
func WithExchangeCredentials(exchangeName string, creds exchange.Credentials) Option {
	return mutateExchangeOption(exchangeName, func(es *ExchangeSettings) {
		mergeCredentials(&es.Credentials, credentialsYAML{
			APIKey:        creds.APIKey,
			Secret:        creds.Secret,
			Passphrase:    creds.Passphrase,
			WalletAddress: creds.WalletAddress,
			PrivateKey:    creds.PrivateKey,
		})
	})
}

// WithExchangeOption sets one venue specific option.
func WithExchangeOption(exchange, key string, value any) Option {
	key = strings.TrimSpace(key)
	return mutateExchangeOption(exchange, func(es *ExchangeSettings) {
		if key != "" {
			es.Options[key] = value
		}
	})
}

func mutateExchangeOption(exchange string, fn func(*ExchangeSettings)) Option {
	key := Exchange(normalizeExchangeName(exchange))
	if string(key) == "" || fn == nil {
		return func(*AppConfig) {}
	}
	return func(c *AppConfig) {
		if c.Exchanges == nil {
			c.Exchanges = make(map[Exchange]ExchangeSettings)
		}
		cfg, ok := c.Exchanges[key]
		if !ok {
			cfg = NewExchangeSettings()
		}
		cfg = CloneExchangeSettings(cfg)
		fn(&cfg)
		c.Exchanges[key] = cfg
	}
}

func (c AppConfig) clone() AppConfig {
	clone := c
	clone.Exchanges = make(map[Exchange]ExchangeSettings, len(c.Exchanges))
	for k, v := range c.Exchanges {
		clone.Exchanges[k] = CloneExchangeSettings(v)
	}
	return clone
}
