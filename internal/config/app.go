package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/coachpo/meltica-rest/internal/exchange"
	"github.com/coachpo/meltica-rest/internal/telemetry"
)

const defaultHTTPTimeout = 10 * time.Second

// LoggingConfig selects the logrus level and formatter.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// TelemetryConfig configures the OTLP metrics exporter.
type TelemetryConfig struct {
	Enabled        bool          `yaml:"enabled"`
	OTLPEndpoint   string        `yaml:"otlpEndpoint"`
	OTLPInsecure   bool          `yaml:"otlpInsecure"`
	ServiceName    string        `yaml:"serviceName"`
	MetricInterval time.Duration `yaml:"metricInterval"`
}

// Provider converts the settings into a telemetry provider config.
func (c TelemetryConfig) Provider(env Environment) telemetry.Config {
	return telemetry.Config{
		Enabled:        c.Enabled,
		OTLPEndpoint:   c.OTLPEndpoint,
		OTLPInsecure:   c.OTLPInsecure,
		MetricInterval: c.MetricInterval,
		ServiceName:    c.ServiceName,
		Environment:    string(env),
	}
}

// AppConfig is the meltica-rest configuration tree.
type AppConfig struct {
	Environment Environment
	Exchanges   map[Exchange]ExchangeSettings
	Logging     LoggingConfig
	Telemetry   TelemetryConfig
}

// appConfigYAML is the YAML representation that maps to AppConfig.
type appConfigYAML struct {
	Environment string                          `yaml:"environment"`
	Exchanges   map[string]exchangeSettingsYAML `yaml:"exchanges"`
	Logging     LoggingConfig                   `yaml:"logging"`
	Telemetry   *TelemetryConfig                `yaml:"telemetry"`
}

type credentialsYAML struct {
	APIKey        string `yaml:"api_key"`
	Secret        string `yaml:"secret"`
	Passphrase    string `yaml:"passphrase"`
	WalletAddress string `yaml:"wallet_address"`
	PrivateKey    string `yaml:"private_key"`
}

type exchangeSettingsYAML struct {
	BaseURL         string          `yaml:"base_url"`
	Sandbox         *bool           `yaml:"sandbox"`
	Credentials     credentialsYAML `yaml:"credentials"`
	HTTPTimeout     string          `yaml:"http_timeout"`
	RateLimit       string          `yaml:"rate_limit"`
	MaxRetries      *uint           `yaml:"max_retries"`
	MarketsCacheTTL string          `yaml:"markets_cache_ttl"`
	Options         map[string]any  `yaml:"options"`
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() AppConfig {
	return AppConfig{
		Environment: EnvProd,
		Exchanges:   make(map[Exchange]ExchangeSettings),
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Telemetry: TelemetryConfig{
			Enabled:        false,
			OTLPEndpoint:   "http://localhost:4318",
			OTLPInsecure:   false,
			ServiceName:    "meltica-rest",
			MetricInterval: 30 * time.Second,
		},
	}
}

// Load builds the configuration with precedence: defaults → YAML → env vars.
// A missing file is not an error.
func Load(ctx context.Context, configPath string) (AppConfig, error) {
	cfg := Default()

	yamlErr := cfg.loadYAML(ctx, configPath)
	if yamlErr != nil && !isConfigNotFoundError(yamlErr) {
		return AppConfig{}, fmt.Errorf("load yaml config: %w", yamlErr)
	}

	if err := cfg.loadEnv(); err != nil {
		return AppConfig{}, fmt.Errorf("load env config: %w", err)
	}

	if err := cfg.Validate(ctx); err != nil {
		return AppConfig{}, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func isConfigNotFoundError(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

func (c *AppConfig) loadYAML(ctx context.Context, path string) error {
	_ = ctx
	path = strings.TrimSpace(path)
	if path == "" {
		path = os.Getenv("MELTICA_CONFIG")
	}

	reader, closer, err := openConfigFile(path)
	if err != nil {
		return err
	}
	defer closer()

	bytes, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	return c.mergeYAML(bytes)
}

func (c *AppConfig) mergeYAML(bytes []byte) error {
	var yamlCfg appConfigYAML
	if err := yaml.Unmarshal(bytes, &yamlCfg); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}

	if yamlCfg.Environment != "" {
		c.Environment = Environment(strings.ToLower(strings.TrimSpace(yamlCfg.Environment)))
	}
	if yamlCfg.Logging.Level != "" {
		c.Logging.Level = yamlCfg.Logging.Level
	}
	if yamlCfg.Logging.Format != "" {
		c.Logging.Format = yamlCfg.Logging.Format
	}
	if yamlCfg.Telemetry != nil {
		c.Telemetry = mergeTelemetry(c.Telemetry, *yamlCfg.Telemetry)
	}

	for name, exYAML := range yamlCfg.Exchanges {
		key := Exchange(normalizeExchangeName(name))
		existing, ok := c.Exchanges[key]
		if !ok {
			existing = NewExchangeSettings()
		}
		merged, err := mergeExchange(existing, exYAML)
		if err != nil {
			return fmt.Errorf("exchange %s: %w", key, err)
		}
		c.Exchanges[key] = merged
	}
	return nil
}

func mergeTelemetry(base, overlay TelemetryConfig) TelemetryConfig {
	base.Enabled = overlay.Enabled
	base.OTLPInsecure = overlay.OTLPInsecure
	if overlay.OTLPEndpoint != "" {
		base.OTLPEndpoint = overlay.OTLPEndpoint
	}
	if overlay.ServiceName != "" {
		base.ServiceName = overlay.ServiceName
	}
	if overlay.MetricInterval != 0 {
		base.MetricInterval = overlay.MetricInterval
	}
	return base
}

func mergeExchange(existing ExchangeSettings, exYAML exchangeSettingsYAML) (ExchangeSettings, error) {
	existing = CloneExchangeSettings(existing)
	if v := strings.TrimSpace(exYAML.BaseURL); v != "" {
		existing.BaseURL = v
	}
	if exYAML.Sandbox != nil {
		existing.Sandbox = *exYAML.Sandbox
	}
	mergeCredentials(&existing.Credentials, exYAML.Credentials)
	if exYAML.MaxRetries != nil {
		existing.MaxRetries = *exYAML.MaxRetries
	}
	durations := []struct {
		name  string
		raw   string
		value *time.Duration
	}{
		{"http_timeout", exYAML.HTTPTimeout, &existing.HTTPTimeout},
		{"rate_limit", exYAML.RateLimit, &existing.RateLimit},
		{"markets_cache_ttl", exYAML.MarketsCacheTTL, &existing.MarketsCacheTTL},
	}
	for _, d := range durations {
		if strings.TrimSpace(d.raw) == "" {
			continue
		}
		dur, err := time.ParseDuration(strings.TrimSpace(d.raw))
		if err != nil {
			return ExchangeSettings{}, fmt.Errorf("%s: %w", d.name, err)
		}
		*d.value = dur
	}
	for k, v := range exYAML.Options {
		existing.Options[k] = v
	}
	return existing, nil
}

func mergeCredentials(dst *exchange.Credentials, src credentialsYAML) {
	if v := strings.TrimSpace(src.APIKey); v != "" {
		dst.APIKey = v
	}
	if v := strings.TrimSpace(src.Secret); v != "" {
		dst.Secret = v
	}
	if v := strings.TrimSpace(src.Passphrase); v != "" {
		dst.Passphrase = v
	}
	if v := strings.TrimSpace(src.WalletAddress); v != "" {
		dst.WalletAddress = v
	}
	if v := strings.TrimSpace(src.PrivateKey); v != "" {
		dst.PrivateKey = v
	}
}

// Validate performs semantic validation on the configuration.
func (c *AppConfig) Validate(ctx context.Context) error {
	_ = ctx

	if c.Environment != EnvDev && c.Environment != EnvStaging && c.Environment != EnvProd {
		return fmt.Errorf("invalid environment: %s", c.Environment)
	}

	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "json", "text":
	default:
		return fmt.Errorf("logging format must be json|text, got %q", c.Logging.Format)
	}

	if c.Telemetry.Enabled && strings.TrimSpace(c.Telemetry.OTLPEndpoint) == "" {
		return fmt.Errorf("telemetry otlpEndpoint required when enabled")
	}
	if c.Telemetry.MetricInterval < 0 {
		return fmt.Errorf("telemetry metricInterval must be >=0")
	}

	for name, ex := range c.Exchanges {
		if !isKnownExchange(name) {
			return fmt.Errorf("exchange %q not supported", name)
		}
		if ex.HTTPTimeout < 0 {
			return fmt.Errorf("exchange %s: http_timeout must be >=0", name)
		}
		if ex.RateLimit < 0 {
			return fmt.Errorf("exchange %s: rate_limit must be >=0", name)
		}
		if ex.MarketsCacheTTL < 0 {
			return fmt.Errorf("exchange %s: markets_cache_ttl must be >=0", name)
		}
	}
	return nil
}

func openConfigFile(path string) (io.Reader, func(), error) {
	var (
		candidates []string
		seen       = make(map[string]struct{})
	)
	addCandidate := func(candidate string) {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			return
		}
		candidate = filepath.Clean(candidate)
		if _, ok := seen[candidate]; ok {
			return
		}
		seen[candidate] = struct{}{}
		candidates = append(candidates, candidate)
	}
	addCandidate(path)
	if strings.TrimSpace(path) == "" {
		addCandidate("config/app.yaml")
	}

	var lastErr error
	for _, candidate := range candidates {
		file, err := os.Open(candidate) // #nosec G304 -- configuration paths are controlled by operators.
		if err == nil {
			return file, func() { _ = file.Close() }, nil
		}
		if !os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("open app config: %w", err)
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = os.ErrNotExist
	}
	return nil, nil, fmt.Errorf("open app config: %w", lastErr)
}
