package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/coachpo/meltica-rest/internal/exchange"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(context.Background(), "/nonexistent/path.yaml")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Environment != EnvProd {
		t.Errorf("expected environment %s, got %s", EnvProd, cfg.Environment)
	}
	if len(cfg.Exchanges) != 0 {
		t.Errorf("expected no exchanges, got %d", len(cfg.Exchanges))
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "info" {
		t.Errorf("unexpected logging defaults %+v", cfg.Logging)
	}
	if cfg.Telemetry.Enabled {
		t.Error("expected telemetry disabled by default")
	}
}

func TestLoadYAML(t *testing.T) {
	cfg, err := Load(context.Background(), "testdata/app.yaml")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Environment != EnvStaging {
		t.Errorf("expected staging, got %s", cfg.Environment)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("expected text logging, got %s", cfg.Logging.Format)
	}
	if !cfg.Telemetry.Enabled || cfg.Telemetry.MetricInterval != 15*time.Second {
		t.Errorf("unexpected telemetry %+v", cfg.Telemetry)
	}
	if cfg.Telemetry.ServiceName != "meltica-rest" {
		t.Errorf("expected default service name to survive, got %s", cfg.Telemetry.ServiceName)
	}

	stamp, ok := cfg.Exchange(ExchangeBitstamp)
	if !ok {
		t.Fatal("expected bitstamp settings")
	}
	if stamp.Credentials.APIKey != "stamp-key" || stamp.Credentials.Secret != "stamp-secret" {
		t.Errorf("unexpected bitstamp credentials %+v", stamp.Credentials)
	}
	if stamp.HTTPTimeout != 5*time.Second || stamp.MaxRetries != 2 || stamp.MarketsCacheTTL != time.Second {
		t.Errorf("unexpected bitstamp transport %+v", stamp)
	}

	apex, ok := cfg.Exchange("APEX")
	if !ok {
		t.Fatal("expected apex settings keyed case-insensitively")
	}
	if !apex.Sandbox || apex.Credentials.Passphrase != "apex-pass" {
		t.Errorf("unexpected apex settings %+v", apex)
	}
	if apex.HTTPTimeout != defaultHTTPTimeout {
		t.Errorf("expected default timeout, got %s", apex.HTTPTimeout)
	}
	if apex.Options["broker_id"] != "6956" {
		t.Errorf("expected broker option, got %v", apex.Options)
	}

	vavo, _ := cfg.Exchange(ExchangeBitvavo)
	if vavo.BaseURL != "http://localhost:9000" || vavo.RateLimit != 100*time.Millisecond {
		t.Errorf("unexpected bitvavo settings %+v", vavo)
	}
	if vavo.Options["access_window"] != 5000 {
		t.Errorf("expected yaml int option, got %#v", vavo.Options["access_window"])
	}
}

func TestLoadEnvOverridesYAML(t *testing.T) {
	t.Setenv("MELTICA_ENV", "DEV")
	t.Setenv("MELTICA_LOG_LEVEL", "warn")
	t.Setenv("BITSTAMP_API_KEY", "env-key")
	t.Setenv("BITVAVO_SANDBOX", "false")
	t.Setenv("BITVAVO_MAX_RETRIES", "3")

	cfg, err := Load(context.Background(), "testdata/app.yaml")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Environment != EnvDev {
		t.Errorf("expected dev, got %s", cfg.Environment)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("expected warn, got %s", cfg.Logging.Level)
	}
	stamp, _ := cfg.Exchange(ExchangeBitstamp)
	if stamp.Credentials.APIKey != "env-key" || stamp.Credentials.Secret != "stamp-secret" {
		t.Errorf("expected env key with yaml secret, got %+v", stamp.Credentials)
	}
	vavo, _ := cfg.Exchange(ExchangeBitvavo)
	if vavo.MaxRetries != 3 {
		t.Errorf("expected 3 retries, got %d", vavo.MaxRetries)
	}
}

func TestLoadRejectsBadEnv(t *testing.T) {
	t.Setenv("APEX_HTTP_TIMEOUT", "soon")
	if _, err := Load(context.Background(), "/nonexistent/path.yaml"); err == nil {
		t.Fatal("expected invalid duration to fail")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*AppConfig)
	}{
		{"environment", func(c *AppConfig) { c.Environment = "qa" }},
		{"log format", func(c *AppConfig) { c.Logging.Format = "xml" }},
		{"unknown exchange", func(c *AppConfig) { c.Exchanges["kraken"] = NewExchangeSettings() }},
		{"negative timeout", func(c *AppConfig) {
			s := NewExchangeSettings()
			s.HTTPTimeout = -time.Second
			c.Exchanges[ExchangeApex] = s
		}},
		{"telemetry endpoint", func(c *AppConfig) {
			c.Telemetry.Enabled = true
			c.Telemetry.OTLPEndpoint = " "
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(context.Background()); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}

	cfg := Default()
	if err := cfg.Validate(context.Background()); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadRejectsMalformedDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("exchanges:\n  apex:\n    http_timeout: soon\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(context.Background(), path); err == nil {
		t.Fatal("expected malformed duration to fail")
	}
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("BITVAVO_API_KEY=dotenv-key\nBITVAVO_API_SECRET=dotenv-secret\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("BITVAVO_API_KEY", "already-set")
	t.Setenv("BITVAVO_API_SECRET", "")
	os.Unsetenv("BITVAVO_API_SECRET")

	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("LoadEnvFile failed: %v", err)
	}
	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv failed: %v", err)
	}
	vavo, ok := cfg.Exchange(ExchangeBitvavo)
	if !ok {
		t.Fatal("expected env to create bitvavo settings")
	}
	if vavo.Credentials.APIKey != "already-set" {
		t.Errorf("dotenv must not override the environment, got %s", vavo.Credentials.APIKey)
	}
	if vavo.Credentials.Secret != "dotenv-secret" {
		t.Errorf("expected dotenv secret, got %s", vavo.Credentials.Secret)
	}

	if err := LoadEnvFile(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Fatal("expected explicit missing file to fail")
	}
}

func TestApplyOptionsCloneAndMutate(t *testing.T) {
	base := Default()
	applied := Apply(base,
		WithEnvironment(EnvDev),
		WithLogging("debug", ""),
		WithExchangeBaseURL("BITSTAMP", " http://mock "),
		WithExchangeSandbox("apex", true),
		WithExchangeHTTPTimeout("apex", 3*time.Second),
		WithExchangeHTTPTimeout("apex", 0),
		WithExchangeCredentials("apex", exchange.Credentials{APIKey: " k ", Secret: "s"}),
		WithExchangeCredentials("apex", exchange.Credentials{APIKey: " "}),
		WithExchangeOption("apex", "broker_id", "1"),
		mutateExchangeOption("", nil),
	)

	if applied.Environment != EnvDev || base.Environment != EnvProd {
		t.Fatalf("expected environment override on the copy only")
	}
	if applied.Logging.Level != "debug" || applied.Logging.Format != "json" {
		t.Fatalf("unexpected logging %+v", applied.Logging)
	}
	stamp, _ := applied.Exchange(ExchangeBitstamp)
	if stamp.BaseURL != "http://mock" {
		t.Fatalf("expected trimmed base url, got %q", stamp.BaseURL)
	}
	apex, _ := applied.Exchange(ExchangeApex)
	if !apex.Sandbox || apex.HTTPTimeout != 3*time.Second {
		t.Fatalf("unexpected apex transport %+v", apex)
	}
	if apex.Credentials.APIKey != "k" || apex.Credentials.Secret != "s" {
		t.Fatalf("unexpected apex credentials %+v", apex.Credentials)
	}

	apex.Options["custom"] = "value"
	again, _ := applied.Exchange(ExchangeApex)
	if _, exists := again.Options["custom"]; exists {
		t.Fatalf("expected Exchange to return a clone")
	}
	if len(base.Exchanges) != 0 {
		t.Fatalf("expected base exchanges to remain unchanged")
	}
}

func TestBuildProviderSpecs(t *testing.T) {
	cfg := Apply(Default(),
		WithExchangeCredentials("bitvavo", exchange.Credentials{APIKey: "k", Secret: "s"}),
		WithExchangeSandbox("apex", true),
	)

	specs, err := BuildProviderSpecs(cfg)
	if err != nil {
		t.Fatalf("BuildProviderSpecs failed: %v", err)
	}
	if len(specs) != 2 || specs[0].Exchange != "apex" || specs[1].Exchange != "bitvavo" {
		t.Fatalf("unexpected specs %+v", specs)
	}
	if !specs[0].Sandbox {
		t.Fatalf("expected apex sandbox")
	}
	if specs[1].Client.Credentials.APIKey != "k" || specs[1].Client.Timeout != defaultHTTPTimeout {
		t.Fatalf("unexpected client config %+v", specs[1].Client)
	}

	only, err := BuildProviderSpecs(cfg, "Bitstamp")
	if err != nil {
		t.Fatalf("BuildProviderSpecs failed: %v", err)
	}
	if len(only) != 1 || only[0].Name != "bitstamp" {
		t.Fatalf("expected default bitstamp spec, got %+v", only)
	}

	if _, err := BuildProviderSpecs(cfg, "kraken"); err == nil {
		t.Fatal("expected unknown exchange to fail")
	}
	if _, err := BuildProviderSpecs(Default()); err == nil {
		t.Fatal("expected empty config to fail")
	}
}
