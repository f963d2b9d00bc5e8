package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultEnvFile = ".env"

// LoadEnvFile exports the variables of a dotenv file into the process
// environment without overriding variables that are already set. An empty
// path tries ".env" and tolerates its absence.
func LoadEnvFile(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		if _, err := os.Stat(defaultEnvFile); errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		path = defaultEnvFile
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// FromEnv returns Default with environment overrides applied.
func FromEnv() (AppConfig, error) {
	cfg := Default()
	if err := cfg.loadEnv(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// loadEnv applies MELTICA_*, OTEL_* and per-exchange overrides such as
// BITSTAMP_API_KEY or APEX_PASSPHRASE. An exchange entry is created only
// when one of its variables is set.
func (c *AppConfig) loadEnv() error {
	if env := strings.TrimSpace(os.Getenv("MELTICA_ENV")); env != "" {
		c.Environment = Environment(strings.ToLower(env))
	}
	if v := strings.TrimSpace(os.Getenv("MELTICA_LOG_LEVEL")); v != "" {
		c.Logging.Level = v
	}
	if v := strings.TrimSpace(os.Getenv("MELTICA_LOG_FORMAT")); v != "" {
		c.Logging.Format = v
	}
	if v := strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")); v != "" {
		c.Telemetry.OTLPEndpoint = v
		c.Telemetry.Enabled = true
	}
	if v := strings.TrimSpace(os.Getenv("OTEL_SERVICE_NAME")); v != "" {
		c.Telemetry.ServiceName = v
	}

	for _, name := range KnownExchanges() {
		if err := c.loadExchangeEnv(name); err != nil {
			return err
		}
	}
	return nil
}

func (c *AppConfig) loadExchangeEnv(name Exchange) error {
	prefix := strings.ToUpper(string(name)) + "_"
	lookup := func(suffix string) (string, bool) {
		v := strings.TrimSpace(os.Getenv(prefix + suffix))
		return v, v != ""
	}

	settings, ok := c.Exchanges[name]
	if !ok {
		settings = NewExchangeSettings()
	}
	settings = CloneExchangeSettings(settings)
	touched := false
	set := func(suffix string, dst *string) {
		if v, ok := lookup(suffix); ok {
			*dst = v
			touched = true
		}
	}
	set("BASE_URL", &settings.BaseURL)
	set("API_KEY", &settings.Credentials.APIKey)
	set("API_SECRET", &settings.Credentials.Secret)
	set("PASSPHRASE", &settings.Credentials.Passphrase)
	set("WALLET_ADDRESS", &settings.Credentials.WalletAddress)
	set("PRIVATE_KEY", &settings.Credentials.PrivateKey)

	if v, ok := lookup("SANDBOX"); ok {
		sandbox, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sSANDBOX: %w", prefix, err)
		}
		settings.Sandbox = sandbox
		touched = true
	}
	if v, ok := lookup("HTTP_TIMEOUT"); ok {
		dur, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sHTTP_TIMEOUT: %w", prefix, err)
		}
		settings.HTTPTimeout = dur
		touched = true
	}
	if v, ok := lookup("MAX_RETRIES"); ok {
		retries, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return fmt.Errorf("%sMAX_RETRIES: %w", prefix, err)
		}
		settings.MaxRetries = uint(retries)
		touched = true
	}

	if touched {
		c.Exchanges[name] = settings
	}
	return nil
}
