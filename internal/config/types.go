// Package config centralises runtime configuration for meltica-rest.
package config

import "strings"

// Environment identifies the runtime environment.
type Environment string

// Exchange names a supported exchange integration.
type Exchange string

const (
	// EnvDev marks the development environment.
	EnvDev Environment = "dev"
	// EnvStaging marks the staging environment.
	EnvStaging Environment = "staging"
	// EnvProd marks the production environment.
	EnvProd Environment = "prod"
)

const (
	ExchangeApex     Exchange = "apex"
	ExchangeBitstamp Exchange = "bitstamp"
	ExchangeBitvavo  Exchange = "bitvavo"
)

// KnownExchanges lists the exchanges with a built-in adapter.
func KnownExchanges() []Exchange {
	return []Exchange{ExchangeApex, ExchangeBitstamp, ExchangeBitvavo}
}

func isKnownExchange(name Exchange) bool {
	for _, known := range KnownExchanges() {
		if known == name {
			return true
		}
	}
	return false
}

func normalizeExchangeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
