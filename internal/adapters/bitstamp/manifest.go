package bitstamp

import (
	"context"

	"github.com/coachpo/meltica-rest/internal/exchange"
	"github.com/coachpo/meltica-rest/internal/provider"
)

// RegisterFactory installs the Bitstamp factory into the registry.
func RegisterFactory(reg *provider.Registry) {
	reg.Register(exchangeID, func(_ context.Context, spec provider.Spec) (exchange.Exchange, error) {
		baseURL := spec.BaseURL
		if baseURL == "" {
			var err error
			if baseURL, err = describe().BaseURL(spec.Sandbox); err != nil {
				return nil, err
			}
		}
		return New(Options{BaseURL: baseURL, Client: spec.Client})
	})
}
