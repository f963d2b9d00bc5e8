package bitvavo

import (
	"context"

	"github.com/coachpo/meltica-rest/internal/exchange"
	"github.com/coachpo/meltica-rest/internal/provider"
)

// RegisterFactory installs the Bitvavo factory into the registry. Recognized
// options are "access_window" and "operator_id".
func RegisterFactory(reg *provider.Registry) {
	reg.Register(exchangeID, func(_ context.Context, spec provider.Spec) (exchange.Exchange, error) {
		baseURL := spec.BaseURL
		if baseURL == "" {
			var err error
			if baseURL, err = describe().BaseURL(spec.Sandbox); err != nil {
				return nil, err
			}
		}
		opts := Options{BaseURL: baseURL, Client: spec.Client}
		if window, ok := provider.IntOption(spec.Options, "access_window"); ok {
			opts.AccessWindow = window
		}
		if operator, ok := provider.IntOption(spec.Options, "operator_id"); ok {
			opts.OperatorID = int64(operator)
		}
		return New(opts)
	})
}
