package apex

import (
	"context"

	"github.com/coachpo/meltica-rest/internal/exchange"
	"github.com/coachpo/meltica-rest/internal/provider"
)

// RegisterFactory installs the Apex factory into the registry. The zk order
// signer cannot be expressed in configuration, so clients built this way are
// read-only for order placement unless signer is non-nil.
func RegisterFactory(reg *provider.Registry, signer OrderSigner) {
	reg.Register(exchangeID, func(_ context.Context, spec provider.Spec) (exchange.Exchange, error) {
		opts := Options{
			BaseURL: spec.BaseURL,
			Sandbox: spec.Sandbox,
			Signer:  signer,
			Client:  spec.Client,
		}
		if broker, ok := provider.StringOption(spec.Options, "broker_id"); ok {
			opts.BrokerID = broker
		}
		return New(opts)
	})
}
