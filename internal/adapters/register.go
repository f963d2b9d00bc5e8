// Package adapters wires built-in adapters into the provider registry.
package adapters

import (
	"github.com/coachpo/meltica-rest/internal/adapters/apex"
	"github.com/coachpo/meltica-rest/internal/adapters/bitstamp"
	"github.com/coachpo/meltica-rest/internal/adapters/bitvavo"
	"github.com/coachpo/meltica-rest/internal/provider"
)

// RegisterAll installs every built-in adapter into the provided registry.
// apexSigner may be nil, leaving apex order placement unavailable.
func RegisterAll(reg *provider.Registry, apexSigner apex.OrderSigner) {
	if reg == nil {
		return
	}
	apex.RegisterFactory(reg, apexSigner)
	bitstamp.RegisterFactory(reg)
	bitvavo.RegisterFactory(reg)
}
