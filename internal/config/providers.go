package config

import (
	"fmt"
	"sort"

	"github.com/coachpo/meltica-rest/internal/provider"
)

// BuildProviderSpecs converts exchange entries into provider specs. With no
// names every configured exchange is returned; a named exchange missing from
// the config gets default settings.
func BuildProviderSpecs(cfg AppConfig, names ...Exchange) ([]provider.Spec, error) {
	if len(names) == 0 {
		for name := range cfg.Exchanges {
			names = append(names, name)
		}
		sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no exchanges defined in config")
	}

	specs := make([]provider.Spec, 0, len(names))
	for _, raw := range names {
		name := Exchange(normalizeExchangeName(string(raw)))
		if !isKnownExchange(name) {
			return nil, fmt.Errorf("exchange %q not supported", raw)
		}
		settings, _ := cfg.Exchange(name)
		specs = append(specs, provider.Spec{
			Name:     string(name),
			Exchange: string(name),
			BaseURL:  settings.BaseURL,
			Sandbox:  settings.Sandbox,
			Client:   settings.ClientConfig(),
			Options:  settings.Options,
		})
	}
	return specs, nil
}
