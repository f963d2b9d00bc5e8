package provider

import (
	"context"
	"fmt"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/coachpo/meltica-rest/internal/exchange"
	"github.com/coachpo/meltica-rest/internal/observability"
)

// Manager owns the exchange clients materialised from configuration.
type Manager struct {
	mu       sync.RWMutex
	registry *Registry
	clients  map[string]exchange.Exchange
}

// NewManager creates a manager over reg; a nil registry starts empty.
func NewManager(reg *Registry) *Manager {
	if reg == nil {
		reg = NewRegistry()
	}
	return &Manager{
		mu:       sync.RWMutex{},
		registry: reg,
		clients:  make(map[string]exchange.Exchange),
	}
}

// Registry exposes the underlying factory registry.
func (m *Manager) Registry() *Registry {
	return m.registry
}

// Start constructs a client for every spec. A failure leaves the clients
// built so far in place.
func (m *Manager) Start(ctx context.Context, specs []Spec) (map[string]exchange.Exchange, error) {
	for _, spec := range specs {
		if err := m.add(ctx, spec); err != nil {
			return nil, err
		}
	}
	return m.Clients(), nil
}

func (m *Manager) add(ctx context.Context, spec Spec) error {
	name := spec.key()
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.clients[name]; exists {
		return fmt.Errorf("exchange client %q already exists", name)
	}
	client, err := m.registry.Create(ctx, spec)
	if err != nil {
		return err
	}
	m.clients[name] = client
	observability.Log().Info("exchange client ready",
		observability.Field{Key: "name", Value: name},
		observability.Field{Key: "exchange", Value: client.ID()},
		observability.Field{Key: "sandbox", Value: spec.Sandbox},
	)
	return nil
}

// Clients returns a copy of the client map.
func (m *Manager) Clients() map[string]exchange.Exchange {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]exchange.Exchange, len(m.clients))
	for name, client := range m.clients {
		out[name] = client
	}
	return out
}

// Client resolves a client by name.
func (m *Manager) Client(name string) (exchange.Exchange, bool) {
	m.mu.RLock()
	client, ok := m.clients[name]
	m.mu.RUnlock()
	return client, ok
}

// LoadMarkets warms the market cache of every client concurrently. One
// failing venue does not stop the others; failures are joined.
func (m *Manager) LoadMarkets(ctx context.Context, reload bool) error {
	clients := m.Clients()
	if len(clients) == 0 {
		return nil
	}
	var (
		mu       sync.Mutex
		failures []error
	)
	p := pool.New().WithMaxGoroutines(len(clients))
	for name, client := range clients {
		p.Go(func() {
			if _, err := client.LoadMarkets(ctx, reload); err != nil {
				mu.Lock()
				failures = append(failures, fmt.Errorf("%s: %w", name, err))
				mu.Unlock()
			}
		})
	}
	p.Wait()
	return observability.AggregateErrors("load markets", failures)
}
