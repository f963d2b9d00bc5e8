package provider

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/coachpo/meltica-rest/internal/exchange"
)

// Registry maintains exchange factories keyed by exchange id.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty factory registry.
func NewRegistry() *Registry {
	return &Registry{
		mu:        sync.RWMutex{},
		factories: make(map[string]Factory),
	}
}

// Register registers a factory for the given exchange id.
func (r *Registry) Register(id string, factory Factory) {
	if factory == nil {
		panic("exchange factory required")
	}
	r.mu.Lock()
	r.factories[strings.ToLower(id)] = factory
	r.mu.Unlock()
}

// Exchanges lists the registered ids in sorted order.
func (r *Registry) Exchanges() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.factories))
	for id := range r.factories {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Create builds a client from the spec.
func (r *Registry) Create(ctx context.Context, spec Spec) (exchange.Exchange, error) {
	id := strings.ToLower(strings.TrimSpace(spec.Exchange))
	r.mu.RLock()
	factory, ok := r.factories[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("exchange %q not registered", spec.Exchange)
	}
	client, err := factory(ctx, spec)
	if err != nil {
		return nil, fmt.Errorf("instantiate exchange %s(%s): %w", spec.key(), id, err)
	}
	return client, nil
}
