package marketplace

import (
	"fmt"
	"sync"

	"github.com/orderhub/backend/internal/domain/integration"
)

// Registry is an in-memory MarketplaceRegistry implementation
type Registry struct {
	mu       sync.RWMutex
	adapters map[integration.ProviderCode]integration.MarketplaceAdapter
}

// NewRegistry creates an empty marketplace registry
func NewRegistry() *Registry {
	return &Registry{
		adapters: make(map[integration.ProviderCode]integration.MarketplaceAdapter),
	}
}

// Register adds an adapter to the registry, keyed by its provider code
func (r *Registry) Register(adapter integration.MarketplaceAdapter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	code := adapter.ProviderCode()
	if _, exists := r.adapters[code]; exists {
		return fmt.Errorf("marketplace: provider %s already registered", code)
	}
	r.adapters[code] = adapter
	return nil
}

// Get returns the adapter for the provider code
func (r *Registry) Get(code integration.ProviderCode) (integration.MarketplaceAdapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	adapter, ok := r.adapters[code]
	if !ok {
		return nil, fmt.Errorf("%w: %s", integration.ErrUnsupportedProvider, code)
	}
	return adapter, nil
}

// List returns all registered adapters
func (r *Registry) List() []integration.MarketplaceAdapter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	adapters := make([]integration.MarketplaceAdapter, 0, len(r.adapters))
	for _, adapter := range r.adapters {
		adapters = append(adapters, adapter)
	}
	return adapters
}

// Ensure Registry implements MarketplaceRegistry interface
var _ integration.MarketplaceRegistry = (*Registry)(nil)
