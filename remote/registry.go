package remote

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Registry maps backend names to factories so the backend can be chosen by
// configuration at startup.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds or replaces the factory for name.
func (r *Registry) Register(name string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Names lists the registered backend names in order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve opens the backend registered under name. Unknown names, factory
// errors and factory panics all come back as a BINDING_UNAVAILABLE error.
func (r *Registry) Resolve(ctx context.Context, name, dsn string) (backend Backend, err error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()

	if !ok || factory == nil {
		return nil, unavailableError("resolve", fmt.Sprintf("no backend registered as %q", name))
	}

	defer func() {
		if rec := recover(); rec != nil {
			backend = nil
			err = unavailableError("resolve", fmt.Sprintf("backend %q panicked: %v", name, rec))
		}
	}()

	backend, err = factory(ctx, dsn)
	if err != nil {
		return nil, unavailableError("resolve", fmt.Sprintf("backend %q: %v", name, err))
	}
	if backend == nil {
		return nil, unavailableError("resolve", fmt.Sprintf("backend %q returned nothing", name))
	}
	return backend, nil
}
