package provider

import (
	"fmt"
	"sync"
)

// Factory is a constructor function that creates a new ModelProvider.
type Factory func(config map[string]string) (ModelProvider, error)

var (
	mu        sync.RWMutex
	factories = make(map[string]Factory)
)

// Register makes a provider factory available by name.
// It is typically called from the binary's provider wiring at startup.
func Register(name string, factory Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[name]; exists {
		panic(fmt.Sprintf("provider: duplicate registration for %q", name))
	}
	factories[name] = factory
}

// New creates a new ModelProvider by name using the registered factory.
func New(name string, config map[string]string) (ModelProvider, error) {
	mu.RLock()
	factory, ok := factories[name]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("provider: unknown provider %q", name)
	}
	return factory(config)
}

// Available returns the names of all registered providers.
func Available() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	return names
}
