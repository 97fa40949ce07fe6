package backend

import (
	"sync"

	"github.com/gogpu/sharetex/driver"
)

// Factory creates a new driver instance.
type Factory func() driver.Driver

// registry holds registered backends.
var (
	registryMu sync.RWMutex
	backends   = make(map[string]Factory)
	// Priority order for backend selection (first available wins).
	// D3D9 is the only driver with interop; software is the fallback.
	backendPriority = []string{BackendD3D9, BackendWGPU, BackendSoftware}
)

// Register registers a driver factory with the given name.
// This is typically called from init() functions in backend packages.
// If a backend with the same name is already registered, it is replaced.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	backends[name] = factory
}

// Unregister removes a backend from the registry.
// This is useful for testing.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(backends, name)
}

// Available returns a list of registered backend names in priority order,
// followed by any others.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(backends))
	seen := make(map[string]bool, len(backends))
	for _, name := range backendPriority {
		if _, ok := backends[name]; ok {
			names = append(names, name)
			seen[name] = true
		}
	}
	for name := range backends {
		if !seen[name] {
			names = append(names, name)
		}
	}
	return names
}

// IsRegistered checks if a backend with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := backends[name]
	return ok
}

// Get returns a driver by name.
// Returns nil if the backend is not registered.
func Get(name string) driver.Driver {
	registryMu.RLock()
	defer registryMu.RUnlock()

	factory, ok := backends[name]
	if !ok {
		return nil
	}
	return factory()
}

// Default returns the best available driver based on priority.
// Returns nil if no backends are registered.
func Default() driver.Driver {
	registryMu.RLock()
	defer registryMu.RUnlock()

	for _, name := range backendPriority {
		if factory, ok := backends[name]; ok {
			if d := factory(); d != nil {
				return d
			}
		}
	}

	// Fallback: return first available
	for _, factory := range backends {
		if d := factory(); d != nil {
			return d
		}
	}

	return nil
}

// MustDefault returns the default driver or panics.
func MustDefault() driver.Driver {
	d := Default()
	if d == nil {
		panic("backend: no backend available")
	}
	return d
}
