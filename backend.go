package present

import (
	"errors"
	"sort"
	"sync"

	"github.com/gogpu/present/swapchain"
)

// Backend creates presentation surfaces for native windows. One Backend
// instance serves all windows of a Core and owns the shared GPU device
// state, if any.
type Backend interface {
	// Name returns the backend's registry name.
	Name() string

	// CreateSurface wraps a native window handle in a Surface. The
	// accepted handle type is backend-specific; see the backend's
	// package documentation.
	CreateSurface(native any) (swapchain.Surface, error)

	// Release frees backend-wide resources. Idempotent.
	Release()
}

// DeviceProvider is implemented by backends that expose their shared
// GPU device state to the host.
type DeviceProvider interface {
	DeviceContext() *DeviceContext
}

// BackendFactory creates a backend instance for the given configuration.
type BackendFactory func(cfg Config) (Backend, error)

// RegistryEntry represents a registered presentation backend.
type RegistryEntry struct {
	// Name is the unique identifier for this backend.
	Name string

	// Priority determines selection order (higher = preferred).
	// Standard priorities:
	//   - 100: GPU-backed presentation (wgpu)
	//   - 10: in-memory presentation (headless)
	Priority int

	// Factory creates backend instances.
	Factory BackendFactory

	// Available reports if the backend can run on this system.
	Available func() bool
}

// globalBackends is the default registry.
var globalBackends = &BackendRegistry{}

// BackendRegistry manages registered presentation backends, so
// third-party backends can register themselves without changes to the
// core library.
//
// Example registration:
//
//	func init() {
//	    present.RegisterBackend("wgpu", 100, newBackend, nil)
//	}
type BackendRegistry struct {
	mu      sync.RWMutex
	entries map[string]*RegistryEntry
}

// RegisterBackend adds a backend to the global registry. If available
// is nil, the backend is assumed always available. Registering a name
// that already exists replaces the previous entry.
func RegisterBackend(name string, priority int, factory BackendFactory, available func() bool) {
	globalBackends.Register(name, priority, factory, available)
}

// UnregisterBackend removes a backend from the global registry.
func UnregisterBackend(name string) {
	globalBackends.Unregister(name)
}

// Backends returns all registered backend names sorted by priority
// (highest first).
func Backends() []string {
	return globalBackends.List()
}

// AvailableBackends returns names of all available backends sorted by
// priority.
func AvailableBackends() []string {
	return globalBackends.Available()
}

// Register adds a backend to this registry.
func (r *BackendRegistry) Register(name string, priority int, factory BackendFactory, available func() bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.entries == nil {
		r.entries = make(map[string]*RegistryEntry)
	}
	if available == nil {
		available = func() bool { return true }
	}
	r.entries[name] = &RegistryEntry{
		Name:      name,
		Priority:  priority,
		Factory:   factory,
		Available: available,
	}
}

// Unregister removes a backend from this registry.
func (r *BackendRegistry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.entries, name)
}

// List returns all registered backend names sorted by priority.
func (r *BackendRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sortedNames(false)
}

// Available returns names of all available backends sorted by priority.
func (r *BackendRegistry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sortedNames(true)
}

// Get returns information about a specific backend.
func (r *BackendRegistry) Get(name string) (*RegistryEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[name]
	if !ok {
		return nil, false
	}

	// Return a copy to prevent modification
	entryCopy := *entry
	return &entryCopy, true
}

// Open creates a backend by name, or the best available one when name
// is empty.
func (r *BackendRegistry) Open(name string, cfg Config) (Backend, error) {
	if name != "" {
		return r.openByName(name, cfg)
	}

	r.mu.RLock()
	available := r.sortedNames(true)
	r.mu.RUnlock()

	if len(available) == 0 {
		return nil, ErrNoBackendAvailable
	}

	// Try each available backend in priority order
	var lastErr error
	for _, n := range available {
		b, err := r.openByName(n, cfg)
		if err == nil {
			return b, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

func (r *BackendRegistry) openByName(name string, cfg Config) (Backend, error) {
	r.mu.RLock()
	entry, ok := r.entries[name]
	r.mu.RUnlock()

	if !ok {
		return nil, &BackendNotFoundError{Name: name}
	}
	if !entry.Available() {
		return nil, &BackendUnavailableError{Name: name}
	}
	return entry.Factory(cfg)
}

// sortedNames returns backend names sorted by priority (highest first).
// If onlyAvailable is true, filters to available backends only.
// Must be called with lock held.
func (r *BackendRegistry) sortedNames(onlyAvailable bool) []string {
	if len(r.entries) == 0 {
		return nil
	}

	type entry struct {
		name     string
		priority int
	}

	entries := make([]entry, 0, len(r.entries))
	for name, e := range r.entries {
		if onlyAvailable && !e.Available() {
			continue
		}
		entries = append(entries, entry{name: name, priority: e.Priority})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].priority > entries[j].priority
	})

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.name
	}
	return names
}

// Errors.
var (
	// ErrNoBackendAvailable is returned when no presentation backends
	// are registered or available on the current system.
	ErrNoBackendAvailable = errors.New("present: no backend available")
)

// BackendNotFoundError indicates a named backend is not registered.
type BackendNotFoundError struct {
	Name string
}

func (e *BackendNotFoundError) Error() string {
	return "present: backend not found: " + e.Name
}

// BackendUnavailableError indicates a backend exists but is not
// available on this system.
type BackendUnavailableError struct {
	Name string
}

func (e *BackendUnavailableError) Error() string {
	return "present: backend unavailable: " + e.Name
}
