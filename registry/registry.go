package registry

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	packedcall "github.com/wippyai/packed-call"
	"github.com/wippyai/packed-call/errors"
)

// Registry is a concurrent map from dotted names to callables.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]packedcall.Func
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{funcs: make(map[string]packedcall.Func)}
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// Default returns the process-wide registry.
func Default() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = New()
	})
	return defaultRegistry
}

// Register adds a named callable. An empty name, a nil callable, or a
// name already present fails registration; use Replace to overwrite.
func (r *Registry) Register(name string, f packedcall.Func) error {
	if err := checkEntry(name, f); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.funcs[name]; exists {
		return errors.New(errors.PhaseRegistry, errors.KindRegistration).
			Detail("name %q already registered", name).
			Build()
	}
	r.funcs[name] = f
	Logger().Debug("registered function", zap.String("name", name))
	return nil
}

// Replace adds or overwrites a named callable.
func (r *Registry) Replace(name string, f packedcall.Func) error {
	if err := checkEntry(name, f); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[name] = f
	Logger().Debug("replaced function", zap.String("name", name))
	return nil
}

func checkEntry(name string, f packedcall.Func) error {
	if name == "" {
		return errors.New(errors.PhaseRegistry, errors.KindRegistration).
			Detail("empty function name").
			Build()
	}
	if f.IsNil() {
		return errors.New(errors.PhaseRegistry, errors.KindRegistration).
			Detail("nil callable for %q", name).
			Build()
	}
	return nil
}

// Lookup finds a callable by exact name.
func (r *Registry) Lookup(name string) (packedcall.Func, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.funcs[name]
	return f, ok
}

// Get finds a callable by exact name, failing with a not-found error.
func (r *Registry) Get(name string) (packedcall.Func, error) {
	f, ok := r.Lookup(name)
	if !ok {
		return packedcall.Func{}, errors.NotFound(errors.PhaseRegistry, "function", name)
	}
	return f, nil
}

// Remove deletes a name, reporting whether it was present.
func (r *Registry) Remove(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.funcs[name]
	delete(r.funcs, name)
	return ok
}

// Names lists every registered name in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered callables.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.funcs)
}
