package packedcall

import (
	"github.com/wippyai/packed-call/errors"
)

// ModuleImpl is the backend contract behind a module handle. Function
// resolution may be lazy; implementations must be safe for concurrent
// lookups.
type ModuleImpl interface {
	// TypeKey identifies the backend kind, for diagnostics.
	TypeKey() string

	// GetFunction resolves a named callable, or a not-found error.
	GetFunction(name string) (Func, error)

	// FunctionNames lists the resolvable names, when enumerable.
	FunctionNames() []string
}

// Module is a shared handle over a function namespace. Copies share the
// same backend. The zero value is nil and fails lookups rather than
// panicking.
type Module struct {
	impl ModuleImpl
}

// NewModule wraps a backend in a module handle.
func NewModule(impl ModuleImpl) Module {
	return Module{impl: impl}
}

// IsNil reports whether the handle has no backend.
func (m Module) IsNil() bool {
	return m.impl == nil
}

// TypeKey returns the backend kind, or "" for a nil handle.
func (m Module) TypeKey() string {
	if m.impl == nil {
		return ""
	}
	return m.impl.TypeKey()
}

// GetFunction resolves a named callable from the backend.
func (m Module) GetFunction(name string) (Func, error) {
	if m.impl == nil {
		return Func{}, errors.InvalidAccess(errors.PhaseCall, "null",
			"function lookup on nil module")
	}
	return m.impl.GetFunction(name)
}

// FunctionNames lists the backend's resolvable names, nil for a nil
// handle.
func (m Module) FunctionNames() []string {
	if m.impl == nil {
		return nil
	}
	return m.impl.FunctionNames()
}

// Impl exposes the backend for callers that need to reach past the
// handle, such as closers.
func (m Module) Impl() ModuleImpl {
	return m.impl
}
