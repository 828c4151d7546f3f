package node

import "sync/atomic"

// Dropper is optionally implemented by node values that need cleanup.
type Dropper interface {
	Drop()
}

// Shared is a reference-counted handle to an embedder-owned value.
// The count is atomic: holders on different goroutines may retain and
// release the same handle concurrently.
type Shared struct {
	val  any
	refs atomic.Int32
}

// New wraps val in a fresh handle with one reference, owned by the
// caller.
func New(val any) *Shared {
	s := &Shared{val: val}
	s.refs.Store(1)
	return s
}

// Retain adds a reference and returns the same handle.
func (s *Shared) Retain() *Shared {
	if s.refs.Add(1) <= 1 {
		panic("node: retain of released handle")
	}
	return s
}

// Release drops one reference. When the count reaches zero the wrapped
// value's Drop method runs (if implemented) and the value is detached.
// Releasing below zero is a bug and panics.
func (s *Shared) Release() {
	n := s.refs.Add(-1)
	if n < 0 {
		panic("node: release of released handle")
	}
	if n == 0 {
		if d, ok := s.val.(Dropper); ok {
			d.Drop()
		}
		s.val = nil
	}
}

// Value returns the wrapped value. The handle must be live.
func (s *Shared) Value() any {
	return s.val
}

// Refs returns the current reference count. Diagnostic use only; the
// value may be stale by the time the caller reads it.
func (s *Shared) Refs() int32 {
	return s.refs.Load()
}
