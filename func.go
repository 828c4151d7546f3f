package packedcall

import (
	"github.com/wippyai/packed-call/abi"
	"github.com/wippyai/packed-call/errors"
)

// Body is the uniform shape every callable reduces to: read tagged
// arguments, write at most one result into rv. Implementations must be
// safe for concurrent invocation.
type Body func(args Args, rv *RetValue) error

// Func is a type-erased callable. The zero value is nil and fails calls
// with a null-call error rather than panicking.
type Func struct {
	body Body
}

// NewFunc wraps a body in a callable handle.
func NewFunc(body Body) Func {
	return Func{body: body}
}

// IsNil reports whether the callable has no body.
func (f Func) IsNil() bool {
	return f.body == nil
}

// CallPacked invokes the body with pre-packed argument arrays. This is
// the boundary-level entry point; dispatchers that already hold flat
// slots call it directly.
func (f Func) CallPacked(args Args, rv *RetValue) error {
	if f.body == nil {
		return errors.NullCall()
	}
	return f.body(args, rv)
}

// Call packs native Go arguments and invokes the callable, returning
// the moved result. On any error the result is empty.
func (f Func) Call(args ...any) (RetValue, error) {
	if f.body == nil {
		return RetValue{}, errors.NullCall()
	}
	values := make([]abi.Value, len(args))
	tags := make([]abi.TypeTag, len(args))
	if err := PackArgs(values, tags, args...); err != nil {
		return RetValue{}, err
	}
	var rv RetValue
	if err := f.body(Args{Values: values, Tags: tags}, &rv); err != nil {
		rv.Clear()
		return RetValue{}, err
	}
	return rv.Move(), nil
}
