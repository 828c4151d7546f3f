package packedcall

import (
	"github.com/wippyai/packed-call/errors"
	"github.com/wippyai/packed-call/node"
)

// Capability converts shared extension handles to a host-side
// representation. Registering concrete capabilities lets callers pull
// typed objects out of node-tagged values without the core knowing the
// object model.
type Capability interface {
	// Name identifies the capability in diagnostics.
	Name() string

	// Convertible reports whether the handle's payload is convertible.
	Convertible(n *node.Shared) bool

	// Convert produces the host representation. Called only after
	// Convertible reports true.
	Convert(n *node.Shared) (any, error)
}

// ConvertibleTo reports whether the argument holds a node handle the
// capability can convert.
func (v ArgValue) ConvertibleTo(c Capability) bool {
	n, err := v.Node()
	return err == nil && n != nil && c.Convertible(n)
}

// ConvertTo converts the argument's node handle through the capability.
func (v ArgValue) ConvertTo(c Capability) (any, error) {
	n, err := v.Node()
	if err != nil {
		return nil, err
	}
	if n == nil || !c.Convertible(n) {
		return nil, errors.TypeMismatch(errors.PhaseConvert, c.Name(), v.Tag().String())
	}
	return c.Convert(n)
}

// ConvertibleTo reports whether the container holds a node handle the
// capability can convert.
func (rv *RetValue) ConvertibleTo(c Capability) bool {
	n, err := rv.Node()
	return err == nil && n != nil && c.Convertible(n)
}

// ConvertTo converts the container's node handle through the
// capability.
func (rv *RetValue) ConvertTo(c Capability) (any, error) {
	n, err := rv.Node()
	if err != nil {
		return nil, err
	}
	if n == nil || !c.Convertible(n) {
		return nil, errors.TypeMismatch(errors.PhaseConvert, c.Name(), rv.Tag().String())
	}
	return c.Convert(n)
}
