package packedcall

import (
	"unsafe"

	"github.com/wippyai/packed-call/abi"
	"github.com/wippyai/packed-call/errors"
	"github.com/wippyai/packed-call/node"
)

// RetValue is the owning tagged container for call outputs. Class-like
// payloads (string, function handle, module handle, node handle) live
// in heap boxes the container releases exactly once: every tag
// transition releases the previous payload first, moves leave the
// source Null, and Clear is idempotent.
//
// The zero value is empty (Null). A RetValue must not be duplicated by
// plain struct assignment once it owns a payload; use Set, Clone, Move,
// or MoveFrom.
type RetValue struct {
	podValue
}

// switchToPOD transitions to a plain numeric/pointer/descriptor tag,
// releasing any owned payload first. Same-tag transitions are free.
func (rv *RetValue) switchToPOD(tag abi.TypeTag) {
	if rv.Tag() != tag {
		rv.release()
		rv.tag, rv.set = tag, true
	}
}

// switchToOwned transitions to an owned payload tag. On a tag change
// the previous payload is released and a fresh heap box allocated; when
// the tag already matches, the existing box is overwritten in place so
// repeated same-kind assignment costs no allocation.
func switchToOwned[T any](rv *RetValue, tag abi.TypeTag, v T) {
	if rv.Tag() == tag {
		*(*T)(rv.raw.Ptr) = v
		return
	}
	rv.release()
	box := new(T)
	*box = v
	rv.store(abi.Value{Ptr: unsafe.Pointer(box)}, tag)
}

// release frees the owned payload for the current tag and resets the
// container to Null. Node handles give up their reference; string,
// function, and module boxes are dropped with the slot. Safe to call
// repeatedly.
func (rv *RetValue) release() {
	if rv.Tag() == abi.TagNodeHandle {
		if n := (*node.Shared)(rv.raw.Ptr); n != nil {
			n.Release()
		}
	}
	rv.raw = abi.Value{}
	rv.tag, rv.set = abi.TagNull, true
}

// Clear releases any owned payload and resets the container to Null.
// Clearing an empty or moved-from container is a no-op.
func (rv *RetValue) Clear() {
	rv.release()
}

// SetInt64 stores a signed 64-bit integer under the Int tag.
func (rv *RetValue) SetInt64(x int64) {
	rv.switchToPOD(abi.TagInt)
	rv.raw = abi.Value{Bits: uint64(x)}
}

// SetInt stores a native int under the Int tag.
func (rv *RetValue) SetInt(x int) {
	rv.SetInt64(int64(x))
}

// SetBool stores a boolean under the Int tag, true as 1.
func (rv *RetValue) SetBool(b bool) {
	rv.switchToPOD(abi.TagInt)
	var bits uint64
	if b {
		bits = 1
	}
	rv.raw = abi.Value{Bits: bits}
}

// SetFloat64 stores a 64-bit float under the Float tag.
func (rv *RetValue) SetFloat64(x float64) {
	rv.switchToPOD(abi.TagFloat)
	var slot abi.Value
	slot.SetFloat64(x)
	rv.raw = slot
}

// SetNull empties the container, releasing any owned payload.
func (rv *RetValue) SetNull() {
	rv.release()
}

// SetHandle stores an opaque pointer under the Handle tag.
func (rv *RetValue) SetHandle(p unsafe.Pointer) {
	rv.switchToPOD(abi.TagHandle)
	rv.raw = abi.Value{Ptr: p}
}

// SetArray stores an external array handle.
func (rv *RetValue) SetArray(h abi.ArrayHandle) {
	rv.switchToPOD(abi.TagArrayHandle)
	rv.raw = abi.Value{Ptr: unsafe.Pointer(h)}
}

// SetTypeDesc stores a type descriptor inline.
func (rv *RetValue) SetTypeDesc(d abi.TypeDescriptor) {
	rv.switchToPOD(abi.TagTypeDesc)
	rv.raw = abi.Value{Type: d}
}

// SetStr stores an owned copy of s.
func (rv *RetValue) SetStr(s string) {
	switchToOwned(rv, abi.TagStr, s)
}

// SetFunc stores an owned copy of f. The copy shares f's callable body.
func (rv *RetValue) SetFunc(f Func) {
	switchToOwned(rv, abi.TagFuncHandle, f)
}

// SetModule stores an owned copy of m. The copy shares m's backend.
func (rv *RetValue) SetModule(m Module) {
	switchToOwned(rv, abi.TagModuleHandle, m)
}

// SetNode stores a retained reference to the shared extension handle.
// A nil handle empties the container.
func (rv *RetValue) SetNode(n *node.Shared) {
	if n == nil {
		rv.release()
		return
	}
	if rv.Tag() == abi.TagNodeHandle {
		old := (*node.Shared)(rv.raw.Ptr)
		if old == n {
			return
		}
		n.Retain()
		if old != nil {
			old.Release()
		}
		rv.raw = abi.Value{Ptr: unsafe.Pointer(n)}
		return
	}
	rv.release()
	n.Retain()
	rv.store(abi.Value{Ptr: unsafe.Pointer(n)}, abi.TagNodeHandle)
}

// Assign deep-copies an argument view into the container: Str and Bytes
// become an owned string, function and module handles become owned
// copies of the referenced values, node handles are retained, and every
// other tag copies the slot as POD.
func (rv *RetValue) Assign(src ArgValue) error {
	switch src.Tag() {
	case abi.TagStr, abi.TagBytes:
		s, err := src.Str()
		if err != nil {
			return err
		}
		rv.SetStr(s)
	case abi.TagFuncHandle:
		f, err := src.Func()
		if err != nil {
			return err
		}
		rv.SetFunc(f)
	case abi.TagModuleHandle:
		m, err := src.Module()
		if err != nil {
			return err
		}
		rv.SetModule(m)
	case abi.TagNodeHandle:
		n, err := src.Node()
		if err != nil {
			return err
		}
		rv.SetNode(n)
	default:
		if !src.Tag().Valid() {
			return errors.New(errors.PhaseConvert, errors.KindUnknownType).
				Detail("tag %d outside the closed set", uint8(src.Tag())).
				Build()
		}
		rv.switchToPOD(src.Tag())
		rv.raw = src.raw
	}
	return nil
}

// Set deep-copies another container, releasing this one's payload
// first. The source is unchanged.
func (rv *RetValue) Set(src *RetValue) {
	if rv == src {
		return
	}
	switch src.Tag() {
	case abi.TagStr:
		rv.SetStr(*(*string)(src.raw.Ptr))
	case abi.TagFuncHandle:
		rv.SetFunc(*(*Func)(src.raw.Ptr))
	case abi.TagModuleHandle:
		rv.SetModule(*(*Module)(src.raw.Ptr))
	case abi.TagNodeHandle:
		rv.SetNode((*node.Shared)(src.raw.Ptr))
	default:
		rv.switchToPOD(src.Tag())
		rv.raw = src.raw
	}
}

// Clone returns an independent deep copy of the container.
func (rv *RetValue) Clone() RetValue {
	var out RetValue
	out.Set(rv)
	return out
}

// MoveFrom transfers src's payload into this container without
// reallocation, releasing any payload this container held. src is left
// Null; clearing it afterwards is a no-op and cannot touch the moved
// payload.
func (rv *RetValue) MoveFrom(src *RetValue) {
	if rv == src {
		return
	}
	rv.release()
	rv.store(src.raw, src.Tag())
	src.raw = abi.Value{}
	src.tag, src.set = abi.TagNull, true
}

// Move returns a new container owning this one's payload, leaving this
// container Null.
func (rv *RetValue) Move() RetValue {
	var out RetValue
	out.MoveFrom(rv)
	return out
}

// MoveToBoundary hands the raw slot and tag to the boundary arrays and
// marks the container Null; responsibility for any owned payload,
// including a node handle's reference, transfers to the receiver. A Str
// payload is rejected: a bare string cannot cross the boundary without
// a wrapper the receiver understands.
func (rv *RetValue) MoveToBoundary(slot *abi.Value, tag *abi.TypeTag) error {
	if rv.Tag() == abi.TagStr {
		return errors.InvalidAccess(errors.PhaseExtract, abi.TagStr.String(),
			"string payload cannot cross the boundary")
	}
	*slot = rv.raw
	*tag = rv.Tag()
	rv.raw = abi.Value{}
	rv.tag, rv.set = abi.TagNull, true
	return nil
}

// Value returns the raw POD slot. Class-like tags fail with an invalid
// access error: the slot alone does not represent an owned payload
// meaningfully.
func (rv *RetValue) Value() (abi.Value, error) {
	if rv.Tag().IsClassLike() {
		return abi.Value{}, errors.InvalidAccess(errors.PhaseConvert, rv.Tag().String(),
			"raw slot access on owned payload")
	}
	return rv.raw, nil
}

// Str converts to a string: an owned Str payload directly, or TypeDesc
// by formatting.
func (rv *RetValue) Str() (string, error) {
	switch rv.Tag() {
	case abi.TagStr:
		return *(*string)(rv.raw.Ptr), nil
	case abi.TagTypeDesc:
		return rv.raw.Type.String(), nil
	default:
		return "", rv.mismatch(abi.TagStr)
	}
}

// TypeDesc converts to a type descriptor: TypeDesc directly, or an
// owned Str payload by parsing.
func (rv *RetValue) TypeDesc() (abi.TypeDescriptor, error) {
	switch rv.Tag() {
	case abi.TagTypeDesc:
		return rv.raw.Type, nil
	case abi.TagStr:
		return abi.ParseTypeDescriptor(*(*string)(rv.raw.Ptr))
	default:
		return abi.TypeDescriptor{}, rv.mismatch(abi.TagTypeDesc)
	}
}

// Func returns a copy of the owned callable. The copy shares the body.
func (rv *RetValue) Func() (Func, error) {
	if rv.Tag() != abi.TagFuncHandle {
		return Func{}, rv.mismatch(abi.TagFuncHandle)
	}
	return *(*Func)(rv.raw.Ptr), nil
}

// Module returns a copy of the owned module handle. The copy shares the
// backend.
func (rv *RetValue) Module() (Module, error) {
	if rv.Tag() != abi.TagModuleHandle {
		return Module{}, rv.mismatch(abi.TagModuleHandle)
	}
	return *(*Module)(rv.raw.Ptr), nil
}
