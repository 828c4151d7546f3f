package packedcall

import (
	"math"
	"unsafe"

	"github.com/wippyai/packed-call/abi"
	"github.com/wippyai/packed-call/errors"
	"github.com/wippyai/packed-call/node"
)

// PackArgs lowers native Go arguments into parallel boundary arrays.
// The slot and tag arrays must each hold at least len(args) entries.
// Packing is non-owning: strings, byte arrays, and handles alias the
// caller's storage, which must stay live for the duration of the call.
func PackArgs(values []abi.Value, tags []abi.TypeTag, args ...any) error {
	if len(values) < len(args) || len(tags) < len(args) {
		return errors.InvalidInput(errors.PhasePack, "slot arrays shorter than argument list")
	}
	for i, arg := range args {
		if err := setArg(&values[i], &tags[i], arg); err != nil {
			return err
		}
	}
	return nil
}

func setArg(slot *abi.Value, tag *abi.TypeTag, arg any) error {
	switch v := arg.(type) {
	case nil:
		*slot = abi.Value{}
		*tag = abi.TagNull
	case bool:
		var bits uint64
		if v {
			bits = 1
		}
		*slot = abi.Value{Bits: bits}
		*tag = abi.TagInt
	case int:
		*slot = abi.Value{Bits: uint64(int64(v))}
		*tag = abi.TagInt
	case int8:
		*slot = abi.Value{Bits: uint64(int64(v))}
		*tag = abi.TagInt
	case int16:
		*slot = abi.Value{Bits: uint64(int64(v))}
		*tag = abi.TagInt
	case int32:
		*slot = abi.Value{Bits: uint64(int64(v))}
		*tag = abi.TagInt
	case int64:
		*slot = abi.Value{Bits: uint64(v)}
		*tag = abi.TagInt
	case uint8:
		*slot = abi.Value{Bits: uint64(v)}
		*tag = abi.TagInt
	case uint16:
		*slot = abi.Value{Bits: uint64(v)}
		*tag = abi.TagInt
	case uint32:
		*slot = abi.Value{Bits: uint64(v)}
		*tag = abi.TagInt
	case uint64:
		if v > math.MaxInt64 {
			return errors.OutOfRange(errors.PhasePack, v, "int64")
		}
		*slot = abi.Value{Bits: v}
		*tag = abi.TagInt
	case uint:
		if uint64(v) > math.MaxInt64 {
			return errors.OutOfRange(errors.PhasePack, v, "int64")
		}
		*slot = abi.Value{Bits: uint64(v)}
		*tag = abi.TagInt
	case float64:
		var s abi.Value
		s.SetFloat64(v)
		*slot = s
		*tag = abi.TagFloat
	case float32:
		var s abi.Value
		s.SetFloat64(float64(v))
		*slot = s
		*tag = abi.TagFloat
	case string:
		*slot = abi.Value{Str: v}
		*tag = abi.TagStr
	case *abi.ByteArray:
		if v == nil {
			*slot = abi.Value{}
			*tag = abi.TagNull
			return nil
		}
		*slot = abi.Value{Ptr: unsafe.Pointer(v)}
		*tag = abi.TagBytes
	case abi.TypeDescriptor:
		*slot = abi.Value{Type: v}
		*tag = abi.TagTypeDesc
	case abi.ArrayHandle:
		*slot = abi.Value{Ptr: unsafe.Pointer(v)}
		*tag = abi.TagArrayHandle
	case unsafe.Pointer:
		*slot = abi.Value{Ptr: v}
		*tag = abi.TagHandle
	case Func:
		// The copy escapes to the heap so the slot pointer stays valid
		// while the argument arrays are reachable.
		box := v
		*slot = abi.Value{Ptr: unsafe.Pointer(&box)}
		*tag = abi.TagFuncHandle
	case *Func:
		if v == nil {
			*slot = abi.Value{}
			*tag = abi.TagNull
			return nil
		}
		*slot = abi.Value{Ptr: unsafe.Pointer(v)}
		*tag = abi.TagFuncHandle
	case Module:
		box := v
		*slot = abi.Value{Ptr: unsafe.Pointer(&box)}
		*tag = abi.TagModuleHandle
	case *Module:
		if v == nil {
			*slot = abi.Value{}
			*tag = abi.TagNull
			return nil
		}
		*slot = abi.Value{Ptr: unsafe.Pointer(v)}
		*tag = abi.TagModuleHandle
	case *node.Shared:
		if v == nil {
			*slot = abi.Value{}
			*tag = abi.TagNull
			return nil
		}
		// Arguments do not retain; the caller's reference keeps the
		// handle alive across the call.
		*slot = abi.Value{Ptr: unsafe.Pointer(v)}
		*tag = abi.TagNodeHandle
	case ArgValue:
		*slot = v.raw
		*tag = v.Tag()
	case *RetValue:
		if v == nil {
			*slot = abi.Value{}
			*tag = abi.TagNull
			return nil
		}
		if v.Tag() == abi.TagStr {
			// Re-borrow the owned string so the callee sees a plain
			// Str argument instead of a foreign box.
			*slot = abi.Value{Str: *(*string)(v.raw.Ptr)}
			*tag = abi.TagStr
			return nil
		}
		*slot = v.raw
		*tag = v.Tag()
	default:
		return errors.New(errors.PhasePack, errors.KindUnsupported).
			Detail("cannot pack %T", arg).
			Value(arg).
			Build()
	}
	return nil
}
