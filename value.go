package packedcall

import (
	"math"
	"unsafe"

	"github.com/wippyai/packed-call/abi"
	"github.com/wippyai/packed-call/errors"
	"github.com/wippyai/packed-call/node"
)

// podValue carries the conversions shared by argument views and return
// values: the POD kinds that never own heap payloads. The zero value
// reads as Null, matching a freshly constructed boundary value.
type podValue struct {
	raw abi.Value
	tag abi.TypeTag
	set bool
}

// Tag returns the active type tag.
func (v podValue) Tag() abi.TypeTag {
	if !v.set {
		return abi.TagNull
	}
	return v.tag
}

// IsNull reports whether the value holds nothing.
func (v podValue) IsNull() bool {
	return v.Tag() == abi.TagNull
}

func (v *podValue) store(raw abi.Value, tag abi.TypeTag) {
	v.raw, v.tag, v.set = raw, tag, true
}

func (v podValue) mismatch(expected abi.TypeTag) error {
	return errors.TypeMismatch(errors.PhaseConvert, expected.String(), v.Tag().String())
}

// Float64 converts a Float-tagged value.
func (v podValue) Float64() (float64, error) {
	if v.Tag() != abi.TagFloat {
		return 0, v.mismatch(abi.TagFloat)
	}
	return v.raw.Float64(), nil
}

// Int64 converts an Int-tagged value.
func (v podValue) Int64() (int64, error) {
	if v.Tag() != abi.TagInt {
		return 0, v.mismatch(abi.TagInt)
	}
	return v.raw.Int64(), nil
}

// Uint64 reinterprets an Int-tagged value as unsigned. Unsigned
// payloads travel under the Int tag; no range check applies in this
// direction.
func (v podValue) Uint64() (uint64, error) {
	if v.Tag() != abi.TagInt {
		return 0, v.mismatch(abi.TagInt)
	}
	return v.raw.Bits, nil
}

// Int converts an Int-tagged value, failing with a range error when the
// payload does not fit the native int width.
func (v podValue) Int() (int, error) {
	x, err := v.Int64()
	if err != nil {
		return 0, err
	}
	if x > math.MaxInt || x < math.MinInt {
		return 0, errors.OutOfRange(errors.PhaseConvert, x, "int")
	}
	return int(x), nil
}

// Int32 converts an Int-tagged value, failing with a range error when
// the payload does not fit 32 bits.
func (v podValue) Int32() (int32, error) {
	x, err := v.Int64()
	if err != nil {
		return 0, err
	}
	if x > math.MaxInt32 || x < math.MinInt32 {
		return 0, errors.OutOfRange(errors.PhaseConvert, x, "int32")
	}
	return int32(x), nil
}

// Bool converts an Int-tagged value, mapping nonzero to true.
func (v podValue) Bool() (bool, error) {
	if v.Tag() != abi.TagInt {
		return false, v.mismatch(abi.TagInt)
	}
	return v.raw.Bits != 0, nil
}

// Handle returns the opaque pointer payload. Null converts to nil, and
// an array handle passes through unchanged.
func (v podValue) Handle() (unsafe.Pointer, error) {
	switch v.Tag() {
	case abi.TagNull:
		return nil, nil
	case abi.TagHandle, abi.TagArrayHandle:
		return v.raw.Ptr, nil
	default:
		return nil, v.mismatch(abi.TagHandle)
	}
}

// Array returns the external array handle. Null converts to nil.
func (v podValue) Array() (abi.ArrayHandle, error) {
	switch v.Tag() {
	case abi.TagNull:
		return nil, nil
	case abi.TagArrayHandle:
		return abi.ArrayHandle(v.raw.Ptr), nil
	default:
		return nil, v.mismatch(abi.TagArrayHandle)
	}
}

// Node returns the shared extension handle. Null converts to nil. The
// handle is not retained; a caller keeping it beyond the value's scope
// retains it itself.
func (v podValue) Node() (*node.Shared, error) {
	switch v.Tag() {
	case abi.TagNull:
		return nil, nil
	case abi.TagNodeHandle:
		return (*node.Shared)(v.raw.Ptr), nil
	default:
		return nil, v.mismatch(abi.TagNodeHandle)
	}
}
