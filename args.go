package packedcall

import (
	"github.com/wippyai/packed-call/abi"
	"github.com/wippyai/packed-call/errors"
)

// ArgValue is the non-owning view of one tagged argument. For
// class-like tags the referenced storage belongs to the caller and must
// outlive the call; the view never frees anything.
type ArgValue struct {
	podValue
}

// NewArgValue builds a view over a raw boundary slot and its tag.
// Dispatchers that receive flat arrays use this to reconstruct views.
func NewArgValue(raw abi.Value, tag abi.TypeTag) ArgValue {
	var v ArgValue
	v.store(raw, tag)
	return v
}

// Value returns the raw slot unchecked. Argument views place no
// restriction here; the caller already owns the storage behind it.
func (v ArgValue) Value() abi.Value {
	return v.raw
}

// Str converts to a string: Str directly (sharing the argument's
// backing bytes), Bytes by copying the aliased range, TypeDesc by
// formatting.
func (v ArgValue) Str() (string, error) {
	switch v.Tag() {
	case abi.TagStr:
		return v.raw.Str, nil
	case abi.TagBytes:
		arr := (*abi.ByteArray)(v.raw.Ptr)
		if arr == nil {
			return "", errors.InvalidData(errors.PhaseConvert, "nil byte array payload")
		}
		return string(arr.Data), nil
	case abi.TagTypeDesc:
		return v.raw.Type.String(), nil
	default:
		return "", v.mismatch(abi.TagStr)
	}
}

// Bytes returns the aliased byte range without copying.
func (v ArgValue) Bytes() ([]byte, error) {
	if v.Tag() != abi.TagBytes {
		return nil, v.mismatch(abi.TagBytes)
	}
	arr := (*abi.ByteArray)(v.raw.Ptr)
	if arr == nil {
		return nil, errors.InvalidData(errors.PhaseConvert, "nil byte array payload")
	}
	return arr.Data, nil
}

// TypeDesc converts to a type descriptor: TypeDesc directly, or Str by
// parsing the canonical text form.
func (v ArgValue) TypeDesc() (abi.TypeDescriptor, error) {
	switch v.Tag() {
	case abi.TagTypeDesc:
		return v.raw.Type, nil
	case abi.TagStr:
		return abi.ParseTypeDescriptor(v.raw.Str)
	default:
		return abi.TypeDescriptor{}, v.mismatch(abi.TagTypeDesc)
	}
}

// Func dereferences a function-handle argument. The result shares the
// caller-owned callable.
func (v ArgValue) Func() (Func, error) {
	if v.Tag() != abi.TagFuncHandle {
		return Func{}, v.mismatch(abi.TagFuncHandle)
	}
	f := (*Func)(v.raw.Ptr)
	if f == nil {
		return Func{}, errors.InvalidData(errors.PhaseConvert, "nil function handle payload")
	}
	return *f, nil
}

// Module dereferences a module-handle argument. The result shares the
// caller-owned backend.
func (v ArgValue) Module() (Module, error) {
	if v.Tag() != abi.TagModuleHandle {
		return Module{}, v.mismatch(abi.TagModuleHandle)
	}
	m := (*Module)(v.raw.Ptr)
	if m == nil {
		return Module{}, errors.InvalidData(errors.PhaseConvert, "nil module handle payload")
	}
	return *m, nil
}

// Args is a bounds-checked, read-only view over the parallel slot and
// tag arrays of one packed call.
type Args struct {
	Values []abi.Value
	Tags   []abi.TypeTag
}

// NewArgs pairs parallel slot and tag arrays of equal length.
func NewArgs(values []abi.Value, tags []abi.TypeTag) (Args, error) {
	if len(values) != len(tags) {
		return Args{}, errors.New(errors.PhaseConvert, errors.KindInvalidInput).
			Detail("parallel arrays disagree: %d values, %d tags", len(values), len(tags)).
			Build()
	}
	return Args{Values: values, Tags: tags}, nil
}

// Len returns the argument count.
func (a Args) Len() int {
	return len(a.Tags)
}

// Get returns the view of argument i, failing with an index error when
// i is outside [0, Len()).
func (a Args) Get(i int) (ArgValue, error) {
	if i < 0 || i >= len(a.Tags) || i >= len(a.Values) {
		return ArgValue{}, errors.BadIndex(errors.PhaseConvert, i, a.Len())
	}
	return NewArgValue(a.Values[i], a.Tags[i]), nil
}
