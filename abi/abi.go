package abi

import (
	"math"
	"unsafe"
)

// Value is the fixed-size slot every packed call reads and writes.
// Exactly one field is meaningful at a time, selected by the paired
// TypeTag:
//
//	Bits  Int, UInt (64-bit payload), Float (IEEE 754 bits)
//	Ptr   Handle, ArrayHandle, NodeHandle, FuncHandle, ModuleHandle,
//	      Bytes, and owned return payloads
//	Str   Str arguments (the header shares the caller's backing bytes)
//	Type  TypeDesc
//
// The slot itself performs no checking. Reading a field the tag does
// not select yields garbage, which is why all access outside this
// package goes through tag-checked accessors.
type Value struct {
	Bits uint64
	Ptr  unsafe.Pointer
	Str  string
	Type TypeDescriptor
}

// Int64 reads the Bits field as a signed 64-bit integer.
func (v Value) Int64() int64 {
	return int64(v.Bits)
}

// SetInt64 stores a signed 64-bit integer in the Bits field.
func (v *Value) SetInt64(x int64) {
	v.Bits = uint64(x)
}

// Float64 reads the Bits field as an IEEE 754 double.
func (v Value) Float64() float64 {
	return math.Float64frombits(v.Bits)
}

// SetFloat64 stores an IEEE 754 double in the Bits field.
func (v *Value) SetFloat64(x float64) {
	v.Bits = math.Float64bits(x)
}

// ArrayHandle is an opaque pointer to an externally managed array or
// tensor. The calling convention stores and moves it, never follows it.
type ArrayHandle unsafe.Pointer

// ByteArray wraps an externally owned byte range passed through a
// Bytes-tagged slot. The calling convention never copies or frees the
// backing array; its lifetime is the provider's responsibility.
type ByteArray struct {
	Data []byte
}
