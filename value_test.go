package packedcall

import (
	"errors"
	"math"
	"testing"
	"unsafe"

	"github.com/wippyai/packed-call/abi"
	pcerrors "github.com/wippyai/packed-call/errors"
	"github.com/wippyai/packed-call/node"
)

func intArg(x int64) ArgValue {
	return NewArgValue(abi.Value{Bits: uint64(x)}, abi.TagInt)
}

func floatArg(x float64) ArgValue {
	var slot abi.Value
	slot.SetFloat64(x)
	return NewArgValue(slot, abi.TagFloat)
}

func TestZeroValueIsNull(t *testing.T) {
	var v ArgValue
	if v.Tag() != abi.TagNull {
		t.Errorf("Tag() = %v, want %v", v.Tag(), abi.TagNull)
	}
	if !v.IsNull() {
		t.Error("IsNull() = false, want true")
	}

	var rv RetValue
	if rv.Tag() != abi.TagNull {
		t.Errorf("Tag() = %v, want %v", rv.Tag(), abi.TagNull)
	}
}

func TestIntConversions(t *testing.T) {
	v := intArg(-42)

	x, err := v.Int64()
	if err != nil {
		t.Fatalf("Int64() error: %v", err)
	}
	if x != -42 {
		t.Errorf("Int64() = %d, want -42", x)
	}

	n, err := v.Int()
	if err != nil {
		t.Fatalf("Int() error: %v", err)
	}
	if n != -42 {
		t.Errorf("Int() = %d, want -42", n)
	}

	n32, err := v.Int32()
	if err != nil {
		t.Fatalf("Int32() error: %v", err)
	}
	if n32 != -42 {
		t.Errorf("Int32() = %d, want -42", n32)
	}
}

func TestUint64ReinterpretsBits(t *testing.T) {
	// Unsigned payloads travel under the Int tag; extraction gives the
	// raw bits back without a range check.
	v := intArg(-1)
	u, err := v.Uint64()
	if err != nil {
		t.Fatalf("Uint64() error: %v", err)
	}
	if u != math.MaxUint64 {
		t.Errorf("Uint64() = %d, want %d", u, uint64(math.MaxUint64))
	}
}

func TestInt32RangeCheck(t *testing.T) {
	tests := []struct {
		name string
		in   int64
		ok   bool
	}{
		{"max", math.MaxInt32, true},
		{"min", math.MinInt32, true},
		{"over", math.MaxInt32 + 1, false},
		{"under", math.MinInt32 - 1, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := intArg(tc.in).Int32()
			if tc.ok && err != nil {
				t.Errorf("Int32(%d) error: %v", tc.in, err)
			}
			if !tc.ok {
				if err == nil {
					t.Fatalf("Int32(%d) succeeded, want range error", tc.in)
				}
				var pe *pcerrors.Error
				if !errors.As(err, &pe) || pe.Kind != pcerrors.KindRange {
					t.Errorf("Int32(%d) kind = %v, want %v", tc.in, err, pcerrors.KindRange)
				}
			}
		})
	}
}

func TestBoolConversion(t *testing.T) {
	b, err := intArg(0).Bool()
	if err != nil {
		t.Fatalf("Bool() error: %v", err)
	}
	if b {
		t.Error("Bool(0) = true, want false")
	}

	b, err = intArg(7).Bool()
	if err != nil {
		t.Fatalf("Bool() error: %v", err)
	}
	if !b {
		t.Error("Bool(7) = false, want true")
	}
}

func TestFloatConversion(t *testing.T) {
	x, err := floatArg(3.25).Float64()
	if err != nil {
		t.Fatalf("Float64() error: %v", err)
	}
	if x != 3.25 {
		t.Errorf("Float64() = %v, want 3.25", x)
	}

	// Floats do not implicitly narrow to ints or vice versa.
	if _, err := floatArg(3.25).Int64(); err == nil {
		t.Error("Int64() on float succeeded, want type mismatch")
	}
	if _, err := intArg(3).Float64(); err == nil {
		t.Error("Float64() on int succeeded, want type mismatch")
	}
}

func TestMismatchReportsBothTags(t *testing.T) {
	_, err := floatArg(1).Int64()
	if err == nil {
		t.Fatal("expected type mismatch")
	}
	var pe *pcerrors.Error
	if !errors.As(err, &pe) {
		t.Fatalf("error type = %T, want *errors.Error", err)
	}
	if pe.Kind != pcerrors.KindTypeMismatch {
		t.Errorf("Kind = %v, want %v", pe.Kind, pcerrors.KindTypeMismatch)
	}
	if pe.Expected != "int" || pe.Actual != "float" {
		t.Errorf("Expected/Actual = %q/%q, want int/float", pe.Expected, pe.Actual)
	}
}

func TestHandleConversions(t *testing.T) {
	var target int
	p := unsafe.Pointer(&target)

	h, err := NewArgValue(abi.Value{Ptr: p}, abi.TagHandle).Handle()
	if err != nil {
		t.Fatalf("Handle() error: %v", err)
	}
	if h != p {
		t.Error("Handle() did not round-trip the pointer")
	}

	// An array handle converts to a plain handle too.
	h, err = NewArgValue(abi.Value{Ptr: p}, abi.TagArrayHandle).Handle()
	if err != nil {
		t.Fatalf("Handle() on array handle error: %v", err)
	}
	if h != p {
		t.Error("Handle() did not pass the array handle through")
	}

	// Null converts to nil for every pointer-shaped accessor.
	var null ArgValue
	if h, err := null.Handle(); err != nil || h != nil {
		t.Errorf("Handle() on null = %v, %v, want nil, nil", h, err)
	}
	if a, err := null.Array(); err != nil || a != nil {
		t.Errorf("Array() on null = %v, %v, want nil, nil", a, err)
	}
	if n, err := null.Node(); err != nil || n != nil {
		t.Errorf("Node() on null = %v, %v, want nil, nil", n, err)
	}

	if _, err := intArg(1).Handle(); err == nil {
		t.Error("Handle() on int succeeded, want type mismatch")
	}
}

func TestArrayConversion(t *testing.T) {
	var target int
	h := abi.ArrayHandle(unsafe.Pointer(&target))

	got, err := NewArgValue(abi.Value{Ptr: unsafe.Pointer(h)}, abi.TagArrayHandle).Array()
	if err != nil {
		t.Fatalf("Array() error: %v", err)
	}
	if got != h {
		t.Error("Array() did not round-trip the handle")
	}

	if _, err := NewArgValue(abi.Value{Ptr: unsafe.Pointer(h)}, abi.TagHandle).Array(); err == nil {
		t.Error("Array() on plain handle succeeded, want type mismatch")
	}
}

func TestNodeConversion(t *testing.T) {
	n := node.New("payload")
	defer n.Release()

	v := NewArgValue(abi.Value{Ptr: unsafe.Pointer(n)}, abi.TagNodeHandle)
	got, err := v.Node()
	if err != nil {
		t.Fatalf("Node() error: %v", err)
	}
	if got != n {
		t.Error("Node() did not return the same handle")
	}
	// Viewing does not retain.
	if refs := n.Refs(); refs != 1 {
		t.Errorf("Refs() = %d, want 1", refs)
	}

	if _, err := intArg(1).Node(); err == nil {
		t.Error("Node() on int succeeded, want type mismatch")
	}
}
