package kernel

import (
	"context"
	"errors"
	"testing"

	packedcall "github.com/wippyai/packed-call"
	pcerrors "github.com/wippyai/packed-call/errors"
)

// sec builds one wasm section; content must stay under 128 bytes so
// the size fits a single LEB byte.
func sec(id byte, content ...byte) []byte {
	out := []byte{id, byte(len(content))}
	return append(out, content...)
}

func wasmBin(secs ...[]byte) []byte {
	bin := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
	for _, s := range secs {
		bin = append(bin, s...)
	}
	return bin
}

// testKernel is the module below, hand-assembled:
//
//	(module
//	  (func (export "add") (param i64 i64) (result i64)
//	    (i64.add (local.get 0) (local.get 1)))
//	  (func (export "square") (param f64) (result f64)
//	    (f64.mul (local.get 0) (local.get 0)))
//	  (func (export "ident") (param i32) (result i32)
//	    (local.get 0))
//	  (func (export "boom") unreachable)
//	  (func (export "nop"))
//	  (func (export "pair") (result i32 i32)
//	    (i32.const 1) (i32.const 2)))
var testKernel = wasmBin(
	sec(1,
		0x05,
		0x60, 0x02, 0x7e, 0x7e, 0x01, 0x7e, // (i64, i64) -> i64
		0x60, 0x01, 0x7c, 0x01, 0x7c, // (f64) -> f64
		0x60, 0x01, 0x7f, 0x01, 0x7f, // (i32) -> i32
		0x60, 0x00, 0x00, // () -> ()
		0x60, 0x00, 0x02, 0x7f, 0x7f, // () -> (i32, i32)
	),
	sec(3, 0x06, 0x00, 0x01, 0x02, 0x03, 0x03, 0x04),
	sec(7,
		0x06,
		0x03, 'a', 'd', 'd', 0x00, 0x00,
		0x06, 's', 'q', 'u', 'a', 'r', 'e', 0x00, 0x01,
		0x05, 'i', 'd', 'e', 'n', 't', 0x00, 0x02,
		0x04, 'b', 'o', 'o', 'm', 0x00, 0x03,
		0x03, 'n', 'o', 'p', 0x00, 0x04,
		0x04, 'p', 'a', 'i', 'r', 0x00, 0x05,
	),
	sec(10,
		0x06,
		0x07, 0x00, 0x20, 0x00, 0x20, 0x01, 0x7c, 0x0b,
		0x07, 0x00, 0x20, 0x00, 0x20, 0x00, 0xa2, 0x0b,
		0x04, 0x00, 0x20, 0x00, 0x0b,
		0x03, 0x00, 0x00, 0x0b,
		0x02, 0x00, 0x0b,
		0x06, 0x00, 0x41, 0x01, 0x41, 0x02, 0x0b,
	),
)

func loadTestKernel(t *testing.T, opts ...Option) packedcall.Module {
	t.Helper()
	ctx := context.Background()
	m, err := Load(ctx, testKernel, opts...)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	t.Cleanup(func() { _ = Close(ctx, m) })
	return m
}

func getFunc(t *testing.T, m packedcall.Module, name string) packedcall.Func {
	t.Helper()
	f, err := m.GetFunction(name)
	if err != nil {
		t.Fatalf("GetFunction(%q) error: %v", name, err)
	}
	return f
}

func TestLoadAndCall(t *testing.T) {
	m := loadTestKernel(t)

	if m.TypeKey() != "kernel" {
		t.Errorf("TypeKey() = %q, want %q", m.TypeKey(), "kernel")
	}

	want := []string{"add", "boom", "ident", "nop", "pair", "square"}
	got := m.FunctionNames()
	if len(got) != len(want) {
		t.Fatalf("FunctionNames() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("FunctionNames() = %v, want %v", got, want)
		}
	}

	add := getFunc(t, m, "add")
	res, err := add.Call(3, 4)
	if err != nil {
		t.Fatalf("add.Call error: %v", err)
	}
	if x, _ := res.Int64(); x != 7 {
		t.Errorf("add(3, 4) = %d, want 7", x)
	}
}

func TestCallFloat(t *testing.T) {
	m := loadTestKernel(t)
	square := getFunc(t, m, "square")

	res, err := square.Call(1.5)
	if err != nil {
		t.Fatalf("square.Call error: %v", err)
	}
	if x, _ := res.Float64(); x != 2.25 {
		t.Errorf("square(1.5) = %v, want 2.25", x)
	}
}

func TestVoidExport(t *testing.T) {
	m := loadTestKernel(t)
	nop := getFunc(t, m, "nop")

	res, err := nop.Call()
	if err != nil {
		t.Fatalf("nop.Call error: %v", err)
	}
	if !res.IsNull() {
		t.Errorf("nop result tag = %v, want null", res.Tag())
	}
}

func TestDefaultI32IsSigned(t *testing.T) {
	m := loadTestKernel(t)
	ident := getFunc(t, m, "ident")

	res, err := ident.Call(-16)
	if err != nil {
		t.Fatalf("ident.Call error: %v", err)
	}
	if x, _ := res.Int64(); x != -16 {
		t.Errorf("ident(-16) = %d, want -16", x)
	}

	// Without WIT refinement an i32 slot only accepts the signed range.
	if _, err := ident.Call(int64(4294967280)); err == nil {
		t.Error("ident with an out-of-range i32 succeeded")
	}
}

func TestWITUnsignedRefinement(t *testing.T) {
	m := loadTestKernel(t, WithWIT("ident: func(x: u32) -> u32;"))
	ident := getFunc(t, m, "ident")

	res, err := ident.Call(int64(4294967280))
	if err != nil {
		t.Fatalf("ident.Call error: %v", err)
	}
	if x, _ := res.Int64(); x != 4294967280 {
		t.Errorf("ident(4294967280) = %d, want 4294967280", x)
	}
}

func TestWITNarrowRangeCheck(t *testing.T) {
	m := loadTestKernel(t, WithWIT("ident: func(x: u8) -> u8;"))
	ident := getFunc(t, m, "ident")

	res, err := ident.Call(200)
	if err != nil {
		t.Fatalf("ident.Call error: %v", err)
	}
	if x, _ := res.Int64(); x != 200 {
		t.Errorf("ident(200) = %d, want 200", x)
	}

	_, err = ident.Call(300)
	if err == nil {
		t.Fatal("ident(300) under a u8 signature succeeded")
	}
	var pe *pcerrors.Error
	if !errors.As(err, &pe) || pe.Kind != pcerrors.KindTypeMismatch {
		t.Errorf("error = %v, want type mismatch wrapper", err)
	}
}

func TestWITBoolNormalizes(t *testing.T) {
	m := loadTestKernel(t, WithWIT("ident: func(x: bool) -> bool;"))
	ident := getFunc(t, m, "ident")

	res, err := ident.Call(true)
	if err != nil {
		t.Fatalf("ident.Call error: %v", err)
	}
	b, err := res.Bool()
	if err != nil {
		t.Fatalf("Bool() error: %v", err)
	}
	if !b {
		t.Error("ident(true) = false, want true")
	}
}

func TestTrapSurfacesAsError(t *testing.T) {
	m := loadTestKernel(t)
	boom := getFunc(t, m, "boom")

	_, err := boom.Call()
	if err == nil {
		t.Fatal("boom.Call succeeded")
	}
	var pe *pcerrors.Error
	if !errors.As(err, &pe) || pe.Kind != pcerrors.KindTrap {
		t.Errorf("error = %v, want trap kind", err)
	}
}

func TestMultiResultUnsupported(t *testing.T) {
	m := loadTestKernel(t)

	_, err := m.GetFunction("pair")
	if err == nil {
		t.Fatal("GetFunction on a multi-result export succeeded")
	}
	var pe *pcerrors.Error
	if !errors.As(err, &pe) || pe.Kind != pcerrors.KindUnsupported {
		t.Errorf("error = %v, want unsupported kind", err)
	}
}

func TestMissingExport(t *testing.T) {
	m := loadTestKernel(t)

	_, err := m.GetFunction("nothing")
	if err == nil {
		t.Fatal("GetFunction on a missing export succeeded")
	}
	var pe *pcerrors.Error
	if !errors.As(err, &pe) || pe.Kind != pcerrors.KindNotFound {
		t.Errorf("error = %v, want not found kind", err)
	}
}

func TestArgumentChecks(t *testing.T) {
	m := loadTestKernel(t)
	add := getFunc(t, m, "add")

	_, err := add.Call(1)
	if err == nil {
		t.Fatal("add with one argument succeeded")
	}
	var pe *pcerrors.Error
	if !errors.As(err, &pe) || pe.Kind != pcerrors.KindInvalidInput {
		t.Errorf("error = %v, want invalid input kind", err)
	}

	_, err = add.Call("x", 1)
	if err == nil {
		t.Fatal("add with a string argument succeeded")
	}
	if !errors.As(err, &pe) || pe.Kind != pcerrors.KindTypeMismatch {
		t.Errorf("error = %v, want type mismatch kind", err)
	}
}

func TestLoadRejectsBadBinary(t *testing.T) {
	_, err := Load(context.Background(), []byte{0x01, 0x02, 0x03})
	if err == nil {
		t.Fatal("Load with garbage bytes succeeded")
	}
	var pe *pcerrors.Error
	if !errors.As(err, &pe) || pe.Phase != pcerrors.PhaseLoad {
		t.Errorf("error = %v, want load phase", err)
	}
}

func TestWITCoreMismatchFailsLoad(t *testing.T) {
	// add is (i64, i64) -> i64 in the binary; u32 occupies an i32 slot.
	_, err := Load(context.Background(), testKernel,
		WithWIT("add: func(x: u32, y: u32) -> u32;"))
	if err == nil {
		t.Fatal("Load with mismatched WIT succeeded")
	}
	var pe *pcerrors.Error
	if !errors.As(err, &pe) || pe.Phase != pcerrors.PhaseLoad {
		t.Errorf("error = %v, want load phase", err)
	}
}

func TestWITAbsentFunctionIsIgnored(t *testing.T) {
	m := loadTestKernel(t, WithWIT("ghost: func() -> u32;\nident: func(x: s32) -> s32;"))

	ident := getFunc(t, m, "ident")
	res, err := ident.Call(-5)
	if err != nil {
		t.Fatalf("ident.Call error: %v", err)
	}
	if x, _ := res.Int64(); x != -5 {
		t.Errorf("ident(-5) = %d, want -5", x)
	}
}

func TestCallAfterClose(t *testing.T) {
	ctx := context.Background()
	m, err := Load(ctx, testKernel)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	add := getFunc(t, m, "add")

	if err := Close(ctx, m); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	_, err = add.Call(1, 2)
	if err == nil {
		t.Fatal("call after Close succeeded")
	}
	var pe *pcerrors.Error
	if !errors.As(err, &pe) || pe.Kind != pcerrors.KindTrap {
		t.Errorf("error = %v, want trap kind", err)
	}
}

func TestCloseNonKernelModule(t *testing.T) {
	if err := Close(context.Background(), packedcall.Module{}); err != nil {
		t.Errorf("Close on a plain module = %v, want nil", err)
	}
}
