// Package packedcall implements a type-erased calling convention:
// heterogeneous typed values packed into a flat, self-describing array
// that crosses the boundary between independently compiled components,
// such as a compiled kernel and the host dispatching into it.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct
// responsibilities:
//
//	packedcall/          Root package: tagged values, packing, calls
//	├── abi/             Raw boundary layout: tags, slots, descriptors
//	├── errors/          Structured error types for debugging
//	├── node/            Shared handle for extension node payloads
//	├── registry/        Named function registry and typed wrapping
//	├── kernel/          WebAssembly kernel host backed by wazero
//	├── payload/         CBOR codec for Bytes-tagged payloads
//	└── cmd/playground/  Interactive calling-convention explorer
//
// # Quick Start
//
// Wrap a callable and invoke it through the convenience path:
//
//	f := packedcall.NewFunc(func(args packedcall.Args, rv *packedcall.RetValue) error {
//	    arg, err := args.Get(0)
//	    if err != nil {
//	        return err
//	    }
//	    x, err := arg.Int64()
//	    if err != nil {
//	        return err
//	    }
//	    rv.SetInt64(x * 2)
//	    return nil
//	})
//
//	rv, err := f.Call(21)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	n, _ := rv.Int64() // 42
//
// # Value Model
//
// Every value crossing the boundary is a (slot, tag) pair. ArgValue is
// the non-owning view used for inputs: class-like payloads (strings,
// function and module handles) reference caller-owned storage that must
// outlive the call. RetValue is the owning container used for outputs:
// class-like payloads live in heap boxes the container releases exactly
// once, across assignment, move, copy, and boundary extraction.
//
// # Thread Safety
//
// Calls are synchronous. Distinct calls may run on distinct goroutines,
// but one call's Args and RetValue are call-local and must not be
// shared. The one concurrent-by-design piece is the node handle, whose
// reference count is atomic.
package packedcall
