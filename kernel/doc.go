// Package kernel loads WebAssembly modules and exposes their exports
// as packed callables.
//
// Load compiles a core Wasm binary with wazero and wraps it in a
// Module whose functions lower tagged arguments onto the Wasm stack
// and lift results back. The bridge is numeric-only: i32/i64 map to
// the Int tag and f32/f64 to Float; strings, byte ranges, and handles
// do not cross into kernels at this layer.
//
// By default signatures come from the binary's value types, with i32
// treated as signed. WIT text supplied through WithWIT refines that:
// unsigned widths are range-checked on the way in and zero-extended on
// the way out, bool normalizes to 0 or 1, and char rejects invalid
// code points. Only scalar WIT types are accepted.
//
// Calls run under the context given to Load; the returned module owns
// its wazero runtime until Close.
package kernel
