// Package registry maps flat dotted names ("demo.add") to packed
// callables. A Registry is safe for concurrent registration and
// lookup; Default returns the process-wide instance.
//
// Ordinary Go functions adapt into packed callables through WrapFunc,
// which converts tagged arguments to the function's parameter types by
// reflection and writes its results back through the return-value
// setters. A name prefix of a registry can be presented as a Module so
// registered namespaces and loaded kernels share one lookup surface.
package registry
