// Package node provides the shared extension handle the packed calling
// convention reaches through NodeHandle-tagged values.
//
// A Shared wraps one embedder-owned value behind an atomic reference
// count. Every return value that stores the handle retains it; clearing
// or overwriting releases it. The value lives as long as its longest
// holder. The calling convention never interprets the wrapped value;
// interpretation belongs to the embedder's capability hooks.
//
//	n := node.New(myExpr)
//	n.Retain()   // second holder
//	n.Release()  // first holder gone
//	n.Release()  // count hits zero, Drop runs if implemented
//
// Values that need cleanup implement Dropper; Drop runs exactly once,
// when the count reaches zero.
package node
