// Package abi defines the raw boundary layout of the packed calling
// convention: the type tag enumeration, the fixed-size value slot, the
// externally owned byte-range wrapper, and the scalar type descriptor
// with its canonical text codec.
//
// Everything here is wire format. A Value slot carries no type
// information of its own; the paired TypeTag selects which field is
// meaningful, and reading any other field is undefined. The checked
// accessors living on top of this layout belong to the root packedcall
// package, not here.
//
// Tag values are ABI-significant and must never be renumbered.
package abi
