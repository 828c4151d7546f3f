package abi

// TypeTag discriminates what a tagged boundary value currently holds.
// The numeric values are part of the boundary ABI and must stay stable.
type TypeTag uint8

const (
	TagInt TypeTag = iota
	TagUInt
	TagFloat
	TagHandle
	TagNull
	TagNodeHandle
	TagArrayHandle
	TagTypeDesc
	TagFuncHandle
	TagModuleHandle
	TagStr
	TagBytes
)

var tagNames = [...]string{
	TagInt:          "int",
	TagUInt:         "uint",
	TagFloat:        "float",
	TagHandle:       "handle",
	TagNull:         "null",
	TagNodeHandle:   "node",
	TagArrayHandle:  "array",
	TagTypeDesc:     "typedesc",
	TagFuncHandle:   "func",
	TagModuleHandle: "module",
	TagStr:          "str",
	TagBytes:        "bytes",
}

func (t TypeTag) String() string {
	if int(t) < len(tagNames) {
		return tagNames[t]
	}
	return "unknown"
}

// Valid reports whether t is a member of the closed tag set.
func (t TypeTag) Valid() bool {
	return int(t) < len(tagNames)
}

// IsClassLike reports whether t's payload requires heap ownership when
// held by a return value: strings, function handles, module handles,
// and extension node handles. Everything else is POD.
func (t TypeTag) IsClassLike() bool {
	switch t {
	case TagStr, TagFuncHandle, TagModuleHandle, TagNodeHandle:
		return true
	default:
		return false
	}
}
