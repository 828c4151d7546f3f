package abi

import (
	"strconv"
	"strings"

	"github.com/wippyai/packed-call/errors"
)

// TypeDescriptor describes a scalar or short-vector element type: base
// kind, bit width, lane count. Base is one of TagInt, TagUInt,
// TagFloat, TagHandle.
//
// The canonical text form is "<base><bits>[x<lanes>]", e.g. "int32",
// "float32x4", "handle64". The lane suffix is omitted when Lanes == 1.
// Parse(d.String()) == d holds for every constructible descriptor.
type TypeDescriptor struct {
	Base  TypeTag
	Bits  uint8
	Lanes uint16
}

// String formats the canonical text form.
func (d TypeDescriptor) String() string {
	var b strings.Builder
	b.WriteString(d.Base.String())
	b.WriteString(strconv.FormatUint(uint64(d.Bits), 10))
	if d.Lanes != 1 {
		b.WriteByte('x')
		b.WriteString(strconv.FormatUint(uint64(d.Lanes), 10))
	}
	return b.String()
}

// ParseTypeDescriptor decodes the canonical text form. A bare base name
// defaults to bits=32 and lanes=1, except "handle", which defaults to
// bits=64. Unknown base names, malformed suffixes, and widths that do
// not fit the descriptor fields fail with an unknown_type error.
func ParseTypeDescriptor(s string) (TypeDescriptor, error) {
	d := TypeDescriptor{Bits: 32, Lanes: 1}

	var rest string
	switch {
	case strings.HasPrefix(s, "int"):
		d.Base, rest = TagInt, s[len("int"):]
	case strings.HasPrefix(s, "uint"):
		d.Base, rest = TagUInt, s[len("uint"):]
	case strings.HasPrefix(s, "float"):
		d.Base, rest = TagFloat, s[len("float"):]
	case strings.HasPrefix(s, "handle"):
		d.Base, d.Bits, rest = TagHandle, 64, s[len("handle"):]
	default:
		return TypeDescriptor{}, errors.UnknownType(errors.PhaseParse, s)
	}

	if rest == "" {
		return d, nil
	}

	bitsText, lanesText, hasLanes := strings.Cut(rest, "x")
	if bitsText != "" {
		bits, err := strconv.ParseUint(bitsText, 10, 8)
		if err != nil {
			return TypeDescriptor{}, errors.UnknownType(errors.PhaseParse, s)
		}
		d.Bits = uint8(bits)
	}
	if hasLanes {
		lanes, err := strconv.ParseUint(lanesText, 10, 16)
		if err != nil {
			return TypeDescriptor{}, errors.UnknownType(errors.PhaseParse, s)
		}
		d.Lanes = uint16(lanes)
	}

	return d, nil
}
