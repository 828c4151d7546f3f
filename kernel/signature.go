package kernel

import (
	"math"
	"regexp"
	"strings"

	"github.com/tetratelabs/wazero/api"
	"go.bytecodealliance.org/wit"

	packedcall "github.com/wippyai/packed-call"
	"github.com/wippyai/packed-call/errors"
)

// scalar is the refined interpretation of one core value slot.
type scalar uint8

const (
	scalarNone scalar = iota // no refinement; the core type's rules apply
	scalarBool
	scalarU8
	scalarU16
	scalarU32
	scalarU64
	scalarS8
	scalarS16
	scalarS32
	scalarS64
	scalarF32
	scalarF64
	scalarChar
)

var scalarNames = [...]string{
	scalarNone: "none",
	scalarBool: "bool",
	scalarU8:   "u8",
	scalarU16:  "u16",
	scalarU32:  "u32",
	scalarU64:  "u64",
	scalarS8:   "s8",
	scalarS16:  "s16",
	scalarS32:  "s32",
	scalarS64:  "s64",
	scalarF32:  "f32",
	scalarF64:  "f64",
	scalarChar: "char",
}

func (s scalar) String() string {
	if int(s) < len(scalarNames) {
		return scalarNames[s]
	}
	return "unknown"
}

// coreType returns the core value type a scalar occupies.
func (s scalar) coreType() api.ValueType {
	switch s {
	case scalarU64, scalarS64:
		return api.ValueTypeI64
	case scalarF32:
		return api.ValueTypeF32
	case scalarF64:
		return api.ValueTypeF64
	default:
		return api.ValueTypeI32
	}
}

// slotSpec pairs one core value slot with its optional WIT refinement.
type slotSpec struct {
	core api.ValueType
	kind scalar
}

// signature describes one export's boundary shape.
type signature struct {
	params  []slotSpec
	results []slotSpec
}

func defaultSpecs(types []api.ValueType) []slotSpec {
	if len(types) == 0 {
		return nil
	}
	specs := make([]slotSpec, len(types))
	for i, t := range types {
		specs[i] = slotSpec{core: t}
	}
	return specs
}

// lower converts one tagged argument into a stack slot.
func lower(spec slotSpec, v packedcall.ArgValue) (uint64, error) {
	switch spec.kind {
	case scalarBool:
		b, err := v.Bool()
		if err != nil {
			return 0, err
		}
		if b {
			return 1, nil
		}
		return 0, nil
	case scalarU8:
		return lowerUnsigned(v, math.MaxUint8, "u8")
	case scalarU16:
		return lowerUnsigned(v, math.MaxUint16, "u16")
	case scalarU32:
		return lowerUnsigned(v, math.MaxUint32, "u32")
	case scalarChar:
		x, err := v.Int64()
		if err != nil {
			return 0, err
		}
		if x < 0 || x > 0x10FFFF || (x >= 0xD800 && x <= 0xDFFF) {
			return 0, errors.OutOfRange(errors.PhasePack, x, "char")
		}
		return uint64(uint32(x)), nil
	case scalarU64:
		return v.Uint64()
	case scalarS8:
		return lowerSigned(v, math.MinInt8, math.MaxInt8, "s8")
	case scalarS16:
		return lowerSigned(v, math.MinInt16, math.MaxInt16, "s16")
	case scalarS32:
		return lowerSigned(v, math.MinInt32, math.MaxInt32, "s32")
	case scalarS64:
		x, err := v.Int64()
		if err != nil {
			return 0, err
		}
		return api.EncodeI64(x), nil
	case scalarF32:
		x, err := v.Float64()
		if err != nil {
			return 0, err
		}
		return api.EncodeF32(float32(x)), nil
	case scalarF64:
		x, err := v.Float64()
		if err != nil {
			return 0, err
		}
		return api.EncodeF64(x), nil
	}

	switch spec.core {
	case api.ValueTypeI32:
		return lowerSigned(v, math.MinInt32, math.MaxInt32, "i32")
	case api.ValueTypeI64:
		x, err := v.Int64()
		if err != nil {
			return 0, err
		}
		return api.EncodeI64(x), nil
	case api.ValueTypeF32:
		x, err := v.Float64()
		if err != nil {
			return 0, err
		}
		return api.EncodeF32(float32(x)), nil
	case api.ValueTypeF64:
		x, err := v.Float64()
		if err != nil {
			return 0, err
		}
		return api.EncodeF64(x), nil
	default:
		return 0, errors.Unsupported(errors.PhasePack,
			"core value type "+api.ValueTypeName(spec.core))
	}
}

// lowerSigned range-checks and zero-extends into an i32 slot.
func lowerSigned(v packedcall.ArgValue, min, max int64, target string) (uint64, error) {
	x, err := v.Int64()
	if err != nil {
		return 0, err
	}
	if x < min || x > max {
		return 0, errors.OutOfRange(errors.PhasePack, x, target)
	}
	return api.EncodeI32(int32(x)), nil
}

func lowerUnsigned(v packedcall.ArgValue, max int64, target string) (uint64, error) {
	x, err := v.Int64()
	if err != nil {
		return 0, err
	}
	if x < 0 || x > max {
		return 0, errors.OutOfRange(errors.PhasePack, x, target)
	}
	return uint64(uint32(x)), nil
}

// lift converts one result slot into the return container.
func lift(spec slotSpec, raw uint64, rv *packedcall.RetValue) error {
	switch spec.kind {
	case scalarBool:
		rv.SetBool(raw != 0)
		return nil
	case scalarU8:
		rv.SetInt64(int64(uint8(raw)))
		return nil
	case scalarU16:
		rv.SetInt64(int64(uint16(raw)))
		return nil
	case scalarU32, scalarChar:
		rv.SetInt64(int64(uint32(raw)))
		return nil
	case scalarU64, scalarS64:
		rv.SetInt64(int64(raw))
		return nil
	case scalarS8:
		rv.SetInt64(int64(int8(raw)))
		return nil
	case scalarS16:
		rv.SetInt64(int64(int16(raw)))
		return nil
	case scalarS32:
		rv.SetInt64(int64(int32(raw)))
		return nil
	case scalarF32:
		rv.SetFloat64(float64(api.DecodeF32(raw)))
		return nil
	case scalarF64:
		rv.SetFloat64(api.DecodeF64(raw))
		return nil
	}

	switch spec.core {
	case api.ValueTypeI32:
		rv.SetInt64(int64(api.DecodeI32(raw)))
	case api.ValueTypeI64:
		rv.SetInt64(int64(raw))
	case api.ValueTypeF32:
		rv.SetFloat64(float64(api.DecodeF32(raw)))
	case api.ValueTypeF64:
		rv.SetFloat64(api.DecodeF64(raw))
	default:
		return errors.Unsupported(errors.PhaseExtract,
			"core value type "+api.ValueTypeName(spec.core))
	}
	return nil
}

type witSignature struct {
	params  []scalar
	results []scalar
}

// funcPattern matches `name: func(params) -> result;` with an optional
// export prefix.
var funcPattern = regexp.MustCompile(`(?:export\s+)?([a-zA-Z_][a-zA-Z0-9_-]*)\s*:\s*func\s*\(([^)]*)\)(?:\s*->\s*([^;]+))?`)

// parseWitSignatures extracts scalar function signatures from WIT
// text. Only scalar types are accepted; compound types fail parsing.
func parseWitSignatures(witText string) (map[string]witSignature, error) {
	sigs := make(map[string]witSignature)

	for _, match := range funcPattern.FindAllStringSubmatch(witText, -1) {
		name := match[1]
		paramsStr := strings.TrimSpace(match[2])
		resultStr := ""
		if len(match) > 3 {
			resultStr = strings.TrimSpace(match[3])
		}

		var sig witSignature
		if paramsStr != "" {
			for _, p := range strings.Split(paramsStr, ",") {
				typStr := p
				if idx := strings.LastIndex(p, ":"); idx != -1 {
					typStr = p[idx+1:]
				}
				s, err := parseScalar(typStr)
				if err != nil {
					return nil, err
				}
				sig.params = append(sig.params, s)
			}
		}
		if resultStr != "" && resultStr != "()" {
			s, err := parseScalar(resultStr)
			if err != nil {
				return nil, err
			}
			sig.results = append(sig.results, s)
		}

		sigs[name] = sig
	}

	if len(sigs) == 0 {
		return nil, errors.InvalidInput(errors.PhaseParse, "no functions found in WIT text")
	}
	return sigs, nil
}

func parseScalar(s string) (scalar, error) {
	t, err := wit.ParseType(strings.TrimSpace(s))
	if err != nil {
		return scalarNone, errors.Wrap(errors.PhaseParse, errors.KindInvalidData, err,
			"parse WIT type "+strings.TrimSpace(s))
	}
	return scalarForWit(t)
}

func scalarForWit(t wit.Type) (scalar, error) {
	switch t.(type) {
	case wit.Bool:
		return scalarBool, nil
	case wit.U8:
		return scalarU8, nil
	case wit.U16:
		return scalarU16, nil
	case wit.U32:
		return scalarU32, nil
	case wit.U64:
		return scalarU64, nil
	case wit.S8:
		return scalarS8, nil
	case wit.S16:
		return scalarS16, nil
	case wit.S32:
		return scalarS32, nil
	case wit.S64:
		return scalarS64, nil
	case wit.F32:
		return scalarF32, nil
	case wit.F64:
		return scalarF64, nil
	case wit.Char:
		return scalarChar, nil
	default:
		return scalarNone, errors.New(errors.PhaseParse, errors.KindUnsupported).
			Detail("WIT type %T is not a scalar", t).
			Build()
	}
}

// refine overlays WIT scalars onto core-derived specs, checking that
// each scalar occupies the core slot the binary declares.
func refine(name string, specs []slotSpec, scalars []scalar, what string) error {
	if len(specs) != len(scalars) {
		return errors.New(errors.PhaseLoad, errors.KindInvalidData).
			Detail("export %q: WIT declares %d %s, binary has %d", name, len(scalars), what, len(specs)).
			Build()
	}
	for i, s := range scalars {
		if specs[i].core != s.coreType() {
			return errors.New(errors.PhaseLoad, errors.KindInvalidData).
				Detail("export %q: WIT %s %d is %s, binary slot is %s",
					name, what, i, s, api.ValueTypeName(specs[i].core)).
				Build()
		}
		specs[i].kind = s
	}
	return nil
}
