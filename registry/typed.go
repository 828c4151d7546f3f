package registry

import (
	"math"
	"reflect"
	"unsafe"

	packedcall "github.com/wippyai/packed-call"
	"github.com/wippyai/packed-call/abi"
	"github.com/wippyai/packed-call/errors"
	"github.com/wippyai/packed-call/node"
)

var (
	errorType    = reflect.TypeOf((*error)(nil)).Elem()
	argValueType = reflect.TypeOf(packedcall.ArgValue{})
	funcType     = reflect.TypeOf(packedcall.Func{})
	moduleType   = reflect.TypeOf(packedcall.Module{})
	nodeType     = reflect.TypeOf((*node.Shared)(nil))
	typeDescType = reflect.TypeOf(abi.TypeDescriptor{})
	arrayType    = reflect.TypeOf(abi.ArrayHandle(nil))
	bytesType    = reflect.TypeOf([]byte(nil))
)

type paramConv func(packedcall.ArgValue) (reflect.Value, error)

type resultWrite func(*packedcall.RetValue, reflect.Value) error

// WrapFunc adapts an ordinary Go function into a packed callable.
// Parameters convert from tagged arguments, results write back through
// the return-value setters, and a trailing error result propagates as
// the call error. The signature is validated once, at wrap time;
// unsupported parameter or result types fail here rather than at call
// time.
func WrapFunc(fn any) (packedcall.Func, error) {
	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.Kind() != reflect.Func {
		return packedcall.Func{}, errors.New(errors.PhaseRegistry, errors.KindUnsupported).
			Detail("cannot wrap %T", fn).
			Build()
	}
	if v.IsNil() {
		return packedcall.Func{}, errors.New(errors.PhaseRegistry, errors.KindUnsupported).
			Detail("cannot wrap a nil function").
			Build()
	}
	t := v.Type()
	if t.IsVariadic() {
		return packedcall.Func{}, errors.Unsupported(errors.PhaseRegistry, "variadic functions cannot be wrapped")
	}

	convs := make([]paramConv, t.NumIn())
	for i := 0; i < t.NumIn(); i++ {
		conv, err := paramConverter(t.In(i))
		if err != nil {
			return packedcall.Func{}, err
		}
		convs[i] = conv
	}

	write, hasErr, err := resultWriter(t)
	if err != nil {
		return packedcall.Func{}, err
	}

	body := func(args packedcall.Args, rv *packedcall.RetValue) error {
		if args.Len() != len(convs) {
			return errors.New(errors.PhaseCall, errors.KindInvalidInput).
				Detail("argument count mismatch: got %d, want %d", args.Len(), len(convs)).
				Build()
		}
		in := make([]reflect.Value, len(convs))
		for i, conv := range convs {
			a, err := args.Get(i)
			if err != nil {
				return err
			}
			val, err := conv(a)
			if err != nil {
				return errors.New(errors.PhaseCall, errors.KindTypeMismatch).
					Cause(err).
					Detail("argument %d", i).
					Build()
			}
			in[i] = val
		}
		out := v.Call(in)
		if hasErr {
			last := out[len(out)-1]
			if !last.IsNil() {
				return last.Interface().(error)
			}
			out = out[:len(out)-1]
		}
		if write != nil {
			return write(rv, out[0])
		}
		return nil
	}
	return packedcall.NewFunc(body), nil
}

// MustWrap is WrapFunc for var-block registration; it panics on an
// unsupported signature.
func MustWrap(fn any) packedcall.Func {
	f, err := WrapFunc(fn)
	if err != nil {
		panic(err)
	}
	return f
}

// RegisterFunc wraps fn and registers it under name.
func (r *Registry) RegisterFunc(name string, fn any) error {
	f, err := WrapFunc(fn)
	if err != nil {
		return errors.Registration(name, err)
	}
	return r.Register(name, f)
}

func paramConverter(t reflect.Type) (paramConv, error) {
	switch t {
	case argValueType:
		return func(a packedcall.ArgValue) (reflect.Value, error) {
			return reflect.ValueOf(a), nil
		}, nil
	case funcType:
		return func(a packedcall.ArgValue) (reflect.Value, error) {
			f, err := a.Func()
			if err != nil {
				return reflect.Value{}, err
			}
			return reflect.ValueOf(f), nil
		}, nil
	case moduleType:
		return func(a packedcall.ArgValue) (reflect.Value, error) {
			m, err := a.Module()
			if err != nil {
				return reflect.Value{}, err
			}
			return reflect.ValueOf(m), nil
		}, nil
	case nodeType:
		return func(a packedcall.ArgValue) (reflect.Value, error) {
			n, err := a.Node()
			if err != nil {
				return reflect.Value{}, err
			}
			return reflect.ValueOf(n), nil
		}, nil
	case typeDescType:
		return func(a packedcall.ArgValue) (reflect.Value, error) {
			d, err := a.TypeDesc()
			if err != nil {
				return reflect.Value{}, err
			}
			return reflect.ValueOf(d), nil
		}, nil
	case arrayType:
		return func(a packedcall.ArgValue) (reflect.Value, error) {
			h, err := a.Array()
			if err != nil {
				return reflect.Value{}, err
			}
			return reflect.ValueOf(h), nil
		}, nil
	case bytesType:
		return func(a packedcall.ArgValue) (reflect.Value, error) {
			b, err := a.Bytes()
			if err != nil {
				return reflect.Value{}, err
			}
			return reflect.ValueOf(b), nil
		}, nil
	}

	switch t.Kind() {
	case reflect.Bool:
		return func(a packedcall.ArgValue) (reflect.Value, error) {
			b, err := a.Bool()
			if err != nil {
				return reflect.Value{}, err
			}
			out := reflect.New(t).Elem()
			out.SetBool(b)
			return out, nil
		}, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return func(a packedcall.ArgValue) (reflect.Value, error) {
			x, err := a.Int64()
			if err != nil {
				return reflect.Value{}, err
			}
			out := reflect.New(t).Elem()
			if out.OverflowInt(x) {
				return reflect.Value{}, errors.OutOfRange(errors.PhaseConvert, x, t.String())
			}
			out.SetInt(x)
			return out, nil
		}, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return func(a packedcall.ArgValue) (reflect.Value, error) {
			x, err := a.Uint64()
			if err != nil {
				return reflect.Value{}, err
			}
			out := reflect.New(t).Elem()
			if out.OverflowUint(x) {
				return reflect.Value{}, errors.OutOfRange(errors.PhaseConvert, x, t.String())
			}
			out.SetUint(x)
			return out, nil
		}, nil
	case reflect.Float32, reflect.Float64:
		return func(a packedcall.ArgValue) (reflect.Value, error) {
			x, err := a.Float64()
			if err != nil {
				return reflect.Value{}, err
			}
			out := reflect.New(t).Elem()
			out.SetFloat(x)
			return out, nil
		}, nil
	case reflect.String:
		return func(a packedcall.ArgValue) (reflect.Value, error) {
			s, err := a.Str()
			if err != nil {
				return reflect.Value{}, err
			}
			out := reflect.New(t).Elem()
			out.SetString(s)
			return out, nil
		}, nil
	case reflect.UnsafePointer:
		return func(a packedcall.ArgValue) (reflect.Value, error) {
			h, err := a.Handle()
			if err != nil {
				return reflect.Value{}, err
			}
			out := reflect.New(t).Elem()
			out.SetPointer(h)
			return out, nil
		}, nil
	}
	return nil, errors.New(errors.PhaseRegistry, errors.KindUnsupported).
		Detail("unsupported parameter type %s", t.String()).
		Build()
}

// resultWriter picks the writer for t's results: none, one value, a
// trailing error, or both.
func resultWriter(t reflect.Type) (resultWrite, bool, error) {
	numOut := t.NumOut()
	hasErr := numOut > 0 && t.Out(numOut-1) == errorType
	valued := numOut
	if hasErr {
		valued--
	}
	switch valued {
	case 0:
		return nil, hasErr, nil
	case 1:
		write, err := valueWriter(t.Out(0))
		return write, hasErr, err
	default:
		return nil, false, errors.Unsupported(errors.PhaseRegistry,
			"functions returning multiple values cannot be wrapped")
	}
}

func valueWriter(t reflect.Type) (resultWrite, error) {
	switch t {
	case funcType:
		return func(rv *packedcall.RetValue, v reflect.Value) error {
			rv.SetFunc(v.Interface().(packedcall.Func))
			return nil
		}, nil
	case moduleType:
		return func(rv *packedcall.RetValue, v reflect.Value) error {
			rv.SetModule(v.Interface().(packedcall.Module))
			return nil
		}, nil
	case nodeType:
		return func(rv *packedcall.RetValue, v reflect.Value) error {
			rv.SetNode(v.Interface().(*node.Shared))
			return nil
		}, nil
	case typeDescType:
		return func(rv *packedcall.RetValue, v reflect.Value) error {
			rv.SetTypeDesc(v.Interface().(abi.TypeDescriptor))
			return nil
		}, nil
	case arrayType:
		return func(rv *packedcall.RetValue, v reflect.Value) error {
			rv.SetArray(v.Interface().(abi.ArrayHandle))
			return nil
		}, nil
	}

	switch t.Kind() {
	case reflect.Bool:
		return func(rv *packedcall.RetValue, v reflect.Value) error {
			rv.SetBool(v.Bool())
			return nil
		}, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return func(rv *packedcall.RetValue, v reflect.Value) error {
			rv.SetInt64(v.Int())
			return nil
		}, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return func(rv *packedcall.RetValue, v reflect.Value) error {
			u := v.Uint()
			if u > math.MaxInt64 {
				return errors.OutOfRange(errors.PhasePack, u, "int64")
			}
			rv.SetInt64(int64(u))
			return nil
		}, nil
	case reflect.Float32, reflect.Float64:
		return func(rv *packedcall.RetValue, v reflect.Value) error {
			rv.SetFloat64(v.Float())
			return nil
		}, nil
	case reflect.String:
		return func(rv *packedcall.RetValue, v reflect.Value) error {
			rv.SetStr(v.String())
			return nil
		}, nil
	case reflect.UnsafePointer:
		return func(rv *packedcall.RetValue, v reflect.Value) error {
			rv.SetHandle(unsafe.Pointer(v.Pointer()))
			return nil
		}, nil
	}
	return nil, errors.New(errors.PhaseRegistry, errors.KindUnsupported).
		Detail("unsupported result type %s", t.String()).
		Build()
}
