package kernel

import (
	"context"
	"sort"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"go.uber.org/zap"

	packedcall "github.com/wippyai/packed-call"
	"github.com/wippyai/packed-call/errors"
)

type config struct {
	name    string
	witText string
	wasi    bool
}

// Option adjusts how a kernel is loaded.
type Option func(*config)

// WithName sets the instantiated module's name.
func WithName(name string) Option {
	return func(c *config) { c.name = name }
}

// WithWIT refines export signatures from WIT text. Scalar types only;
// see the package documentation.
func WithWIT(text string) Option {
	return func(c *config) { c.witText = text }
}

// WithWASI instantiates wasi_snapshot_preview1 into the kernel's
// runtime so binaries built against WASI can load.
func WithWASI() Option {
	return func(c *config) { c.wasi = true }
}

// Load compiles and instantiates a core Wasm binary, returning a
// module handle whose functions are the binary's exports. The module
// owns a dedicated wazero runtime; release it with Close. Calls run
// under ctx.
func Load(ctx context.Context, wasmBytes []byte, opts ...Option) (packedcall.Module, error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	var witSigs map[string]witSignature
	if cfg.witText != "" {
		var err error
		witSigs, err = parseWitSignatures(cfg.witText)
		if err != nil {
			return packedcall.Module{}, err
		}
	}

	r := wazero.NewRuntime(ctx)
	if cfg.wasi {
		if _, err := wasi_snapshot_preview1.Instantiate(ctx, r); err != nil {
			closeRuntime(ctx, r)
			return packedcall.Module{}, errors.Load("instantiate wasi", err)
		}
	}

	compiled, err := r.CompileModule(ctx, wasmBytes)
	if err != nil {
		closeRuntime(ctx, r)
		return packedcall.Module{}, errors.Load("compile kernel", err)
	}

	modConfig := wazero.NewModuleConfig().WithName(cfg.name)
	mod, err := r.InstantiateModule(ctx, compiled, modConfig)
	if err != nil {
		closeRuntime(ctx, r)
		return packedcall.Module{}, errors.Load("instantiate kernel", err)
	}

	sigs := make(map[string]signature)
	for name, def := range mod.ExportedFunctionDefinitions() {
		sig := signature{
			params:  defaultSpecs(def.ParamTypes()),
			results: defaultSpecs(def.ResultTypes()),
		}
		if ws, ok := witSigs[name]; ok {
			if err := refine(name, sig.params, ws.params, "params"); err != nil {
				closeRuntime(ctx, r)
				return packedcall.Module{}, err
			}
			if err := refine(name, sig.results, ws.results, "results"); err != nil {
				closeRuntime(ctx, r)
				return packedcall.Module{}, err
			}
			delete(witSigs, name)
		}
		sigs[name] = sig
	}
	for name := range witSigs {
		Logger().Warn("WIT declares a function the kernel does not export",
			zap.String("function", name))
	}

	Logger().Debug("kernel loaded",
		zap.String("name", cfg.name),
		zap.Int("exports", len(sigs)))

	return packedcall.NewModule(&kernelModule{
		runtime: r,
		mod:     mod,
		ctx:     ctx,
		sigs:    sigs,
	}), nil
}

func closeRuntime(ctx context.Context, r wazero.Runtime) {
	if err := r.Close(ctx); err != nil {
		Logger().Warn("failed to close runtime during cleanup", zap.Error(err))
	}
}

// kernelModule is the module backend over one instantiated kernel.
type kernelModule struct {
	runtime wazero.Runtime
	mod     api.Module
	ctx     context.Context
	sigs    map[string]signature
}

func (k *kernelModule) TypeKey() string {
	return "kernel"
}

func (k *kernelModule) FunctionNames() []string {
	names := make([]string, 0, len(k.sigs))
	for name := range k.sigs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (k *kernelModule) GetFunction(name string) (packedcall.Func, error) {
	sig, ok := k.sigs[name]
	if !ok {
		return packedcall.Func{}, errors.NotFound(errors.PhaseCall, "kernel export", name)
	}
	if len(sig.results) > 1 {
		return packedcall.Func{}, errors.New(errors.PhaseCall, errors.KindUnsupported).
			Detail("export %q returns %d values", name, len(sig.results)).
			Build()
	}
	fn := k.mod.ExportedFunction(name)
	if fn == nil {
		return packedcall.Func{}, errors.NotFound(errors.PhaseCall, "kernel export", name)
	}

	body := func(args packedcall.Args, rv *packedcall.RetValue) error {
		if args.Len() != len(sig.params) {
			return errors.New(errors.PhaseCall, errors.KindInvalidInput).
				Detail("argument count mismatch: got %d, want %d", args.Len(), len(sig.params)).
				Build()
		}
		stack := make([]uint64, len(sig.params))
		for i, spec := range sig.params {
			a, err := args.Get(i)
			if err != nil {
				return err
			}
			slot, err := lower(spec, a)
			if err != nil {
				return errors.New(errors.PhaseCall, errors.KindTypeMismatch).
					Cause(err).
					Detail("argument %d", i).
					Build()
			}
			stack[i] = slot
		}
		out, err := fn.Call(k.ctx, stack...)
		if err != nil {
			return errors.Trap(name, err)
		}
		if len(sig.results) == 1 && len(out) > 0 {
			return lift(sig.results[0], out[0], rv)
		}
		return nil
	}
	return packedcall.NewFunc(body), nil
}

// Close releases the kernel's wazero runtime and everything
// instantiated in it.
func (k *kernelModule) Close(ctx context.Context) error {
	return k.runtime.Close(ctx)
}

// Closer is implemented by module backends holding releasable
// resources.
type Closer interface {
	Close(ctx context.Context) error
}

// Close releases the module's backend if it holds resources. Modules
// without a closeable backend are a no-op.
func Close(ctx context.Context, m packedcall.Module) error {
	if c, ok := m.Impl().(Closer); ok {
		return c.Close(ctx)
	}
	return nil
}
