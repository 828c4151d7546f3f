package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	packedcall "github.com/wippyai/packed-call"
	"github.com/wippyai/packed-call/kernel"
	"github.com/wippyai/packed-call/registry"
)

// fileConfig is the playground's config.toml shape.
type fileConfig struct {
	Kernels []kernelConfig `toml:"kernel"`
}

// kernelConfig describes one [[kernel]] block: a wasm binary, an
// optional WIT signature file, and the registry prefix its exports
// land under.
type kernelConfig struct {
	Name string `toml:"name"`
	Path string `toml:"path"`
	WIT  string `toml:"wit"`
	WASI bool   `toml:"wasi"`
}

func loadConfig(path string) (fileConfig, error) {
	var cfg fileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return fileConfig{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// loadKernels loads every configured kernel and registers its exports
// under "<name>.<export>". The caller closes the returned modules.
func loadKernels(ctx context.Context, reg *registry.Registry, cfg fileConfig) ([]packedcall.Module, error) {
	var mods []packedcall.Module
	closeAll := func() {
		for _, m := range mods {
			kernel.Close(ctx, m)
		}
	}

	for _, kc := range cfg.Kernels {
		if kc.Path == "" {
			closeAll()
			return nil, fmt.Errorf("kernel entry missing path")
		}
		name := kc.Name
		if name == "" {
			name = strings.TrimSuffix(filepath.Base(kc.Path), filepath.Ext(kc.Path))
		}

		data, err := os.ReadFile(kc.Path)
		if err != nil {
			closeAll()
			return nil, fmt.Errorf("read kernel %s: %w", kc.Path, err)
		}

		opts := []kernel.Option{kernel.WithName(name)}
		if kc.WIT != "" {
			witText, err := os.ReadFile(kc.WIT)
			if err != nil {
				closeAll()
				return nil, fmt.Errorf("read WIT %s: %w", kc.WIT, err)
			}
			opts = append(opts, kernel.WithWIT(string(witText)))
		}
		if kc.WASI {
			opts = append(opts, kernel.WithWASI())
		}

		mod, err := kernel.Load(ctx, data, opts...)
		if err != nil {
			closeAll()
			return nil, fmt.Errorf("load kernel %s: %w", name, err)
		}
		mods = append(mods, mod)

		for _, fname := range mod.FunctionNames() {
			f, err := mod.GetFunction(fname)
			if err != nil {
				// Exports the bridge cannot call stay out of the registry.
				continue
			}
			if err := reg.Register(name+"."+fname, f); err != nil {
				closeAll()
				return nil, err
			}
		}
	}
	return mods, nil
}
