package registry

import (
	"strings"

	packedcall "github.com/wippyai/packed-call"
	"github.com/wippyai/packed-call/errors"
)

// moduleView presents one name prefix of a registry as a module
// backend. Lookups stay live: functions registered after the view is
// created are visible through it.
type moduleView struct {
	reg    *Registry
	prefix string // "" for the whole registry, otherwise "ns."
}

// Module adapts a name prefix into a module handle. Module("demo")
// resolves "add" as "demo.add"; Module("") exposes the registry's full
// names unchanged.
func (r *Registry) Module(prefix string) packedcall.Module {
	if prefix != "" && !strings.HasSuffix(prefix, ".") {
		prefix += "."
	}
	return packedcall.NewModule(&moduleView{reg: r, prefix: prefix})
}

func (m *moduleView) TypeKey() string {
	return "registry"
}

func (m *moduleView) GetFunction(name string) (packedcall.Func, error) {
	f, ok := m.reg.Lookup(m.prefix + name)
	if !ok {
		return packedcall.Func{}, errors.NotFound(errors.PhaseRegistry, "function", m.prefix+name)
	}
	return f, nil
}

func (m *moduleView) FunctionNames() []string {
	all := m.reg.Names()
	if m.prefix == "" {
		return all
	}
	var names []string
	for _, name := range all {
		if rest, ok := strings.CutPrefix(name, m.prefix); ok {
			names = append(names, rest)
		}
	}
	return names
}
