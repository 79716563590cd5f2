package runtime

import (
	"context"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-hostcall/engine"
)

// Module is a compiled guest module bound to a Runtime.
type Module struct {
	runtime *Runtime
	module  *engine.Module
}

// Instantiate binds registered hosts to the linker and instantiates the
// module, running its start function.
func (m *Module) Instantiate(ctx context.Context) (*Instance, error) {
	if err := m.runtime.hosts.Bind(m.runtime.linker); err != nil {
		return nil, err
	}

	inst, err := m.runtime.linker.Instantiate(ctx, m.module)
	if err != nil {
		Logger().Debug("instantiate failed", zap.Error(err))
		return nil, err
	}

	return &Instance{
		module:   m,
		instance: inst,
	}, nil
}

func (m *Module) Imports() []engine.ImportDef {
	return m.module.Imports()
}

func (m *Module) Exports() []engine.ExportDef {
	return m.module.Exports()
}

// Engine returns the underlying compiled module.
func (m *Module) Engine() *engine.Module {
	return m.module
}

// MissingImports returns "module#name" for every import that neither the
// linker nor the host registry can satisfy.
func (m *Module) MissingImports() []string {
	var missing []string
	for _, imp := range m.module.Imports() {
		if m.runtime.linker.Resolve(imp.Module, imp.Name) != nil {
			continue
		}
		if _, ok := m.runtime.hosts.Lookup(imp.Module, imp.Name); ok {
			continue
		}
		missing = append(missing, imp.Module+"#"+imp.Name)
	}
	return missing
}

func (m *Module) Close(ctx context.Context) error {
	return m.module.Close(ctx)
}
