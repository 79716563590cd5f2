package engine

import (
	"context"
	"sort"

	"github.com/tetratelabs/wazero"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-hostcall/errors"
	"github.com/wippyai/wasm-hostcall/wasm"
)

// ImportDef describes a function import of a compiled module.
type ImportDef struct {
	Module string
	Name   string
	Type   wasm.FuncType
}

// ExportDef describes a function export of a compiled module.
type ExportDef struct {
	Name string
	Type wasm.FuncType
}

// Module is a compiled guest module. It is safe for concurrent use and can
// be instantiated any number of times.
type Module struct {
	engine        *Engine
	compiled      wazero.CompiledModule
	imports       []ImportDef
	exports       []ExportDef
	bin           []byte
	importsMemory bool
}

// CompileModule validates and compiles a WebAssembly binary.
func (e *Engine) CompileModule(ctx context.Context, bin []byte) (*Module, error) {
	e.mu.Lock()
	closed := e.closed
	e.mu.Unlock()
	if closed {
		return nil, errors.Closed("engine")
	}

	compiled, err := e.base.CompileModule(ctx, bin)
	if err != nil {
		return nil, errors.Load("compile module", err)
	}

	m := &Module{
		engine:        e,
		compiled:      compiled,
		bin:           append([]byte(nil), bin...),
		importsMemory: len(compiled.ImportedMemories()) > 0,
	}

	for _, def := range compiled.ImportedFunctions() {
		modName, name, _ := def.Import()
		m.imports = append(m.imports, ImportDef{Module: modName, Name: name, Type: funcTypeOf(def)})
	}
	for name, def := range compiled.ExportedFunctions() {
		m.exports = append(m.exports, ExportDef{Name: name, Type: funcTypeOf(def)})
	}
	sort.Slice(m.exports, func(i, j int) bool { return m.exports[i].Name < m.exports[j].Name })

	Logger().Debug("module compiled",
		zap.Int("size", len(bin)),
		zap.Int("imports", len(m.imports)),
		zap.Int("exports", len(m.exports)))

	return m, nil
}

// Engine returns the engine that compiled the module.
func (m *Module) Engine() *Engine {
	return m.engine
}

// Imports returns the function imports in declaration order.
func (m *Module) Imports() []ImportDef {
	return append([]ImportDef(nil), m.imports...)
}

// Exports returns the function exports sorted by name.
func (m *Module) Exports() []ExportDef {
	return append([]ExportDef(nil), m.exports...)
}

// ExportType returns the signature of a function export.
func (m *Module) ExportType(name string) (wasm.FuncType, bool) {
	for _, e := range m.exports {
		if e.Name == name {
			return e.Type.Clone(), true
		}
	}
	return wasm.FuncType{}, false
}

// Close releases the compiled code held for this module.
func (m *Module) Close(ctx context.Context) error {
	return m.compiled.Close(ctx)
}
