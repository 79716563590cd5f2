package engine

import (
	"context"
	"sort"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	hostcall "github.com/wippyai/wasm-hostcall"
	"github.com/wippyai/wasm-hostcall/errors"
	"github.com/wippyai/wasm-hostcall/transcoder"
	"github.com/wippyai/wasm-hostcall/wasm"
)

// Instance is an instantiated guest module.
type Instance struct {
	store   *Store
	module  *Module
	runtime wazero.Runtime
	mod     api.Module
	memory  hostcall.Memory
	closed  bool
}

// NewInstance instantiates mod in store, binding imports[i] to the i-th
// function import of the module. Each Func must belong to store and match
// the import's signature.
//
// The module's start function runs before NewInstance returns. If it fails
// because a host function returned an error, that error is returned
// unmodified and no instance is created.
func NewInstance(ctx context.Context, store *Store, mod *Module, imports []*Func) (*Instance, error) {
	if store == nil || mod == nil {
		return nil, errors.Usage("store and module are required")
	}
	if store.isClosed() {
		return nil, errors.Closed("store")
	}
	if mod.importsMemory {
		return nil, errors.Unsupported(errors.PhaseLink, "memory imports")
	}
	if err := checkImports(store, mod, imports); err != nil {
		return nil, err
	}

	rt, err := store.engine.newRuntime(ctx)
	if err != nil {
		return nil, err
	}

	inst := &Instance{store: store, module: mod, runtime: rt}
	if err := inst.defineImports(ctx, imports); err != nil {
		_ = rt.Close(ctx)
		return nil, err
	}

	// Same bytes and shared cache: this only decodes, the code is reused.
	compiled, err := rt.CompileModule(ctx, mod.bin)
	if err != nil {
		_ = rt.Close(ctx)
		return nil, errors.Load("compile module", err)
	}

	cfg := wazero.NewModuleConfig().WithName("").WithStartFunctions()
	restore := store.suspend()
	guest, err := rt.InstantiateModule(ctx, compiled, cfg)
	restore()
	if err != nil {
		_ = rt.Close(ctx)
		if hostErr := store.takePending(); hostErr != nil {
			Logger().Debug("start function failed in host function", zap.Error(hostErr))
			return nil, hostErr
		}
		return nil, errors.Instantiation(err)
	}

	inst.mod = guest
	if m := guest.Memory(); m != nil {
		inst.memory = &WazeroMemory{mem: m}
	}

	if err := store.addInstance(inst); err != nil {
		_ = rt.Close(ctx)
		return nil, err
	}

	Logger().Debug("instance created",
		zap.Int("imports", len(imports)),
		zap.Int("exports", len(mod.exports)))

	return inst, nil
}

func checkImports(store *Store, mod *Module, imports []*Func) error {
	if len(imports) != len(mod.imports) {
		var missing []errors.MissingImport
		for i := len(imports); i < len(mod.imports); i++ {
			imp := mod.imports[i]
			missing = append(missing, errors.MissingImport{Module: imp.Module, Name: imp.Name, Type: imp.Type.String()})
		}
		return errors.New(errors.PhaseLink, errors.KindMissingImport).
			Detail("module declares %d function imports, %d given", len(mod.imports), len(imports)).
			Cause(&errors.MissingImportsError{Imports: missing}).
			Build()
	}

	for i, f := range imports {
		imp := mod.imports[i]
		if f == nil {
			return errors.New(errors.PhaseLink, errors.KindMissingImport).
				Func(imp.Module+"."+imp.Name).
				Detail("import %d is nil", i).
				Build()
		}
		if f.store != store {
			return errors.Usage("import %d (%s.%s) belongs to a different store", i, imp.Module, imp.Name)
		}
		if !f.ft.Equal(imp.Type) {
			return errors.New(errors.PhaseLink, errors.KindTypeMismatch).
				Func(imp.Module+"."+imp.Name).
				Detail("import %d expects %s, %s has %s", i, imp.Type, f.name, f.ft).
				Build()
		}
	}
	return nil
}

// defineImports builds one host module per import module name.
func (i *Instance) defineImports(ctx context.Context, imports []*Func) error {
	type binding struct {
		name string
		fn   *Func
	}
	var order []string
	byModule := make(map[string][]binding)

	for idx, f := range i.module.imports {
		fn := imports[idx]
		existing := byModule[f.Module]
		dup := false
		for _, b := range existing {
			if b.name == f.Name {
				if b.fn != fn {
					return errors.Unsupported(errors.PhaseLink, "import "+f.Module+"."+f.Name+" bound to two different functions")
				}
				dup = true
			}
		}
		if dup {
			continue
		}
		if existing == nil {
			order = append(order, f.Module)
		}
		byModule[f.Module] = append(existing, binding{name: f.Name, fn: fn})
	}

	for _, modName := range order {
		builder := i.runtime.NewHostModuleBuilder(modName)
		for _, b := range byModule[modName] {
			builder.NewFunctionBuilder().
				WithGoModuleFunction(b.fn.hostFunc(i), toAPITypes(b.fn.ft.Params), toAPITypes(b.fn.ft.Results)).
				WithName(b.fn.name).
				Export(b.name)
		}
		if _, err := builder.Instantiate(ctx); err != nil {
			return errors.Registration(errors.PhaseLink, modName, "*", err)
		}
		Logger().Debug("host module defined",
			zap.String("module", modName),
			zap.Int("functions", len(byModule[modName])))
	}
	return nil
}

// Invoke calls an exported function. Arguments are converted with the
// export's parameter kinds and results with its result kinds.
//
// If a host function fails during the call, its error is returned
// unmodified. Other guest failures are returned as trap errors.
func (i *Instance) Invoke(ctx context.Context, name string, args ...any) ([]any, error) {
	if i.isClosed() {
		return nil, errors.Closed("instance")
	}

	fn := i.mod.ExportedFunction(name)
	if fn == nil {
		return nil, errors.NotFound(errors.PhaseCall, "export", name)
	}
	ft := funcTypeOf(fn.Definition())

	if err := ValidateArity(errors.SideParams, len(args), len(ft.Params)); err != nil {
		return nil, tagExport(err, name)
	}

	buf := transcoder.AcquireStack(max(len(ft.Params), len(ft.Results)))
	defer transcoder.ReleaseStack(buf)
	stack := *buf
	if err := transcoder.LowerValues(errors.SideParams, ft.Params, args, i.store.refs, stack); err != nil {
		return nil, tagExport(err, name)
	}

	restore := i.store.suspend()
	err := fn.CallWithStack(ctx, stack)
	restore()
	if err != nil {
		if hostErr := i.store.takePending(); hostErr != nil {
			return nil, hostErr
		}
		return nil, errors.Trap(name, err)
	}

	results, err := transcoder.LiftValues(errors.SideResults, ft.Results, stack[:len(ft.Results)], i.store.refs)
	if err != nil {
		return nil, tagExport(err, name)
	}
	return results, nil
}

func tagExport(err error, name string) error {
	if e, ok := errors.AsError(err); ok && e.Func == "" {
		e.Func = name
	}
	return err
}

// Module returns the compiled module the instance was created from.
func (i *Instance) Module() *Module {
	return i.module
}

// Store returns the store the instance lives in.
func (i *Instance) Store() *Store {
	return i.store
}

// Exports returns the names of the exported functions, sorted.
func (i *Instance) Exports() []string {
	defs := i.mod.ExportedFunctionDefinitions()
	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ExportType returns the signature of an exported function.
func (i *Instance) ExportType(name string) (wasm.FuncType, bool) {
	def, ok := i.mod.ExportedFunctionDefinitions()[name]
	if !ok {
		return wasm.FuncType{}, false
	}
	return funcTypeOf(def), true
}

// Memory returns the instance's linear memory, or nil if it has none.
func (i *Instance) Memory() hostcall.Memory {
	return i.memory
}

func (i *Instance) isClosed() bool {
	i.store.mu.Lock()
	defer i.store.mu.Unlock()
	return i.closed
}

// Close closes the instance. Closing twice is a no-op.
func (i *Instance) Close(ctx context.Context) error {
	i.store.removeInstance(i)
	return i.close(ctx)
}

func (i *Instance) close(ctx context.Context) error {
	i.store.mu.Lock()
	if i.closed {
		i.store.mu.Unlock()
		return nil
	}
	i.closed = true
	i.store.mu.Unlock()
	return i.runtime.Close(ctx)
}
