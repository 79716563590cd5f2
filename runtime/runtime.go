package runtime

import (
	"context"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-hostcall/engine"
	"github.com/wippyai/wasm-hostcall/errors"
	"github.com/wippyai/wasm-hostcall/linker"
	"github.com/wippyai/wasm-hostcall/wasm"
)

// Runtime bundles an Engine, a Store and a Linker with a host registry.
type Runtime struct {
	engine *engine.Engine
	store  *engine.Store
	linker *linker.Linker
	hosts  *HostRegistry
}

type options struct {
	logger *zap.Logger
	data   any
	config engine.Config
	linker linker.Options
}

// Option configures New.
type Option func(*options)

// WithConfig sets the engine configuration.
func WithConfig(cfg engine.Config) Option {
	return func(o *options) { o.config = cfg }
}

// WithData sets the store payload visible to callables through the Caller.
func WithData(data any) Option {
	return func(o *options) { o.data = data }
}

// WithLogger sets the logger for the runtime, engine and linker packages.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithLinkerOptions overrides the linker defaults.
func WithLinkerOptions(opts linker.Options) Option {
	return func(o *options) { o.linker = opts }
}

func New(ctx context.Context, opts ...Option) (*Runtime, error) {
	o := options{linker: linker.DefaultOptions()}
	for _, opt := range opts {
		opt(&o)
	}

	if o.logger != nil {
		SetLogger(o.logger)
		engine.SetLogger(o.logger)
		linker.SetLogger(o.logger)
	}

	eng, err := engine.NewEngine(ctx, o.config)
	if err != nil {
		return nil, err
	}
	store := engine.NewStore(eng, o.data)

	return &Runtime{
		engine: eng,
		store:  store,
		linker: linker.New(store, o.linker),
		hosts:  NewHostRegistry(),
	}, nil
}

// Close closes all instances, the store and the engine.
func (r *Runtime) Close(ctx context.Context) error {
	return multierr.Combine(
		r.store.Close(ctx),
		r.engine.Close(ctx),
	)
}

// RegisterHost registers all exported methods of h as host functions.
// Must be called BEFORE instantiating modules that import these functions.
// Method names are converted from PascalCase to kebab-case (GetValue -> get-value).
func (r *Runtime) RegisterHost(h Host) error {
	return r.hosts.RegisterHost(h)
}

func (r *Runtime) RegisterFunc(namespace, name string, fn any) error {
	return r.hosts.RegisterFunc(namespace, name, fn)
}

// RegisterCallable registers impl under namespace#name with an explicit
// signature.
func (r *Runtime) RegisterCallable(namespace, name string, ft wasm.FuncType, impl any, opts ...engine.FuncOption) error {
	return r.hosts.RegisterCallable(namespace, name, ft, impl, opts...)
}

func (r *Runtime) Hosts() *HostRegistry {
	return r.hosts
}

func (r *Runtime) Store() *engine.Store {
	return r.store
}

func (r *Runtime) Engine() *engine.Engine {
	return r.engine
}

func (r *Runtime) Linker() *linker.Linker {
	return r.linker
}

// LoadWASM compiles a core WebAssembly module.
func (r *Runtime) LoadWASM(ctx context.Context, bin []byte) (*Module, error) {
	if len(bin) == 0 {
		return nil, errors.InvalidInput(errors.PhaseLoad, "empty module binary")
	}

	mod, err := r.engine.CompileModule(ctx, bin)
	if err != nil {
		return nil, err
	}

	return &Module{
		runtime: r,
		module:  mod,
	}, nil
}
