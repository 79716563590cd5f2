package engine

import (
	"context"

	"github.com/wippyai/wasm-hostcall/errors"
	"github.com/wippyai/wasm-hostcall/transcoder"
	"github.com/wippyai/wasm-hostcall/wasm"
)

// Func binds a host callable to a signature in a store. The callable is
// shared by every invocation and every instance the Func is imported into.
type Func struct {
	store        *Store
	callable     Callable
	name         string
	ft           wasm.FuncType
	exposeCaller bool
}

type funcOptions struct {
	block        any
	name         string
	exposeCaller bool
}

// FuncOption configures NewFunc.
type FuncOption func(*funcOptions)

// WithBlock supplies the callable as an option instead of the impl
// argument. Exactly one of the two must be given.
func WithBlock(fn any) FuncOption {
	return func(o *funcOptions) {
		o.block = fn
	}
}

// WithCaller passes a *Caller to the callable.
func WithCaller() FuncOption {
	return func(o *funcOptions) {
		o.exposeCaller = true
	}
}

// WithName sets the name used in errors and logs.
func WithName(name string) FuncOption {
	return func(o *funcOptions) {
		o.name = name
	}
}

// NewFunc creates a host function with signature ft. impl may be a
// Callable, a CallableFunc-shaped closure, a func([]any) (any, error), or
// any typed Go function whose parameters match ft (plus a leading
// context.Context and, WithCaller, a *Caller).
func NewFunc(store *Store, ft wasm.FuncType, impl any, opts ...FuncOption) (*Func, error) {
	var o funcOptions
	for _, opt := range opts {
		opt(&o)
	}

	if store == nil {
		return nil, errors.Usage("store is required")
	}

	hasImpl, hasBlock := !isNilFunc(impl), !isNilFunc(o.block)
	switch {
	case hasImpl && hasBlock:
		return nil, errors.Usage("pass either a callable or WithBlock, not both")
	case !hasImpl && !hasBlock:
		return nil, errors.Usage("no callable given: pass a callable or WithBlock")
	case hasBlock:
		impl = o.block
	}

	if err := checkBridgeable(ft); err != nil {
		return nil, err
	}

	ft = ft.Clone()
	callable, err := adaptCallable(impl, ft, o.exposeCaller)
	if err != nil {
		if e, ok := errors.AsError(err); ok && e.Func == "" {
			e.Func = o.name
		}
		return nil, err
	}

	name := o.name
	if name == "" {
		name = "host" + ft.String()
	}

	return &Func{
		store:        store,
		ft:           ft,
		callable:     callable,
		exposeCaller: o.exposeCaller,
		name:         name,
	}, nil
}

// Type returns a copy of the signature.
func (f *Func) Type() wasm.FuncType {
	return f.ft.Clone()
}

// Name returns the function name used in errors and logs.
func (f *Func) Name() string {
	return f.name
}

// Store returns the store the function belongs to.
func (f *Func) Store() *Store {
	return f.store
}

// ExposesCaller reports whether the callable receives a *Caller.
func (f *Func) ExposesCaller() bool {
	return f.exposeCaller
}

// Call invokes the function from the host. Arguments are converted as if
// they came from guest code and results are converted back.
func (f *Func) Call(ctx context.Context, args ...any) ([]any, error) {
	if err := ValidateArity(errors.SideParams, len(args), len(f.ft.Params)); err != nil {
		return nil, f.tag(err)
	}

	buf := transcoder.AcquireStack(max(len(f.ft.Params), len(f.ft.Results)))
	defer transcoder.ReleaseStack(buf)
	stack := *buf
	if err := transcoder.LowerValues(errors.SideParams, f.ft.Params, args, f.store.refs, stack); err != nil {
		return nil, f.tag(err)
	}

	restore := f.store.suspend()
	err := f.trampoline(ctx, nil, stack)
	restore()
	if err != nil {
		return nil, err
	}

	results, err := transcoder.LiftValues(errors.SideResults, f.ft.Results, stack[:len(f.ft.Results)], f.store.refs)
	if err != nil {
		return nil, f.tag(err)
	}
	return results, nil
}

// tag names the function in a bridge error. Errors from the callable are
// never passed here.
func (f *Func) tag(err error) error {
	if e, ok := errors.AsError(err); ok && e.Func == "" {
		e.Func = f.name
	}
	return err
}
