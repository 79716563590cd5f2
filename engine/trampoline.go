package engine

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-hostcall/errors"
	"github.com/wippyai/wasm-hostcall/transcoder"
)

// trampoline runs one invocation of the callable. stack holds the raw
// arguments on entry and the raw results on successful return; it must
// have room for max(params, results) slots. inst is the calling guest
// instance, nil for host-initiated calls.
//
// An error returned by the callable is returned as is.
func (f *Func) trampoline(ctx context.Context, inst *Instance, stack []uint64) (err error) {
	params, results := f.ft.Params, f.ft.Results
	if len(stack) < len(params) || len(stack) < len(results) {
		return f.tag(errors.Arity(errors.SideParams, len(stack), len(params)))
	}

	args, err := transcoder.LiftValues(errors.SideParams, params, stack[:len(params)], f.store.refs)
	if err != nil {
		return f.tag(err)
	}

	guard, err := f.store.borrow()
	if err != nil {
		return f.tag(err)
	}
	defer f.store.release(guard)

	var caller *Caller
	if f.exposeCaller {
		caller = &Caller{store: f.store, inst: inst, guard: guard}
	}

	ret, err := f.invoke(ctx, caller, args)
	if err != nil {
		Logger().Debug("host function failed", zap.String("func", f.name), zap.Error(err))
		return err
	}

	values, err := normalizeResults(ret, len(results))
	if err != nil {
		return f.tag(err)
	}
	if err := transcoder.LowerValues(errors.SideResults, results, values, f.store.refs, stack); err != nil {
		return f.tag(err)
	}
	return nil
}

// invoke calls the callable, turning a panic into an error. A panic with an
// error value yields that error.
func (f *Func) invoke(ctx context.Context, caller *Caller, args []any) (ret any, err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		Logger().Debug("host function panicked", zap.String("func", f.name), zap.Any("value", r))
		if e, ok := r.(error); ok {
			ret, err = nil, e
			return
		}
		ret, err = nil, errors.Panic(f.name, r)
	}()
	return f.callable.Call(ctx, caller, args)
}

// normalizeResults shapes a callable's return value into exactly n values.
func normalizeResults(ret any, n int) ([]any, error) {
	switch n {
	case 0:
		return nil, nil
	case 1:
		if values, ok := ret.([]any); ok {
			if len(values) != 1 {
				return nil, errors.Arity(errors.SideResults, len(values), 1)
			}
			return values, nil
		}
		return []any{ret}, nil
	}

	values, ok := ret.([]any)
	if !ok {
		given := 1
		if ret == nil {
			given = 0
		}
		return nil, errors.Arity(errors.SideResults, given, n)
	}
	if len(values) != n {
		return nil, errors.Arity(errors.SideResults, len(values), n)
	}
	return values, nil
}

// hostFunc binds f for guest calls from inst. A failed invocation records
// its error in the store and unwinds the guest frames by panicking; the
// host boundary that started the guest call hands the recorded error back.
func (f *Func) hostFunc(inst *Instance) api.GoModuleFunc {
	return func(ctx context.Context, _ api.Module, stack []uint64) {
		if err := f.trampoline(ctx, inst, stack); err != nil {
			f.store.setPending(err)
			panic(hostError{err})
		}
	}
}

// hostError is the panic value used to unwind guest frames.
type hostError struct {
	err error
}

func (h hostError) Error() string {
	return fmt.Sprintf("host function error: %v", h.err)
}

func (h hostError) Unwrap() error {
	return h.err
}
