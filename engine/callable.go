package engine

import (
	"context"
	"math"
	"reflect"

	"github.com/wippyai/wasm-hostcall/errors"
	"github.com/wippyai/wasm-hostcall/wasm"
)

// Callable is the host side of a Func. Args hold one Go value per declared
// parameter (see transcoder.Lift). Caller is nil unless the Func was created
// WithCaller.
//
// The result is normalised against the declared results: with none it is
// ignored, with one it may be the bare value or a one-element []any, with
// more it must be a []any of exactly that length. A returned error is passed
// to the host code that started the guest call without modification.
type Callable interface {
	Call(ctx context.Context, caller *Caller, args []any) (any, error)
}

// CallableFunc adapts a function to Callable.
type CallableFunc func(ctx context.Context, caller *Caller, args []any) (any, error)

func (f CallableFunc) Call(ctx context.Context, caller *Caller, args []any) (any, error) {
	return f(ctx, caller, args)
}

type argsFunc func(args []any) (any, error)

func (f argsFunc) Call(_ context.Context, _ *Caller, args []any) (any, error) {
	return f(args)
}

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	callerType  = reflect.TypeOf((*Caller)(nil))
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
)

// adaptCallable turns impl into a Callable. Typed Go functions are wrapped
// reflectively and their parameter count is checked against ft.
func adaptCallable(impl any, ft wasm.FuncType, exposeCaller bool) (Callable, error) {
	switch v := impl.(type) {
	case Callable:
		return v, nil
	case func(context.Context, *Caller, []any) (any, error):
		return CallableFunc(v), nil
	case func([]any) (any, error):
		return argsFunc(v), nil
	}
	return newReflectCallable(impl, ft, exposeCaller)
}

func isNilFunc(impl any) bool {
	if impl == nil {
		return true
	}
	rv := reflect.ValueOf(impl)
	return rv.Kind() == reflect.Func && rv.IsNil()
}

// reflectCallable calls a typed Go function:
//
//	func([ctx context.Context,] [caller *Caller,] p0 T0, p1 T1, ...) ([R0, R1, ...] [error])
type reflectCallable struct {
	fn         reflect.Value
	params     []reflect.Type
	kinds      []wasm.ValType
	hasCtx     bool
	hasCaller  bool
	returnsErr bool
	numResults int
}

func newReflectCallable(impl any, ft wasm.FuncType, exposeCaller bool) (*reflectCallable, error) {
	fnVal := reflect.ValueOf(impl)
	fnType := fnVal.Type()
	if fnType.Kind() != reflect.Func {
		return nil, errors.Usage("callable must be a function or implement engine.Callable, got %T", impl)
	}
	if fnType.IsVariadic() {
		return nil, errors.Usage("variadic callables are not supported, use func([]any) (any, error)")
	}

	rc := &reflectCallable{fn: fnVal, kinds: ft.Params}

	in := 0
	if fnType.NumIn() > 0 && fnType.In(0) == contextType {
		rc.hasCtx = true
		in++
	}

	// given is what the bridge passes, expected is what the function takes.
	given := len(ft.Params)
	if exposeCaller {
		given++
	}
	expected := fnType.NumIn() - in
	if given != expected {
		err := errors.Usage("wrong number of arguments (given %d, expected %d)", given, expected)
		err.Given, err.Expected = given, expected
		return nil, err
	}

	if exposeCaller {
		if fnType.In(in) != callerType {
			return nil, errors.Usage("first parameter must be *engine.Caller, got %s", fnType.In(in))
		}
		rc.hasCaller = true
		in++
	}

	for i := in; i < fnType.NumIn(); i++ {
		t := fnType.In(i)
		if t == callerType {
			return nil, errors.Usage("callable takes *engine.Caller but the function was not created WithCaller")
		}
		rc.params = append(rc.params, t)
	}

	rc.numResults = fnType.NumOut()
	if rc.numResults > 0 && fnType.Out(rc.numResults-1) == errorType {
		rc.returnsErr = true
		rc.numResults--
	}

	return rc, nil
}

func (r *reflectCallable) Call(ctx context.Context, caller *Caller, args []any) (any, error) {
	in := make([]reflect.Value, 0, len(r.params)+2)
	if r.hasCtx {
		in = append(in, reflect.ValueOf(&ctx).Elem())
	}
	if r.hasCaller {
		in = append(in, reflect.ValueOf(caller))
	}
	for i, t := range r.params {
		v, err := convertArg(args[i], t, i, r.kinds[i])
		if err != nil {
			return nil, err
		}
		in = append(in, v)
	}

	out := r.fn.Call(in)

	if r.returnsErr {
		if errVal := out[len(out)-1]; !errVal.IsNil() {
			return nil, errVal.Interface().(error)
		}
		out = out[:len(out)-1]
	}

	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		return out[0].Interface(), nil
	}
	results := make([]any, len(out))
	for i, v := range out {
		results[i] = v.Interface()
	}
	return results, nil
}

// convertArg converts a lifted value to the declared Go parameter type.
// Numeric conversions never truncate: a value outside the range of t is an
// overflow error. Same-width signed/unsigned pairs (int32 and uint32, int64
// and uint64) are reinterpreted bit for bit, as lowering does.
func convertArg(v any, t reflect.Type, pos int, kind wasm.ValType) (reflect.Value, error) {
	if v == nil {
		switch t.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return reflect.Zero(t), nil
		}
		return reflect.Value{}, errors.TypeConversion(errors.SideParams, pos, t.String(), kind.String())
	}

	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		return rv, nil
	}
	if !isNumeric(rv.Kind()) || !isNumeric(t.Kind()) || isFloat(rv.Kind()) != isFloat(t.Kind()) {
		return reflect.Value{}, errors.TypeConversion(errors.SideParams, pos, t.String(), kind.String())
	}
	if !fits(rv, t) {
		return reflect.Value{}, errors.New(errors.PhaseCall, errors.KindOverflow).
			At(errors.SideParams, pos).
			GoType(t.String()).
			WasmType(kind.String()).
			Value(v).
			Detail("value %v overflows %s", v, t).
			Build()
	}
	return rv.Convert(t), nil
}

// fits reports whether rv converts to t without losing information.
func fits(rv reflect.Value, t reflect.Type) bool {
	sameWidth := rv.Type().Bits() == t.Bits()
	dst := reflect.Zero(t)

	switch {
	case isFloat(t.Kind()):
		if t.Bits() >= rv.Type().Bits() {
			return true
		}
		f := rv.Float()
		return f != f || float64(float32(f)) == f

	case isSigned(rv.Kind()) && isSigned(t.Kind()):
		return !dst.OverflowInt(rv.Int())

	case isSigned(rv.Kind()):
		n := rv.Int()
		if sameWidth {
			return true
		}
		return n >= 0 && !dst.OverflowUint(uint64(n))

	case isSigned(t.Kind()):
		u := rv.Uint()
		if sameWidth {
			return true
		}
		return u <= math.MaxInt64 && !dst.OverflowInt(int64(u))

	default:
		return !dst.OverflowUint(rv.Uint())
	}
}

func isSigned(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func isFloat(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}
