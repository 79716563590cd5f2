package runtime

import (
	"context"
	"reflect"

	"github.com/wippyai/wasm-hostcall/engine"
	"github.com/wippyai/wasm-hostcall/errors"
	"github.com/wippyai/wasm-hostcall/wasm"
)

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	callerType  = reflect.TypeOf((*engine.Caller)(nil))
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
)

// InferFuncType derives a core signature from a Go function type.
// A leading context.Context and *engine.Caller and a trailing error are not
// part of the signature; exposeCaller reports whether *engine.Caller is
// taken.
//
//	Go Type                        Core Type
//	──────────────────────────────────────────
//	int8/16/32, uint8/16/32        i32
//	int, int64, uint, uint64       i64
//	float32                        f32
//	float64                        f64
//	anything else                  externref
func InferFuncType(fnType reflect.Type) (ft wasm.FuncType, exposeCaller bool, err error) {
	if fnType == nil || fnType.Kind() != reflect.Func {
		return ft, false, errors.InvalidInput(errors.PhaseHost, "handler must be a function")
	}

	in := 0
	if in < fnType.NumIn() && fnType.In(in) == contextType {
		in++
	}
	if in < fnType.NumIn() && fnType.In(in) == callerType {
		exposeCaller = true
		in++
	}

	for i := in; i < fnType.NumIn(); i++ {
		ft.Params = append(ft.Params, valTypeOf(fnType.In(i)))
	}

	out := fnType.NumOut()
	if out > 0 && fnType.Out(out-1) == errorType {
		out--
	}
	for i := 0; i < out; i++ {
		ft.Results = append(ft.Results, valTypeOf(fnType.Out(i)))
	}

	return ft, exposeCaller, nil
}

func valTypeOf(t reflect.Type) wasm.ValType {
	switch t.Kind() {
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return wasm.ValI32
	case reflect.Int, reflect.Int64, reflect.Uint, reflect.Uint64:
		return wasm.ValI64
	case reflect.Float32:
		return wasm.ValF32
	case reflect.Float64:
		return wasm.ValF64
	}
	return wasm.ValExtern
}
