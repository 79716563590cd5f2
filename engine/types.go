package engine

import (
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/wasm-hostcall/errors"
	"github.com/wippyai/wasm-hostcall/wasm"
)

// ValidateArity checks a value count against the declared count.
func ValidateArity(side errors.Side, given, expected int) error {
	if given != expected {
		return errors.Arity(side, given, expected)
	}
	return nil
}

func toAPITypes(types []wasm.ValType) []api.ValueType {
	if len(types) == 0 {
		return nil
	}
	out := make([]api.ValueType, len(types))
	for i, t := range types {
		out[i] = api.ValueType(t)
	}
	return out
}

func fromAPITypes(types []api.ValueType) []wasm.ValType {
	if len(types) == 0 {
		return nil
	}
	out := make([]wasm.ValType, len(types))
	for i, t := range types {
		out[i] = wasm.ValType(t)
	}
	return out
}

func funcTypeOf(def api.FunctionDefinition) wasm.FuncType {
	return wasm.FuncType{
		Params:  fromAPITypes(def.ParamTypes()),
		Results: fromAPITypes(def.ResultTypes()),
	}
}

func checkBridgeable(ft wasm.FuncType) error {
	for i, t := range ft.Params {
		if !t.Bridgeable() {
			return errors.New(errors.PhaseConstruct, errors.KindUnsupported).
				At(errors.SideParams, i).
				WasmType(t.String()).
				Detail("value kind cannot cross the host boundary").
				Build()
		}
	}
	for i, t := range ft.Results {
		if !t.Bridgeable() {
			return errors.New(errors.PhaseConstruct, errors.KindUnsupported).
				At(errors.SideResults, i).
				WasmType(t.String()).
				Detail("value kind cannot cross the host boundary").
				Build()
		}
	}
	return nil
}
