package main

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/wippyai/wasm-hostcall/engine"
	"github.com/wippyai/wasm-hostcall/wasm"
)

// session is the store payload shared by all stubs of one run.
type session struct {
	calls atomic.Int64
	trace *tracer
}

// stubDef is a parsed -stub declaration.
type stubDef struct {
	Module string
	Name   string
	Type   wasm.FuncType
}

// parseStub parses "module.name(params) -> results" or
// "module#name(params) -> results". Parameter types accept core names and
// WIT primitives ("s32", "u64", "bool").
func parseStub(s string) (stubDef, error) {
	s = strings.TrimSpace(s)
	open := strings.Index(s, "(")
	if open <= 0 {
		return stubDef{}, fmt.Errorf("stub %q: expected module.name(params)", s)
	}

	path := s[:open]
	sep := strings.LastIndex(path, "#")
	if sep < 0 {
		sep = strings.LastIndex(path, ".")
	}
	if sep <= 0 || sep == len(path)-1 {
		return stubDef{}, fmt.Errorf("stub %q: expected module.name", s)
	}

	ft, err := wasm.ParseFuncType(s[open:])
	if err != nil {
		return stubDef{}, fmt.Errorf("stub %q: %w", s, err)
	}

	return stubDef{
		Module: strings.TrimSpace(path[:sep]),
		Name:   strings.TrimSpace(path[sep+1:]),
		Type:   ft,
	}, nil
}

// callable prints every call and returns zero values.
func (d stubDef) callable() engine.Callable {
	label := d.Module + "#" + d.Name
	return engine.CallableFunc(func(_ context.Context, caller *engine.Caller, args []any) (any, error) {
		sess, err := engine.CallerData[*session](caller)
		if err != nil {
			return nil, err
		}
		n := sess.calls.Add(1)
		sess.trace.call(n, label, args)
		return zeroResults(d.Type.Results), nil
	})
}

func zeroResults(kinds []wasm.ValType) any {
	vals := make([]any, len(kinds))
	for i, k := range kinds {
		vals[i] = zeroValue(k)
	}
	switch len(vals) {
	case 0:
		return nil
	case 1:
		return vals[0]
	default:
		return vals
	}
}

func zeroValue(k wasm.ValType) any {
	switch k {
	case wasm.ValI32:
		return int32(0)
	case wasm.ValI64:
		return int64(0)
	case wasm.ValF32:
		return float32(0)
	case wasm.ValF64:
		return float64(0)
	default:
		return nil
	}
}
