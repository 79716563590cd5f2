package engine

import (
	"context"
	"testing"

	"github.com/wippyai/wasm-hostcall/wasm"
)

func newTestStore(t testing.TB, data any) *Store {
	t.Helper()
	return newTestStoreWithConfig(t, Config{}, data)
}

func newTestStoreWithConfig(t testing.TB, cfg Config, data any) *Store {
	t.Helper()
	ctx := context.Background()

	eng, err := NewEngine(ctx, cfg)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	store := NewStore(eng, data)
	t.Cleanup(func() {
		_ = store.Close(ctx)
		_ = eng.Close(ctx)
	})
	return store
}

func compile(t testing.TB, store *Store, b *wasm.Builder) *Module {
	t.Helper()
	bin, err := b.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	mod, err := store.Engine().CompileModule(context.Background(), bin)
	if err != nil {
		t.Fatalf("CompileModule: %v", err)
	}
	return mod
}

func instantiate(t testing.TB, store *Store, b *wasm.Builder, imports ...*Func) *Instance {
	t.Helper()
	inst, err := NewInstance(context.Background(), store, compile(t, store, b), imports)
	if err != nil {
		t.Fatalf("NewInstance: %v", err)
	}
	return inst
}

func mustFunc(t testing.TB, store *Store, ft wasm.FuncType, impl any, opts ...FuncOption) *Func {
	t.Helper()
	f, err := NewFunc(store, ft, impl, opts...)
	if err != nil {
		t.Fatalf("NewFunc: %v", err)
	}
	return f
}

func sig(params []wasm.ValType, results ...wasm.ValType) wasm.FuncType {
	return wasm.NewFuncType(params, results)
}

func types(ts ...wasm.ValType) []wasm.ValType {
	return ts
}

// forwardModule imports env.f with ft and exports "run" with the same
// signature, forwarding every parameter to the import.
func forwardModule(ft wasm.FuncType) *wasm.Builder {
	b := wasm.NewBuilder()
	imp := b.ImportFunc("env", "f", ft)
	code := wasm.NewCode()
	for i := range ft.Params {
		code.LocalGet(uint32(i))
	}
	code.Call(imp).End()
	b.ExportFunc("run", b.Func(ft, nil, code))
	return b
}

// reentryModule imports env.f () -> i32 and exports:
//
//	a: () -> i32   calls f
//	b: (i32) -> i32 returns its argument plus one
func reentryModule() *wasm.Builder {
	b := wasm.NewBuilder()
	f := b.ImportFunc("env", "f", sig(nil, wasm.ValI32))
	b.ExportFunc("a", b.Func(sig(nil, wasm.ValI32), nil, wasm.NewCode().Call(f).End()))
	b.ExportFunc("b", b.Func(sig(types(wasm.ValI32), wasm.ValI32), nil,
		wasm.NewCode().LocalGet(0).I32Const(1).I32Add().End()))
	return b
}

// echo returns its arguments unchanged.
func echo(_ context.Context, _ *Caller, args []any) (any, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	return args, nil
}
