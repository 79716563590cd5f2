package linker

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/wippyai/wasm-hostcall/engine"
	werrors "github.com/wippyai/wasm-hostcall/errors"
	"github.com/wippyai/wasm-hostcall/wasm"
)

func compile(t testing.TB, store *engine.Store, b *wasm.Builder) *engine.Module {
	t.Helper()
	bin, err := b.Encode()
	if err != nil {
		t.Fatal(err)
	}
	mod, err := store.Engine().CompileModule(context.Background(), bin)
	if err != nil {
		t.Fatal(err)
	}
	return mod
}

// sumModule imports a and b from module and exports run = a() + b().
func sumModule(module string) *wasm.Builder {
	i32 := wasm.NewFuncType(nil, []wasm.ValType{wasm.ValI32})
	b := wasm.NewBuilder()
	fa := b.ImportFunc(module, "a", i32)
	fb := b.ImportFunc(module, "b", i32)
	b.ExportFunc("run", b.Func(i32, nil, wasm.NewCode().Call(fa).Call(fb).I32Add().End()))
	return b
}

func TestLinker_Instantiate(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	l := NewWithDefaults(store)

	if err := l.Define("env", "a", constFunc(t, store, 2)); err != nil {
		t.Fatal(err)
	}
	if err := l.DefineFunc("env#b", constFunc(t, store, 40)); err != nil {
		t.Fatal(err)
	}

	inst, err := l.Instantiate(ctx, compile(t, store, sumModule("env")))
	if err != nil {
		t.Fatal(err)
	}
	got, err := inst.Invoke(ctx, "run")
	if err != nil {
		t.Fatal(err)
	}
	if got[0] != int32(42) {
		t.Errorf("got %v", got)
	}
}

func TestLinker_SemverImports(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	l := NewWithDefaults(store)

	_ = l.Define("env@1.4.1", "a", constFunc(t, store, 1))
	_ = l.Define("env@1.4.1", "b", constFunc(t, store, 2))

	inst, err := l.Instantiate(ctx, compile(t, store, sumModule("env@1.2.0")))
	if err != nil {
		t.Fatal(err)
	}
	got, err := inst.Invoke(ctx, "run")
	if err != nil || got[0] != int32(3) {
		t.Errorf("got %v, %v", got, err)
	}

	if _, err := l.Instantiate(ctx, compile(t, store, sumModule("env@2.0.0"))); !errors.Is(err, &werrors.MissingImportsError{}) {
		t.Errorf("major mismatch should not resolve: %v", err)
	}
}

func TestLinker_MissingImports(t *testing.T) {
	store := newStore(t)
	l := NewWithDefaults(store)
	_ = l.Define("env", "b", constFunc(t, store, 1))

	_, err := l.Instantiate(context.Background(), compile(t, store, sumModule("env")))
	var missing *werrors.MissingImportsError
	if !errors.As(err, &missing) {
		t.Fatalf("err = %v", err)
	}
	if len(missing.Imports) != 1 || missing.Imports[0].Name != "a" {
		t.Errorf("missing = %+v", missing.Imports)
	}
	if !strings.Contains(err.Error(), "() -> (i32)") {
		t.Errorf("message lacks signature: %q", err.Error())
	}
}

func TestLinker_DefineErrors(t *testing.T) {
	store := newStore(t)
	other := newStore(t)
	l := NewWithDefaults(store)

	if err := l.Define("env", "a", nil); !werrors.IsKind(err, werrors.KindRegistration) {
		t.Errorf("nil func: %v", err)
	}
	if err := l.Define("env", "a", constFunc(t, other, 1)); !werrors.IsKind(err, werrors.KindRegistration) {
		t.Errorf("foreign store: %v", err)
	}
	if err := l.DefineFunc("env.a", constFunc(t, store, 1)); !werrors.IsKind(err, werrors.KindInvalidInput) {
		t.Errorf("bad path: %v", err)
	}
}

func TestLinker_Redefine(t *testing.T) {
	store := newStore(t)
	l := NewWithDefaults(store)
	first, second := constFunc(t, store, 1), constFunc(t, store, 2)

	_ = l.Define("env", "a", first)
	_ = l.Define("env", "a", second)
	if l.Resolve("env", "a") != second {
		t.Error("Define should overwrite")
	}
}
