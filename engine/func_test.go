package engine

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	werrors "github.com/wippyai/wasm-hostcall/errors"
	"github.com/wippyai/wasm-hostcall/transcoder"
	"github.com/wippyai/wasm-hostcall/wasm"
)

func TestNewFunc_Usage(t *testing.T) {
	store := newTestStore(t, nil)
	ft := sig(types(wasm.ValI32))
	var nilFunc func(int32)

	tests := []struct {
		name string
		impl any
		opts []FuncOption
	}{
		{"no callable", nil, nil},
		{"typed nil", nilFunc, nil},
		{"both impl and block", CallableFunc(echo), []FuncOption{WithBlock(CallableFunc(echo))}},
		{"not a function", 42, nil},
		{"variadic", func(args ...int32) {}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFunc(store, ft, tt.impl, tt.opts...)
			if !werrors.IsKind(err, werrors.KindUsage) {
				t.Fatalf("err = %v, want usage error", err)
			}
		})
	}

	t.Run("nil store", func(t *testing.T) {
		if _, err := NewFunc(nil, ft, CallableFunc(echo)); !werrors.IsKind(err, werrors.KindUsage) {
			t.Fatalf("err = %v", err)
		}
	})
}

func TestNewFunc_Block(t *testing.T) {
	store := newTestStore(t, nil)
	f, err := NewFunc(store, sig(types(wasm.ValI32), wasm.ValI32), nil, WithBlock(func(x int32) int32 { return x * 2 }))
	if err != nil {
		t.Fatal(err)
	}
	got, err := f.Call(context.Background(), int32(21))
	if err != nil {
		t.Fatal(err)
	}
	if got[0] != int32(42) {
		t.Errorf("got %v", got)
	}
}

func TestNewFunc_ReflectArity(t *testing.T) {
	store := newTestStore(t, nil)
	ft := sig(types(wasm.ValI32, wasm.ValI32))

	tests := []struct {
		name string
		impl any
		opts []FuncOption
		msg  string
	}{
		{"too few", func(a int32) {}, nil, "wrong number of arguments (given 2, expected 1)"},
		{"too many", func(a, b, c int32) {}, nil, "wrong number of arguments (given 2, expected 3)"},
		{"caller counts", func(a, b int32) {}, []FuncOption{WithCaller()}, "wrong number of arguments (given 3, expected 2)"},
		{"context does not count", func(ctx context.Context, a int32) {}, nil, "wrong number of arguments (given 2, expected 1)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFunc(store, ft, tt.impl, tt.opts...)
			if !werrors.IsKind(err, werrors.KindUsage) {
				t.Fatalf("err = %v, want usage error", err)
			}
			if !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("message %q does not contain %q", err.Error(), tt.msg)
			}
		})
	}

	t.Run("one param signature, two param func", func(t *testing.T) {
		_, err := NewFunc(store, sig(types(wasm.ValI32)), func(a, b int32) {})
		e, ok := werrors.AsError(err)
		if !ok || e.Given != 1 || e.Expected != 2 {
			t.Fatalf("err = %v", err)
		}
		if !strings.Contains(err.Error(), "wrong number of arguments (given 1, expected 2)") {
			t.Errorf("message = %q", err.Error())
		}
	})

	t.Run("caller not first", func(t *testing.T) {
		_, err := NewFunc(store, ft, func(a int32, c *Caller, b int32) {}, WithCaller())
		if !werrors.IsKind(err, werrors.KindUsage) {
			t.Fatalf("err = %v", err)
		}
	})

	t.Run("caller without option", func(t *testing.T) {
		_, err := NewFunc(store, sig(types(wasm.ValI32)), func(c *Caller) {})
		if !werrors.IsKind(err, werrors.KindUsage) {
			t.Fatalf("err = %v", err)
		}
	})
}

func TestNewFunc_UnbridgeableKind(t *testing.T) {
	store := newTestStore(t, nil)
	_, err := NewFunc(store, sig(types(wasm.ValFuncRef)), CallableFunc(echo))
	if !werrors.IsKind(err, werrors.KindUnsupported) {
		t.Fatalf("err = %v", err)
	}
}

func TestFunc_TypeIsACopy(t *testing.T) {
	store := newTestStore(t, nil)
	params := types(wasm.ValI32)
	f := mustFunc(t, store, sig(params), CallableFunc(echo))

	params[0] = wasm.ValI64
	ft := f.Type()
	ft.Params[0] = wasm.ValF64

	if got := f.Type().Params[0]; got != wasm.ValI32 {
		t.Errorf("signature changed to %s", got)
	}
}

func TestFunc_Call(t *testing.T) {
	store := newTestStore(t, nil)
	ctx := context.Background()

	add := mustFunc(t, store, sig(types(wasm.ValI32, wasm.ValI32), wasm.ValI32),
		func(a, b int32) int32 { return a + b }, WithName("add"))

	got, err := add.Call(ctx, int32(2), 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != int32(5) {
		t.Errorf("got %v", got)
	}
	if add.Name() != "add" || add.Store() != store {
		t.Errorf("unexpected name/store")
	}
}

func TestFunc_CallArity(t *testing.T) {
	store := newTestStore(t, nil)
	called := false
	f := mustFunc(t, store, sig(types(wasm.ValI32, wasm.ValI32)),
		CallableFunc(func(context.Context, *Caller, []any) (any, error) {
			called = true
			return nil, nil
		}))

	_, err := f.Call(context.Background(), int32(1))
	e, ok := werrors.AsError(err)
	if !ok || e.Kind != werrors.KindArity || e.Side != werrors.SideParams {
		t.Fatalf("err = %v", err)
	}
	if e.Given != 1 || e.Expected != 2 {
		t.Errorf("given/expected = %d/%d", e.Given, e.Expected)
	}
	if !strings.Contains(err.Error(), "wrong number of arguments (given 1, expected 2)") {
		t.Errorf("message = %q", err.Error())
	}
	if called {
		t.Error("callable ran despite arity error")
	}
}

func TestFunc_ResultNormalization(t *testing.T) {
	store := newTestStore(t, nil)
	ctx := context.Background()

	tests := []struct {
		name    string
		results []wasm.ValType
		ret     any
		want    []any
	}{
		{"none ignores return", nil, "ignored", []any{}},
		{"single bare", types(wasm.ValI32), int32(7), []any{int32(7)}},
		{"single wrapped", types(wasm.ValI32), []any{int32(7)}, []any{int32(7)}},
		{"multi", types(wasm.ValI32, wasm.ValF64), []any{int32(1), 2.5}, []any{int32(1), 2.5}},
		{"externref null", types(wasm.ValExtern), nil, []any{nil}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ret := tt.ret
			f := mustFunc(t, store, sig(nil, tt.results...),
				CallableFunc(func(context.Context, *Caller, []any) (any, error) { return ret, nil }))
			got, err := f.Call(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("result %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestFunc_ResultErrors(t *testing.T) {
	store := newTestStore(t, nil)
	ctx := context.Background()

	tests := []struct {
		name     string
		results  []wasm.ValType
		ret      any
		kind     werrors.Kind
		position int
		msg      string
	}{
		{"too many for one", types(wasm.ValI32), []any{int32(1), int32(2)}, werrors.KindArity, werrors.NoPosition, "wrong number of results (given 2, expected 1)"},
		{"bare for two", types(wasm.ValI32, wasm.ValI32), int32(1), werrors.KindArity, werrors.NoPosition, "wrong number of results (given 1, expected 2)"},
		{"short for two", types(wasm.ValI32, wasm.ValI32), []any{int32(1)}, werrors.KindArity, werrors.NoPosition, "wrong number of results (given 1, expected 2)"},
		{"nil for two", types(wasm.ValI32, wasm.ValI32), nil, werrors.KindArity, werrors.NoPosition, "wrong number of results (given 0, expected 2)"},
		{"second kind", types(wasm.ValI32, wasm.ValI32), []any{int32(1), "x"}, werrors.KindTypeMismatch, 1, "result[1]"},
		{"nil for i32", types(wasm.ValI32), nil, werrors.KindTypeMismatch, 0, "result[0]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ret := tt.ret
			f := mustFunc(t, store, sig(nil, tt.results...),
				CallableFunc(func(context.Context, *Caller, []any) (any, error) { return ret, nil }))
			_, err := f.Call(ctx)
			e, ok := werrors.AsError(err)
			if !ok || e.Kind != tt.kind {
				t.Fatalf("err = %v, want kind %s", err, tt.kind)
			}
			if e.Side != werrors.SideResults || e.Position != tt.position {
				t.Errorf("side/position = %s/%d", e.Side, e.Position)
			}
			if !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("message %q does not contain %q", err.Error(), tt.msg)
			}
		})
	}
}

func TestFunc_ErrorIdentity(t *testing.T) {
	store := newTestStore(t, nil)
	sentinel := errors.New("host failure")
	f := mustFunc(t, store, sig(nil), func() error { return sentinel })

	_, err := f.Call(context.Background())
	if err != sentinel {
		t.Fatalf("err = %v, want the callable's error", err)
	}
}

func TestFunc_Panics(t *testing.T) {
	store := newTestStore(t, nil)
	ctx := context.Background()
	sentinel := errors.New("panicked error")

	f := mustFunc(t, store, sig(nil), func() { panic("boom") })
	_, err := f.Call(ctx)
	if !werrors.IsKind(err, werrors.KindPanic) || !strings.Contains(err.Error(), "boom") {
		t.Errorf("err = %v", err)
	}

	g := mustFunc(t, store, sig(nil), func() { panic(sentinel) })
	if _, err := g.Call(ctx); err != sentinel {
		t.Errorf("err = %v, want panicked error value", err)
	}

	if err := store.WithBorrow(func(any) error { return nil }); err != nil {
		t.Errorf("borrow not released after panic: %v", err)
	}
}

func TestFunc_ArgumentConversionError(t *testing.T) {
	store := newTestStore(t, nil)
	f := mustFunc(t, store, sig(types(wasm.ValI32, wasm.ValI64)), CallableFunc(echo))

	_, err := f.Call(context.Background(), int32(1), "two")
	e, ok := werrors.AsError(err)
	if !ok || e.Kind != werrors.KindTypeMismatch {
		t.Fatalf("err = %v", err)
	}
	if e.Side != werrors.SideParams || e.Position != 1 {
		t.Errorf("side/position = %s/%d", e.Side, e.Position)
	}
}

func TestFunc_TypedValues(t *testing.T) {
	store := newTestStore(t, nil)
	f := mustFunc(t, store, sig(types(wasm.ValF32), wasm.ValF32), CallableFunc(echo))

	got, err := f.Call(context.Background(), transcoder.ValueF32(1.25))
	if err != nil {
		t.Fatal(err)
	}
	if got[0] != float32(1.25) {
		t.Errorf("got %v", got)
	}
}

func TestFunc_ReflectConversions(t *testing.T) {
	store := newTestStore(t, nil)
	type payload struct{ n int }
	p := &payload{n: 3}

	f := mustFunc(t, store, sig(types(wasm.ValI32, wasm.ValI64, wasm.ValExtern), wasm.ValI64, wasm.ValExtern),
		func(a uint32, b int, ref *payload) (int64, *payload, error) {
			return int64(a) + int64(b) + int64(ref.n), ref, nil
		})

	got, err := f.Call(context.Background(), uint32(1), int64(2), p)
	if err != nil {
		t.Fatal(err)
	}
	if got[0] != int64(6) {
		t.Errorf("sum = %v", got[0])
	}
	if got[1].(*payload) != p {
		t.Error("externref identity lost")
	}
}

func TestFunc_IntegerNarrowing(t *testing.T) {
	store := newTestStore(t, nil)
	ctx := context.Background()

	tests := []struct {
		name     string
		param    wasm.ValType
		impl     func(got *any) any
		arg      any
		want     any
		overflow bool
	}{
		{"uint8 fits", wasm.ValI32, func(got *any) any { return func(v uint8) { *got = v } }, int32(200), uint8(200), false},
		{"uint8 too large", wasm.ValI32, func(got *any) any { return func(v uint8) { *got = v } }, int32(300), nil, true},
		{"int8 max", wasm.ValI32, func(got *any) any { return func(v int8) { *got = v } }, int32(127), int8(127), false},
		{"int8 too large", wasm.ValI32, func(got *any) any { return func(v int8) { *got = v } }, int32(128), nil, true},
		{"uint16 negative", wasm.ValI32, func(got *any) any { return func(v uint16) { *got = v } }, int32(-1), nil, true},
		{"uint32 same width", wasm.ValI32, func(got *any) any { return func(v uint32) { *got = v } }, int32(-1), uint32(math.MaxUint32), false},
		{"int32 from i64 fits", wasm.ValI64, func(got *any) any { return func(v int32) { *got = v } }, int64(-7), int32(-7), false},
		{"int32 from i64 too large", wasm.ValI64, func(got *any) any { return func(v int32) { *got = v } }, int64(1<<40 + 5), nil, true},
		{"uint16 from i64 negative", wasm.ValI64, func(got *any) any { return func(v uint16) { *got = v } }, int64(-1), nil, true},
		{"uint64 same width", wasm.ValI64, func(got *any) any { return func(v uint64) { *got = v } }, int64(-1), uint64(math.MaxUint64), false},
		{"float32 exact", wasm.ValF64, func(got *any) any { return func(v float32) { *got = v } }, 1.5, float32(1.5), false},
		{"float32 inexact", wasm.ValF64, func(got *any) any { return func(v float32) { *got = v } }, 0.1, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got any
			f := mustFunc(t, store, sig(types(tt.param)), tt.impl(&got))

			_, err := f.Call(ctx, tt.arg)
			if !tt.overflow {
				if err != nil {
					t.Fatal(err)
				}
				if got != tt.want {
					t.Errorf("got %v (%T), want %v (%T)", got, got, tt.want, tt.want)
				}
				return
			}

			e, ok := werrors.AsError(err)
			if !ok || e.Kind != werrors.KindOverflow {
				t.Fatalf("err = %v, want overflow", err)
			}
			if e.Side != werrors.SideParams || e.Position != 0 {
				t.Errorf("side/position = %s/%d", e.Side, e.Position)
			}
			if got != nil {
				t.Errorf("function ran with truncated value %v", got)
			}
		})
	}
}
