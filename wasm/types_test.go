package wasm

import (
	"testing"
)

func TestValType_String(t *testing.T) {
	tests := []struct {
		want string
		v    ValType
	}{
		{"i32", ValI32},
		{"i64", ValI64},
		{"f32", ValF32},
		{"f64", ValF64},
		{"funcref", ValFuncRef},
		{"externref", ValExtern},
		{"unknown", ValType(0x01)},
	}
	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("ValType(%#x).String() = %q, want %q", byte(tt.v), got, tt.want)
		}
	}
}

func TestValType_Bridgeable(t *testing.T) {
	for _, v := range []ValType{ValI32, ValI64, ValF32, ValF64, ValExtern} {
		if !v.Bridgeable() {
			t.Errorf("%s should be bridgeable", v)
		}
	}
	if ValFuncRef.Bridgeable() {
		t.Error("funcref should not be bridgeable")
	}
}

func TestFuncType_String(t *testing.T) {
	tests := []struct {
		ft   FuncType
		want string
	}{
		{FuncType{}, "() -> ()"},
		{FuncType{Params: []ValType{ValI32, ValI64}, Results: []ValType{ValF32}}, "(i32, i64) -> (f32)"},
		{FuncType{Results: []ValType{ValExtern, ValF64}}, "() -> (externref, f64)"},
	}
	for _, tt := range tests {
		if got := tt.ft.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestFuncType_Equal(t *testing.T) {
	a := FuncType{Params: []ValType{ValI32}, Results: []ValType{ValI64}}
	if !a.Equal(FuncType{Params: []ValType{ValI32}, Results: []ValType{ValI64}}) {
		t.Error("identical signatures should be equal")
	}
	if a.Equal(FuncType{Params: []ValType{ValI64}, Results: []ValType{ValI64}}) {
		t.Error("different params should not be equal")
	}
	if a.Equal(FuncType{Params: []ValType{ValI32}}) {
		t.Error("different result count should not be equal")
	}
	if !(FuncType{}).Equal(FuncType{Params: []ValType{}, Results: nil}) {
		t.Error("nil and empty lists should be equal")
	}
}

func TestFuncType_Clone(t *testing.T) {
	params := []ValType{ValI32}
	ft := NewFuncType(params, nil)
	params[0] = ValF64
	if ft.Params[0] != ValI32 {
		t.Error("NewFuncType should copy params")
	}

	clone := ft.Clone()
	clone.Params[0] = ValI64
	if ft.Params[0] != ValI32 {
		t.Error("Clone should not share backing arrays")
	}
}
