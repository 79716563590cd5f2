package wasm

import (
	"testing"
)

func TestParseValType(t *testing.T) {
	tests := []struct {
		in   string
		want ValType
	}{
		{"i32", ValI32},
		{" i64 ", ValI64},
		{"f32", ValF32},
		{"f64", ValF64},
		{"externref", ValExtern},
		{"s32", ValI32},
		{"u8", ValI32},
		{"bool", ValI32},
		{"char", ValI32},
		{"u64", ValI64},
		{"s64", ValI64},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseValType(tt.in)
			if err != nil {
				t.Fatalf("ParseValType(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseValType(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseValType_Rejects(t *testing.T) {
	for _, in := range []string{"string", "list<u8>"} {
		if _, err := ParseValType(in); err == nil {
			t.Errorf("ParseValType(%q) should fail", in)
		}
	}
}

func TestParseFuncType(t *testing.T) {
	tests := []struct {
		in   string
		want FuncType
	}{
		{"() -> ()", FuncType{}},
		{"()", FuncType{}},
		{"(i32, i64) -> f32", FuncType{Params: []ValType{ValI32, ValI64}, Results: []ValType{ValF32}}},
		{"(a: s32, b: f64) -> (s64, externref)", FuncType{Params: []ValType{ValI32, ValF64}, Results: []ValType{ValI64, ValExtern}}},
		{"externref -> externref", FuncType{Params: []ValType{ValExtern}, Results: []ValType{ValExtern}}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFuncType(tt.in)
			if err != nil {
				t.Fatalf("ParseFuncType(%q): %v", tt.in, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseFuncType(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseFuncType_Errors(t *testing.T) {
	for _, in := range []string{"(i32", "(string) -> ()", "() -> (i32, list<u8>)"} {
		if _, err := ParseFuncType(in); err == nil {
			t.Errorf("ParseFuncType(%q) should fail", in)
		}
	}
}
