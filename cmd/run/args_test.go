package main

import (
	"testing"

	"github.com/wippyai/wasm-hostcall/wasm"
)

func TestParseArg(t *testing.T) {
	tests := []struct {
		in   string
		kind wasm.ValType
		want any
	}{
		{"42", wasm.ValI32, int32(42)},
		{"-1", wasm.ValI32, int32(-1)},
		{"0xffffffff", wasm.ValI32, uint32(0xffffffff)},
		{"9000000000", wasm.ValI64, int64(9000000000)},
		{"18446744073709551615", wasm.ValI64, uint64(18446744073709551615)},
		{"1.5", wasm.ValF32, float32(1.5)},
		{" 2.25 ", wasm.ValF64, 2.25},
		{"hello", wasm.ValExtern, "hello"},
		{"null", wasm.ValExtern, nil},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseArg(tt.in, tt.kind)
			if err != nil {
				t.Fatalf("parseArg: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v (%T), want %v (%T)", got, got, tt.want, tt.want)
			}
		})
	}
}

func TestParseArgs_Errors(t *testing.T) {
	if _, err := parseArgs([]string{"1"}, nil); err == nil {
		t.Error("expected arity error")
	}
	if _, err := parseArgs([]string{"x"}, []wasm.ValType{wasm.ValI32}); err == nil {
		t.Error("expected parse error")
	}
	if _, err := parseArgs([]string{"1"}, []wasm.ValType{wasm.ValFuncRef}); err == nil {
		t.Error("expected unsupported type error")
	}
}

func TestSplitArgs(t *testing.T) {
	if got := splitArgs(""); got != nil {
		t.Errorf("empty: got %v", got)
	}
	if got := splitArgs("1,2"); len(got) != 2 {
		t.Errorf("got %v", got)
	}
}
