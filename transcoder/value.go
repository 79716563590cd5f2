package transcoder

import (
	"fmt"
	"math"

	"github.com/wippyai/wasm-hostcall/wasm"
)

// Value is a tagged core value. The payload always matches Kind: numeric
// kinds keep their raw bits, externref keeps the host object.
type Value struct {
	ref  any
	bits uint64
	Kind wasm.ValType
}

func ValueI32(v int32) Value {
	return Value{Kind: wasm.ValI32, bits: uint64(uint32(v))}
}

func ValueI64(v int64) Value {
	return Value{Kind: wasm.ValI64, bits: uint64(v)}
}

func ValueF32(v float32) Value {
	return Value{Kind: wasm.ValF32, bits: uint64(math.Float32bits(v))}
}

func ValueF64(v float64) Value {
	return Value{Kind: wasm.ValF64, bits: math.Float64bits(v)}
}

// ValueExternRef wraps a host object. A nil object is the null reference.
func ValueExternRef(v any) Value {
	return Value{Kind: wasm.ValExtern, ref: v}
}

// I32 panics if the value is not an i32.
func (v Value) I32() int32 {
	v.mustBe(wasm.ValI32)
	return int32(uint32(v.bits))
}

// I64 panics if the value is not an i64.
func (v Value) I64() int64 {
	v.mustBe(wasm.ValI64)
	return int64(v.bits)
}

// F32 panics if the value is not an f32.
func (v Value) F32() float32 {
	v.mustBe(wasm.ValF32)
	return math.Float32frombits(uint32(v.bits))
}

// F64 panics if the value is not an f64.
func (v Value) F64() float64 {
	v.mustBe(wasm.ValF64)
	return math.Float64frombits(v.bits)
}

// Ref panics if the value is not an externref.
func (v Value) Ref() any {
	v.mustBe(wasm.ValExtern)
	return v.ref
}

// IsNull reports whether v is the null externref.
func (v Value) IsNull() bool {
	return v.Kind == wasm.ValExtern && v.ref == nil
}

// Interface returns the Go value Lift would produce for v.
func (v Value) Interface() any {
	switch v.Kind {
	case wasm.ValI32:
		return v.I32()
	case wasm.ValI64:
		return v.I64()
	case wasm.ValF32:
		return v.F32()
	case wasm.ValF64:
		return v.F64()
	case wasm.ValExtern:
		return v.ref
	}
	return nil
}

func (v Value) String() string {
	if v.Kind == wasm.ValExtern && v.ref == nil {
		return "externref:null"
	}
	return fmt.Sprintf("%s:%v", v.Kind, v.Interface())
}

func (v Value) mustBe(k wasm.ValType) {
	if v.Kind != k {
		panic(fmt.Sprintf("transcoder: value of kind %s accessed as %s", v.Kind, k))
	}
}
