package wasm

import (
	"strings"
)

// ValType represents a WebAssembly value type.
// See constants.go for ValI32, ValI64, ValF32, ValF64 and ValExtern.
type ValType byte

func (v ValType) String() string {
	switch v {
	case ValI32:
		return "i32"
	case ValI64:
		return "i64"
	case ValF32:
		return "f32"
	case ValF64:
		return "f64"
	case ValFuncRef:
		return "funcref"
	case ValExtern:
		return "externref"
	default:
		return "unknown"
	}
}

// Bridgeable reports whether values of this type can cross the host boundary.
func (v ValType) Bridgeable() bool {
	switch v {
	case ValI32, ValI64, ValF32, ValF64, ValExtern:
		return true
	}
	return false
}

// FuncType represents a WebAssembly function signature with parameter and result types.
type FuncType struct {
	Params  []ValType
	Results []ValType
}

// NewFuncType copies params and results into a new FuncType.
func NewFuncType(params, results []ValType) FuncType {
	return FuncType{
		Params:  append([]ValType(nil), params...),
		Results: append([]ValType(nil), results...),
	}
}

// Clone returns a deep copy, so the original can not be mutated through it.
func (f FuncType) Clone() FuncType {
	return NewFuncType(f.Params, f.Results)
}

// Equal reports whether both signatures have the same params and results.
func (f FuncType) Equal(other FuncType) bool {
	return equalTypes(f.Params, other.Params) && equalTypes(f.Results, other.Results)
}

func equalTypes(a, b []ValType) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// String renders the signature as "(i32, i64) -> (f32)".
func (f FuncType) String() string {
	var b strings.Builder
	writeTypeList(&b, f.Params)
	b.WriteString(" -> ")
	writeTypeList(&b, f.Results)
	return b.String()
}

func writeTypeList(b *strings.Builder, types []ValType) {
	b.WriteByte('(')
	for i, t := range types {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(t.String())
	}
	b.WriteByte(')')
}

// Module is the subset of a WebAssembly module the encoder can emit:
// function types, function and memory imports, functions, a memory,
// exports and a start function.
type Module struct {
	Types    []FuncType
	Imports  []Import
	Funcs    []uint32 // Type indices for declared functions
	Memories []MemoryType
	Exports  []Export
	Start    *uint32
	Code     []FuncBody
}

// Import represents an imported function or memory.
type Import struct {
	Desc   ImportDesc
	Module string
	Name   string
}

// ImportDesc describes an imported item.
// Kind uses KindFunc or KindMemory.
type ImportDesc struct {
	Memory  *MemoryType
	TypeIdx uint32
	Kind    byte
}

// MemoryType describes a linear memory with size limits.
type MemoryType struct {
	Limits Limits
}

// Limits describes size constraints for memories.
type Limits struct {
	Max *uint64
	Min uint64
}

// Export describes an exported item.
// Kind uses KindFunc or KindMemory.
type Export struct {
	Name string
	Kind byte
	Idx  uint32
}

// FuncBody is the body of a declared function.
type FuncBody struct {
	Locals []LocalEntry
	Code   []byte // Instructions including the final end opcode
}

// LocalEntry declares Count locals of the same type.
type LocalEntry struct {
	Count   uint32
	ValType ValType
}
