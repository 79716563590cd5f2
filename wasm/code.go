package wasm

import (
	"fmt"
	"math"

	"github.com/wippyai/wasm-hostcall/wasm/internal/binary"
)

// Code accumulates an instruction sequence for a function body.
// Methods return the receiver so sequences read like WAT:
//
//	wasm.NewCode().LocalGet(0).Call(0).End()
type Code struct {
	w *binary.Writer
}

// NewCode creates an empty instruction sequence.
func NewCode() *Code {
	return &Code{w: binary.NewWriter()}
}

// Bytes returns the encoded instructions.
func (c *Code) Bytes() []byte {
	return c.w.Bytes()
}

func (c *Code) op(b byte) *Code {
	c.w.Byte(b)
	return c
}

func (c *Code) Unreachable() *Code { return c.op(OpUnreachable) }
func (c *Code) Nop() *Code         { return c.op(OpNop) }
func (c *Code) End() *Code         { return c.op(OpEnd) }
func (c *Code) Return() *Code      { return c.op(OpReturn) }
func (c *Code) Drop() *Code        { return c.op(OpDrop) }
func (c *Code) I32Eqz() *Code      { return c.op(OpI32Eqz) }
func (c *Code) I32Add() *Code      { return c.op(OpI32Add) }
func (c *Code) I32Sub() *Code      { return c.op(OpI32Sub) }
func (c *Code) I64Add() *Code      { return c.op(OpI64Add) }
func (c *Code) RefIsNull() *Code   { return c.op(OpRefIsNull) }

// Block opens a block without results.
func (c *Code) Block() *Code {
	c.w.Byte(OpBlock)
	c.w.Byte(BlockTypeEmpty)
	return c
}

// Loop opens a loop without results.
func (c *Code) Loop() *Code {
	c.w.Byte(OpLoop)
	c.w.Byte(BlockTypeEmpty)
	return c
}

// Br branches to the label at depth.
func (c *Code) Br(depth uint32) *Code {
	c.w.Byte(OpBr)
	c.w.WriteU32(depth)
	return c
}

// BrIf conditionally branches to the label at depth.
func (c *Code) BrIf(depth uint32) *Code {
	c.w.Byte(OpBrIf)
	c.w.WriteU32(depth)
	return c
}

// Call calls the function at idx in the function index space.
func (c *Code) Call(idx uint32) *Code {
	c.w.Byte(OpCall)
	c.w.WriteU32(idx)
	return c
}

// LocalGet pushes local idx.
func (c *Code) LocalGet(idx uint32) *Code {
	c.w.Byte(OpLocalGet)
	c.w.WriteU32(idx)
	return c
}

// LocalSet pops into local idx.
func (c *Code) LocalSet(idx uint32) *Code {
	c.w.Byte(OpLocalSet)
	c.w.WriteU32(idx)
	return c
}

func (c *Code) I32Const(v int32) *Code {
	c.w.Byte(OpI32Const)
	c.w.WriteS32(v)
	return c
}

func (c *Code) I64Const(v int64) *Code {
	c.w.Byte(OpI64Const)
	c.w.WriteS64(v)
	return c
}

func (c *Code) F32Const(v float32) *Code {
	c.w.Byte(OpF32Const)
	c.w.WriteU32LE(math.Float32bits(v))
	return c
}

func (c *Code) F64Const(v float64) *Code {
	c.w.Byte(OpF64Const)
	c.w.WriteU64LE(math.Float64bits(v))
	return c
}

// RefNull pushes a null reference of type t.
func (c *Code) RefNull(t ValType) *Code {
	c.w.Byte(OpRefNull)
	c.w.Byte(byte(t))
	return c
}

// Builder assembles a Module while keeping track of the function index
// space. Imports occupy the first indices, so every ImportFunc must come
// before the first Func.
type Builder struct {
	mod         Module
	funcImports uint32
	err         error
}

// NewBuilder creates an empty module builder.
func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) typeIndex(ft FuncType) uint32 {
	for i, t := range b.mod.Types {
		if t.Equal(ft) {
			return uint32(i)
		}
	}
	b.mod.Types = append(b.mod.Types, ft.Clone())
	return uint32(len(b.mod.Types) - 1)
}

// ImportFunc declares a function import and returns its function index.
func (b *Builder) ImportFunc(module, name string, ft FuncType) uint32 {
	if len(b.mod.Funcs) > 0 && b.err == nil {
		b.err = fmt.Errorf("import %s.%s declared after a function", module, name)
	}
	b.mod.Imports = append(b.mod.Imports, Import{
		Module: module,
		Name:   name,
		Desc:   ImportDesc{Kind: KindFunc, TypeIdx: b.typeIndex(ft)},
	})
	b.funcImports++
	return b.funcImports - 1
}

// ImportMemory declares a memory import.
func (b *Builder) ImportMemory(module, name string, min uint64) {
	b.mod.Imports = append(b.mod.Imports, Import{
		Module: module,
		Name:   name,
		Desc:   ImportDesc{Kind: KindMemory, Memory: &MemoryType{Limits: Limits{Min: min}}},
	})
}

// Func declares a function with the given body and returns its function index.
func (b *Builder) Func(ft FuncType, locals []LocalEntry, code *Code) uint32 {
	b.mod.Funcs = append(b.mod.Funcs, b.typeIndex(ft))
	b.mod.Code = append(b.mod.Code, FuncBody{Locals: locals, Code: code.Bytes()})
	return b.funcImports + uint32(len(b.mod.Funcs)) - 1
}

// Memory declares a memory of min pages and exports it under name when name is not empty.
func (b *Builder) Memory(name string, min uint64) {
	b.mod.Memories = append(b.mod.Memories, MemoryType{Limits: Limits{Min: min}})
	if name != "" {
		b.mod.Exports = append(b.mod.Exports, Export{Name: name, Kind: KindMemory, Idx: uint32(len(b.mod.Memories) - 1)})
	}
}

// ExportFunc exports the function at idx.
func (b *Builder) ExportFunc(name string, idx uint32) {
	b.mod.Exports = append(b.mod.Exports, Export{Name: name, Kind: KindFunc, Idx: idx})
}

// Start marks the function at idx as the start function.
func (b *Builder) Start(idx uint32) {
	b.mod.Start = &idx
}

// Module returns the assembled module.
func (b *Builder) Module() (*Module, error) {
	if b.err != nil {
		return nil, b.err
	}
	return &b.mod, nil
}

// Encode returns the binary encoding of the assembled module.
func (b *Builder) Encode() ([]byte, error) {
	m, err := b.Module()
	if err != nil {
		return nil, err
	}
	return m.Encode(), nil
}
