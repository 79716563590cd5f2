// Package wasm describes WebAssembly value and function types and encodes
// small core modules.
//
// The bridge only moves the five value types that can cross the host
// boundary:
//
//	ValI32     i32        int32 on the host
//	ValI64     i64        int64 on the host
//	ValF32     f32        float32 on the host
//	ValF64     f64        float64 on the host
//	ValExtern  externref  any host value, nil for ref.null
//
// The byte values are the binary encodings, identical to wazero's
// api.ValueType, so conversion between the two is a plain cast.
//
// # Signatures
//
// FuncType is an ordered list of params and results. Signatures can be
// written as text using core names or WIT primitive names:
//
//	ft, err := wasm.ParseFuncType("(a: s32, b: f64) -> s64")
//
// # Encoding
//
// Builder assembles a module from imports, functions and exports without a
// text format front end:
//
//	b := wasm.NewBuilder()
//	log := b.ImportFunc("env", "log", wasm.FuncType{Params: []wasm.ValType{wasm.ValI32}})
//	run := b.Func(wasm.FuncType{}, nil, wasm.NewCode().I32Const(42).Call(log).End())
//	b.ExportFunc("run", run)
//	bin, err := b.Encode()
//
// The encoder does not validate; wazero validates when the module is compiled.
package wasm
