// Package runtime provides the high-level API for running core WebAssembly
// modules against Go host functions.
//
// # Quick Start
//
//	ctx := context.Background()
//	rt, err := runtime.New(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rt.Close(ctx)
//
//	// Register a host function, signature inferred from the Go type
//	rt.RegisterFunc("env", "add", func(a, b int32) int32 { return a + b })
//
//	mod, err := rt.LoadWASM(ctx, wasmBytes)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	inst, err := mod.Instantiate(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer inst.Close(ctx)
//
//	result, err := inst.Call(ctx, "run", int32(2))
//
// # Host Functions
//
// RegisterFunc infers the core signature from the Go function:
//
//	int8/16/32, uint8/16/32   i32
//	int, int64, uint, uint64  i64
//	float32                   f32
//	float64                   f64
//	anything else             externref
//
// A leading context.Context and *engine.Caller are passed through and are
// not part of the signature, nor is a trailing error result.
//
// RegisterCallable takes an explicit wasm.FuncType and any implementation
// engine.NewFunc accepts, including engine.Callable values.
//
// Struct hosts register every exported method under their namespace:
//
//	type Env struct{}
//
//	func (Env) Namespace() string      { return "env" }
//	func (Env) PrintI32(v int32)       { fmt.Println(v) }  // env#print-i32
//
// # Versioned Namespaces
//
// Namespaces may carry a semantic version ("wasi:io@0.2.1"). With semver
// matching enabled (the default) an import of "env@1.2.0" resolves against
// the highest compatible definition, e.g. "env@1.4.1".
package runtime
