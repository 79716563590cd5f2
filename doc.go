// Package hostcall exposes Go callables as WebAssembly imports and lets them
// call back into the guest.
//
// The bridge runs guest code on wazero. It converts values at the boundary,
// keeps host errors intact while they travel through guest frames, and
// guarantees that at most one host call borrows the shared store data at a
// time.
//
// # Architecture Overview
//
//	hostcall/            Root package with the Memory interface
//	├── runtime/         High-level API: register Go funcs, load, instantiate, call
//	├── linker/          Name and version based import resolution
//	├── engine/          Store, Caller, Func, call trampoline, Instance
//	├── transcoder/      Value model: Lift (guest to Go) and Lower (Go to guest)
//	├── resource/        Handle table behind externref values
//	├── wasm/            Value and function types, binary module builder
//	├── errors/          Structured error types for debugging
//	└── cmd/run/         Command line runner with an interactive mode
//
// # Quick Start
//
//	rt, err := runtime.New(ctx, runtime.WithData(&state))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rt.Close(ctx)
//
//	err = rt.RegisterFunc("env", "add", func(a, b int32) int32 { return a + b })
//
//	mod, err := rt.LoadWASM(ctx, wasmBytes)
//	inst, err := mod.Instantiate(ctx)
//	results, err := inst.Call(ctx, "run", int32(2))
//
// # Lower Level API
//
// The engine package exposes the pieces directly:
//
//	eng, _ := engine.NewEngine(ctx, engine.Config{})
//	store := engine.NewStore(eng, &state)
//	fn, _ := engine.NewFunc(store, wasm.NewFuncType(
//	    []wasm.ValType{wasm.ValI32}, nil,
//	), func(ctx context.Context, c *engine.Caller, args []any) (any, error) {
//	    data, err := c.Data()
//	    ...
//	}, engine.WithCaller())
//	mod, _ := eng.CompileModule(ctx, wasmBytes)
//	inst, _ := engine.NewInstance(ctx, store, mod, []*engine.Func{fn})
//	results, err := inst.Invoke(ctx, "run")
//
// # Errors
//
// An error returned by a host callable is returned unchanged by the host
// call that started the guest execution, however many guest frames it
// crossed. Bridge failures are *errors.Error values carrying a phase, a kind
// and, for conversion failures, the position of the offending value.
//
// # Thread Safety
//
// An Engine and a compiled Module are safe for concurrent use. A Store and
// everything bound to it (Func, Instance, Caller) belongs to one goroutine.
package hostcall
