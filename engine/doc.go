// Package engine runs guest modules on wazero and bridges calls between
// guest code and Go.
//
// # Objects
//
//	Engine    compiles modules, owns the shared compilation cache
//	Module    a compiled guest module
//	Store     execution context: host payload, externref table, instances
//	Func      a Go callable bound to a signature in a store
//	Instance  an instantiated module, imports bound positionally to Funcs
//	Caller    per-invocation handle passed to callables created WithCaller
//
// # Call Flow
//
//	guest ──call import──► trampoline ──Lift args──► Callable
//	                           │                        │
//	                           │◄──normalise, Lower─────┘
//	guest ◄──raw results───────┘
//
// The trampoline checks argument count, lifts each argument, borrows the
// store payload for the duration of the callable, shapes the result into
// the declared number of values and lowers each one. Conversion failures
// name the offending position.
//
// # Borrowing
//
// At most one callable holds the payload at a time. Calls that enter guest
// code from the host (Instance.Invoke, Func.Call, the start function run by
// NewInstance) lend the borrow to the nested call and take it back when it
// returns, so host and guest frames can alternate to any depth:
//
//	host ─Invoke─► guest A ─► callable F ─Invoke─► guest B ─► callable G
//
// Store.WithBorrow called inside a callable fails with an already-borrowed
// error. A Caller used after its invocation returned fails with a
// caller-expired error.
//
// # Errors
//
// When a callable returns an error, the trampoline records it in the store
// and unwinds the guest frames. The host call that entered guest code
// returns the recorded error itself, so both == and errors.Is hold against
// the value the callable returned. Guest traps that did not come from a
// host function are returned as trap errors wrapping wazero's error.
package engine
