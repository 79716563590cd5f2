// Package transcoder converts values between Go and core WebAssembly stack
// slots.
//
// Every value crossing the host boundary is one raw uint64 slot tagged by a
// wasm.ValType. Lift turns a slot into a Go value, Lower turns a Go value
// into a slot:
//
//	Kind        Lift result   Lower accepts
//	────────────────────────────────────────────────────────────────
//	i32         int32         int32, uint32, int8/16, uint8/16, int, uint, int64, uint64 (range checked)
//	i64         int64         any Go integer
//	f32         float32       float32, float64 (exact only)
//	f64         float64       float64, float32
//	externref   host object   anything; nil is the null reference
//
// A Value may be passed to Lower in place of a Go value. Its kind must match
// the declared kind.
//
// # Externref identity
//
// Lower stores host objects in a RefTable and hands the guest the handle.
// Lift resolves the handle back to the exact interface value that was
// stored, so pointers survive a round trip unchanged.
//
// # Errors
//
// LowerValues and LiftValues report the side (params or results) and the
// 0-based position of a value that cannot be converted. Count mismatches are
// reported as arity errors before any value is converted.
package transcoder
