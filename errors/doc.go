// Package errors provides structured error types for the host call bridge.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the value position (side and index), Go and core type
// names, arity counts, the function name and the cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseCall, errors.KindTypeMismatch).
//		At(errors.SideParams, 1).
//		GoType("string").
//		WasmType("i32").
//		Detail("cannot convert string to integer").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.TypeConversion(errors.SideParams, 1, "string", "i32")
//	err := errors.Arity(errors.SideResults, 1, 2)
//
// All errors implement the standard error interface and support errors.Is/As.
// Errors returned by host callables are never wrapped: they reach the
// original caller unchanged.
package errors
