// Package errors provides structured error types for wasm-vmctx.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries a path naming the region, index or field involved, the
// offending value, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseLayout, errors.KindOutOfRange).
//		Path("defined_memories", "3").
//		Value(3).
//		Detail("index 3 out of range (count 1)").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.OutOfRange(path, 3, 1)
//	err := errors.ArithmeticOverflow(path, "count * record size")
//
// Layout failures are never transient. Callers abort the compilation unit that
// produced them; nothing in this module retries.
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
