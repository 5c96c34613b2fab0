// Package errors provides structured error types for the gpulower library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). The Error type includes rich context: offending op kind, type
// name, and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseConvert, errors.KindTypeMismatch).
//		Op("memref.view").
//		Type("memref<2x4xi8>").
//		Detail("expected buffer source").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.UnsupportedType(errors.PhaseConvert, "vector<4xi32>")
//	err := errors.Unconverted("memref.copy", "no applicable pattern")
//
// Pattern match failure during legalization is NOT an error: patterns report
// (matched=false, err=nil) and the driver tries the next pattern. Errors from
// this package mark conditions that abort the current unit of work.
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
