// Package conversion lowers host-abstraction IR to the gpu dialect.
//
// # Pipeline
//
// A conversion run is configured by three explicit pieces (there is no
// global registry): a TypeConverter mapping source types to target
// types, a Target classifying ops as legal, illegal, or unknown, and a
// PatternSet of rewrite rules keyed by op kind. DefaultConfig wires the
// standard async lowering:
//
//   - NestAsyncPattern wraps maximal runs of already-legal ops into
//     gpu.async.execute regions carrying a (token, stream) pair.
//   - The memory patterns fold or rewrite memref view, reinterpret_cast,
//     alloc, alloca, and dealloc ops into gpu buffer ops.
//   - Signature and call/return patterns convert types at function
//     boundaries.
//
// # Match failure vs error
//
// A pattern whose precondition does not hold reports matched=false with
// a nil error; the driver tries the next pattern and, if nothing ever
// matches an explicitly illegal op, fails the function with an
// unconverted error. Errors are reserved for real faults such as a type
// with no defined byte size.
//
// # Transactionality
//
// All edits go through a Rewriter that records undo entries. Apply
// commits a function only after the fixpoint completes and the result
// verifies; any failure rolls the function back to its input state.
package conversion
