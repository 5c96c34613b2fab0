// Package gpu defines the GPU dialect: the op set and handle types the
// lowering passes produce.
//
// # Op set
//
// Driver primitives map one-to-one onto ops: devices, contexts, streams,
// events, allocators, buffers, modules, and kernel launches. Asynchronous
// ordering is explicit: ops that enqueue work take and produce a
// completion token (chain), and cross-stream ordering requires an event
// record/wait pair. See the Kind constants for the full set.
//
// Two op families exist only during conversion:
//
//   - gpu.async.execute groups consecutive already-lowered ops into a
//     region executed against a (token, stream) pair; its gpu.async.yield
//     terminator publishes the outgoing token.
//   - gpu.conversion.cast materializes values at boundaries between
//     converted and not-yet-converted types.
//
// gpu.alloc and gpu.dealloc are the synchronous-on-current-stream
// allocation forms produced by the memory rewriter; a later lowering
// stage introduces async dependencies for them.
//
// # Semantics encoded, not executed
//
// This package only describes the target program. Host-side execution of
// the dialect for testing lives in the interp package; real device
// dispatch is a consumer concern.
package gpu
