// Package ir provides the in-memory IR substrate the lowering passes
// operate on: types, SSA values, ops, blocks, regions, functions, and
// modules.
//
// # Structure
//
// An Op is a kind-tagged instruction node with operand and result values,
// attributes, and optional nested regions. Blocks own ordered op lists;
// block order defines execution order for legality scanning. Ownership
// invariant: an op belongs to exactly one block at a time, and the Block
// mutation methods (Append, InsertBefore, Remove, MoveRange) transfer
// ownership atomically.
//
// Dialects contribute op kinds (plain strings, e.g. "gpu.mem.copy") and
// opaque handle types by implementing the Type interface. The gpu package
// defines the GPU dialect on top of this substrate.
//
// # Traversal
//
// Func.WalkBlocks and Func.WalkOps snapshot the visit set before visiting,
// so passes may create blocks and ops while walking without invalidating
// the traversal. Passes that move ops follow a two-phase discipline:
// compute boundaries read-only over a snapshot, then apply mutations.
//
// # Printing
//
// Print/Sprint produce a compact one-op-per-line textual form for logs and
// the interactive inspector. There is no parser; programs are constructed
// through the builders here and in the gpu package.
package ir
