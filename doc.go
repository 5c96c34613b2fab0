// Package gpulower lowers a generic asynchronous host IR into an
// explicit GPU dialect: device, context, stream, event, buffer, module,
// and kernel-launch ops threaded by completion tokens.
//
// # Architecture
//
//	gpulower
//	├── errors/       structured Phase/Kind error values
//	├── ir/           IR substrate: types, values, ops, blocks, regions
//	├── gpu/          the GPU dialect (op set, handle types, verification)
//	├── conversion/   async region extraction, memory-op rewriting, and
//	│                 the type conversion driver (the lowering itself)
//	├── dnn/          binding layer for a vendor DNN primitives library
//	├── interp/       host-side interpreter for the produced dialect
//	└── cmd/gpulower  CLI: run the pipeline over demo programs
//
// The root package holds the buffer and allocator interfaces shared by
// the interpreter and the DNN binding.
//
// # Lowering model
//
// A conversion run wraps maximal runs of already-lowered ops into
// gpu.async.execute regions carrying a (token, stream) pair, rewrites
// generic memory ops into gpu buffer ops, and converts types at call
// and function boundaries. Each function converts transactionally:
// either the whole rewrite commits or the function is left untouched.
// See the conversion package for the driver and pattern set.
package gpulower
