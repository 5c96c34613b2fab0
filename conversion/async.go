package conversion

import (
	"github.com/substratelabs/gpulower/gpu"
	"github.com/substratelabs/gpulower/ir"
)

// ParentStream returns the stream of the async region enclosing op: the
// second body argument of the surrounding gpu.async.execute. It returns
// nil when op is not nested in an async region, which callers treat as
// "no current stream" rather than an error.
func ParentStream(op *ir.Op) *ir.Value {
	parent := op.ParentOp()
	if !gpu.IsAsyncExecute(parent) {
		return nil
	}
	return gpu.Body(parent).Argument(1)
}

// ParentChain returns the completion token currently published by the
// enclosing async region: the operand of its gpu.async.yield terminator.
// Nil when op is not inside an async region.
func ParentChain(op *ir.Op) *ir.Value {
	parent := op.ParentOp()
	if !gpu.IsAsyncExecute(parent) {
		return nil
	}
	return gpu.Body(parent).Terminator().Operand(0)
}

// SetParentChain redirects the enclosing region's yield to publish the
// given token. The edit goes through the rewriter so it participates in
// commit/rollback. No-op when op is not inside an async region.
func SetParentChain(op *ir.Op, chain *ir.Value, rw *Rewriter) {
	parent := op.ParentOp()
	if !gpu.IsAsyncExecute(parent) {
		return
	}
	rw.SetOperands(gpu.Body(parent).Terminator(), chain)
}
