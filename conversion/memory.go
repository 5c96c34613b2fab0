package conversion

import (
	"github.com/substratelabs/gpulower/errors"
	"github.com/substratelabs/gpulower/gpu"
	"github.com/substratelabs/gpulower/ir"
)

// TypeSizeBytes returns the byte size of a value of the given type.
// Integer and float widths round up to whole bytes, complex doubles its
// element size, and shaped types multiply the element size by the
// element count. An unsupported type is a configuration error, not a
// match failure; callers must propagate it.
func TypeSizeBytes(t ir.Type) (uint64, error) {
	switch t := t.(type) {
	case ir.IntType:
		return uint64(t.Bits+7) / 8, nil
	case ir.FloatType:
		return uint64(t.Bits+7) / 8, nil
	case ir.IndexType:
		return 8, nil
	case ir.ComplexType:
		elem, err := TypeSizeBytes(t.Elem)
		if err != nil {
			return 0, err
		}
		return 2 * elem, nil
	case ir.MemRefType:
		elem, err := TypeSizeBytes(t.Elem)
		if err != nil {
			return 0, err
		}
		return elem * uint64(t.NumElements()), nil
	}
	return 0, errors.UnsupportedType(errors.PhaseConvert, t.String())
}

// FoldViewPattern converts memref.view over an already-converted buffer
// source. A view at a constant zero offset whose byte size equals the
// source's byte size aliases the whole allocation and folds away
// entirely; any other view becomes an explicit gpu.mem.view with the
// offset widened to ui64 and the size materialized as a constant.
type FoldViewPattern struct{}

func (FoldViewPattern) Name() string { return "fold-memref-view" }

func (FoldViewPattern) MatchAndRewrite(op *ir.Op, rw *Rewriter) (bool, error) {
	source := op.Operand(0)
	if !source.Type().Same(gpu.BufferType{}) {
		return false, nil
	}
	if op.NumOperands() > 2 {
		// Dynamic sizes are not handled.
		return false, nil
	}

	dstSize, err := TypeSizeBytes(op.Result(0).Type())
	if err != nil {
		return false, err
	}

	// The source's pre-conversion memref type carries the allocation
	// size. A source that never was a memref has no byte size; such a
	// view cannot fold and takes the explicit path below.
	srcSize, sized := uint64(0), false
	if srcType, ok := rw.OriginalType(source).(ir.MemRefType); ok {
		srcSize, err = TypeSizeBytes(srcType)
		if err != nil {
			return false, err
		}
		sized = true
	}

	offset := op.Operand(1)
	if value, isConst := ir.ConstantValue(offset, ir.Index); isConst && value == 0 && sized && srcSize == dstSize {
		rw.ReplaceOp(op, source)
		return true, nil
	}

	cast := gpu.ConversionCast(offset, ir.UI64)
	size := gpu.ConstantU64(dstSize)
	view := gpu.MemView(source, cast.Result(0), size.Result(0))
	for _, created := range []*ir.Op{cast, size, view} {
		if err := rw.InsertBefore(op, created); err != nil {
			return false, err
		}
	}
	rw.ReplaceOp(op, view.Result(0))
	return true, nil
}

// FoldReinterpretCastPattern removes memref.reinterpret_cast ops whose
// offsets are all statically zero; buffers carry no layout, so such a
// cast is the identity. Nonzero or dynamic offsets do not match.
type FoldReinterpretCastPattern struct{}

func (FoldReinterpretCastPattern) Name() string { return "fold-memref-reinterpret-cast" }

func (FoldReinterpretCastPattern) MatchAndRewrite(op *ir.Op, rw *Rewriter) (bool, error) {
	source := op.Operand(0)
	if !source.Type().Same(gpu.BufferType{}) {
		return false, nil
	}
	if op.NumOperands() > 1 {
		// Dynamic offsets are not handled.
		return false, nil
	}
	if raw, ok := op.Attr("static_offsets"); ok {
		for _, offset := range raw.([]int64) {
			if offset != 0 {
				return false, nil
			}
		}
	}
	rw.ReplaceOp(op, source)
	return true, nil
}

// RewriteAllocPattern turns memref.alloc and memref.alloca into
// gpu.alloc with no async dependencies. The result keeps the original
// memref type; a later lowering stage converts it together with the
// rest of the op's users.
type RewriteAllocPattern struct{}

func (RewriteAllocPattern) Name() string { return "rewrite-memref-alloc" }

func (RewriteAllocPattern) MatchAndRewrite(op *ir.Op, rw *Rewriter) (bool, error) {
	alloc := gpu.Alloc(op.Result(0).Type())
	if err := rw.InsertBefore(op, alloc); err != nil {
		return false, err
	}
	rw.ReplaceOp(op, alloc.Result(0))
	return true, nil
}

// RewriteDeallocPattern turns memref.dealloc into gpu.dealloc with no
// async token.
type RewriteDeallocPattern struct{}

func (RewriteDeallocPattern) Name() string { return "rewrite-memref-dealloc" }

func (RewriteDeallocPattern) MatchAndRewrite(op *ir.Op, rw *Rewriter) (bool, error) {
	dealloc := gpu.Dealloc(op.Operand(0))
	if err := rw.InsertBefore(op, dealloc); err != nil {
		return false, err
	}
	rw.EraseOp(op)
	return true, nil
}
