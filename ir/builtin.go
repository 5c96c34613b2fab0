package ir

// Builtin op kinds: the generic host-abstraction dialect that lowering
// consumes. The gpu package defines the target dialect.
const (
	KindFuncCall   = "func.call"   // attr "callee"; any operands/results
	KindFuncReturn = "func.return" // terminator; operands match signature

	KindConstant = "arith.constant" // attr "value" (int64); one result

	KindMemRefView            = "memref.view"             // operands: source, byte_shift, dynamic sizes...
	KindMemRefReinterpretCast = "memref.reinterpret_cast" // operands: source, dynamic offsets...; attr "static_offsets"
	KindMemRefAlloc           = "memref.alloc"
	KindMemRefAlloca          = "memref.alloca"
	KindMemRefDealloc         = "memref.dealloc"
)

// Call builds a func.call op.
func Call(callee string, operands []*Value, resultTypes []Type) *Op {
	op := NewOp(KindFuncCall, operands, resultTypes)
	op.SetAttr("callee", callee)
	return op
}

// Return builds a func.return terminator.
func Return(operands ...*Value) *Op {
	return NewOp(KindFuncReturn, operands, nil)
}

// Constant builds an arith.constant with the given result type.
func Constant(value int64, typ Type) *Op {
	op := NewOp(KindConstant, nil, []Type{typ})
	op.SetAttr("value", value)
	return op
}

// ConstantIndex builds an index-typed arith.constant.
func ConstantIndex(value int64) *Op {
	return Constant(value, Index)
}

// ConstantValue returns the constant attribute if v is produced by an
// arith.constant of the given type.
func ConstantValue(v *Value, typ Type) (int64, bool) {
	def := v.DefiningOp()
	if def == nil || def.Kind != KindConstant || !v.Type().Same(typ) {
		return 0, false
	}
	return def.IntAttr("value")
}

// View builds a memref.view reinterpreting source at a byte offset with
// a new element type/shape. dynamicSizes is usually empty for the
// statically shaped programs this library handles.
func View(source, byteShift *Value, dynamicSizes []*Value, result MemRefType) *Op {
	operands := append([]*Value{source, byteShift}, dynamicSizes...)
	return NewOp(KindMemRefView, operands, []Type{result})
}

// ReinterpretCast builds a memref.reinterpret_cast with static offsets
// and optional dynamic offset operands.
func ReinterpretCast(source *Value, staticOffsets []int64, dynamicOffsets []*Value, result MemRefType) *Op {
	operands := append([]*Value{source}, dynamicOffsets...)
	op := NewOp(KindMemRefReinterpretCast, operands, []Type{result})
	op.SetAttr("static_offsets", staticOffsets)
	return op
}

// Alloc builds a memref.alloc.
func Alloc(result MemRefType) *Op {
	return NewOp(KindMemRefAlloc, nil, []Type{result})
}

// Alloca builds a memref.alloca (stack allocation at the host level).
func Alloca(result MemRefType) *Op {
	return NewOp(KindMemRefAlloca, nil, []Type{result})
}

// Dealloc builds a memref.dealloc.
func Dealloc(buffer *Value) *Op {
	return NewOp(KindMemRefDealloc, []*Value{buffer}, nil)
}
