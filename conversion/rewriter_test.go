package conversion

import (
	"testing"

	"go.uber.org/zap"

	"github.com/substratelabs/gpulower/gpu"
	"github.com/substratelabs/gpulower/ir"
)

// TestSetValueTypeKeepsOriginal tests that retyping a value through the
// rewriter preserves its pre-rewrite type, so size computations over the
// source-level memref stay possible after the value carries a buffer
// type.
func TestSetValueTypeKeepsOriginal(t *testing.T) {
	memref := ir.MemRefType{Elem: ir.I8, Dims: []int64{8}}
	f := ir.NewFunc("main", ir.FuncType{Params: []ir.Type{memref}})
	arg := f.EntryBlock().Argument(0)

	rw := NewRewriter(f)
	rw.SetValueType(arg, gpu.BufferType{})

	if !arg.Type().Same(gpu.BufferType{}) {
		t.Fatalf("value type = %v, want gpu.buffer", arg.Type())
	}
	orig, ok := rw.OriginalType(arg).(ir.MemRefType)
	if !ok {
		t.Fatalf("original type = %v, want %v", rw.OriginalType(arg), memref)
	}
	if size, err := TypeSizeBytes(orig); err != nil || size != 8 {
		t.Errorf("TypeSizeBytes(original) = %d, %v, want 8", size, err)
	}
}

// TestSetValueTypeSameTypeNotRecorded tests that a retype to the same
// type leaves no original entry behind.
func TestSetValueTypeSameTypeNotRecorded(t *testing.T) {
	f := ir.NewFunc("main", ir.FuncType{Params: []ir.Type{gpu.BufferType{}}})
	arg := f.EntryBlock().Argument(0)

	rw := NewRewriter(f)
	rw.SetValueType(arg, gpu.BufferType{})

	if len(rw.original) != 0 {
		t.Errorf("recorded %d original types for an identity retype, want none", len(rw.original))
	}
}

// TestSetValueTypeRollback tests that rollback restores both the value's
// type and the original-type map.
func TestSetValueTypeRollback(t *testing.T) {
	memref := ir.MemRefType{Elem: ir.I8, Dims: []int64{8}}
	f := ir.NewFunc("main", ir.FuncType{Params: []ir.Type{memref}})
	arg := f.EntryBlock().Argument(0)

	rw := NewRewriter(f)
	rw.SetValueType(arg, gpu.BufferType{})
	rw.Rollback()

	if !arg.Type().Same(memref) {
		t.Errorf("value type after rollback = %v, want %v", arg.Type(), memref)
	}
	if !rw.OriginalType(arg).Same(memref) {
		t.Errorf("original type after rollback = %v, want %v", rw.OriginalType(arg), memref)
	}
}

// TestSetLoggerInstalls tests that SetLogger replaces the package
// default.
func TestSetLoggerInstalls(t *testing.T) {
	defer SetLogger(zap.NewNop())

	l := zap.NewExample()
	SetLogger(l)
	if Logger() != l {
		t.Errorf("Logger() did not return the installed logger")
	}
}
