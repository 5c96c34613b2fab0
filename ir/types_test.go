package ir

import "testing"

// TestTypePrinting tests the printed form of each type.
func TestTypePrinting(t *testing.T) {
	tests := []struct {
		typ  Type
		want string
	}{
		{I32, "i32"},
		{UI64, "ui64"},
		{F64, "f64"},
		{Index, "index"},
		{ComplexType{Elem: F32}, "complex<f32>"},
		{MemRefType{Elem: I8, Dims: []int64{2, 4}}, "memref<2x4xi8>"},
		{MemRefType{Elem: F32, Dims: nil}, "memref<f32>"},
		{FuncType{Params: []Type{I32}, Results: []Type{F32}}, "(i32) -> (f32)"},
	}

	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

// TestTypeSame tests structural equality.
func TestTypeSame(t *testing.T) {
	a := MemRefType{Elem: I8, Dims: []int64{2, 4}}
	b := MemRefType{Elem: I8, Dims: []int64{2, 4}}
	c := MemRefType{Elem: I8, Dims: []int64{4, 2}}

	if !a.Same(b) {
		t.Errorf("identical memrefs not Same")
	}
	if a.Same(c) {
		t.Errorf("different shapes reported Same")
	}
	if a.Same(I8) {
		t.Errorf("memref Same as scalar")
	}
	if !I32.Same(IntType{Bits: 32}) {
		t.Errorf("i32 not Same as itself")
	}
	if I32.Same(UI64) {
		t.Errorf("i32 Same as ui64")
	}
}

// TestMemRefNumElements tests element counting including rank 0.
func TestMemRefNumElements(t *testing.T) {
	if n := (MemRefType{Elem: I8, Dims: []int64{2, 4}}).NumElements(); n != 8 {
		t.Errorf("NumElements(2x4) = %d, want 8", n)
	}
	if n := (MemRefType{Elem: F32}).NumElements(); n != 1 {
		t.Errorf("NumElements(rank0) = %d, want 1", n)
	}
}
