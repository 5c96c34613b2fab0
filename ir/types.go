package ir

import (
	"fmt"
	"strings"
)

// Type is the interface implemented by all IR types.
//
// The core type set covers scalars, shaped aggregates, and function
// signatures. Dialects contribute opaque handle types by implementing
// this interface (see the gpu package).
type Type interface {
	// String returns the printed form, e.g. "i32" or "memref<2x4xi8>".
	String() string
	// Same reports whether the receiver and other are the same type.
	Same(other Type) bool
}

// IntType is a fixed-width integer type.
type IntType struct {
	Bits     uint32
	Unsigned bool
}

func (t IntType) String() string {
	if t.Unsigned {
		return fmt.Sprintf("ui%d", t.Bits)
	}
	return fmt.Sprintf("i%d", t.Bits)
}

func (t IntType) Same(other Type) bool {
	o, ok := other.(IntType)
	return ok && o == t
}

// FloatType is an IEEE floating point type.
type FloatType struct {
	Bits uint32
}

func (t FloatType) String() string { return fmt.Sprintf("f%d", t.Bits) }

func (t FloatType) Same(other Type) bool {
	o, ok := other.(FloatType)
	return ok && o == t
}

// IndexType is the platform-sized index type used for offsets and sizes.
type IndexType struct{}

func (IndexType) String() string { return "index" }

func (IndexType) Same(other Type) bool {
	_, ok := other.(IndexType)
	return ok
}

// ComplexType is a complex number type over a float or integer element.
type ComplexType struct {
	Elem Type
}

func (t ComplexType) String() string { return fmt.Sprintf("complex<%s>", t.Elem) }

func (t ComplexType) Same(other Type) bool {
	o, ok := other.(ComplexType)
	return ok && o.Elem.Same(t.Elem)
}

// MemRefType is the generic host-abstraction buffer type: a shaped view of
// contiguous memory with a static shape. This is the type the memory-op
// rewriter converts into gpu buffer handles.
type MemRefType struct {
	Elem Type
	Dims []int64
}

func (t MemRefType) String() string {
	var b strings.Builder
	b.WriteString("memref<")
	for _, d := range t.Dims {
		fmt.Fprintf(&b, "%dx", d)
	}
	b.WriteString(t.Elem.String())
	b.WriteByte('>')
	return b.String()
}

func (t MemRefType) Same(other Type) bool {
	o, ok := other.(MemRefType)
	if !ok || !o.Elem.Same(t.Elem) || len(o.Dims) != len(t.Dims) {
		return false
	}
	for i := range t.Dims {
		if o.Dims[i] != t.Dims[i] {
			return false
		}
	}
	return true
}

// NumElements returns the product of the static dimensions.
// A rank-0 memref holds one element.
func (t MemRefType) NumElements() int64 {
	n := int64(1)
	for _, d := range t.Dims {
		n *= d
	}
	return n
}

// FuncType is a function signature.
type FuncType struct {
	Params  []Type
	Results []Type
}

func (t FuncType) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for i, p := range t.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.String())
	}
	b.WriteString(") -> (")
	for i, r := range t.Results {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(r.String())
	}
	b.WriteByte(')')
	return b.String()
}

func (t FuncType) Same(other Type) bool {
	o, ok := other.(FuncType)
	if !ok {
		return false
	}
	return SameTypes(o.Params, t.Params) && SameTypes(o.Results, t.Results)
}

// SameTypes reports whether two type sequences are element-wise identical.
func SameTypes(a, b []Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Same(b[i]) {
			return false
		}
	}
	return true
}

// Convenience constructors for common scalar types.
var (
	I8    = IntType{Bits: 8}
	I32   = IntType{Bits: 32}
	I64   = IntType{Bits: 64}
	UI64  = IntType{Bits: 64, Unsigned: true}
	F32   = FloatType{Bits: 32}
	F64   = FloatType{Bits: 64}
	Index = IndexType{}
)
