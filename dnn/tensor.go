package dnn

import (
	"github.com/substratelabs/gpulower/errors"
)

// DataType identifies the element type of a tensor.
type DataType uint32

const (
	Int8 DataType = iota
	Int32
	Int64
	Float32
	Float64
)

func (d DataType) String() string {
	switch d {
	case Int8:
		return "i8"
	case Int32:
		return "i32"
	case Int64:
		return "i64"
	case Float32:
		return "f32"
	case Float64:
		return "f64"
	}
	return "unknown"
}

// HostTensor is a dense host-memory tensor handed to the binding as a
// parameter vector (window dims, paddings, strides) or payload
// description. Data holds the typed element slice matching DType, e.g.
// []int32 for Int32.
type HostTensor struct {
	DType DataType
	Dims  []int64
	Data  any
}

// Int32Data returns the tensor's elements, failing fast unless the
// tensor is rank 1 with int32 elements. Parameter vectors of the
// binding layer all go through this check.
func Int32Data(t *HostTensor, what string) ([]int32, error) {
	if len(t.Dims) != 1 {
		return nil, errors.RankMismatch(errors.PhaseDnn, what, len(t.Dims))
	}
	if t.DType != Int32 {
		return nil, errors.TypeMismatch(errors.PhaseDnn, what, Int32.String(), t.DType.String())
	}
	data, ok := t.Data.([]int32)
	if !ok {
		return nil, errors.TypeMismatch(errors.PhaseDnn, what, "[]int32", "mismatched backing slice")
	}
	return data, nil
}

// PoolingMode selects the pooling reduction.
type PoolingMode uint32

const (
	PoolingMax PoolingMode = iota
	PoolingAverageCountIncludePadding
	PoolingAverageCountExcludePadding
	PoolingMaxDeterministic
)

// IntToPoolingMode casts a wire integer to a PoolingMode, rejecting
// out-of-range values.
func IntToPoolingMode(v uint32) (PoolingMode, error) {
	if v > uint32(PoolingMaxDeterministic) {
		return 0, errors.InvalidEnum(errors.PhaseDnn, "pooling mode", v)
	}
	return PoolingMode(v), nil
}

// NanPropagation selects whether NaN inputs propagate through pooling.
type NanPropagation uint32

const (
	NotPropagateNan NanPropagation = iota
	PropagateNan
)

// IntToNanPropagation casts a wire integer to a NanPropagation,
// rejecting out-of-range values.
func IntToNanPropagation(v uint32) (NanPropagation, error) {
	if v > uint32(PropagateNan) {
		return 0, errors.InvalidEnum(errors.PhaseDnn, "nan propagation", v)
	}
	return NanPropagation(v), nil
}
