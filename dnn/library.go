package dnn

import (
	"github.com/substratelabs/gpulower"
)

// Opaque vendor objects. The library implementation defines the
// concrete types; the binding never looks inside them.
type (
	DeviceContext     any
	Stream            any
	Handle            any
	PoolingDescriptor any
	TensorDescriptor  any
)

// Library is the vendor DNN primitives binding (a cuDNN equivalent).
// Every call except SetContextCurrent assumes the device context has
// been made current on the calling goroutine; the Binding enforces
// that discipline.
type Library interface {
	SetContextCurrent(ctx DeviceContext) error

	Create() (Handle, error)
	SetStream(h Handle, stream Stream) error

	CreatePoolingDescriptor(mode PoolingMode, nan NanPropagation, windowDims, paddings, strides []int32) (PoolingDescriptor, error)
	CreateTensorDescriptor(dtype DataType, dims, strides []int32) (TensorDescriptor, error)

	PoolingForward(h Handle, desc PoolingDescriptor, alpha float64,
		xDesc TensorDescriptor, x gpulower.Buffer, beta float64,
		yDesc TensorDescriptor, y gpulower.Buffer) error
	PoolingBackward(h Handle, desc PoolingDescriptor, alpha float64,
		yDesc TensorDescriptor, y gpulower.Buffer,
		dyDesc TensorDescriptor, dy gpulower.Buffer,
		xDesc TensorDescriptor, x gpulower.Buffer, beta float64,
		dxDesc TensorDescriptor, dx gpulower.Buffer) error

	ConvolutionForward(h Handle, alpha float64,
		xDesc TensorDescriptor, x gpulower.Buffer,
		wDesc TensorDescriptor, w gpulower.Buffer, beta float64,
		yDesc TensorDescriptor, y gpulower.Buffer) error
	ConvolutionBackwardData(h Handle, alpha float64,
		wDesc TensorDescriptor, w gpulower.Buffer,
		dyDesc TensorDescriptor, dy gpulower.Buffer, beta float64,
		dxDesc TensorDescriptor, dx gpulower.Buffer) error
	ConvolutionBackwardFilter(h Handle, alpha float64,
		xDesc TensorDescriptor, x gpulower.Buffer,
		dyDesc TensorDescriptor, dy gpulower.Buffer, beta float64,
		dwDesc TensorDescriptor, dw gpulower.Buffer) error
	ConvolutionBiasActivationForward(h Handle, alpha1 float64,
		xDesc TensorDescriptor, x gpulower.Buffer,
		wDesc TensorDescriptor, w gpulower.Buffer, alpha2 float64,
		zDesc TensorDescriptor, z gpulower.Buffer,
		biasDesc TensorDescriptor, bias gpulower.Buffer,
		yDesc TensorDescriptor, y gpulower.Buffer) error
}
