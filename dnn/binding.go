package dnn

import (
	"go.uber.org/zap"

	"github.com/substratelabs/gpulower"
	"github.com/substratelabs/gpulower/errors"
)

// Config configures a Binding.
type Config struct {
	Library Library
	Logger  *zap.Logger
}

// Binding wraps a vendor Library with the calling discipline the
// library requires: the device context is made current before every
// underlying call, and a failure from that step is forwarded before
// anything else runs.
type Binding struct {
	lib Library
	log *zap.Logger
}

// NewBinding creates a binding. A nil logger falls back to no-op.
func NewBinding(cfg Config) (*Binding, error) {
	if cfg.Library == nil {
		return nil, errors.InvalidInput(errors.PhaseDnn, "config requires a library")
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Binding{lib: cfg.Library, log: log}, nil
}

// current makes ctx current, wrapping the failure with binding context.
func (b *Binding) current(ctx DeviceContext, op string) error {
	if err := b.lib.SetContextCurrent(ctx); err != nil {
		return errors.New(errors.PhaseDnn, errors.KindInvalidInput).
			Op(op).
			Cause(err).
			Detail("failed to make device context current").
			Build()
	}
	return nil
}

// Create creates a library handle bound to the given stream.
func (b *Binding) Create(ctx DeviceContext, stream Stream) (Handle, error) {
	if err := b.current(ctx, "dnn.create"); err != nil {
		return nil, err
	}
	h, err := b.lib.Create()
	if err != nil {
		return nil, err
	}
	if err := b.lib.SetStream(h, stream); err != nil {
		return nil, err
	}
	b.log.Debug("created dnn handle")
	return h, nil
}

// CreatePoolingDescriptor validates the parameter vectors and enum
// values, then creates the descriptor. Window, padding, and stride
// tensors must be rank 1 with int32 elements.
func (b *Binding) CreatePoolingDescriptor(ctx DeviceContext, mode, nan uint32, windowDims, paddings, strides *HostTensor) (PoolingDescriptor, error) {
	if err := b.current(ctx, "dnn.create_pooling_descriptor"); err != nil {
		return nil, err
	}
	poolingMode, err := IntToPoolingMode(mode)
	if err != nil {
		return nil, err
	}
	nanPropagation, err := IntToNanPropagation(nan)
	if err != nil {
		return nil, err
	}
	window, err := Int32Data(windowDims, "window dimensions")
	if err != nil {
		return nil, err
	}
	padding, err := Int32Data(paddings, "paddings")
	if err != nil {
		return nil, err
	}
	stride, err := Int32Data(strides, "strides")
	if err != nil {
		return nil, err
	}
	return b.lib.CreatePoolingDescriptor(poolingMode, nanPropagation, window, padding, stride)
}

// CreateTensorDescriptor validates the dims and strides vectors and
// creates the descriptor.
func (b *Binding) CreateTensorDescriptor(ctx DeviceContext, dtype DataType, dims, strides *HostTensor) (TensorDescriptor, error) {
	if err := b.current(ctx, "dnn.create_tensor_descriptor"); err != nil {
		return nil, err
	}
	dimValues, err := Int32Data(dims, "dimensions")
	if err != nil {
		return nil, err
	}
	strideValues, err := Int32Data(strides, "strides")
	if err != nil {
		return nil, err
	}
	return b.lib.CreateTensorDescriptor(dtype, dimValues, strideValues)
}

// PoolingForward computes y = alpha * pool(x) + beta * y.
func (b *Binding) PoolingForward(ctx DeviceContext, h Handle, desc PoolingDescriptor, alpha float64,
	xDesc TensorDescriptor, x gpulower.Buffer, beta float64,
	yDesc TensorDescriptor, y gpulower.Buffer) error {
	if err := b.current(ctx, "dnn.pooling_forward"); err != nil {
		return err
	}
	return b.lib.PoolingForward(h, desc, alpha, xDesc, x, beta, yDesc, y)
}

// PoolingBackward computes dx = alpha * poolGrad(y, dy, x) + beta * dx.
func (b *Binding) PoolingBackward(ctx DeviceContext, h Handle, desc PoolingDescriptor, alpha float64,
	yDesc TensorDescriptor, y gpulower.Buffer,
	dyDesc TensorDescriptor, dy gpulower.Buffer,
	xDesc TensorDescriptor, x gpulower.Buffer, beta float64,
	dxDesc TensorDescriptor, dx gpulower.Buffer) error {
	if err := b.current(ctx, "dnn.pooling_backward"); err != nil {
		return err
	}
	return b.lib.PoolingBackward(h, desc, alpha, yDesc, y, dyDesc, dy, xDesc, x, beta, dxDesc, dx)
}

// ConvolutionForward computes y = alpha * conv(x, w) + beta * y.
func (b *Binding) ConvolutionForward(ctx DeviceContext, h Handle, alpha float64,
	xDesc TensorDescriptor, x gpulower.Buffer,
	wDesc TensorDescriptor, w gpulower.Buffer, beta float64,
	yDesc TensorDescriptor, y gpulower.Buffer) error {
	if err := b.current(ctx, "dnn.convolution_forward"); err != nil {
		return err
	}
	return b.lib.ConvolutionForward(h, alpha, xDesc, x, wDesc, w, beta, yDesc, y)
}

// ConvolutionBackwardData computes dx = alpha * convGradData(w, dy) + beta * dx.
func (b *Binding) ConvolutionBackwardData(ctx DeviceContext, h Handle, alpha float64,
	wDesc TensorDescriptor, w gpulower.Buffer,
	dyDesc TensorDescriptor, dy gpulower.Buffer, beta float64,
	dxDesc TensorDescriptor, dx gpulower.Buffer) error {
	if err := b.current(ctx, "dnn.convolution_backward_data"); err != nil {
		return err
	}
	return b.lib.ConvolutionBackwardData(h, alpha, wDesc, w, dyDesc, dy, beta, dxDesc, dx)
}

// ConvolutionBackwardFilter computes dw = alpha * convGradFilter(x, dy) + beta * dw.
func (b *Binding) ConvolutionBackwardFilter(ctx DeviceContext, h Handle, alpha float64,
	xDesc TensorDescriptor, x gpulower.Buffer,
	dyDesc TensorDescriptor, dy gpulower.Buffer, beta float64,
	dwDesc TensorDescriptor, dw gpulower.Buffer) error {
	if err := b.current(ctx, "dnn.convolution_backward_filter"); err != nil {
		return err
	}
	return b.lib.ConvolutionBackwardFilter(h, alpha, xDesc, x, dyDesc, dy, beta, dwDesc, dw)
}

// ConvolutionBiasActivationForward computes the fused
// y = act(alpha1 * conv(x, w) + alpha2 * z + bias).
func (b *Binding) ConvolutionBiasActivationForward(ctx DeviceContext, h Handle, alpha1 float64,
	xDesc TensorDescriptor, x gpulower.Buffer,
	wDesc TensorDescriptor, w gpulower.Buffer, alpha2 float64,
	zDesc TensorDescriptor, z gpulower.Buffer,
	biasDesc TensorDescriptor, bias gpulower.Buffer,
	yDesc TensorDescriptor, y gpulower.Buffer) error {
	if err := b.current(ctx, "dnn.convolution_bias_activation_forward"); err != nil {
		return err
	}
	return b.lib.ConvolutionBiasActivationForward(h, alpha1, xDesc, x, wDesc, w, alpha2, zDesc, z, biasDesc, bias, yDesc, y)
}
